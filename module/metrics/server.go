package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// Server serves the /metrics endpoint of a prometheus gatherer.
type Server struct {
	server *http.Server
	log    zerolog.Logger
}

func NewServer(log zerolog.Logger, addr string, gatherer prometheus.Gatherer) *Server {
	mux := http.NewServeMux()
	endpoint := "/metrics"
	mux.Handle(endpoint, promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	return &Server{
		server: &http.Server{Addr: addr, Handler: mux},
		log:    log.With().Str("address", addr).Str("endpoint", endpoint).Logger(),
	}
}

// Start serves requests in the background until Shutdown.
func (m *Server) Start() {
	m.log.Info().Msg("metrics server started")
	go func() {
		err := m.server.ListenAndServe()
		if err != nil {
			// http.ErrServerClosed is returned when Close or Shutdown is called
			if errors.Is(err, http.ErrServerClosed) {
				m.log.Debug().Err(err).Msg("metrics server shutdown")
			} else {
				m.log.Err(err).Msg("error shutting down metrics server")
			}
		}
	}()
}

func (m *Server) Shutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = m.server.Shutdown(ctx)
}
