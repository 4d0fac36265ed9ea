package cmd

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/onflow/flow-vmext/config"
	"github.com/onflow/flow-vmext/vmext"
)

var (
	flagDatadir  string
	flagBackend  string
	flagLogLevel string
)

// rootFlags are the flags shared by every command.
type rootFlags struct {
	Datadir  string `validate:"required"`
	Backend  string `validate:"oneof=pebble badger"`
	LogLevel string `validate:"required"`
}

var validate = validator.New()

var rootCmd = &cobra.Command{
	Use:   "vmext-util",
	Short: "run and commit sessions against a local state store",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		err := validate.Struct(rootFlags{
			Datadir:  flagDatadir,
			Backend:  flagBackend,
			LogLevel: flagLogLevel,
		})
		if err != nil {
			return fmt.Errorf("invalid flags: %w", err)
		}

		level, err := zerolog.ParseLevel(flagLogLevel)
		if err != nil {
			return fmt.Errorf("invalid log level: %w", err)
		}
		zerolog.SetGlobalLevel(level)
		return nil
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println("error", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&flagDatadir, "datadir", "d", "/var/vmext/data", "directory of the state database")
	rootCmd.PersistentFlags().StringVar(&flagBackend, "backend", backendPebble, "storage backend: pebble or badger")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "loglevel", "info", "level for logging output")
	config.InitializeLimitsFlags(rootCmd.PersistentFlags(), vmext.DefaultLimits())

	log.Logger = zerolog.New(zerolog.NewConsoleWriter()).With().Timestamp().Logger()

	cobra.OnInitialize(initConfig)
}

func initConfig() {
	viper.AutomaticEnv()
}
