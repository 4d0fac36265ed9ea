package metrics

// Prometheus metric namespaces
const (
	namespaceVMExt = "vmext"
)

// VM extension subsystems
const (
	subsystemSession = "session"
	subsystemStorage = "storage"
)
