package metrics

const (
	LabelSessionKind = "session_kind"
	LabelStatus      = "status"
)
