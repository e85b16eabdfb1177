package config

// Tracking defaults.
const (
	DefaultTrackingWorkers         = 0
	DefaultTrackingDetectCodeMoves = false
	DefaultTrackingTrackClosed     = true
)

// SCM and changed-lines providers.
const (
	ProviderReport = "report"
	ProviderGit    = "git"
	ProviderText   = "text"
)

// Source defaults.
const (
	DefaultScmProvider             = ProviderReport
	DefaultScmRepository           = "."
	DefaultChangedLinesProvider    = ProviderReport
	DefaultChangedLinesTarget      = "main"
	DefaultChangedLinesScmFallback = false
)

// Logging defaults.
const (
	DefaultLoggingLevel = "info"
	DefaultLoggingJSON  = false
)

// Observability defaults.
const (
	DefaultObservabilityEnvironment  = ""
	DefaultObservabilitySampleRatio  = 1.0
	DefaultObservabilityOTLPInsecure = false
)
