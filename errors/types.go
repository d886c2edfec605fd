package errors

// ErrorType classifies a failure
type ErrorType string

const (
	// Input data errors
	ErrorTypeDataFormat  ErrorType = "data_format"
	ErrorTypeDataMissing ErrorType = "data_missing"
	ErrorTypeIdentity    ErrorType = "identity"

	// Application errors
	ErrorTypeConfig ErrorType = "config"
	ErrorTypeIO     ErrorType = "io"
	ErrorTypeLogic  ErrorType = "logic"
)

// ErrorSeverity ranks how far a failure propagates
type ErrorSeverity int

const (
	SeverityLow      ErrorSeverity = iota // ignorable
	SeverityMedium                        // degraded output
	SeverityHigh                          // needs intervention
	SeverityCritical                      // run aborted
)

// String returns the severity name
func (s ErrorSeverity) String() string {
	switch s {
	case SeverityLow:
		return "low"
	case SeverityMedium:
		return "medium"
	case SeverityHigh:
		return "high"
	case SeverityCritical:
		return "critical"
	default:
		return "unknown"
	}
}

// defaultSeverity maps each type to the severity it carries unless overridden
var defaultSeverity = map[ErrorType]ErrorSeverity{
	ErrorTypeDataFormat:  SeverityCritical,
	ErrorTypeDataMissing: SeverityCritical,
	ErrorTypeIdentity:    SeverityCritical,
	ErrorTypeConfig:      SeverityHigh,
	ErrorTypeIO:          SeverityHigh,
	ErrorTypeLogic:       SeverityCritical,
}
