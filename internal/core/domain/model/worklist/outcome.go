package worklist

// Outcome is the result of a single worklist send.
type Outcome int

const (
	UnknownOutcome Outcome = iota
	OutcomeOK
	OutcomeFailed
	OutcomeTimeout
)

func (o Outcome) String() string {
	switch o {
	case OutcomeOK:
		return "ok"
	case OutcomeFailed:
		return "failed"
	case OutcomeTimeout:
		return "timeout"
	default:
		return "unknown"
	}
}

// IsOK reports whether the worklist acknowledged the message.
func (o Outcome) IsOK() bool {
	return o == OutcomeOK
}
