package process

// PriorityClass is the process-wide scheduling class, expressed on the
// native nice scale. It is independent from per-thread priorities.
type PriorityClass int

const (
	PriorityIdle        PriorityClass = 19
	PriorityBelowNormal PriorityClass = 10
	PriorityNormal      PriorityClass = 0
	PriorityAboveNormal PriorityClass = -5
	PriorityHigh        PriorityClass = -10
	PriorityRealtime    PriorityClass = -20
)

func (c PriorityClass) String() string {
	switch c {
	case PriorityIdle:
		return "idle"
	case PriorityBelowNormal:
		return "below-normal"
	case PriorityNormal:
		return "normal"
	case PriorityAboveNormal:
		return "above-normal"
	case PriorityHigh:
		return "high"
	case PriorityRealtime:
		return "realtime"
	default:
		return "custom"
	}
}
