// Package waitstat is the shared wait vocabulary: the outcome of a single
// blocking wait on a thread or process handle, and the timeout conversion
// used before any bounded native wait.
package waitstat

// Status classifies the outcome of one wait call. It carries no payload.
type Status uint8

const (
	// Signaled means the target terminated.
	Signaled Status = iota + 1
	// TimedOut means the bounded wait expired before the target terminated.
	TimedOut
	// Failed covers both an invalid handle and a native wait error; the two
	// causes are deliberately indistinguishable to callers.
	Failed
	// Abandoned means another party left the target's ownership undefined,
	// typically because the child was already reaped elsewhere.
	Abandoned
)

func (s Status) String() string {
	switch s {
	case Signaled:
		return "signaled"
	case TimedOut:
		return "timed-out"
	case Failed:
		return "failed"
	case Abandoned:
		return "abandoned"
	default:
		return "unknown status"
	}
}
