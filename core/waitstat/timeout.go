package waitstat

import "time"

// Timeouts cross the native boundary as poll(2) millisecond counts: a signed
// 32-bit value where ForeverMillis means block indefinitely. A large caller
// duration that overflowed the conversion would collide with that sentinel,
// so every finite timeout is clamped before it reaches the native call.
const (
	// ForeverMillis is the native wait-forever sentinel. Only the unbounded
	// wait paths pass it through; ClampMillis never produces it.
	ForeverMillis = -1
	// MaxWaitMillis is the largest finite timeout the native layer accepts.
	MaxWaitMillis = 1<<31 - 2
)

// Infinite requests an unbounded wait when passed to a WaitFor variant.
const Infinite = time.Duration(1<<63 - 1)

// ClampMillis converts a caller-supplied timeout to native milliseconds.
// The result is always in [0, MaxWaitMillis]: negative durations collapse to
// an immediate poll and anything at or above the representable maximum
// (including Infinite) collapses to MaxWaitMillis.
func ClampMillis(d time.Duration) int {
	if d <= 0 {
		return 0
	}
	ms := d.Milliseconds()
	if ms > MaxWaitMillis {
		return MaxWaitMillis
	}
	return int(ms)
}
