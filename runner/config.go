package runner

import (
	"fmt"
	"io"
	"time"
)

// Options drives one supervised run.
type Options struct {
	// Timeout bounds the child's lifetime; 0 means unbounded. On expiry the
	// child is forcibly terminated with exit code 124.
	Timeout time.Duration
	// Trace enables the eBPF exit collector; when it cannot start the run
	// degrades to plain handle-level waiting.
	Trace bool
	// TraceObjectDir overrides where the compiled BPF object is looked up.
	TraceObjectDir string
	// Jobs limits concurrency for RunAll.
	Jobs int
	// Stdout and Stderr receive the child's streams; nil inherits ours.
	Stdout io.Writer
	Stderr io.Writer
}

// Defaults returns a safe baseline: one job, no timeout, no tracing.
func Defaults() Options {
	return Options{Jobs: 1}
}

// Validate ensures the options are usable.
func (o Options) Validate() error {
	if o.Timeout < 0 {
		return fmt.Errorf("timeout must be >= 0")
	}
	if o.Jobs <= 0 {
		return fmt.Errorf("jobs must be > 0")
	}
	return nil
}
