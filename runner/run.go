// Package runner supervises child processes through kernel handles,
// optionally correlating handle-level waits with eBPF exit events.
package runner

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"proctl/core/process"
	"proctl/core/waitstat"
	"proctl/exittrace"
	"proctl/runner/pool"
)

// waitSlice bounds each blocking wait so cancellation is noticed promptly.
const waitSlice = 50 * time.Millisecond

// Forced exit codes follow shell convention: 124 for a timeout, 130 for an
// interrupted run.
const (
	timeoutExitCode  = 124
	canceledExitCode = 130
)

// Report is the JSON-able outcome of one supervised run.
type Report struct {
	Argv       []string          `json:"argv"`
	PID        uint32            `json:"pid,omitempty"`
	TID        uint32            `json:"tid,omitempty"`
	StartTicks uint64            `json:"start_ticks,omitempty"`
	Status     string            `json:"status"`
	ExitCode   int               `json:"exit_code"`
	TimedOut   bool              `json:"timed_out,omitempty"`
	DurationMs int64             `json:"duration_ms"`
	Exits      []exittrace.Event `json:"exits,omitempty"`
	Errors     []string          `json:"errors,omitempty"`
}

// Run spawns argv and supervises it until exit, timeout, or cancellation.
// The returned Report is populated even when err is non-nil.
func Run(ctx context.Context, argv []string, opts Options) (Report, error) {
	rep := Report{Argv: argv, ExitCode: 1, Status: waitstat.Failed.String()}
	if len(argv) == 0 {
		return rep, fmt.Errorf("no command provided")
	}
	if err := opts.Validate(); err != nil {
		return rep, err
	}
	if ctx == nil {
		ctx = context.Background()
	}

	var (
		collector exittrace.Collector
		traceMu   sync.Mutex
		traceWG   sync.WaitGroup
		exits     []exittrace.Event
		traceErrs []string
	)
	if opts.Trace {
		c, err := exittrace.NewCollector(exittrace.Config{ObjectDir: opts.TraceObjectDir})
		if err != nil {
			fmt.Fprintln(os.Stderr, "proctl: exit tracing unavailable:", err)
			rep.Errors = append(rep.Errors, fmt.Sprintf("trace: %v", err))
		} else {
			collector = c
			if err := collector.Start(ctx); err != nil {
				rep.Errors = append(rep.Errors, fmt.Sprintf("trace start: %v", err))
				_ = collector.Close()
				collector = nil
			}
		}
	}
	if collector != nil {
		traceWG.Add(1)
		go func() {
			defer traceWG.Done()
			events, errs := collector.Events(), collector.Errors()
			for events != nil || errs != nil {
				select {
				case ev, ok := <-events:
					if !ok {
						events = nil
						continue
					}
					traceMu.Lock()
					exits = append(exits, ev)
					traceMu.Unlock()
				case err, ok := <-errs:
					if !ok {
						errs = nil
						continue
					}
					traceMu.Lock()
					traceErrs = append(traceErrs, err.Error())
					traceMu.Unlock()
				}
			}
		}()
	}
	finishTrace := func() {
		if collector == nil {
			return
		}
		_ = collector.Close()
		traceWG.Wait()
		traceMu.Lock()
		defer traceMu.Unlock()
		for _, ev := range exits {
			if ev.PID == rep.PID || ev.PPID == rep.PID {
				rep.Exits = append(rep.Exits, ev)
			}
		}
		rep.Errors = append(rep.Errors, traceErrs...)
	}

	start := time.Now()
	p := process.Spawn("", argv, process.SpawnOptions{
		Stdout: opts.Stdout,
		Stderr: opts.Stderr,
	})
	if !p.Valid() {
		finishTrace()
		rep.DurationMs = time.Since(start).Milliseconds()
		return rep, fmt.Errorf("spawn %s failed", argv[0])
	}
	defer p.Reset()
	rep.PID = p.PID()
	rep.TID = p.TID()
	rep.StartTicks = p.StartTime()

	st, timedOut, canceled := supervise(ctx, &p, opts.Timeout)
	if timedOut || canceled {
		code := uint32(timeoutExitCode)
		if canceled {
			code = canceledExitCode
		}
		p.Terminate(code)
		p.Wait()
	}
	rep.TimedOut = timedOut
	rep.Status = st.String()
	if code, ok := p.TryExitCode(); ok {
		rep.ExitCode = int(code)
	}
	rep.DurationMs = time.Since(start).Milliseconds()
	finishTrace()

	if canceled {
		return rep, ctx.Err()
	}
	return rep, nil
}

// supervise waits for the child in short slices so both the run timeout and
// context cancellation interrupt a wait that would otherwise block.
func supervise(ctx context.Context, p *process.Process, timeout time.Duration) (st waitstat.Status, timedOut, canceled bool) {
	var deadline time.Time
	if timeout > 0 {
		deadline = time.Now().Add(timeout)
	}
	for {
		if ctx.Err() != nil {
			return waitstat.Failed, false, true
		}
		slice := waitSlice
		if timeout > 0 {
			remain := time.Until(deadline)
			if remain <= 0 {
				return waitstat.TimedOut, true, false
			}
			if remain < slice {
				slice = remain
			}
		}
		if st := p.WaitFor(slice); st != waitstat.TimedOut {
			return st, false, false
		}
	}
}

// RunAll supervises every command, at most opts.Jobs at a time. Reports come
// back in input order; a command denied admission by cancellation reports as
// failed without ever spawning.
func RunAll(ctx context.Context, commands [][]string, opts Options) []Report {
	if ctx == nil {
		ctx = context.Background()
	}
	pl := pool.New(opts.Jobs)
	reports := make([]Report, len(commands))
	for i := range commands {
		i, argv := i, commands[i]
		reports[i] = Report{Argv: argv, ExitCode: 1, Status: waitstat.Failed.String()}
		pl.Go(ctx, func(ctx context.Context) error {
			rep, err := Run(ctx, argv, opts)
			reports[i] = rep
			return err
		})
	}
	pl.Wait()
	return reports
}
