// Package process owns kernel process objects. A Process is a move-only
// handle to a coupled pair of kernel resources: a process handle and the
// primary-thread handle acquired alongside it, both pidfds on this platform.
// The pair is acquired and released together, thread handle first.
//
// Every operation reports failure through its return value; an empty handle
// answers every query with its zero answer. The factories never return an
// error: a failed spawn yields an empty, inert handle.
package process

import (
	"sync"
	"syscall"
	"time"

	"proctl/core/waitstat"
)

// FDNone marks a handle slot that holds no descriptor.
const FDNone = -1

// reapState is shared with the background reaper for children this package
// spawned. status and abandoned are stable once done is closed; forced is
// written by Terminate under mu.
type reapState struct {
	done      chan struct{}
	status    syscall.WaitStatus
	abandoned bool

	mu     sync.Mutex
	forced uint32
	killed bool
}

// Process is the owning handle. The zero value is empty and safe to use.
//
// A Process is single-owner: hand it to another goroutine with Move, never
// by plain copy, and do not operate on the same handle from two goroutines.
type Process struct {
	procFD   int
	threadFD int
	pid      uint32
	tid      uint32
	state    *reapState // nil for adopted non-children: no exit codes there
}

// New adopts externally supplied raw handles, e.g. the result of a native
// process-creation call. A pid or tid of 0 is resolved from the handles; if
// either resolution fails the whole pair is torn down rather than left
// half-populated.
func New(procFD, threadFD int, pid, tid uint32) Process {
	var p Process
	p.adopt(procFD, threadFD, pid, tid, nil)
	return p
}

// Valid reports whether the handle owns a usable process.
func (p *Process) Valid() bool {
	return validFD(p.procFD) && validFD(p.threadFD)
}

// PID returns the cached process id, 0 when empty.
func (p *Process) PID() uint32 { return p.pid }

// TID returns the cached primary-thread id, 0 when empty.
func (p *Process) TID() uint32 { return p.tid }

// Handle returns the raw process handle without giving up ownership.
func (p *Process) Handle() int {
	if p.procFD == 0 {
		return FDNone
	}
	return p.procFD
}

// ThreadHandle returns the raw primary-thread handle without giving up
// ownership.
func (p *Process) ThreadHandle() int {
	if p.threadFD == 0 {
		return FDNone
	}
	return p.threadFD
}

// Wait blocks until the process terminates. Ownership is untouched, so Wait
// can be called repeatedly and combined with TryExitCode.
func (p *Process) Wait() waitstat.Status {
	if !p.Valid() {
		return waitstat.Failed
	}
	return p.waitMillis(waitstat.ForeverMillis)
}

// WaitFor blocks up to timeout. The timeout is clamped so a large caller
// value can never reach the native wait-forever sentinel.
func (p *Process) WaitFor(timeout time.Duration) waitstat.Status {
	if !p.Valid() {
		return waitstat.Failed
	}
	return p.waitMillis(waitstat.ClampMillis(timeout))
}

func (p *Process) waitMillis(ms int) waitstat.Status {
	var deadline time.Time
	if ms >= 0 {
		deadline = time.Now().Add(time.Duration(ms) * time.Millisecond)
	}
	for {
		ready, err := sysPollOnce(p.procFD, ms)
		if err != nil {
			if isEINTR(err) {
				if ms >= 0 {
					remain := time.Until(deadline)
					if remain <= 0 {
						return waitstat.TimedOut
					}
					ms = waitstat.ClampMillis(remain)
				}
				continue
			}
			return waitstat.Failed
		}
		if !ready {
			return waitstat.TimedOut
		}
		if st := p.state; st != nil {
			// Let the reaper record the exit before callers ask for it.
			<-st.done
			if st.abandoned {
				return waitstat.Abandoned
			}
		}
		return waitstat.Signaled
	}
}

// TryExitCode returns the exit code once the process has terminated: the
// low 8 bits of the exit status for a normal exit, 128 plus the signal
// number for a signal death, or the code recorded by Terminate when the
// death was ours. It reports no value while the process runs, when the
// handle is empty, or for adopted processes that are not our children.
func (p *Process) TryExitCode() (uint32, bool) {
	if !p.Valid() || p.state == nil {
		return 0, false
	}
	st := p.state
	select {
	case <-st.done:
	default:
		return 0, false
	}
	if st.status.Signaled() {
		st.mu.Lock()
		forced, killed := st.forced, st.killed
		st.mu.Unlock()
		if killed && sysWasKilled(st.status) {
			return forced, true
		}
		return uint32(128 + int(st.status.Signal())), true
	}
	return uint32(st.status.ExitStatus()), true
}

// IsRunning probes the process handle directly with a zero-length native
// wait rather than deriving from TryExitCode, so the two agree by
// construction, not by delegation.
func (p *Process) IsRunning() bool {
	if !p.Valid() {
		return false
	}
	ready, err := sysPollOnce(p.procFD, 0)
	return err == nil && !ready
}

// Terminate forcibly stops the process. The kernel only reports the fatal
// signal, so the requested code is recorded here and reported by
// TryExitCode once the death is observed. Unsafe by nature: the target gets
// no chance to clean up.
func (p *Process) Terminate(exitCode uint32) bool {
	if !p.Valid() {
		return false
	}
	st := p.state
	if st != nil {
		select {
		case <-st.done:
			// Already terminated; the recorded outcome stands.
			return false
		default:
		}
		// Recorded before the kill so a TryExitCode racing the reaper never
		// sees the death without the code; rolled back if the kill fails.
		st.mu.Lock()
		st.forced = exitCode
		st.killed = true
		st.mu.Unlock()
	}
	if sysKill(p.procFD) != nil {
		if st != nil {
			st.mu.Lock()
			st.killed = false
			st.mu.Unlock()
		}
		return false
	}
	return true
}

// Suspend stops the primary thread's thread group via the primary-thread
// handle. No suspend count is tracked at this layer; mismatched pairs are
// the caller's responsibility.
func (p *Process) Suspend() bool {
	if !p.Valid() {
		return false
	}
	return sysStop(p.threadFD) == nil
}

// Resume relays the matching continue signal. See Suspend for scope.
func (p *Process) Resume() bool {
	if !p.Valid() {
		return false
	}
	return sysCont(p.threadFD) == nil
}

// SetPriorityClass relays the process-wide priority class, independent from
// any per-thread priority.
func (p *Process) SetPriorityClass(class PriorityClass) bool {
	if !p.Valid() {
		return false
	}
	return sysSetProcPriority(p.pid, int(class)) == nil
}

// GetPriorityClass returns the process priority class, or PriorityNormal
// when the handle is empty or the native call fails. A process genuinely
// running at the normal class is indistinguishable from the failure answer;
// callers that care must check Valid first.
func (p *Process) GetPriorityClass() PriorityClass {
	if !p.Valid() {
		return PriorityNormal
	}
	nice, err := sysGetProcPriority(p.pid)
	if err != nil {
		return PriorityNormal
	}
	return PriorityClass(nice)
}

// StartTime returns the kernel start time of the process in clock ticks
// since boot, 0 when unavailable. It disambiguates pid reuse: two processes
// with the same pid never share a start time.
func (p *Process) StartTime() uint64 {
	if !p.Valid() {
		return 0
	}
	ticks, err := sysStartTime(p.pid)
	if err != nil {
		return 0
	}
	return ticks
}

// Release hands both raw handles to the caller as a (process, thread) pair
// and empties the handle without closing. The caller now owns both closes.
func (p *Process) Release() (procFD, threadFD int) {
	procFD, threadFD = p.Handle(), p.ThreadHandle()
	p.setZero()
	return procFD, threadFD
}

// Reset closes both handles, thread handle before process handle, and
// empties the object. Calling Reset on an already empty handle is safe and
// closes nothing.
func (p *Process) Reset() {
	closeFD(p.threadFD)
	closeFD(p.procFD)
	p.setZero()
}

// ResetTo closes the current pair and adopts a replacement, resolving
// missing identifiers as New does.
func (p *Process) ResetTo(procFD, threadFD int, pid, tid uint32) {
	p.Reset()
	p.adopt(procFD, threadFD, pid, tid, nil)
}

// Swap exchanges the full state of two handles.
func (p *Process) Swap(other *Process) {
	p.procFD, other.procFD = other.procFD, p.procFD
	p.threadFD, other.threadFD = other.threadFD, p.threadFD
	p.pid, other.pid = other.pid, p.pid
	p.tid, other.tid = other.tid, p.tid
	p.state, other.state = other.state, p.state
}

// Move transfers ownership into the returned handle and empties the
// receiver.
func (p *Process) Move() Process {
	moved := Process{
		procFD:   p.procFD,
		threadFD: p.threadFD,
		pid:      p.pid,
		tid:      p.tid,
		state:    p.state,
	}
	p.setZero()
	return moved
}

// Swap exchanges two handles; it delegates to the method so the two can
// never diverge.
func Swap(a, b *Process) {
	a.Swap(b)
}

// adopt wires up a handle pair. The pair invariant is enforced here: if
// either descriptor is unusable or either identifier cannot be resolved,
// both descriptors are closed and the object stays empty.
func (p *Process) adopt(procFD, threadFD int, pid, tid uint32, state *reapState) {
	if !validFD(procFD) || !validFD(threadFD) {
		closeFD(threadFD)
		closeFD(procFD)
		p.setZero()
		return
	}
	if pid == 0 {
		pid = sysPidOfHandle(procFD)
	}
	if tid == 0 {
		tid = sysPidOfHandle(threadFD)
	}
	if pid == 0 || tid == 0 {
		closeFD(threadFD)
		closeFD(procFD)
		p.setZero()
		return
	}
	p.procFD = procFD
	p.threadFD = threadFD
	p.pid = pid
	p.tid = tid
	p.state = state
}

func (p *Process) setZero() {
	p.procFD = FDNone
	p.threadFD = FDNone
	p.pid = 0
	p.tid = 0
	p.state = nil
}

func validFD(fd int) bool {
	// Two unusable shapes exist: the zero value of a never-populated slot
	// and the native failure sentinel FDNone. Both collapse here.
	return fd > 0
}

func closeFD(fd int) {
	if fd > 0 {
		sysClose(fd)
	}
}
