// Package thread owns single kernel tasks. A Thread is a move-only handle to
// one live OS thread of this process, created by running an entry function on
// a dedicated locked thread; the thread dies when the entry returns, so the
// task's lifetime equals the entry's lifetime.
//
// Every operation reports failure through its return value. An empty handle
// answers every query with its zero answer and never panics.
package thread

import (
	"runtime"
	"sync/atomic"
	"time"

	"proctl/core/waitstat"
)

// EntryFunc runs on the new task's thread and returns the task exit code.
type EntryFunc func(arg any) uint32

// Options configures Create.
type Options struct {
	// Name is relayed to the kernel task name (truncated to 15 bytes).
	Name string
	// StackSize is accepted for contract parity with native thread creation;
	// the runtime sizes its own thread stacks and the value is not relayed.
	StackSize int
}

// Task is the raw thread handle: the kernel task id plus the join state
// shared with the trampoline running the entry function. A Task with a nil
// done channel is as unusable as a nil Task; Valid collapses both shapes.
type Task struct {
	tid  uint32
	done chan struct{}
	code atomic.Uint32
}

// Thread is the owning handle. The zero value is empty and safe to use.
//
// A Thread is single-owner: hand it to another goroutine with Move, never by
// plain copy, and do not operate on the same handle from two goroutines.
type Thread struct {
	task *Task
	tid  uint32
}

// Create spawns a new task running entry(arg) and returns a populated handle.
// On failure it returns an empty handle; the factory never returns an error.
func Create(entry EntryFunc, arg any, opts Options) Thread {
	if entry == nil || !sysSupported {
		return Thread{}
	}
	task := &Task{done: make(chan struct{})}
	ready := make(chan uint32)
	returned := make(chan struct{})
	go func() {
		// The goroutine stays locked for its whole life: when it returns the
		// runtime discards the OS thread instead of reusing it, so the kernel
		// task terminates exactly when the entry does.
		runtime.LockOSThread()
		tid := sysGettid()
		if opts.Name != "" {
			_ = sysSetTaskName(opts.Name)
		}
		ready <- tid
		if tid == 0 {
			close(task.done)
			return
		}
		task.code.Store(entry(arg))
		close(returned)
	}()
	tid := <-ready
	if tid == 0 {
		return Thread{}
	}
	task.tid = tid
	go func() {
		// The runtime tears the locked thread down asynchronously after the
		// entry returns, so the kernel task can outlive it briefly. Completion
		// is published only once the task is actually gone; until then waits
		// block and the procfs probe still reports the task alive.
		<-returned
		for sysTaskAlive(tid) {
			time.Sleep(time.Millisecond)
		}
		close(task.done)
	}()
	var t Thread
	t.adopt(task, tid)
	return t
}

// Valid reports whether the handle owns a usable task.
func (t *Thread) Valid() bool {
	return t.task != nil && t.task.done != nil
}

// TID returns the kernel task id, 0 when empty.
func (t *Thread) TID() uint32 { return t.tid }

// Handle returns the raw task without giving up ownership.
func (t *Thread) Handle() *Task { return t.task }

// Joinable mirrors Valid: a valid handle has a task that can be joined.
func (t *Thread) Joinable() bool { return t.Valid() }

// Join blocks until the task terminates, then empties the handle. It is a
// no-op on an empty handle; after return the handle is always empty.
func (t *Thread) Join() {
	if !t.Valid() {
		return
	}
	<-t.task.done
	t.Reset()
}

// Detach drops the local reference without waiting. The task keeps running
// to completion on its own; after return the handle is empty.
func (t *Thread) Detach() {
	t.Reset()
}

// Wait blocks until the task terminates. Unlike Join it leaves ownership
// untouched, so it can be called repeatedly and combined with TryExitCode.
func (t *Thread) Wait() waitstat.Status {
	if !t.Valid() {
		return waitstat.Failed
	}
	<-t.task.done
	return waitstat.Signaled
}

// WaitFor blocks up to timeout. The timeout is clamped so a large caller
// value can never turn into an unbounded wait.
func (t *Thread) WaitFor(timeout time.Duration) waitstat.Status {
	if !t.Valid() {
		return waitstat.Failed
	}
	select {
	case <-t.task.done:
		return waitstat.Signaled
	default:
	}
	ms := waitstat.ClampMillis(timeout)
	timer := time.NewTimer(time.Duration(ms) * time.Millisecond)
	defer timer.Stop()
	select {
	case <-t.task.done:
		return waitstat.Signaled
	case <-timer.C:
		return waitstat.TimedOut
	}
}

// TryExitCode returns the exit code once the task has terminated. It reports
// no value while the task runs or when the handle is empty.
func (t *Thread) TryExitCode() (uint32, bool) {
	if !t.Valid() {
		return 0, false
	}
	select {
	case <-t.task.done:
		return t.task.code.Load(), true
	default:
		return 0, false
	}
}

// IsRunning reports whether the kernel still lists the task. It probes the
// kernel directly rather than deriving from TryExitCode, so the two agree by
// construction, not by delegation.
func (t *Thread) IsRunning() bool {
	if !t.Valid() {
		return false
	}
	return sysTaskAlive(t.tid)
}

// Suspend relays a thread-directed stop signal. No suspend count is tracked
// at this layer and mismatched suspend/resume pairs are the caller's
// responsibility. On this platform the kernel applies the stop to the whole
// thread group.
func (t *Thread) Suspend() bool {
	if !t.Valid() {
		return false
	}
	return sysTaskStop(t.tid) == nil
}

// Resume relays the matching continue signal. See Suspend for scope.
func (t *Thread) Resume() bool {
	if !t.Valid() {
		return false
	}
	return sysTaskCont(t.tid) == nil
}

// Terminate forcibly stops the task without any stack or lock cleanup. It is
// unsafe by nature; on this platform the kernel tears down the entire thread
// group. On a task that already finished it reports false and leaves the
// published exit code untouched; the forced code is recorded only once the
// kill has landed.
func (t *Thread) Terminate(exitCode uint32) bool {
	if !t.Valid() {
		return false
	}
	select {
	case <-t.task.done:
		return false
	default:
	}
	if sysTaskKill(t.tid) != nil {
		return false
	}
	t.task.code.Store(exitCode)
	return true
}

// SetPriority relays the nice value for the task. Lowering nice below the
// current value needs the usual kernel privilege.
func (t *Thread) SetPriority(nice int) bool {
	if !t.Valid() {
		return false
	}
	return sysSetPriority(t.tid, nice) == nil
}

// GetPriority returns the task's nice value, or 0 when the handle is empty
// or the native call fails. A real nice of 0 is indistinguishable from the
// failure answer; callers that care must check Valid first.
func (t *Thread) GetPriority() int {
	if !t.Valid() {
		return 0
	}
	nice, err := sysGetPriority(t.tid)
	if err != nil {
		return 0
	}
	return nice
}

// SetAffinity binds the task to the CPUs set in mask and returns the
// previous mask, or 0 on failure or when the handle is empty.
func (t *Thread) SetAffinity(mask uint64) uint64 {
	if !t.Valid() || mask == 0 {
		return 0
	}
	prev, err := sysSetAffinity(t.tid, mask)
	if err != nil {
		return 0
	}
	return prev
}

// Release hands the raw task to the caller and empties the handle without
// waiting; the caller now owns the join.
func (t *Thread) Release() *Task {
	task := t.task
	t.setZero()
	return task
}

// Reset empties the handle. The task, if any, keeps running detached.
// Calling Reset on an already empty handle is safe.
func (t *Thread) Reset() {
	t.setZero()
}

// ResetTo empties the handle and adopts a replacement task. A tid of 0 is
// resolved from the task itself; if that fails the handle self-resets rather
// than hold an inconsistent pair.
func (t *Thread) ResetTo(task *Task, tid uint32) {
	t.Reset()
	t.adopt(task, tid)
}

// Swap exchanges the full state of two handles.
func (t *Thread) Swap(other *Thread) {
	t.task, other.task = other.task, t.task
	t.tid, other.tid = other.tid, t.tid
}

// Move transfers ownership into the returned handle and empties the
// receiver.
func (t *Thread) Move() Thread {
	moved := Thread{task: t.task, tid: t.tid}
	t.setZero()
	return moved
}

// Swap exchanges two handles; it delegates to the method so the two can
// never diverge.
func Swap(a, b *Thread) {
	a.Swap(b)
}

// HardwareConcurrency returns the number of logical processors available to
// this process.
func HardwareConcurrency() int {
	if n := sysOnlineCPUs(); n > 0 {
		return n
	}
	return runtime.NumCPU()
}

func (t *Thread) adopt(task *Task, tid uint32) {
	if task == nil || task.done == nil {
		t.setZero()
		return
	}
	if tid == 0 {
		tid = task.tid
	}
	if tid == 0 {
		t.setZero()
		return
	}
	t.task = task
	t.tid = tid
}

func (t *Thread) setZero() {
	t.task = nil
	t.tid = 0
}
