package process

import (
	"errors"
	"io"
	"os"
	"os/exec"
	"syscall"
)

// SpawnOptions mirrors the native process-creation parameters.
type SpawnOptions struct {
	// Dir is the working directory; empty inherits the parent's.
	Dir string
	// Env is the environment; nil inherits the parent's.
	Env []string
	// Stdin, Stdout and Stderr wire the child's standard streams; nil falls
	// back to the parent's.
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
	// InheritFiles hands extra open files to the child, descriptor 3 onward.
	InheritFiles []*os.File
	// NewSession detaches the child into its own session.
	NewSession bool
	// NewProcessGroup puts the child into a fresh process group. Implied by
	// NewSession.
	NewProcessGroup bool
	// StartSuspended stops the child right after creation; Resume lets it
	// run. The stop is delivered after the process exists, so a fast child
	// may execute briefly before it lands.
	StartSuspended bool
}

// Spawn starts program with the given argv and returns a populated handle.
// On failure it returns an empty handle; the factory never returns an
// error. An empty program resolves from argv[0]; an empty argv runs the
// program with itself as the only argument.
func Spawn(program string, argv []string, opts SpawnOptions) Process {
	if !sysSupported {
		return Process{}
	}
	if program == "" {
		if len(argv) == 0 {
			return Process{}
		}
		program = argv[0]
	}
	if len(argv) == 0 {
		argv = []string{program}
	}

	cmd := exec.Command(program)
	// Keep the caller's argv[0] instead of the resolved path.
	cmd.Args = append([]string(nil), argv...)
	cmd.Dir = opts.Dir
	cmd.Env = opts.Env
	cmd.Stdin = opts.Stdin
	cmd.Stdout = opts.Stdout
	cmd.Stderr = opts.Stderr
	cmd.ExtraFiles = opts.InheritFiles
	cmd.SysProcAttr = sysProcAttr(opts.NewSession, opts.NewProcessGroup)

	if err := cmd.Start(); err != nil {
		return Process{}
	}
	p := FromCmd(cmd)
	if opts.StartSuspended && p.Valid() {
		p.Suspend()
	}
	return p
}

// SpawnLine starts a command given as one flat command line. An empty
// program defers to the line's first token. An empty line never reaches the
// native layer as a fixed empty argument vector: with a program it runs the
// program bare, without one the spawn yields an empty handle.
func SpawnLine(program, commandLine string, opts SpawnOptions) Process {
	argv := SplitCommandLine(commandLine)
	if program == "" && len(argv) == 0 {
		return Process{}
	}
	return Spawn(program, argv, opts)
}

// SpawnWide is the wide-text convenience form: both strings are UTF-16 and
// are bridged to the native representation before delegating to SpawnLine.
func SpawnWide(program, commandLine []uint16, opts SpawnOptions) Process {
	return SpawnLine(DecodeWide(program), DecodeWide(commandLine), opts)
}

// FromCmd adopts an already-started command, acquiring the process handle
// and the primary-thread handle as one pair and starting the reaper that
// records the exit status. It returns an empty handle when cmd was never
// started or either handle cannot be acquired.
func FromCmd(cmd *exec.Cmd) Process {
	if cmd == nil || cmd.Process == nil {
		return Process{}
	}
	pid := cmd.Process.Pid

	procFD, err := sysOpenHandle(pid)
	if err != nil {
		return Process{}
	}
	// The primary thread is the thread-group leader; its handle is a second,
	// independently owned reference.
	threadFD, err := sysOpenHandle(pid)
	if err != nil {
		sysClose(procFD)
		return Process{}
	}

	state := &reapState{done: make(chan struct{})}
	var p Process
	p.adopt(procFD, threadFD, uint32(pid), uint32(pid), state)
	if !p.Valid() {
		return Process{}
	}
	go reap(cmd, state)
	return p
}

// reap collects the child's exit status. Fields are published before done
// closes; readers synchronize on the channel.
func reap(cmd *exec.Cmd, st *reapState) {
	err := cmd.Wait()
	if ps := cmd.ProcessState; ps != nil {
		if ws, ok := ps.Sys().(syscall.WaitStatus); ok {
			st.status = ws
		}
	}
	if err != nil && isNoChildErr(err) {
		// Someone else reaped the child; its status is lost to us.
		st.abandoned = true
	}
	close(st.done)
}

func isNoChildErr(err error) bool {
	var errno syscall.Errno
	if errors.As(err, &errno) && errno == syscall.ECHILD {
		return true
	}
	var sysErr *os.SyscallError
	if errors.As(err, &sysErr) && sysErr.Err == syscall.ECHILD {
		return true
	}
	return false
}
