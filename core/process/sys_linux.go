//go:build linux

package process

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"syscall"

	"golang.org/x/sys/unix"
)

const sysSupported = true

func sysOpenHandle(pid int) (int, error) {
	return unix.PidfdOpen(pid, 0)
}

func sysClose(fd int) {
	_ = unix.Close(fd)
}

// sysPollOnce performs one bounded native wait on a process handle. It
// reports readiness (the process terminated) or expiry; EINTR is returned
// to the caller, which owns deadline accounting.
func sysPollOnce(fd int, timeoutMs int) (bool, error) {
	fds := []unix.PollFd{{Fd: int32(fd), Events: unix.POLLIN}}
	n, err := unix.Poll(fds, timeoutMs)
	if err != nil {
		return false, err
	}
	if n == 0 {
		return false, nil
	}
	if fds[0].Revents&unix.POLLIN != 0 {
		return true, nil
	}
	return false, unix.EIO
}

func isEINTR(err error) bool {
	return errors.Is(err, unix.EINTR)
}

func sysKill(fd int) error {
	return unix.PidfdSendSignal(fd, unix.SIGKILL, nil, 0)
}

func sysStop(fd int) error {
	return unix.PidfdSendSignal(fd, unix.SIGSTOP, nil, 0)
}

func sysCont(fd int) error {
	return unix.PidfdSendSignal(fd, unix.SIGCONT, nil, 0)
}

func sysWasKilled(status syscall.WaitStatus) bool {
	return status.Signal() == unix.SIGKILL
}

func sysSetProcPriority(pid uint32, nice int) error {
	return unix.Setpriority(unix.PRIO_PROCESS, int(pid), nice)
}

func sysGetProcPriority(pid uint32) (int, error) {
	// The raw syscall reports 20-nice so errors stay distinguishable from
	// negative nice values; convert back to the nice scale.
	v, err := unix.Getpriority(unix.PRIO_PROCESS, int(pid))
	if err != nil {
		return 0, err
	}
	return 20 - v, nil
}

// sysPidOfHandle resolves the process id a pidfd refers to from the
// kernel's fdinfo record. Returns 0 when the id cannot be determined.
func sysPidOfHandle(fd int) uint32 {
	data, err := os.ReadFile(fmt.Sprintf("/proc/self/fdinfo/%d", fd))
	if err != nil {
		return 0
	}
	for _, line := range strings.Split(string(data), "\n") {
		if !strings.HasPrefix(line, "Pid:") {
			continue
		}
		value, err := strconv.Atoi(strings.TrimSpace(strings.TrimPrefix(line, "Pid:")))
		if err != nil || value <= 0 {
			return 0
		}
		return uint32(value)
	}
	return 0
}

// sysStartTime returns the kernel start time (in clock ticks since boot)
// for the given pid. It is used to disambiguate pid reuse.
func sysStartTime(pid uint32) (uint64, error) {
	data, err := os.ReadFile(fmt.Sprintf("/proc/%d/stat", pid))
	if err != nil {
		return 0, err
	}
	// The stat format is: pid (comm) state ... starttime ...
	// We trim the comm field (which can contain spaces) by locating ") ".
	payload := string(data)
	idx := strings.LastIndex(payload, ") ")
	if idx == -1 {
		return 0, fmt.Errorf("invalid stat format")
	}
	fields := strings.Fields(payload[idx+2:])
	// starttime is the 22nd field overall; in the post-comm fields it's index 19 (0-based).
	if len(fields) < 20 {
		return 0, fmt.Errorf("short stat payload")
	}
	value, err := strconv.ParseUint(fields[19], 10, 64)
	if err != nil {
		return 0, err
	}
	return value, nil
}

func sysProcAttr(newSession, newGroup bool) *syscall.SysProcAttr {
	if !newSession && !newGroup {
		return nil
	}
	return &syscall.SysProcAttr{
		Setsid:  newSession,
		Setpgid: newGroup && !newSession,
	}
}
