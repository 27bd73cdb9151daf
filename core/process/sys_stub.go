//go:build !linux

package process

import (
	"errors"
	"syscall"
)

const sysSupported = false

var errUnsupported = errors.New("process handles are only supported on Linux")

func sysOpenHandle(int) (int, error) { return FDNone, errUnsupported }

func sysClose(int) {}

func sysPollOnce(int, int) (bool, error) { return false, errUnsupported }

func isEINTR(error) bool { return false }

func sysKill(int) error { return errUnsupported }
func sysStop(int) error { return errUnsupported }
func sysCont(int) error { return errUnsupported }

func sysWasKilled(syscall.WaitStatus) bool { return false }

func sysSetProcPriority(uint32, int) error { return errUnsupported }

func sysGetProcPriority(uint32) (int, error) { return 0, errUnsupported }

func sysPidOfHandle(int) uint32 { return 0 }

func sysStartTime(uint32) (uint64, error) { return 0, errUnsupported }

func sysProcAttr(bool, bool) *syscall.SysProcAttr { return nil }
