//go:build !linux

package thread

import "errors"

const sysSupported = false

var errUnsupported = errors.New("thread control is only supported on Linux")

func sysGettid() uint32                { return 0 }
func sysSetTaskName(string) error      { return errUnsupported }
func sysTaskAlive(uint32) bool         { return false }
func sysTaskStop(uint32) error         { return errUnsupported }
func sysTaskCont(uint32) error         { return errUnsupported }
func sysTaskKill(uint32) error         { return errUnsupported }
func sysSetPriority(uint32, int) error { return errUnsupported }

func sysGetPriority(uint32) (int, error) { return 0, errUnsupported }

func sysSetAffinity(uint32, uint64) (uint64, error) { return 0, errUnsupported }

func sysOnlineCPUs() int { return 0 }
