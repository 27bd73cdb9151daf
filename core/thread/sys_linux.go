//go:build linux

package thread

import (
	"fmt"
	"os"
	"unsafe"

	"golang.org/x/sys/unix"
)

const sysSupported = true

func sysGettid() uint32 {
	return uint32(unix.Gettid())
}

func sysSetTaskName(name string) error {
	buf, err := unix.BytePtrFromString(name)
	if err != nil {
		return err
	}
	return unix.Prctl(unix.PR_SET_NAME, uintptr(unsafe.Pointer(buf)), 0, 0, 0)
}

// sysTaskAlive probes the kernel's task directory. The entry vanishes when
// the task terminates; a recycled tid can alias a newer task, the same
// identity caveat every tid-keyed native call carries.
func sysTaskAlive(tid uint32) bool {
	_, err := os.Stat(fmt.Sprintf("/proc/self/task/%d", tid))
	return err == nil
}

func sysTaskStop(tid uint32) error {
	return unix.Tgkill(unix.Getpid(), int(tid), unix.SIGSTOP)
}

func sysTaskCont(tid uint32) error {
	return unix.Tgkill(unix.Getpid(), int(tid), unix.SIGCONT)
}

func sysTaskKill(tid uint32) error {
	return unix.Tgkill(unix.Getpid(), int(tid), unix.SIGKILL)
}

func sysSetPriority(tid uint32, nice int) error {
	return unix.Setpriority(unix.PRIO_PROCESS, int(tid), nice)
}

func sysGetPriority(tid uint32) (int, error) {
	// The raw syscall reports 20-nice so errors stay distinguishable from
	// negative nice values; convert back to the nice scale.
	v, err := unix.Getpriority(unix.PRIO_PROCESS, int(tid))
	if err != nil {
		return 0, err
	}
	return 20 - v, nil
}

func sysSetAffinity(tid uint32, mask uint64) (uint64, error) {
	var prev unix.CPUSet
	if err := unix.SchedGetaffinity(int(tid), &prev); err != nil {
		return 0, err
	}
	var next unix.CPUSet
	for cpu := 0; cpu < 64; cpu++ {
		if mask&(1<<uint(cpu)) != 0 {
			next.Set(cpu)
		}
	}
	if err := unix.SchedSetaffinity(int(tid), &next); err != nil {
		return 0, err
	}
	return maskOf(&prev), nil
}

func maskOf(set *unix.CPUSet) uint64 {
	var mask uint64
	for cpu := 0; cpu < 64; cpu++ {
		if set.IsSet(cpu) {
			mask |= 1 << uint(cpu)
		}
	}
	return mask
}

func sysOnlineCPUs() int {
	var set unix.CPUSet
	if err := unix.SchedGetaffinity(0, &set); err != nil {
		return 0
	}
	return set.Count()
}
