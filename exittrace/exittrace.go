// Package exittrace observes process-exit events kernel-side through an
// eBPF tracepoint program. It is an optional collaborator: loading needs a
// compiled BPF object and CAP_BPF, and callers are expected to degrade to
// handle-level waiting when the collector cannot start.
package exittrace

import (
	"context"
	"encoding/binary"
	"fmt"
)

// Config locates the compiled BPF object.
type Config struct {
	// ObjectDir is where exit.o lives; empty falls back to PROCTL_BPF_DIR
	// and then the built-in default.
	ObjectDir string
}

// Event is one observed process exit.
type Event struct {
	PID  uint32 `json:"pid"`
	PPID uint32 `json:"ppid"`
	Code int32  `json:"code"`
	Comm string `json:"comm"`
}

// Collector streams exit events until closed.
type Collector interface {
	Start(ctx context.Context) error
	Events() <-chan Event
	Errors() <-chan error
	Close() error
}

// eventSize is the fixed record the BPF program writes to the ring buffer:
// pid, ppid, raw exit code, then the 16-byte comm.
const eventSize = 28

func parseEvent(data []byte) (Event, error) {
	if len(data) < eventSize {
		return Event{}, fmt.Errorf("short event: %d", len(data))
	}
	ev := Event{
		PID:  binary.LittleEndian.Uint32(data[0:4]),
		PPID: binary.LittleEndian.Uint32(data[4:8]),
		Code: int32(binary.LittleEndian.Uint32(data[8:12])),
	}
	ev.Comm = trimNull(data[12:28])
	return ev, nil
}

func trimNull(b []byte) string {
	for i, c := range b {
		if c == 0 {
			return string(b[:i])
		}
	}
	return string(b)
}
