//go:build linux

package exittrace

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/cilium/ebpf"
	"github.com/cilium/ebpf/link"
	"github.com/cilium/ebpf/ringbuf"
)

const defaultObjDir = "ebpf/objects"

type ebpfCollector struct {
	mu      sync.Mutex
	started bool
	events  chan Event
	errs    chan error
	reader  *ringbuf.Reader
	link    link.Link
	objs    *ebpf.Collection
	wg      sync.WaitGroup
	closed  chan struct{}
}

// NewCollector loads the exit tracepoint program. It fails cleanly when the
// object is missing or the kernel refuses the load.
func NewCollector(cfg Config) (Collector, error) {
	dir := cfg.ObjectDir
	if dir == "" {
		if env := os.Getenv("PROCTL_BPF_DIR"); env != "" {
			dir = env
		} else {
			dir = defaultObjDir
		}
	}
	path := filepath.Join(dir, "exit.o")
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("eBPF object missing: %s", path)
	}

	spec, err := ebpf.LoadCollectionSpec(path)
	if err != nil {
		return nil, fmt.Errorf("load eBPF spec %s: %w", path, err)
	}
	coll, err := ebpf.NewCollection(spec)
	if err != nil {
		return nil, fmt.Errorf("load eBPF collection %s: %w", path, err)
	}

	eventsMap := coll.Maps["events"]
	if eventsMap == nil {
		coll.Close()
		return nil, fmt.Errorf("%s has no events map", path)
	}
	reader, err := ringbuf.NewReader(eventsMap)
	if err != nil {
		coll.Close()
		return nil, fmt.Errorf("open ringbuf %s: %w", path, err)
	}

	prog := coll.Programs["trace_sched_exit"]
	if prog == nil {
		_ = reader.Close()
		coll.Close()
		return nil, fmt.Errorf("program trace_sched_exit not found in %s", path)
	}
	l, err := link.Tracepoint("sched", "sched_process_exit", prog, nil)
	if err != nil {
		_ = reader.Close()
		coll.Close()
		return nil, fmt.Errorf("attach sched/sched_process_exit: %w", err)
	}

	return &ebpfCollector{
		events: make(chan Event, 1024),
		errs:   make(chan error, 16),
		reader: reader,
		link:   l,
		objs:   coll,
		closed: make(chan struct{}),
	}, nil
}

func (c *ebpfCollector) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.started {
		return nil
	}
	c.started = true

	c.wg.Add(1)
	go c.readLoop(ctx)
	return nil
}

func (c *ebpfCollector) Events() <-chan Event {
	return c.events
}

func (c *ebpfCollector) Errors() <-chan error {
	return c.errs
}

func (c *ebpfCollector) Close() error {
	c.mu.Lock()
	if !c.started {
		c.mu.Unlock()
		_ = c.reader.Close()
		_ = c.link.Close()
		c.objs.Close()
		return nil
	}
	c.mu.Unlock()

	close(c.closed)
	_ = c.reader.Close()
	c.wg.Wait()

	_ = c.link.Close()
	c.objs.Close()

	close(c.events)
	close(c.errs)
	return nil
}

func (c *ebpfCollector) readLoop(ctx context.Context) {
	defer c.wg.Done()
	for {
		record, err := c.reader.Read()
		if err != nil {
			if errors.Is(err, ringbuf.ErrClosed) {
				return
			}
			select {
			case c.errs <- err:
			case <-c.closed:
			}
			continue
		}
		ev, err := parseEvent(record.RawSample)
		if err != nil {
			select {
			case c.errs <- err:
			case <-c.closed:
			}
			continue
		}
		select {
		case c.events <- ev:
		case <-c.closed:
			return
		case <-ctx.Done():
			return
		}
	}
}
