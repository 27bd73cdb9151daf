package hfile

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"golang.org/x/sys/unix"
)

func requireUnix(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("requires a unix platform")
	}
}

func TestEmptyFileContract(t *testing.T) {
	var f File
	if f.IsOpen() {
		t.Fatal("zero File reports open")
	}
	if f.Write([]byte("x")) || f.Read(make([]byte, 1)) {
		t.Fatal("I/O succeeded on zero File")
	}
	if _, ok := f.GetCh(); ok {
		t.Fatal("GetCh succeeded on zero File")
	}
	if _, ok := f.Tell(); ok {
		t.Fatal("Tell succeeded on zero File")
	}
	if f.SeekTo(0) {
		t.Fatal("SeekTo succeeded on zero File")
	}
	if _, ok := f.Size(); ok {
		t.Fatal("Size succeeded on zero File")
	}
	if f.Close() {
		t.Fatal("Close reported success on zero File")
	}
}

func TestOpenMissingFile(t *testing.T) {
	requireUnix(t)
	f := Open(filepath.Join(t.TempDir(), "nope"), os.O_RDONLY, 0)
	if f.IsOpen() {
		t.Fatal("Open of a missing file produced a handle")
	}
}

func TestWriteReadSeek(t *testing.T) {
	requireUnix(t)
	path := filepath.Join(t.TempDir(), "data")

	w := Open(path, os.O_CREATE|os.O_WRONLY, 0o644)
	if !w.IsOpen() {
		t.Fatal("Open for write failed")
	}
	if !w.Write([]byte("abc;def")) {
		t.Fatal("Write failed")
	}
	if !w.Close() {
		t.Fatal("Close failed")
	}
	if w.Close() {
		t.Fatal("second Close reported success")
	}

	r := Open(path, os.O_RDONLY, 0)
	if !r.IsOpen() {
		t.Fatal("Open for read failed")
	}
	defer r.Close()

	if size, ok := r.Size(); !ok || size != 7 {
		t.Fatalf("Size = (%d, %v), want (7, true)", size, ok)
	}
	buf := make([]byte, 3)
	if !r.Read(buf) || string(buf) != "abc" {
		t.Fatalf("Read = %q", buf)
	}
	if off, ok := r.Tell(); !ok || off != 3 {
		t.Fatalf("Tell = (%d, %v), want (3, true)", off, ok)
	}
	if ch, ok := r.GetCh(); !ok || ch != ';' {
		t.Fatalf("GetCh = (%q, %v)", ch, ok)
	}
	if !r.SeekTo(0) {
		t.Fatal("SeekTo failed")
	}
	r.Ignore(';', 100)
	if ch, ok := r.GetCh(); !ok || ch != 'd' {
		t.Fatalf("after Ignore GetCh = (%q, %v), want ('d', true)", ch, ok)
	}
}

func TestIgnoreStopsAtBudget(t *testing.T) {
	requireUnix(t)
	path := filepath.Join(t.TempDir(), "data")
	w := Open(path, os.O_CREATE|os.O_WRONLY, 0o644)
	if !w.Write([]byte("abcdef")) {
		t.Fatal("Write failed")
	}
	w.Close()

	r := Open(path, os.O_RDONLY, 0)
	defer r.Close()
	r.Ignore(';', 2) // no delimiter in the first two bytes
	if ch, ok := r.GetCh(); !ok || ch != 'c' {
		t.Fatalf("GetCh = (%q, %v), want ('c', true)", ch, ok)
	}
}

func TestReleaseAndMove(t *testing.T) {
	requireUnix(t)
	path := filepath.Join(t.TempDir(), "data")

	a := Open(path, os.O_CREATE|os.O_RDWR, 0o644)
	if !a.IsOpen() {
		t.Fatal("Open failed")
	}

	b := a.Move()
	if a.IsOpen() || !b.IsOpen() {
		t.Fatal("Move did not transfer ownership")
	}

	fd := b.Release()
	if b.IsOpen() || fd <= 0 {
		t.Fatalf("Release returned %d with open=%v", fd, b.IsOpen())
	}
	// Manual close is now the only cleanup.
	if err := unix.Close(fd); err != nil {
		t.Fatalf("close released fd: %v", err)
	}
	if b.Close() {
		t.Fatal("Close reported success after Release")
	}
}
