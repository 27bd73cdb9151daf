// Package hfile is a move-only wrapper around a raw file descriptor. It
// carries the same ownership texture as the thread and process handles:
// single owner, close exactly once, failure through return values, and an
// empty handle that answers every query harmlessly.
package hfile

import "golang.org/x/sys/unix"

// FDNone marks a handle that holds no descriptor.
const FDNone = -1

// File owns one open descriptor. The zero value is empty and safe to use.
type File struct {
	fd int
}

// Open wraps the native open call. On failure it returns an empty handle;
// the factory never returns an error.
func Open(path string, flags int, mode uint32) File {
	fd, err := unix.Open(path, flags, mode)
	if err != nil || fd < 0 {
		return File{fd: FDNone}
	}
	return File{fd: fd}
}

// Wrap adopts an externally opened descriptor.
func Wrap(fd int) File {
	if fd < 0 {
		return File{fd: FDNone}
	}
	return File{fd: fd}
}

// IsOpen reports whether the handle owns a usable descriptor. Both unusable
// shapes, the zero value and the explicit none sentinel, collapse here.
func (f *File) IsOpen() bool {
	return f.fd > 0
}

// Write pushes buf to the descriptor and reports whether anything was
// written.
func (f *File) Write(buf []byte) bool {
	if !f.IsOpen() {
		return false
	}
	n, err := unix.Write(f.fd, buf)
	return err == nil && n > 0
}

// Read fills buf from the descriptor and reports whether anything was read.
// A short read that still delivered bytes counts as success.
func (f *File) Read(buf []byte) bool {
	if !f.IsOpen() {
		return false
	}
	n, err := unix.Read(f.fd, buf)
	return err == nil && n > 0
}

// GetCh reads one byte.
func (f *File) GetCh() (byte, bool) {
	var one [1]byte
	if !f.Read(one[:]) {
		return 0, false
	}
	return one[0], true
}

// Ignore consumes up to max bytes, stopping early after delim.
func (f *File) Ignore(delim byte, max int) {
	for ; max > 0; max-- {
		ch, ok := f.GetCh()
		if !ok || ch == delim {
			return
		}
	}
}

// Tell returns the current file offset.
func (f *File) Tell() (uint32, bool) {
	if !f.IsOpen() {
		return 0, false
	}
	off, err := unix.Seek(f.fd, 0, 1) // SEEK_CUR
	if err != nil || off < 0 {
		return 0, false
	}
	return uint32(off), true
}

// SeekTo positions the file offset from the start.
func (f *File) SeekTo(off uint32) bool {
	if !f.IsOpen() {
		return false
	}
	_, err := unix.Seek(f.fd, int64(off), 0) // SEEK_SET
	return err == nil
}

// Size returns the file length.
func (f *File) Size() (uint32, bool) {
	if !f.IsOpen() {
		return 0, false
	}
	var st unix.Stat_t
	if err := unix.Fstat(f.fd, &st); err != nil {
		return 0, false
	}
	return uint32(st.Size), true
}

// Close releases the descriptor and empties the handle. The second of two
// consecutive closes reports false and closes nothing.
func (f *File) Close() bool {
	if !f.IsOpen() {
		return false
	}
	err := unix.Close(f.fd)
	f.fd = FDNone
	return err == nil
}

// Release hands the raw descriptor to the caller and empties the handle
// without closing; the caller now owns the close.
func (f *File) Release() int {
	if !f.IsOpen() {
		f.fd = FDNone
		return FDNone
	}
	fd := f.fd
	f.fd = FDNone
	return fd
}

// Move transfers ownership into the returned handle and empties the
// receiver.
func (f *File) Move() File {
	moved := File{fd: f.fd}
	f.fd = FDNone
	return moved
}
