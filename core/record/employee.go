// Package record holds the fixed-layout employee record and its binary
// codec. The wire form is exactly Size bytes, little-endian: id, hours,
// then the NUL-padded name buffer.
package record

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
)

const (
	// NameSize is the fixed name buffer length; longer names truncate.
	NameSize = 15
	// Size is the serialized record length.
	Size = 2 + 8 + NameSize

	IDMin = 0
	IDMax = 1<<16 - 1
)

// Employee is one fixed-layout record.
type Employee struct {
	ID    uint16
	Hours float64
	name  [NameSize]byte
}

// NewEmployee builds a record, truncating the name to the buffer size.
func NewEmployee(id uint16, name string, hours float64) Employee {
	e := Employee{ID: id, Hours: hours}
	e.SetName(name)
	return e
}

// Name returns the stored name up to the first NUL.
func (e *Employee) Name() string {
	if idx := bytes.IndexByte(e.name[:], 0); idx >= 0 {
		return string(e.name[:idx])
	}
	return string(e.name[:])
}

// SetName stores name into the fixed buffer, truncating and NUL-padding.
func (e *Employee) SetName(name string) {
	e.name = [NameSize]byte{}
	copy(e.name[:], name)
}

// Marshal encodes the record into its fixed wire form.
func (e *Employee) Marshal() [Size]byte {
	var out [Size]byte
	binary.LittleEndian.PutUint16(out[0:2], e.ID)
	binary.LittleEndian.PutUint64(out[2:10], math.Float64bits(e.Hours))
	copy(out[10:], e.name[:])
	return out
}

// Unmarshal decodes one record from data, which must hold at least Size
// bytes.
func Unmarshal(data []byte) (Employee, error) {
	if len(data) < Size {
		return Employee{}, fmt.Errorf("short record: %d bytes, need %d", len(data), Size)
	}
	var e Employee
	e.ID = binary.LittleEndian.Uint16(data[0:2])
	e.Hours = math.Float64frombits(binary.LittleEndian.Uint64(data[2:10]))
	copy(e.name[:], data[10:Size])
	return e, nil
}
