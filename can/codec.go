package can

import (
	"fmt"
	"math"
)

// Int is the set of integer widths that fit a classic CAN payload.
type Int interface {
	int8 | int16 | int32 | uint8 | uint16 | uint32
}

func width[T Int]() int {
	var z T
	switch any(z).(type) {
	case int8, uint8:
		return 1
	case int16, uint16:
		return 2
	default:
		return 4
	}
}

// PutInt writes v little-endian at the given byte offset. The offset must
// leave room for the value's width; out-of-range offsets are an error, not
// undefined behavior.
func PutInt[T Int](buf []byte, offset int, v T) error {
	w := width[T]()
	if offset < 0 || offset+w > len(buf) {
		return fmt.Errorf("offset %d, width %d, payload %d: %w", offset, w, len(buf), ErrInvalidParam)
	}
	u := uint32(v)
	for i := 0; i < w; i++ {
		buf[offset+i] = byte(u >> (8 * i))
	}
	return nil
}

// GetInt reads a little-endian value of type T at the given byte offset.
func GetInt[T Int](buf []byte, offset int) (T, error) {
	w := width[T]()
	if offset < 0 || offset+w > len(buf) {
		var zero T
		return zero, fmt.Errorf("offset %d, width %d, payload %d: %w", offset, w, len(buf), ErrInvalidParam)
	}
	var u uint32
	for i := w - 1; i >= 0; i-- {
		u = u<<8 | uint32(buf[offset+i])
	}
	return T(u), nil
}

// PutScaled stores a float as round(value/precision) in integer type T.
// Decoding with the same precision reconstructs the value to within half a
// precision step.
func PutScaled[T Int](buf []byte, offset int, value, precision float64) error {
	if precision == 0 {
		return fmt.Errorf("zero precision: %w", ErrInvalidParam)
	}
	return PutInt(buf, offset, T(math.Round(value/precision)))
}

// GetScaled reads an integer of type T and scales it back to a float.
func GetScaled[T Int](buf []byte, offset int, precision float64) (float64, error) {
	raw, err := GetInt[T](buf, offset)
	if err != nil {
		return 0, err
	}
	return float64(raw) * precision, nil
}

// WriteInt writes an integer field into a transmit packet's payload.
func WriteInt[T Int](p *Packet, offset int, v T) error {
	if p == nil {
		return ErrInvalidParam
	}
	return PutInt(p.Data[:], offset, v)
}

// WriteScaled writes a scaled float field into a transmit packet's payload.
func WriteScaled[T Int](p *Packet, offset int, value, precision float64) error {
	if p == nil {
		return ErrInvalidParam
	}
	return PutScaled[T](p.Data[:], offset, value, precision)
}

// ReadInt reads an integer field from a mailbox. When the mailbox holds no
// fresh data since the last consumption, def is returned instead of stale
// bytes. Out-of-range offsets also yield def.
func ReadInt[T Int](m *Mailbox, offset int, def T) T {
	if m == nil {
		return def
	}
	data, recent := m.snapshot()
	if !recent {
		return def
	}
	v, err := GetInt[T](data[:], offset)
	if err != nil {
		return def
	}
	return v
}

// ReadScaled reads a scaled float field from a mailbox, falling back to def
// when no fresh data is present.
func ReadScaled[T Int](m *Mailbox, offset int, precision, def float64) float64 {
	if m == nil {
		return def
	}
	data, recent := m.snapshot()
	if !recent {
		return def
	}
	v, err := GetScaled[T](data[:], offset, precision)
	if err != nil {
		return def
	}
	return v
}
