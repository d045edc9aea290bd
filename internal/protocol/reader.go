package protocol

import (
	"encoding/binary"
	"math"

	"github.com/devops-utils/richter/internal/qmath"
)

// Reader consumes a single message frame. All multi-byte values are
// little-endian. Every read reports ErrTruncated when the frame runs out
// mid-value; an exactly-consumed frame is the normal end condition.
type Reader struct {
	buf []byte
	off int
}

func NewReader(frame []byte) *Reader {
	return &Reader{buf: frame}
}

// Remaining reports how many unread bytes are left in the frame.
func (r *Reader) Remaining() int { return len(r.buf) - r.off }

func (r *Reader) ReadByte() (byte, error) {
	if r.off >= len(r.buf) {
		return 0, ErrTruncated
	}
	b := r.buf[r.off]
	r.off++
	return b, nil
}

func (r *Reader) ReadChar() (int8, error) {
	b, err := r.ReadByte()
	return int8(b), err
}

func (r *Reader) ReadShort() (int16, error) {
	if r.off+2 > len(r.buf) {
		return 0, ErrTruncated
	}
	v := int16(binary.LittleEndian.Uint16(r.buf[r.off:]))
	r.off += 2
	return v, nil
}

func (r *Reader) ReadLong() (int32, error) {
	if r.off+4 > len(r.buf) {
		return 0, ErrTruncated
	}
	v := int32(binary.LittleEndian.Uint32(r.buf[r.off:]))
	r.off += 4
	return v, nil
}

func (r *Reader) ReadFloat() (float32, error) {
	v, err := r.ReadLong()
	return math.Float32frombits(uint32(v)), err
}

// ReadCoord reads a fixed-point 13.3 world coordinate.
func (r *Reader) ReadCoord() (float32, error) {
	v, err := r.ReadShort()
	return float32(v) / 8, err
}

// ReadAngle reads a byte angle scaled to degrees.
func (r *Reader) ReadAngle() (float32, error) {
	b, err := r.ReadByte()
	return float32(b) * 360 / 256, err
}

func (r *Reader) ReadCoordVec() (qmath.Vec3, error) {
	var v qmath.Vec3
	for i := range v {
		c, err := r.ReadCoord()
		if err != nil {
			return v, err
		}
		v[i] = c
	}
	return v, nil
}

func (r *Reader) ReadAngleVec() (qmath.Vec3, error) {
	var v qmath.Vec3
	for i := range v {
		a, err := r.ReadAngle()
		if err != nil {
			return v, err
		}
		v[i] = a
	}
	return v, nil
}

// ReadString reads a NUL-terminated string. A frame ending before the
// terminator is truncated.
func (r *Reader) ReadString() (string, error) {
	start := r.off
	for i := r.off; i < len(r.buf); i++ {
		if r.buf[i] == 0 {
			r.off = i + 1
			return string(r.buf[start:i]), nil
		}
	}
	return "", ErrTruncated
}

// ReadStringList reads strings until an empty one terminates the list.
func (r *Reader) ReadStringList() ([]string, error) {
	var out []string
	for {
		s, err := r.ReadString()
		if err != nil {
			return nil, err
		}
		if s == "" {
			return out, nil
		}
		out = append(out, s)
	}
}
