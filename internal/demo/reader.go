package demo

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"github.com/klauspost/compress/zstd"

	"github.com/devops-utils/richter/internal/qmath"
)

// Reader replays a recording as a pull-only message source. It never blocks:
// pacing is the caller's business (the client refuses to pull until render
// time catches up with the last message's timestamp).
type Reader struct {
	meta Metadata
	dec  *zstd.Decoder
	src  io.Closer
	done bool
}

// NewReader opens a recording from any stream (typically a vfs file).
func NewReader(src io.ReadCloser) (*Reader, error) {
	dec, err := zstd.NewReader(src)
	if err != nil {
		return nil, fmt.Errorf("demo: %w", err)
	}

	r := &Reader{dec: dec, src: src}
	rawMeta, err := r.readBlock()
	if err != nil {
		r.Close()
		return nil, ErrCorrupt
	}
	if r.meta, err = decodeMetadata(rawMeta); err != nil {
		r.Close()
		return nil, fmt.Errorf("demo: metadata: %w", err)
	}
	return r, nil
}

func (r *Reader) Metadata() Metadata { return r.meta }

// Done reports whether the recording has been fully consumed.
func (r *Reader) Done() bool { return r.done }

// Next returns the next recorded frame, or (nil, nil) at end of recording.
func (r *Reader) Next() (*Frame, error) {
	if r.done {
		return nil, nil
	}

	var angleBytes [12]byte
	if _, err := io.ReadFull(r.dec, angleBytes[:]); err != nil {
		if err == io.EOF {
			r.done = true
			return nil, nil
		}
		return nil, ErrCorrupt
	}

	var angles qmath.Vec3
	for i := range angles {
		bits := binary.LittleEndian.Uint32(angleBytes[i*4:])
		angles[i] = math.Float32frombits(bits)
	}

	payload, err := r.readBlock()
	if err != nil {
		return nil, ErrCorrupt
	}
	return &Frame{ViewAngles: angles, Payload: payload}, nil
}

func (r *Reader) readBlock() ([]byte, error) {
	var lenBytes [4]byte
	if _, err := io.ReadFull(r.dec, lenBytes[:]); err != nil {
		return nil, err
	}
	n := binary.LittleEndian.Uint32(lenBytes[:])
	if n > maxBlockSize {
		return nil, ErrCorrupt
	}
	block := make([]byte, n)
	if _, err := io.ReadFull(r.dec, block); err != nil {
		return nil, err
	}
	return block, nil
}

func (r *Reader) Close() error {
	r.dec.Close()
	return r.src.Close()
}
