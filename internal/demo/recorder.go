package demo

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"time"

	"github.com/klauspost/compress/zstd"

	"github.com/devops-utils/richter/internal/qmath"
)

// Recorder writes a recording while the client is connected. It is driven by
// the frame loop; one WriteMessage per received server message.
type Recorder struct {
	meta    Metadata
	enc     *zstd.Encoder
	dst     io.Closer
	frames  int
	started time.Time
}

// NewRecorder starts a recording on dst with the given metadata.
func NewRecorder(dst io.WriteCloser, meta Metadata) (*Recorder, error) {
	enc, err := zstd.NewWriter(dst, zstd.WithEncoderLevel(zstd.SpeedFastest))
	if err != nil {
		return nil, fmt.Errorf("demo: %w", err)
	}

	r := &Recorder{meta: meta, enc: enc, dst: dst, started: time.Now()}
	raw, err := meta.encode()
	if err != nil {
		return nil, fmt.Errorf("demo: metadata: %w", err)
	}
	if err := r.writeBlock(raw); err != nil {
		return nil, err
	}
	return r, nil
}

// WriteMessage appends one server message with the camera angles in effect.
func (r *Recorder) WriteMessage(viewAngles qmath.Vec3, payload []byte) error {
	var angleBytes [12]byte
	for i, a := range viewAngles {
		binary.LittleEndian.PutUint32(angleBytes[i*4:], math.Float32bits(a))
	}
	if _, err := r.enc.Write(angleBytes[:]); err != nil {
		return err
	}
	if err := r.writeBlock(payload); err != nil {
		return err
	}
	r.frames++
	return nil
}

func (r *Recorder) writeBlock(block []byte) error {
	var lenBytes [4]byte
	binary.LittleEndian.PutUint32(lenBytes[:], uint32(len(block)))
	if _, err := r.enc.Write(lenBytes[:]); err != nil {
		return err
	}
	_, err := r.enc.Write(block)
	return err
}

// Frames reports how many messages were recorded so far.
func (r *Recorder) Frames() int { return r.frames }

// Duration reports wall-clock recording time so far.
func (r *Recorder) Duration() time.Duration { return time.Since(r.started) }

func (r *Recorder) Metadata() Metadata { return r.meta }

func (r *Recorder) Close() error {
	if err := r.enc.Close(); err != nil {
		r.dst.Close()
		return err
	}
	return r.dst.Close()
}
