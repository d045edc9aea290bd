package client

import (
	"bytes"
	"io"
	"log"
	"testing"
	"time"

	"github.com/devops-utils/richter/internal/demo"
	"github.com/devops-utils/richter/internal/protocol"
	"github.com/devops-utils/richter/internal/qmath"
)

type memReadCloser struct {
	*bytes.Reader
}

func (memReadCloser) Close() error { return nil }

type memWriteCloser struct {
	*bytes.Buffer
}

func (memWriteCloser) Close() error { return nil }

// recordDemo builds a short in-memory recording: level setup, then two
// snapshots moving entity 1.
func recordDemo(t *testing.T) []byte {
	t.Helper()

	var buf bytes.Buffer
	rec, err := demo.NewRecorder(memWriteCloser{&buf}, demo.Metadata{
		Name:       "test",
		Map:        "e1m1",
		Protocol:   protocol.Version,
		RecordedAt: time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatal(err)
	}

	w := protocol.NewWriter()
	w.WriteByte(protocol.SvcServerInfo)
	w.WriteLong(protocol.Version)
	w.WriteByte(1)
	w.WriteByte(0)
	w.WriteString("Test Level")
	w.WriteByte(0)
	w.WriteByte(0)
	w.WriteByte(protocol.SvcSetView)
	w.WriteShort(1)
	w.WriteByte(protocol.SvcSpawnBaseline)
	w.WriteShort(1)
	w.WriteByte(3) // model
	w.WriteByte(0) // frame
	w.WriteByte(0) // colormap
	w.WriteByte(0) // skin
	for i := 0; i < 3; i++ {
		w.WriteCoord(0)
		w.WriteAngle(0)
	}
	if err := rec.WriteMessage(qmath.V3(0, 0, 0), w.Bytes()); err != nil {
		t.Fatal(err)
	}

	w.Reset()
	w.WriteByte(protocol.SvcTime)
	w.WriteFloat(0.05)
	w.WriteByte(protocol.USignal | protocol.UMoreBits | protocol.UOrigin1)
	w.WriteByte(protocol.UModel >> 8)
	w.WriteByte(1)
	w.WriteByte(3) // model
	w.WriteCoord(0)
	if err := rec.WriteMessage(qmath.V3(10, 90, 5), w.Bytes()); err != nil {
		t.Fatal(err)
	}

	w.Reset()
	w.WriteByte(protocol.SvcTime)
	w.WriteFloat(0.1)
	w.WriteByte(protocol.USignal | protocol.UOrigin1)
	w.WriteByte(1)
	w.WriteCoord(10)
	if err := rec.WriteMessage(qmath.V3(10, 90, 5), w.Bytes()); err != nil {
		t.Fatal(err)
	}

	if err := rec.Close(); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestDemoPlaybackEndToEnd(t *testing.T) {
	data := recordDemo(t)

	c, err := PlayDemo(memReadCloser{bytes.NewReader(data)},
		Config{Logger: log.New(io.Discard, "", 0)})
	if err != nil {
		t.Fatal(err)
	}

	for i := 0; c.Connected(); i++ {
		if i > 100 {
			t.Fatal("playback did not terminate")
		}
		if err := c.Frame(25 * time.Millisecond); err != nil {
			t.Fatalf("frame %d: %v", i, err)
		}
	}

	if c.LevelName() != "Test Level" {
		t.Errorf("level = %q", c.LevelName())
	}
	if c.SignOnStage() != SignOnNotConnected {
		t.Errorf("stage after playback = %v", c.SignOnStage())
	}

	ents := c.Entities()
	if len(ents) != 1 {
		t.Fatalf("live entities = %d, want 1", len(ents))
	}
	ent := ents[0]
	if ent.ModelID != 3 {
		t.Errorf("model = %d", ent.ModelID)
	}

	// The recorded camera angles are patched onto the view entity with
	// pitch and roll inverted.
	want := qmath.V3(-10, 90, -5)
	if ent.MsgAngles[0] != want {
		t.Errorf("view entity angles = %v, want %v", ent.MsgAngles[0], want)
	}
}

func TestDemoPlaybackPacing(t *testing.T) {
	data := recordDemo(t)

	c, err := PlayDemo(memReadCloser{bytes.NewReader(data)},
		Config{Logger: log.New(io.Discard, "", 0)})
	if err != nil {
		t.Fatal(err)
	}

	// Tiny frames: the last snapshot is stamped 100ms in, so at least four
	// 25ms frames must pass before the demo can finish.
	frames := 0
	for c.Connected() && frames < 100 {
		if err := c.Frame(25 * time.Millisecond); err != nil {
			t.Fatal(err)
		}
		frames++
	}
	if frames < 4 {
		t.Fatalf("playback finished after %d frames, pacing not applied", frames)
	}
	if c.Time() < 100*time.Millisecond {
		t.Fatalf("client clock %v never reached the last snapshot", c.Time())
	}
}

func TestRecordingRejectedDuringPlayback(t *testing.T) {
	data := recordDemo(t)

	c, err := PlayDemo(memReadCloser{bytes.NewReader(data)},
		Config{Logger: log.New(io.Discard, "", 0)})
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	rec, err := demo.NewRecorder(memWriteCloser{&buf}, demo.Metadata{Name: "x", Protocol: protocol.Version})
	if err != nil {
		t.Fatal(err)
	}
	c.StartRecording(rec)
	if c.recorder != nil {
		t.Fatal("recorder attached during playback")
	}
}
