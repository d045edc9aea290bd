// Package demo records and replays sessions: every server message frame is
// written with the view angles in effect, so playback can feed the exact
// byte stream back through the client state machine.
//
// File layout (inside one zstd stream): a length-prefixed JSON metadata
// object, then per-message blocks of [3 x float32 view angles] followed by
// the length-prefixed payload.
package demo

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/devops-utils/richter/internal/qmath"
)

// maxBlockSize rejects absurd length prefixes from corrupt files.
const maxBlockSize = 1 << 20

var (
	ErrCorrupt = errors.New("demo: corrupt recording")
)

// Metadata describes a recording. It is written as the first object of the
// file and mirrored into the demo index.
type Metadata struct {
	Name       string    `json:"name"`
	Map        string    `json:"map"`
	Protocol   int       `json:"protocol"`
	RecordedAt time.Time `json:"recorded_at"`
}

func (m *Metadata) encode() ([]byte, error) {
	return json.Marshal(m)
}

func decodeMetadata(raw []byte) (Metadata, error) {
	var m Metadata
	if err := json.Unmarshal(raw, &m); err != nil {
		return m, err
	}
	return m, nil
}

// Frame is one recorded server message with the camera hint captured at
// record time.
type Frame struct {
	ViewAngles qmath.Vec3
	Payload    []byte
}
