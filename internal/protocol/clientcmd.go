package protocol

import (
	"encoding/binary"
	"math"

	"github.com/devops-utils/richter/internal/qmath"
)

// Writer builds outgoing message frames.
type Writer struct {
	buf []byte
}

func NewWriter() *Writer { return &Writer{} }

func (w *Writer) Bytes() []byte { return w.buf }
func (w *Writer) Len() int      { return len(w.buf) }
func (w *Writer) Reset()        { w.buf = w.buf[:0] }

func (w *Writer) WriteByte(b byte) { w.buf = append(w.buf, b) }

func (w *Writer) WriteShort(v int16) {
	w.buf = binary.LittleEndian.AppendUint16(w.buf, uint16(v))
}

func (w *Writer) WriteLong(v int32) {
	w.buf = binary.LittleEndian.AppendUint32(w.buf, uint32(v))
}

func (w *Writer) WriteFloat(v float32) {
	w.WriteLong(int32(math.Float32bits(v)))
}

func (w *Writer) WriteCoord(v float32) { w.WriteShort(int16(v * 8)) }

func (w *Writer) WriteAngle(v float32) {
	w.WriteByte(byte(int(qmath.AngleMod(v)*256/360) & 255))
}

func (w *Writer) WriteString(s string) {
	w.buf = append(w.buf, s...)
	w.buf = append(w.buf, 0)
}

// ClientCmd is an outgoing control message.
type ClientCmd interface {
	Encode(w *Writer)
}

// StringCmd carries a console command line (prespawn, name, begin, ...).
type StringCmd struct {
	Cmd string
}

func (c StringCmd) Encode(w *Writer) {
	w.WriteByte(ClcStringCmd)
	w.WriteString(c.Cmd)
}

// DisconnectCmd tells the server the client is leaving.
type DisconnectCmd struct{}

func (DisconnectCmd) Encode(w *Writer) {
	w.WriteByte(ClcDisconnect)
}

// MoveCmd is the per-frame unreliable movement message.
type MoveCmd struct {
	SendTime    float32
	Angles      qmath.Vec3
	ForwardMove int16
	SideMove    int16
	UpMove      int16
	ButtonFlags byte
	Impulse     byte
}

func (c MoveCmd) Encode(w *Writer) {
	w.WriteByte(ClcMove)
	w.WriteFloat(c.SendTime)
	for i := 0; i < 3; i++ {
		w.WriteAngle(c.Angles[i])
	}
	w.WriteShort(c.ForwardMove)
	w.WriteShort(c.SideMove)
	w.WriteShort(c.UpMove)
	w.WriteByte(c.ButtonFlags)
	w.WriteByte(c.Impulse)
}
