// Package net supplies the live message transport: binary websocket frames
// with a connect handshake, plus the blocking-mode semantics the sign-on
// state machine depends on.
package net

import (
	"errors"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// BlockingMode selects how Recv waits for a frame.
type BlockingMode struct {
	blocking bool
	timeout  time.Duration
}

// NonBlocking returns immediately with nil when no frame is queued. Used
// once gameplay starts so render cadence never stalls on network jitter.
var NonBlocking = BlockingMode{}

// Timeout waits up to d. Used during sign-on where the server is allowed
// time to respond.
func Timeout(d time.Duration) BlockingMode {
	return BlockingMode{blocking: true, timeout: d}
}

// ErrClosed reports receive or send on a torn-down socket.
var ErrClosed = errors.New("net: socket closed")

// ErrRecvTimeout reports that no frame arrived inside a blocking window.
var ErrRecvTimeout = errors.New("net: receive timed out")

// Socket is an established connection to a game server. A reader goroutine
// drains the websocket into a buffered frame queue so the frame loop can
// poll without blocking.
type Socket struct {
	conn *websocket.Conn

	frames chan []byte

	writeMu sync.Mutex

	closeOnce sync.Once
	closed    chan struct{}
	readErr   error
}

const recvQueueDepth = 64

func newSocket(conn *websocket.Conn) *Socket {
	s := &Socket{
		conn:   conn,
		frames: make(chan []byte, recvQueueDepth),
		closed: make(chan struct{}),
	}
	go s.readLoop()
	return s
}

func (s *Socket) readLoop() {
	for {
		_, data, err := s.conn.ReadMessage()
		if err != nil {
			s.readErr = err
			s.closeOnce.Do(func() { close(s.closed) })
			return
		}
		select {
		case s.frames <- data:
		case <-s.closed:
			return
		}
	}
}

// Recv returns the next server frame. Under NonBlocking it returns (nil, nil)
// when nothing is queued; under Timeout it waits and reports ErrRecvTimeout.
func (s *Socket) Recv(mode BlockingMode) ([]byte, error) {
	if !mode.blocking {
		select {
		case frame := <-s.frames:
			return frame, nil
		case <-s.closed:
			return nil, s.closeError()
		default:
			return nil, nil
		}
	}

	timer := time.NewTimer(mode.timeout)
	defer timer.Stop()
	select {
	case frame := <-s.frames:
		return frame, nil
	case <-s.closed:
		return nil, s.closeError()
	case <-timer.C:
		return nil, ErrRecvTimeout
	}
}

func (s *Socket) closeError() error {
	if s.readErr != nil {
		return s.readErr
	}
	return ErrClosed
}

// SendReliable delivers a frame, waiting for the writer if needed. The
// websocket carries it in order.
func (s *Socket) SendReliable(data []byte) error {
	select {
	case <-s.closed:
		return s.closeError()
	default:
	}
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	return s.conn.WriteMessage(websocket.BinaryMessage, data)
}

// SendUnreliable delivers a frame only if the writer is immediately
// available; movement updates are superseded next frame anyway.
func (s *Socket) SendUnreliable(data []byte) error {
	select {
	case <-s.closed:
		return s.closeError()
	default:
	}
	if !s.writeMu.TryLock() {
		return nil
	}
	defer s.writeMu.Unlock()
	return s.conn.WriteMessage(websocket.BinaryMessage, data)
}

// CanSend reports whether the connection can accept a reliable frame now.
func (s *Socket) CanSend() bool {
	select {
	case <-s.closed:
		return false
	default:
		return true
	}
}

func (s *Socket) Close() error {
	s.closeOnce.Do(func() { close(s.closed) })
	return s.conn.Close()
}
