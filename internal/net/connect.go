package net

import (
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/gorilla/websocket"

	"github.com/devops-utils/richter/internal/protocol"
)

// Connection-control message ids exchanged before game traffic starts.
const (
	ccReqConnect = 0x01
	ccRepAccept  = 0x81
	ccRepReject  = 0x82
)

// Connection attempts are bounded; reconnection after that is an explicit
// user action.
const maxConnectAttempts = 3

// responseWindow is how long each attempt waits for accept/reject.
const responseWindow = 2500 * time.Millisecond

var (
	ErrNoResponse             = errors.New("net: no response from server")
	ErrInvalidConnectResponse = errors.New("net: invalid connect response")
	ErrInvalidServerAddress   = errors.New("net: invalid server address")
)

// ConnectionRejectedError carries the server's reject reason.
type ConnectionRejectedError struct {
	Message string
}

func (e *ConnectionRejectedError) Error() string {
	return fmt.Sprintf("net: connection rejected: %s", e.Message)
}

// Connect dials the server and performs the connect handshake: a request
// carrying the game name and connect protocol version, answered by accept or
// reject. Up to maxConnectAttempts tries before giving up.
func Connect(serverURL string) (*Socket, error) {
	u, err := url.Parse(serverURL)
	if err != nil || (u.Scheme != "ws" && u.Scheme != "wss") || u.Host == "" {
		return nil, ErrInvalidServerAddress
	}

	var lastErr error = ErrNoResponse
	for attempt := 0; attempt < maxConnectAttempts; attempt++ {
		sock, err := tryConnect(serverURL)
		if err == nil {
			return sock, nil
		}

		// rejection and malformed responses are final; timeouts retry
		var rejected *ConnectionRejectedError
		if errors.As(err, &rejected) || errors.Is(err, ErrInvalidConnectResponse) {
			return nil, err
		}
		lastErr = err
	}
	if errors.Is(lastErr, ErrRecvTimeout) {
		return nil, ErrNoResponse
	}
	return nil, lastErr
}

func tryConnect(serverURL string) (*Socket, error) {
	conn, _, err := websocket.DefaultDialer.Dial(serverURL, nil)
	if err != nil {
		return nil, fmt.Errorf("net: dial: %w", err)
	}

	req := protocol.NewWriter()
	req.WriteByte(ccReqConnect)
	req.WriteString(protocol.GameName)
	req.WriteByte(protocol.ConnectVersion)

	sock := newSocket(conn)
	if err := sock.SendReliable(req.Bytes()); err != nil {
		sock.Close()
		return nil, err
	}

	frame, err := sock.Recv(Timeout(responseWindow))
	if err != nil {
		sock.Close()
		return nil, err
	}

	r := protocol.NewReader(frame)
	rep, err := r.ReadByte()
	if err != nil {
		sock.Close()
		return nil, ErrInvalidConnectResponse
	}
	switch rep {
	case ccRepAccept:
		return sock, nil
	case ccRepReject:
		msg, _ := r.ReadString()
		sock.Close()
		return nil, &ConnectionRejectedError{Message: msg}
	default:
		sock.Close()
		return nil, ErrInvalidConnectResponse
	}
}
