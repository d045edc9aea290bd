package net

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/devops-utils/richter/internal/protocol"
)

var upgrader = websocket.Upgrader{}

// gameServer runs a websocket endpoint that answers the connect handshake
// and then hands the connection to serve.
func gameServer(t *testing.T, accept bool, serve func(conn *websocket.Conn)) string {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade: %v", err)
			return
		}
		defer conn.Close()

		_, req, err := conn.ReadMessage()
		if err != nil {
			t.Errorf("read connect request: %v", err)
			return
		}
		rd := protocol.NewReader(req)
		if b, _ := rd.ReadByte(); b != ccReqConnect {
			t.Errorf("request id = %#x", b)
		}
		if name, _ := rd.ReadString(); name != protocol.GameName {
			t.Errorf("game name = %q", name)
		}
		if v, _ := rd.ReadByte(); v != protocol.ConnectVersion {
			t.Errorf("connect version = %d", v)
		}

		rep := protocol.NewWriter()
		if accept {
			rep.WriteByte(ccRepAccept)
		} else {
			rep.WriteByte(ccRepReject)
			rep.WriteString("server is full")
		}
		if err := conn.WriteMessage(websocket.BinaryMessage, rep.Bytes()); err != nil {
			return
		}

		if serve != nil {
			serve(conn)
		}
	})
	ts := httptest.NewServer(mux)
	t.Cleanup(ts.Close)
	return "ws" + strings.TrimPrefix(ts.URL, "http")
}

func TestConnectHandshake(t *testing.T) {
	url := gameServer(t, true, func(conn *websocket.Conn) {
		// hold the connection open until the client leaves
		conn.ReadMessage()
	})

	sock, err := Connect(url)
	if err != nil {
		t.Fatal(err)
	}
	defer sock.Close()
	if !sock.CanSend() {
		t.Fatal("fresh socket cannot send")
	}
}

func TestConnectRejected(t *testing.T) {
	url := gameServer(t, false, nil)

	_, err := Connect(url)
	var rejected *ConnectionRejectedError
	if !errors.As(err, &rejected) {
		t.Fatalf("err = %v, want ConnectionRejectedError", err)
	}
	if rejected.Message != "server is full" {
		t.Fatalf("reject message = %q", rejected.Message)
	}
}

func TestConnectBadAddress(t *testing.T) {
	for _, addr := range []string{"http://game.example.com", "not a url at all", "ws://"} {
		if _, err := Connect(addr); !errors.Is(err, ErrInvalidServerAddress) {
			t.Errorf("Connect(%q) err = %v, want ErrInvalidServerAddress", addr, err)
		}
	}
}

func TestRecvNonBlocking(t *testing.T) {
	url := gameServer(t, true, func(conn *websocket.Conn) {
		conn.WriteMessage(websocket.BinaryMessage, []byte{1, 2, 3})
		// hold the connection open until the client leaves
		conn.ReadMessage()
	})

	sock, err := Connect(url)
	if err != nil {
		t.Fatal(err)
	}
	defer sock.Close()

	// The frame arrives asynchronously; poll like the frame loop does.
	deadline := time.Now().Add(time.Second)
	var frame []byte
	for frame == nil {
		if time.Now().After(deadline) {
			t.Fatal("frame never arrived")
		}
		frame, err = sock.Recv(NonBlocking)
		if err != nil {
			t.Fatal(err)
		}
	}
	if len(frame) != 3 || frame[0] != 1 {
		t.Fatalf("frame = %v", frame)
	}

	// Nothing more queued: NonBlocking returns nil, nil.
	frame, err = sock.Recv(NonBlocking)
	if frame != nil || err != nil {
		t.Fatalf("empty queue: frame=%v err=%v", frame, err)
	}
}

func TestRecvTimeout(t *testing.T) {
	url := gameServer(t, true, func(conn *websocket.Conn) {
		conn.ReadMessage()
	})

	sock, err := Connect(url)
	if err != nil {
		t.Fatal(err)
	}
	defer sock.Close()

	if _, err := sock.Recv(Timeout(20 * time.Millisecond)); !errors.Is(err, ErrRecvTimeout) {
		t.Fatalf("err = %v, want ErrRecvTimeout", err)
	}
}

func TestRecvAfterClose(t *testing.T) {
	url := gameServer(t, true, nil)

	sock, err := Connect(url)
	if err != nil {
		t.Fatal(err)
	}
	sock.Close()

	if _, err := sock.Recv(NonBlocking); err == nil {
		t.Fatal("recv on closed socket succeeded")
	}
	if sock.CanSend() {
		t.Fatal("closed socket reports CanSend")
	}
	if err := sock.SendReliable([]byte{1}); err == nil {
		t.Fatal("send on closed socket succeeded")
	}
}

func TestSendReliableRoundTrip(t *testing.T) {
	echoed := make(chan []byte, 1)
	url := gameServer(t, true, func(conn *websocket.Conn) {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		echoed <- data
	})

	sock, err := Connect(url)
	if err != nil {
		t.Fatal(err)
	}
	defer sock.Close()

	if err := sock.SendReliable([]byte("begin")); err != nil {
		t.Fatal(err)
	}
	select {
	case data := <-echoed:
		if string(data) != "begin" {
			t.Fatalf("server got %q", data)
		}
	case <-time.After(time.Second):
		t.Fatal("server never received the frame")
	}
}
