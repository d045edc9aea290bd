package client

import (
	"fmt"
	"sync/atomic"
)

// SignOnStage tracks the connection handshake. Stages only ever advance;
// the final Begin->Done step is driven by the first fast update rather
// than a server command.
type SignOnStage int32

const (
	SignOnNotConnected SignOnStage = iota
	SignOnPrespawn
	SignOnClientInfo
	SignOnBegin
	SignOnDone
)

func (s SignOnStage) String() string {
	switch s {
	case SignOnNotConnected:
		return "not connected"
	case SignOnPrespawn:
		return "prespawn"
	case SignOnClientInfo:
		return "client info"
	case SignOnBegin:
		return "begin"
	case SignOnDone:
		return "done"
	default:
		return fmt.Sprintf("SignOnStage(%d)", int32(s))
	}
}

// SignOnState holds the stage behind an atomic so render or input threads
// can poll it without taking the client lock.
type SignOnState struct {
	stage atomic.Int32
}

func (s *SignOnState) Stage() SignOnStage {
	return SignOnStage(s.stage.Load())
}

func (s *SignOnState) set(stage SignOnStage) {
	s.stage.Store(int32(stage))
}
