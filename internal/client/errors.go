package client

import (
	"errors"
	"fmt"
)

var (
	ErrNotConnected = errors.New("client: not connected")
	ErrNullEntity   = errors.New("client: null entity access")
)

// Referential errors: the update names something the store does not know.
// Dispatch logs them and keeps going (§ error taxonomy).

type NoSuchEntityError struct{ ID int }

func (e *NoSuchEntityError) Error() string {
	return fmt.Sprintf("client: no entity with id %d", e.ID)
}

type NoSuchPlayerError struct{ ID int }

func (e *NoSuchPlayerError) Error() string {
	return fmt.Sprintf("client: no player with id %d", e.ID)
}

type NoSuchClientError struct{ ID int }

func (e *NoSuchClientError) Error() string {
	return fmt.Sprintf("client: no client slot %d", e.ID)
}

type EntityExistsError struct{ ID int }

func (e *EntityExistsError) Error() string {
	return fmt.Sprintf("client: entity %d already exists", e.ID)
}

type InvalidViewEntityError struct{ ID int }

func (e *InvalidViewEntityError) Error() string {
	return fmt.Sprintf("client: invalid view entity %d", e.ID)
}

type NoSuchLightstyleError struct{ ID int }

func (e *NoSuchLightstyleError) Error() string {
	return fmt.Sprintf("client: no lightstyle animation %d", e.ID)
}

type NoSuchSoundError struct{ ID int }

func (e *NoSuchSoundError) Error() string {
	return fmt.Sprintf("client: no precached sound %d", e.ID)
}

// ErrTooManyStaticEntities is recoverable: the spawn is dropped and logged,
// matching the temp-entity cap policy.
var ErrTooManyStaticEntities = errors.New("client: too many static entities")

// recoverable reports whether a dispatch error may be logged and skipped
// rather than ending the connection.
func recoverable(err error) bool {
	var (
		noEnt    *NoSuchEntityError
		noPlayer *NoSuchPlayerError
		noClient *NoSuchClientError
		exists   *EntityExistsError
		badView  *InvalidViewEntityError
		noStyle  *NoSuchLightstyleError
		noSound  *NoSuchSoundError
	)
	return errors.As(err, &noEnt) ||
		errors.As(err, &noPlayer) ||
		errors.As(err, &noClient) ||
		errors.As(err, &exists) ||
		errors.As(err, &badView) ||
		errors.As(err, &noStyle) ||
		errors.As(err, &noSound) ||
		errors.Is(err, ErrTooManyStaticEntities) ||
		errors.Is(err, ErrNullEntity)
}
