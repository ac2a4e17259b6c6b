package player

import (
	"errors"
	"fmt"

	"drawing-player/drawing"
)

var (
	// ErrAlreadyOwned is returned when a shape is already driven by another player
	ErrAlreadyOwned = errors.New("shape already owned by another player")

	// ErrUnknownShape is returned when solo playback names a shape the drawing doesn't have
	ErrUnknownShape = errors.New("shape not in drawing")
)

// OwnershipError reports which shape blocked a playback request
type OwnershipError struct {
	Shape drawing.ShapeID
	Owner drawing.Owner
}

func (e *OwnershipError) Error() string {
	return fmt.Sprintf("shape %d: already owned by player %d", e.Shape, e.Owner)
}

func (e *OwnershipError) Unwrap() error { return ErrAlreadyOwned }
