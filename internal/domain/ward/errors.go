package ward

import "errors"

var (
	ErrWardNotFound    = errors.New("ward not found")
	ErrBedNotFound     = errors.New("bed not found")
	ErrNoBedsAvailable = errors.New("no beds available")
	ErrBedNotAvailable = errors.New("bed not available")
	ErrBedNotOccupied  = errors.New("bed not occupied")
	ErrBedOccupied     = errors.New("bed is occupied")
	ErrBedsInUse       = errors.New("beds in use")
	ErrInvalid         = errors.New("invalid request")
)
