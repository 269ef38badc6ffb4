package rainbowsmoke

import "errors"

var (
	// ErrConfiguration reports non-positive dimensions, resolutions or other unusable options.
	ErrConfiguration = errors.New("rainbowsmoke: invalid configuration")
	// ErrQueueEmpty is returned by Pop when no coordinate is pending.
	ErrQueueEmpty = errors.New("rainbowsmoke: assignment queue empty")
	// ErrPoolExhausted is returned when every palette color has been used.
	ErrPoolExhausted = errors.New("rainbowsmoke: color pool exhausted")
	// ErrInvalidSeed reports a seed outside the canvas or on a pixel that is not blank.
	ErrInvalidSeed = errors.New("rainbowsmoke: invalid seed")
	// ErrFinished is returned when seeding an engine that already reached a terminal state.
	ErrFinished = errors.New("rainbowsmoke: engine finished")
)

// ErrNotSeeded is returned by Run before any seed was placed.
var ErrNotSeeded = errors.New("rainbowsmoke: no seed placed")
