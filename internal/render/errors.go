package render

import "errors"

var (
	// ErrInvalidRequest is returned for requests rejected before spawning,
	// such as an empty diagram or an unknown format.
	ErrInvalidRequest = errors.New("invalid render request")

	// ErrSpawn is returned when the renderer process cannot be started.
	ErrSpawn = errors.New("failed to start renderer")

	// ErrTimeout is returned when the renderer exceeds its time budget.
	ErrTimeout = errors.New("renderer timed out")

	// ErrCanceled is returned when the caller cancels before the renderer finishes.
	ErrCanceled = errors.New("render canceled")

	// ErrRenderer is returned when the renderer exits with a non-zero status.
	ErrRenderer = errors.New("renderer failed")

	// ErrOutput is returned when the renderer exits cleanly but its output
	// cannot be read or is not a valid image.
	ErrOutput = errors.New("failed to read rendered output")
)
