package graph

import "errors"

var (
	// ErrUnavailable reports that the output device could not be acquired.
	ErrUnavailable = errors.New("graph: audio output unavailable")
	// ErrContextClosed is returned by operations on a closed context,
	// including a second Close.
	ErrContextClosed = errors.New("graph: context already closed")
	// ErrNodeAlreadyStopped is returned by Stop on a generator that was stopped before.
	ErrNodeAlreadyStopped = errors.New("graph: node already stopped")
	// ErrInvalidState covers start-after-start and stop-before-start.
	ErrInvalidState = errors.New("graph: invalid node state")
	// ErrInvalidValue rejects non-finite values, negative times and
	// exponential ramps towards zero.
	ErrInvalidValue = errors.New("graph: invalid automation value")
	// ErrCycle rejects a connection that closes a loop without a delay in it.
	ErrCycle = errors.New("graph: cycle without delay")
	// ErrNoInput rejects connections into nodes that have no input, such as oscillators.
	ErrNoInput = errors.New("graph: node has no input")
	// ErrForeignNode rejects connections between nodes of different contexts.
	ErrForeignNode = errors.New("graph: node belongs to another context")
)
