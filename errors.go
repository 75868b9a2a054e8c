package ambientpad

import "github.com/cbegin/ambientpad-go/internal/pad"

var (
	// ErrEngineUnavailable is returned by Toggle when no audio device or
	// context could be acquired.
	ErrEngineUnavailable = pad.ErrEngineUnavailable
	ErrUnstableFeedback  = pad.ErrUnstableFeedback
	ErrInvalidParams     = pad.ErrInvalidParams
)

// Params describes the pad texture.
type Params = pad.Params

func DefaultParams() Params { return pad.DefaultParams() }
