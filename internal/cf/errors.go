package cf

import (
	"errors"
	"fmt"

	"github.com/shopstream/recommender/pkg/models"
)

// ErrUnknownInteractionType reports an interaction type outside the fixed
// weighting scheme. It is a hard build-time failure: an unrecognized type
// means the interaction log comes from an incompatible or corrupt source.
var ErrUnknownInteractionType = errors.New("unknown interaction type")

// UnknownInteractionTypeError carries the offending type and the event
// position for diagnostics.
type UnknownInteractionTypeError struct {
	Type     models.InteractionType
	Position int
}

func (e *UnknownInteractionTypeError) Error() string {
	return fmt.Sprintf("unknown interaction type %q at event %d", e.Type, e.Position)
}

func (e *UnknownInteractionTypeError) Unwrap() error {
	return ErrUnknownInteractionType
}
