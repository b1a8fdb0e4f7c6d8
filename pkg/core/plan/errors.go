package plan

import (
	"errors"
	"fmt"
)

// Configuration errors returned by New and Run.
var (
	ErrLineWeight  = errors.New("line weight must be in the range [0, 1)")
	ErrImageSize   = errors.New("image buffer does not match its dimensions")
	ErrNoAnchors   = errors.New("no anchors")
	ErrStartAnchor = errors.New("start anchor out of range")
	ErrPlannerUsed = errors.New("planner already ran")
)

// ErrExhausted matches every *ExhaustedError with errors.Is.
var ErrExhausted = errors.New("failed to obtain next anchor")

// ExhaustedError reports that no eligible next anchor exists. Order holds the
// anchors planned before the failure.
type ExhaustedError struct {
	Anchor int
	Order  []int
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("%v from anchor %d after %d lines", ErrExhausted, e.Anchor, len(e.Order)-1)
}

// Is reports whether target is ErrExhausted.
func (e *ExhaustedError) Is(target error) bool { return target == ErrExhausted }
