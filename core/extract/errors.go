package extract

import (
	"fmt"
	"strings"

	coreerrors "github.com/FocuswithJustin/Lectern/core/errors"
)

// MissingVersesError reports verses requested by an explicit range that are
// absent from the source. It names exactly the absent verse numbers; either
// the reference does not exist in this translation or the source is damaged.
type MissingVersesError struct {
	Chapter int
	Verses  []int
}

func (e *MissingVersesError) Error() string {
	nums := make([]string, len(e.Verses))
	for i, v := range e.Verses {
		nums[i] = fmt.Sprintf("%d", v)
	}
	return fmt.Sprintf("verses not found: %s in chapter %d", strings.Join(nums, ", "), e.Chapter)
}

func (e *MissingVersesError) Unwrap() error {
	return coreerrors.ErrNotFound
}

// InvalidRangeError reports a range whose start verse exceeds its end verse.
type InvalidRangeError struct {
	Start int
	End   int
}

func (e *InvalidRangeError) Error() string {
	return fmt.Sprintf("start verse %d is greater than end verse %d", e.Start, e.End)
}

func (e *InvalidRangeError) Unwrap() error {
	return coreerrors.ErrInvalidInput
}
