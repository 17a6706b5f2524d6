package segment

import (
	"errors"

	"gonum.org/v1/gonum/mat"

	"github.com/andregdmitri/aeon/internal/series"
)

const windowLengthMessageConstant = "window length must be at least 1"

// ErrWindowTooShort indicates a sliding window length below one.
var ErrWindowTooShort = errors.New(windowLengthMessageConstant)

// SlidingWindowSegmenter expands each univariate case into a stack of hop-1
// windows centered on every timepoint. Series edges are padded by repeating
// the first and last values so every timepoint yields a full window.
type SlidingWindowSegmenter struct {
	windowLength int
}

// NewSlidingWindowSegmenter constructs a segmenter with the given window length.
func NewSlidingWindowSegmenter(windowLength int) *SlidingWindowSegmenter {
	return &SlidingWindowSegmenter{windowLength: windowLength}
}

// Transform converts every case into a windowLength-channel matrix whose
// column t holds the window centered at timepoint t.
func (segmenter *SlidingWindowSegmenter) Transform(collection series.Collection) (series.Collection, error) {
	if segmenter.windowLength < 1 {
		return nil, ErrWindowTooShort
	}
	if validationError := collection.RequireUnivariate(); validationError != nil {
		return nil, validationError
	}

	padding := segmenter.windowLength / 2
	transformed := make(series.Collection, 0, len(collection))

	for caseIndex := range collection {
		values, valuesError := collection.UnivariateValues(caseIndex)
		if valuesError != nil {
			return nil, valuesError
		}

		padded := padEdges(values, padding)
		windows := mat.NewDense(segmenter.windowLength, len(values), nil)
		for timepoint := 0; timepoint < len(values); timepoint++ {
			for offset := 0; offset < segmenter.windowLength; offset++ {
				windows.Set(offset, timepoint, padded[timepoint+offset])
			}
		}
		transformed = append(transformed, windows)
	}

	return transformed, nil
}

// padEdges repeats the boundary values padding times on each side.
func padEdges(values []float64, padding int) []float64 {
	padded := make([]float64, 0, len(values)+2*padding)
	for paddingIndex := 0; paddingIndex < padding; paddingIndex++ {
		padded = append(padded, values[0])
	}
	padded = append(padded, values...)
	for paddingIndex := 0; paddingIndex < padding; paddingIndex++ {
		padded = append(padded, values[len(values)-1])
	}
	return padded
}
