package series

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"
)

const (
	emptyCollectionMessageConstant        = "collection contains no cases"
	nilCaseTemplateConstant               = "case %d is nil"
	channelMismatchTemplateConstant       = "case %d has %d channels, expected %d"
	unequalLengthMessageConstant          = "collection cases have unequal lengths"
	multivariateUnsupportedConstant       = "operation supports univariate collections only"
	caseIndexOutOfRangeTemplateConstant   = "case index %d out of range for %d cases"
	nonPositiveDimensionTemplateConstant  = "dimension %q must be positive, got %d"
	syntheticCasesDimensionNameConstant   = "cases"
	syntheticChannelsDimensionName        = "channels"
	syntheticTimepointsDimensionName      = "timepoints"
	syntheticValueRangeLowerBoundConstant = -0.3
	syntheticValueRangeUpperBoundConstant = 0.7
)

// ErrEmptyCollection indicates an operation received a collection without cases.
var ErrEmptyCollection = errors.New(emptyCollectionMessageConstant)

// ErrUnequalLength indicates cases in a collection differ in timepoint counts.
var ErrUnequalLength = errors.New(unequalLengthMessageConstant)

// ErrMultivariateUnsupported indicates a univariate-only operation received multichannel data.
var ErrMultivariateUnsupported = errors.New(multivariateUnsupportedConstant)

// Collection is an ordered set of time-series cases. Each case is a
// channels × timepoints matrix.
type Collection []*mat.Dense

// NewUnivariateCollection builds a collection of single-channel cases from raw value slices.
func NewUnivariateCollection(caseValues [][]float64) Collection {
	collection := make(Collection, 0, len(caseValues))
	for _, values := range caseValues {
		duplicatedValues := append([]float64(nil), values...)
		collection = append(collection, mat.NewDense(1, len(duplicatedValues), duplicatedValues))
	}
	return collection
}

// Validate confirms the collection is non-empty and channel counts agree across cases.
func (collection Collection) Validate() error {
	if len(collection) == 0 {
		return ErrEmptyCollection
	}

	expectedChannels := 0
	for caseIndex, seriesCase := range collection {
		if seriesCase == nil {
			return fmt.Errorf(nilCaseTemplateConstant, caseIndex)
		}
		channels, _ := seriesCase.Dims()
		if caseIndex == 0 {
			expectedChannels = channels
			continue
		}
		if channels != expectedChannels {
			return fmt.Errorf(channelMismatchTemplateConstant, caseIndex, channels, expectedChannels)
		}
	}

	return nil
}

// Channels reports the channel count of the first case, zero for empty collections.
func (collection Collection) Channels() int {
	if len(collection) == 0 {
		return 0
	}
	channels, _ := collection[0].Dims()
	return channels
}

// EqualLength reports the shared timepoint count when every case has the same length.
func (collection Collection) EqualLength() (int, bool) {
	if len(collection) == 0 {
		return 0, false
	}

	_, sharedLength := collection[0].Dims()
	for _, seriesCase := range collection[1:] {
		_, caseLength := seriesCase.Dims()
		if caseLength != sharedLength {
			return 0, false
		}
	}

	return sharedLength, true
}

// RequireEqualLength returns the shared timepoint count or ErrUnequalLength.
func (collection Collection) RequireEqualLength() (int, error) {
	if len(collection) == 0 {
		return 0, ErrEmptyCollection
	}
	sharedLength, equal := collection.EqualLength()
	if !equal {
		return 0, ErrUnequalLength
	}
	return sharedLength, nil
}

// RequireUnivariate returns ErrMultivariateUnsupported when any case carries multiple channels.
func (collection Collection) RequireUnivariate() error {
	if validationError := collection.Validate(); validationError != nil {
		return validationError
	}
	if collection.Channels() != 1 {
		return ErrMultivariateUnsupported
	}
	return nil
}

// UnivariateValues returns the first channel of the requested case.
func (collection Collection) UnivariateValues(caseIndex int) ([]float64, error) {
	if caseIndex < 0 || caseIndex >= len(collection) {
		return nil, fmt.Errorf(caseIndexOutOfRangeTemplateConstant, caseIndex, len(collection))
	}
	return mat.Row(nil, 0, collection[caseIndex]), nil
}
