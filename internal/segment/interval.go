package segment

import (
	"errors"
	"fmt"
	"math"
	"math/rand"

	"github.com/andregdmitri/aeon/internal/series"
)

const (
	intervalCountRangeTemplateConstant    = "interval count must lie in [1, %d], got %d"
	intervalCountTooLargeTemplateConstant = "interval count must be at most half the series length: count=%d, length=%d"
	intervalBoundsTemplateConstant        = "interval [%d, %d] exceeds series length %d"
	segmenterNotFittedMessageConstant     = "segmenter is not fitted"
	fractionRangeMessageConstant          = "interval fraction must lie in (0, 1]"
	unknownCountModeTemplateConstant      = "unknown interval count mode: %s"
	minimumBelowTwoMessageConstant        = "minimum interval length must be at least 2"
	minimumNotBelowMaximumMessageConstant = "maximum interval length must exceed the minimum"
	defaultMinimumIntervalLengthConstant  = 2
	intervalColumnNameTemplateConstant    = "channel1_%d_%d"
)

// ErrSegmenterNotFitted indicates Transform was called before Fit.
var ErrSegmenterNotFitted = errors.New(segmenterNotFittedMessageConstant)

// ErrFractionOutOfRange indicates an interval fraction outside (0, 1].
var ErrFractionOutOfRange = errors.New(fractionRangeMessageConstant)

// ErrMinimumIntervalTooShort indicates a minimum interval length below two.
var ErrMinimumIntervalTooShort = errors.New(minimumBelowTwoMessageConstant)

// ErrMaximumNotAboveMinimum indicates the maximum interval length did not exceed the minimum.
var ErrMaximumNotAboveMinimum = errors.New(minimumNotBelowMaximumMessageConstant)

// Interval addresses an inclusive [Start, End] slice of timepoints.
type Interval struct {
	Start int
	End   int
}

// Name renders the interval column identifier.
func (interval Interval) Name() string {
	return fmt.Sprintf(intervalColumnNameTemplateConstant, interval.Start, interval.End)
}

// SegmentedInterval couples an interval with the per-case values it selects.
type SegmentedInterval struct {
	Interval Interval
	Values   [][]float64
}

// IntervalSegmenter splits univariate cases into a fixed set of contiguous intervals.
type IntervalSegmenter struct {
	requestedCount    int
	explicitIntervals []Interval

	fitted    bool
	intervals []Interval
}

// NewIntervalSegmenter constructs a segmenter generating a fixed interval count.
func NewIntervalSegmenter(intervalCount int) *IntervalSegmenter {
	return &IntervalSegmenter{requestedCount: intervalCount}
}

// NewExplicitIntervalSegmenter constructs a segmenter with caller-supplied intervals.
func NewExplicitIntervalSegmenter(intervals []Interval) *IntervalSegmenter {
	return &IntervalSegmenter{explicitIntervals: append([]Interval(nil), intervals...)}
}

// Intervals returns the fitted intervals.
func (segmenter *IntervalSegmenter) Intervals() ([]Interval, error) {
	if !segmenter.fitted {
		return nil, ErrSegmenterNotFitted
	}
	return append([]Interval(nil), segmenter.intervals...), nil
}

// Fit resolves the interval boundaries for the collection's series length.
func (segmenter *IntervalSegmenter) Fit(collection series.Collection) error {
	if validationError := collection.RequireUnivariate(); validationError != nil {
		return validationError
	}
	seriesLength, lengthError := collection.RequireEqualLength()
	if lengthError != nil {
		return lengthError
	}

	if len(segmenter.explicitIntervals) > 0 {
		for _, interval := range segmenter.explicitIntervals {
			if interval.Start < 0 || interval.End >= seriesLength || interval.Start > interval.End {
				return fmt.Errorf(intervalBoundsTemplateConstant, interval.Start, interval.End, seriesLength)
			}
		}
		segmenter.intervals = append([]Interval(nil), segmenter.explicitIntervals...)
		segmenter.fitted = true
		return nil
	}

	if segmenter.requestedCount < 1 {
		return fmt.Errorf(intervalCountRangeTemplateConstant, seriesLength, segmenter.requestedCount)
	}
	if segmenter.requestedCount > seriesLength/2 {
		return fmt.Errorf(intervalCountTooLargeTemplateConstant, segmenter.requestedCount, seriesLength)
	}

	segmenter.intervals = splitEvenly(seriesLength, segmenter.requestedCount)
	segmenter.fitted = true
	return nil
}

// Transform slices every case by the fitted intervals, deduplicating repeated boundaries.
func (segmenter *IntervalSegmenter) Transform(collection series.Collection) ([]SegmentedInterval, error) {
	if !segmenter.fitted {
		return nil, ErrSegmenterNotFitted
	}
	if validationError := collection.RequireUnivariate(); validationError != nil {
		return nil, validationError
	}

	seenIntervalNames := make(map[string]struct{})
	segments := make([]SegmentedInterval, 0, len(segmenter.intervals))

	for _, interval := range segmenter.intervals {
		intervalName := interval.Name()
		if _, alreadySeen := seenIntervalNames[intervalName]; alreadySeen {
			continue
		}
		seenIntervalNames[intervalName] = struct{}{}

		intervalValues := make([][]float64, 0, len(collection))
		for caseIndex := range collection {
			values, valuesError := collection.UnivariateValues(caseIndex)
			if valuesError != nil {
				return nil, valuesError
			}
			if interval.End >= len(values) {
				return nil, fmt.Errorf(intervalBoundsTemplateConstant, interval.Start, interval.End, len(values))
			}
			intervalValues = append(intervalValues, append([]float64(nil), values[interval.Start:interval.End+1]...))
		}

		segments = append(segments, SegmentedInterval{Interval: interval, Values: intervalValues})
	}

	return segments, nil
}

// splitEvenly partitions [0, seriesLength) into contiguous intervals whose
// sizes differ by at most one, larger parts first.
func splitEvenly(seriesLength int, intervalCount int) []Interval {
	baseSize := seriesLength / intervalCount
	remainder := seriesLength % intervalCount

	intervals := make([]Interval, 0, intervalCount)
	start := 0
	for intervalIndex := 0; intervalIndex < intervalCount; intervalIndex++ {
		size := baseSize
		if intervalIndex < remainder {
			size++
		}
		intervals = append(intervals, Interval{Start: start, End: start + size - 1})
		start += size
	}
	return intervals
}

// IntervalCountMode selects how the random segmenter derives its interval count.
type IntervalCountMode string

// Supported interval count modes.
const (
	CountModeSqrt     IntervalCountMode = "sqrt"
	CountModeLog      IntervalCountMode = "log"
	CountModeCount    IntervalCountMode = "count"
	CountModeFraction IntervalCountMode = "fraction"
)

// RandomIntervalOptions configures the random interval segmenter.
type RandomIntervalOptions struct {
	Mode     IntervalCountMode
	Count    int
	Fraction float64
	// MinLength defaults to 2; MaxLength zero leaves lengths unbounded.
	MinLength int
	MaxLength int
	Seed      int64
}

// RandomIntervalSegmenter samples intervals with random starts and lengths.
// Intervals may overlap and may repeat.
type RandomIntervalSegmenter struct {
	IntervalSegmenter
	options RandomIntervalOptions
}

// NewRandomIntervalSegmenter constructs a random segmenter with the provided options.
func NewRandomIntervalSegmenter(options RandomIntervalOptions) *RandomIntervalSegmenter {
	if options.Mode == "" {
		options.Mode = CountModeSqrt
	}
	return &RandomIntervalSegmenter{options: options}
}

// Fit samples interval boundaries for the collection's series length.
func (segmenter *RandomIntervalSegmenter) Fit(collection series.Collection) error {
	if validationError := collection.RequireUnivariate(); validationError != nil {
		return validationError
	}
	seriesLength, lengthError := collection.RequireEqualLength()
	if lengthError != nil {
		return lengthError
	}

	minimumLength := segmenter.options.MinLength
	if minimumLength == 0 {
		minimumLength = defaultMinimumIntervalLengthConstant
	}
	if minimumLength < defaultMinimumIntervalLengthConstant {
		return ErrMinimumIntervalTooShort
	}
	if segmenter.options.MaxLength != 0 && segmenter.options.MaxLength <= minimumLength {
		return ErrMaximumNotAboveMinimum
	}

	intervalCount, countError := resolveIntervalCount(seriesLength, segmenter.options)
	if countError != nil {
		return countError
	}

	randomSource := rand.New(rand.NewSource(segmenter.options.Seed))
	intervals := make([]Interval, 0, intervalCount)
	for intervalIndex := 0; intervalIndex < intervalCount; intervalIndex++ {
		start := randomSource.Intn(seriesLength - minimumLength + 1)

		maximumLength := segmenter.options.MaxLength
		if maximumLength == 0 || start+maximumLength > seriesLength {
			maximumLength = seriesLength - start
		}

		length := minimumLength
		if maximumLength > minimumLength {
			length += randomSource.Intn(maximumLength - minimumLength + 1)
		}
		intervals = append(intervals, Interval{Start: start, End: start + length - 1})
	}

	segmenter.intervals = intervals
	segmenter.fitted = true
	return nil
}

// resolveIntervalCount maps the configured mode to a concrete count, never
// below one.
func resolveIntervalCount(seriesLength int, options RandomIntervalOptions) (int, error) {
	resolvedCount := 0

	switch options.Mode {
	case CountModeSqrt:
		resolvedCount = int(math.Sqrt(float64(seriesLength)))
	case CountModeLog:
		resolvedCount = int(math.Log(float64(seriesLength)))
	case CountModeCount:
		if options.Count < 1 || options.Count > seriesLength {
			return 0, fmt.Errorf(intervalCountRangeTemplateConstant, seriesLength, options.Count)
		}
		resolvedCount = options.Count
	case CountModeFraction:
		if options.Fraction <= 0 || options.Fraction > 1 {
			return 0, ErrFractionOutOfRange
		}
		resolvedCount = int(options.Fraction * float64(seriesLength))
	default:
		return 0, fmt.Errorf(unknownCountModeTemplateConstant, options.Mode)
	}

	if resolvedCount < 1 {
		resolvedCount = 1
	}
	return resolvedCount, nil
}
