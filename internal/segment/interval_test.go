package segment_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/andregdmitri/aeon/internal/segment"
	"github.com/andregdmitri/aeon/internal/series"
)

func buildRampCollection(testInstance *testing.T, caseCount int, seriesLength int) series.Collection {
	testInstance.Helper()

	values := make([][]float64, 0, caseCount)
	for caseIndex := 0; caseIndex < caseCount; caseIndex++ {
		caseValues := make([]float64, seriesLength)
		for timepoint := range caseValues {
			caseValues[timepoint] = float64(caseIndex*seriesLength + timepoint)
		}
		values = append(values, caseValues)
	}

	return series.NewUnivariateCollection(values)
}

func TestIntervalSegmenterFit(testInstance *testing.T) {
	testCases := []struct {
		name              string
		seriesLength      int
		intervalCount     int
		expectedIntervals []segment.Interval
		expectError       bool
	}{
		{
			name:          "even split",
			seriesLength:  10,
			intervalCount: 2,
			expectedIntervals: []segment.Interval{
				{Start: 0, End: 4},
				{Start: 5, End: 9},
			},
		},
		{
			name:          "uneven split keeps larger parts first",
			seriesLength:  10,
			intervalCount: 3,
			expectedIntervals: []segment.Interval{
				{Start: 0, End: 3},
				{Start: 4, End: 6},
				{Start: 7, End: 9},
			},
		},
		{
			name:          "count above half the length",
			seriesLength:  10,
			intervalCount: 6,
			expectError:   true,
		},
		{
			name:          "count below one",
			seriesLength:  10,
			intervalCount: 0,
			expectError:   true,
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(subtestInstance *testing.T) {
			collection := buildRampCollection(subtestInstance, 2, testCase.seriesLength)
			segmenter := segment.NewIntervalSegmenter(testCase.intervalCount)

			fitError := segmenter.Fit(collection)
			if testCase.expectError {
				require.Error(subtestInstance, fitError)
				return
			}
			require.NoError(subtestInstance, fitError)

			intervals, intervalsError := segmenter.Intervals()
			require.NoError(subtestInstance, intervalsError)
			require.Equal(subtestInstance, testCase.expectedIntervals, intervals)
		})
	}
}

func TestIntervalSegmenterTransform(testInstance *testing.T) {
	collection := buildRampCollection(testInstance, 2, 8)
	segmenter := segment.NewIntervalSegmenter(2)
	require.NoError(testInstance, segmenter.Fit(collection))

	segments, transformError := segmenter.Transform(collection)
	require.NoError(testInstance, transformError)
	require.Len(testInstance, segments, 2)

	require.Equal(testInstance, segment.Interval{Start: 0, End: 3}, segments[0].Interval)
	require.Equal(testInstance, []float64{0, 1, 2, 3}, segments[0].Values[0])
	require.Equal(testInstance, []float64{8, 9, 10, 11}, segments[0].Values[1])
	require.Equal(testInstance, []float64{4, 5, 6, 7}, segments[1].Values[0])
}

func TestIntervalSegmenterTransformRequiresFit(testInstance *testing.T) {
	collection := buildRampCollection(testInstance, 1, 8)
	segmenter := segment.NewIntervalSegmenter(2)

	_, transformError := segmenter.Transform(collection)
	require.ErrorIs(testInstance, transformError, segment.ErrSegmenterNotFitted)
}

func TestExplicitIntervalSegmenterDeduplicates(testInstance *testing.T) {
	collection := buildRampCollection(testInstance, 1, 8)
	segmenter := segment.NewExplicitIntervalSegmenter([]segment.Interval{
		{Start: 0, End: 3},
		{Start: 0, End: 3},
		{Start: 2, End: 5},
	})
	require.NoError(testInstance, segmenter.Fit(collection))

	segments, transformError := segmenter.Transform(collection)
	require.NoError(testInstance, transformError)
	require.Len(testInstance, segments, 2)
}

func TestExplicitIntervalSegmenterRejectsOutOfRange(testInstance *testing.T) {
	collection := buildRampCollection(testInstance, 1, 8)
	segmenter := segment.NewExplicitIntervalSegmenter([]segment.Interval{{Start: 4, End: 9}})

	require.Error(testInstance, segmenter.Fit(collection))
}

func TestRandomIntervalSegmenter(testInstance *testing.T) {
	testCases := []struct {
		name          string
		options       segment.RandomIntervalOptions
		expectedCount int
		expectError   bool
	}{
		{
			name:          "sqrt mode",
			options:       segment.RandomIntervalOptions{Mode: segment.CountModeSqrt, Seed: 7},
			expectedCount: 5,
		},
		{
			name:          "log mode",
			options:       segment.RandomIntervalOptions{Mode: segment.CountModeLog, Seed: 7},
			expectedCount: 3,
		},
		{
			name:          "explicit count",
			options:       segment.RandomIntervalOptions{Mode: segment.CountModeCount, Count: 4, Seed: 7},
			expectedCount: 4,
		},
		{
			name:          "fraction mode",
			options:       segment.RandomIntervalOptions{Mode: segment.CountModeFraction, Fraction: 0.25, Seed: 7},
			expectedCount: 6,
		},
		{
			name:          "fraction floors to at least one",
			options:       segment.RandomIntervalOptions{Mode: segment.CountModeFraction, Fraction: 0.01, Seed: 7},
			expectedCount: 1,
		},
		{
			name:        "fraction above one rejected",
			options:     segment.RandomIntervalOptions{Mode: segment.CountModeFraction, Fraction: 1.5, Seed: 7},
			expectError: true,
		},
		{
			name:        "count above length rejected",
			options:     segment.RandomIntervalOptions{Mode: segment.CountModeCount, Count: 100, Seed: 7},
			expectError: true,
		},
		{
			name:        "minimum length below two rejected",
			options:     segment.RandomIntervalOptions{Mode: segment.CountModeSqrt, MinLength: 1, Seed: 7},
			expectError: true,
		},
		{
			name:        "maximum not above minimum rejected",
			options:     segment.RandomIntervalOptions{Mode: segment.CountModeSqrt, MinLength: 4, MaxLength: 4, Seed: 7},
			expectError: true,
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(subtestInstance *testing.T) {
			collection := buildRampCollection(subtestInstance, 2, 25)
			segmenter := segment.NewRandomIntervalSegmenter(testCase.options)

			fitError := segmenter.Fit(collection)
			if testCase.expectError {
				require.Error(subtestInstance, fitError)
				return
			}
			require.NoError(subtestInstance, fitError)

			intervals, intervalsError := segmenter.Intervals()
			require.NoError(subtestInstance, intervalsError)
			require.Len(subtestInstance, intervals, testCase.expectedCount)
			for _, interval := range intervals {
				require.GreaterOrEqual(subtestInstance, interval.Start, 0)
				require.Less(subtestInstance, interval.End, 25)
				require.GreaterOrEqual(subtestInstance, interval.End-interval.Start+1, 2)
			}
		})
	}
}

func TestRandomIntervalSegmenterIsDeterministicPerSeed(testInstance *testing.T) {
	collection := buildRampCollection(testInstance, 2, 25)
	options := segment.RandomIntervalOptions{Mode: segment.CountModeCount, Count: 5, Seed: 42}

	firstSegmenter := segment.NewRandomIntervalSegmenter(options)
	require.NoError(testInstance, firstSegmenter.Fit(collection))
	firstIntervals, firstError := firstSegmenter.Intervals()
	require.NoError(testInstance, firstError)

	secondSegmenter := segment.NewRandomIntervalSegmenter(options)
	require.NoError(testInstance, secondSegmenter.Fit(collection))
	secondIntervals, secondError := secondSegmenter.Intervals()
	require.NoError(testInstance, secondError)

	require.Equal(testInstance, firstIntervals, secondIntervals)
}

func TestRandomIntervalSegmenterHonorsMaximumLength(testInstance *testing.T) {
	collection := buildRampCollection(testInstance, 1, 25)
	segmenter := segment.NewRandomIntervalSegmenter(segment.RandomIntervalOptions{
		Mode:      segment.CountModeCount,
		Count:     20,
		MinLength: 2,
		MaxLength: 4,
		Seed:      3,
	})
	require.NoError(testInstance, segmenter.Fit(collection))

	intervals, intervalsError := segmenter.Intervals()
	require.NoError(testInstance, intervalsError)
	for _, interval := range intervals {
		require.LessOrEqual(testInstance, interval.End-interval.Start+1, 4)
	}
}
