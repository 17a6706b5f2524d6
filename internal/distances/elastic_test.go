package distances_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/andregdmitri/aeon/internal/distances"
	"github.com/andregdmitri/aeon/internal/series"
)

func univariateCase(values ...float64) *mat.Dense {
	return mat.NewDense(1, len(values), values)
}

func TestDistanceIdenticalSeriesIsZero(testInstance *testing.T) {
	seriesCase := univariateCase(1, 2, 3, 4, 5)
	distance, distanceError := distances.Distance(seriesCase, seriesCase, distances.DefaultElasticOptions())
	require.NoError(testInstance, distanceError)
	require.InDelta(testInstance, 0.0, distance, 1e-12)
}

func TestDistanceMatchesKnownAlignment(testInstance *testing.T) {
	firstCase := univariateCase(0, 0, 1, 2)
	secondCase := univariateCase(0, 1, 2, 2)

	// Warping absorbs the shift entirely, so the aligned cost is zero.
	distance, distanceError := distances.Distance(firstCase, secondCase, distances.DefaultElasticOptions())
	require.NoError(testInstance, distanceError)
	require.InDelta(testInstance, 0.0, distance, 1e-12)

	euclidean, euclideanError := distances.SquaredEuclidean(firstCase, secondCase)
	require.NoError(testInstance, euclideanError)
	require.Greater(testInstance, euclidean, distance)
}

func TestDistanceIsSymmetric(testInstance *testing.T) {
	collection, generationError := series.GenerateSynthetic(series.SyntheticOptions{Cases: 2, Channels: 1, Timepoints: 20, Seed: 7})
	require.NoError(testInstance, generationError)

	for _, measure := range []distances.Measure{distances.MeasureDTW, distances.MeasureDDTW, distances.MeasureWDTW} {
		options := distances.DefaultElasticOptions()
		options.Measure = measure

		forward, forwardError := distances.Distance(collection[0], collection[1], options)
		require.NoError(testInstance, forwardError)
		backward, backwardError := distances.Distance(collection[1], collection[0], options)
		require.NoError(testInstance, backwardError)
		require.InDelta(testInstance, forward, backward, 1e-12)
	}
}

func TestWindowedDistanceBoundsUnconstrained(testInstance *testing.T) {
	collection, generationError := series.GenerateSynthetic(series.SyntheticOptions{Cases: 2, Channels: 1, Timepoints: 30, Seed: 3})
	require.NoError(testInstance, generationError)

	unconstrained, unconstrainedError := distances.Distance(collection[0], collection[1], distances.DefaultElasticOptions())
	require.NoError(testInstance, unconstrainedError)

	windowedOptions := distances.DefaultElasticOptions()
	windowedOptions.Bounding = distances.WindowBounding(0.1)
	windowed, windowedError := distances.Distance(collection[0], collection[1], windowedOptions)
	require.NoError(testInstance, windowedError)

	// A tighter admissible region can only raise the optimal cost.
	require.GreaterOrEqual(testInstance, windowed, unconstrained)
}

func TestDerivativeMeasureRejectsShortSeries(testInstance *testing.T) {
	options := distances.DefaultElasticOptions()
	options.Measure = distances.MeasureDDTW

	_, distanceError := distances.Distance(univariateCase(1, 2), univariateCase(3, 4), options)
	require.ErrorIs(testInstance, distanceError, distances.ErrDerivativeTooShort)
}

func TestDistanceValidatesInputs(testInstance *testing.T) {
	options := distances.DefaultElasticOptions()

	_, nilError := distances.Distance(nil, univariateCase(1, 2), options)
	require.ErrorIs(testInstance, nilError, distances.ErrNilSeries)

	_, channelError := distances.Distance(mat.NewDense(2, 3, nil), univariateCase(1, 2, 3), options)
	require.Error(testInstance, channelError)

	unknownOptions := options
	unknownOptions.Measure = distances.Measure("unknown")
	_, unknownError := distances.Distance(univariateCase(1, 2), univariateCase(1, 2), unknownOptions)
	require.Error(testInstance, unknownError)
}

func TestWeightedDistanceRejectsNegativePenalty(testInstance *testing.T) {
	options := distances.DefaultElasticOptions()
	options.Measure = distances.MeasureWDTW
	options.WeightPenalty = -1

	_, distanceError := distances.Distance(univariateCase(1, 2, 3), univariateCase(1, 2, 3), options)
	require.ErrorIs(testInstance, distanceError, distances.ErrNegativeWeightPenalty)
}

func TestAlignmentPathEndpointsAndMonotonicity(testInstance *testing.T) {
	firstCase := univariateCase(0, 1, 2, 3, 4, 5)
	secondCase := univariateCase(0, 0, 1, 2, 3, 5)

	path, pathCost, pathError := distances.AlignmentPath(firstCase, secondCase, distances.DefaultElasticOptions())
	require.NoError(testInstance, pathError)
	require.NotEmpty(testInstance, path)

	require.Equal(testInstance, distances.Coordinate{XIndex: 0, YIndex: 0}, path[0])
	require.Equal(testInstance, distances.Coordinate{XIndex: 5, YIndex: 5}, path[len(path)-1])

	for stepIndex := 1; stepIndex < len(path); stepIndex++ {
		xAdvance := path[stepIndex].XIndex - path[stepIndex-1].XIndex
		yAdvance := path[stepIndex].YIndex - path[stepIndex-1].YIndex
		require.GreaterOrEqual(testInstance, xAdvance, 0)
		require.GreaterOrEqual(testInstance, yAdvance, 0)
		require.LessOrEqual(testInstance, xAdvance, 1)
		require.LessOrEqual(testInstance, yAdvance, 1)
		require.Positive(testInstance, xAdvance+yAdvance)
	}

	directDistance, distanceError := distances.Distance(firstCase, secondCase, distances.DefaultElasticOptions())
	require.NoError(testInstance, distanceError)
	require.InDelta(testInstance, directDistance, pathCost, 1e-12)
}

func TestCostMatrixMarksInadmissibleCellsInfinite(testInstance *testing.T) {
	options := distances.DefaultElasticOptions()
	options.Bounding = distances.WindowBounding(0.1)

	costMatrix, costError := distances.CostMatrix(univariateCase(1, 2, 3, 4, 5, 6, 7, 8, 9, 10), univariateCase(1, 2, 3, 4, 5, 6, 7, 8, 9, 10), options)
	require.NoError(testInstance, costError)
	require.True(testInstance, math.IsInf(costMatrix.At(0, 9), 1))
	require.False(testInstance, math.IsInf(costMatrix.At(9, 9), 1))
}

func TestPairwiseDistanceMatrix(testInstance *testing.T) {
	collection, generationError := series.GenerateSynthetic(series.SyntheticOptions{Cases: 5, Channels: 1, Timepoints: 12, Seed: 11})
	require.NoError(testInstance, generationError)

	distanceMatrix, pairwiseError := distances.Pairwise(collection, distances.DefaultElasticOptions())
	require.NoError(testInstance, pairwiseError)

	rows, columns := distanceMatrix.Dims()
	require.Equal(testInstance, 5, rows)
	require.Equal(testInstance, 5, columns)

	for caseIndex := 0; caseIndex < rows; caseIndex++ {
		require.InDelta(testInstance, 0.0, distanceMatrix.At(caseIndex, caseIndex), 1e-12)
	}
	for firstIndex := 0; firstIndex < rows; firstIndex++ {
		for secondIndex := firstIndex + 1; secondIndex < columns; secondIndex++ {
			require.Equal(testInstance, distanceMatrix.At(firstIndex, secondIndex), distanceMatrix.At(secondIndex, firstIndex))
			require.GreaterOrEqual(testInstance, distanceMatrix.At(firstIndex, secondIndex), 0.0)
		}
	}
}

func TestPairwiseRejectsEmptyCollection(testInstance *testing.T) {
	_, pairwiseError := distances.Pairwise(series.Collection{}, distances.DefaultElasticOptions())
	require.ErrorIs(testInstance, pairwiseError, series.ErrEmptyCollection)
}
