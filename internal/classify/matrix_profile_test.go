package classify_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/andregdmitri/aeon/internal/classify"
	"github.com/andregdmitri/aeon/internal/series"
)

func TestNewMatrixProfileTransformerDefaultsLength(testInstance *testing.T) {
	transformer, creationError := classify.NewMatrixProfileTransformer(0)
	require.NoError(testInstance, creationError)
	require.Equal(testInstance, 10, transformer.SubsequenceLength())
}

func TestNewMatrixProfileTransformerRejectsLengthOne(testInstance *testing.T) {
	_, creationError := classify.NewMatrixProfileTransformer(1)
	require.ErrorIs(testInstance, creationError, classify.ErrSubsequenceTooShort)
}

func TestTransformProfileShape(testInstance *testing.T) {
	transformer, creationError := classify.NewMatrixProfileTransformer(4)
	require.NoError(testInstance, creationError)

	collection, generationError := series.GenerateSynthetic(series.SyntheticOptions{Cases: 3, Channels: 1, Timepoints: 12, Seed: 2})
	require.NoError(testInstance, generationError)

	profiles, transformError := transformer.Transform(collection)
	require.NoError(testInstance, transformError)
	require.Len(testInstance, profiles, 3)
	for _, profile := range profiles {
		require.Len(testInstance, profile, 12-4+1)
		for _, profileValue := range profile {
			require.GreaterOrEqual(testInstance, profileValue, 0.0)
		}
	}
}

func TestTransformDetectsRepeatedMotif(testInstance *testing.T) {
	transformer, creationError := classify.NewMatrixProfileTransformer(4)
	require.NoError(testInstance, creationError)

	// The ramp motif at the start repeats at the end; its profile entries stay small.
	motifSeries := series.NewUnivariateCollection([][]float64{
		{0, 1, 2, 3, 9, 2, 7, 1, 8, 0, 1, 2, 3},
	})

	profiles, transformError := transformer.Transform(motifSeries)
	require.NoError(testInstance, transformError)

	profile := profiles[0]
	require.InDelta(testInstance, 0.0, profile[0], 1e-9)
	require.InDelta(testInstance, 0.0, profile[len(profile)-1], 1e-9)
}

func TestTransformRejectsMultivariateAndShortSeries(testInstance *testing.T) {
	transformer, creationError := classify.NewMatrixProfileTransformer(4)
	require.NoError(testInstance, creationError)

	_, multivariateError := transformer.Transform(series.Collection{mat.NewDense(2, 12, nil)})
	require.ErrorIs(testInstance, multivariateError, series.ErrMultivariateUnsupported)

	_, shortError := transformer.Transform(series.NewUnivariateCollection([][]float64{{1, 2, 3}}))
	require.Error(testInstance, shortError)
}

func TestTransformConstantSeriesYieldsZeroProfile(testInstance *testing.T) {
	transformer, creationError := classify.NewMatrixProfileTransformer(3)
	require.NoError(testInstance, creationError)

	profiles, transformError := transformer.Transform(series.NewUnivariateCollection([][]float64{{5, 5, 5, 5, 5, 5, 5, 5}}))
	require.NoError(testInstance, transformError)
	for _, profileValue := range profiles[0] {
		require.InDelta(testInstance, 0.0, profileValue, 1e-12)
	}
}
