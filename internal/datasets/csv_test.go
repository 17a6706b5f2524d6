package datasets_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/andregdmitri/aeon/internal/datasets"
	"github.com/andregdmitri/aeon/internal/series"
)

const (
	testDatasetFileNameConstant    = "dataset.csv"
	testDatasetContentConstant     = "alpha,1,2,3\nbeta,4,5,6\n"
	testRowTooShortContentConstant = "alpha\n"
	testBadValueContentConstant    = "alpha,1,oops,3\n"
)

func writeDatasetFile(testInstance *testing.T, content string) string {
	testInstance.Helper()
	datasetPath := filepath.Join(testInstance.TempDir(), testDatasetFileNameConstant)
	require.NoError(testInstance, os.WriteFile(datasetPath, []byte(content), 0o644))
	return datasetPath
}

func TestReadLabelledParsesRows(testInstance *testing.T) {
	datasetPath := writeDatasetFile(testInstance, testDatasetContentConstant)

	dataset, readError := datasets.ReadLabelled(datasetPath)
	require.NoError(testInstance, readError)
	require.Equal(testInstance, []string{"alpha", "beta"}, dataset.Labels)
	require.Len(testInstance, dataset.Collection, 2)

	firstValues, valuesError := dataset.Collection.UnivariateValues(0)
	require.NoError(testInstance, valuesError)
	require.Equal(testInstance, []float64{1, 2, 3}, firstValues)
}

func TestReadLabelledRejectsEmptyFile(testInstance *testing.T) {
	datasetPath := writeDatasetFile(testInstance, "")

	_, readError := datasets.ReadLabelled(datasetPath)
	require.ErrorIs(testInstance, readError, datasets.ErrEmptyDataset)
}

func TestReadLabelledRejectsShortRow(testInstance *testing.T) {
	datasetPath := writeDatasetFile(testInstance, testRowTooShortContentConstant)

	_, readError := datasets.ReadLabelled(datasetPath)
	require.Error(testInstance, readError)
}

func TestReadLabelledRejectsUnparsableValue(testInstance *testing.T) {
	datasetPath := writeDatasetFile(testInstance, testBadValueContentConstant)

	_, readError := datasets.ReadLabelled(datasetPath)
	require.Error(testInstance, readError)
	require.Contains(testInstance, readError.Error(), "oops")
}

func TestReadLabelledReportsMissingFile(testInstance *testing.T) {
	_, readError := datasets.ReadLabelled(filepath.Join(testInstance.TempDir(), "absent.csv"))
	require.Error(testInstance, readError)
}

func TestWriteLabelledRoundTrip(testInstance *testing.T) {
	datasetPath := filepath.Join(testInstance.TempDir(), testDatasetFileNameConstant)
	original := datasets.Dataset{
		Collection: series.NewUnivariateCollection([][]float64{{1.5, -2, 3}, {0, 0.25, 8}}),
		Labels:     []string{"alpha", "beta"},
	}

	require.NoError(testInstance, datasets.WriteLabelled(datasetPath, original))

	reloaded, readError := datasets.ReadLabelled(datasetPath)
	require.NoError(testInstance, readError)
	require.Equal(testInstance, original.Labels, reloaded.Labels)
	require.Len(testInstance, reloaded.Collection, 2)

	for caseIndex := range original.Collection {
		originalValues, _ := original.Collection.UnivariateValues(caseIndex)
		reloadedValues, _ := reloaded.Collection.UnivariateValues(caseIndex)
		require.Equal(testInstance, originalValues, reloadedValues)
	}
}

func TestWriteLabelledValidatesLabelCount(testInstance *testing.T) {
	datasetPath := filepath.Join(testInstance.TempDir(), testDatasetFileNameConstant)
	dataset := datasets.Dataset{
		Collection: series.NewUnivariateCollection([][]float64{{1, 2}}),
		Labels:     []string{"alpha", "extra"},
	}

	require.Error(testInstance, datasets.WriteLabelled(datasetPath, dataset))
}

func TestUnlabelledLabels(testInstance *testing.T) {
	labels := datasets.UnlabelledLabels(3)
	require.Len(testInstance, labels, 3)
	for _, label := range labels {
		require.Empty(testInstance, label)
	}
}
