package clustering_test

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/andregdmitri/aeon/internal/clustering"
	"github.com/andregdmitri/aeon/internal/datasets"
	"github.com/andregdmitri/aeon/internal/series"
)

func writeClusteringDataset(testInstance *testing.T) string {
	testInstance.Helper()

	caseValues := [][]float64{
		{0.1, 0.2, 0.1, 0.3, 0.2, 0.1},
		{0.2, 0.1, 0.3, 0.2, 0.1, 0.2},
		{5.1, 5.2, 5.1, 5.3, 5.2, 5.1},
		{5.2, 5.1, 5.3, 5.2, 5.1, 5.2},
	}
	collection := series.NewUnivariateCollection(caseValues)

	datasetPath := filepath.Join(testInstance.TempDir(), "input.csv")
	writeError := datasets.WriteLabelled(datasetPath, datasets.Dataset{
		Collection: collection,
		Labels:     datasets.UnlabelledLabels(len(collection)),
	})
	require.NoError(testInstance, writeError)
	return datasetPath
}

func TestCommandBuilderBuild(testInstance *testing.T) {
	builder := &clustering.CommandBuilder{}
	command, buildError := builder.Build()
	require.NoError(testInstance, buildError)
	require.Equal(testInstance, "cluster", command.Use)
	require.NotNil(testInstance, command.Flags().Lookup("input"))
	require.NotNil(testInstance, command.Flags().Lookup("clusters"))
	require.NotNil(testInstance, command.Flags().Lookup("sigma"))
}

func TestCommandRequiresInput(testInstance *testing.T) {
	builder := &clustering.CommandBuilder{}
	command, buildError := builder.Build()
	require.NoError(testInstance, buildError)

	command.SetOut(&bytes.Buffer{})
	command.SetErr(&bytes.Buffer{})

	executionError := command.ExecuteContext(context.Background())
	require.ErrorContains(testInstance, executionError, "input")
}

func TestCommandRejectsPositionalArguments(testInstance *testing.T) {
	builder := &clustering.CommandBuilder{}
	command, buildError := builder.Build()
	require.NoError(testInstance, buildError)

	command.SetArgs([]string{"unexpected"})
	command.SetOut(&bytes.Buffer{})
	command.SetErr(&bytes.Buffer{})

	executionError := command.ExecuteContext(context.Background())
	require.ErrorContains(testInstance, executionError, "positional")
}

func TestCommandClustersCollection(testInstance *testing.T) {
	datasetPath := writeClusteringDataset(testInstance)

	builder := &clustering.CommandBuilder{
		ConfigurationProvider: func() clustering.CommandConfiguration {
			return clustering.CommandConfiguration{
				InputPath: datasetPath,
				Clusters:  2,
				Restarts:  4,
				Sigma:     1.0,
				Seed:      1,
			}
		},
	}
	command, buildError := builder.Build()
	require.NoError(testInstance, buildError)

	outputBuffer := &bytes.Buffer{}
	command.SetOut(outputBuffer)
	command.SetErr(&bytes.Buffer{})

	executionError := command.ExecuteContext(context.Background())
	require.NoError(testInstance, executionError)
	require.Contains(testInstance, outputBuffer.String(), "inertia")
}
