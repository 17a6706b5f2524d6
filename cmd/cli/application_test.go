package cli_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	mapstructure "github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"

	"github.com/andregdmitri/aeon/cmd/cli"
)

const (
	testConfigurationFileNameConstant = "config.yaml"
	testConfigurationContentConstant  = "common:\n  log_level: debug\n  log_format: console\ntools:\n  benchmark:\n    task: regression/rmse\n  cluster:\n    clusters: 3\n"
	testBenchmarkCommandNameConstant  = "benchmark"
	testClusterCommandNameConstant    = "cluster"
	testClassifyCommandNameConstant   = "classify"
	testSegmentCommandNameConstant    = "segment"
)

func TestApplicationRegistersSubcommands(testInstance *testing.T) {
	rootCommand := cli.NewApplication().RootCommand()

	registeredNames := make(map[string]bool)
	for _, subcommand := range rootCommand.Commands() {
		registeredNames[subcommand.Name()] = true
	}

	for _, expectedName := range []string{
		testBenchmarkCommandNameConstant,
		testClusterCommandNameConstant,
		testClassifyCommandNameConstant,
		testSegmentCommandNameConstant,
	} {
		require.True(testInstance, registeredNames[expectedName], expectedName)
	}
}

func TestApplicationRootCommandShowsHelp(testInstance *testing.T) {
	rootCommand := cli.NewApplication().RootCommand()

	outputBuffer := &bytes.Buffer{}
	rootCommand.SetOut(outputBuffer)
	rootCommand.SetErr(outputBuffer)
	rootCommand.SetArgs([]string{})

	require.NoError(testInstance, rootCommand.Execute())
	require.Contains(testInstance, outputBuffer.String(), testBenchmarkCommandNameConstant)
}

func TestApplicationLoadsConfigurationFile(testInstance *testing.T) {
	temporaryDirectory := testInstance.TempDir()
	configurationPath := filepath.Join(temporaryDirectory, testConfigurationFileNameConstant)
	require.NoError(testInstance, os.WriteFile(configurationPath, []byte(testConfigurationContentConstant), 0o600))

	application := cli.NewApplication()
	rootCommand := application.RootCommand()
	rootCommand.SetOut(&bytes.Buffer{})
	rootCommand.SetErr(&bytes.Buffer{})
	rootCommand.SetArgs([]string{"--config", configurationPath})

	require.NoError(testInstance, rootCommand.Execute())

	configuration := application.Configuration()
	require.Equal(testInstance, "debug", configuration.Common.LogLevel)
	require.Equal(testInstance, "console", configuration.Common.LogFormat)
	require.Equal(testInstance, "regression/rmse", configuration.Tools.Benchmark.Task)
	require.Equal(testInstance, 3, configuration.Tools.Cluster.Clusters)
}

func TestApplicationRejectsUnsupportedLogLevel(testInstance *testing.T) {
	rootCommand := cli.NewApplication().RootCommand()
	rootCommand.SetOut(&bytes.Buffer{})
	rootCommand.SetErr(&bytes.Buffer{})
	rootCommand.SetArgs([]string{"--log-level", "verbose"})

	require.Error(testInstance, rootCommand.Execute())
}

func TestEmbeddedDefaultConfigurationDecodes(testInstance *testing.T) {
	configurationData, configurationType := cli.EmbeddedDefaultConfiguration()
	require.NotEmpty(testInstance, configurationData)

	viperInstance := viper.New()
	viperInstance.SetConfigType(configurationType)
	require.NoError(testInstance, viperInstance.ReadConfig(bytes.NewReader(configurationData)))

	var configuration cli.ApplicationConfiguration
	decoder, decoderError := mapstructure.NewDecoder(&mapstructure.DecoderConfig{TagName: "mapstructure", Result: &configuration})
	require.NoError(testInstance, decoderError)
	require.NoError(testInstance, decoder.Decode(viperInstance.AllSettings()))

	require.Equal(testInstance, "info", configuration.Common.LogLevel)
	require.Equal(testInstance, "structured", configuration.Common.LogFormat)
	require.Equal(testInstance, "classification/accuracy", configuration.Tools.Benchmark.Task)
	require.Equal(testInstance, 8, configuration.Tools.Cluster.Clusters)
	require.Equal(testInstance, 10, configuration.Tools.Classify.SubsequenceLength)
	require.Equal(testInstance, "interval", configuration.Tools.Segment.Mode)
}
