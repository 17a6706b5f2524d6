package cli_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/andregdmitri/aeon/cmd/cli"
)

func TestEmbeddedDefaultConfigurationIsValidYAML(testInstance *testing.T) {
	configurationData, configurationType := cli.EmbeddedDefaultConfiguration()
	require.Equal(testInstance, "yaml", configurationType)

	var decoded struct {
		Common struct {
			LogLevel  string `yaml:"log_level"`
			LogFormat string `yaml:"log_format"`
		} `yaml:"common"`
		Tools struct {
			Benchmark struct {
				BaseURL     string `yaml:"base_url"`
				Task        string `yaml:"task"`
				Concurrency int    `yaml:"concurrency"`
			} `yaml:"benchmark"`
			Cluster struct {
				Clusters int `yaml:"clusters"`
				Restarts int `yaml:"restarts"`
			} `yaml:"cluster"`
			Classify struct {
				SubsequenceLength int `yaml:"subsequence_length"`
			} `yaml:"classify"`
			Segment struct {
				Mode string `yaml:"mode"`
			} `yaml:"segment"`
		} `yaml:"tools"`
	}
	require.NoError(testInstance, yaml.Unmarshal(configurationData, &decoded))

	require.Equal(testInstance, "info", decoded.Common.LogLevel)
	require.Equal(testInstance, "structured", decoded.Common.LogFormat)
	require.NotEmpty(testInstance, decoded.Tools.Benchmark.BaseURL)
	require.Positive(testInstance, decoded.Tools.Benchmark.Concurrency)
	require.Positive(testInstance, decoded.Tools.Cluster.Clusters)
	require.Positive(testInstance, decoded.Tools.Classify.SubsequenceLength)
	require.Equal(testInstance, "interval", decoded.Tools.Segment.Mode)
}

func TestEmbeddedDefaultConfigurationReturnsCopies(testInstance *testing.T) {
	firstCopy, _ := cli.EmbeddedDefaultConfiguration()
	firstCopy[0] = '#'

	secondCopy, _ := cli.EmbeddedDefaultConfiguration()
	require.NotEqual(testInstance, firstCopy[0], secondCopy[0])
}
