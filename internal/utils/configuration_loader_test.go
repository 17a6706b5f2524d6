package utils_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/andregdmitri/aeon/internal/utils"
)

const (
	testConfigurationNameConstant      = "config"
	testConfigurationTypeConstant      = "yaml"
	testEnvironmentPrefixConstant      = "AEONTEST"
	testConfigurationFileNameConstant  = "config.yaml"
	testConfigurationContentConstant   = "common:\n  log_level: debug\n"
	testEmbeddedConfigurationConstant  = "common:\n  log_level: warn\n  log_format: console\n"
	testMalformedConfigurationConstant = "common: [\n"
)

type testConfiguration struct {
	Common struct {
		LogLevel  string `mapstructure:"log_level"`
		LogFormat string `mapstructure:"log_format"`
	} `mapstructure:"common"`
}

func writeConfigurationFile(testInstance *testing.T, content string) string {
	testInstance.Helper()
	configurationPath := filepath.Join(testInstance.TempDir(), testConfigurationFileNameConstant)
	require.NoError(testInstance, os.WriteFile(configurationPath, []byte(content), 0o644))
	return configurationPath
}

func TestConfigurationLoaderReadsFile(testInstance *testing.T) {
	configurationPath := writeConfigurationFile(testInstance, testConfigurationContentConstant)

	loader := utils.NewConfigurationLoader(utils.ConfigurationLoaderOptions{
		ConfigurationName: testConfigurationNameConstant,
		ConfigurationType: testConfigurationTypeConstant,
		EnvironmentPrefix: testEnvironmentPrefixConstant,
	})

	var configuration testConfiguration
	loadedConfiguration, loadError := loader.LoadConfiguration(configurationPath, nil, &configuration)
	require.NoError(testInstance, loadError)
	require.Equal(testInstance, configurationPath, loadedConfiguration.ConfigFileUsed)
	require.Equal(testInstance, "debug", configuration.Common.LogLevel)
}

func TestConfigurationLoaderAppliesDefaultsWithoutFile(testInstance *testing.T) {
	loader := utils.NewConfigurationLoader(utils.ConfigurationLoaderOptions{
		ConfigurationName: testConfigurationNameConstant,
		ConfigurationType: testConfigurationTypeConstant,
		EnvironmentPrefix: testEnvironmentPrefixConstant,
		SearchPaths:       []string{testInstance.TempDir()},
	})

	var configuration testConfiguration
	defaults := map[string]any{"common.log_level": "info"}
	_, loadError := loader.LoadConfiguration("", defaults, &configuration)
	require.NoError(testInstance, loadError)
	require.Equal(testInstance, "info", configuration.Common.LogLevel)
}

func TestConfigurationLoaderMergesEmbeddedConfiguration(testInstance *testing.T) {
	loader := utils.NewConfigurationLoader(utils.ConfigurationLoaderOptions{
		ConfigurationName:     testConfigurationNameConstant,
		ConfigurationType:     testConfigurationTypeConstant,
		EnvironmentPrefix:     testEnvironmentPrefixConstant,
		SearchPaths:           []string{testInstance.TempDir()},
		EmbeddedConfiguration: []byte(testEmbeddedConfigurationConstant),
	})

	var configuration testConfiguration
	_, loadError := loader.LoadConfiguration("", nil, &configuration)
	require.NoError(testInstance, loadError)
	require.Equal(testInstance, "warn", configuration.Common.LogLevel)
	require.Equal(testInstance, "console", configuration.Common.LogFormat)
}

func TestConfigurationLoaderFilePrecedesEmbeddedConfiguration(testInstance *testing.T) {
	configurationPath := writeConfigurationFile(testInstance, testConfigurationContentConstant)

	loader := utils.NewConfigurationLoader(utils.ConfigurationLoaderOptions{
		ConfigurationName:     testConfigurationNameConstant,
		ConfigurationType:     testConfigurationTypeConstant,
		EnvironmentPrefix:     testEnvironmentPrefixConstant,
		EmbeddedConfiguration: []byte(testEmbeddedConfigurationConstant),
	})

	var configuration testConfiguration
	_, loadError := loader.LoadConfiguration(configurationPath, nil, &configuration)
	require.NoError(testInstance, loadError)
	require.Equal(testInstance, "debug", configuration.Common.LogLevel)
	require.Equal(testInstance, "console", configuration.Common.LogFormat)
}

func TestConfigurationLoaderReportsMalformedFile(testInstance *testing.T) {
	configurationPath := writeConfigurationFile(testInstance, testMalformedConfigurationConstant)

	loader := utils.NewConfigurationLoader(utils.ConfigurationLoaderOptions{
		ConfigurationName: testConfigurationNameConstant,
		ConfigurationType: testConfigurationTypeConstant,
		EnvironmentPrefix: testEnvironmentPrefixConstant,
	})

	var configuration testConfiguration
	_, loadError := loader.LoadConfiguration(configurationPath, nil, &configuration)
	require.Error(testInstance, loadError)
}
