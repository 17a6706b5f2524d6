package classify

import "strings"

// CommandConfiguration captures configuration values for the classify command.
type CommandConfiguration struct {
	TrainPath         string `mapstructure:"train"`
	TestPath          string `mapstructure:"test"`
	SubsequenceLength int    `mapstructure:"subsequence_length"`
}

// DefaultCommandConfiguration provides baseline configuration values for classification.
func DefaultCommandConfiguration() CommandConfiguration {
	return CommandConfiguration{}
}

// sanitize trims configuration values without applying implicit defaults.
func (configuration CommandConfiguration) sanitize() CommandConfiguration {
	sanitized := configuration
	sanitized.TrainPath = strings.TrimSpace(configuration.TrainPath)
	sanitized.TestPath = strings.TrimSpace(configuration.TestPath)
	return sanitized
}
