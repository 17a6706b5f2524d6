package clustering

import "strings"

// CommandConfiguration captures configuration values for the cluster command.
type CommandConfiguration struct {
	InputPath     string  `mapstructure:"input"`
	Clusters      int     `mapstructure:"clusters"`
	Restarts      int     `mapstructure:"restarts"`
	MaxIterations int     `mapstructure:"max_iterations"`
	Sigma         float64 `mapstructure:"sigma"`
	Seed          int64   `mapstructure:"seed"`
}

// DefaultCommandConfiguration provides baseline configuration values for clustering.
func DefaultCommandConfiguration() CommandConfiguration {
	return CommandConfiguration{}
}

// sanitize trims configuration values without applying implicit defaults.
func (configuration CommandConfiguration) sanitize() CommandConfiguration {
	sanitized := configuration
	sanitized.InputPath = strings.TrimSpace(configuration.InputPath)
	return sanitized
}
