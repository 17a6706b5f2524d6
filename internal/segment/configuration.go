package segment

import "strings"

// Segmentation modes selectable from configuration.
const (
	ModeInterval = "interval"
	ModeRandom   = "random"
	ModeSliding  = "sliding"
)

// CommandConfiguration captures configuration values for the segment command.
type CommandConfiguration struct {
	InputPath     string `mapstructure:"input"`
	OutputPath    string `mapstructure:"output"`
	Mode          string `mapstructure:"mode"`
	IntervalCount int    `mapstructure:"intervals"`
	WindowLength  int    `mapstructure:"window"`
	MinLength     int    `mapstructure:"min_length"`
	MaxLength     int    `mapstructure:"max_length"`
	Seed          int64  `mapstructure:"seed"`
}

// DefaultCommandConfiguration provides baseline configuration values for segmentation.
func DefaultCommandConfiguration() CommandConfiguration {
	return CommandConfiguration{Mode: ModeInterval}
}

// sanitize trims configuration values without applying implicit defaults.
func (configuration CommandConfiguration) sanitize() CommandConfiguration {
	sanitized := configuration
	sanitized.InputPath = strings.TrimSpace(configuration.InputPath)
	sanitized.OutputPath = strings.TrimSpace(configuration.OutputPath)
	sanitized.Mode = strings.TrimSpace(strings.ToLower(configuration.Mode))
	return sanitized
}
