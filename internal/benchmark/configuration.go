package benchmark

import "strings"

const (
	defaultResultsBaseURLConstant = "https://timeseriesclassification.com/results/ReferenceResults"
	defaultTaskNameConstant       = "classification/accuracy"
)

// CommandConfiguration captures configuration values for the benchmark command.
type CommandConfiguration struct {
	BaseURL        string   `mapstructure:"base_url"`
	Task           string   `mapstructure:"task"`
	Estimators     []string `mapstructure:"estimators"`
	Datasets       []string `mapstructure:"datasets"`
	CacheDirectory string   `mapstructure:"cache_directory"`
	Concurrency    int      `mapstructure:"concurrency"`
}

// DefaultCommandConfiguration provides baseline configuration values for benchmarking.
func DefaultCommandConfiguration() CommandConfiguration {
	return CommandConfiguration{
		BaseURL: defaultResultsBaseURLConstant,
		Task:    defaultTaskNameConstant,
	}
}

// sanitize trims configuration values without applying implicit defaults.
func (configuration CommandConfiguration) sanitize() CommandConfiguration {
	sanitized := configuration

	sanitized.BaseURL = strings.TrimSpace(configuration.BaseURL)
	sanitized.Task = strings.TrimSpace(configuration.Task)
	sanitized.CacheDirectory = strings.TrimSpace(configuration.CacheDirectory)
	sanitized.Estimators = sanitizeNames(configuration.Estimators)
	sanitized.Datasets = sanitizeNames(configuration.Datasets)

	return sanitized
}

func sanitizeNames(raw []string) []string {
	sanitized := make([]string, 0, len(raw))
	for _, candidate := range raw {
		trimmed := strings.TrimSpace(candidate)
		if len(trimmed) == 0 {
			continue
		}
		sanitized = append(sanitized, trimmed)
	}
	return sanitized
}
