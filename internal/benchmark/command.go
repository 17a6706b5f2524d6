package benchmark

import (
	"errors"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const (
	commandUseConstant                    = "benchmark"
	commandShortDescriptionConstant       = "Compare published estimator results across datasets"
	commandLongDescriptionConstant        = "benchmark downloads published per-dataset accuracy tables for the named estimators and reports mean accuracies, average ranks, pairwise records, and the best estimator per dataset."
	commandExecutionErrorTemplateConstant = "benchmark failed: %w"
	unexpectedArgumentsMessageConstant    = "benchmark does not accept positional arguments"
	missingEstimatorsMessageConstant      = "benchmark requires at least two estimators; pass --estimators or configure them"

	flagEstimatorsNameConstant         = "estimators"
	flagEstimatorsDescriptionConstant  = "Estimator names to compare"
	flagDatasetsNameConstant           = "datasets"
	flagDatasetsDescriptionConstant    = "Restrict the comparison to these datasets"
	flagBaseURLNameConstant            = "base-url"
	flagBaseURLDescriptionConstant     = "Root URL of the published results archive"
	flagTaskNameConstant               = "task"
	flagTaskDescriptionConstant        = "Results task path appended to the base URL"
	flagCacheDirNameConstant           = "cache-dir"
	flagCacheDirDescriptionConstant    = "Directory for the on-disk results cache"
	flagConcurrencyNameConstant        = "concurrency"
	flagConcurrencyDescriptionConstant = "Maximum concurrent result downloads"

	summaryHeaderConstant      = "estimator\tmean accuracy\taverage rank\tdataset wins"
	summaryRowTemplateConstant = "%s\t%.4f\t%.2f\t%d\n"
	bestHeaderConstant         = "\ndataset\tbest estimator"
	bestRowTemplateConstant    = "%s\t%s\n"
)

var (
	errUnexpectedArguments = errors.New(unexpectedArgumentsMessageConstant)
	errMissingEstimators   = errors.New(missingEstimatorsMessageConstant)
)

// LoggerProvider supplies a zap logger instance.
type LoggerProvider func() *zap.Logger

// ConfigurationProvider supplies the benchmark command configuration.
type ConfigurationProvider func() CommandConfiguration

// CommandBuilder assembles the Cobra command for estimator benchmarking.
type CommandBuilder struct {
	LoggerProvider        LoggerProvider
	ConfigurationProvider ConfigurationProvider
	Loader                *ResultsLoader
}

// Build constructs the benchmark command.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   commandUseConstant,
		Short: commandShortDescriptionConstant,
		Long:  commandLongDescriptionConstant,
		RunE:  builder.run,
	}

	command.Flags().StringSlice(flagEstimatorsNameConstant, nil, flagEstimatorsDescriptionConstant)
	command.Flags().StringSlice(flagDatasetsNameConstant, nil, flagDatasetsDescriptionConstant)
	command.Flags().String(flagBaseURLNameConstant, "", flagBaseURLDescriptionConstant)
	command.Flags().String(flagTaskNameConstant, "", flagTaskDescriptionConstant)
	command.Flags().String(flagCacheDirNameConstant, "", flagCacheDirDescriptionConstant)
	command.Flags().Int(flagConcurrencyNameConstant, 0, flagConcurrencyDescriptionConstant)

	return command, nil
}

func (builder *CommandBuilder) run(command *cobra.Command, arguments []string) error {
	if len(arguments) > 0 {
		return errUnexpectedArguments
	}

	configuration := builder.resolveConfiguration(command)
	if len(configuration.Estimators) < 2 {
		return errMissingEstimators
	}

	logger := builder.resolveLogger()
	loader := builder.Loader
	if loader == nil {
		loader = NewResultsLoader(logger, LoaderOptions{
			BaseURL:        configuration.BaseURL,
			Task:           configuration.Task,
			CacheDirectory: configuration.CacheDirectory,
			Concurrency:    configuration.Concurrency,
		})
	}

	resultsByEstimator, loadError := loader.Load(command.Context(), configuration.Estimators)
	if loadError != nil {
		return fmt.Errorf(commandExecutionErrorTemplateConstant, loadError)
	}

	if len(configuration.Datasets) > 0 {
		resultsByEstimator = restrictToDatasets(resultsByEstimator, configuration.Datasets)
	}

	comparison, comparisonError := Compare(resultsByEstimator)
	if comparisonError != nil {
		return fmt.Errorf(commandExecutionErrorTemplateConstant, comparisonError)
	}

	return renderComparison(command.OutOrStdout(), comparison)
}

func (builder *CommandBuilder) resolveConfiguration(command *cobra.Command) CommandConfiguration {
	configuration := DefaultCommandConfiguration()
	if builder.ConfigurationProvider != nil {
		provided := builder.ConfigurationProvider().sanitize()
		if provided.BaseURL != "" {
			configuration.BaseURL = provided.BaseURL
		}
		if provided.Task != "" {
			configuration.Task = provided.Task
		}
		if len(provided.Estimators) > 0 {
			configuration.Estimators = provided.Estimators
		}
		if len(provided.Datasets) > 0 {
			configuration.Datasets = provided.Datasets
		}
		if provided.CacheDirectory != "" {
			configuration.CacheDirectory = provided.CacheDirectory
		}
		if provided.Concurrency > 0 {
			configuration.Concurrency = provided.Concurrency
		}
	}

	if estimatorsValue, _ := command.Flags().GetStringSlice(flagEstimatorsNameConstant); len(estimatorsValue) > 0 {
		configuration.Estimators = sanitizeNames(estimatorsValue)
	}
	if datasetsValue, _ := command.Flags().GetStringSlice(flagDatasetsNameConstant); len(datasetsValue) > 0 {
		configuration.Datasets = sanitizeNames(datasetsValue)
	}
	if baseURLValue, _ := command.Flags().GetString(flagBaseURLNameConstant); baseURLValue != "" {
		configuration.BaseURL = baseURLValue
	}
	if taskValue, _ := command.Flags().GetString(flagTaskNameConstant); taskValue != "" {
		configuration.Task = taskValue
	}
	if cacheDirValue, _ := command.Flags().GetString(flagCacheDirNameConstant); cacheDirValue != "" {
		configuration.CacheDirectory = cacheDirValue
	}
	if concurrencyValue, _ := command.Flags().GetInt(flagConcurrencyNameConstant); concurrencyValue > 0 {
		configuration.Concurrency = concurrencyValue
	}

	return configuration
}

func (builder *CommandBuilder) resolveLogger() *zap.Logger {
	if builder.LoggerProvider == nil {
		return zap.NewNop()
	}

	logger := builder.LoggerProvider()
	if logger == nil {
		return zap.NewNop()
	}

	return logger
}

// restrictToDatasets drops every accuracy row outside the requested datasets.
func restrictToDatasets(resultsByEstimator map[string]EstimatorResults, datasetNames []string) map[string]EstimatorResults {
	requested := make(map[string]struct{}, len(datasetNames))
	for _, datasetName := range datasetNames {
		requested[datasetName] = struct{}{}
	}

	restricted := make(map[string]EstimatorResults, len(resultsByEstimator))
	for estimatorName, estimatorResults := range resultsByEstimator {
		filteredAccuracies := make(map[string][]float64, len(requested))
		for datasetName, resamples := range estimatorResults.Accuracies {
			if _, wanted := requested[datasetName]; wanted {
				filteredAccuracies[datasetName] = resamples
			}
		}
		restricted[estimatorName] = EstimatorResults{Estimator: estimatorName, Accuracies: filteredAccuracies}
	}
	return restricted
}

func renderComparison(output io.Writer, comparison *Comparison) error {
	tableWriter := tabwriter.NewWriter(output, 0, 4, 2, ' ', 0)

	fmt.Fprintln(tableWriter, summaryHeaderConstant)
	for _, summary := range comparison.Summaries {
		fmt.Fprintf(tableWriter, summaryRowTemplateConstant,
			summary.Estimator, summary.MeanAccuracy, summary.AverageRank, summary.DatasetWins)
	}

	fmt.Fprintln(tableWriter, bestHeaderConstant)
	for _, datasetName := range comparison.Datasets {
		fmt.Fprintf(tableWriter, bestRowTemplateConstant, datasetName, comparison.BestPerDataset[datasetName])
	}

	return tableWriter.Flush()
}
