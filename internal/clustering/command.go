package clustering

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/andregdmitri/aeon/internal/datasets"
)

const (
	commandUseConstant                    = "cluster"
	commandShortDescriptionConstant       = "Cluster a collection with kernel k-means"
	commandLongDescriptionConstant        = "cluster reads a labelled CSV collection and partitions it with kernel k-means over the global alignment kernel."
	commandExecutionErrorTemplateConstant = "clustering failed: %w"
	unexpectedArgumentsMessageConstant    = "cluster does not accept positional arguments"
	missingInputMessageConstant           = "cluster requires an input CSV; pass --input or configure it"

	flagInputNameConstant                = "input"
	flagInputDescriptionConstant         = "Path to the labelled CSV collection"
	flagClustersNameConstant             = "clusters"
	flagClustersDescriptionConstant      = "Number of clusters"
	flagRestartsNameConstant             = "restarts"
	flagRestartsDescriptionConstant      = "Number of random restarts"
	flagMaxIterationsNameConstant        = "max-iterations"
	flagMaxIterationsDescriptionConstant = "Maximum relabeling iterations per restart"
	flagSigmaNameConstant                = "sigma"
	flagSigmaDescriptionConstant         = "Kernel bandwidth; zero derives it from the data"
	flagSeedNameConstant                 = "seed"
	flagSeedDescriptionConstant          = "Random seed"

	caseLabelRowTemplateConstant = "%d\t%d\n"
	inertiaLineTemplateConstant  = "inertia\t%.6f\n"

	casesClusteredLogMessageConstant = "collection clustered"
	inputLogFieldConstant            = "input"
	casesLogFieldConstant            = "cases"
	clustersLogFieldConstant         = "clusters"
	iterationsLogFieldConstant       = "iterations"
)

var (
	errUnexpectedArguments = errors.New(unexpectedArgumentsMessageConstant)
	errMissingInput        = errors.New(missingInputMessageConstant)
)

// LoggerProvider supplies a zap logger instance.
type LoggerProvider func() *zap.Logger

// ConfigurationProvider supplies the cluster command configuration.
type ConfigurationProvider func() CommandConfiguration

// CommandBuilder assembles the Cobra command for kernel k-means clustering.
type CommandBuilder struct {
	LoggerProvider        LoggerProvider
	ConfigurationProvider ConfigurationProvider
}

// Build constructs the cluster command.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	defaults := DefaultKernelKMeansOptions()

	command := &cobra.Command{
		Use:   commandUseConstant,
		Short: commandShortDescriptionConstant,
		Long:  commandLongDescriptionConstant,
		RunE:  builder.run,
	}

	command.Flags().String(flagInputNameConstant, "", flagInputDescriptionConstant)
	command.Flags().Int(flagClustersNameConstant, defaults.NClusters, flagClustersDescriptionConstant)
	command.Flags().Int(flagRestartsNameConstant, defaults.NInit, flagRestartsDescriptionConstant)
	command.Flags().Int(flagMaxIterationsNameConstant, defaults.MaxIterations, flagMaxIterationsDescriptionConstant)
	command.Flags().Float64(flagSigmaNameConstant, defaults.Sigma, flagSigmaDescriptionConstant)
	command.Flags().Int64(flagSeedNameConstant, defaults.Seed, flagSeedDescriptionConstant)

	return command, nil
}

func (builder *CommandBuilder) run(command *cobra.Command, arguments []string) error {
	if len(arguments) > 0 {
		return errUnexpectedArguments
	}

	inputPath, options := builder.resolveOptions(command)
	if inputPath == "" {
		return errMissingInput
	}

	dataset, datasetError := datasets.ReadLabelled(inputPath)
	if datasetError != nil {
		return fmt.Errorf(commandExecutionErrorTemplateConstant, datasetError)
	}

	clusterer, clustererError := NewKernelKMeans(options)
	if clustererError != nil {
		return fmt.Errorf(commandExecutionErrorTemplateConstant, clustererError)
	}

	if fitError := clusterer.Fit(dataset.Collection); fitError != nil {
		return fmt.Errorf(commandExecutionErrorTemplateConstant, fitError)
	}

	labels, labelsError := clusterer.Labels()
	if labelsError != nil {
		return fmt.Errorf(commandExecutionErrorTemplateConstant, labelsError)
	}
	inertia, inertiaError := clusterer.Inertia()
	if inertiaError != nil {
		return fmt.Errorf(commandExecutionErrorTemplateConstant, inertiaError)
	}
	iterations, iterationsError := clusterer.Iterations()
	if iterationsError != nil {
		return fmt.Errorf(commandExecutionErrorTemplateConstant, iterationsError)
	}

	builder.resolveLogger().Info(casesClusteredLogMessageConstant,
		zap.String(inputLogFieldConstant, inputPath),
		zap.Int(casesLogFieldConstant, len(labels)),
		zap.Int(clustersLogFieldConstant, options.NClusters),
		zap.Int(iterationsLogFieldConstant, iterations),
	)

	output := command.OutOrStdout()
	for caseIndex, clusterLabel := range labels {
		fmt.Fprintf(output, caseLabelRowTemplateConstant, caseIndex, clusterLabel)
	}
	fmt.Fprintf(output, inertiaLineTemplateConstant, inertia)

	return nil
}

func (builder *CommandBuilder) resolveOptions(command *cobra.Command) (string, KernelKMeansOptions) {
	options := DefaultKernelKMeansOptions()
	inputPath := ""

	if builder.ConfigurationProvider != nil {
		configuration := builder.ConfigurationProvider().sanitize()
		inputPath = configuration.InputPath
		if configuration.Clusters > 0 {
			options.NClusters = configuration.Clusters
		}
		if configuration.Restarts > 0 {
			options.NInit = configuration.Restarts
		}
		if configuration.MaxIterations > 0 {
			options.MaxIterations = configuration.MaxIterations
		}
		if configuration.Sigma > 0 {
			options.Sigma = configuration.Sigma
		}
		if configuration.Seed != 0 {
			options.Seed = configuration.Seed
		}
	}

	if command.Flags().Changed(flagInputNameConstant) {
		inputPath, _ = command.Flags().GetString(flagInputNameConstant)
	}
	if command.Flags().Changed(flagClustersNameConstant) {
		options.NClusters, _ = command.Flags().GetInt(flagClustersNameConstant)
	}
	if command.Flags().Changed(flagRestartsNameConstant) {
		options.NInit, _ = command.Flags().GetInt(flagRestartsNameConstant)
	}
	if command.Flags().Changed(flagMaxIterationsNameConstant) {
		options.MaxIterations, _ = command.Flags().GetInt(flagMaxIterationsNameConstant)
	}
	if command.Flags().Changed(flagSigmaNameConstant) {
		options.Sigma, _ = command.Flags().GetFloat64(flagSigmaNameConstant)
	}
	if command.Flags().Changed(flagSeedNameConstant) {
		options.Seed, _ = command.Flags().GetInt64(flagSeedNameConstant)
	}

	return inputPath, options
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
