package segment

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/andregdmitri/aeon/internal/datasets"
	"github.com/andregdmitri/aeon/internal/series"
)

const (
	commandUseConstant                    = "segment"
	commandShortDescriptionConstant       = "Segment a collection into intervals or sliding windows"
	commandLongDescriptionConstant        = "segment reads a labelled CSV collection and slices every case into fixed intervals, randomly sampled intervals, or hop-1 sliding windows."
	commandExecutionErrorTemplateConstant = "segmentation failed: %w"
	unexpectedArgumentsMessageConstant    = "segment does not accept positional arguments"
	missingInputMessageConstant           = "segment requires an input CSV; pass --input or configure it"
	unknownModeTemplateConstant           = "unknown segmentation mode: %s"

	flagInputNameConstant         = "input"
	flagInputDescriptionConstant  = "Path to the labelled CSV collection"
	flagOutputNameConstant        = "output"
	flagOutputDescriptionConstant = "Path for the transformed CSV collection; empty skips writing"
	flagModeNameConstant          = "mode"
	flagModeDescriptionConstant   = "Segmentation mode: interval, random, or sliding"
	flagIntervalsNameConstant     = "intervals"
	flagIntervalsDescription      = "Number of intervals for interval and random modes"
	flagWindowNameConstant        = "window"
	flagWindowDescriptionConstant = "Window length for sliding mode"
	flagMinLengthNameConstant     = "min-length"
	flagMinLengthDescription      = "Minimum random interval length"
	flagMaxLengthNameConstant     = "max-length"
	flagMaxLengthDescription      = "Maximum random interval length; zero leaves lengths unbounded"
	flagSeedNameConstant          = "seed"
	flagSeedDescriptionConstant   = "Random seed for random mode"

	defaultIntervalCountConstant = 2
	defaultWindowLengthConstant  = 5

	intervalRowTemplateConstant = "%s\n"
	windowRowTemplateConstant   = "case %d\t%d windows of length %d\n"

	collectionSegmentedLogMessageConstant = "collection segmented"
	collectionWrittenLogMessageConstant   = "transformed collection written"
	inputLogFieldConstant                 = "input"
	outputLogFieldConstant                = "output"
	modeLogFieldConstant                  = "mode"
	casesLogFieldConstant                 = "cases"
	segmentsLogFieldConstant              = "segments"
)

var (
	errUnexpectedArguments = errors.New(unexpectedArgumentsMessageConstant)
	errMissingInput        = errors.New(missingInputMessageConstant)
)

// LoggerProvider supplies a zap logger instance.
type LoggerProvider func() *zap.Logger

// ConfigurationProvider supplies the segment command configuration.
type ConfigurationProvider func() CommandConfiguration

// CommandBuilder assembles the Cobra command for collection segmentation.
type CommandBuilder struct {
	LoggerProvider        LoggerProvider
	ConfigurationProvider ConfigurationProvider
}

// Build constructs the segment command.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   commandUseConstant,
		Short: commandShortDescriptionConstant,
		Long:  commandLongDescriptionConstant,
		RunE:  builder.run,
	}

	command.Flags().String(flagInputNameConstant, "", flagInputDescriptionConstant)
	command.Flags().String(flagOutputNameConstant, "", flagOutputDescriptionConstant)
	command.Flags().String(flagModeNameConstant, ModeInterval, flagModeDescriptionConstant)
	command.Flags().Int(flagIntervalsNameConstant, defaultIntervalCountConstant, flagIntervalsDescription)
	command.Flags().Int(flagWindowNameConstant, defaultWindowLengthConstant, flagWindowDescriptionConstant)
	command.Flags().Int(flagMinLengthNameConstant, 0, flagMinLengthDescription)
	command.Flags().Int(flagMaxLengthNameConstant, 0, flagMaxLengthDescription)
	command.Flags().Int64(flagSeedNameConstant, 0, flagSeedDescriptionConstant)

	return command, nil
}

func (builder *CommandBuilder) run(command *cobra.Command, arguments []string) error {
	if len(arguments) > 0 {
		return errUnexpectedArguments
	}

	configuration := builder.resolveConfiguration(command)
	if configuration.InputPath == "" {
		return errMissingInput
	}

	dataset, datasetError := datasets.ReadLabelled(configuration.InputPath)
	if datasetError != nil {
		return fmt.Errorf(commandExecutionErrorTemplateConstant, datasetError)
	}

	switch configuration.Mode {
	case ModeInterval:
		return builder.runIntervals(command, configuration, NewIntervalSegmenter(configuration.IntervalCount), dataset)
	case ModeRandom:
		randomSegmenter := NewRandomIntervalSegmenter(RandomIntervalOptions{
			Mode:      CountModeCount,
			Count:     configuration.IntervalCount,
			MinLength: configuration.MinLength,
			MaxLength: configuration.MaxLength,
			Seed:      configuration.Seed,
		})
		return builder.runIntervals(command, configuration, randomSegmenter, dataset)
	case ModeSliding:
		return builder.runSliding(command, configuration, dataset)
	default:
		return fmt.Errorf(unknownModeTemplateConstant, configuration.Mode)
	}
}

// intervalFitter is satisfied by both interval segmenter variants.
type intervalFitter interface {
	Fit(collection series.Collection) error
	Transform(collection series.Collection) ([]SegmentedInterval, error)
}

func (builder *CommandBuilder) runIntervals(command *cobra.Command, configuration CommandConfiguration, segmenter intervalFitter, dataset datasets.Dataset) error {
	if fitError := segmenter.Fit(dataset.Collection); fitError != nil {
		return fmt.Errorf(commandExecutionErrorTemplateConstant, fitError)
	}

	segments, transformError := segmenter.Transform(dataset.Collection)
	if transformError != nil {
		return fmt.Errorf(commandExecutionErrorTemplateConstant, transformError)
	}

	builder.resolveLogger().Info(collectionSegmentedLogMessageConstant,
		zap.String(inputLogFieldConstant, configuration.InputPath),
		zap.String(modeLogFieldConstant, configuration.Mode),
		zap.Int(casesLogFieldConstant, len(dataset.Collection)),
		zap.Int(segmentsLogFieldConstant, len(segments)),
	)

	output := command.OutOrStdout()
	for _, segmentedInterval := range segments {
		fmt.Fprintf(output, intervalRowTemplateConstant, segmentedInterval.Interval.Name())
	}

	caseValues := make([][]float64, len(dataset.Collection))
	for _, segmentedInterval := range segments {
		for caseIndex, values := range segmentedInterval.Values {
			caseValues[caseIndex] = append(caseValues[caseIndex], values...)
		}
	}

	return builder.persistTransformed(configuration, datasets.Dataset{
		Collection: series.NewUnivariateCollection(caseValues),
		Labels:     dataset.Labels,
	})
}

func (builder *CommandBuilder) runSliding(command *cobra.Command, configuration CommandConfiguration, dataset datasets.Dataset) error {
	segmenter := NewSlidingWindowSegmenter(configuration.WindowLength)
	transformed, transformError := segmenter.Transform(dataset.Collection)
	if transformError != nil {
		return fmt.Errorf(commandExecutionErrorTemplateConstant, transformError)
	}

	builder.resolveLogger().Info(collectionSegmentedLogMessageConstant,
		zap.String(inputLogFieldConstant, configuration.InputPath),
		zap.String(modeLogFieldConstant, configuration.Mode),
		zap.Int(casesLogFieldConstant, len(transformed)),
	)

	output := command.OutOrStdout()
	for caseIndex, windows := range transformed {
		windowLength, timepoints := windows.Dims()
		fmt.Fprintf(output, windowRowTemplateConstant, caseIndex, timepoints, windowLength)
	}

	// Each window becomes one labelled row so the output stays a flat CSV.
	windowValues := make([][]float64, 0)
	windowLabels := make([]string, 0)
	for caseIndex, windows := range transformed {
		windowLength, timepoints := windows.Dims()
		for windowIndex := 0; windowIndex < timepoints; windowIndex++ {
			windowRow := make([]float64, windowLength)
			for valueIndex := 0; valueIndex < windowLength; valueIndex++ {
				windowRow[valueIndex] = windows.At(valueIndex, windowIndex)
			}
			windowValues = append(windowValues, windowRow)
			windowLabels = append(windowLabels, dataset.Labels[caseIndex])
		}
	}

	return builder.persistTransformed(configuration, datasets.Dataset{
		Collection: series.NewUnivariateCollection(windowValues),
		Labels:     windowLabels,
	})
}

// persistTransformed writes the transformed collection when an output path is
// configured.
func (builder *CommandBuilder) persistTransformed(configuration CommandConfiguration, transformedDataset datasets.Dataset) error {
	if configuration.OutputPath == "" {
		return nil
	}

	if writeError := datasets.WriteLabelled(configuration.OutputPath, transformedDataset); writeError != nil {
		return fmt.Errorf(commandExecutionErrorTemplateConstant, writeError)
	}

	builder.resolveLogger().Info(collectionWrittenLogMessageConstant,
		zap.String(outputLogFieldConstant, configuration.OutputPath),
		zap.Int(casesLogFieldConstant, len(transformedDataset.Collection)),
	)

	return nil
}

func (builder *CommandBuilder) resolveConfiguration(command *cobra.Command) CommandConfiguration {
	configuration := DefaultCommandConfiguration()
	if builder.ConfigurationProvider != nil {
		provided := builder.ConfigurationProvider().sanitize()
		if provided.InputPath != "" {
			configuration.InputPath = provided.InputPath
		}
		if provided.OutputPath != "" {
			configuration.OutputPath = provided.OutputPath
		}
		if provided.Mode != "" {
			configuration.Mode = provided.Mode
		}
		if provided.IntervalCount > 0 {
			configuration.IntervalCount = provided.IntervalCount
		}
		if provided.WindowLength > 0 {
			configuration.WindowLength = provided.WindowLength
		}
		configuration.MinLength = provided.MinLength
		configuration.MaxLength = provided.MaxLength
		configuration.Seed = provided.Seed
	}

	if configuration.IntervalCount == 0 {
		configuration.IntervalCount = defaultIntervalCountConstant
	}
	if configuration.WindowLength == 0 {
		configuration.WindowLength = defaultWindowLengthConstant
	}

	if command.Flags().Changed(flagInputNameConstant) {
		configuration.InputPath, _ = command.Flags().GetString(flagInputNameConstant)
	}
	if command.Flags().Changed(flagOutputNameConstant) {
		configuration.OutputPath, _ = command.Flags().GetString(flagOutputNameConstant)
	}
	if command.Flags().Changed(flagModeNameConstant) {
		modeValue, _ := command.Flags().GetString(flagModeNameConstant)
		configuration.Mode = strings.TrimSpace(strings.ToLower(modeValue))
	}
	if command.Flags().Changed(flagIntervalsNameConstant) {
		configuration.IntervalCount, _ = command.Flags().GetInt(flagIntervalsNameConstant)
	}
	if command.Flags().Changed(flagWindowNameConstant) {
		configuration.WindowLength, _ = command.Flags().GetInt(flagWindowNameConstant)
	}
	if command.Flags().Changed(flagMinLengthNameConstant) {
		configuration.MinLength, _ = command.Flags().GetInt(flagMinLengthNameConstant)
	}
	if command.Flags().Changed(flagMaxLengthNameConstant) {
		configuration.MaxLength, _ = command.Flags().GetInt(flagMaxLengthNameConstant)
	}
	if command.Flags().Changed(flagSeedNameConstant) {
		configuration.Seed, _ = command.Flags().GetInt64(flagSeedNameConstant)
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
