package classify

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/andregdmitri/aeon/internal/datasets"
)

const (
	commandUseConstant                    = "classify"
	commandShortDescriptionConstant       = "Classify series with the matrix profile classifier"
	commandLongDescriptionConstant        = "classify fits the matrix profile classifier on a labelled training CSV and predicts labels for a test CSV."
	commandExecutionErrorTemplateConstant = "classification failed: %w"
	unexpectedArgumentsMessageConstant    = "classify does not accept positional arguments"
	missingPathsMessageConstant           = "classify requires --train and --test CSV paths"

	flagTrainNameConstant              = "train"
	flagTrainDescriptionConstant       = "Path to the labelled training CSV"
	flagTestNameConstant               = "test"
	flagTestDescriptionConstant        = "Path to the test CSV"
	flagSubsequenceNameConstant        = "subsequence-length"
	flagSubsequenceDescriptionConstant = "Matrix profile subsequence length"

	predictionRowTemplateConstant = "%d\t%s\n"
	accuracyLineTemplateConstant  = "accuracy\t%.4f\n"

	casesClassifiedLogMessageConstant = "test collection classified"
	trainPathLogFieldConstant         = "train"
	testPathLogFieldConstant          = "test"
	casesLogFieldConstant             = "cases"
	classCountLogFieldConstant        = "classes"
)

var (
	errUnexpectedArguments = errors.New(unexpectedArgumentsMessageConstant)
	errMissingPaths        = errors.New(missingPathsMessageConstant)
)

// LoggerProvider supplies a zap logger instance.
type LoggerProvider func() *zap.Logger

// ConfigurationProvider supplies the classify command configuration.
type ConfigurationProvider func() CommandConfiguration

// CommandBuilder assembles the Cobra command for matrix profile classification.
type CommandBuilder struct {
	LoggerProvider        LoggerProvider
	ConfigurationProvider ConfigurationProvider
}

// Build constructs the classify command.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   commandUseConstant,
		Short: commandShortDescriptionConstant,
		Long:  commandLongDescriptionConstant,
		RunE:  builder.run,
	}

	command.Flags().String(flagTrainNameConstant, "", flagTrainDescriptionConstant)
	command.Flags().String(flagTestNameConstant, "", flagTestDescriptionConstant)
	command.Flags().Int(flagSubsequenceNameConstant, defaultSubsequenceLengthConstant, flagSubsequenceDescriptionConstant)

	return command, nil
}

func (builder *CommandBuilder) run(command *cobra.Command, arguments []string) error {
	if len(arguments) > 0 {
		return errUnexpectedArguments
	}

	configuration := builder.resolveConfiguration(command)
	if configuration.TrainPath == "" || configuration.TestPath == "" {
		return errMissingPaths
	}

	trainDataset, trainError := datasets.ReadLabelled(configuration.TrainPath)
	if trainError != nil {
		return fmt.Errorf(commandExecutionErrorTemplateConstant, trainError)
	}
	testDataset, testError := datasets.ReadLabelled(configuration.TestPath)
	if testError != nil {
		return fmt.Errorf(commandExecutionErrorTemplateConstant, testError)
	}

	classifier, classifierError := NewMatrixProfileClassifier(configuration.SubsequenceLength)
	if classifierError != nil {
		return fmt.Errorf(commandExecutionErrorTemplateConstant, classifierError)
	}

	if fitError := classifier.Fit(trainDataset.Collection, trainDataset.Labels); fitError != nil {
		return fmt.Errorf(commandExecutionErrorTemplateConstant, fitError)
	}

	predictions, predictError := classifier.Predict(testDataset.Collection)
	if predictError != nil {
		return fmt.Errorf(commandExecutionErrorTemplateConstant, predictError)
	}

	classes, classesError := classifier.Classes()
	if classesError != nil {
		return fmt.Errorf(commandExecutionErrorTemplateConstant, classesError)
	}

	builder.resolveLogger().Info(casesClassifiedLogMessageConstant,
		zap.String(trainPathLogFieldConstant, configuration.TrainPath),
		zap.String(testPathLogFieldConstant, configuration.TestPath),
		zap.Int(casesLogFieldConstant, len(predictions)),
		zap.Int(classCountLogFieldConstant, len(classes)),
	)

	output := command.OutOrStdout()
	for caseIndex, predictedLabel := range predictions {
		fmt.Fprintf(output, predictionRowTemplateConstant, caseIndex, predictedLabel)
	}

	if accuracy, known := labelledAccuracy(testDataset.Labels, predictions); known {
		fmt.Fprintf(output, accuracyLineTemplateConstant, accuracy)
	}

	return nil
}

// labelledAccuracy scores predictions against reference labels; collections
// written without labels carry empty label strings and are skipped.
func labelledAccuracy(referenceLabels []string, predictions []string) (float64, bool) {
	if len(referenceLabels) != len(predictions) || len(predictions) == 0 {
		return 0, false
	}

	correct := 0
	for labelIndex, referenceLabel := range referenceLabels {
		if referenceLabel == "" {
			return 0, false
		}
		if referenceLabel == predictions[labelIndex] {
			correct++
		}
	}
	return float64(correct) / float64(len(predictions)), true
}

func (builder *CommandBuilder) resolveConfiguration(command *cobra.Command) CommandConfiguration {
	configuration := DefaultCommandConfiguration()
	if builder.ConfigurationProvider != nil {
		configuration = builder.ConfigurationProvider().sanitize()
	}

	if command.Flags().Changed(flagTrainNameConstant) {
		configuration.TrainPath, _ = command.Flags().GetString(flagTrainNameConstant)
	}
	if command.Flags().Changed(flagTestNameConstant) {
		configuration.TestPath, _ = command.Flags().GetString(flagTestNameConstant)
	}
	if command.Flags().Changed(flagSubsequenceNameConstant) {
		configuration.SubsequenceLength, _ = command.Flags().GetInt(flagSubsequenceNameConstant)
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
