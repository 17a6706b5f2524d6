package classify

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/andregdmitri/aeon/internal/series"
)

const (
	labelCountMismatchTemplateConstant = "collection has %d cases but %d labels"
	classifierNotFittedMessageConstant = "matrix profile classifier is not fitted"
	profileLengthTemplateConstant      = "case profile has %d features but the classifier was fitted with %d"
	emptyTrainingSetMessageConstant    = "training collection must contain at least one case"
)

// ErrClassifierNotFitted indicates Predict was called before Fit.
var ErrClassifierNotFitted = errors.New(classifierNotFittedMessageConstant)

// ErrEmptyTrainingSet indicates Fit received no training cases.
var ErrEmptyTrainingSet = errors.New(emptyTrainingSetMessageConstant)

// MatrixProfileClassifier transforms cases with the matrix profile and
// classifies the profiles with one-nearest-neighbour.
type MatrixProfileClassifier struct {
	transformer *MatrixProfileTransformer

	fitted           bool
	trainingProfiles [][]float64
	trainingLabels   []string
	classes          []string
	classIndexByName map[string]int
}

// NewMatrixProfileClassifier constructs a classifier; a non-positive
// subsequence length selects the default.
func NewMatrixProfileClassifier(subsequenceLength int) (*MatrixProfileClassifier, error) {
	transformer, transformerError := NewMatrixProfileTransformer(subsequenceLength)
	if transformerError != nil {
		return nil, transformerError
	}
	return &MatrixProfileClassifier{transformer: transformer}, nil
}

// Classes returns the sorted class labels observed during Fit.
func (classifier *MatrixProfileClassifier) Classes() ([]string, error) {
	if !classifier.fitted {
		return nil, ErrClassifierNotFitted
	}
	return append([]string(nil), classifier.classes...), nil
}

// Fit stores the transformed training profiles and their labels.
func (classifier *MatrixProfileClassifier) Fit(collection series.Collection, labels []string) error {
	if len(collection) == 0 {
		return ErrEmptyTrainingSet
	}
	if len(labels) != len(collection) {
		return fmt.Errorf(labelCountMismatchTemplateConstant, len(collection), len(labels))
	}

	profiles, transformError := classifier.transformer.Transform(collection)
	if transformError != nil {
		return transformError
	}

	uniqueClasses := make(map[string]struct{})
	for _, label := range labels {
		uniqueClasses[label] = struct{}{}
	}
	sortedClasses := make([]string, 0, len(uniqueClasses))
	for className := range uniqueClasses {
		sortedClasses = append(sortedClasses, className)
	}
	sort.Strings(sortedClasses)

	classIndexByName := make(map[string]int, len(sortedClasses))
	for classIndex, className := range sortedClasses {
		classIndexByName[className] = classIndex
	}

	classifier.fitted = true
	classifier.trainingProfiles = profiles
	classifier.trainingLabels = append([]string(nil), labels...)
	classifier.classes = sortedClasses
	classifier.classIndexByName = classIndexByName

	return nil
}

// Predict classifies each case by its nearest training profile.
func (classifier *MatrixProfileClassifier) Predict(collection series.Collection) ([]string, error) {
	if !classifier.fitted {
		return nil, ErrClassifierNotFitted
	}

	profiles, transformError := classifier.transformer.Transform(collection)
	if transformError != nil {
		return nil, transformError
	}

	predictions := make([]string, len(profiles))
	for profileIndex, profile := range profiles {
		nearestLabel, neighborError := classifier.nearestTrainingLabel(profile)
		if neighborError != nil {
			return nil, neighborError
		}
		predictions[profileIndex] = nearestLabel
	}

	return predictions, nil
}

// PredictProba returns per-class probabilities. The nearest-neighbour
// estimator carries no probability notion, so each prediction maps to a
// one-hot row over the fitted classes.
func (classifier *MatrixProfileClassifier) PredictProba(collection series.Collection) ([][]float64, error) {
	predictions, predictionError := classifier.Predict(collection)
	if predictionError != nil {
		return nil, predictionError
	}

	probabilities := make([][]float64, len(predictions))
	for predictionIndex, predictedClass := range predictions {
		classProbabilities := make([]float64, len(classifier.classes))
		classProbabilities[classifier.classIndexByName[predictedClass]] = 1.0
		probabilities[predictionIndex] = classProbabilities
	}

	return probabilities, nil
}

func (classifier *MatrixProfileClassifier) nearestTrainingLabel(profile []float64) (string, error) {
	if len(classifier.trainingProfiles) > 0 && len(profile) != len(classifier.trainingProfiles[0]) {
		return "", fmt.Errorf(profileLengthTemplateConstant, len(profile), len(classifier.trainingProfiles[0]))
	}

	nearestLabel := ""
	nearestDistance := math.Inf(1)
	for trainingIndex, trainingProfile := range classifier.trainingProfiles {
		candidateDistance := euclideanBetween(profile, trainingProfile)
		if candidateDistance < nearestDistance {
			nearestDistance = candidateDistance
			nearestLabel = classifier.trainingLabels[trainingIndex]
		}
	}

	return nearestLabel, nil
}
