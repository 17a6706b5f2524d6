package classify

import (
	"errors"
	"fmt"
	"math"

	"github.com/andregdmitri/aeon/internal/series"
)

const (
	defaultSubsequenceLengthConstant     = 10
	subsequenceLengthRangeTemplateValue  = "subsequence length must lie in [2, %d], got %d"
	subsequenceTooShortMessageConstant   = "subsequence length must be at least 2"
	profileCaseErrorTemplateConstant     = "failed to compute matrix profile for case %d: %w"
	exclusionZoneDivisorConstant         = 2
	minimumSubsequenceLengthConstant     = 2
	zeroVarianceSubsequenceFillValue     = 0.0
	noAdmissibleNeighborDistanceConstant = 0.0
)

// ErrSubsequenceTooShort indicates a subsequence length below two was requested.
var ErrSubsequenceTooShort = errors.New(subsequenceTooShortMessageConstant)

// MatrixProfileTransformer converts univariate cases into their self-join
// matrix profiles.
type MatrixProfileTransformer struct {
	subsequenceLength int
}

// NewMatrixProfileTransformer constructs a transformer; a non-positive length
// selects the default.
func NewMatrixProfileTransformer(subsequenceLength int) (*MatrixProfileTransformer, error) {
	if subsequenceLength <= 0 {
		subsequenceLength = defaultSubsequenceLengthConstant
	}
	if subsequenceLength < minimumSubsequenceLengthConstant {
		return nil, ErrSubsequenceTooShort
	}
	return &MatrixProfileTransformer{subsequenceLength: subsequenceLength}, nil
}

// SubsequenceLength reports the configured subsequence length.
func (transformer *MatrixProfileTransformer) SubsequenceLength() int {
	return transformer.subsequenceLength
}

// Transform computes the matrix profile of every case in the collection.
func (transformer *MatrixProfileTransformer) Transform(collection series.Collection) ([][]float64, error) {
	if validationError := collection.RequireUnivariate(); validationError != nil {
		return nil, validationError
	}

	profiles := make([][]float64, 0, len(collection))
	for caseIndex := range collection {
		values, valuesError := collection.UnivariateValues(caseIndex)
		if valuesError != nil {
			return nil, valuesError
		}

		profile, profileError := transformer.profileForSeries(values)
		if profileError != nil {
			return nil, fmt.Errorf(profileCaseErrorTemplateConstant, caseIndex, profileError)
		}
		profiles = append(profiles, profile)
	}

	return profiles, nil
}

// profileForSeries computes the self-join matrix profile with a trivial-match
// exclusion zone of half the subsequence length.
func (transformer *MatrixProfileTransformer) profileForSeries(values []float64) ([]float64, error) {
	subsequenceLength := transformer.subsequenceLength
	if len(values) < subsequenceLength {
		return nil, fmt.Errorf(subsequenceLengthRangeTemplateValue, len(values), subsequenceLength)
	}

	profileLength := len(values) - subsequenceLength + 1
	normalizedSubsequences := make([][]float64, profileLength)
	for startIndex := 0; startIndex < profileLength; startIndex++ {
		normalizedSubsequences[startIndex] = zNormalize(values[startIndex : startIndex+subsequenceLength])
	}

	exclusionZone := subsequenceLength / exclusionZoneDivisorConstant
	profile := make([]float64, profileLength)
	for firstIndex := 0; firstIndex < profileLength; firstIndex++ {
		nearestDistance := math.Inf(1)
		for secondIndex := 0; secondIndex < profileLength; secondIndex++ {
			indexGap := firstIndex - secondIndex
			if indexGap < 0 {
				indexGap = -indexGap
			}
			if indexGap <= exclusionZone {
				continue
			}

			candidateDistance := euclideanBetween(normalizedSubsequences[firstIndex], normalizedSubsequences[secondIndex])
			if candidateDistance < nearestDistance {
				nearestDistance = candidateDistance
			}
		}

		if math.IsInf(nearestDistance, 1) {
			nearestDistance = noAdmissibleNeighborDistanceConstant
		}
		profile[firstIndex] = nearestDistance
	}

	return profile, nil
}

// zNormalize centers and scales a subsequence; constant subsequences map to zeros.
func zNormalize(subsequence []float64) []float64 {
	meanValue := 0.0
	for _, value := range subsequence {
		meanValue += value
	}
	meanValue /= float64(len(subsequence))

	varianceSum := 0.0
	for _, value := range subsequence {
		difference := value - meanValue
		varianceSum += difference * difference
	}
	standardDeviation := math.Sqrt(varianceSum / float64(len(subsequence)))

	normalized := make([]float64, len(subsequence))
	if standardDeviation == 0 {
		for valueIndex := range normalized {
			normalized[valueIndex] = zeroVarianceSubsequenceFillValue
		}
		return normalized
	}

	for valueIndex, value := range subsequence {
		normalized[valueIndex] = (value - meanValue) / standardDeviation
	}
	return normalized
}

func euclideanBetween(firstVector []float64, secondVector []float64) float64 {
	squaredSum := 0.0
	for valueIndex := range firstVector {
		difference := firstVector[valueIndex] - secondVector[valueIndex]
		squaredSum += difference * difference
	}
	return math.Sqrt(squaredSum)
}
