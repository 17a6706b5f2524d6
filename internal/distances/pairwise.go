package distances

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/andregdmitri/aeon/internal/series"
)

// Euclidean computes the pointwise Euclidean distance between equal-length cases.
func Euclidean(firstSeries *mat.Dense, secondSeries *mat.Dense) (float64, error) {
	squared, squaredError := SquaredEuclidean(firstSeries, secondSeries)
	if squaredError != nil {
		return 0, squaredError
	}
	return math.Sqrt(squared), nil
}

// SquaredEuclidean computes the pointwise squared Euclidean distance between equal-length cases.
func SquaredEuclidean(firstSeries *mat.Dense, secondSeries *mat.Dense) (float64, error) {
	if firstSeries == nil || secondSeries == nil {
		return 0, ErrNilSeries
	}

	firstChannels, firstLength := firstSeries.Dims()
	secondChannels, secondLength := secondSeries.Dims()
	if firstLength == 0 || secondLength == 0 {
		return 0, ErrEmptySeries
	}
	if firstChannels != secondChannels || firstLength != secondLength {
		return 0, series.ErrUnequalLength
	}

	squaredSum := 0.0
	for timepointIndex := 0; timepointIndex < firstLength; timepointIndex++ {
		squaredSum += localSquaredCost(firstSeries, secondSeries, timepointIndex, timepointIndex)
	}
	return squaredSum, nil
}

// Pairwise computes the symmetric elastic distance matrix over a collection.
func Pairwise(collection series.Collection, options ElasticOptions) (*mat.SymDense, error) {
	if validationError := collection.Validate(); validationError != nil {
		return nil, validationError
	}

	distanceMatrix := mat.NewSymDense(len(collection), nil)
	for firstIndex := 0; firstIndex < len(collection); firstIndex++ {
		for secondIndex := firstIndex + 1; secondIndex < len(collection); secondIndex++ {
			pairDistance, distanceError := Distance(collection[firstIndex], collection[secondIndex], options)
			if distanceError != nil {
				return nil, distanceError
			}
			distanceMatrix.SetSym(firstIndex, secondIndex, pairDistance)
		}
	}

	return distanceMatrix, nil
}
