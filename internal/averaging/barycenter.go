package averaging

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/andregdmitri/aeon/internal/distances"
	"github.com/andregdmitri/aeon/internal/series"
)

const (
	defaultMaxIterationsConstant      = 30
	defaultToleranceConstant          = 1e-5
	alignmentFailureTemplateConstant  = "failed to align case %d to the barycenter: %w"
	invalidToleranceTemplateConstant  = "tolerance must not be negative, got %g"
	invalidIterationsTemplateConstant = "max iterations must be positive, got %d"
)

// Options configures elastic barycenter averaging.
type Options struct {
	Distance      distances.ElasticOptions
	MaxIterations int
	Tolerance     float64
}

// DefaultOptions returns barycenter options with unconstrained dtw alignment.
func DefaultOptions() Options {
	return Options{
		Distance:      distances.DefaultElasticOptions(),
		MaxIterations: defaultMaxIterationsConstant,
		Tolerance:     defaultToleranceConstant,
	}
}

// Result carries the barycenter and convergence diagnostics.
type Result struct {
	Barycenter *mat.Dense
	Iterations int
	FinalCost  float64
}

// ElasticBarycenterAverage computes the DBA barycenter of an equal-length
// collection. The arithmetic mean seeds the center; each iteration realigns
// every case to the center along its optimal warping path and replaces each
// center timepoint with the mean of the case values aligned to it.
func ElasticBarycenterAverage(collection series.Collection, options Options) (Result, error) {
	if validationError := collection.Validate(); validationError != nil {
		return Result{}, validationError
	}
	if _, lengthError := collection.RequireEqualLength(); lengthError != nil {
		return Result{}, lengthError
	}

	if options.MaxIterations == 0 {
		options.MaxIterations = defaultMaxIterationsConstant
	}
	if options.MaxIterations < 0 {
		return Result{}, fmt.Errorf(invalidIterationsTemplateConstant, options.MaxIterations)
	}
	if options.Tolerance < 0 {
		return Result{}, fmt.Errorf(invalidToleranceTemplateConstant, options.Tolerance)
	}

	center := arithmeticMean(collection)
	previousCost := math.Inf(1)
	iterationsCompleted := 0
	finalCost := math.Inf(1)

	for iterationIndex := 0; iterationIndex < options.MaxIterations; iterationIndex++ {
		updatedCenter, iterationCost, iterationError := realignToCenter(collection, center, options.Distance)
		if iterationError != nil {
			return Result{}, iterationError
		}

		center = updatedCenter
		iterationsCompleted = iterationIndex + 1
		finalCost = iterationCost

		if math.Abs(previousCost-iterationCost) < options.Tolerance {
			break
		}
		previousCost = iterationCost
	}

	return Result{Barycenter: center, Iterations: iterationsCompleted, FinalCost: finalCost}, nil
}

func arithmeticMean(collection series.Collection) *mat.Dense {
	channels, timepoints := collection[0].Dims()
	mean := mat.NewDense(channels, timepoints, nil)

	for _, seriesCase := range collection {
		mean.Add(mean, seriesCase)
	}
	mean.Scale(1.0/float64(len(collection)), mean)

	return mean
}

func realignToCenter(collection series.Collection, center *mat.Dense, distanceOptions distances.ElasticOptions) (*mat.Dense, float64, error) {
	channels, timepoints := center.Dims()

	alignedSums := mat.NewDense(channels, timepoints, nil)
	alignedCounts := make([]float64, timepoints)
	totalCost := 0.0

	for caseIndex, seriesCase := range collection {
		path, pathCost, pathError := distances.AlignmentPath(center, seriesCase, distanceOptions)
		if pathError != nil {
			return nil, 0, fmt.Errorf(alignmentFailureTemplateConstant, caseIndex, pathError)
		}
		totalCost += pathCost

		for _, coordinate := range path {
			centerIndex := coordinate.XIndex
			caseTimepoint := coordinate.YIndex
			if centerIndex >= timepoints {
				continue
			}
			alignedCounts[centerIndex]++
			for channelIndex := 0; channelIndex < channels; channelIndex++ {
				updatedSum := alignedSums.At(channelIndex, centerIndex) + seriesCase.At(channelIndex, caseTimepoint)
				alignedSums.Set(channelIndex, centerIndex, updatedSum)
			}
		}
	}

	updatedCenter := mat.NewDense(channels, timepoints, nil)
	for timepointIndex := 0; timepointIndex < timepoints; timepointIndex++ {
		count := alignedCounts[timepointIndex]
		for channelIndex := 0; channelIndex < channels; channelIndex++ {
			if count == 0 {
				updatedCenter.Set(channelIndex, timepointIndex, center.At(channelIndex, timepointIndex))
				continue
			}
			updatedCenter.Set(channelIndex, timepointIndex, alignedSums.At(channelIndex, timepointIndex)/count)
		}
	}

	return updatedCenter, totalCost, nil
}
