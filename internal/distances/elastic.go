package distances

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

const (
	nilSeriesMessageConstant              = "series must not be nil"
	emptySeriesMessageConstant            = "series must contain at least one timepoint"
	channelCountMismatchTemplateConstant  = "series have %d and %d channels, expected equal counts"
	derivativeTooShortMessageConstant     = "derivative transform requires at least three timepoints"
	unknownMeasureTemplateConstant        = "unknown distance measure: %s"
	negativeWeightPenaltyMessageConstant  = "weight penalty must not be negative"
	unreachableAlignmentMessageConstant   = "bounding constraint leaves the final cell unreachable"
	defaultWeightedPenaltyConstant        = 0.05
	weightedDistanceCrossoverHalfConstant = 2.0
)

// ErrNilSeries indicates a nil series was supplied to a distance computation.
var ErrNilSeries = errors.New(nilSeriesMessageConstant)

// ErrEmptySeries indicates a series without timepoints was supplied.
var ErrEmptySeries = errors.New(emptySeriesMessageConstant)

// ErrDerivativeTooShort indicates a series was too short for the derivative transform.
var ErrDerivativeTooShort = errors.New(derivativeTooShortMessageConstant)

// ErrUnreachableAlignment indicates the bounding constraint admitted no complete warping path.
var ErrUnreachableAlignment = errors.New(unreachableAlignmentMessageConstant)

// ErrNegativeWeightPenalty indicates a negative wdtw weight penalty was supplied.
var ErrNegativeWeightPenalty = errors.New(negativeWeightPenaltyMessageConstant)

// Measure names an elastic distance variant.
type Measure string

// Supported elastic distance measures.
const (
	MeasureDTW  Measure = "dtw"
	MeasureDDTW Measure = "ddtw"
	MeasureWDTW Measure = "wdtw"
)

// ElasticOptions configures an elastic distance computation.
type ElasticOptions struct {
	Measure  Measure
	Bounding BoundingOptions
	// WeightPenalty is the logistic weight steepness for wdtw; zero selects the default.
	WeightPenalty float64
}

// DefaultElasticOptions returns unconstrained dtw options.
func DefaultElasticOptions() ElasticOptions {
	return ElasticOptions{Measure: MeasureDTW, Bounding: UnconstrainedBounding()}
}

// Coordinate addresses one cell of an alignment path.
type Coordinate struct {
	XIndex int
	YIndex int
}

// Distance computes the configured elastic distance between two cases.
func Distance(firstSeries *mat.Dense, secondSeries *mat.Dense, options ElasticOptions) (float64, error) {
	costMatrix, costError := CostMatrix(firstSeries, secondSeries, options)
	if costError != nil {
		return 0, costError
	}

	rows, columns := costMatrix.Dims()
	finalCost := costMatrix.At(rows-1, columns-1)
	if math.IsInf(finalCost, 1) {
		return math.Inf(1), nil
	}
	return finalCost, nil
}

// CostMatrix computes the accumulated cost matrix for the configured measure.
func CostMatrix(firstSeries *mat.Dense, secondSeries *mat.Dense, options ElasticOptions) (*mat.Dense, error) {
	preparedFirst, preparedSecond, preparationError := prepareSeriesPair(firstSeries, secondSeries, options.Measure)
	if preparationError != nil {
		return nil, preparationError
	}

	_, firstLength := preparedFirst.Dims()
	_, secondLength := preparedSecond.Dims()

	boundingMatrix, boundingError := NewBoundingMatrix(firstLength, secondLength, options.Bounding)
	if boundingError != nil {
		return nil, boundingError
	}

	weightVector, weightError := resolveWeightVector(options, firstLength, secondLength)
	if weightError != nil {
		return nil, weightError
	}

	return accumulateCost(preparedFirst, preparedSecond, boundingMatrix, weightVector), nil
}

// AlignmentPath computes the optimal warping path and its cost.
func AlignmentPath(firstSeries *mat.Dense, secondSeries *mat.Dense, options ElasticOptions) ([]Coordinate, float64, error) {
	costMatrix, costError := CostMatrix(firstSeries, secondSeries, options)
	if costError != nil {
		return nil, 0, costError
	}

	rows, columns := costMatrix.Dims()
	finalCost := costMatrix.At(rows-1, columns-1)
	if math.IsInf(finalCost, 1) {
		return nil, 0, ErrUnreachableAlignment
	}

	path := tracebackPath(costMatrix)
	return path, finalCost, nil
}

func prepareSeriesPair(firstSeries *mat.Dense, secondSeries *mat.Dense, measure Measure) (*mat.Dense, *mat.Dense, error) {
	if firstSeries == nil || secondSeries == nil {
		return nil, nil, ErrNilSeries
	}

	firstChannels, firstLength := firstSeries.Dims()
	secondChannels, secondLength := secondSeries.Dims()
	if firstLength == 0 || secondLength == 0 {
		return nil, nil, ErrEmptySeries
	}
	if firstChannels != secondChannels {
		return nil, nil, fmt.Errorf(channelCountMismatchTemplateConstant, firstChannels, secondChannels)
	}

	switch measure {
	case MeasureDTW, MeasureWDTW, "":
		return firstSeries, secondSeries, nil
	case MeasureDDTW:
		firstDerivative, firstError := derivativeTransform(firstSeries)
		if firstError != nil {
			return nil, nil, firstError
		}
		secondDerivative, secondError := derivativeTransform(secondSeries)
		if secondError != nil {
			return nil, nil, secondError
		}
		return firstDerivative, secondDerivative, nil
	default:
		return nil, nil, fmt.Errorf(unknownMeasureTemplateConstant, measure)
	}
}

// derivativeTransform applies the Keogh-Pazzani discrete derivative, dropping
// the first and last timepoints.
func derivativeTransform(seriesCase *mat.Dense) (*mat.Dense, error) {
	channels, timepoints := seriesCase.Dims()
	if timepoints < 3 {
		return nil, ErrDerivativeTooShort
	}

	derivative := mat.NewDense(channels, timepoints-2, nil)
	for channelIndex := 0; channelIndex < channels; channelIndex++ {
		for timepointIndex := 1; timepointIndex < timepoints-1; timepointIndex++ {
			previousValue := seriesCase.At(channelIndex, timepointIndex-1)
			currentValue := seriesCase.At(channelIndex, timepointIndex)
			nextValue := seriesCase.At(channelIndex, timepointIndex+1)
			derivativeValue := ((currentValue - previousValue) + (nextValue-previousValue)/2.0) / 2.0
			derivative.Set(channelIndex, timepointIndex-1, derivativeValue)
		}
	}

	return derivative, nil
}

func resolveWeightVector(options ElasticOptions, firstLength int, secondLength int) ([]float64, error) {
	if options.Measure != MeasureWDTW {
		return nil, nil
	}

	weightPenalty := options.WeightPenalty
	if weightPenalty == 0 {
		weightPenalty = defaultWeightedPenaltyConstant
	}
	if weightPenalty < 0 {
		return nil, ErrNegativeWeightPenalty
	}

	longerLength := max(firstLength, secondLength)
	weightVector := make([]float64, longerLength)
	halfLength := float64(longerLength) / weightedDistanceCrossoverHalfConstant
	for offset := range weightVector {
		weightVector[offset] = 1.0 / (1.0 + math.Exp(-weightPenalty*(float64(offset)-halfLength)))
	}

	return weightVector, nil
}

func localSquaredCost(firstSeries *mat.Dense, secondSeries *mat.Dense, firstIndex int, secondIndex int) float64 {
	channels, _ := firstSeries.Dims()
	squaredSum := 0.0
	for channelIndex := 0; channelIndex < channels; channelIndex++ {
		difference := firstSeries.At(channelIndex, firstIndex) - secondSeries.At(channelIndex, secondIndex)
		squaredSum += difference * difference
	}
	return squaredSum
}

func accumulateCost(firstSeries *mat.Dense, secondSeries *mat.Dense, boundingMatrix BoundingMatrix, weightVector []float64) *mat.Dense {
	_, firstLength := firstSeries.Dims()
	_, secondLength := secondSeries.Dims()

	costMatrix := mat.NewDense(firstLength, secondLength, nil)
	for xIndex := 0; xIndex < firstLength; xIndex++ {
		for yIndex := 0; yIndex < secondLength; yIndex++ {
			costMatrix.Set(xIndex, yIndex, math.Inf(1))
		}
	}

	for xIndex := 0; xIndex < firstLength; xIndex++ {
		for yIndex := 0; yIndex < secondLength; yIndex++ {
			if !boundingMatrix.Admissible(xIndex, yIndex) {
				continue
			}

			localCost := localSquaredCost(firstSeries, secondSeries, xIndex, yIndex)
			if weightVector != nil {
				indexDifference := xIndex - yIndex
				if indexDifference < 0 {
					indexDifference = -indexDifference
				}
				localCost *= weightVector[indexDifference]
			}

			switch {
			case xIndex == 0 && yIndex == 0:
				costMatrix.Set(xIndex, yIndex, localCost)
			case xIndex == 0:
				costMatrix.Set(xIndex, yIndex, costMatrix.At(xIndex, yIndex-1)+localCost)
			case yIndex == 0:
				costMatrix.Set(xIndex, yIndex, costMatrix.At(xIndex-1, yIndex)+localCost)
			default:
				bestPredecessor := math.Min(
					costMatrix.At(xIndex-1, yIndex-1),
					math.Min(costMatrix.At(xIndex-1, yIndex), costMatrix.At(xIndex, yIndex-1)),
				)
				costMatrix.Set(xIndex, yIndex, bestPredecessor+localCost)
			}
		}
	}

	return costMatrix
}

func tracebackPath(costMatrix *mat.Dense) []Coordinate {
	rows, columns := costMatrix.Dims()
	xIndex := rows - 1
	yIndex := columns - 1

	reversedPath := []Coordinate{{XIndex: xIndex, YIndex: yIndex}}
	for xIndex > 0 || yIndex > 0 {
		switch {
		case xIndex == 0:
			yIndex--
		case yIndex == 0:
			xIndex--
		default:
			diagonalCost := costMatrix.At(xIndex-1, yIndex-1)
			verticalCost := costMatrix.At(xIndex-1, yIndex)
			horizontalCost := costMatrix.At(xIndex, yIndex-1)
			switch {
			case diagonalCost <= verticalCost && diagonalCost <= horizontalCost:
				xIndex--
				yIndex--
			case verticalCost <= horizontalCost:
				xIndex--
			default:
				yIndex--
			}
		}
		reversedPath = append(reversedPath, Coordinate{XIndex: xIndex, YIndex: yIndex})
	}

	path := make([]Coordinate, 0, len(reversedPath))
	for pathIndex := len(reversedPath) - 1; pathIndex >= 0; pathIndex-- {
		path = append(path, reversedPath[pathIndex])
	}
	return path
}
