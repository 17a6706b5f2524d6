package clustering

import (
	"errors"
	"math"
	"math/rand"
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/andregdmitri/aeon/internal/series"
)

const (
	nonPositiveSigmaMessageConstant    = "gak sigma must be positive"
	nilGAKSeriesMessageConstant        = "gak requires non-nil series"
	gakChannelMismatchMessageConstant  = "gak requires equal channel counts"
	sigmaHeuristicSampleLimitConstant  = 100
	sigmaHeuristicFallbackSigmaValue   = 1.0
	logZeroReplacementExponentConstant = -1e9
)

// ErrNonPositiveSigma indicates a zero or negative GAK bandwidth was supplied.
var ErrNonPositiveSigma = errors.New(nonPositiveSigmaMessageConstant)

// ErrNilGAKSeries indicates a nil series was supplied to the kernel.
var ErrNilGAKSeries = errors.New(nilGAKSeriesMessageConstant)

// ErrGAKChannelMismatch indicates the kernel received cases with differing channel counts.
var ErrGAKChannelMismatch = errors.New(gakChannelMismatchMessageConstant)

// GAK evaluates the normalized Global Alignment Kernel between two cases.
// The value lies in (0, 1] and equals 1 for identical cases.
func GAK(firstSeries *mat.Dense, secondSeries *mat.Dense, sigma float64) (float64, error) {
	if firstSeries == nil || secondSeries == nil {
		return 0, ErrNilGAKSeries
	}
	if sigma <= 0 {
		return 0, ErrNonPositiveSigma
	}
	firstChannels, _ := firstSeries.Dims()
	secondChannels, _ := secondSeries.Dims()
	if firstChannels != secondChannels {
		return 0, ErrGAKChannelMismatch
	}

	crossAlignment := logAlignmentKernel(firstSeries, secondSeries, sigma)
	firstSelfAlignment := logAlignmentKernel(firstSeries, firstSeries, sigma)
	secondSelfAlignment := logAlignmentKernel(secondSeries, secondSeries, sigma)

	return math.Exp(crossAlignment - 0.5*(firstSelfAlignment+secondSelfAlignment)), nil
}

// SigmaHeuristic estimates a GAK bandwidth by sampling timepoint pairs across
// the collection: the median pointwise distance scaled by the square root of
// the median series length.
func SigmaHeuristic(collection series.Collection, seed int64) float64 {
	if len(collection) == 0 {
		return sigmaHeuristicFallbackSigmaValue
	}

	randomSource := rand.New(rand.NewSource(seed))

	sampledDistances := make([]float64, 0, sigmaHeuristicSampleLimitConstant)
	seriesLengths := make([]int, 0, len(collection))
	for _, seriesCase := range collection {
		_, timepoints := seriesCase.Dims()
		seriesLengths = append(seriesLengths, timepoints)
	}

	for sampleIndex := 0; sampleIndex < sigmaHeuristicSampleLimitConstant; sampleIndex++ {
		firstCase := collection[randomSource.Intn(len(collection))]
		secondCase := collection[randomSource.Intn(len(collection))]
		_, firstLength := firstCase.Dims()
		_, secondLength := secondCase.Dims()
		if firstLength == 0 || secondLength == 0 {
			continue
		}

		firstTimepoint := randomSource.Intn(firstLength)
		secondTimepoint := randomSource.Intn(secondLength)
		sampledDistances = append(sampledDistances, math.Sqrt(timepointSquaredDistance(firstCase, secondCase, firstTimepoint, secondTimepoint)))
	}

	medianDistance := medianOfValues(sampledDistances)
	if medianDistance == 0 {
		return sigmaHeuristicFallbackSigmaValue
	}

	sort.Ints(seriesLengths)
	medianLength := float64(seriesLengths[len(seriesLengths)/2])

	return medianDistance * math.Sqrt(medianLength)
}

// logAlignmentKernel runs the GAK recursion in log space: each cell combines
// its three predecessors through log-sum-exp and adds the local log kernel.
func logAlignmentKernel(firstSeries *mat.Dense, secondSeries *mat.Dense, sigma float64) float64 {
	_, firstLength := firstSeries.Dims()
	_, secondLength := secondSeries.Dims()

	logCells := make([][]float64, firstLength)
	for xIndex := range logCells {
		logCells[xIndex] = make([]float64, secondLength)
	}

	for xIndex := 0; xIndex < firstLength; xIndex++ {
		for yIndex := 0; yIndex < secondLength; yIndex++ {
			localLogKernel := localLogKernelValue(firstSeries, secondSeries, xIndex, yIndex, sigma)

			switch {
			case xIndex == 0 && yIndex == 0:
				logCells[xIndex][yIndex] = localLogKernel
			case xIndex == 0:
				logCells[xIndex][yIndex] = logCells[xIndex][yIndex-1] + localLogKernel
			case yIndex == 0:
				logCells[xIndex][yIndex] = logCells[xIndex-1][yIndex] + localLogKernel
			default:
				combined := logSumExpThree(
					logCells[xIndex-1][yIndex],
					logCells[xIndex][yIndex-1],
					logCells[xIndex-1][yIndex-1],
				)
				logCells[xIndex][yIndex] = combined + localLogKernel
			}
		}
	}

	return logCells[firstLength-1][secondLength-1]
}

// localLogKernelValue is the log of the geometrically divisible local kernel
// κ/(2-κ) with κ the Gaussian kernel between aligned timepoints.
func localLogKernelValue(firstSeries *mat.Dense, secondSeries *mat.Dense, firstIndex int, secondIndex int, sigma float64) float64 {
	squaredDistance := timepointSquaredDistance(firstSeries, secondSeries, firstIndex, secondIndex)
	gaussianExponent := -squaredDistance / (2 * sigma * sigma)

	denominator := 2 - math.Exp(gaussianExponent)
	if denominator <= 0 {
		return logZeroReplacementExponentConstant
	}

	return gaussianExponent - math.Log(denominator)
}

func timepointSquaredDistance(firstSeries *mat.Dense, secondSeries *mat.Dense, firstIndex int, secondIndex int) float64 {
	channels, _ := firstSeries.Dims()
	squaredSum := 0.0
	for channelIndex := 0; channelIndex < channels; channelIndex++ {
		difference := firstSeries.At(channelIndex, firstIndex) - secondSeries.At(channelIndex, secondIndex)
		squaredSum += difference * difference
	}
	return squaredSum
}

func logSumExpThree(firstValue float64, secondValue float64, thirdValue float64) float64 {
	maximumValue := math.Max(firstValue, math.Max(secondValue, thirdValue))
	if math.IsInf(maximumValue, -1) {
		return maximumValue
	}
	return maximumValue + math.Log(
		math.Exp(firstValue-maximumValue)+math.Exp(secondValue-maximumValue)+math.Exp(thirdValue-maximumValue),
	)
}

func medianOfValues(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sortedValues := append([]float64(nil), values...)
	sort.Float64s(sortedValues)
	middleIndex := len(sortedValues) / 2
	if len(sortedValues)%2 == 1 {
		return sortedValues[middleIndex]
	}
	return (sortedValues[middleIndex-1] + sortedValues[middleIndex]) / 2
}
