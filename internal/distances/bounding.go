package distances

import (
	"errors"
	"fmt"
	"math"
)

const (
	nonPositiveSizeTemplateConstant       = "bounding matrix sizes must be positive, got %d x %d"
	windowRangeMessageConstant            = "window must lie in [0, 1]"
	itakuraSlopeRangeMessageConstant      = "itakura max slope must lie in (0, 1]"
	conflictingConstraintsMessageConstant = "window and itakura max slope are mutually exclusive"
	itakuraRoundingDecimalPlacesConstant  = 2
	unsetBoundingConstraintConstant       = -1.0
)

// ErrWindowOutOfRange indicates the Sakoe-Chiba window fraction was outside [0, 1].
var ErrWindowOutOfRange = errors.New(windowRangeMessageConstant)

// ErrItakuraSlopeOutOfRange indicates the Itakura slope fraction was outside (0, 1].
var ErrItakuraSlopeOutOfRange = errors.New(itakuraSlopeRangeMessageConstant)

// ErrConflictingConstraints indicates both a window and an Itakura slope were requested.
var ErrConflictingConstraints = errors.New(conflictingConstraintsMessageConstant)

// BoundingOptions selects the constraint shape applied to a bounding matrix.
// Negative values leave the corresponding constraint unset.
type BoundingOptions struct {
	Window          float64
	ItakuraMaxSlope float64
}

// UnconstrainedBounding returns options describing a full bounding matrix.
func UnconstrainedBounding() BoundingOptions {
	return BoundingOptions{
		Window:          unsetBoundingConstraintConstant,
		ItakuraMaxSlope: unsetBoundingConstraintConstant,
	}
}

// WindowBounding returns options describing a Sakoe-Chiba band with the given width fraction.
func WindowBounding(windowFraction float64) BoundingOptions {
	options := UnconstrainedBounding()
	options.Window = windowFraction
	return options
}

// ItakuraBounding returns options describing an Itakura parallelogram with the given slope fraction.
func ItakuraBounding(maxSlopeFraction float64) BoundingOptions {
	options := UnconstrainedBounding()
	options.ItakuraMaxSlope = maxSlopeFraction
	return options
}

// BoundingMatrix marks which cost matrix cells an alignment may visit.
type BoundingMatrix [][]bool

// Admissible reports whether the alignment may visit cell (xIndex, yIndex).
func (boundingMatrix BoundingMatrix) Admissible(xIndex int, yIndex int) bool {
	if xIndex < 0 || xIndex >= len(boundingMatrix) {
		return false
	}
	row := boundingMatrix[xIndex]
	if yIndex < 0 || yIndex >= len(row) {
		return false
	}
	return row[yIndex]
}

// CountAdmissible tallies the admissible cells in the matrix.
func (boundingMatrix BoundingMatrix) CountAdmissible() int {
	admissibleCells := 0
	for _, row := range boundingMatrix {
		for _, admissible := range row {
			if admissible {
				admissibleCells++
			}
		}
	}
	return admissibleCells
}

// NewBoundingMatrix builds a bounding matrix of the requested shape. Without
// constraints every cell is admissible; a window fraction produces a
// Sakoe-Chiba band and an Itakura slope fraction produces a parallelogram.
func NewBoundingMatrix(xSize int, ySize int, options BoundingOptions) (BoundingMatrix, error) {
	if xSize <= 0 || ySize <= 0 {
		return nil, fmt.Errorf(nonPositiveSizeTemplateConstant, xSize, ySize)
	}

	windowRequested := options.Window >= 0
	itakuraRequested := options.ItakuraMaxSlope >= 0

	switch {
	case windowRequested && itakuraRequested:
		return nil, ErrConflictingConstraints
	case windowRequested:
		if options.Window > 1 {
			return nil, ErrWindowOutOfRange
		}
		return sakoeChibaBounding(xSize, ySize, options.Window), nil
	case itakuraRequested:
		if options.ItakuraMaxSlope == 0 || options.ItakuraMaxSlope > 1 {
			return nil, ErrItakuraSlopeOutOfRange
		}
		return itakuraParallelogramBounding(xSize, ySize, options.ItakuraMaxSlope), nil
	default:
		return fullBounding(xSize, ySize), nil
	}
}

func allocateBounding(xSize int, ySize int) BoundingMatrix {
	boundingMatrix := make(BoundingMatrix, xSize)
	for xIndex := range boundingMatrix {
		boundingMatrix[xIndex] = make([]bool, ySize)
	}
	return boundingMatrix
}

func fullBounding(xSize int, ySize int) BoundingMatrix {
	boundingMatrix := allocateBounding(xSize, ySize)
	for xIndex := range boundingMatrix {
		for yIndex := range boundingMatrix[xIndex] {
			boundingMatrix[xIndex][yIndex] = true
		}
	}
	return boundingMatrix
}

// sakoeChibaBounding admits cells within a band of radius
// floor(window * max(xSize, ySize)) around the diagonal.
func sakoeChibaBounding(xSize int, ySize int, windowFraction float64) BoundingMatrix {
	boundingMatrix := allocateBounding(xSize, ySize)

	longerSize := xSize
	if ySize > longerSize {
		longerSize = ySize
	}
	bandRadius := int(math.Floor(windowFraction * float64(longerSize)))

	for xIndex := 0; xIndex < xSize; xIndex++ {
		diagonalCenter := float64(xIndex) * float64(ySize-1) / float64(max(xSize-1, 1))
		for yIndex := 0; yIndex < ySize; yIndex++ {
			if math.Abs(float64(yIndex)-diagonalCenter) <= float64(bandRadius) {
				boundingMatrix[xIndex][yIndex] = true
			}
		}
	}

	return boundingMatrix
}

// itakuraParallelogramBounding admits cells inside the parallelogram formed by
// lines of gradient s and 1/s from both corners, where
// s = maxSlopeFraction * min(xSize, ySize).
func itakuraParallelogramBounding(xSize int, ySize int, maxSlopeFraction float64) BoundingMatrix {
	boundingMatrix := allocateBounding(xSize, ySize)

	shorterSize := xSize
	if ySize < shorterSize {
		shorterSize = ySize
	}

	maxSlope := maxSlopeFraction * float64(shorterSize)
	if maxSlope < 1 {
		maxSlope = 1
	}
	minSlope := 1.0 / maxSlope

	sizeRatio := float64(xSize) / float64(ySize)
	scaledMaxSlope := maxSlope * sizeRatio
	scaledMinSlope := minSlope * sizeRatio

	for yIndex := 0; yIndex < ySize; yIndex++ {
		lowerFromOrigin := scaledMinSlope * float64(yIndex)
		lowerFromEnd := float64(xSize-1) - scaledMaxSlope*float64(ySize-1) + scaledMaxSlope*float64(yIndex)
		lowerBound := math.Ceil(roundDecimal(math.Max(lowerFromOrigin, lowerFromEnd), itakuraRoundingDecimalPlacesConstant))

		upperFromOrigin := scaledMaxSlope * float64(yIndex)
		upperFromEnd := float64(xSize-1) - scaledMinSlope*float64(ySize-1) + scaledMinSlope*float64(yIndex)
		upperBound := math.Floor(roundDecimal(math.Min(upperFromOrigin, upperFromEnd), itakuraRoundingDecimalPlacesConstant))

		for xIndex := int(lowerBound); xIndex <= int(upperBound); xIndex++ {
			if xIndex >= 0 && xIndex < xSize {
				boundingMatrix[xIndex][yIndex] = true
			}
		}
	}

	return boundingMatrix
}

func roundDecimal(value float64, decimalPlaces int) float64 {
	scale := math.Pow(10, float64(decimalPlaces))
	return math.Round(value*scale) / scale
}
