package series

import (
	"fmt"
	"math/rand"

	"gonum.org/v1/gonum/mat"
)

// SyntheticOptions configures the seeded synthetic collection generator.
type SyntheticOptions struct {
	Cases      int
	Channels   int
	Timepoints int
	Seed       int64
}

// GenerateSynthetic produces a deterministic collection of uniform draws in
// [-0.3, 0.7), matching the fixture range used by the estimator tests.
func GenerateSynthetic(options SyntheticOptions) (Collection, error) {
	dimensionValues := map[string]int{
		syntheticCasesDimensionNameConstant: options.Cases,
		syntheticChannelsDimensionName:      options.Channels,
		syntheticTimepointsDimensionName:    options.Timepoints,
	}
	for _, dimensionName := range []string{syntheticCasesDimensionNameConstant, syntheticChannelsDimensionName, syntheticTimepointsDimensionName} {
		if dimensionValues[dimensionName] <= 0 {
			return nil, fmt.Errorf(nonPositiveDimensionTemplateConstant, dimensionName, dimensionValues[dimensionName])
		}
	}

	randomSource := rand.New(rand.NewSource(options.Seed))
	valueRangeWidth := syntheticValueRangeUpperBoundConstant - syntheticValueRangeLowerBoundConstant

	collection := make(Collection, 0, options.Cases)
	for caseIndex := 0; caseIndex < options.Cases; caseIndex++ {
		values := make([]float64, options.Channels*options.Timepoints)
		for valueIndex := range values {
			values[valueIndex] = randomSource.Float64()*valueRangeWidth + syntheticValueRangeLowerBoundConstant
		}
		collection = append(collection, mat.NewDense(options.Channels, options.Timepoints, values))
	}

	return collection, nil
}
