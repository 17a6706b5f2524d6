package benchmark

import (
	"errors"
	"sort"
)

const (
	tooFewEstimatorsMessageConstant = "comparing estimators requires at least two result sets"
	noSharedDatasetsMessageConstant = "the estimators share no datasets"
)

// ErrTooFewEstimators indicates a comparison over fewer than two estimators.
var ErrTooFewEstimators = errors.New(tooFewEstimatorsMessageConstant)

// ErrNoSharedDatasets indicates the estimators have no dataset in common.
var ErrNoSharedDatasets = errors.New(noSharedDatasetsMessageConstant)

// PairwiseRecord counts how often the row estimator beats, ties, and loses to
// the column estimator on the shared datasets.
type PairwiseRecord struct {
	Wins   int
	Ties   int
	Losses int
}

// EstimatorSummary aggregates one estimator's standing across the shared
// datasets.
type EstimatorSummary struct {
	Estimator    string
	MeanAccuracy float64
	AverageRank  float64
	DatasetWins  int
}

// Comparison is the cross-estimator report over the shared datasets.
type Comparison struct {
	Estimators []string
	Datasets   []string
	// MeanAccuracies maps estimator then dataset to the resample mean.
	MeanAccuracies map[string]map[string]float64
	// Pairwise maps row then column estimator to the head-to-head record.
	Pairwise map[string]map[string]PairwiseRecord
	// BestPerDataset maps each dataset to the highest-accuracy estimator.
	BestPerDataset map[string]string
	Summaries      []EstimatorSummary
}

// Compare builds the comparison report for the loaded estimator results,
// restricted to the datasets every estimator covers.
func Compare(resultsByEstimator map[string]EstimatorResults) (*Comparison, error) {
	if len(resultsByEstimator) < 2 {
		return nil, ErrTooFewEstimators
	}

	estimatorNames := make([]string, 0, len(resultsByEstimator))
	for estimatorName := range resultsByEstimator {
		estimatorNames = append(estimatorNames, estimatorName)
	}
	sort.Strings(estimatorNames)

	sharedDatasets := sharedDatasetNames(resultsByEstimator, estimatorNames)
	if len(sharedDatasets) == 0 {
		return nil, ErrNoSharedDatasets
	}

	meanAccuracies := make(map[string]map[string]float64, len(estimatorNames))
	for _, estimatorName := range estimatorNames {
		datasetMeans := make(map[string]float64, len(sharedDatasets))
		for _, datasetName := range sharedDatasets {
			meanAccuracy, _ := resultsByEstimator[estimatorName].MeanAccuracy(datasetName)
			datasetMeans[datasetName] = meanAccuracy
		}
		meanAccuracies[estimatorName] = datasetMeans
	}

	comparison := &Comparison{
		Estimators:     estimatorNames,
		Datasets:       sharedDatasets,
		MeanAccuracies: meanAccuracies,
		Pairwise:       pairwiseRecords(estimatorNames, sharedDatasets, meanAccuracies),
		BestPerDataset: bestPerDataset(estimatorNames, sharedDatasets, meanAccuracies),
	}
	comparison.Summaries = summarize(estimatorNames, sharedDatasets, meanAccuracies, comparison.BestPerDataset)

	return comparison, nil
}

// sharedDatasetNames intersects the dataset sets of all estimators, sorted.
func sharedDatasetNames(resultsByEstimator map[string]EstimatorResults, estimatorNames []string) []string {
	shared := make([]string, 0)
	for datasetName := range resultsByEstimator[estimatorNames[0]].Accuracies {
		coveredByAll := true
		for _, estimatorName := range estimatorNames[1:] {
			if _, covered := resultsByEstimator[estimatorName].Accuracies[datasetName]; !covered {
				coveredByAll = false
				break
			}
		}
		if coveredByAll {
			shared = append(shared, datasetName)
		}
	}
	sort.Strings(shared)
	return shared
}

func pairwiseRecords(estimatorNames []string, datasets []string, meanAccuracies map[string]map[string]float64) map[string]map[string]PairwiseRecord {
	records := make(map[string]map[string]PairwiseRecord, len(estimatorNames))
	for _, rowEstimator := range estimatorNames {
		rowRecords := make(map[string]PairwiseRecord, len(estimatorNames)-1)
		for _, columnEstimator := range estimatorNames {
			if rowEstimator == columnEstimator {
				continue
			}

			record := PairwiseRecord{}
			for _, datasetName := range datasets {
				rowAccuracy := meanAccuracies[rowEstimator][datasetName]
				columnAccuracy := meanAccuracies[columnEstimator][datasetName]
				switch {
				case rowAccuracy > columnAccuracy:
					record.Wins++
				case rowAccuracy < columnAccuracy:
					record.Losses++
				default:
					record.Ties++
				}
			}
			rowRecords[columnEstimator] = record
		}
		records[rowEstimator] = rowRecords
	}
	return records
}

func bestPerDataset(estimatorNames []string, datasets []string, meanAccuracies map[string]map[string]float64) map[string]string {
	best := make(map[string]string, len(datasets))
	for _, datasetName := range datasets {
		bestEstimator := estimatorNames[0]
		bestAccuracy := meanAccuracies[bestEstimator][datasetName]
		for _, estimatorName := range estimatorNames[1:] {
			if meanAccuracies[estimatorName][datasetName] > bestAccuracy {
				bestEstimator = estimatorName
				bestAccuracy = meanAccuracies[estimatorName][datasetName]
			}
		}
		best[datasetName] = bestEstimator
	}
	return best
}

func summarize(estimatorNames []string, datasets []string, meanAccuracies map[string]map[string]float64, bestPerDataset map[string]string) []EstimatorSummary {
	rankTotals := make(map[string]float64, len(estimatorNames))
	for _, datasetName := range datasets {
		for estimatorName, rank := range datasetRanks(estimatorNames, datasetName, meanAccuracies) {
			rankTotals[estimatorName] += rank
		}
	}

	summaries := make([]EstimatorSummary, 0, len(estimatorNames))
	for _, estimatorName := range estimatorNames {
		accuracyTotal := 0.0
		datasetWins := 0
		for _, datasetName := range datasets {
			accuracyTotal += meanAccuracies[estimatorName][datasetName]
			if bestPerDataset[datasetName] == estimatorName {
				datasetWins++
			}
		}

		summaries = append(summaries, EstimatorSummary{
			Estimator:    estimatorName,
			MeanAccuracy: accuracyTotal / float64(len(datasets)),
			AverageRank:  rankTotals[estimatorName] / float64(len(datasets)),
			DatasetWins:  datasetWins,
		})
	}

	sort.Slice(summaries, func(firstIndex, secondIndex int) bool {
		return summaries[firstIndex].AverageRank < summaries[secondIndex].AverageRank
	})
	return summaries
}

// datasetRanks assigns rank 1 to the highest accuracy; tied accuracies share
// the average of the ranks they span.
func datasetRanks(estimatorNames []string, datasetName string, meanAccuracies map[string]map[string]float64) map[string]float64 {
	ordered := append([]string(nil), estimatorNames...)
	sort.Slice(ordered, func(firstIndex, secondIndex int) bool {
		return meanAccuracies[ordered[firstIndex]][datasetName] > meanAccuracies[ordered[secondIndex]][datasetName]
	})

	ranks := make(map[string]float64, len(ordered))
	position := 0
	for position < len(ordered) {
		tieEnd := position
		for tieEnd+1 < len(ordered) &&
			meanAccuracies[ordered[tieEnd+1]][datasetName] == meanAccuracies[ordered[position]][datasetName] {
			tieEnd++
		}

		// Positions are zero-based; ranks are one-based.
		averageRank := float64(position+tieEnd)/2 + 1
		for tiedIndex := position; tiedIndex <= tieEnd; tiedIndex++ {
			ranks[ordered[tiedIndex]] = averageRank
		}
		position = tieEnd + 1
	}
	return ranks
}
