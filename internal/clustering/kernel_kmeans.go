package clustering

import (
	"errors"
	"fmt"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/mat"

	"github.com/andregdmitri/aeon/internal/series"
)

const (
	defaultClusterCountConstant           = 8
	defaultRestartCountConstant           = 10
	defaultMaxIterationsConstant          = 300
	defaultToleranceConstant              = 1e-4
	notFittedMessageConstant              = "kernel k-means estimator is not fitted"
	tooFewCasesTemplateConstant           = "collection has %d cases but %d clusters were requested"
	nonPositiveClustersTemplateConstant   = "cluster count must be positive, got %d"
	nonPositiveRestartsTemplateConstant   = "restart count must be positive, got %d"
	kernelEvaluationErrorTemplateConstant = "failed to evaluate kernel for cases %d and %d: %w"
)

// ErrNotFitted indicates Predict or Score was called before Fit.
var ErrNotFitted = errors.New(notFittedMessageConstant)

// KernelKMeansOptions configures the clusterer.
type KernelKMeansOptions struct {
	NClusters     int
	NInit         int
	MaxIterations int
	Tolerance     float64
	// Sigma is the GAK bandwidth; zero selects the sampling heuristic.
	Sigma float64
	Seed  int64
}

// DefaultKernelKMeansOptions mirrors the historical parameter defaults.
func DefaultKernelKMeansOptions() KernelKMeansOptions {
	return KernelKMeansOptions{
		NClusters:     defaultClusterCountConstant,
		NInit:         defaultRestartCountConstant,
		MaxIterations: defaultMaxIterationsConstant,
		Tolerance:     defaultToleranceConstant,
	}
}

// KernelKMeans clusters a collection by k-means in the feature space induced
// by the Global Alignment Kernel.
type KernelKMeans struct {
	options KernelKMeansOptions

	fitted             bool
	trainingCollection series.Collection
	trainingKernel     *mat.SymDense
	resolvedSigma      float64

	labels     []int
	inertia    float64
	iterations int
}

// NewKernelKMeans constructs a clusterer with the provided options.
func NewKernelKMeans(options KernelKMeansOptions) (*KernelKMeans, error) {
	if options.NClusters <= 0 {
		return nil, fmt.Errorf(nonPositiveClustersTemplateConstant, options.NClusters)
	}
	if options.NInit <= 0 {
		return nil, fmt.Errorf(nonPositiveRestartsTemplateConstant, options.NInit)
	}
	if options.MaxIterations <= 0 {
		options.MaxIterations = defaultMaxIterationsConstant
	}
	if options.Tolerance <= 0 {
		options.Tolerance = defaultToleranceConstant
	}
	return &KernelKMeans{options: options}, nil
}

// Labels returns the cluster index assigned to each training case.
func (clusterer *KernelKMeans) Labels() ([]int, error) {
	if !clusterer.fitted {
		return nil, ErrNotFitted
	}
	return append([]int(nil), clusterer.labels...), nil
}

// Inertia returns the within-cluster kernel distance of the best restart.
func (clusterer *KernelKMeans) Inertia() (float64, error) {
	if !clusterer.fitted {
		return 0, ErrNotFitted
	}
	return clusterer.inertia, nil
}

// Iterations returns the iteration count of the best restart.
func (clusterer *KernelKMeans) Iterations() (int, error) {
	if !clusterer.fitted {
		return 0, ErrNotFitted
	}
	return clusterer.iterations, nil
}

// Score returns the absolute inertia of the fitted model.
func (clusterer *KernelKMeans) Score() (float64, error) {
	if !clusterer.fitted {
		return 0, ErrNotFitted
	}
	return math.Abs(clusterer.inertia), nil
}

// Fit clusters the collection, keeping the best of NInit seeded restarts.
func (clusterer *KernelKMeans) Fit(collection series.Collection) error {
	if validationError := collection.Validate(); validationError != nil {
		return validationError
	}
	if len(collection) < clusterer.options.NClusters {
		return fmt.Errorf(tooFewCasesTemplateConstant, len(collection), clusterer.options.NClusters)
	}

	resolvedSigma := clusterer.options.Sigma
	if resolvedSigma <= 0 {
		resolvedSigma = SigmaHeuristic(collection, clusterer.options.Seed)
	}

	trainingKernel, kernelError := kernelMatrix(collection, resolvedSigma)
	if kernelError != nil {
		return kernelError
	}

	randomSource := rand.New(rand.NewSource(clusterer.options.Seed))

	bestInertia := math.Inf(1)
	var bestLabels []int
	bestIterations := 0

	for restartIndex := 0; restartIndex < clusterer.options.NInit; restartIndex++ {
		labels, inertia, iterations := clusterer.runSingleRestart(trainingKernel, randomSource)
		if inertia < bestInertia {
			bestInertia = inertia
			bestLabels = labels
			bestIterations = iterations
		}
	}

	clusterer.fitted = true
	clusterer.trainingCollection = collection
	clusterer.trainingKernel = trainingKernel
	clusterer.resolvedSigma = resolvedSigma
	clusterer.labels = bestLabels
	clusterer.inertia = bestInertia
	clusterer.iterations = bestIterations

	return nil
}

// Predict assigns each case of a new collection to the nearest fitted cluster
// in kernel feature space.
func (clusterer *KernelKMeans) Predict(collection series.Collection) ([]int, error) {
	if !clusterer.fitted {
		return nil, ErrNotFitted
	}
	if validationError := collection.Validate(); validationError != nil {
		return nil, validationError
	}

	clusterMembers := membersByCluster(clusterer.labels, clusterer.options.NClusters)
	withinClusterTerms := withinClusterKernelSums(clusterer.trainingKernel, clusterMembers)

	predictions := make([]int, len(collection))
	for caseIndex, seriesCase := range collection {
		crossKernel := make([]float64, len(clusterer.trainingCollection))
		for trainingIndex, trainingCase := range clusterer.trainingCollection {
			kernelValue, kernelError := GAK(seriesCase, trainingCase, clusterer.resolvedSigma)
			if kernelError != nil {
				return nil, fmt.Errorf(kernelEvaluationErrorTemplateConstant, caseIndex, trainingIndex, kernelError)
			}
			crossKernel[trainingIndex] = kernelValue
		}

		bestCluster := 0
		bestDistance := math.Inf(1)
		for clusterIndex, members := range clusterMembers {
			if len(members) == 0 {
				continue
			}

			crossSum := 0.0
			for _, memberIndex := range members {
				crossSum += crossKernel[memberIndex]
			}
			memberCount := float64(len(members))
			clusterDistance := -2*crossSum/memberCount + withinClusterTerms[clusterIndex]
			if clusterDistance < bestDistance {
				bestDistance = clusterDistance
				bestCluster = clusterIndex
			}
		}
		predictions[caseIndex] = bestCluster
	}

	return predictions, nil
}

// runSingleRestart relabels cases against kernel-space centroids until the
// inertia improvement drops below the tolerance.
func (clusterer *KernelKMeans) runSingleRestart(trainingKernel *mat.SymDense, randomSource *rand.Rand) ([]int, float64, int) {
	caseCount, _ := trainingKernel.Dims()

	labels := make([]int, caseCount)
	for caseIndex := range labels {
		labels[caseIndex] = randomSource.Intn(clusterer.options.NClusters)
	}

	previousInertia := math.Inf(1)
	inertia := math.Inf(1)
	iterations := 0

	for iterationIndex := 0; iterationIndex < clusterer.options.MaxIterations; iterationIndex++ {
		iterations = iterationIndex + 1

		clusterMembers := membersByCluster(labels, clusterer.options.NClusters)
		reseedEmptyClusters(trainingKernel, clusterMembers, labels)
		clusterMembers = membersByCluster(labels, clusterer.options.NClusters)

		withinClusterTerms := withinClusterKernelSums(trainingKernel, clusterMembers)

		inertia = 0.0
		updatedLabels := make([]int, caseCount)
		for caseIndex := 0; caseIndex < caseCount; caseIndex++ {
			bestCluster := 0
			bestDistance := math.Inf(1)
			for clusterIndex, members := range clusterMembers {
				if len(members) == 0 {
					continue
				}

				crossSum := 0.0
				for _, memberIndex := range members {
					crossSum += trainingKernel.At(caseIndex, memberIndex)
				}
				memberCount := float64(len(members))
				clusterDistance := trainingKernel.At(caseIndex, caseIndex) - 2*crossSum/memberCount + withinClusterTerms[clusterIndex]
				if clusterDistance < bestDistance {
					bestDistance = clusterDistance
					bestCluster = clusterIndex
				}
			}
			updatedLabels[caseIndex] = bestCluster
			inertia += bestDistance
		}

		labels = updatedLabels

		if math.Abs(previousInertia-inertia) < clusterer.options.Tolerance {
			break
		}
		previousInertia = inertia
	}

	return labels, inertia, iterations
}

func kernelMatrix(collection series.Collection, sigma float64) (*mat.SymDense, error) {
	kernel := mat.NewSymDense(len(collection), nil)
	for firstIndex := 0; firstIndex < len(collection); firstIndex++ {
		for secondIndex := firstIndex; secondIndex < len(collection); secondIndex++ {
			kernelValue, kernelError := GAK(collection[firstIndex], collection[secondIndex], sigma)
			if kernelError != nil {
				return nil, fmt.Errorf(kernelEvaluationErrorTemplateConstant, firstIndex, secondIndex, kernelError)
			}
			kernel.SetSym(firstIndex, secondIndex, kernelValue)
		}
	}
	return kernel, nil
}

func membersByCluster(labels []int, clusterCount int) [][]int {
	clusterMembers := make([][]int, clusterCount)
	for caseIndex, label := range labels {
		clusterMembers[label] = append(clusterMembers[label], caseIndex)
	}
	return clusterMembers
}

// withinClusterKernelSums returns (1/|c|²) Σ_{j,l∈c} K[j][l] per cluster.
func withinClusterKernelSums(trainingKernel *mat.SymDense, clusterMembers [][]int) []float64 {
	withinClusterTerms := make([]float64, len(clusterMembers))
	for clusterIndex, members := range clusterMembers {
		if len(members) == 0 {
			continue
		}
		pairwiseSum := 0.0
		for _, firstMember := range members {
			for _, secondMember := range members {
				pairwiseSum += trainingKernel.At(firstMember, secondMember)
			}
		}
		memberCount := float64(len(members))
		withinClusterTerms[clusterIndex] = pairwiseSum / (memberCount * memberCount)
	}
	return withinClusterTerms
}

// reseedEmptyClusters moves the case farthest from its current centroid in
// kernel feature space into each empty cluster so every centroid stays
// defined. Singleton clusters are never drained, since that would only move
// the emptiness elsewhere.
func reseedEmptyClusters(trainingKernel *mat.SymDense, clusterMembers [][]int, labels []int) {
	for clusterIndex, members := range clusterMembers {
		if len(members) > 0 {
			continue
		}

		currentMembers := membersByCluster(labels, len(clusterMembers))
		withinClusterTerms := withinClusterKernelSums(trainingKernel, currentMembers)

		reseededCase := -1
		farthestDistance := math.Inf(-1)
		for caseIndex, label := range labels {
			if len(currentMembers[label]) <= 1 {
				continue
			}

			crossSum := 0.0
			for _, memberIndex := range currentMembers[label] {
				crossSum += trainingKernel.At(caseIndex, memberIndex)
			}
			memberCount := float64(len(currentMembers[label]))
			caseDistance := trainingKernel.At(caseIndex, caseIndex) - 2*crossSum/memberCount + withinClusterTerms[label]
			if caseDistance > farthestDistance {
				farthestDistance = caseDistance
				reseededCase = caseIndex
			}
		}

		if reseededCase >= 0 {
			labels[reseededCase] = clusterIndex
		}
	}
}
