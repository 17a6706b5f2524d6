package benchmark

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"
)

const (
	resultsURLTemplateConstant           = "%s/%s/%s.csv"
	unexpectedStatusTemplateConstant     = "results request for %s returned status %d"
	fetchFailureTemplateConstant         = "fetching results for %s: %w"
	parseFailureTemplateConstant         = "parsing results for %s: %w"
	cacheWriteFailureTemplateConstant    = "writing results cache for %s: %w"
	manifestWriteFailureTemplateConstant = "writing cache manifest: %w"
	malformedRowTemplateConstant         = "row %d has no resample columns"
	malformedValueTemplateConstant       = "row %d column %d is not a number: %w"
	noEstimatorsMessageConstant          = "at least one estimator name is required"
	emptyResultsTemplateConstant         = "results for %s contain no dataset rows"
	cacheManifestFileNameConstant        = "manifest.yaml"
	cachedResultsFileTemplateConstant    = "%s.csv"
	cacheDirectoryPermissionsConstant    = 0o755
	cacheFilePermissionsConstant         = 0o644
	defaultFetchConcurrencyConstant      = 4
	defaultRequestTimeoutConstant        = 30 * time.Second

	runIdentifierLogFieldConstant   = "run_id"
	estimatorLogFieldConstant       = "estimator"
	estimatorsLogFieldConstant      = "estimators"
	datasetCountLogFieldConstant    = "datasets"
	sourceLogFieldConstant          = "source"
	loadStartedLogMessageConstant   = "loading published estimator results"
	cacheHitLogMessageConstant      = "serving estimator results from cache"
	resultsLoadedLogMessageConstant = "estimator results loaded"
)

// ErrNoEstimators indicates a load request without estimator names.
var ErrNoEstimators = errors.New(noEstimatorsMessageConstant)

// EstimatorResults holds the accuracy table for one estimator: dataset name
// mapped to per-resample accuracies.
type EstimatorResults struct {
	Estimator  string
	Accuracies map[string][]float64
}

// MeanAccuracy averages the resample accuracies for a dataset.
func (results EstimatorResults) MeanAccuracy(datasetName string) (float64, bool) {
	resamples, known := results.Accuracies[datasetName]
	if !known || len(resamples) == 0 {
		return 0, false
	}

	total := 0.0
	for _, accuracy := range resamples {
		total += accuracy
	}
	return total / float64(len(resamples)), true
}

// cacheManifest records what the on-disk results cache holds.
type cacheManifest struct {
	Task    string               `yaml:"task"`
	Entries []cacheManifestEntry `yaml:"entries"`
}

type cacheManifestEntry struct {
	Estimator string    `yaml:"estimator"`
	SourceURL string    `yaml:"source_url"`
	FetchedAt time.Time `yaml:"fetched_at"`
}

// LoaderOptions configures a ResultsLoader.
type LoaderOptions struct {
	// BaseURL is the results archive root; estimator files resolve to
	// <BaseURL>/<Task>/<estimator>.csv.
	BaseURL string
	Task    string
	// CacheDirectory, when non-empty, enables the on-disk results cache.
	CacheDirectory string
	Concurrency    int
	HTTPClient     *http.Client
}

// ResultsLoader fetches published estimator accuracy tables over HTTP with an
// optional on-disk cache.
type ResultsLoader struct {
	logger         *zap.Logger
	httpClient     *http.Client
	baseURL        string
	task           string
	cacheDirectory string
	concurrency    int
	manifestMutex  sync.Mutex
}

// NewResultsLoader constructs a loader with the provided options.
func NewResultsLoader(logger *zap.Logger, options LoaderOptions) *ResultsLoader {
	if logger == nil {
		logger = zap.NewNop()
	}

	httpClient := options.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultRequestTimeoutConstant}
	}

	concurrency := options.Concurrency
	if concurrency < 1 {
		concurrency = defaultFetchConcurrencyConstant
	}

	return &ResultsLoader{
		logger:         logger,
		httpClient:     httpClient,
		baseURL:        strings.TrimRight(options.BaseURL, "/"),
		task:           options.Task,
		cacheDirectory: options.CacheDirectory,
		concurrency:    concurrency,
	}
}

// Load fetches the results for every named estimator, fanning requests out
// with bounded concurrency. Cached estimators are served from disk.
func (loader *ResultsLoader) Load(executionContext context.Context, estimatorNames []string) (map[string]EstimatorResults, error) {
	if len(estimatorNames) == 0 {
		return nil, ErrNoEstimators
	}

	runIdentifier := uuid.NewString()
	loader.logger.Info(loadStartedLogMessageConstant,
		zap.String(runIdentifierLogFieldConstant, runIdentifier),
		zap.Strings(estimatorsLogFieldConstant, estimatorNames),
	)

	resultsByEstimator := make([]EstimatorResults, len(estimatorNames))
	group, groupContext := errgroup.WithContext(executionContext)
	group.SetLimit(loader.concurrency)

	for estimatorIndex, estimatorName := range estimatorNames {
		group.Go(func() error {
			estimatorResults, loadError := loader.loadEstimator(groupContext, runIdentifier, estimatorName)
			if loadError != nil {
				return loadError
			}
			resultsByEstimator[estimatorIndex] = estimatorResults
			return nil
		})
	}

	if waitError := group.Wait(); waitError != nil {
		return nil, waitError
	}

	loaded := make(map[string]EstimatorResults, len(resultsByEstimator))
	for _, estimatorResults := range resultsByEstimator {
		loaded[estimatorResults.Estimator] = estimatorResults
		loader.logger.Info(resultsLoadedLogMessageConstant,
			zap.String(runIdentifierLogFieldConstant, runIdentifier),
			zap.String(estimatorLogFieldConstant, estimatorResults.Estimator),
			zap.Int(datasetCountLogFieldConstant, len(estimatorResults.Accuracies)),
		)
	}

	return loaded, nil
}

func (loader *ResultsLoader) loadEstimator(executionContext context.Context, runIdentifier string, estimatorName string) (EstimatorResults, error) {
	if cachedBody, cacheHit := loader.readCache(estimatorName); cacheHit {
		loader.logger.Debug(cacheHitLogMessageConstant,
			zap.String(runIdentifierLogFieldConstant, runIdentifier),
			zap.String(estimatorLogFieldConstant, estimatorName),
		)
		return loader.parseResults(estimatorName, cachedBody)
	}

	resultsURL := fmt.Sprintf(resultsURLTemplateConstant, loader.baseURL, loader.task, estimatorName)
	loader.logger.Debug(loadStartedLogMessageConstant,
		zap.String(runIdentifierLogFieldConstant, runIdentifier),
		zap.String(estimatorLogFieldConstant, estimatorName),
		zap.String(sourceLogFieldConstant, resultsURL),
	)

	body, fetchError := loader.fetch(executionContext, resultsURL, estimatorName)
	if fetchError != nil {
		return EstimatorResults{}, fetchError
	}

	estimatorResults, parseError := loader.parseResults(estimatorName, body)
	if parseError != nil {
		return EstimatorResults{}, parseError
	}

	if cacheError := loader.writeCache(estimatorName, resultsURL, body); cacheError != nil {
		return EstimatorResults{}, cacheError
	}

	return estimatorResults, nil
}

func (loader *ResultsLoader) fetch(executionContext context.Context, resultsURL string, estimatorName string) ([]byte, error) {
	request, requestError := http.NewRequestWithContext(executionContext, http.MethodGet, resultsURL, nil)
	if requestError != nil {
		return nil, fmt.Errorf(fetchFailureTemplateConstant, estimatorName, requestError)
	}

	response, responseError := loader.httpClient.Do(request)
	if responseError != nil {
		return nil, fmt.Errorf(fetchFailureTemplateConstant, estimatorName, responseError)
	}
	defer response.Body.Close()

	if response.StatusCode != http.StatusOK {
		return nil, fmt.Errorf(unexpectedStatusTemplateConstant, estimatorName, response.StatusCode)
	}

	body, readError := io.ReadAll(response.Body)
	if readError != nil {
		return nil, fmt.Errorf(fetchFailureTemplateConstant, estimatorName, readError)
	}

	return body, nil
}

// parseResults decodes a results table: one row per dataset, first column the
// dataset name, remaining columns per-resample accuracies. A leading header
// row with non-numeric resample columns is skipped.
func (loader *ResultsLoader) parseResults(estimatorName string, body []byte) (EstimatorResults, error) {
	reader := csv.NewReader(strings.NewReader(string(body)))
	reader.FieldsPerRecord = -1

	records, readError := reader.ReadAll()
	if readError != nil {
		return EstimatorResults{}, fmt.Errorf(parseFailureTemplateConstant, estimatorName, readError)
	}

	accuracies := make(map[string][]float64)
	for rowIndex, record := range records {
		if len(record) < 2 {
			return EstimatorResults{}, fmt.Errorf(parseFailureTemplateConstant, estimatorName,
				fmt.Errorf(malformedRowTemplateConstant, rowIndex))
		}

		if rowIndex == 0 && !rowIsNumeric(record[1:]) {
			continue
		}

		resamples := make([]float64, 0, len(record)-1)
		for columnIndex, field := range record[1:] {
			accuracy, parseError := strconv.ParseFloat(strings.TrimSpace(field), 64)
			if parseError != nil {
				return EstimatorResults{}, fmt.Errorf(parseFailureTemplateConstant, estimatorName,
					fmt.Errorf(malformedValueTemplateConstant, rowIndex, columnIndex+1, parseError))
			}
			resamples = append(resamples, accuracy)
		}
		accuracies[strings.TrimSpace(record[0])] = resamples
	}

	if len(accuracies) == 0 {
		return EstimatorResults{}, fmt.Errorf(emptyResultsTemplateConstant, estimatorName)
	}

	return EstimatorResults{Estimator: estimatorName, Accuracies: accuracies}, nil
}

func rowIsNumeric(fields []string) bool {
	for _, field := range fields {
		if _, parseError := strconv.ParseFloat(strings.TrimSpace(field), 64); parseError != nil {
			return false
		}
	}
	return true
}

func (loader *ResultsLoader) cacheTaskDirectory() string {
	return filepath.Join(loader.cacheDirectory, loader.task)
}

func (loader *ResultsLoader) readCache(estimatorName string) ([]byte, bool) {
	if loader.cacheDirectory == "" {
		return nil, false
	}

	cachedFilePath := filepath.Join(loader.cacheTaskDirectory(), fmt.Sprintf(cachedResultsFileTemplateConstant, estimatorName))
	body, readError := os.ReadFile(cachedFilePath)
	if readError != nil {
		return nil, false
	}
	return body, true
}

func (loader *ResultsLoader) writeCache(estimatorName string, sourceURL string, body []byte) error {
	if loader.cacheDirectory == "" {
		return nil
	}

	taskDirectory := loader.cacheTaskDirectory()
	if directoryError := os.MkdirAll(taskDirectory, cacheDirectoryPermissionsConstant); directoryError != nil {
		return fmt.Errorf(cacheWriteFailureTemplateConstant, estimatorName, directoryError)
	}

	cachedFilePath := filepath.Join(taskDirectory, fmt.Sprintf(cachedResultsFileTemplateConstant, estimatorName))
	if writeError := os.WriteFile(cachedFilePath, body, cacheFilePermissionsConstant); writeError != nil {
		return fmt.Errorf(cacheWriteFailureTemplateConstant, estimatorName, writeError)
	}

	return loader.appendManifestEntry(estimatorName, sourceURL)
}

func (loader *ResultsLoader) appendManifestEntry(estimatorName string, sourceURL string) error {
	loader.manifestMutex.Lock()
	defer loader.manifestMutex.Unlock()

	manifestPath := filepath.Join(loader.cacheTaskDirectory(), cacheManifestFileNameConstant)

	manifest := cacheManifest{Task: loader.task}
	if existing, readError := os.ReadFile(manifestPath); readError == nil {
		if unmarshalError := yaml.Unmarshal(existing, &manifest); unmarshalError != nil {
			return fmt.Errorf(manifestWriteFailureTemplateConstant, unmarshalError)
		}
	}

	entries := manifest.Entries[:0]
	for _, entry := range manifest.Entries {
		if entry.Estimator != estimatorName {
			entries = append(entries, entry)
		}
	}
	manifest.Entries = append(entries, cacheManifestEntry{
		Estimator: estimatorName,
		SourceURL: sourceURL,
		FetchedAt: time.Now().UTC(),
	})

	encoded, marshalError := yaml.Marshal(manifest)
	if marshalError != nil {
		return fmt.Errorf(manifestWriteFailureTemplateConstant, marshalError)
	}

	if writeError := os.WriteFile(manifestPath, encoded, cacheFilePermissionsConstant); writeError != nil {
		return fmt.Errorf(manifestWriteFailureTemplateConstant, writeError)
	}

	return nil
}
