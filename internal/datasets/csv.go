package datasets

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/andregdmitri/aeon/internal/series"
)

const (
	openDatasetErrorTemplateConstant    = "failed to open dataset %q: %w"
	createDatasetErrorTemplateConstant  = "failed to create dataset %q: %w"
	readRecordErrorTemplateConstant     = "failed to read dataset row %d: %w"
	parseValueErrorTemplateConstant     = "failed to parse value %q in row %d: %w"
	rowTooShortTemplateConstant         = "dataset row %d needs a label and at least one value"
	emptyDatasetMessageConstant         = "dataset contains no rows"
	labelCountMismatchTemplateConstant  = "collection has %d cases but %d labels"
	writeRecordErrorTemplateConstant    = "failed to write dataset row %d: %w"
	floatFormatByteConstant             = 'g'
	floatFormatPrecisionConstant        = -1
	floatFormatBitSizeConstant          = 64
	minimumFieldsPerRecordConstant      = 2
	unlabelledPlaceholderLabelConstant  = ""
	labelledRecordLabelColumnIndexValue = 0
)

// ErrEmptyDataset indicates a dataset file contained no rows.
var ErrEmptyDataset = errors.New(emptyDatasetMessageConstant)

// Dataset couples a univariate collection with one label per case.
type Dataset struct {
	Collection series.Collection
	Labels     []string
}

// ReadLabelled loads a labelled univariate collection from a CSV file.
func ReadLabelled(datasetPath string) (Dataset, error) {
	datasetFile, openError := os.Open(datasetPath)
	if openError != nil {
		return Dataset{}, fmt.Errorf(openDatasetErrorTemplateConstant, datasetPath, openError)
	}
	defer datasetFile.Close()

	return parseLabelled(datasetFile)
}

func parseLabelled(datasetReader io.Reader) (Dataset, error) {
	csvReader := csv.NewReader(datasetReader)
	csvReader.FieldsPerRecord = -1

	caseValues := make([][]float64, 0)
	labels := make([]string, 0)

	for rowIndex := 0; ; rowIndex++ {
		record, readError := csvReader.Read()
		if errors.Is(readError, io.EOF) {
			break
		}
		if readError != nil {
			return Dataset{}, fmt.Errorf(readRecordErrorTemplateConstant, rowIndex, readError)
		}

		if len(record) < minimumFieldsPerRecordConstant {
			return Dataset{}, fmt.Errorf(rowTooShortTemplateConstant, rowIndex)
		}

		values := make([]float64, 0, len(record)-1)
		for _, rawValue := range record[labelledRecordLabelColumnIndexValue+1:] {
			parsedValue, parseError := strconv.ParseFloat(strings.TrimSpace(rawValue), floatFormatBitSizeConstant)
			if parseError != nil {
				return Dataset{}, fmt.Errorf(parseValueErrorTemplateConstant, rawValue, rowIndex, parseError)
			}
			values = append(values, parsedValue)
		}

		labels = append(labels, strings.TrimSpace(record[labelledRecordLabelColumnIndexValue]))
		caseValues = append(caseValues, values)
	}

	if len(caseValues) == 0 {
		return Dataset{}, ErrEmptyDataset
	}

	return Dataset{Collection: series.NewUnivariateCollection(caseValues), Labels: labels}, nil
}

// WriteLabelled persists a labelled univariate collection as a CSV file.
func WriteLabelled(datasetPath string, dataset Dataset) error {
	if validationError := dataset.Collection.RequireUnivariate(); validationError != nil {
		return validationError
	}
	if len(dataset.Labels) != len(dataset.Collection) {
		return fmt.Errorf(labelCountMismatchTemplateConstant, len(dataset.Collection), len(dataset.Labels))
	}

	datasetFile, createError := os.Create(datasetPath)
	if createError != nil {
		return fmt.Errorf(createDatasetErrorTemplateConstant, datasetPath, createError)
	}
	defer datasetFile.Close()

	csvWriter := csv.NewWriter(datasetFile)
	defer csvWriter.Flush()

	for caseIndex := range dataset.Collection {
		values, valuesError := dataset.Collection.UnivariateValues(caseIndex)
		if valuesError != nil {
			return valuesError
		}

		record := make([]string, 0, len(values)+1)
		record = append(record, dataset.Labels[caseIndex])
		for _, value := range values {
			record = append(record, strconv.FormatFloat(value, floatFormatByteConstant, floatFormatPrecisionConstant, floatFormatBitSizeConstant))
		}

		if writeError := csvWriter.Write(record); writeError != nil {
			return fmt.Errorf(writeRecordErrorTemplateConstant, caseIndex, writeError)
		}
	}

	csvWriter.Flush()
	return csvWriter.Error()
}

// UnlabelledLabels returns placeholder labels for collections without classes.
func UnlabelledLabels(caseCount int) []string {
	labels := make([]string, caseCount)
	for labelIndex := range labels {
		labels[labelIndex] = unlabelledPlaceholderLabelConstant
	}
	return labels
}
