package excel

import (
	"context"
	"fmt"
	"log"
	"strings"

	"imputelab/domain/dataset"
	"imputelab/internal/errors"

	"gonum.org/v1/gonum/mat"
)

// DatasetAdapter implements ports.DatasetReaderPort for files on disk
type DatasetAdapter struct {
	config ReaderConfig
	reader *DataReader
}

// NewDatasetAdapter creates a file-backed dataset source
func NewDatasetAdapter(config ReaderConfig) *DatasetAdapter {
	return &DatasetAdapter{
		config: config,
		reader: NewDataReader(config),
	}
}

// ReadDataset reads the file and splits off the target column
func (a *DatasetAdapter) ReadDataset(ctx context.Context) (*dataset.Dataset, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	table, err := a.reader.ReadTable()
	if err != nil {
		return nil, err
	}
	ds, err := ToDataset(table, a.config.TargetColumn)
	if err != nil {
		return nil, err
	}
	log.Printf("[DatasetAdapter] %s dataset %s: %d rows, %d features, target %s",
		strings.ToUpper(a.reader.FileType()), a.config.FilePath, ds.Rows(), ds.Cols(), ds.TargetName())
	return ds, nil
}

// ToDataset splits a table into features and target. When targetColumn is empty or
// absent the last column is the target.
func ToDataset(table *Table, targetColumn string) (*dataset.Dataset, error) {
	cols := len(table.Headers)
	if cols < 2 {
		return nil, errors.InvalidInput("dataset needs at least one feature and a target column")
	}
	if len(table.Rows) == 0 {
		return nil, errors.InvalidInput("dataset has no rows")
	}

	targetIdx := table.ColumnIndex(targetColumn)
	if targetIdx < 0 {
		targetIdx = cols - 1
	}

	names := make([]string, 0, cols-1)
	for j, h := range table.Headers {
		if j != targetIdx {
			names = append(names, h)
		}
	}

	features := mat.NewDense(len(table.Rows), cols-1, nil)
	targets := make([]float64, len(table.Rows))
	for i, row := range table.Rows {
		if len(row) != cols {
			return nil, errors.InvalidInput(fmt.Sprintf("row %d has %d cells, want %d", i, len(row), cols))
		}
		k := 0
		for j, v := range row {
			if j == targetIdx {
				targets[i] = v
				continue
			}
			features.Set(i, k, v)
			k++
		}
	}

	return dataset.New(features, targets, names, table.Headers[targetIdx])
}
