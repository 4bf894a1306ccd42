package ports

import (
	"context"

	"imputelab/domain/dataset"
)

// DatasetReaderPort loads the experiment dataset once at startup
type DatasetReaderPort interface {
	ReadDataset(ctx context.Context) (*dataset.Dataset, error)
}
