package excel

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"imputelab/domain/core"
	apperrors "imputelab/internal/errors"
	"imputelab/ports"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

var _ ports.DatasetReaderPort = (*DatasetAdapter)(nil)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestReadDataset_CSV(t *testing.T) {
	path := writeFile(t, "housing.csv", "CRIM,MEDV,RM\n0.1,24,6.5\n0.2, 21.6 ,6.4\n\n")

	ds, err := NewDatasetAdapter(ReaderConfig{FilePath: path, TargetColumn: "MEDV"}).ReadDataset(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, ds.Rows())
	assert.Equal(t, []string{"CRIM", "RM"}, ds.FeatureNames())
	assert.Equal(t, "MEDV", ds.TargetName())
	assert.Equal(t, []float64{24, 21.6}, ds.Targets())
	assert.Equal(t, 6.4, ds.FeaturesView().At(1, 1))
}

func TestReadDataset_CSVFallsBackToLastColumn(t *testing.T) {
	path := writeFile(t, "data.csv", "a,b,y\n1,2,3\n4,5,6\n")

	ds, err := NewDatasetAdapter(ReaderConfig{FilePath: path, TargetColumn: "MEDV"}).ReadDataset(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "y", ds.TargetName())
	assert.Equal(t, []float64{3, 6}, ds.Targets())
}

func TestReadDataset_CSVRejectsNonNumeric(t *testing.T) {
	path := writeFile(t, "bad.csv", "a,y\n1,2\nfoo,3\n")

	_, err := NewDatasetAdapter(ReaderConfig{FilePath: path}).ReadDataset(context.Background())
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeInvalidInput, apperrors.GetCode(err))
}

func TestReadDataset_JSONBunch(t *testing.T) {
	path := writeFile(t, "boston.json", `{
		"feature_names": ["CRIM", "ZN"],
		"data": [[0.00632, 18.0], [0.02731, 0.0], [0.02729, 0.0]],
		"target": [24.0, 21.6, 34.7]
	}`)

	ds, err := NewDatasetAdapter(DefaultReaderConfig(path)).ReadDataset(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, ds.Rows())
	assert.Equal(t, 2, ds.Cols())
	assert.Equal(t, []string{"CRIM", "ZN"}, ds.FeatureNames())
	assert.Equal(t, "MEDV", ds.TargetName())
	assert.Equal(t, 34.7, ds.Targets()[2])
	assert.Equal(t, 18.0, ds.FeaturesView().At(0, 1))
}

func TestReadDataset_JSONShapeMismatch(t *testing.T) {
	path := writeFile(t, "short.json", `{"data": [[1, 2], [3, 4]], "target": [1]}`)

	_, err := NewDatasetAdapter(DefaultReaderConfig(path)).ReadDataset(context.Background())
	assert.True(t, errors.Is(err, core.ErrShapeMismatch), "got %v", err)
}

func TestReadDataset_XLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "housing.xlsx")
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	require.NoError(t, f.SetSheetRow(sheet, "A1", &[]interface{}{"LSTAT", "MEDV"}))
	require.NoError(t, f.SetSheetRow(sheet, "A2", &[]interface{}{4.98, 24.0}))
	require.NoError(t, f.SetSheetRow(sheet, "A3", &[]interface{}{9.14, 21.6}))
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	ds, err := NewDatasetAdapter(DefaultReaderConfig(path)).ReadDataset(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"LSTAT"}, ds.FeatureNames())
	assert.Equal(t, []float64{24, 21.6}, ds.Targets())
	assert.Equal(t, 9.14, ds.FeaturesView().At(1, 0))
}

func TestReadDataset_Errors(t *testing.T) {
	_, err := NewDatasetAdapter(DefaultReaderConfig(filepath.Join(t.TempDir(), "missing.csv"))).ReadDataset(context.Background())
	assert.Equal(t, apperrors.CodeNotFound, apperrors.GetCode(err))

	path := writeFile(t, "data.parquet", "x")
	_, err = NewDatasetAdapter(DefaultReaderConfig(path)).ReadDataset(context.Background())
	assert.True(t, errors.Is(err, core.ErrUnsupportedFormat))
}

func TestDataReader_FileType(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"housing.csv", FileTypeCSV},
		{"Housing.XLSX", FileTypeXLSX},
		{"/data/boston.json", FileTypeJSON},
		{"noext", ""},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, NewDataReader(DefaultReaderConfig(tt.path)).FileType())
		})
	}
}
