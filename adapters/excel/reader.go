package excel

import (
	"encoding/csv"
	"fmt"
	"log"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"imputelab/domain/core"
	"imputelab/internal/errors"

	"github.com/tidwall/gjson"
	"github.com/xuri/excelize/v2"
)

// File types understood by DataReader
const (
	FileTypeCSV  = "csv"
	FileTypeXLSX = "xlsx"
	FileTypeJSON = "json"
)

// DataReader handles reading CSV, Excel and JSON dataset files
type DataReader struct {
	filePath   string
	fileType   string
	sheet      string
	targetName string
}

// NewDataReader creates a reader, choosing the format from the file extension
func NewDataReader(config ReaderConfig) *DataReader {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(config.FilePath)), ".")
	return &DataReader{
		filePath:   config.FilePath,
		fileType:   ext,
		sheet:      config.Sheet,
		targetName: config.TargetColumn,
	}
}

// FileType returns the detected format
func (r *DataReader) FileType() string {
	return r.fileType
}

// ReadTable reads the file into a numeric table
func (r *DataReader) ReadTable() (*Table, error) {
	log.Printf("[DataReader] Starting to read %s file: %s", r.fileType, r.filePath)

	if _, err := os.Stat(r.filePath); os.IsNotExist(err) {
		return nil, errors.NotFound(fmt.Sprintf("%s file %s", strings.ToUpper(r.fileType), r.filePath))
	}

	switch r.fileType {
	case FileTypeCSV:
		raw, err := r.readCSVData()
		if err != nil {
			return nil, err
		}
		return r.processRows(raw)
	case FileTypeXLSX:
		raw, err := r.readExcelData()
		if err != nil {
			return nil, err
		}
		return r.processRows(raw)
	case FileTypeJSON:
		return r.readJSONData()
	default:
		return nil, fmt.Errorf("%w: %q", core.ErrUnsupportedFormat, r.fileType)
	}
}

// readExcelData reads the configured sheet, or the first one
func (r *DataReader) readExcelData() (*RawTable, error) {
	startTime := time.Now()
	f, err := excelize.OpenFile(r.filePath)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open Excel file")
	}
	defer f.Close()

	sheet := r.sheet
	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, errors.InvalidInput("Excel file has no sheets")
		}
		sheet = sheets[0]
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read sheet %s", sheet)
	}
	log.Printf("[DataReader] Sheet %s read in %.2fms (%d rows)",
		sheet, float64(time.Since(startTime).Nanoseconds())/1e6, len(rows))

	if len(rows) < 2 {
		return nil, errors.InvalidInput("Excel file must have at least a header row and one data row")
	}
	return &RawTable{Headers: trimAll(rows[0]), Rows: rows[1:]}, nil
}

// readCSVData reads CSV data into a raw table
func (r *DataReader) readCSVData() (*RawTable, error) {
	file, err := os.Open(r.filePath)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open CSV file")
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.TrimLeadingSpace = true
	readStart := time.Now()
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, errors.Wrap(err, "failed to read CSV file")
	}
	log.Printf("[DataReader] CSV file read in %.2fms (%d rows)",
		float64(time.Since(readStart).Nanoseconds())/1e6, len(rows))

	if len(rows) < 2 {
		return nil, errors.InvalidInput("CSV file must have at least a header row and one data row")
	}
	return &RawTable{Headers: trimAll(rows[0]), Rows: rows[1:]}, nil
}

// readJSONData reads a bunch-style document: feature_names, data and target.
// target_name is optional; the configured target column is used otherwise.
func (r *DataReader) readJSONData() (*Table, error) {
	body, err := os.ReadFile(r.filePath)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read JSON file")
	}
	if !gjson.ValidBytes(body) {
		return nil, errors.InvalidInput("JSON file is not valid JSON")
	}

	doc := gjson.ParseBytes(body)
	data := doc.Get("data")
	target := doc.Get("target")
	if !data.IsArray() || !target.IsArray() {
		return nil, errors.InvalidInput("JSON dataset must contain 'data' and 'target' arrays")
	}

	targets := target.Array()
	records := data.Array()
	if len(records) != len(targets) {
		return nil, core.NewShapeMismatchError("JSON target length", len(records), len(targets))
	}
	if len(records) == 0 {
		return nil, errors.InvalidInput("JSON dataset has no rows")
	}

	cols := len(records[0].Array())
	var headers []string
	for _, name := range doc.Get("feature_names").Array() {
		headers = append(headers, name.String())
	}
	if headers == nil {
		for j := 0; j < cols; j++ {
			headers = append(headers, fmt.Sprintf("x%d", j))
		}
	}
	if len(headers) != cols {
		return nil, core.NewShapeMismatchError("JSON feature_names", cols, len(headers))
	}

	targetName := doc.Get("target_name").String()
	if targetName == "" {
		targetName = r.targetName
	}
	if targetName == "" {
		targetName = "target"
	}

	table := &Table{Headers: append(headers, targetName), Rows: make([][]float64, 0, len(records))}
	for i, record := range records {
		cells := record.Array()
		if len(cells) != cols {
			return nil, core.NewShapeMismatchError(fmt.Sprintf("JSON row %d", i), cols, len(cells))
		}
		row := make([]float64, cols+1)
		for j, cell := range cells {
			if cell.Type != gjson.Number {
				return nil, errors.InvalidInput(fmt.Sprintf("row %d column %s: not a number", i, headers[j]))
			}
			row[j] = cell.Float()
		}
		if targets[i].Type != gjson.Number {
			return nil, errors.InvalidInput(fmt.Sprintf("row %d target: not a number", i))
		}
		row[cols] = targets[i].Float()
		table.Rows = append(table.Rows, row)
	}

	log.Printf("[DataReader] JSON file processed (%d columns, %d rows)", len(table.Headers), len(table.Rows))
	return table, nil
}

// processRows converts raw string rows into a numeric table. Blank trailing rows are skipped.
func (r *DataReader) processRows(raw *RawTable) (*Table, error) {
	table := &Table{Headers: raw.Headers, Rows: make([][]float64, 0, len(raw.Rows))}

	for i, row := range raw.Rows {
		if isBlank(row) {
			continue
		}
		values := make([]float64, len(raw.Headers))
		for j := range raw.Headers {
			cell := ""
			if j < len(row) {
				cell = strings.TrimSpace(row[j])
			}
			v, err := strconv.ParseFloat(cell, 64)
			if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, errors.InvalidInput(fmt.Sprintf("row %d column %s: %q is not a finite number", i+2, raw.Headers[j], cell))
			}
			values[j] = v
		}
		table.Rows = append(table.Rows, values)
	}

	log.Printf("[DataReader] %s file processed (%d columns, %d rows)",
		strings.ToUpper(r.fileType), len(table.Headers), len(table.Rows))
	return table, nil
}

func trimAll(cells []string) []string {
	out := make([]string, len(cells))
	for i, c := range cells {
		out[i] = strings.TrimSpace(c)
	}
	return out
}

func isBlank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
