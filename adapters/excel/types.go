package excel

// RawTable is a header row plus string cells, as read from a CSV or XLSX sheet
type RawTable struct {
	Headers []string   // Column headers
	Rows    [][]string // Data rows, one slice per record
}

// Table is a fully numeric dataset before the target column is split off
type Table struct {
	Headers []string
	Rows    [][]float64
}

// ColumnIndex returns the position of a header, or -1
func (t *Table) ColumnIndex(name string) int {
	for i, h := range t.Headers {
		if h == name {
			return i
		}
	}
	return -1
}
