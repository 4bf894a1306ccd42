package excel

// ReaderConfig holds configuration for a file-based dataset source
type ReaderConfig struct {
	FilePath     string `json:"file_path"`
	TargetColumn string `json:"target_column"`
	Sheet        string `json:"sheet,omitempty"` // XLSX only; empty selects the first sheet
}

// DefaultReaderConfig returns defaults for the housing layout
func DefaultReaderConfig(path string) ReaderConfig {
	return ReaderConfig{
		FilePath:     path,
		TargetColumn: "MEDV",
	}
}
