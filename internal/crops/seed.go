package crops

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"os"
)

//go:embed seed/crops.json
var defaultCatalog []byte

// DefaultCatalog returns the built-in starter catalogue
func DefaultCatalog() ([]CropRecord, error) {
	var records []CropRecord
	if err := json.Unmarshal(defaultCatalog, &records); err != nil {
		return nil, fmt.Errorf("failed to decode default catalogue: %w", err)
	}
	return records, nil
}

// ReadCatalog decodes a JSON array of crop records
func ReadCatalog(r io.Reader) ([]CropRecord, error) {
	var records []CropRecord
	if err := json.NewDecoder(r).Decode(&records); err != nil {
		return nil, fmt.Errorf("failed to decode catalogue: %w", err)
	}
	return records, nil
}

// LoadCatalog reads a catalogue file, or the built-in catalogue when path is empty
func LoadCatalog(path string) ([]CropRecord, error) {
	if path == "" {
		return DefaultCatalog()
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalogue: %w", err)
	}
	defer f.Close()
	return ReadCatalog(f)
}
