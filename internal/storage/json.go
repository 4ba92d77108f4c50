package storage

import (
	"encoding/json"
	"fmt"
	"os"

	"sheetgrid/internal/grid"
)

// SaveJSON writes the full grid (heights, hidden rows, styles, merges,
// locks) in its persisted shape.
func SaveJSON(r *grid.Rows, filename string) error {
	b, err := json.MarshalIndent(r.Data(), "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", filename, err)
	}
	if err := os.WriteFile(filename, b, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", filename, err)
	}
	return nil
}

func LoadJSON(filename string) (grid.Data, error) {
	b, err := os.ReadFile(filename)
	if err != nil {
		return grid.Data{}, fmt.Errorf("read %s: %w", filename, err)
	}
	var d grid.Data
	if err := json.Unmarshal(b, &d); err != nil {
		return grid.Data{}, fmt.Errorf("decode %s: %w", filename, err)
	}
	return d, nil
}
