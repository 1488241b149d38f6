package currency

import (
	"encoding/json"
	"fmt"
	"os"
)

// ratesDocument accepts both a bare {"EUR": 0.92} table and the
// {"base_code": "USD", "rates": {...}} shape published by rate APIs.
type ratesDocument struct {
	Rates Rates `json:"rates"`
}

// Parse decodes a JSON rate table.
func Parse(data []byte) (Rates, error) {
	var doc ratesDocument
	if err := json.Unmarshal(data, &doc); err == nil && len(doc.Rates) > 0 {
		return Rates{}.Merge(doc.Rates), nil
	}

	var flat Rates
	if err := json.Unmarshal(data, &flat); err != nil {
		return nil, fmt.Errorf("Parse: decoding rate table: %w", err)
	}
	return Rates{}.Merge(flat), nil
}

// LoadFile reads a JSON rate table from disk.
func LoadFile(path string) (Rates, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("LoadFile: reading %s: %w", path, err)
	}
	rates, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("LoadFile: %w", err)
	}
	return rates, nil
}
