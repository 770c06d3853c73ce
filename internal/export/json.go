// Package export writes report artifacts to disk: JSON dumps with base-unit
// amounts as decimal strings, and xlsx sheets with human-readable 18-decimal
// columns. All unit conversion happens here, at the presentation boundary;
// upstream packages only ever see base units.
package export

import (
	"encoding/json"
	"fmt"
	"math/big"
	"os"
	"path/filepath"

	"github.com/shopspring/decimal"
)

// WriteJSON marshals v with indentation and writes it via a temp-file rename
// so readers never observe a partially written report.
func WriteJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", filepath.Base(path), err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("rename %s: %w", path, err)
	}
	return nil
}

// Ether renders a base-unit amount as a decimal token string (18 decimals).
func Ether(amount *big.Int) string {
	if amount == nil {
		return "0"
	}
	return decimal.NewFromBigInt(amount, -18).String()
}

// EtherNumber renders a base-unit amount as a float for spreadsheet cells.
// Precision past float64 is lost; the JSON exports keep the exact values.
func EtherNumber(amount *big.Int) float64 {
	if amount == nil {
		return 0
	}
	return decimal.NewFromBigInt(amount, -18).InexactFloat64()
}

// BaseUnits renders an amount as an exact base-unit decimal string.
func BaseUnits(amount *big.Int) string {
	if amount == nil {
		return "0"
	}
	return amount.String()
}
