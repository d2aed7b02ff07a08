/*
sheet.go - Shared spreadsheet plumbing for carrier adapters

PURPOSE:
  Every carrier ships .xlsx statements. This file holds the plumbing all
  adapters share: reading the first sheet into header-keyed row maps, and
  extracting the commission period from the statement filename.

FILENAME CONVENTION:
  Statements arrive named "<Carrier> MM.YYYY Commission.xlsx", e.g.
  "Centene 06.2024 Commission.xlsx" covers period 2024-06. A filename that
  doesn't follow the convention falls back to a caller-supplied default
  with a logged warning rather than failing the import.
*/
package carriers

import (
	"fmt"
	"log"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

// readSheet loads the first sheet of an .xlsx file into one map per data
// row, keyed by the header row. Cells beyond a short row read as "".
func readSheet(path string) ([]map[string]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open spreadsheet %s: %w", path, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("spreadsheet %s has no sheets", path)
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %s of %s: %w", sheets[0], path, err)
	}
	if len(rows) < 2 {
		return nil, nil
	}

	header := rows[0]
	out := make([]map[string]string, 0, len(rows)-1)
	for _, row := range rows[1:] {
		m := make(map[string]string, len(header))
		for i, col := range header {
			if col == "" {
				continue
			}
			if i < len(row) {
				m[col] = row[i]
			} else {
				m[col] = ""
			}
		}
		out = append(out, m)
	}
	return out, nil
}

// periodFromFilename extracts the YYYY-MM commission period from a
// "<Carrier> MM.YYYY Commission.xlsx" filename, returning fallback when the
// name doesn't follow the convention.
func periodFromFilename(path, fallback string) string {
	parts := strings.Split(filepath.Base(path), " ")
	if len(parts) < 2 {
		log.Printf("carriers: cannot parse period from %q, using %s", path, fallback)
		return fallback
	}

	monthYear := strings.SplitN(parts[1], ".", 2)
	if len(monthYear) != 2 {
		log.Printf("carriers: cannot parse period from %q, using %s", path, fallback)
		return fallback
	}
	month, errM := strconv.Atoi(monthYear[0])
	year, errY := strconv.Atoi(monthYear[1])
	if errM != nil || errY != nil || month < 1 || month > 12 {
		log.Printf("carriers: cannot parse period from %q, using %s", path, fallback)
		return fallback
	}
	return fmt.Sprintf("%04d-%02d", year, month)
}

// defaultPeriod is used when a statement filename cannot be parsed.
const defaultPeriod = "2024-06"
