package csv

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/vsinha/workforce/pkg/domain/entities"
)

// MinimumsHeader is the required header of a weekly minimums file
var MinimumsHeader = []string{"week", "min_headcount"}

// Loader handles loading staffing data from CSV files
type Loader struct{}

// NewLoader creates a new CSV loader
func NewLoader() *Loader {
	return &Loader{}
}

// LoadMinimums loads weekly minimum headcounts from a CSV file
func (l *Loader) LoadMinimums(filename string) ([]entities.Headcount, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open minimums file %s: %w", filename, err)
	}
	defer file.Close()

	return l.ReadMinimums(file)
}

// ReadMinimums parses weekly minimum headcounts. Weeks must be listed in order
// starting at 1 with no gaps.
func (l *Loader) ReadMinimums(r io.Reader) ([]entities.Headcount, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read minimums CSV: %w", err)
	}

	if len(records) < 2 {
		return nil, fmt.Errorf("minimums CSV must have header and at least one data row")
	}

	// Validate header
	header := records[0]
	if !validateHeader(header, MinimumsHeader) {
		return nil, fmt.Errorf("minimums CSV header mismatch. Expected: %v, Got: %v", MinimumsHeader, header)
	}

	minimums := make([]entities.Headcount, 0, len(records)-1)
	for i, record := range records[1:] {
		if len(record) != len(MinimumsHeader) {
			return nil, fmt.Errorf("minimums CSV row %d: expected %d columns, got %d", i+2, len(MinimumsHeader), len(record))
		}

		week, minimum, err := parseMinimum(record)
		if err != nil {
			return nil, fmt.Errorf("minimums CSV row %d: %w", i+2, err)
		}
		if week != i+1 {
			return nil, fmt.Errorf("minimums CSV row %d: expected week %d, got %d", i+2, i+1, week)
		}

		minimums = append(minimums, minimum)
	}

	return minimums, nil
}

// WriteMinimums writes minimums in the format ReadMinimums accepts
func (l *Loader) WriteMinimums(w io.Writer, minimums []entities.Headcount) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(MinimumsHeader); err != nil {
		return fmt.Errorf("failed to write minimums CSV header: %w", err)
	}
	for i, m := range minimums {
		if err := writer.Write([]string{strconv.Itoa(i + 1), strconv.Itoa(int(m))}); err != nil {
			return fmt.Errorf("failed to write minimums CSV row %d: %w", i+2, err)
		}
	}
	writer.Flush()
	return writer.Error()
}

// Helper functions for parsing CSV records

func validateHeader(actual, expected []string) bool {
	if len(actual) != len(expected) {
		return false
	}

	for i, col := range expected {
		if strings.ToLower(strings.TrimSpace(actual[i])) != col {
			return false
		}
	}

	return true
}

func parseMinimum(record []string) (int, entities.Headcount, error) {
	week, err := strconv.Atoi(strings.TrimSpace(record[0]))
	if err != nil {
		return 0, 0, fmt.Errorf("invalid week: %s", record[0])
	}

	minimum, err := strconv.Atoi(strings.TrimSpace(record[1]))
	if err != nil {
		return 0, 0, fmt.Errorf("invalid min_headcount: %s", record[1])
	}
	if minimum < 0 {
		return 0, 0, fmt.Errorf("min_headcount cannot be negative: %d", minimum)
	}

	return week, entities.Headcount(minimum), nil
}
