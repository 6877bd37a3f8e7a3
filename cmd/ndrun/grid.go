package main

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/gridpointai/nd-runtime/array"
)

// loadGrid reads a CSV file of numbers into a two-dimensional array.
func loadGrid(path string) (*array.Array, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open grid: %w", err)
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse grid: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("grid %s is empty", path)
	}

	rows, cols := len(records), len(records[0])
	vals := make([]float64, 0, rows*cols)
	for r, record := range records {
		if len(record) != cols {
			return nil, fmt.Errorf("grid row %d has %d columns, want %d", r, len(record), cols)
		}
		for c, cell := range record {
			v, err := strconv.ParseFloat(strings.TrimSpace(cell), 64)
			if err != nil {
				return nil, fmt.Errorf("grid cell (%d,%d): %w", r, c, err)
			}
			vals = append(vals, v)
		}
	}
	return array.FromFloat64s(vals, rows, cols)
}

// saveGrid writes a two-dimensional array as CSV.
func saveGrid(path string, a *array.Array) error {
	if a.Rank() != 2 {
		return fmt.Errorf("grid output needs rank two, got %d", a.Rank())
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create grid: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	rows, cols := a.Dim(0), a.Dim(1)
	record := make([]string, cols)
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			record[c] = strconv.FormatFloat(a.Float64At(r*cols+c), 'g', -1, 64)
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

var (
	cellStyle = lipgloss.NewStyle().
			Width(8).
			Align(lipgloss.Right)

	gridBorderStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#7D56F4")).
			Padding(0, 1)
)

// renderGrid formats a two-dimensional array for terminal display.
func renderGrid(a *array.Array) string {
	if a.Rank() != 2 {
		return a.String()
	}
	var b strings.Builder
	rows, cols := a.Dim(0), a.Dim(1)
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			b.WriteString(cellStyle.Render(strconv.FormatFloat(a.Float64At(r*cols+c), 'g', 5, 64)))
		}
		if r < rows-1 {
			b.WriteString("\n")
		}
	}
	return gridBorderStyle.Render(b.String())
}

// parseFloats splits a comma-separated list of numbers.
func parseFloats(s string) ([]float64, error) {
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	out := make([]float64, len(parts))
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, fmt.Errorf("number %q: %w", p, err)
		}
		out[i] = v
	}
	return out, nil
}
