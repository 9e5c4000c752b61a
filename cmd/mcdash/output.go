package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// Output formats for list commands.
const (
	formatTable = "table"
	formatJSON  = "json"
	formatCSV   = "csv"
)

func validateFormat(f string) (string, error) {
	f = strings.ToLower(strings.TrimSpace(f))
	switch f {
	case "", formatTable:
		return formatTable, nil
	case formatJSON, formatCSV:
		return f, nil
	default:
		return "", fmt.Errorf("--format must be one of table, json, csv")
	}
}

// writeTable renders rows with go-pretty. Columns listed in right are
// right-aligned, 1-based like go-pretty column numbers.
func writeTable(w io.Writer, header table.Row, rows []table.Row, right ...int) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(header)
	t.AppendRows(rows)
	if len(right) > 0 {
		configs := make([]table.ColumnConfig, 0, len(right))
		for _, n := range right {
			configs = append(configs, table.ColumnConfig{Number: n, Align: text.AlignRight, AlignHeader: text.AlignRight})
		}
		t.SetColumnConfigs(configs)
	}
	t.Render()
}

// writeFields renders a two-column label/value table for a detail view.
func writeFields(w io.Writer, title string, fields [][2]string) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.SetTitle(title)
	for _, f := range fields {
		t.AppendRow(table.Row{f[0], f[1]})
	}
	t.Render()
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to write json: %w", err)
	}
	return nil
}

func writeLine(w io.Writer, format string, args ...any) error {
	if _, err := fmt.Fprintf(w, format+"\n", args...); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}
