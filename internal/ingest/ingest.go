// Package ingest loads raw catalog exports into tables.
package ingest

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strconv"
	"strings"

	"gamefeatures/internal/table"
)

const IDColumn = "rawg_id"

// Stats describes what a load saw besides the rows it kept.
type Stats struct {
	SourceRows  int
	InvalidRows int
}

// Load reads a JSON Lines (.jl, .jsonl, .json) or CSV export, picked by
// extension. limit > 0 stops after that many rows.
func Load(path string, limit int) (table.Table, Stats, error) {
	var (
		t     table.Table
		stats Stats
		err   error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		t, stats, err = LoadCSV(path, limit)
	default:
		t, stats, err = LoadJSONLines(path, limit)
	}
	if err != nil {
		return table.Table{}, stats, err
	}
	ensureID(&t)
	slog.Debug("loaded export", "path", path, "rows", t.Len(), "columns", len(t.Columns), "invalid", stats.InvalidRows)
	return t, stats, nil
}

// ensureID renames the upstream "id" column to rawg_id.
func ensureID(t *table.Table) {
	if t.Has(IDColumn) || !t.Has("id") {
		return
	}
	t.RenameColumn("id", IDColumn)
}

func LoadJSONLines(path string, limit int) (table.Table, Stats, error) {
	f, err := os.Open(path)
	if err != nil {
		return table.Table{}, Stats{}, err
	}
	defer f.Close()
	return ReadJSONLines(f, limit)
}

func ReadJSONLines(r io.Reader, limit int) (table.Table, Stats, error) {
	var (
		out   table.Table
		stats Stats
	)
	sc := bufio.NewScanner(r)
	buf := make([]byte, 0, 1024*1024)
	sc.Buffer(buf, 20*1024*1024)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		stats.SourceRows++
		var raw map[string]any
		if err := json.Unmarshal([]byte(line), &raw); err != nil {
			stats.InvalidRows++
			continue
		}
		keys := make([]string, 0, len(raw))
		for k := range raw {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		if k := slices.Index(keys, "id"); k > 0 {
			keys = append([]string{"id"}, slices.Delete(keys, k, k+1)...)
		}
		for _, k := range keys {
			out.AddColumn(k)
		}
		out.Rows = append(out.Rows, table.Row(raw))
		if limit > 0 && out.Len() >= limit {
			break
		}
	}
	if err := sc.Err(); err != nil {
		return table.Table{}, stats, fmt.Errorf("scan json lines: %w", err)
	}
	return out, stats, nil
}

func LoadCSV(path string, limit int) (table.Table, Stats, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return table.Table{}, Stats{}, err
	}
	return ReadCSV(bytes.NewReader(bytes.TrimPrefix(b, []byte{0xEF, 0xBB, 0xBF})), limit)
}

// ReadCSV reads a CSV export. Empty cells become nulls and columns whose
// every value is numeric are converted, the way a dataframe reader infers
// column types.
func ReadCSV(r io.Reader, limit int) (table.Table, Stats, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	headers, err := cr.Read()
	if err != nil {
		return table.Table{}, Stats{}, fmt.Errorf("read csv header: %w", err)
	}
	out := table.New(headers...)
	var stats Stats
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return table.Table{}, stats, fmt.Errorf("read csv row %d: %w", stats.SourceRows+1, err)
		}
		stats.SourceRows++
		row := make(table.Row, len(headers))
		for i, h := range headers {
			if i < len(rec) && rec[i] != "" {
				row[h] = rec[i]
			} else {
				row[h] = nil
			}
		}
		out.Rows = append(out.Rows, row)
		if limit > 0 && out.Len() >= limit {
			break
		}
	}
	for _, h := range headers {
		inferColumn(out, h)
	}
	return out, stats, nil
}

func inferColumn(t table.Table, col string) {
	allInt, allFloat, seen := true, true, false
	for _, r := range t.Rows {
		s, ok := r[col].(string)
		if !ok {
			continue
		}
		seen = true
		if _, err := strconv.ParseInt(s, 10, 64); err != nil {
			allInt = false
		}
		if _, err := strconv.ParseFloat(s, 64); err != nil {
			allFloat = false
		}
	}
	if !seen || (!allInt && !allFloat) {
		return
	}
	for _, r := range t.Rows {
		s, ok := r[col].(string)
		if !ok {
			continue
		}
		if allInt {
			r[col], _ = strconv.ParseInt(s, 10, 64)
		} else {
			r[col], _ = strconv.ParseFloat(s, 64)
		}
	}
}
