// Package store reads and writes the recommender's tabular CSV stores:
// inventory, recipes, users, and synthetic interactions.
package store

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strconv"
	"strings"
)

// table is a parsed CSV file with a header row.
type table struct {
	file    string
	columns map[string]int
	rows    [][]string
	lines   []int
}

func readTable(ctx context.Context, path string) (*table, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", path, ErrNotFound)
		}
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.TrimLeadingSpace = true
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if errors.Is(err, io.EOF) {
		return &table{file: path, columns: map[string]int{}}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read header of %s: %w", path, err)
	}

	t := &table{file: path, columns: make(map[string]int, len(header))}
	for i, h := range header {
		h = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		if _, dup := t.columns[h]; !dup {
			t.columns[h] = i
		}
	}

	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var perr *csv.ParseError
			if errors.As(err, &perr) {
				return nil, &ParseError{File: path, Line: perr.Line, Err: perr.Err}
			}
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		line, _ := r.FieldPos(0)
		t.rows = append(t.rows, rec)
		t.lines = append(t.lines, line)
	}
	return t, nil
}

func (t *table) has(col string) bool {
	_, ok := t.columns[col]
	return ok
}

func (t *table) require(cols ...string) error {
	for _, c := range cols {
		if !t.has(c) {
			return &ParseError{File: t.file, Column: c, Err: ErrMissingColumn}
		}
	}
	return nil
}

// get returns the trimmed cell, or "" when the column is absent.
func (t *table) get(row int, col string) string {
	i, ok := t.columns[col]
	if !ok || i >= len(t.rows[row]) {
		return ""
	}
	return strings.TrimSpace(t.rows[row][i])
}

func (t *table) requireString(row int, col string) (string, error) {
	v := t.get(row, col)
	if v == "" {
		return "", &ParseError{File: t.file, Line: t.lines[row], Column: col, Err: ErrEmptyField}
	}
	return v, nil
}

func (t *table) requireInt(row int, col string) (int, error) {
	v, err := t.requireString(row, col)
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, &ParseError{File: t.file, Line: t.lines[row], Column: col, Err: fmt.Errorf("%w: %q", ErrInvalidNumber, v)}
	}
	return n, nil
}

func (t *table) requireFloat(row int, col string) (float64, error) {
	v, err := t.requireString(row, col)
	if err != nil {
		return 0, err
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, &ParseError{File: t.file, Line: t.lines[row], Column: col, Err: fmt.Errorf("%w: %q", ErrInvalidNumber, v)}
	}
	return f, nil
}
