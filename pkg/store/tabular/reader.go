package tabular

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/de-tools/invoice-reconciler/pkg/models/domain"
)

var (
	ErrUnsupportedFormat = errors.New("unsupported file format")
	ErrNoHeader          = errors.New("file has no header row")
)

// Read parses a tabular file into a Table, choosing the decoder by the
// extension of name.
func Read(name string, r io.Reader) (domain.Table, error) {
	var (
		table domain.Table
		err   error
	)

	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv", ".txt":
		table, err = ReadCSV(r)
	case ".xlsx", ".xlsm":
		table, err = ReadXLSX(r)
	default:
		return domain.Table{}, fmt.Errorf("%w: %q (expected .csv or .xlsx)", ErrUnsupportedFormat, filepath.Base(name))
	}
	if err != nil {
		return domain.Table{}, fmt.Errorf("failed to read %s: %w", filepath.Base(name), err)
	}

	table.Name = filepath.Base(name)
	return table, nil
}

// fromRows turns raw rows into a table: the first non-blank row is the
// header, blank rows are skipped and every record is padded or cut to the
// header width. lines gives the source line of each row; nil means row i
// sits on line i+1.
func fromRows(rows [][]string, lines []int) (domain.Table, error) {
	var (
		header  []string
		records [][]string
		kept    []int
	)

	for i, row := range rows {
		if isBlank(row) {
			continue
		}
		if header == nil {
			header = append([]string(nil), row...)
			continue
		}
		record := make([]string, len(header))
		copy(record, row)
		records = append(records, record)

		line := i + 1
		if i < len(lines) {
			line = lines[i]
		}
		kept = append(kept, line)
	}

	if header == nil {
		return domain.Table{}, ErrNoHeader
	}
	if records == nil {
		records = [][]string{}
		kept = []int{}
	}
	return domain.Table{Header: header, Records: records, Lines: kept}, nil
}

func isBlank(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
