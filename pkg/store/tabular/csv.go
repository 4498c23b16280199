package tabular

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/de-tools/invoice-reconciler/pkg/models/domain"
)

// ReadCSV reads comma-separated text. Quotes are handled leniently and
// rows may have any number of fields.
func ReadCSV(r io.Reader) (domain.Table, error) {
	reader := csv.NewReader(r)
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	var (
		rows  [][]string
		lines []int
	)
	rowIndex := 0
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return domain.Table{}, fmt.Errorf("error reading CSV at row %d: %w", rowIndex, err)
		}
		if rowIndex == 0 && len(record) > 0 {
			record[0] = strings.TrimPrefix(record[0], "\ufeff")
		}
		// encoding/csv skips empty lines, so take the line from the reader
		line, _ := reader.FieldPos(0)
		rows = append(rows, record)
		lines = append(lines, line)
		rowIndex++
	}

	return fromRows(rows, lines)
}

// WriteCSV writes a header and rows as CSV.
func WriteCSV(w io.Writer, header []string, rows [][]string) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(header); err != nil {
		return err
	}
	if err := writer.WriteAll(rows); err != nil {
		return err
	}
	return writer.Error()
}
