package tabular

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/de-tools/invoice-reconciler/pkg/models/domain"
)

const (
	xlsxDateLayout     = "2006-01-02"
	xlsxDateTimeLayout = "2006-01-02 15:04:05"
)

// ReadXLSX reads the first worksheet of an Excel workbook. Cells are read
// as stored rather than as displayed: numbers keep full precision without
// thousands separators and date cells come out as ISO dates.
func ReadXLSX(r io.Reader) (domain.Table, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return domain.Table{}, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return domain.Table{}, ErrNoHeader
	}
	sheet := sheets[0]

	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return domain.Table{}, fmt.Errorf("failed to read sheet %q: %w", sheet, err)
	}

	dates := newDateCells(f)
	for i, row := range rows {
		for j, value := range row {
			serial, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
			if err != nil {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(j+1, i+1)
			if err != nil {
				return domain.Table{}, err
			}
			isDate, err := dates.isDate(sheet, cell)
			if err != nil {
				return domain.Table{}, fmt.Errorf("failed to read style of %s: %w", cell, err)
			}
			if !isDate {
				continue
			}
			t, err := excelize.ExcelDateToTime(serial, dates.date1904)
			if err != nil {
				continue
			}
			if t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 {
				row[j] = t.Format(xlsxDateLayout)
			} else {
				row[j] = t.Format(xlsxDateTimeLayout)
			}
		}
	}

	// GetRows keeps empty rows, so row i is sheet line i+1.
	return fromRows(rows, nil)
}

// dateCells tells whether a cell's number format renders it as a date,
// caching the answer per style.
type dateCells struct {
	f        *excelize.File
	date1904 bool
	styles   map[int]bool
}

func newDateCells(f *excelize.File) *dateCells {
	d := &dateCells{f: f, styles: make(map[int]bool)}
	if props, err := f.GetWorkbookProps(); err == nil && props.Date1904 != nil {
		d.date1904 = *props.Date1904
	}
	return d
}

func (d *dateCells) isDate(sheet, cell string) (bool, error) {
	id, err := d.f.GetCellStyle(sheet, cell)
	if err != nil {
		return false, err
	}
	if isDate, ok := d.styles[id]; ok {
		return isDate, nil
	}

	style, err := d.f.GetStyle(id)
	if err != nil {
		return false, err
	}
	isDate := isDateNumFmt(style.NumFmt)
	if style.CustomNumFmt != nil {
		isDate = isDateFormatCode(*style.CustomNumFmt)
	}
	d.styles[id] = isDate
	return isDate, nil
}

// Built-in number formats that display dates or times.
func isDateNumFmt(id int) bool {
	switch {
	case id >= 14 && id <= 22,
		id >= 27 && id <= 36,
		id >= 45 && id <= 47,
		id >= 50 && id <= 58:
		return true
	}
	return false
}

// isDateFormatCode reports whether a custom format code has a date or time
// token outside quoted literals, escapes and bracketed sections.
func isDateFormatCode(code string) bool {
	var (
		quoted    bool
		bracketed bool
		escaped   bool
	)
	for _, r := range strings.ToLower(code) {
		switch {
		case escaped:
			escaped = false
		case quoted:
			quoted = r != '"'
		case bracketed:
			bracketed = r != ']'
		case r == '\\':
			escaped = true
		case r == '"':
			quoted = true
		case r == '[':
			bracketed = true
		case r == 'y', r == 'd', r == 'm', r == 'h':
			return true
		}
	}
	return false
}
