package domain

// Table is a raw tabular dataset as produced by a tabular reader: a header
// row and the data rows, every cell still text.
type Table struct {
	Name    string
	Header  []string
	Records [][]string

	// Lines holds the 1-based source line of each record. Tables built
	// without it are assumed to have the header on line 1 and no blank lines.
	Lines []int
}

// Len returns the number of data rows.
func (t Table) Len() int {
	return len(t.Records)
}

// Line returns the source line of the i-th record.
func (t Table) Line(i int) int {
	if i < len(t.Lines) {
		return t.Lines[i]
	}
	return i + 2
}
