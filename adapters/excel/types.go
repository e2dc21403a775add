package excel

// RawTable is a sheet as read from disk: trimmed headers and rows padded to
// the header width
type RawTable struct {
	Headers []string
	Rows    [][]string
}

// Records returns the header followed by the rows, the layout gota loads from
func (t *RawTable) Records() [][]string {
	records := make([][]string, 0, len(t.Rows)+1)
	records = append(records, t.Headers)
	return append(records, t.Rows...)
}

// DefaultSheet is used for new workbooks
const DefaultSheet = "Sheet1"

// missingValues are the cell contents loaded as NaN
var missingValues = []string{"", "NA", "NaN", "N/A", "<nil>", "null"}
