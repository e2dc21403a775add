package excel

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-gota/gota/dataframe"
	"github.com/xuri/excelize/v2"

	"ordermetrics/internal"
	"ordermetrics/internal/errors"
)

// DataReader handles reading Excel and CSV files
type DataReader struct {
	filePath string
	fileType string // "xlsx" or "csv"
	sheet    string
	logger   *internal.Logger
}

// NewDataReader creates a new data reader that handles both Excel and CSV files
func NewDataReader(filePath string) *DataReader {
	return &DataReader{
		filePath: filePath,
		fileType: fileTypeOf(filePath),
		logger:   internal.DefaultLogger,
	}
}

// Sheet selects the worksheet to read; Excel files default to the first sheet
func (r *DataReader) Sheet(name string) *DataReader {
	r.sheet = name
	return r
}

// WithLogger replaces the package default logger
func (r *DataReader) WithLogger(logger *internal.Logger) *DataReader {
	r.logger = logger
	return r
}

func fileTypeOf(path string) string {
	if strings.ToLower(filepath.Ext(path)) == ".csv" {
		return "csv"
	}
	return "xlsx"
}

// ReadFrame loads the file into a dataframe with column types detected
func (r *DataReader) ReadFrame() (dataframe.DataFrame, error) {
	table, err := r.ReadTable()
	if err != nil {
		return dataframe.DataFrame{}, err
	}

	df := dataframe.LoadRecords(table.Records(),
		dataframe.HasHeader(true),
		dataframe.DetectTypes(true),
		dataframe.NaNValues(missingValues),
	)
	if df.Err != nil {
		return dataframe.DataFrame{}, errors.WithCode(errors.CodeInvalidInput, df.Err)
	}

	r.logger.Debug("[DataReader] loaded %s into dataframe (%d columns, %d rows)", r.filePath, df.Ncol(), df.Nrow())
	return df, nil
}

// ReadTable reads the raw string cells of the file
func (r *DataReader) ReadTable() (*RawTable, error) {
	r.logger.Debug("[DataReader] Starting to read %s file: %s", r.fileType, r.filePath)

	if _, err := os.Stat(r.filePath); os.IsNotExist(err) {
		return nil, errors.NotFound(strings.ToUpper(r.fileType) + " file " + r.filePath)
	}

	var (
		rows [][]string
		err  error
	)
	start := time.Now()
	switch r.fileType {
	case "csv":
		rows, err = r.readCSVRows()
	default:
		rows, err = r.readExcelRows()
	}
	if err != nil {
		return nil, err
	}
	r.logger.Debug("[DataReader] %s read in %.2fms (%d rows)", r.filePath, float64(time.Since(start).Nanoseconds())/1e6, len(rows))

	if len(rows) < 2 {
		return nil, errors.InvalidInput(strings.ToUpper(r.fileType) + " file must have at least a header row and one data row")
	}
	return normalizeRows(rows)
}

func (r *DataReader) readExcelRows() ([][]string, error) {
	f, err := excelize.OpenFile(r.filePath)
	if err != nil {
		return nil, errors.IOError("failed to open Excel file", err)
	}
	defer f.Close()

	sheet := r.sheet
	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, errors.InvalidInput("workbook has no sheets")
		}
		sheet = sheets[0]
	}

	// raw values, so number formats like #,##0.00 do not turn amounts into text
	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, errors.IOError("failed to read sheet "+sheet, err)
	}
	return rows, nil
}

func (r *DataReader) readCSVRows() ([][]string, error) {
	file, err := os.Open(r.filePath)
	if err != nil {
		return nil, errors.IOError("failed to open CSV file", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, errors.IOError("failed to read CSV file", err)
	}
	return rows, nil
}

// normalizeRows trims headers and pads or truncates data rows to the header
// width. Excel drops trailing empty cells, so short rows are common.
func normalizeRows(rows [][]string) (*RawTable, error) {
	headers := make([]string, len(rows[0]))
	seen := make(map[string]bool, len(headers))
	for i, header := range rows[0] {
		headers[i] = strings.TrimSpace(header)
		if headers[i] == "" {
			return nil, errors.InvalidInput("header row has an empty column name")
		}
		if seen[headers[i]] {
			return nil, errors.InvalidInput("duplicate column name " + headers[i])
		}
		seen[headers[i]] = true
	}

	table := &RawTable{Headers: headers, Rows: make([][]string, 0, len(rows)-1)}
	for _, row := range rows[1:] {
		cells := make([]string, len(headers))
		for j := 0; j < len(headers) && j < len(row); j++ {
			cells[j] = strings.TrimSpace(row[j])
		}
		table.Rows = append(table.Rows, cells)
	}
	return table, nil
}
