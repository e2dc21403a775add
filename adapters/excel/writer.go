package excel

import (
	"io"
	"math"
	"os"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/xuri/excelize/v2"

	"ordermetrics/internal/errors"
)

// WriteCSV writes df with a header row
func WriteCSV(df dataframe.DataFrame, w io.Writer) error {
	if df.Err != nil {
		return errors.Wrap(df.Err, "invalid dataset")
	}
	if err := df.WriteCSV(w); err != nil {
		return errors.IOError("failed to write CSV", err)
	}
	return nil
}

// WriteFile writes df to path as CSV or, for any other extension, as an
// Excel workbook with numeric cells kept numeric
func WriteFile(df dataframe.DataFrame, path string) error {
	if fileTypeOf(path) == "csv" {
		f, err := os.Create(path)
		if err != nil {
			return errors.IOError("failed to create "+path, err)
		}
		if err := WriteCSV(df, f); err != nil {
			f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return errors.IOError("failed to close "+path, err)
		}
		return nil
	}
	return writeWorkbook(df, path)
}

func writeWorkbook(df dataframe.DataFrame, path string) error {
	if df.Err != nil {
		return errors.Wrap(df.Err, "invalid dataset")
	}

	f := excelize.NewFile()
	defer f.Close()

	names := df.Names()
	header := make([]interface{}, len(names))
	for i, name := range names {
		header[i] = name
	}
	if err := f.SetSheetRow(DefaultSheet, "A1", &header); err != nil {
		return errors.IOError("failed to write header", err)
	}

	columns := make([]series.Series, len(names))
	for i, name := range names {
		columns[i] = df.Col(name)
	}

	for row := 0; row < df.Nrow(); row++ {
		cells := make([]interface{}, len(columns))
		for i, col := range columns {
			cells[i] = cellValue(col, row)
		}
		cell, err := excelize.CoordinatesToCellName(1, row+2)
		if err != nil {
			return errors.IOError("failed to address row", err)
		}
		if err := f.SetSheetRow(DefaultSheet, cell, &cells); err != nil {
			return errors.IOError("failed to write row", err)
		}
	}

	if err := f.SaveAs(path); err != nil {
		return errors.IOError("failed to save "+path, err)
	}
	return nil
}

func cellValue(col series.Series, row int) interface{} {
	el := col.Elem(row)
	if el.IsNA() {
		return nil
	}
	switch col.Type() {
	case series.Float:
		if v := el.Float(); !math.IsInf(v, 0) {
			return v
		}
	case series.Int:
		if v, err := el.Int(); err == nil {
			return v
		}
	}
	return el.String()
}
