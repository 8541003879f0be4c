// Package iodataset reads submission files into dataset frames and writes
// frames back as CSV reports.
package iodataset

import (
	"bytes"
	"encoding/csv"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/aanoble/openhexa-pipelines-iaso/internal/iofs"
	"github.com/aanoble/openhexa-pipelines-iaso/pkg/dataset"
	"github.com/xuri/excelize/v2"
)

var errNoFile = errors.New("file does not exist")

// Read loads a .csv, .xlsx or .parquet file. Column types are inferred,
// empty cells are nil. XLSX files are read from their first sheet.
func Read(path string) (*dataset.Frame, error) {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".csv", ".xlsx", ".parquet":
	default:
		return nil, DatasetFormatError(path, ext)
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, DatasetReadError(path, errNoFile)
	}
	if err != nil {
		return nil, DatasetReadError(path, err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, DatasetEmptyError(path)
	}

	var rows [][]string
	switch ext {
	case ".csv":
		rows, err = readCSV(data)
	case ".xlsx":
		rows, err = readXLSX(data)
	case ".parquet":
		rows, err = readParquet(path)
	}
	if err != nil {
		return nil, DatasetReadError(path, err)
	}

	header, cells := split(rows)
	if len(header) == 0 || len(cells) == 0 {
		return nil, DatasetEmptyError(path)
	}
	return dataset.New(header, cells), nil
}

func readCSV(data []byte) ([][]string, error) {
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))
	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	var res [][]string
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		res = append(res, row)
	}
	return res, nil
}

func readXLSX(data []byte) ([][]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, nil
	}
	return f.GetRows(sheets[0])
}

// split trims cells, takes the first row as header and drops rows
// without values.
func split(rows [][]string) ([]string, [][]string) {
	if len(rows) == 0 {
		return nil, nil
	}
	header := make([]string, 0, len(rows[0]))
	for _, v := range rows[0] {
		header = append(header, strings.TrimSpace(v))
	}
	for len(header) > 0 && header[len(header)-1] == "" {
		header = header[:len(header)-1]
	}

	var cells [][]string
	for _, row := range rows[1:] {
		var hasValue bool
		res := make([]string, len(header))
		for i := range res {
			if i < len(row) {
				res[i] = strings.TrimSpace(row[i])
				hasValue = hasValue || res[i] != ""
			}
		}
		if hasValue {
			cells = append(cells, res)
		}
	}
	return header, cells
}

// CSV renders a frame as CSV text with a header row.
func CSV(ds *dataset.Frame) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	cols := ds.Columns()
	if err := w.Write(cols); err != nil {
		return nil, err
	}
	row := make([]string, len(cols))
	for _, rec := range ds.Rows() {
		for i, c := range cols {
			row[i] = dataset.Format(rec[c])
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteCSV saves a frame as a CSV file.
func WriteCSV(path string, ds *dataset.Frame) error {
	data, err := CSV(ds)
	if err != nil {
		return iofs.WriteFileError(path, err)
	}
	return iofs.WriteFile(path, data)
}
