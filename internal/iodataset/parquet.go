package iodataset

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/common"
	"github.com/xitongsys/parquet-go/reader"
)

// readParquet returns the header and the cells of a flat parquet file.
// Nested or repeated columns are rejected.
func readParquet(path string) ([][]string, error) {
	fr, err := local.NewLocalFileReader(path)
	if err != nil {
		return nil, err
	}
	defer fr.Close()

	pr, err := reader.NewParquetColumnReader(fr, 1)
	if err != nil {
		return nil, err
	}
	defer pr.ReadStop()

	n := pr.GetNumRows()
	cols := pr.SchemaHandler.ValueColumns
	res := make([][]string, n+1)
	for i := range res {
		res[i] = make([]string, len(cols))
	}

	for j, p := range cols {
		parts := strings.Split(p, common.PAR_GO_PATH_DELIMITER)
		name := parts[len(parts)-1]
		res[0][j] = name
		if n == 0 {
			continue
		}
		vals, _, _, err := pr.ReadColumnByIndex(int64(j), n)
		if err != nil {
			return nil, fmt.Errorf("column %s: %w", name, err)
		}
		if int64(len(vals)) != n {
			return nil, fmt.Errorf(
				"column %s has %d values for %d rows, nested columns "+
					"are not supported", name, len(vals), n,
			)
		}
		for i, v := range vals {
			res[i+1][j] = parquetCell(v)
		}
	}
	return res, nil
}

func parquetCell(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case []byte:
		return string(val)
	case bool:
		return strconv.FormatBool(val)
	case int32:
		return strconv.FormatInt(int64(val), 10)
	case int64:
		return strconv.FormatInt(val, 10)
	case float32:
		return strconv.FormatFloat(float64(val), 'f', -1, 32)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	}
	return fmt.Sprint(v)
}
