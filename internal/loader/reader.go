package loader

import (
	"bufio"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/dbd-project/dbd/internal/dbderrors"
	"github.com/parquet-go/parquet-go"
	"github.com/xuri/excelize/v2"
)

// ReadDataFile reads path into Records, dispatching on file extension
// per spec.md §4.5.3. `.url` and `.ref` indirection files are handled
// by the caller (internal/executor), which resolves each referenced
// file/URL to a local path first and concatenates the results - mirrors
// original_source/dbd/tasks/data_task.py's __urls_to_dataframe and
// __refs_to_dataframe, which likewise just concatenate per-file reads.
func ReadDataFile(path string) ([]Record, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return readCSV(path)
	case ".json":
		return readJSON(path)
	case ".xls", ".xlsx", ".xlsm", ".xlsb", ".odf", ".ods", ".odt":
		return readExcel(path)
	case ".parquet":
		return readParquet(path)
	default:
		return nil, dbderrors.New(dbderrors.KindUnsupportedFile,
			"data files with extension '"+filepath.Ext(path)+"' aren't supported")
	}
}

func readCSV(path string) ([]Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, dbderrors.Wrap(dbderrors.KindUnsupportedFile, err, "opening "+path)
	}
	defer f.Close()

	r := csv.NewReader(bufio.NewReader(f))
	header, err := r.Read()
	if err != nil {
		return nil, dbderrors.Wrap(dbderrors.KindUnsupportedFile, err, "reading CSV header from "+path)
	}

	var records []Record
	for {
		row, err := r.Read()
		if err != nil {
			break
		}
		rec := make(Record, len(header))
		for i, col := range header {
			if i < len(row) {
				rec[col] = row[i]
			}
		}
		records = append(records, rec)
	}
	return records, nil
}

func readJSON(path string) ([]Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, dbderrors.Wrap(dbderrors.KindUnsupportedFile, err, "opening "+path)
	}
	var raw []map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, dbderrors.Wrap(dbderrors.KindUnsupportedFile, err, "parsing JSON from "+path)
	}
	records := make([]Record, len(raw))
	for i, obj := range raw {
		rec := make(Record, len(obj))
		for k, v := range obj {
			if v == nil {
				continue
			}
			rec[k] = fmt.Sprintf("%v", v)
		}
		records[i] = rec
	}
	return records, nil
}

func readExcel(path string) ([]Record, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, dbderrors.Wrap(dbderrors.KindUnsupportedFile, err, "opening "+path)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, dbderrors.Wrap(dbderrors.KindUnsupportedFile, err, "reading sheet from "+path)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	header := rows[0]
	records := make([]Record, 0, len(rows)-1)
	for _, row := range rows[1:] {
		rec := make(Record, len(header))
		for i, col := range header {
			if i < len(row) {
				rec[col] = row[i]
			}
		}
		records = append(records, rec)
	}
	return records, nil
}

func readParquet(path string) ([]Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, dbderrors.Wrap(dbderrors.KindUnsupportedFile, err, "opening "+path)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, dbderrors.Wrap(dbderrors.KindUnsupportedFile, err, "stat "+path)
	}
	pf, err := parquet.OpenFile(f, info.Size())
	if err != nil {
		return nil, dbderrors.Wrap(dbderrors.KindUnsupportedFile, err, "opening parquet file "+path)
	}

	schema := pf.Schema()
	reader := parquet.NewGenericReader[any](f)
	defer reader.Close()

	var records []Record
	rows := make([]parquet.Row, 64)
	for {
		n, err := reader.ReadRows(rows)
		for i := 0; i < n; i++ {
			rec := make(Record, len(schema.Fields()))
			for j, field := range schema.Fields() {
				if j < len(rows[i]) {
					rec[field.Name()] = rows[i][j].String()
				}
			}
			records = append(records, rec)
		}
		if err != nil {
			break
		}
	}
	return records, nil
}

// DownloadToFile fetches url and writes its body to destPath, the
// helper a `.url` reference file's entries go through before
// ReadDataFile can be applied (original_source's download_file /
// __urls_to_dataframe).
func DownloadToFile(url, destPath string) error {
	resp, err := http.Get(url)
	if err != nil {
		return dbderrors.Wrap(dbderrors.KindUnsupportedFile, err, "downloading "+url)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return dbderrors.New(dbderrors.KindUnsupportedFile, "download failed ("+resp.Status+"): "+url)
	}

	out, err := os.Create(destPath)
	if err != nil {
		return dbderrors.Wrap(dbderrors.KindUnsupportedFile, err, "creating "+destPath)
	}
	defer out.Close()

	buf := bufio.NewWriter(out)
	if _, err := buf.ReadFrom(resp.Body); err != nil {
		return dbderrors.Wrap(dbderrors.KindUnsupportedFile, err, "writing "+destPath)
	}
	return buf.Flush()
}
