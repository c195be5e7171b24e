package processing

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ReadTable loads a staged file into a Table, selecting the reader by
// filename extension: delimited (.csv), nested-record (.json) or
// spreadsheet (.xlsx).
func ReadTable(path string) (*Table, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return readCSV(path)
	case ".json":
		return readJSON(path)
	case ".xlsx":
		return readXLSX(path)
	default:
		return nil, fmt.Errorf("unsupported table format %q", filepath.Ext(path))
	}
}

// readCSV parses delimited input. A header row is required.
func readCSV(path string) (*Table, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1 // tolerate ragged rows; the writer re-pads

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse CSV: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("missing header row")
	}

	return &Table{Headers: records[0], Rows: records[1:]}, nil
}

// readJSON parses nested-record input and flattens one level of nesting: a
// single top-level record becomes a one-row table, a top-level list becomes
// one row per element. Column order is the sorted union of record keys so
// output is deterministic.
func readJSON(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}

	var parsed any
	if err := json.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse JSON: %w", err)
	}

	var records []map[string]any
	switch v := parsed.(type) {
	case map[string]any:
		records = []map[string]any{v}
	case []any:
		for i, element := range v {
			record, ok := element.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("element %d is not a record", i)
			}
			records = append(records, record)
		}
	default:
		return nil, fmt.Errorf("top-level value must be a record or a list of records")
	}

	keySet := make(map[string]struct{})
	for _, record := range records {
		for key := range record {
			keySet[key] = struct{}{}
		}
	}
	headers := make([]string, 0, len(keySet))
	for key := range keySet {
		headers = append(headers, key)
	}
	sort.Strings(headers)

	table := &Table{Headers: headers}
	for _, record := range records {
		row := make([]string, len(headers))
		for i, key := range headers {
			if value, ok := record[key]; ok {
				row[i] = stringifyValue(value)
			}
		}
		table.Rows = append(table.Rows, row)
	}

	return table, nil
}

// stringifyValue renders a JSON value as a cell. Deeper nesting is kept as
// compact JSON rather than flattened further.
func stringifyValue(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	case float64:
		// JSON numbers decode as float64; render integers without a
		// trailing fraction.
		if v == float64(int64(v)) {
			return strconv.FormatInt(int64(v), 10)
		}
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		encoded, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		return string(encoded)
	}
}

// readXLSX parses the first sheet of a spreadsheet, first row as headers.
func readXLSX(path string) (*Table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open spreadsheet: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("spreadsheet has no sheets")
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheets[0], err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("missing header row")
	}

	return &Table{Headers: rows[0], Rows: rows[1:]}, nil
}
