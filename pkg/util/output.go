package util

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

func FileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// WriteJSONFileAtomic marshals v and replaces path with the result.
func WriteJSONFileAtomic(path string, v any, pretty bool) error {
	var b []byte
	var err error
	if pretty {
		b, err = json.MarshalIndent(v, "", "    ")
	} else {
		b, err = json.Marshal(v)
	}
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}
	b = append(b, '\n')
	if err := WriteFileAtomic(path, b, 0o644); err != nil {
		return fmt.Errorf("write json: %w", err)
	}
	return nil
}

// WriteCSVFileAtomic writes header and rows as CSV and replaces path with the result.
// Every field is quoted when quoteAll is set. CRLF inside a field is written as LF,
// which is what ReadCSVFile returns for it either way.
func WriteCSVFileAtomic(path string, header []string, rows [][]string, quoteAll bool) error {
	var buf bytes.Buffer
	if quoteAll {
		writeQuotedCSV(&buf, header)
		for _, row := range rows {
			writeQuotedCSV(&buf, row)
		}
	} else {
		w := csv.NewWriter(&buf)
		if err := w.Write(normalizeCSVRow(header)); err != nil {
			return fmt.Errorf("write csv header: %w", err)
		}
		for _, row := range rows {
			if err := w.Write(normalizeCSVRow(row)); err != nil {
				return fmt.Errorf("write csv rows: %w", err)
			}
		}
		w.Flush()
		if err := w.Error(); err != nil {
			return fmt.Errorf("write csv rows: %w", err)
		}
	}
	if err := WriteFileAtomic(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	return nil
}

func writeQuotedCSV(buf *bytes.Buffer, fields []string) {
	for i, f := range fields {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteByte('"')
		buf.WriteString(strings.ReplaceAll(normalizeCSVField(f), `"`, `""`))
		buf.WriteByte('"')
	}
	buf.WriteByte('\n')
}

func normalizeCSVField(f string) string {
	return strings.ReplaceAll(f, "\r\n", "\n")
}

func normalizeCSVRow(fields []string) []string {
	out := make([]string, len(fields))
	for i, f := range fields {
		out[i] = normalizeCSVField(f)
	}
	return out
}

// WriteFileAtomic writes data to a temp file in the target directory and renames it over path.
func WriteFileAtomic(path string, data []byte, mode fs.FileMode) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".tmp_"+filepath.Base(path)+"_*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer func() {
		_ = os.Remove(tmpName)
	}()

	if err := tmp.Chmod(mode); err != nil {
		_ = tmp.Close()
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	return os.Rename(tmpName, path)
}

// ReadCSVFile reads path and returns its header and records.
func ReadCSVFile(path string) ([]string, [][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("parse csv %s: %w", path, err)
	}
	if len(records) == 0 {
		return nil, nil, fmt.Errorf("csv %s has no header", path)
	}
	return records[0], records[1:], nil
}
