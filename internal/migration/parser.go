package migration

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/rpattn/casemigrate/internal/detect"
)

// ErrUnsupportedFormat is returned when an uploaded file is not supported.
var ErrUnsupportedFormat = errors.New("unsupported file format")

var byteOrderMark = []byte{0xEF, 0xBB, 0xBF}

// RowReader streams the data rows of a parsed tabular file. Delimited text
// is read row by row so large files never sit in memory as row objects;
// spreadsheet input is materialized up front by the workbook library.
type RowReader interface {
	// Headers returns the trimmed header row.
	Headers() []string
	// Next returns the next data row, padded to the header width, or io.EOF.
	// Rows with no non-blank cells are skipped.
	Next() ([]string, error)
	Close() error
}

// OpenTable opens an uploaded file for row streaming based on its extension.
func OpenTable(fileName string, payload []byte) (RowReader, error) {
	if len(payload) == 0 {
		return nil, errors.New("file is empty")
	}
	ext := strings.ToLower(filepath.Ext(fileName))
	switch ext {
	case ".csv", ".tsv", ".txt":
		return newCSVRowReader(payload)
	case ".xlsx":
		return newExcelRowReader(payload)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, ext)
	}
}

// CountRows drains a reader and returns the number of data rows.
func CountRows(reader RowReader) (int, error) {
	count := 0
	for {
		if _, err := reader.Next(); err != nil {
			if errors.Is(err, io.EOF) {
				return count, nil
			}
			return count, err
		}
		count++
	}
}

type csvRowReader struct {
	reader  *csv.Reader
	headers []string
}

func newCSVRowReader(payload []byte) (*csvRowReader, error) {
	payload = bytes.TrimPrefix(payload, byteOrderMark)

	firstLine := payload
	if idx := bytes.IndexByte(payload, '\n'); idx >= 0 {
		firstLine = payload[:idx]
	}

	csvReader := csv.NewReader(bufio.NewReader(bytes.NewReader(payload)))
	csvReader.Comma = detect.DetectDelimiter(string(firstLine))
	csvReader.TrimLeadingSpace = true
	csvReader.FieldsPerRecord = -1

	headerRow, err := csvReader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("no header row detected")
		}
		return nil, fmt.Errorf("failed to read csv header: %w", err)
	}

	headers := make([]string, len(headerRow))
	for i, value := range headerRow {
		headers[i] = strings.TrimSpace(value)
	}

	return &csvRowReader{reader: csvReader, headers: headers}, nil
}

func (r *csvRowReader) Headers() []string {
	return r.headers
}

func (r *csvRowReader) Next() ([]string, error) {
	for {
		row, err := r.reader.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil, io.EOF
			}
			return nil, fmt.Errorf("failed to read csv row: %w", err)
		}
		if rowIsEmpty(row) {
			continue
		}
		return padRow(row, len(r.headers)), nil
	}
}

func (r *csvRowReader) Close() error {
	return nil
}

type excelRowReader struct {
	headers []string
	rows    [][]string
	next    int
}

func newExcelRowReader(payload []byte) (*excelRowReader, error) {
	f, err := excelize.OpenReader(bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to open xlsx: %w", err)
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.New("excel file has no sheets")
	}

	// First sheet only; the first non-empty row is the header.
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read rows from xlsx: %w", err)
	}

	var headers []string
	var dataRows [][]string
	for _, row := range rows {
		if rowIsEmpty(row) {
			continue
		}
		if headers == nil {
			headers = make([]string, len(row))
			for i, value := range row {
				headers[i] = strings.TrimSpace(value)
			}
			continue
		}
		dataRows = append(dataRows, row)
	}

	if headers == nil {
		return nil, errors.New("no header row detected")
	}

	return &excelRowReader{headers: headers, rows: dataRows}, nil
}

func (r *excelRowReader) Headers() []string {
	return r.headers
}

func (r *excelRowReader) Next() ([]string, error) {
	if r.next >= len(r.rows) {
		return nil, io.EOF
	}
	row := padRow(r.rows[r.next], len(r.headers))
	r.next++
	return row, nil
}

func (r *excelRowReader) Close() error {
	return nil
}

func rowIsEmpty(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

func padRow(row []string, length int) []string {
	if len(row) >= length {
		return row[:length]
	}
	padded := make([]string, length)
	copy(padded, row)
	return padded
}
