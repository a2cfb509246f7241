package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/transform"
)

// yenEntity replaces every U+005C found in decoded text.
const yenEntity = "&yen;"

// ErrNoHeader is returned when the resource has no header row.
var ErrNoHeader = errors.New("missing header row")

// ErrInvalidEncoding is returned when the resource holds bytes that are not
// valid Shift_JIS.
var ErrInvalidEncoding = errors.New("invalid " + Charset + " byte sequence")

// ResourceError reports a dataset that could not be opened or parsed.
// Its message is the message of the underlying error.
type ResourceError struct {
	Path string
	Err  error
}

func (e *ResourceError) Error() string {
	return e.Err.Error()
}

func (e *ResourceError) Unwrap() error {
	return e.Err
}

// Sanitize replaces every backslash in s with "&yen;".
func Sanitize(s string) string {
	return strings.ReplaceAll(s, `\`, yenEntity)
}

// Load reads the Shift_JIS CSV file at path into a Dataset.
//
// The first row is the header. Rows shorter than the header get "" for the
// missing fields and extra trailing fields are ignored. A header-only file
// yields an empty, non-nil Dataset. All failures are *ResourceError.
func Load(path string) (Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &ResourceError{Path: path, Err: err}
	}
	defer f.Close()

	ds, err := Read(f)
	if err != nil {
		return nil, &ResourceError{Path: path, Err: fmt.Errorf("parse %s: %w", path, err)}
	}
	return ds, nil
}

// Read decodes Shift_JIS CSV from r. Load is the file-backed form.
func Read(r io.Reader) (Dataset, error) {
	cr := csv.NewReader(transform.NewReader(r, newDecoder()))
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, ErrNoHeader
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	if err := checkDecoded(cr, header); err != nil {
		return nil, err
	}
	for i := range header {
		header[i] = Sanitize(header[i])
	}

	ds := Dataset{}
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if err := checkDecoded(cr, row); err != nil {
			return nil, err
		}
		ds = append(ds, buildRecord(header, row))
	}
	return ds, nil
}

// checkDecoded rejects fields holding U+FFFD. The decoder substitutes it
// for invalid input and valid Shift_JIS never produces it.
func checkDecoded(cr *csv.Reader, fields []string) error {
	for i, f := range fields {
		if strings.ContainsRune(f, utf8.RuneError) {
			line, col := cr.FieldPos(i)
			return fmt.Errorf("line %d, column %d: %w", line, col, ErrInvalidEncoding)
		}
	}
	return nil
}

// buildRecord pairs row values with header names, sanitizing each value.
func buildRecord(header, row []string) Record {
	var rec Record
	for i, name := range header {
		var value string
		if i < len(row) {
			value = Sanitize(row[i])
		}
		rec.Set(name, value)
	}
	return rec
}
