package table

import (
	"bytes"
	"compress/gzip"
	"encoding/csv"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zstd"
	"github.com/ulikunitz/xz"
	"github.com/xuri/excelize/v2"
)

// utf8BOM is stripped from the first header cell; spreadsheet exports add it.
const utf8BOM = "\ufeff"

// codec reads and writes a whole dataset.
type codec interface {
	decode(r io.Reader) (header []string, records [][]string, err error)
	encode(w io.Writer, header []string, records [][]string) error
}

// compression wraps a byte stream.
type compression interface {
	reader(r io.Reader) (io.ReadCloser, error)
	writer(w io.Writer) (io.WriteCloser, error)
}

// format is the codec plus optional compression resolved from a file name.
type format struct {
	codec       codec
	compression compression
}

// formatFor resolves the format from the path extension, for example
// "companies.csv", "facilities.tsv.zst" or "parents.xlsx".
func formatFor(path string) (format, error) {
	name := strings.ToLower(filepath.Base(path))

	var comp compression
	switch {
	case strings.HasSuffix(name, ".gz"):
		comp = gzipCompression{}
	case strings.HasSuffix(name, ".zst"):
		comp = zstdCompression{}
	case strings.HasSuffix(name, ".xz"):
		comp = xzCompression{}
	}
	if comp != nil {
		name = strings.TrimSuffix(name, filepath.Ext(name))
	}

	switch filepath.Ext(name) {
	case ".csv":
		return format{codec: delimitedCodec{comma: ','}, compression: comp}, nil
	case ".tsv", ".tab":
		return format{codec: delimitedCodec{comma: '\t'}, compression: comp}, nil
	case ".xlsx":
		if comp != nil {
			return format{}, fmt.Errorf("%w: compressed xlsx %q", ErrUnsupportedFormat, path)
		}
		return format{codec: xlsxCodec{}}, nil
	default:
		return format{}, fmt.Errorf("%w: %q", ErrUnsupportedFormat, path)
	}
}

func (f format) decode(r io.Reader) ([]string, [][]string, error) {
	if f.compression == nil {
		return f.codec.decode(r)
	}
	rc, err := f.compression.reader(r)
	if err != nil {
		return nil, nil, err
	}
	defer func() { _ = rc.Close() }()
	return f.codec.decode(rc)
}

func (f format) encode(w io.Writer, header []string, records [][]string) error {
	if f.compression == nil {
		return f.codec.encode(w, header, records)
	}
	wc, err := f.compression.writer(w)
	if err != nil {
		return err
	}
	if err = f.codec.encode(wc, header, records); err != nil {
		_ = wc.Close()
		return err
	}
	return wc.Close()
}

type delimitedCodec struct {
	comma rune
}

func (c delimitedCodec) decode(r io.Reader) ([]string, [][]string, error) {
	cr := csv.NewReader(r)
	cr.Comma = c.comma
	cr.FieldsPerRecord = -1
	if c.comma == '\t' {
		cr.LazyQuotes = true
	}

	all, err := cr.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("parsing delimited data: %w", err)
	}
	if len(all) == 0 {
		return nil, nil, ErrEmptyHeader
	}

	header := all[0]
	header[0] = strings.TrimPrefix(header[0], utf8BOM)
	return header, all[1:], nil
}

func (c delimitedCodec) encode(w io.Writer, header []string, records [][]string) error {
	cw := csv.NewWriter(w)
	cw.Comma = c.comma
	if err := cw.Write(header); err != nil {
		return err
	}
	if err := cw.WriteAll(records); err != nil {
		return err
	}
	return cw.Error()
}

type xlsxCodec struct{}

func (xlsxCodec) decode(r io.Reader) ([]string, [][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, nil, fmt.Errorf("opening workbook: %w", err)
	}
	defer func() { _ = f.Close() }()

	sheet := f.GetSheetName(0)
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, nil, fmt.Errorf("reading sheet %q: %w", sheet, err)
	}
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil, nil, ErrEmptyHeader
	}

	// GetRows drops trailing empty cells; New pads short rows back out.
	return rows[0], rows[1:], nil
}

func (xlsxCodec) encode(w io.Writer, header []string, records [][]string) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	sheet := f.GetSheetName(0)
	write := func(rowNum int, values []string) error {
		cell, err := excelize.CoordinatesToCellName(1, rowNum)
		if err != nil {
			return err
		}
		return f.SetSheetRow(sheet, cell, &values)
	}

	if err := write(1, header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for i, rec := range records {
		if err := write(i+2, rec); err != nil {
			return fmt.Errorf("writing row %d: %w", i+1, err)
		}
	}

	// Buffer first so a failed render never leaves a partial workbook in w.
	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return fmt.Errorf("rendering workbook: %w", err)
	}
	_, err := buf.WriteTo(w)
	return err
}

type gzipCompression struct{}

func (gzipCompression) reader(r io.Reader) (io.ReadCloser, error) {
	return gzip.NewReader(r)
}

func (gzipCompression) writer(w io.Writer) (io.WriteCloser, error) {
	return gzip.NewWriter(w), nil
}

type zstdCompression struct{}

func (zstdCompression) reader(r io.Reader) (io.ReadCloser, error) {
	d, err := zstd.NewReader(r)
	if err != nil {
		return nil, err
	}
	return d.IOReadCloser(), nil
}

func (zstdCompression) writer(w io.Writer) (io.WriteCloser, error) {
	return zstd.NewWriter(w)
}

type xzCompression struct{}

func (xzCompression) reader(r io.Reader) (io.ReadCloser, error) {
	xr, err := xz.NewReader(r)
	if err != nil {
		return nil, err
	}
	return io.NopCloser(xr), nil
}

func (xzCompression) writer(w io.Writer) (io.WriteCloser, error) {
	return xz.NewWriter(w)
}
