package csvfeed

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"
)

// Candidate header names for the required logical columns, in priority order
var (
	OrderIDCandidates   = []string{"order id", "order_id"}
	SKUCandidates       = []string{"seller sku", "sku", "product sku"}
	QuantityCandidates  = []string{"quantity", "qty"}
	UnitPriceCandidates = []string{"unit price", "price"}
)

// Columns holds the resolved header names for the required logical columns
type Columns struct {
	OrderID   string
	SKU       string
	Quantity  string
	UnitPrice string
}

// FeedParser reads a delimited marketplace export. The delimiter is sniffed
// from the header line, a UTF-8 BOM is stripped, and headers are normalized
// to lowercase.
type FeedParser struct {
	reader     *csv.Reader
	bufReader  *bufio.Reader
	delimiter  rune
	headers    []string
	headerMap  map[string]int
	currentRow int
}

// NewFeedParser creates a parser from a reader, sniffing the delimiter from
// the first line: tab when the line carries more tabs than commas, comma
// otherwise.
func NewFeedParser(r io.Reader) (*FeedParser, error) {
	p := &FeedParser{
		headerMap: make(map[string]int),
	}
	p.bufReader = bufio.NewReader(r)

	// Detect and strip UTF-8 BOM (0xEF, 0xBB, 0xBF)
	head, err := p.bufReader.Peek(3)
	if err != nil && err != io.EOF {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	if len(head) >= 3 && head[0] == 0xEF && head[1] == 0xBB && head[2] == 0xBF {
		_, _ = p.bufReader.Discard(3)
	}

	if err := validateUTF8(p.bufReader); err != nil {
		return nil, err
	}

	p.delimiter = sniffDelimiter(p.bufReader)

	p.reader = csv.NewReader(p.bufReader)
	p.reader.Comma = p.delimiter
	p.reader.LazyQuotes = true
	p.reader.TrimLeadingSpace = true
	p.reader.FieldsPerRecord = -1 // rows may be short; missing fields default to ""

	return p, nil
}

// ParseFromBytes creates a parser from a byte slice
func ParseFromBytes(data []byte) (*FeedParser, error) {
	return NewFeedParser(bytes.NewReader(data))
}

// sniffDelimiter inspects the first line without consuming it
func sniffDelimiter(r *bufio.Reader) rune {
	const sniffSize = 8192
	head, _ := r.Peek(sniffSize)
	if idx := bytes.IndexByte(head, '\n'); idx >= 0 {
		head = head[:idx]
	}
	if bytes.Count(head, []byte{'\t'}) > bytes.Count(head, []byte{','}) {
		return '\t'
	}
	return ','
}

// validateUTF8 checks that the content is valid UTF-8 and non-empty. Only a
// prefix of the file is inspected.
func validateUTF8(r *bufio.Reader) error {
	const checkSize = 4096
	content, err := r.Peek(checkSize)
	if err != nil && err != io.EOF {
		return fmt.Errorf("failed to read file for encoding validation: %w", err)
	}
	if len(content) == 0 {
		return ErrEmptyFile
	}
	if len(content) == checkSize {
		// The peek window may cut a multibyte rune; drop the partial
		// trailing sequence before validating.
		for i := 0; i < utf8.UTFMax-1; i++ {
			r, size := utf8.DecodeLastRune(content)
			if r != utf8.RuneError || size != 1 {
				break
			}
			content = content[:len(content)-1]
		}
	}
	if !utf8.Valid(content) {
		return ErrInvalidEncoding
	}
	return nil
}

// ParseHeader reads the header row and normalizes each header to a
// lowercased, trimmed name.
func (p *FeedParser) ParseHeader() error {
	record, err := p.reader.Read()
	if err == io.EOF {
		return ErrMissingHeader
	}
	if err != nil {
		return fmt.Errorf("failed to read header: %w", err)
	}

	p.headers = make([]string, len(record))
	for i, h := range record {
		name := strings.ToLower(strings.TrimSpace(h))
		p.headers[i] = name
		p.headerMap[name] = i
	}
	if len(p.headers) == 0 {
		return ErrMissingHeader
	}
	p.currentRow = 1

	return nil
}

// Headers returns the normalized header names
func (p *FeedParser) Headers() []string {
	return p.headers
}

// Delimiter returns the sniffed delimiter
func (p *FeedParser) Delimiter() rune {
	return p.delimiter
}

// ResolveColumns resolves the four required logical columns against the
// parsed headers. Any miss aborts the import before row processing, so a
// bad file never causes partial writes.
func (p *FeedParser) ResolveColumns() (Columns, error) {
	var cols Columns
	var ok bool

	if cols.OrderID, ok = ResolveHeader(p.headers, OrderIDCandidates); !ok {
		return cols, &MissingColumnError{Column: "order id", Candidates: OrderIDCandidates}
	}
	if cols.SKU, ok = ResolveHeader(p.headers, SKUCandidates); !ok {
		return cols, &MissingColumnError{Column: "sku", Candidates: SKUCandidates}
	}
	if cols.Quantity, ok = ResolveHeader(p.headers, QuantityCandidates); !ok {
		return cols, &MissingColumnError{Column: "quantity", Candidates: QuantityCandidates}
	}
	if cols.UnitPrice, ok = ResolveHeader(p.headers, UnitPriceCandidates); !ok {
		return cols, &MissingColumnError{Column: "unit price", Candidates: UnitPriceCandidates}
	}
	return cols, nil
}

// Row is one parsed data row keyed by normalized header name
type Row struct {
	LineNumber int
	Data       map[string]string
}

// Get returns the value for a column by normalized header name
func (r *Row) Get(header string) string {
	return r.Data[header]
}

// GetOrDefault returns the value for a column, or the default when the
// column is absent or empty
func (r *Row) GetOrDefault(header, defaultVal string) string {
	if v, ok := r.Data[header]; ok && v != "" {
		return v
	}
	return defaultVal
}

// IsEmpty returns true if the row has no non-empty values
func (r *Row) IsEmpty() bool {
	for _, v := range r.Data {
		if v != "" {
			return false
		}
	}
	return true
}

// ReadRow reads the next data row. Missing trailing fields default to the
// empty string; extra fields beyond the header count are dropped.
func (p *FeedParser) ReadRow() (*Row, error) {
	record, err := p.reader.Read()
	if err == io.EOF {
		return nil, io.EOF
	}
	if err != nil {
		p.currentRow++
		return nil, fmt.Errorf("error reading row %d: %w", p.currentRow, err)
	}
	p.currentRow++

	row := &Row{
		LineNumber: p.currentRow,
		Data:       make(map[string]string, len(p.headers)),
	}
	for i, header := range p.headers {
		if i < len(record) {
			row.Data[header] = strings.TrimSpace(record[i])
		} else {
			row.Data[header] = ""
		}
	}
	return row, nil
}

// ReadAllRows reads every remaining data row, skipping fully empty ones
func (p *FeedParser) ReadAllRows() ([]*Row, error) {
	var rows []*Row
	for {
		row, err := p.ReadRow()
		if err == io.EOF {
			break
		}
		if err != nil {
			return rows, err
		}
		if row.IsEmpty() {
			continue
		}
		rows = append(rows, row)
	}
	return rows, nil
}
