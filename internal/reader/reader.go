package reader

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/skylinedata/transnet/internal/provider"
)

// InvalidFileFormatError reports a malformed structural row. It is
// fatal for the whole run: a file whose title or header cannot be
// located cannot be partially recovered.
type InvalidFileFormatError struct {
	Reason string
	Row    int
}

func (e *InvalidFileFormatError) Error() string {
	return fmt.Sprintf("invalid file format at row %d: %s", e.Row, e.Reason)
}

// Row is one raw data row with its position in the source file.
type Row struct {
	Number int
	Fields []string
}

// Chunk is a bounded, file-order-contiguous group of data rows that
// is processed and persisted as one unit.
type Chunk struct {
	Rows []Row
}

type state int

const (
	seekTitle state = iota
	seekHeader
	inData
	endOfData
)

// FileReader streams a provider file, walking the row state machine
// (title → header → data → end of data) and slicing data rows into
// fixed-size chunks. Chunk boundaries are purely positional.
type FileReader struct {
	contract  *provider.Contract
	chunkSize int
	verbose   bool
	log       *slog.Logger

	lines  *bufio.Reader
	rowNum int
	state  state

	title    []string
	header   []string
	blankRun int
	done     bool
}

// NewFileReader wraps an input byte stream for the given contract.
func NewFileReader(c *provider.Contract, input io.Reader, chunkSize int, verbose bool, log *slog.Logger) *FileReader {
	r := &FileReader{
		contract:  c,
		chunkSize: chunkSize,
		verbose:   verbose,
		log:       log,
		lines:     bufio.NewReader(input),
		state:     seekTitle,
	}
	if c.TitlePos < 0 {
		r.state = seekHeader
	}
	return r
}

// Header returns the captured header row, nil until it has been read.
func (r *FileReader) Header() []string {
	return r.header
}

// Title returns the captured title row, nil for formats without one.
func (r *FileReader) Title() []string {
	return r.title
}

// NextChunk returns the next chunk of data rows, short on the last
// one. It returns io.EOF once the file or the end-of-data marker is
// exhausted, and an InvalidFileFormatError on a blank structural row.
func (r *FileReader) NextChunk() (*Chunk, error) {
	if r.done {
		return nil, io.EOF
	}

	chunk := &Chunk{}
	for len(chunk.Rows) < r.chunkSize {
		fields, err := r.readRow()
		if err == io.EOF {
			r.done = true
			break
		}
		if err != nil {
			return nil, err
		}

		keep, err := r.advance(fields)
		if err != nil {
			return nil, err
		}
		if keep {
			chunk.Rows = append(chunk.Rows, Row{Number: r.rowNum, Fields: fields})
		}
		r.rowNum++

		if r.state == endOfData {
			r.done = true
			break
		}
	}

	if len(chunk.Rows) == 0 {
		return nil, io.EOF
	}
	return chunk, nil
}

// readRow reads one physical line and splits it per the contract's
// dialect. A fully empty line yields a nil field slice so blank-run
// end-of-data detection can see it; encoding/csv alone would swallow
// it. The constraint this imposes: a quoted field cannot span
// physical lines — an embedded line break splits the row, and the
// record model's length check rejects both halves rather than
// loading a mangled record.
func (r *FileReader) readRow() ([]string, error) {
	line, err := r.lines.ReadString('\n')
	if line == "" && err != nil {
		if err == io.EOF {
			return nil, io.EOF
		}
		return nil, fmt.Errorf("read row %d: %w", r.rowNum, err)
	}
	line = strings.TrimRight(line, "\r\n")
	if line == "" {
		return nil, nil
	}

	cr := r.contract.Dialect.NewReader(strings.NewReader(line))
	fields, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("parse row %d: %w", r.rowNum, err)
	}
	if r.verbose {
		r.log.Debug("row", "number", r.rowNum, "fields", fields)
	}
	return fields, nil
}

// advance feeds one row through the state machine and reports whether
// it is a data row the caller should keep.
func (r *FileReader) advance(fields []string) (bool, error) {
	switch r.state {
	case seekTitle:
		if r.rowNum != r.contract.TitlePos {
			return false, nil
		}
		if allBlank(fields) {
			return false, &InvalidFileFormatError{Reason: "title row is empty", Row: r.rowNum}
		}
		r.title = fields
		r.state = seekHeader
		return false, nil

	case seekHeader:
		if r.rowNum != r.contract.HeaderPos {
			return false, nil
		}
		if allBlank(fields) {
			return false, &InvalidFileFormatError{Reason: "header row is empty", Row: r.rowNum}
		}
		r.header = make([]string, len(fields))
		for i, f := range fields {
			r.header[i] = strings.TrimSpace(f)
		}
		r.state = inData
		return false, nil

	case inData:
		if r.rowNum < r.contract.DataPos {
			return false, nil
		}
		if allBlank(fields) {
			if r.contract.BlankRunEOD > 0 {
				r.blankRun++
				if r.blankRun >= r.contract.BlankRunEOD {
					r.state = endOfData
				}
			}
			return false, nil
		}
		r.blankRun = 0
		return true, nil
	}
	return false, nil
}

func allBlank(fields []string) bool {
	for _, f := range fields {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}
