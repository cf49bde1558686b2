package preprocess

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"slices"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

// MissingValues are the cell tokens read as missing. The set mirrors what
// pandas.read_csv treats as NA by default.
var MissingValues = []string{
	"", "NA", "N/A", "n/a", "NaN", "nan", "-NaN", "-nan",
	"null", "NULL", "None", "<NA>", "#N/A", "#N/A N/A", "#NA",
	"1.#IND", "-1.#IND", "1.#QNAN", "-1.#QNAN",
}

// nan is how gota marks a missing string element.
const nan = "NaN"

// Table is an ordered set of equal-length named string columns. Cells are
// either a value or missing; typed interpretation is left to the stage that
// reads the column.
type Table struct {
	df dataframe.DataFrame
}

// Empty returns the zero-column, zero-row table used to signal a load failure.
func Empty() *Table {
	return &Table{}
}

// NewTable builds a Table from CSV-style records; the first record is the header.
func NewTable(records [][]string) (*Table, error) {
	df := dataframe.LoadRecords(records, loadOptions()...)
	if df.Err != nil {
		return nil, fmt.Errorf("load records: %w", df.Err)
	}
	return &Table{df: df}, nil
}

// readTable parses CSV with a header row. Rows shorter than the header are
// padded with missing cells; rows longer than the header are an error.
func readTable(r io.Reader) (*Table, error) {
	reader := csv.NewReader(bufio.NewReaderSize(r, bufSize))
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("parse csv: no header row")
	}

	width := len(records[0])
	for i, rec := range records[1:] {
		switch {
		case len(rec) > width:
			return nil, fmt.Errorf("parse csv: row %d: expected %d fields, saw %d", i+1, width, len(rec))
		case len(rec) < width:
			padded := make([]string, width)
			copy(padded, rec)
			records[i+1] = padded
		}
	}
	return NewTable(records)
}

func loadOptions() []dataframe.LoadOption {
	return []dataframe.LoadOption{
		dataframe.HasHeader(true),
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.String),
		dataframe.NaNValues(MissingValues),
	}
}

// Columns returns the column names in order.
func (t *Table) Columns() []string {
	if t.df.Ncol() == 0 {
		return nil
	}
	return t.df.Names()
}

// Rows returns the row count.
func (t *Table) Rows() int {
	return t.df.Nrow()
}

// IsEmpty reports whether the table has no columns.
func (t *Table) IsEmpty() bool {
	return t.df.Ncol() == 0
}

// Has reports whether a column named name exists.
func (t *Table) Has(name string) bool {
	return slices.Contains(t.Columns(), name)
}

// Column returns a copy of the named column's cells and a parallel missing
// mask. Missing cells have an empty value.
func (t *Table) Column(name string) (values []string, missing []bool, ok bool) {
	if !t.Has(name) {
		return nil, nil, false
	}
	s := t.df.Col(name)
	values = s.Records()
	missing = s.IsNaN()
	for i := range values {
		if missing[i] {
			values[i] = ""
		}
	}
	return values, missing, true
}

// setColumn replaces an existing column in place, keeping its position.
func (t *Table) setColumn(name string, values []string, missing []bool) error {
	if len(values) != t.Rows() || len(missing) != len(values) {
		return fmt.Errorf("column %q: got %d cells, table has %d rows", name, len(values), t.Rows())
	}
	cells := make([]string, len(values))
	for i, v := range values {
		if missing[i] {
			cells[i] = nan
			continue
		}
		cells[i] = v
	}
	df := t.df.Mutate(series.New(cells, series.String, name))
	if df.Err != nil {
		return fmt.Errorf("replace column %q: %w", name, df.Err)
	}
	t.df = df
	return nil
}

// drop removes the named columns; every name must be present.
func (t *Table) drop(names []string) error {
	df := t.df.Drop(names)
	if df.Err != nil {
		return fmt.Errorf("drop columns: %w", df.Err)
	}
	t.df = df
	return nil
}

/* Output ------------------------------------------------------------------ */

const bufSize = 4 << 20 // 4 MiB

// WriteCSV writes the header and every row as comma-separated values.
// Missing cells become empty fields. No index column is written.
func (t *Table) WriteCSV(w io.Writer) error {
	bw := bufio.NewWriterSize(w, bufSize)
	writer := csv.NewWriter(bw)

	header := t.Columns()
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	cols := make([][]string, len(header))
	for j, name := range header {
		cols[j], _, _ = t.Column(name)
	}

	row := make([]string, len(header))
	for i := 0; i < t.Rows(); i++ {
		for j := range cols {
			row[j] = cols[j][i]
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("write row %d: %w", i+1, err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("flush: %w", err)
	}
	return bw.Flush()
}

// WriteFile creates (or truncates) path and writes the table to it.
func (t *Table) WriteFile(path string) error {
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	if err := t.WriteCSV(out); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
