package output

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/bytedance/sonic"

	"github.com/penwyp/UsagePivot/models"
)

// Format names a console rendering of a report table
type Format string

const (
	FormatNone  Format = "none"
	FormatTable Format = "table"
	FormatCSV   Format = "csv"
	FormatJSON  Format = "json"
)

// Formats lists the accepted --print values
var Formats = []Format{FormatNone, FormatTable, FormatCSV, FormatJSON}

// ParseFormat validates a print format name
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	if f == "" {
		return FormatNone, nil
	}
	for _, known := range Formats {
		if f == known {
			return f, nil
		}
	}
	return FormatNone, fmt.Errorf("unsupported output format: %s", s)
}

// Formatter renders a report table to a writer
type Formatter interface {
	Format(w io.Writer, table models.Table) error
}

// NewFormatter returns the formatter for f, or nil for FormatNone
func NewFormatter(f Format) (Formatter, error) {
	switch f {
	case FormatNone:
		return nil, nil
	case FormatTable:
		return TableFormatter{}, nil
	case FormatCSV:
		return CSVFormatter{}, nil
	case FormatJSON:
		return JSONFormatter{Indent: "  "}, nil
	default:
		return nil, fmt.Errorf("unsupported output format: %s", f)
	}
}

// TableFormatter aligns columns for the terminal
type TableFormatter struct{}

func (TableFormatter) Format(w io.Writer, table models.Table) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	if table.Name != "" {
		fmt.Fprintf(tw, "== %s ==\n", table.Name)
	}
	fmt.Fprintln(tw, strings.Join(table.Columns, "\t"))
	for _, row := range table.Rows {
		fmt.Fprintln(tw, strings.Join(row.Strings(), "\t"))
	}

	return tw.Flush()
}

// CSVFormatter writes the header and rows as CSV
type CSVFormatter struct{}

func (CSVFormatter) Format(w io.Writer, table models.Table) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(table.Columns); err != nil {
		return err
	}
	for _, row := range table.Rows {
		if err := writer.Write(row.Strings()); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}

// JSONFormatter writes an array of column-keyed objects
type JSONFormatter struct {
	Indent string
}

func (f JSONFormatter) Format(w io.Writer, table models.Table) error {
	records := table.Records()

	var (
		data []byte
		err  error
	)
	if f.Indent != "" {
		data, err = sonic.ConfigStd.MarshalIndent(records, "", f.Indent)
	} else {
		data, err = sonic.ConfigStd.Marshal(records)
	}
	if err != nil {
		return err
	}

	if _, err := w.Write(data); err != nil {
		return err
	}
	_, err = w.Write([]byte("\n"))
	return err
}
