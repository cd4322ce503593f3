// Package report turns expense lists into flat, ordered rows and serializes
// them as CSV.
package report

import (
	"bufio"
	"io"
	"strings"
)

// Cell is one key/value pair of a Row.
type Cell struct {
	Key   string
	Value string
}

// Row is an ordered mapping of column name to value.
type Row []Cell

// Get returns the value stored under key.
func (r Row) Get(key string) (string, bool) {
	for _, c := range r {
		if c.Key == key {
			return c.Value, true
		}
	}
	return "", false
}

// Table is a list of rows sharing the columns of the first one.
type Table []Row

// Header returns the keys of the first row.
func (t Table) Header() []string {
	if len(t) == 0 {
		return nil
	}
	keys := make([]string, len(t[0]))
	for i, c := range t[0] {
		keys[i] = c.Key
	}
	return keys
}

// WriteCSV writes the table with the header taken from the first row. Quotes
// are doubled, and a value is wrapped in quotes only when it contains a comma.
// Lines are separated by "\n" with no trailing newline; an empty table writes
// nothing.
func (t Table) WriteCSV(w io.Writer) error {
	header := t.Header()
	if header == nil {
		return nil
	}

	bw := bufio.NewWriter(w)
	writeLine(bw, header)
	for _, row := range t {
		values := make([]string, len(header))
		for i, key := range header {
			values[i], _ = row.Get(key)
		}
		bw.WriteByte('\n')
		writeLine(bw, values)
	}
	return bw.Flush()
}

// CSV returns the WriteCSV output as a string.
func (t Table) CSV() string {
	var sb strings.Builder
	_ = t.WriteCSV(&sb)
	return sb.String()
}

func writeLine(w *bufio.Writer, values []string) {
	for i, v := range values {
		if i > 0 {
			w.WriteByte(',')
		}
		w.WriteString(escape(v))
	}
}

func escape(v string) string {
	v = strings.ReplaceAll(v, `"`, `""`)
	if strings.Contains(v, ",") {
		return `"` + v + `"`
	}
	return v
}
