// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"gopkg.in/yaml.v3"

	"github.com/additionalbeans/buildconv/internal/config"
)

// emptyCell is shown for absent table values.
const emptyCell = "-"

// writeStructured renders v as JSON or YAML. It reports false for the table
// format so the caller renders its own table.
func writeStructured(w io.Writer, format config.OutputFormat, v any) (bool, error) {
	switch format {
	case config.OutputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return true, enc.Encode(v)
	case config.OutputYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return true, err
		}
		return true, enc.Close()
	default:
		return false, nil
	}
}

// newTable returns a table writer mirrored to w in the shared style.
func newTable(w io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	style := table.StyleLight
	style.Format.Footer = text.FormatDefault
	t.SetStyle(style)
	return t
}

// keyValueTable renders two-column rows under a title.
func keyValueTable(w io.Writer, title string, rows [][2]string) {
	t := newTable(w)
	t.SetTitle(title)
	for _, r := range rows {
		t.AppendRow(table.Row{r[0], r[1]})
	}
	t.Render()
}

// joinOrEmpty joins values, or returns the empty cell.
func joinOrEmpty(values []string, sep string) string {
	if len(values) == 0 {
		return emptyCell
	}
	return strings.Join(values, sep)
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

// stringers converts a slice of fmt.Stringer values.
func stringers[T fmt.Stringer](values []T) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = v.String()
	}
	return out
}
