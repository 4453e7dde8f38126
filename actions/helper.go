package actions

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jedib0t/go-pretty/table"
	"github.com/jedib0t/go-pretty/text"
	"github.com/relloyd/snowxfer/helper"
	"github.com/relloyd/snowxfer/rdbms"
)

// renderResultTable prints r as a table. Values longer than maxWidth are cut short.
func renderResultTable(w io.Writer, title string, r *rdbms.ResultTable, maxWidth int) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetTitle(title)
	t.Style().Format.Header = text.FormatDefault // keep the column names as they are.
	header := make(table.Row, len(r.Header))
	for idx, h := range r.Header {
		header[idx] = h
	}
	t.AppendHeader(header)
	for _, row := range r.Rows {
		vals := helper.InterfaceToString(row)
		out := make(table.Row, len(vals))
		for idx, v := range vals {
			out[idx] = helper.Truncate(v, maxWidth)
		}
		t.AppendRow(out)
	}
	t.Render()
}

// renderProperties prints name/value pairs as a two column table.
func renderProperties(w io.Writer, title string, props [][2]string) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetTitle(title)
	t.Style().Format.Header = text.FormatDefault
	t.AppendHeader(table.Row{"Property", "Value"})
	for _, p := range props {
		t.AppendRow(table.Row{p[0], p[1]})
	}
	t.Render()
}

func outputOrStdout(w io.Writer) io.Writer {
	if w == nil {
		return os.Stdout
	}
	return w
}

func printf(w io.Writer, format string, a ...interface{}) {
	_, _ = fmt.Fprintf(w, format, a...)
}

var secretKeyParts = []string{"password", "token", "private_key", "secret"}

func isSecretKey(k string) bool {
	k = strings.ToLower(k)
	for _, p := range secretKeyParts {
		if strings.Contains(k, p) {
			return true
		}
	}
	return false
}
