package api

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
)

func printf(w io.Writer, format string, a ...interface{}) {
	_, _ = fmt.Fprintf(w, format, a...)
}

func joinComma(s []string) string {
	return strings.Join(s, ", ")
}

func boolStr(b bool) string {
	return strconv.FormatBool(b)
}

func toString(v interface{}) string {
	return fmt.Sprint(v)
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
