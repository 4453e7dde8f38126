package helper

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/pkg/errors"
)

// FormatBytes renders a byte count using binary units, e.g. 1536 is "1.5 KB".
func FormatBytes(n float64) string {
	for _, unit := range []string{"B", "KB", "MB", "GB", "TB"} {
		if n < 1024.0 {
			return fmt.Sprintf("%.1f %v", n, unit)
		}
		n /= 1024.0
	}
	return fmt.Sprintf("%.1f PB", n)
}

// FormatDuration renders seconds as hours, minutes and seconds, e.g. "2h 30m 15s".
// Zero components are skipped except for seconds when nothing else is shown.
func FormatDuration(seconds float64) string {
	total := int(seconds)
	hours := total / 3600
	minutes := (total % 3600) / 60
	secs := total % 60
	parts := make([]string, 0, 3)
	if hours > 0 {
		parts = append(parts, fmt.Sprintf("%dh", hours))
	}
	if minutes > 0 {
		parts = append(parts, fmt.Sprintf("%dm", minutes))
	}
	if secs > 0 || len(parts) == 0 {
		parts = append(parts, fmt.Sprintf("%ds", secs))
	}
	return strings.Join(parts, " ")
}

// FormatCount renders n with thousands separators.
func FormatCount(n int64) string {
	s := fmt.Sprintf("%d", n)
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	var b strings.Builder
	for i, c := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(c)
	}
	if neg {
		return "-" + b.String()
	}
	return b.String()
}

// ValidateTableName strips everything except letters, digits, underscores and dots from name.
// A result starting with a digit is prefixed with "T_".
func ValidateTableName(name string) (string, error) {
	if name == "" {
		return "", errors.New("table name cannot be empty")
	}
	var b strings.Builder
	for _, c := range name {
		if unicode.IsLetter(c) || unicode.IsDigit(c) || c == '_' || c == '.' {
			b.WriteRune(c)
		}
	}
	sanitized := b.String()
	if sanitized == "" {
		return "", errors.Errorf("table name %q contains no valid characters", name)
	}
	if unicode.IsDigit([]rune(sanitized)[0]) {
		sanitized = "T_" + sanitized
	}
	return sanitized, nil
}
