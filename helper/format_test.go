package helper

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatBytes(t *testing.T) {
	assert.Equal(t, "512.0 B", FormatBytes(512))
	assert.Equal(t, "1.5 KB", FormatBytes(1536))
	assert.Equal(t, "2.0 MB", FormatBytes(2*1024*1024))
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "0s", FormatDuration(0))
	assert.Equal(t, "45s", FormatDuration(45.9))
	assert.Equal(t, "1m", FormatDuration(60))
	assert.Equal(t, "2h 30m 15s", FormatDuration(9015))
}

func TestFormatCount(t *testing.T) {
	assert.Equal(t, "0", FormatCount(0))
	assert.Equal(t, "999", FormatCount(999))
	assert.Equal(t, "1,000", FormatCount(1000))
	assert.Equal(t, "-1,234,567", FormatCount(-1234567))
}

func TestValidateTableName(t *testing.T) {
	name, err := ValidateTableName("dbo.my-table!")
	require.NoError(t, err)
	assert.Equal(t, "dbo.mytable", name)

	name, err = ValidateTableName("2024_sales")
	require.NoError(t, err)
	assert.Equal(t, "T_2024_sales", name)

	_, err = ValidateTableName("")
	assert.Error(t, err)
	_, err = ValidateTableName("$$$")
	assert.Error(t, err)
}
