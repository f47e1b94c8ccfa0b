package sqltype_test

import (
	"testing"

	"github.com/dbd-project/dbd/internal/sqltype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		in   string
		want sqltype.Descriptor
	}{
		{"VARCHAR(50)", sqltype.Descriptor{Kind: sqltype.Varchar, Length: ptr(50)}},
		{"varchar(50)", sqltype.Descriptor{Kind: sqltype.Varchar, Length: ptr(50)}},
		{"CHAR(2)", sqltype.Descriptor{Kind: sqltype.Char, Length: ptr(2)}},
		{"DECIMAL(13,2)", sqltype.Descriptor{Kind: sqltype.Decimal, Precision: ptr(13), Scale: ptr(2)}},
		{"DECIMAL(13)", sqltype.Descriptor{Kind: sqltype.Decimal, Precision: ptr(13), Scale: ptr(0)}},
		{"TIMESTAMP", sqltype.Descriptor{Kind: sqltype.Timestamp}},
		{"TEXT", sqltype.Descriptor{Kind: sqltype.Text}},
		{"INTEGER", sqltype.Descriptor{Kind: sqltype.Integer}},
	}
	for _, tt := range tests {
		got, err := sqltype.Parse(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestParseRejectsUnknownKind(t *testing.T) {
	_, err := sqltype.Parse("FROBNICATE(1)")
	require.Error(t, err)
}

func TestParseRejectsVarcharWithoutLength(t *testing.T) {
	_, err := sqltype.Parse("VARCHAR")
	require.Error(t, err)
}

func TestRender(t *testing.T) {
	d, err := sqltype.Parse("VARCHAR(50)")
	require.NoError(t, err)
	assert.Equal(t, "VARCHAR(50)", sqltype.Render(d, sqltype.DialectPostgres))
	assert.Equal(t, "STRING", sqltype.Render(d, sqltype.DialectBigQuery))

	dec, err := sqltype.Parse("DECIMAL(13,2)")
	require.NoError(t, err)
	assert.Equal(t, "FLOAT", sqltype.Render(dec, sqltype.DialectBigQuery))

	ts, err := sqltype.Parse("TIMESTAMP")
	require.NoError(t, err)
	assert.Equal(t, "TIMESTAMP", sqltype.Render(ts, sqltype.DialectBigQuery))
}

func ptr(i int) *int { return &i }
