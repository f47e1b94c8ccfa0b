package loader_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/dbd-project/dbd/internal/loader"
	"github.com/dbd-project/dbd/internal/sqltype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCoerceValueInteger(t *testing.T) {
	v, err := loader.CoerceValue("42", sqltype.Descriptor{Kind: sqltype.Integer}, sqltype.DialectPostgres)
	require.NoError(t, err)
	assert.Equal(t, int64(42), v)
}

func TestCoerceValueBooleanMySQLIsIntegerEncoded(t *testing.T) {
	v, err := loader.CoerceValue("true", sqltype.Descriptor{Kind: sqltype.Boolean}, sqltype.DialectMySQL)
	require.NoError(t, err)
	assert.Equal(t, int64(1), v)

	v, err = loader.CoerceValue("false", sqltype.Descriptor{Kind: sqltype.Boolean}, sqltype.DialectPostgres)
	require.NoError(t, err)
	assert.Equal(t, false, v)
}

func TestCoerceValueDecimalRespectsScale(t *testing.T) {
	scale := 2
	v, err := loader.CoerceValue("19.5", sqltype.Descriptor{Kind: sqltype.Decimal, Scale: &scale}, sqltype.DialectPostgres)
	require.NoError(t, err)
	assert.Equal(t, "19.50", v)
}

func TestCoerceValueRejectsMalformedInteger(t *testing.T) {
	_, err := loader.CoerceValue("not-a-number", sqltype.Descriptor{Kind: sqltype.Integer}, sqltype.DialectPostgres)
	require.Error(t, err)
}

func TestCoerceValueIntegerToleratesFloatStyleString(t *testing.T) {
	v, err := loader.CoerceValue("3.0", sqltype.Descriptor{Kind: sqltype.Integer}, sqltype.DialectPostgres)
	require.NoError(t, err)
	assert.Equal(t, int64(3), v)
}

func TestCoerceValueIntegerEmptyAndNaNBecomeNull(t *testing.T) {
	v, err := loader.CoerceValue("", sqltype.Descriptor{Kind: sqltype.Integer}, sqltype.DialectPostgres)
	require.NoError(t, err)
	assert.Nil(t, v)

	v, err = loader.CoerceValue("NaN", sqltype.Descriptor{Kind: sqltype.Integer}, sqltype.DialectPostgres)
	require.NoError(t, err)
	assert.Nil(t, v)
}

func TestCoerceValueFloatEmptyAndNaNBecomeNull(t *testing.T) {
	v, err := loader.CoerceValue("", sqltype.Descriptor{Kind: sqltype.Float}, sqltype.DialectPostgres)
	require.NoError(t, err)
	assert.Nil(t, v)

	v, err = loader.CoerceValue("NaN", sqltype.Descriptor{Kind: sqltype.Float}, sqltype.DialectPostgres)
	require.NoError(t, err)
	assert.Nil(t, v)
}

func TestCoerceValueBooleanNeverErrorsOnUnrecognizedInput(t *testing.T) {
	v, err := loader.CoerceValue("maybe", sqltype.Descriptor{Kind: sqltype.Boolean}, sqltype.DialectPostgres)
	require.NoError(t, err)
	assert.Equal(t, false, v)
}

func TestCoerceValueBooleanNumericFallsBackToNonZeroCheck(t *testing.T) {
	v, err := loader.CoerceValue("2", sqltype.Descriptor{Kind: sqltype.Boolean}, sqltype.DialectPostgres)
	require.NoError(t, err)
	assert.Equal(t, true, v)

	v, err = loader.CoerceValue("0", sqltype.Descriptor{Kind: sqltype.Boolean}, sqltype.DialectPostgres)
	require.NoError(t, err)
	assert.Equal(t, false, v)
}

func TestCoerceValueTemporalUnparseableBecomesNull(t *testing.T) {
	v, err := loader.CoerceValue("not-a-date", sqltype.Descriptor{Kind: sqltype.Date}, sqltype.DialectPostgres)
	require.NoError(t, err)
	assert.Nil(t, v)
}

func TestCoerceValueDateReformatsForBigQuery(t *testing.T) {
	v, err := loader.CoerceValue("2024-01-15", sqltype.Descriptor{Kind: sqltype.Date}, sqltype.DialectBigQuery)
	require.NoError(t, err)
	assert.Equal(t, "2024-01-15", v)
}

func TestReadDataFileCSV(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sample.csv")
	require.NoError(t, os.WriteFile(path, []byte("id,name,active\n1,Ada,true\n2,Grace,false\n"), 0o644))

	records, err := loader.ReadDataFile(path)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "1", records[0]["id"])
	assert.Equal(t, "Ada", records[0]["name"])
	assert.Equal(t, "Grace", records[1]["name"])
}

func TestReadDataFileJSON(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sample.json")
	require.NoError(t, os.WriteFile(path, []byte(`[{"id":1,"name":"Ada"},{"id":2,"name":"Grace"}]`), 0o644))

	records, err := loader.ReadDataFile(path)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "Ada", records[0]["name"])
}

func TestReadDataFileRejectsUnsupportedExtension(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sample.bin")
	require.NoError(t, os.WriteFile(path, []byte("nope"), 0o644))

	_, err := loader.ReadDataFile(path)
	require.Error(t, err)
}
