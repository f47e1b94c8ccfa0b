package sqlanalyzer_test

import (
	"testing"

	"github.com/dbd-project/dbd/internal/sqlanalyzer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStripComments(t *testing.T) {
	in := "SELECT '--x' FROM t -- tail\n/*block*/SELECT 1;"
	want := "SELECT '--x' FROM t\nSELECT 1;"
	assert.Equal(t, want, sqlanalyzer.StripComments(in))
}

func TestStripCommentsCollapsesBlankRuns(t *testing.T) {
	in := "SELECT 1;\n\n\n\nSELECT 2;"
	want := "SELECT 1;\nSELECT 2;"
	assert.Equal(t, want, sqlanalyzer.StripComments(in))
}

func TestTablesExcludesCTENames(t *testing.T) {
	sql := "with c as (select * from T) select * from c"
	assert.Equal(t, []string{"T"}, sqlanalyzer.Tables(sql))
}

func TestTablesJoinsAndAliases(t *testing.T) {
	sql := `select s.name, a.sq_miles, p.count
from state s
join area a on a.state_abbrev = s.abbrev
join population p on p.state_abbrev = s.abbrev`
	assert.Equal(t, []string{"state", "area", "population"}, sqlanalyzer.Tables(sql))
}

func TestTablesDedupesAndPreservesOrder(t *testing.T) {
	sql := "select * from b, a, b"
	assert.Equal(t, []string{"b", "a"}, sqlanalyzer.Tables(sql))
}

func TestTablesSkipsSubqueryButFindsItsOwnFrom(t *testing.T) {
	sql := "select * from (select * from inner_t) x"
	assert.Equal(t, []string{"inner_t"}, sqlanalyzer.Tables(sql))
}

func TestExtractForeignKeyTables(t *testing.T) {
	tables, err := sqlanalyzer.ExtractForeignKeyTables([]string{"state.abbrev", "public.state.abbrev"})
	require.NoError(t, err)
	assert.Equal(t, []string{"state", "public"}, tables)
}

func TestExtractForeignKeyTablesRejectsUnqualified(t *testing.T) {
	_, err := sqlanalyzer.ExtractForeignKeyTables([]string{"abbrev"})
	require.Error(t, err)
}
