// Package sqlanalyzer extracts referenced tables from SELECT statements
// and strips SQL comments, per spec.md §4.2.
//
// Grounded on original_source/dbd/utils/sql_parser.py
// (remove_sql_comments's quote-vs-comment alternation,
// extract_foreign_key_tables's dotted-segment split) and the teacher's
// schema/ddl_ordering.go recursive table-dependency walk, adapted from
// walking a parsed AST down to a token scan (see DESIGN.md: the
// vitess-derived grammar behind parser/sqldef.go isn't reproducible from
// the retrieval pack).
package sqlanalyzer

import (
	"regexp"
	"strings"

	"github.com/dbd-project/dbd/internal/dbderrors"
)

var commentPattern = regexp.MustCompile(`(?s)("(?:[^"\\]|\\.)*"|'(?:[^'\\]|\\.)*')|(/\*.*?\*/|[ \t]*--[^\r\n]*)`)

var blankRuns = regexp.MustCompile(`\n{2,}`)

// StripComments removes "-- line" and "/* block */" comments, preserving
// comment-looking substrings inside quoted string literals byte-for-byte.
// Spaces and tabs just before a "--" comment are removed with it.
// Runs of blank lines are collapsed to one, and the result is trimmed.
func StripComments(sql string) string {
	replaced := commentPattern.ReplaceAllStringFunc(sql, func(m string) string {
		sub := commentPattern.FindStringSubmatch(m)
		if sub[1] != "" {
			return sub[1]
		}
		return ""
	})
	replaced = blankRuns.ReplaceAllString(replaced, "\n")
	return strings.TrimSpace(replaced)
}

// stopwords end a FROM/JOIN table-reference list.
var stopwords = map[string]bool{
	"where": true, "group": true, "order": true, "having": true,
	"window": true, "limit": true, "union": true, "on": true, "using": true,
	"join": true, "left": true, "right": true, "inner": true, "outer": true,
	"cross": true, "full": true, "natural": true, "lateral": true, "as": true,
	"fetch": true, "for": true,
}

// Tables extracts every table referenced by sql's SELECT, in FROM/JOIN
// clauses including those nested in subqueries, excluding CTE names
// introduced by a WITH clause. The result has no duplicates and
// preserves first-seen order.
func Tables(sql string) []string {
	toks := tokenize(sql)
	cte := collectCTENames(toks)

	var result []string
	seen := map[string]bool{}
	add := func(name string) {
		if cte[strings.ToLower(name)] {
			return
		}
		if seen[name] {
			return
		}
		seen[name] = true
		result = append(result, name)
	}

	for i := 0; i < len(toks); i++ {
		if !(toks[i].isKeyword("from") || toks[i].isKeyword("join")) {
			continue
		}
		consumeTableRefs(toks, i+1, add)
	}
	return result
}

// consumeTableRefs reads one or more comma-separated table references
// starting at idx (right after a FROM/JOIN keyword), calling add for each
// bare table name found (skipping subqueries, which begin with "(" and
// are left for the scan loop in Tables to pick up their own FROM/JOIN).
func consumeTableRefs(toks []token, idx int, add func(string)) {
	for idx < len(toks) {
		t := toks[idx]
		if t.kind == tokPunct && t.text == "(" {
			// Subquery or function call in the FROM list; its own FROM/JOIN
			// tokens are still visited by the outer scan, so just stop
			// consuming this table-ref list here.
			return
		}
		if t.kind != tokIdent || stopwords[strings.ToLower(t.text)] {
			return
		}
		add(t.text)
		idx++
		// Skip an optional alias (bare identifier, or AS identifier).
		if idx < len(toks) && toks[idx].isKeyword("as") {
			idx++
		}
		if idx < len(toks) && toks[idx].kind == tokIdent && !stopwords[strings.ToLower(toks[idx].text)] {
			idx++
		}
		if idx < len(toks) && toks[idx].kind == tokPunct && toks[idx].text == "," {
			idx++
			continue
		}
		return
	}
}

// collectCTENames returns the lowercase names introduced by any WITH
// clause(s) in sql, so Tables can exclude CTE-local references.
func collectCTENames(toks []token) map[string]bool {
	names := map[string]bool{}
	for i := 0; i < len(toks); i++ {
		if !toks[i].isKeyword("with") {
			continue
		}
		i++
		if i < len(toks) && toks[i].isKeyword("recursive") {
			i++
		}
		for i < len(toks) {
			if toks[i].kind != tokIdent {
				break
			}
			name := toks[i].text
			i++
			if i < len(toks) && toks[i].isKeyword("as") {
				i++
			}
			if !(i < len(toks) && toks[i].kind == tokPunct && toks[i].text == "(") {
				break
			}
			names[strings.ToLower(name)] = true
			i = skipParens(toks, i)
			if i < len(toks) && toks[i].kind == tokPunct && toks[i].text == "," {
				i++
				continue
			}
			break
		}
	}
	return names
}

// skipParens expects toks[i] == "(" and returns the index just past its
// matching closing ")".
func skipParens(toks []token, i int) int {
	depth := 0
	for ; i < len(toks); i++ {
		if toks[i].kind == tokPunct && toks[i].text == "(" {
			depth++
		} else if toks[i].kind == tokPunct && toks[i].text == ")" {
			depth--
			if depth == 0 {
				return i + 1
			}
		}
	}
	return i
}

// ExtractForeignKeyTables splits each "a.b[.c]" foreign-key reference on
// "." and returns the leading table segment of each. Fails with
// InvalidForeignKey if any entry has fewer than two dotted parts.
func ExtractForeignKeyTables(refs []string) ([]string, error) {
	var tables []string
	for _, r := range refs {
		parts := strings.Split(r, ".")
		if len(parts) < 2 {
			return nil, dbderrors.New(dbderrors.KindInvalidFK,
				"invalid foreign key format (not <table>.<column>): "+r)
		}
		tables = append(tables, parts[0])
	}
	return tables, nil
}
