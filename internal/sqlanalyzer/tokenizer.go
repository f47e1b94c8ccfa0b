package sqlanalyzer

import "strings"

type tokenKind int

const (
	tokIdent tokenKind = iota
	tokString
	tokPunct
)

type token struct {
	kind tokenKind
	text string
}

// tokenize splits SQL text (already comment-free) into identifier,
// quoted-string, and single-character punctuation tokens. Dotted
// identifiers ("schema.table") are kept as one token so table-name
// extraction doesn't need to special-case qualification.
//
// This is a lightweight scanner, not a SQL grammar: it is grounded on
// the teacher's parser/token.go keyword-scanning approach, scoped down
// to what table-name extraction needs (see DESIGN.md).
func tokenize(sql string) []token {
	var toks []token
	r := []rune(sql)
	n := len(r)
	i := 0
	for i < n {
		c := r[i]
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			i++
		case c == '\'' || c == '"' || c == '`':
			quote := c
			j := i + 1
			for j < n {
				if r[j] == quote {
					if j+1 < n && r[j+1] == quote {
						j += 2
						continue
					}
					break
				}
				j++
			}
			end := j
			if end < n {
				end++
			}
			toks = append(toks, token{tokString, string(r[i:end])})
			i = end
		case isIdentStart(c):
			j := i + 1
			for j < n && (isIdentPart(r[j]) || (r[j] == '.' && j+1 < n && isIdentStart(r[j+1]))) {
				j++
			}
			toks = append(toks, token{tokIdent, string(r[i:j])})
			i = j
		default:
			toks = append(toks, token{tokPunct, string(c)})
			i++
		}
	}
	return toks
}

func isIdentStart(c rune) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentPart(c rune) bool {
	return isIdentStart(c) || (c >= '0' && c <= '9')
}

func (t token) isKeyword(kw string) bool {
	return t.kind == tokIdent && strings.EqualFold(t.text, kw)
}
