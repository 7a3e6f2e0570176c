// Package search builds full-text match expressions from user input.
package search

import (
	"strings"
)

// MatchExpression converts a free-text phrase into an FTS5 MATCH expression:
// whitespace separated tokens, each stripped of double quotes and leading
// '#', quoted and prefix-wildcarded, joined with AND. The boolean is false
// when the phrase has no usable token.
//
//	"buy #milk" -> "buy"* AND "milk"*
func MatchExpression(phrase string) (string, bool) {
	var terms []string
	for _, tok := range strings.Fields(phrase) {
		tok = strings.TrimSpace(strings.ReplaceAll(tok, `"`, ""))
		tok = strings.TrimLeft(tok, "#")
		if tok == "" {
			continue
		}
		terms = append(terms, `"`+tok+`"*`)
	}
	if len(terms) == 0 {
		return "", false
	}
	return strings.Join(terms, " AND "), true
}
