// Package plan walks SQL statement text to answer the two questions the
// time-filter transform needs (spec §4.8): which table a query scans, and
// whether a filter already constrains the partition column.
package plan

import (
	"strings"

	"github.com/antlr4-go/antlr/v4"
	"github.com/libsql/sqlite-antlr4-parser/sqliteparser"
)

// TableScanVisitor tokenizes a SQL statement once and answers table-scan
// and filter-presence questions against the resulting token stream. A
// token-level pass is enough for both questions and avoids building a full
// parse tree for a read-only inspection.
type TableScanVisitor struct {
	tokens []antlr.Token
}

// NewTableScanVisitor lexes sql using the SQLite grammar.
func NewTableScanVisitor(sql string) *TableScanVisitor {
	lexer := sqliteparser.NewSQLiteLexer(antlr.NewInputStream(sql))
	stream := antlr.NewCommonTokenStream(lexer, antlr.TokenDefaultChannel)
	stream.Fill()
	// Keep only default-channel tokens so whitespace and comments, which the
	// lexer emits on the hidden channel, never sit between FROM and its table.
	var tokens []antlr.Token
	for _, tok := range stream.GetAllTokens() {
		if tok.GetChannel() == antlr.TokenDefaultChannel {
			tokens = append(tokens, tok)
		}
	}
	return &TableScanVisitor{tokens: tokens}
}

// FirstTable returns the identifier immediately following the statement's
// first FROM keyword — its primary table reference — used by
// Transformer.FinalPlan to name the filtered scan (spec §4.8).
func (v *TableScanVisitor) FirstTable() (string, bool) {
	for i, tok := range v.tokens {
		if strings.EqualFold(tok.GetText(), "FROM") && i+1 < len(v.tokens) {
			return unquoteIdent(v.tokens[i+1].GetText()), true
		}
	}
	return "", false
}

// HasColumnFilter reports whether column appears anywhere after the
// statement's WHERE keyword, a conservative stand-in for "an existing
// filter already references the time-partition column" (spec §4.8 step 1).
// A false positive (the column appears after WHERE without bounding time)
// leaves the plan without the synthesized time bound; a false negative
// adds the synthesized bound on top of an existing one.
func (v *TableScanVisitor) HasColumnFilter(column string) bool {
	inWhere := false
	for _, tok := range v.tokens {
		text := tok.GetText()
		if strings.EqualFold(text, "WHERE") {
			inWhere = true
			continue
		}
		if inWhere && strings.EqualFold(unquoteIdent(text), column) {
			return true
		}
	}
	return false
}

func unquoteIdent(s string) string {
	return strings.Trim(s, `"'`+"`")
}
