package rawscan_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/wmenjoy/sql-tools/internal/rawscan"
)

func TestFirstMeaningfulToken(t *testing.T) {
	cases := map[string]string{
		"  select * from users":          "SELECT",
		"/* hint */ set @x = 1":          "SET",
		"-- comment\nDELETE FROM users":  "DELETE",
		"   ":                            "",
		"":                               "",
		"(select 1)":                     "SELECT",
		"  UPDATE\tusers SET x = 1":      "UPDATE",
	}
	for in, want := range cases {
		assert.Equal(t, want, rawscan.FirstMeaningfulToken(in), "input: %q", in)
	}
}

func TestUnquotedSemicolons_TrailingTerminatorIsNotStacked(t *testing.T) {
	assert.Empty(t, rawscan.UnquotedSemicolons("SELECT 1;"))
	assert.Empty(t, rawscan.UnquotedSemicolons("SELECT 1;  "))
}

func TestUnquotedSemicolons_StackedStatementDetected(t *testing.T) {
	hits := rawscan.UnquotedSemicolons("SELECT * FROM users; DROP TABLE users--")
	assert.Len(t, hits, 1)
}

func TestUnquotedSemicolons_InsideStringIgnored(t *testing.T) {
	hits := rawscan.UnquotedSemicolons("SELECT * FROM users WHERE note = 'a; b'")
	assert.Empty(t, hits)
}

func TestCommentMarkers_DetectsAllStyles(t *testing.T) {
	hits := rawscan.CommentMarkers("SELECT 1 -- trailing\n", false)
	assert.Len(t, hits, 1)

	hits = rawscan.CommentMarkers("SELECT 1 # trailing", false)
	assert.Len(t, hits, 1)

	hits = rawscan.CommentMarkers("SELECT /* inline */ 1", false)
	assert.Len(t, hits, 1)
}

func TestCommentMarkers_OptimizerHintExemption(t *testing.T) {
	sql := "SELECT /*+ MAX_EXECUTION_TIME(1000) */ 1"
	assert.Empty(t, rawscan.CommentMarkers(sql, true))
	assert.Len(t, rawscan.CommentMarkers(sql, false), 1)
}

func TestCommentMarkers_InsideStringIgnored(t *testing.T) {
	hits := rawscan.CommentMarkers("SELECT * FROM users WHERE note = '-- not a comment'", false)
	assert.Empty(t, hits)
}

func TestScan_DoubledQuoteEscaping(t *testing.T) {
	// 'it''s' is a single-quoted literal containing a literal quote.
	sql := "SELECT 'it''s' FROM dual"
	var sawBareSingleQuoteAfterLiteral bool
	rawscan.Scan(sql, func(tok rawscan.Token) {
		if tok.Rune == 'F' && tok.Before.Bare() {
			sawBareSingleQuoteAfterLiteral = true
		}
	})
	assert.True(t, sawBareSingleQuoteAfterLiteral, "scanner should exit the string before 'FROM'")
}
