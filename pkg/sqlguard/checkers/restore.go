package checkers

import (
	"bytes"
	"strings"

	"github.com/pingcap/tidb/parser/ast"
	"github.com/pingcap/tidb/parser/format"
)

// restore renders an AST node back to SQL text, used to quote offending
// fragments in violation messages and to compare two expressions for
// textual equality (the tautology check in DummyPredicate).
func restore(n ast.Node) string {
	if n == nil {
		return ""
	}
	var buf bytes.Buffer
	ctx := format.NewRestoreCtx(format.DefaultRestoreFlags, &buf)
	if err := n.Restore(ctx); err != nil {
		return ""
	}
	return buf.String()
}

func upperTrim(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}
