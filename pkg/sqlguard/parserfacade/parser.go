// Package parserfacade isolates the rest of the validation core from the
// concrete SQL grammar library. It parses raw SQL into a tidb AST exactly
// once per unique normalised text, backed by a bounded LRU cache, and
// absorbs the grammar library's own quirks (its *parser.Parser is not
// thread-safe, so Facade serialises calls into it with a mutex).
package parserfacade

import (
	"log/slog"
	"strings"
	"sync"
	"unicode"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/pingcap/tidb/parser"
	"github.com/pingcap/tidb/parser/ast"
	_ "github.com/pingcap/tidb/parser/test_driver" // registers literal expression evaluation used by the parser

	"github.com/wmenjoy/sql-tools/pkg/logging"
)

// cacheEntry is a tagged union: exactly one of Stmt or Err is set, or
// both are nil to represent "not yet attempted" (never stored as such —
// the cache only ever stores completed attempts).
type cacheEntry struct {
	Stmt ast.StmtNode
	Err  error
}

// Facade parses SQL text into an AST, caching both successes and
// failures so unparseable SQL is never re-attempted.
type Facade struct {
	mu     sync.Mutex // guards parser, which tidb documents as not thread-safe
	parser *parser.Parser
	cache  *lru.Cache[string, cacheEntry]
	strict bool
	logger *slog.Logger
}

// Option configures a Facade at construction.
type Option func(*Facade)

// WithStrictMode records whether the Facade was built for strict or
// lenient (the default) parsing. Parse itself behaves the same in both
// modes — it returns the grammar error with ok=false — and the caller
// (the sqlguard validator) decides whether that error is fatal.
func WithStrictMode(strict bool) Option {
	return func(f *Facade) { f.strict = strict }
}

// WithLogger overrides the operational logger (default: discard), used
// to report cache evictions at debug level.
func WithLogger(logger *slog.Logger) Option {
	return func(f *Facade) { f.logger = logger }
}

// New builds a Facade with the given parse-cache capacity. A capacity of
// 0 disables caching (every call re-parses).
func New(capacity int, opts ...Option) (*Facade, error) {
	f := &Facade{parser: parser.New(), logger: logging.Discard()}
	for _, opt := range opts {
		opt(f)
	}
	if capacity > 0 {
		cache, err := lru.New[string, cacheEntry](capacity)
		if err != nil {
			return nil, err
		}
		f.cache = cache
	}
	return f, nil
}

// Parse converts sql into an AST, consulting the cache first. ok is false
// only when the underlying grammar library failed (a ParseFailure, in the
// caller's terms); err carries the grammar's diagnostic, which is always
// present in that case regardless of strict/lenient mode — the mode only
// changes what the caller built on top of Facade does with it.
func (f *Facade) Parse(sql string) (stmt ast.StmtNode, ok bool, err error) {
	key := Normalize(sql)

	if f.cache != nil {
		if entry, hit := f.cache.Get(key); hit {
			return entry.Stmt, entry.Err == nil, entry.Err
		}
	}

	stmt, err = f.parseOnce(sql)

	if f.cache != nil {
		f.cache.Add(key, cacheEntry{Stmt: stmt, Err: err})
	}

	return stmt, err == nil, err
}

func (f *Facade) parseOnce(sql string) (ast.StmtNode, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.parser.ParseOneStmt(sql, "", "")
}

// Evict drops one cached entry by its normalised key.
func (f *Facade) Evict(sql string) {
	if f.cache != nil {
		key := Normalize(sql)
		if f.cache.Remove(key) {
			f.logger.Debug("sqlguard: parse cache entry evicted", "key", key)
		}
	}
}

// Clear drops every cached entry.
func (f *Facade) Clear() {
	if f.cache != nil {
		f.logger.Debug("sqlguard: parse cache cleared", "entries", f.cache.Len())
		f.cache.Purge()
	}
}

// Len reports the number of entries currently cached.
func (f *Facade) Len() int {
	if f.cache == nil {
		return 0
	}
	return f.cache.Len()
}

// Normalize implements the cache-keying algorithm from spec §4.1: skip
// over string literals and comments verbatim, collapse whitespace runs
// outside them to a single space, upper-case the first keyword token, and
// trim trailing ';' runs. The stored AST is always parsed from the
// original, non-normalised text — normalisation is for cache keying only.
func Normalize(sql string) string {
	var (
		out           []rune
		inSingle      bool
		inDouble      bool
		inBack        bool
		inLineComment bool
		inBlock       bool
		lastWasSpace  bool
	)
	runes := []rune(sql)
	for i := 0; i < len(runes); i++ {
		r := runes[i]

		switch {
		case inLineComment:
			out = append(out, r)
			if r == '\n' {
				inLineComment = false
			}
			continue
		case inBlock:
			out = append(out, r)
			if r == '*' && i+1 < len(runes) && runes[i+1] == '/' {
				out = append(out, runes[i+1])
				i++
				inBlock = false
			}
			continue
		case inSingle:
			out = append(out, r)
			if r == '\'' {
				inSingle = false
			}
			continue
		case inDouble:
			out = append(out, r)
			if r == '"' {
				inDouble = false
			}
			continue
		case inBack:
			out = append(out, r)
			if r == '`' {
				inBack = false
			}
			continue
		}

		switch r {
		case '\'':
			inSingle = true
			out = append(out, r)
			lastWasSpace = false
			continue
		case '"':
			inDouble = true
			out = append(out, r)
			lastWasSpace = false
			continue
		case '`':
			inBack = true
			out = append(out, r)
			lastWasSpace = false
			continue
		case '-':
			if i+1 < len(runes) && runes[i+1] == '-' {
				inLineComment = true
				out = append(out, r)
				continue
			}
		case '/':
			if i+1 < len(runes) && runes[i+1] == '*' {
				inBlock = true
				out = append(out, r)
				continue
			}
		}

		if unicode.IsSpace(r) {
			if lastWasSpace {
				continue
			}
			out = append(out, ' ')
			lastWasSpace = true
			continue
		}

		out = append(out, r)
		lastWasSpace = false
	}

	s := strings.TrimSpace(string(out))
	s = strings.TrimRight(s, "; \t\n")
	return upperFirstKeyword(s)
}

func upperFirstKeyword(s string) string {
	i := 0
	for i < len(s) && !unicode.IsSpace(rune(s[i])) {
		i++
	}
	return strings.ToUpper(s[:i]) + s[i:]
}
