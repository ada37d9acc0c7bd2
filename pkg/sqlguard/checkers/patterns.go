package checkers

import (
	"regexp"
	"sync"
)

var extraPatternCache sync.Map // pattern -> *regexp.Regexp

// compileWildcardLike compiles a user-supplied extra pattern as a
// case-insensitive regular expression. Unlike the table/field wildcard
// matcher in sqlguard.MatchesAny (which implements the specific
// "prefix_*" segment semantics), DummyPredicate's extraPatterns are
// free-form regexes matched against the restored predicate text, since a
// dummy-predicate shape ("1=1", "'x' LIKE '%'", ...) doesn't fit a
// single-wildcard identifier pattern.
func compileWildcardLike(pattern string) *regexp.Regexp {
	if v, ok := extraPatternCache.Load(pattern); ok {
		return v.(*regexp.Regexp)
	}
	re, err := regexp.Compile("(?i)" + pattern)
	if err != nil {
		re = regexp.MustCompile("$^") // never matches
	}
	extraPatternCache.Store(pattern, re)
	return re
}
