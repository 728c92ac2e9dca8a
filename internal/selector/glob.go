package selector

import (
	"regexp"
	"strings"

	"github.com/corpuskit/corpus/internal/errors"
)

// Glob is a compiled glob pattern supporting `*` (single segment), `?`
// (single character) and `**` (any number of segments).
type Glob struct {
	pattern  string
	basename bool
	re       *regexp.Regexp
}

// CompileGlob compiles a glob pattern. Patterns without a path separator
// match against the basename only; patterns with a separator match against
// the full relative path.
func CompileGlob(pattern string) (*Glob, error) {
	if pattern == "" {
		return nil, errors.New(errors.ErrCodeInvalidGlob, "empty glob pattern", nil)
	}
	if strings.Contains(pattern, "***") {
		return nil, errors.New(errors.ErrCodeInvalidGlob, "invalid glob pattern: "+pattern, nil).
			WithDetail("pattern", pattern).
			WithSuggestion("use ** for recursive matching or * for a single segment")
	}

	re, err := regexp.Compile(globToRegexp(pattern))
	if err != nil {
		return nil, errors.New(errors.ErrCodeInvalidGlob, "invalid glob pattern: "+pattern, err).
			WithDetail("pattern", pattern)
	}

	return &Glob{
		pattern:  pattern,
		basename: !strings.Contains(pattern, "/"),
		re:       re,
	}, nil
}

// CompileGlobs compiles a list of patterns, failing on the first bad one.
func CompileGlobs(patterns []string) ([]*Glob, error) {
	globs := make([]*Glob, 0, len(patterns))
	for _, p := range patterns {
		g, err := CompileGlob(p)
		if err != nil {
			return nil, err
		}
		globs = append(globs, g)
	}
	return globs, nil
}

// Match reports whether the relative posix path matches the pattern.
// Bare patterns (no separator) are matched against the final path element.
func (g *Glob) Match(relPath string) bool {
	target := relPath
	if g.basename {
		if i := strings.LastIndexByte(relPath, '/'); i >= 0 {
			target = relPath[i+1:]
		}
	}
	return g.re.MatchString(target)
}

// Pattern returns the original pattern text.
func (g *Glob) Pattern() string {
	return g.pattern
}

// globToRegexp translates a glob into an anchored regular expression.
// `**/` matches zero or more leading segments, `**` matches anything,
// `*` matches within a segment, `?` matches one non-separator character.
func globToRegexp(pattern string) string {
	var b strings.Builder
	b.WriteString("^")

	i := 0
	for i < len(pattern) {
		switch {
		case strings.HasPrefix(pattern[i:], "**/"):
			b.WriteString(`(?:.*/)?`)
			i += 3
		case strings.HasPrefix(pattern[i:], "**"):
			b.WriteString(`.*`)
			i += 2
		case pattern[i] == '*':
			b.WriteString(`[^/]*`)
			i++
		case pattern[i] == '?':
			b.WriteString(`[^/]`)
			i++
		default:
			b.WriteString(regexp.QuoteMeta(string(pattern[i])))
			i++
		}
	}

	b.WriteString("$")
	return b.String()
}

// matchAny reports whether any glob in the list matches the path.
func matchAny(globs []*Glob, relPath string) bool {
	for _, g := range globs {
		if g.Match(relPath) {
			return true
		}
	}
	return false
}
