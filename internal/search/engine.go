// Package search implements ranked lexical search over a collection. Every
// query re-reads the collection through its source, so results always
// reflect the content on disk.
package search

import (
	"context"
	"log/slog"
	"sort"
	"strconv"
	"strings"

	"github.com/corpuskit/corpus/internal/errors"
	"github.com/corpuskit/corpus/internal/source"
)

const (
	// DefaultTopK is the result cap applied when the caller does not set one.
	DefaultTopK = 50
	// MaxTopK bounds the result cap; unbounded result sets are disallowed.
	MaxTopK = 500

	// Scoring tiers. A full-query substring match outranks any combination
	// of partial matches; distinct-term count dominates raw occurrence
	// count, and occurrence count dominates the proximity bonus ordering
	// within a tier.
	fullQueryScore    = 1_000_000
	distinctTermScore = 10_000
	occurrenceScore   = 100
	proximityBonus    = 1_000

	// proximityWindow is the maximum span, in bytes, between the first
	// occurrences of two different terms for the proximity bonus to apply.
	proximityWindow = 40
)

// Result is one ranked line.
type Result struct {
	Path  string `json:"path"`
	Line  int    `json:"line"`
	Text  string `json:"text"`
	Score int    `json:"score"`
}

// Options tunes a single query.
type Options struct {
	// TopK caps the result count. Zero means DefaultTopK; values above
	// MaxTopK are rejected.
	TopK int
	// CaseSensitive disables case folding of query and content.
	CaseSensitive bool
}

// Engine scores lines against tokenized queries.
type Engine struct {
	logger *slog.Logger
}

// NewEngine creates a search engine.
func NewEngine() *Engine {
	return &Engine{logger: slog.Default()}
}

// Search runs a ranked query over every file in the source. An empty query
// returns an empty result set without error. Ordering is fully
// deterministic: score descending, then path, then line number.
func (e *Engine) Search(ctx context.Context, src source.Source, query string, opts Options) ([]Result, error) {
	topK := opts.TopK
	if topK == 0 {
		topK = DefaultTopK
	}
	if topK < 0 || topK > MaxTopK {
		return nil, errors.Validation("top_k out of range", nil).
			WithDetail("top_k", strconv.Itoa(topK)).
			WithSuggestion("top_k must be between 1 and 500")
	}

	terms := Tokenize(query, opts.CaseSensitive)
	if len(terms) == 0 {
		return []Result{}, nil
	}
	fullQuery := strings.TrimSpace(query)
	if !opts.CaseSensitive {
		fullQuery = strings.ToLower(fullQuery)
	}

	paths, err := src.Paths(ctx)
	if err != nil {
		return nil, err
	}

	var results []Result
	for _, path := range paths {
		select {
		case <-ctx.Done():
			return nil, errors.Timeout("search canceled", ctx.Err())
		default:
		}

		content, err := src.Content(ctx, path)
		if err != nil {
			return nil, err
		}

		for i, line := range strings.Split(content, "\n") {
			score := scoreLine(line, fullQuery, terms, opts.CaseSensitive)
			if score == 0 {
				continue
			}
			results = append(results, Result{
				Path:  path,
				Line:  i + 1,
				Text:  line,
				Score: score,
			})
		}
	}

	sort.Slice(results, func(i, j int) bool {
		a, b := results[i], results[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if a.Path != b.Path {
			return a.Path < b.Path
		}
		return a.Line < b.Line
	})

	if len(results) > topK {
		results = results[:topK]
	}

	e.logger.Debug("search complete",
		slog.String("collection", src.Collection().ID),
		slog.String("query", query),
		slog.Int("results", len(results)))

	if results == nil {
		results = []Result{}
	}
	return results, nil
}

// scoreLine computes the rank score for one line, zero when no term matches.
func scoreLine(line, fullQuery string, terms []string, caseSensitive bool) int {
	cmp := line
	if !caseSensitive {
		cmp = strings.ToLower(line)
	}

	score := 0
	distinct := 0
	first := make([]int, 0, len(terms))
	for _, term := range terms {
		idx := strings.Index(cmp, term)
		if idx < 0 {
			continue
		}
		distinct++
		first = append(first, idx)
		score += occurrenceScore * strings.Count(cmp, term)
	}
	if distinct == 0 {
		return 0
	}
	score += distinctTermScore * distinct

	if distinct > 1 {
		lo, hi := first[0], first[0]
		for _, idx := range first[1:] {
			if idx < lo {
				lo = idx
			}
			if idx > hi {
				hi = idx
			}
		}
		if hi-lo <= proximityWindow {
			score += proximityBonus
		}
	}

	if fullQuery != "" && strings.Contains(cmp, fullQuery) {
		score += fullQueryScore
	}
	return score
}
