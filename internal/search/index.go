// Package search ranks short catalog entries (vaccine name, brand, type)
// against free-text queries typed by vets and owners.
//
// An index is built once per query set and never mutated, so it can be
// shared between goroutines. Text is lower-cased and accent-folded before
// tokenizing, so "Calicivírus" and "calicivirus" are the same word.
//
// A document's score is the Jaccard similarity of its word set with the
// query's. A query word counts as a hit when the document contains it, or
// when it is a prefix (of at least DefaultMinPrefix runes) of some document word:
// "rab" finds "Rabies". Ties go to the shorter entry, then to the lower id.
package search

import (
	"cmp"
	"regexp"
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// DefaultMinPrefix is the shortest query word that may prefix-match.
const DefaultMinPrefix = 3

// defaultK is used when TopK is asked for a non-positive count.
const defaultK = 10

type Doc struct {
	ID   string
	Text string
}

type Result struct {
	ID    string
	Score float64
}

// Index answers ranked queries over a fixed document set.
type Index interface {
	TopK(query string, k int) []Result
}

type Option func(*index)

// WithMinPrefixRunes changes the prefix-match threshold. Zero turns prefix
// matching off; negative values are ignored.
func WithMinPrefixRunes(n int) Option {
	return func(ix *index) {
		if n >= 0 {
			ix.minPrefix = n
		}
	}
}

// WithStopwords drops the given words from both documents and queries.
func WithStopwords(words ...string) Option {
	return func(ix *index) {
		for _, w := range words {
			if w = fold(strings.TrimSpace(w)); w == "" {
				continue
			}
			if ix.stop == nil {
				ix.stop = make(wordSet)
			}
			ix.stop[w] = struct{}{}
		}
	}
}

type wordSet map[string]struct{}

type entry struct {
	id    string
	words wordSet
	size  int // rune length of the source text, for tie-breaks
}

type index struct {
	minPrefix int
	stop      wordSet
	entries   []entry
}

// NewIndex indexes docs. Entries with no words left after folding and stop
// word removal are not searchable and are dropped.
func NewIndex(docs []Doc, opts ...Option) Index {
	ix := &index{minPrefix: DefaultMinPrefix}
	for _, o := range opts {
		o(ix)
	}
	ix.entries = make([]entry, 0, len(docs))
	for _, d := range docs {
		if w := ix.words(d.Text); len(w) > 0 {
			ix.entries = append(ix.entries, entry{id: d.ID, words: w, size: utf8.RuneCountInString(d.Text)})
		}
	}
	return ix
}

// TopK returns at most k matches, best first, or nil when nothing matches.
func (ix *index) TopK(query string, k int) []Result {
	q := ix.words(query)
	if len(q) == 0 || len(ix.entries) == 0 {
		return nil
	}
	if k <= 0 {
		k = defaultK
	}

	type hit struct {
		Result
		size int
	}
	var hits []hit
	for _, e := range ix.entries {
		n := ix.matches(q, e.words)
		if n == 0 {
			continue
		}
		jaccard := float64(n) / float64(len(q)+len(e.words)-n)
		hits = append(hits, hit{Result: Result{ID: e.id, Score: jaccard}, size: e.size})
	}

	slices.SortFunc(hits, func(a, b hit) int {
		return cmp.Or(
			cmp.Compare(b.Score, a.Score),
			cmp.Compare(a.size, b.size),
			strings.Compare(a.ID, b.ID),
		)
	})

	var out []Result
	for _, h := range hits[:min(k, len(hits))] {
		out = append(out, h.Result)
	}
	return out
}

// matches counts query words found in doc, exactly or by prefix.
func (ix *index) matches(q, doc wordSet) int {
	n := 0
	for w := range q {
		if _, ok := doc[w]; ok || ix.prefixOfAny(w, doc) {
			n++
		}
	}
	return n
}

func (ix *index) prefixOfAny(w string, doc wordSet) bool {
	if ix.minPrefix == 0 || utf8.RuneCountInString(w) < ix.minPrefix {
		return false
	}
	for dw := range doc {
		if strings.HasPrefix(dw, w) {
			return true
		}
	}
	return false
}

var wordRE = regexp.MustCompile(`\p{L}+\p{N}*|\p{N}+`)

func (ix *index) words(s string) wordSet {
	var set wordSet
	for _, w := range wordRE.FindAllString(fold(s), -1) {
		if _, skip := ix.stop[w]; skip {
			continue
		}
		if set == nil {
			set = make(wordSet)
		}
		set[w] = struct{}{}
	}
	return set
}

// fold lower-cases s and strips combining marks ("Rábies" -> "rabies").
func fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	if out, _, err := transform.String(t, s); err == nil {
		s = out
	}
	return strings.ToLower(s)
}
