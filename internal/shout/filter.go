package shout

import (
	"unicode"

	goahocorasick "github.com/anknown/ahocorasick"
)

// DefaultDenylist is the built-in set of rejected terms. Matching is
// case-insensitive, leet-normalized, and whole-word only: a term embedded
// inside a longer unrelated word does not trigger rejection.
var DefaultDenylist = []string{
	"fuck",
	"shit",
	"bitch",
	"asshole",
	"bastard",
	"cunt",
	"dick",
	"whore",
	"slut",
}

// Filter rejects message bodies containing denylisted terms. It is pure and
// stateless after construction; Rejected has no side effects and no error
// conditions.
//
// The denylist is compiled into an Aho-Corasick automaton over normalized
// runes (lowercased, common leet substitutions folded back to letters).
// Because the automaton matches substrings, each hit is post-checked for word
// boundaries before it counts.
type Filter struct {
	machine *goahocorasick.Machine
}

// NewFilter compiles words into a Filter. When words is empty the
// DefaultDenylist is used. Terms that normalize to nothing are skipped.
func NewFilter(words []string) (*Filter, error) {
	if len(words) == 0 {
		words = DefaultDenylist
	}
	patterns := make([][]rune, 0, len(words))
	for _, w := range words {
		if norm := normalizeRunes([]rune(w)); len(norm) > 0 {
			patterns = append(patterns, norm)
		}
	}
	if len(patterns) == 0 {
		return &Filter{}, nil
	}
	m := new(goahocorasick.Machine)
	if err := m.Build(patterns); err != nil {
		return nil, err
	}
	return &Filter{machine: m}, nil
}

// MustNewFilter is NewFilter panicking on a bad denylist; for wiring sites
// where the list is static.
func MustNewFilter(words []string) *Filter {
	f, err := NewFilter(words)
	if err != nil {
		panic(err)
	}
	return f
}

// Rejected reports whether body contains a denylisted term as a whole word.
func (f *Filter) Rejected(body string) bool {
	if f.machine == nil {
		return false
	}
	norm := normalizeRunes([]rune(body))
	if len(norm) == 0 {
		return false
	}
	for _, term := range f.machine.MultiPatternSearch(norm, false) {
		start := term.Pos
		end := start + len(term.Word)
		if start < 0 || end > len(norm) {
			continue
		}
		if isBoundary(norm, start-1) && isBoundary(norm, end) {
			return true
		}
	}
	return false
}

// isBoundary reports whether position i in norm is outside a word: either off
// either end of the text or a non-word rune.
func isBoundary(norm []rune, i int) bool {
	if i < 0 || i >= len(norm) {
		return true
	}
	return !isWordRune(norm[i])
}

// isWordRune mirrors \w for boundary purposes. Normalization has already
// folded leet digits into letters, so remaining digits are genuine.
func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

// normalizeRunes lowercases and folds common leet substitutions so "a$$"-style
// spellings match their plain forms. Positions are preserved one-to-one, which
// keeps the boundary checks valid against the normalized text.
func normalizeRunes(input []rune) []rune {
	out := make([]rune, len(input))
	for i, r := range input {
		out[i] = unicode.ToLower(simplifyRune(r))
	}
	return out
}

// simplifyRune maps common leet-speak characters back to their standard
// alphabet counterparts.
func simplifyRune(r rune) rune {
	switch r {
	case '4', '@':
		return 'a'
	case '3', '€':
		return 'e'
	case '1', '!', '|':
		return 'i'
	case '0':
		return 'o'
	case '5', '$':
		return 's'
	default:
		return r
	}
}
