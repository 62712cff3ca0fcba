package reportdomain

import (
	"strings"
	"unicode"
)

// Spaces that act as thousand separators inside a number and so do not
// split tokens.
const (
	nbsp       = '\u00a0'
	narrowNBSP = '\u202f'
	thinSpace  = '\u2009'
)

const (
	tagSigil  = "#"
	leadTrim  = ",;:!?()\"'«»"
	trailTrim = ",;:!?()\"'«»."
)

type tokenKind int

const (
	tokenWord tokenKind = iota
	tokenTag
	tokenDate
)

type token struct {
	text string
	kind tokenKind
	// tag is the tag name without the sigil, for tokenTag.
	tag string
}

func isGroupSpace(r rune) bool {
	return r == nbsp || r == narrowNBSP || r == thinSpace
}

func isTokenSeparator(r rune) bool {
	return unicode.IsSpace(r) && !isGroupSpace(r)
}

// tokenize splits text on whitespace and before every tag sigil, trims
// surrounding punctuation and classifies each token once so the field
// scans can share the result.
func tokenize(text string) []token {
	fields := strings.FieldsFunc(text, isTokenSeparator)
	tokens := make([]token, 0, len(fields))
	for _, field := range fields {
		for _, f := range splitTags(field) {
			f = strings.TrimLeft(f, leadTrim)
			f = strings.TrimRight(f, trailTrim)
			f = strings.TrimFunc(f, isGroupSpace)
			if f == "" {
				continue
			}
			tokens = append(tokens, classify(f))
		}
	}
	return tokens
}

// splitTags cuts a field before each inner sigil, so "#отчет#vasya" is two
// tags.
func splitTags(field string) []string {
	var parts []string
	for {
		i := strings.Index(field[1:], tagSigil)
		if i < 0 {
			return append(parts, field)
		}
		parts = append(parts, field[:i+1])
		field = field[i+1:]
	}
}

func classify(text string) token {
	if strings.HasPrefix(text, tagSigil) {
		return token{text: text, kind: tokenTag, tag: tagName(text[len(tagSigil):])}
	}
	if isDateShaped(text) {
		return token{text: text, kind: tokenDate}
	}
	return token{text: text, kind: tokenWord}
}

// tagName returns the leading run of letters, digits and underscores.
func tagName(s string) string {
	end := len(s)
	for i, r := range s {
		if !(unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_') {
			end = i
			break
		}
	}
	return s[:end]
}

// foldTag makes marker comparison case-insensitive and treats ё as е.
func foldTag(tag string) string {
	return strings.ReplaceAll(strings.ToLower(tag), "ё", "е")
}
