package reportdomain

import (
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"
)

// marker is the folded report tag. Both #отчет and #отчёт fold to it.
const marker = "отчет"

var (
	dateRe    = regexp.MustCompile(`^(\d{1,2})\.(\d{1,2})(?:\.(\d{4}|\d{2}))?$`)
	plainRe   = regexp.MustCompile(`^\d+$`)
	groupedRe = regexp.MustCompile(`^\d{1,3}(?:[.,'\x{00A0}\x{202F}\x{2009}]\d{3})+$`)
	leadRe    = regexp.MustCompile(`^\d{1,3}$`)
	tripletRe = regexp.MustCompile(`^\d{3}$`)
)

// HasMarker reports whether text carries the report marker tag.
func HasMarker(text string) bool {
	for _, t := range tokenize(text) {
		if t.kind == tokenTag && foldTag(t.tag) == marker {
			return true
		}
	}
	return false
}

// Extract runs the identity, date and steps scans over text. Each scan
// reads the whole token list, so field order in the message does not matter.
// A missing or invalid date falls back to the UTC day of now.
func Extract(text string, now time.Time) Extraction {
	tokens := tokenize(text)

	ex := Extraction{Identity: scanIdentity(tokens)}
	ex.Date, ex.DateFound = scanDate(tokens, now)
	if !ex.DateFound {
		ex.Date = Day(now)
	}
	ex.Steps, ex.HasSteps = scanSteps(tokens)
	return ex
}

// Parse extracts a complete Report from text. A message missing both the
// identity and the steps fails with ErrMissingIdentity.
func Parse(text string, now time.Time) (Report, error) {
	return Extract(text, now).Report("")
}

// Report completes the extraction. fallbackIdentity is used when the
// message carried no identity tag, typically the sender's remembered nickname.
func (e Extraction) Report(fallbackIdentity string) (Report, error) {
	identity := e.Identity
	if identity == "" {
		identity = strings.TrimPrefix(strings.TrimSpace(fallbackIdentity), tagSigil)
	}
	if identity == "" {
		return Report{}, &ParseError{Reason: ErrMissingIdentity}
	}
	if !e.HasSteps {
		return Report{}, &ParseError{Reason: ErrMissingSteps}
	}
	return Report{
		Identity: identity,
		Key:      NormalizeIdentity(identity),
		Date:     e.Date,
		Steps:    e.Steps,
	}, nil
}

func scanIdentity(tokens []token) string {
	for _, t := range tokens {
		if t.kind != tokenTag || t.tag == "" {
			continue
		}
		if foldTag(t.tag) == marker {
			continue
		}
		return t.tag
	}
	return ""
}

func scanDate(tokens []token, now time.Time) (time.Time, bool) {
	for _, t := range tokens {
		if t.kind != tokenDate {
			continue
		}
		if d, ok := parseDate(t.text, now); ok {
			return d, true
		}
	}
	return time.Time{}, false
}

func isDateShaped(s string) bool {
	return dateRe.MatchString(s)
}

// parseDate reads D.M, D.M.YY or D.M.YYYY. A two digit year is taken to be
// in 2000-2099; a missing year is the current UTC year.
func parseDate(s string, now time.Time) (time.Time, bool) {
	m := dateRe.FindStringSubmatch(s)
	if m == nil {
		return time.Time{}, false
	}
	day, _ := strconv.Atoi(m[1])
	month, _ := strconv.Atoi(m[2])

	year := now.UTC().Year()
	switch len(m[3]) {
	case 2:
		yy, _ := strconv.Atoi(m[3])
		year = 2000 + yy
	case 4:
		year, _ = strconv.Atoi(m[3])
	}

	if month < 1 || month > 12 || day < 1 {
		return time.Time{}, false
	}
	d := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if d.Day() != day || int(d.Month()) != month {
		return time.Time{}, false
	}
	return d, true
}

// scanSteps returns the first non-negative integer among the word tokens.
// Tags and date-shaped tokens never count. Thousands may be grouped inside
// a token (12.500, 12,500, 12'500) or split across tokens (12 500).
func scanSteps(tokens []token) (int, bool) {
	for i, t := range tokens {
		if t.kind != tokenWord {
			continue
		}

		switch {
		case leadRe.MatchString(t.text):
			digits := t.text
			for j := i + 1; j < len(tokens) && tokens[j].kind == tokenWord && tripletRe.MatchString(tokens[j].text); j++ {
				digits += tokens[j].text
			}
			if n, ok := atoi(digits); ok {
				return n, true
			}
		case plainRe.MatchString(t.text):
			if n, ok := atoi(t.text); ok {
				return n, true
			}
		case groupedRe.MatchString(t.text):
			if n, ok := atoi(stripNonDigits(t.text)); ok {
				return n, true
			}
		}
	}
	return 0, false
}

func stripNonDigits(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) {
			return r
		}
		return -1
	}, s)
}

func atoi(s string) (int, bool) {
	n, err := strconv.ParseInt(s, 10, 0)
	if err != nil || n < 0 {
		return 0, false
	}
	return int(n), true
}
