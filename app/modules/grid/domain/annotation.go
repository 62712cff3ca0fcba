package griddomain

import "strings"

// StripSymbol removes a trailing known symbol, and the space before it,
// from a cell value.
func StripSymbol(value string, known []string) string {
	v := strings.TrimSpace(value)
	for {
		stripped := false
		for _, sym := range known {
			if sym != "" && strings.HasSuffix(v, sym) {
				v = strings.TrimSpace(strings.TrimSuffix(v, sym))
				stripped = true
			}
		}
		if !stripped {
			return v
		}
	}
}

// Annotate replaces whatever known symbol value carries with symbol. An
// empty symbol clears the annotation. The result is "<value> <symbol>".
func Annotate(value, symbol string, known []string) string {
	base := StripSymbol(value, known)
	if symbol == "" {
		return base
	}
	if base == "" {
		return symbol
	}
	return base + " " + symbol
}
