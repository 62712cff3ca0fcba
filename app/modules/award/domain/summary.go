package awarddomain

import (
	"strconv"
	"strings"
	"time"
)

const summaryDateLayout = "02.01.2006"

// FormatSummary renders the chat announcement of a day's medals, one line
// per rank. ok is false when there is nothing to announce.
func FormatSummary(date time.Time, awards []Award) (text string, ok bool) {
	if len(awards) == 0 {
		return "", false
	}

	var b strings.Builder
	b.WriteString("Медали за ")
	b.WriteString(date.Format(summaryDateLayout))
	b.WriteString(":")

	for i := 0; i < len(awards); {
		j := i
		names := make([]string, 0, 2)
		for j < len(awards) && awards[j].Rank == awards[i].Rank {
			names = append(names, "#"+awards[j].Identity)
			j++
		}
		b.WriteString("\n")
		b.WriteString(awards[i].Symbol())
		b.WriteString(" ")
		b.WriteString(strings.Join(names, ", "))
		b.WriteString(" — ")
		b.WriteString(GroupThousands(awards[i].Steps))
		b.WriteString(" шагов")
		i = j
	}
	return b.String(), true
}

// GroupThousands formats n with a space between groups of three digits.
func GroupThousands(n int) string {
	s := strconv.Itoa(n)
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	if len(s) <= 3 {
		if neg {
			return "-" + s
		}
		return s
	}

	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	head := len(s) % 3
	if head > 0 {
		b.WriteString(s[:head])
	}
	for i := head; i < len(s); i += 3 {
		if b.Len() > 0 && !(neg && b.Len() == 1) {
			b.WriteByte(' ')
		}
		b.WriteString(s[i : i+3])
	}
	return b.String()
}
