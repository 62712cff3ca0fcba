package reportdomain

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	msk = time.FixedZone("MSK", 3*60*60)
	// 01:00 MSK on March 2nd is still March 1st in UTC.
	testNow = time.Date(2026, time.March, 2, 1, 0, 0, 0, msk)
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestHasMarker(t *testing.T) {
	tests := []struct {
		text string
		want bool
	}{
		{"#отчет #vasya 12000", true},
		{"#Отчёт #vasya 12000", true},
		{"#ОТЧЕТ, 12000", true},
		{"(#отчет) 12000", true},
		{"#отчет#vasya 12000", true},
		{"#отчеты 12000", false},
		{"отчет 12000", false},
		{"#vasya 12000", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			assert.Equal(t, tt.want, HasMarker(tt.text))
		})
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		want    Report
		wantErr error
	}{
		{
			name: "all fields",
			text: "#отчет #Vasya 25.02.2026 12000",
			want: Report{Identity: "Vasya", Key: "vasya", Date: date(2026, time.February, 25), Steps: 12000},
		},
		{
			name: "marker with yo spelling is not the identity",
			text: "#Отчёт #petya 5000",
			want: Report{Identity: "petya", Key: "petya", Date: date(2026, time.March, 1), Steps: 5000},
		},
		{
			name: "two digit year is in the 2000s",
			text: "#отчет #vasya 01.02.25 7000",
			want: Report{Identity: "vasya", Key: "vasya", Date: date(2025, time.February, 1), Steps: 7000},
		},
		{
			name: "missing year is the current UTC year",
			text: "#отчет #vasya 3.1 7000",
			want: Report{Identity: "vasya", Key: "vasya", Date: date(2026, time.January, 3), Steps: 7000},
		},
		{
			name: "missing date defaults to UTC today",
			text: "#отчет #vasya 7000",
			want: Report{Identity: "vasya", Key: "vasya", Date: date(2026, time.March, 1), Steps: 7000},
		},
		{
			name: "invalid calendar date falls back and is not read as steps",
			text: "#отчет #vasya 31.02.2026 7000",
			want: Report{Identity: "vasya", Key: "vasya", Date: date(2026, time.March, 1), Steps: 7000},
		},
		{
			name: "first valid date wins",
			text: "#отчет #vasya 40.01 02.01.2026 7000 03.01.2026",
			want: Report{Identity: "vasya", Key: "vasya", Date: date(2026, time.January, 2), Steps: 7000},
		},
		{
			name: "dot thousand separator",
			text: "#отчет #vasya 12.500",
			want: Report{Identity: "vasya", Key: "vasya", Date: date(2026, time.March, 1), Steps: 12500},
		},
		{
			name: "comma thousand separator",
			text: "#отчет #vasya 12,500 шагов",
			want: Report{Identity: "vasya", Key: "vasya", Date: date(2026, time.March, 1), Steps: 12500},
		},
		{
			name: "space split thousands",
			text: "#отчет #vasya 12 500 шагов",
			want: Report{Identity: "vasya", Key: "vasya", Date: date(2026, time.March, 1), Steps: 12500},
		},
		{
			name: "space split thousands without a unit",
			text: "#отчет #vasya 500 123",
			want: Report{Identity: "vasya", Key: "vasya", Date: date(2026, time.March, 1), Steps: 500123},
		},
		{
			name: "non-breaking space thousands",
			text: "#отчет #vasya 1\u00a0234\u202f567",
			want: Report{Identity: "vasya", Key: "vasya", Date: date(2026, time.March, 1), Steps: 1234567},
		},
		{
			name: "trailing punctuation is trimmed",
			text: "#отчет, #vasya! 25.02.2026. 12000.",
			want: Report{Identity: "vasya", Key: "vasya", Date: date(2026, time.February, 25), Steps: 12000},
		},
		{
			name: "tags glued without a space",
			text: "#отчет#vasya 12000",
			want: Report{Identity: "vasya", Key: "vasya", Date: date(2026, time.March, 1), Steps: 12000},
		},
		{
			name: "glued tags after punctuation",
			text: "#Отчёт,#Petya 25.02.2026 9000",
			want: Report{Identity: "Petya", Key: "petya", Date: date(2026, time.February, 25), Steps: 9000},
		},
		{
			name: "tag name stops at punctuation",
			text: "#отчет #vasya-run 9000",
			want: Report{Identity: "vasya", Key: "vasya", Date: date(2026, time.March, 1), Steps: 9000},
		},
		{
			name: "digits inside tags are not steps",
			text: "#отчет #runner42 #team7 8000",
			want: Report{Identity: "runner42", Key: "runner42", Date: date(2026, time.March, 1), Steps: 8000},
		},
		{
			name: "zero steps is valid",
			text: "#отчет #vasya 0",
			want: Report{Identity: "vasya", Key: "vasya", Date: date(2026, time.March, 1), Steps: 0},
		},
		{
			name:    "missing identity",
			text:    "#отчет 12000",
			wantErr: ErrMissingIdentity,
		},
		{
			name:    "missing both reports identity first",
			text:    "#отчет 25.02.2026",
			wantErr: ErrMissingIdentity,
		},
		{
			name:    "missing steps",
			text:    "#отчет #vasya 25.02.2026",
			wantErr: ErrMissingSteps,
		},
		{
			name:    "negative number is not steps",
			text:    "#отчет #vasya -500",
			wantErr: ErrMissingSteps,
		},
		{
			name:    "number glued to a word is not steps",
			text:    "#отчет #vasya 5000шагов",
			wantErr: ErrMissingSteps,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.text, testNow)
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.wantErr)
				var pe *ParseError
				require.True(t, errors.As(err, &pe))
				return
			}
			require.NoError(t, err)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Parse() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParse_OrderIndependent(t *testing.T) {
	faker := gofakeit.New(42)

	for i := 0; i < 25; i++ {
		nick := faker.LetterN(8)
		steps := faker.IntRange(0, 99999)
		day := date(faker.IntRange(2000, 2099), time.Month(faker.IntRange(1, 12)), faker.IntRange(1, 28))

		parts := []string{
			"#отчет",
			"#" + nick,
			day.Format("02.01.2006"),
			fmt.Sprint(steps),
		}

		var first Report
		for n, perm := range permutations(parts) {
			got, err := Parse(strings.Join(perm, " "), testNow)
			require.NoError(t, err, perm)
			if n == 0 {
				first = got
				assert.Equal(t, nick, got.Identity)
				assert.Equal(t, steps, got.Steps)
				assert.True(t, day.Equal(got.Date))
				continue
			}
			if diff := cmp.Diff(first, got); diff != "" {
				t.Fatalf("order %v changed the result (-first +got):\n%s", perm, diff)
			}
		}
	}
}

func TestExtraction_ReportFallback(t *testing.T) {
	ex := Extract("#отчет 6000", testNow)
	assert.Empty(t, ex.Identity)
	assert.False(t, ex.DateFound)

	r, err := ex.Report("Masha")
	require.NoError(t, err)
	assert.Equal(t, "Masha", r.Identity)
	assert.Equal(t, "masha", r.Key)
	assert.Equal(t, 6000, r.Steps)

	tagged := Extract("#отчет #Petya 6000", testNow)
	r, err = tagged.Report("Masha")
	require.NoError(t, err)
	assert.Equal(t, "Petya", r.Identity, "explicit tag beats the remembered identity")
}

func TestParseError_ReasonLabel(t *testing.T) {
	assert.Equal(t, "missing_identity", (&ParseError{Reason: ErrMissingIdentity}).ReasonLabel())
	assert.Equal(t, "missing_steps", (&ParseError{Reason: ErrMissingSteps}).ReasonLabel())
}

func permutations(in []string) [][]string {
	if len(in) <= 1 {
		return [][]string{append([]string(nil), in...)}
	}
	var out [][]string
	for i := range in {
		rest := make([]string, 0, len(in)-1)
		rest = append(rest, in[:i]...)
		rest = append(rest, in[i+1:]...)
		for _, p := range permutations(rest) {
			out = append(out, append([]string{in[i]}, p...))
		}
	}
	return out
}
