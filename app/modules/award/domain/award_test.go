package awarddomain

import (
	"testing"
	"time"

	reportdomain "github.com/Black-And-White-Club/step-bot/app/modules/report/domain"
	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var day = time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC)

func rep(identity string, steps int) reportdomain.Report {
	return reportdomain.Report{
		Identity: identity,
		Key:      reportdomain.NormalizeIdentity(identity),
		Date:     day,
		Steps:    steps,
	}
}

func aw(identity string, rank int, steps int) Award {
	return Award{
		Date:     day,
		Identity: identity,
		Key:      reportdomain.NormalizeIdentity(identity),
		Rank:     rank,
		Medal:    podium[rank-1],
		Steps:    steps,
	}
}

func TestAssignAwards(t *testing.T) {
	tests := []struct {
		name    string
		reports []reportdomain.Report
		want    []Award
	}{
		{
			name: "empty",
		},
		{
			name:    "single report gets gold",
			reports: []reportdomain.Report{rep("Vasya", 5000)},
			want:    []Award{aw("Vasya", 1, 5000)},
		},
		{
			name: "dense ranking with ties",
			reports: []reportdomain.Report{
				rep("d", 8000), rep("a", 11000), rep("c", 9000), rep("b", 11000), rep("e", 8000), rep("f", 7000),
			},
			want: []Award{
				aw("a", 1, 11000), aw("b", 1, 11000),
				aw("c", 2, 9000),
				aw("d", 3, 8000), aw("e", 3, 8000),
			},
		},
		{
			name:    "everybody tied",
			reports: []reportdomain.Report{rep("Zed", 100), rep("amy", 100)},
			want:    []Award{aw("amy", 1, 100), aw("Zed", 1, 100)},
		},
		{
			name:    "two distinct values give two ranks",
			reports: []reportdomain.Report{rep("a", 1), rep("b", 2)},
			want:    []Award{aw("b", 1, 2), aw("a", 2, 1)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := AssignAwards(tt.reports)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("AssignAwards() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestAssignAwards_Properties(t *testing.T) {
	faker := gofakeit.New(7)

	for i := 0; i < 200; i++ {
		n := faker.IntRange(1, 20)
		reports := make([]reportdomain.Report, 0, n)
		keys := map[string]bool{}
		for len(reports) < n {
			name := faker.Username()
			if keys[reportdomain.NormalizeIdentity(name)] {
				continue
			}
			keys[reportdomain.NormalizeIdentity(name)] = true
			reports = append(reports, rep(name, faker.IntRange(0, 5)*1000))
		}

		awards := AssignAwards(reports)
		require.NotEmpty(t, awards)

		// The top value always wins gold and every rank is within the podium.
		top := 0
		for _, r := range reports {
			top = max(top, r.Steps)
		}
		assert.Equal(t, 1, awards[0].Rank)
		assert.Equal(t, top, awards[0].Steps)

		stepsByRank := map[int]int{}
		for k, a := range awards {
			assert.GreaterOrEqual(t, a.Rank, 1)
			assert.LessOrEqual(t, a.Rank, 3)
			if s, ok := stepsByRank[a.Rank]; ok {
				assert.Equal(t, s, a.Steps, "one step value per rank")
			}
			stepsByRank[a.Rank] = a.Steps
			if k > 0 {
				prev := awards[k-1]
				assert.True(t, prev.Rank < a.Rank || (prev.Rank == a.Rank && prev.Key < a.Key))
			}
		}
		for rank := 2; rank <= 3; rank++ {
			if s, ok := stepsByRank[rank]; ok {
				assert.Less(t, s, stepsByRank[rank-1], "ranks are dense and descending")
			}
		}

		// Every report holding an awarded value is awarded.
		awarded := map[int]bool{}
		for _, a := range awards {
			awarded[a.Steps] = true
		}
		count := 0
		for _, r := range reports {
			if awarded[r.Steps] {
				count++
			}
		}
		assert.Len(t, awards, count)
	}
}

func TestSymbols(t *testing.T) {
	assert.Equal(t, []string{"🥇", "🥈", "🥉"}, Symbols())
	assert.Equal(t, "", Medal("tin").Symbol())
}
