// Package awarddomain ranks a day's reports and describes the medals.
package awarddomain

import (
	"sort"
	"time"

	reportdomain "github.com/Black-And-White-Club/step-bot/app/modules/report/domain"
)

// Medal names a podium place.
type Medal string

const (
	MedalGold   Medal = "gold"
	MedalSilver Medal = "silver"
	MedalBronze Medal = "bronze"
)

var podium = []Medal{MedalGold, MedalSilver, MedalBronze}

// Symbol is the grid annotation of the medal.
func (m Medal) Symbol() string {
	switch m {
	case MedalGold:
		return "🥇"
	case MedalSilver:
		return "🥈"
	case MedalBronze:
		return "🥉"
	}
	return ""
}

// Symbols lists every medal symbol, gold first.
func Symbols() []string {
	out := make([]string, len(podium))
	for i, m := range podium {
		out[i] = m.Symbol()
	}
	return out
}

// Award is one medal for one participant on one day.
type Award struct {
	Date     time.Time
	Identity string
	Key      string
	Rank     int
	Medal    Medal
	Steps    int
}

// Symbol is the grid annotation of the award.
func (a Award) Symbol() string { return a.Medal.Symbol() }

// AssignAwards ranks reports of a single day by steps using dense ranking:
// equal step counts share a rank and the next distinct count takes the next
// rank. Ranks 1 to 3 receive medals. The result is ordered by rank, then key.
func AssignAwards(reports []reportdomain.Report) []Award {
	if len(reports) == 0 {
		return nil
	}

	distinct := make([]int, 0, len(reports))
	seen := make(map[int]bool, len(reports))
	for _, r := range reports {
		if !seen[r.Steps] {
			seen[r.Steps] = true
			distinct = append(distinct, r.Steps)
		}
	}
	sort.Sort(sort.Reverse(sort.IntSlice(distinct)))

	rankOf := make(map[int]int, len(podium))
	for i := 0; i < len(distinct) && i < len(podium); i++ {
		rankOf[distinct[i]] = i + 1
	}

	var awards []Award
	for _, r := range reports {
		rank, ok := rankOf[r.Steps]
		if !ok {
			continue
		}
		awards = append(awards, Award{
			Date:     reportdomain.Day(r.Date),
			Identity: r.Identity,
			Key:      r.Key,
			Rank:     rank,
			Medal:    podium[rank-1],
			Steps:    r.Steps,
		})
	}

	sort.SliceStable(awards, func(i, j int) bool {
		if awards[i].Rank != awards[j].Rank {
			return awards[i].Rank < awards[j].Rank
		}
		return awards[i].Key < awards[j].Key
	})
	return awards
}
