// Package ranking turns raw sessions into leaderboard entries and global
// statistics. Everything is recomputed from the full session set on each
// call; there is no incremental state.
package ranking

import (
	"errors"
	"math"
	"slices"
	"sort"

	"github.com/okian/crosscount/internal/domain/model"
	"github.com/okian/crosscount/internal/domain/types"
)

// ErrUserNotFound is returned by ForUser when the user has no sessions.
var ErrUserNotFound = errors.New("user not found")

type acc struct {
	username      string
	bestRate      float64
	bestCrossings int
	count         int
	rateSum       float64
}

// Aggregate groups sessions by username (exact, case-sensitive match) and
// returns the leaderboard ordered by best rate desc, username asc, plus the
// global statistics. Empty input yields an empty, non-nil slice and zero stats.
func Aggregate(sessions []model.Session) ([]types.Entry, types.GlobalStats) {
	groups := make(map[string]*acc)
	var g types.GlobalStats
	var rateSum float64

	for i := range sessions {
		s := &sessions[i]
		a, ok := groups[s.Username]
		if !ok {
			a = &acc{username: s.Username, bestRate: s.RatePerMinute, bestCrossings: s.TotalCrossings}
			groups[s.Username] = a
		}
		a.bestRate = math.Max(a.bestRate, s.RatePerMinute)
		a.bestCrossings = max(a.bestCrossings, s.TotalCrossings)
		a.count++
		a.rateSum += s.RatePerMinute

		if g.TotalSessions == 0 {
			g.GlobalBestRate = s.RatePerMinute
			g.GlobalBestCrossings = s.TotalCrossings
		}
		g.GlobalBestRate = math.Max(g.GlobalBestRate, s.RatePerMinute)
		g.GlobalBestCrossings = max(g.GlobalBestCrossings, s.TotalCrossings)
		g.TotalSessions++
		rateSum += s.RatePerMinute
	}

	entries := make([]types.Entry, 0, len(groups))
	for _, a := range groups {
		entries = append(entries, types.Entry{
			Username:      a.username,
			BestRate:      a.bestRate,
			BestCrossings: a.bestCrossings,
			TotalSessions: a.count,
			AvgRate:       a.rateSum / float64(a.count),
		})
	}
	sort.Slice(entries, func(i, j int) bool {
		return less(entries[i], entries[j])
	})
	for i := range entries {
		entries[i].Rank = i + 1
	}

	g.TotalUsers = len(groups)
	if g.TotalSessions > 0 {
		g.GlobalAvgRate = rateSum / float64(g.TotalSessions)
	}
	return entries, g
}

// less orders by best rate desc, then username asc for determinism.
func less(a, b types.Entry) bool {
	if a.BestRate != b.BestRate {
		return a.BestRate > b.BestRate
	}
	return a.Username < b.Username
}

// ForUser picks username's entry from entries, as ranked by Aggregate, and
// pairs it with own, that user's sessions, ordered newest first. own is not
// modified.
func ForUser(entries []types.Entry, own []model.Session, username string) (types.UserStats, error) {
	idx := slices.IndexFunc(entries, func(e types.Entry) bool { return e.Username == username })
	if idx < 0 || len(own) == 0 {
		return types.UserStats{}, ErrUserNotFound
	}

	sessions := slices.Clone(own)
	sort.SliceStable(sessions, func(i, j int) bool {
		return sessions[i].Timestamp.After(sessions[j].Timestamp.Time)
	})

	e := entries[idx]
	return types.UserStats{
		Username: username,
		Stats: types.UserSummary{
			Rank:          e.Rank,
			BestRate:      e.BestRate,
			BestCrossings: e.BestCrossings,
			AvgRate:       e.AvgRate,
			TotalSessions: e.TotalSessions,
		},
		Sessions: sessions,
	}, nil
}
