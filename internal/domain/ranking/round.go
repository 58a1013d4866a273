package ranking

import (
	"math"

	"github.com/okian/crosscount/internal/domain/model"
	"github.com/okian/crosscount/internal/domain/types"
)

// Round rounds x half away from zero to the given number of decimals.
// A negative precision returns x unchanged.
func Round(x float64, precision int) float64 {
	if precision < 0 || math.IsNaN(x) || math.IsInf(x, 0) {
		return x
	}
	p := math.Pow(10, float64(precision))
	return math.Round(x*p) / p
}

// RoundEntries returns a copy of entries with rates rounded.
func RoundEntries(entries []types.Entry, precision int) []types.Entry {
	out := make([]types.Entry, len(entries))
	for i, e := range entries {
		e.BestRate = Round(e.BestRate, precision)
		e.AvgRate = Round(e.AvgRate, precision)
		out[i] = e
	}
	return out
}

// RoundGlobal returns g with rates rounded.
func RoundGlobal(g types.GlobalStats, precision int) types.GlobalStats {
	g.GlobalBestRate = Round(g.GlobalBestRate, precision)
	g.GlobalAvgRate = Round(g.GlobalAvgRate, precision)
	return g
}

// RoundUser returns u with summary rates rounded. Raw session values are kept.
func RoundUser(u types.UserStats, precision int) types.UserStats {
	u.Stats.BestRate = Round(u.Stats.BestRate, precision)
	u.Stats.AvgRate = Round(u.Stats.AvgRate, precision)
	if u.Sessions == nil {
		u.Sessions = []model.Session{}
	}
	return u
}
