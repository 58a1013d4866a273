// Package types contains common types used across the application
package types

import "github.com/okian/crosscount/internal/domain/model"

// Entry is one row of the leaderboard.
type Entry struct {
	Rank          int     `json:"rank"`
	Username      string  `json:"username"`
	BestRate      float64 `json:"best_rate"`
	BestCrossings int     `json:"best_crossings"`
	TotalSessions int     `json:"total_sessions"`
	AvgRate       float64 `json:"avg_rate"`
}

// GlobalStats aggregates every session regardless of user.
type GlobalStats struct {
	TotalSessions       int     `json:"total_sessions"`
	TotalUsers          int     `json:"total_users"`
	GlobalBestRate      float64 `json:"global_best_rate"`
	GlobalAvgRate       float64 `json:"global_avg_rate"`
	GlobalBestCrossings int     `json:"global_best_crossings"`
}

// Rankings is the body of GET /api/rankings.
type Rankings struct {
	Rankings   []Entry `json:"rankings"`
	TotalUsers int     `json:"total_users"`
}

// UserSummary is the per-user block of UserStats.
type UserSummary struct {
	Rank          int     `json:"rank"`
	BestRate      float64 `json:"best_rate"`
	BestCrossings int     `json:"best_crossings"`
	AvgRate       float64 `json:"avg_rate"`
	TotalSessions int     `json:"total_sessions"`
}

// UserStats is the body of GET /api/rankings/user/{username}.
type UserStats struct {
	Username string          `json:"username"`
	Stats    UserSummary     `json:"stats"`
	Sessions []model.Session `json:"sessions"`
}
