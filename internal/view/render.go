package view

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/olekukonko/tablewriter"
)

// Render writes the summary lines and the ranking table of snap to w.
func Render(w io.Writer, snap Snapshot) error {
	return renderAt(w, snap, time.Now())
}

func renderAt(w io.Writer, snap Snapshot, now time.Time) error {
	s := snap.Stats
	if _, err := fmt.Fprintf(w, "Sessions: %s   Players: %s   Best rate: %s/min   Avg rate: %s/min   Most crossings: %s\n",
		humanize.Comma(int64(s.TotalSessions)),
		humanize.Comma(int64(s.TotalUsers)),
		formatRate(s.GlobalBestRate),
		formatRate(s.GlobalAvgRate),
		humanize.Comma(int64(s.GlobalBestCrossings)),
	); err != nil {
		return err
	}

	if len(snap.Rankings.Rankings) == 0 {
		if _, err := fmt.Fprintln(w, "No data yet."); err != nil {
			return err
		}
	} else {
		table := tablewriter.NewWriter(w)
		table.SetAutoFormatHeaders(false)
		table.SetHeader([]string{"#", "Player", "Best rate/min", "Best crossings", "Avg rate/min", "Sessions"})
		for _, e := range snap.Rankings.Rankings {
			table.Append([]string{
				strconv.Itoa(e.Rank),
				e.Username,
				formatRate(e.BestRate),
				humanize.Comma(int64(e.BestCrossings)),
				formatRate(e.AvgRate),
				strconv.Itoa(e.TotalSessions),
			})
		}
		table.Render()

		if shown := len(snap.Rankings.Rankings); shown < snap.Rankings.TotalUsers {
			if _, err := fmt.Fprintf(w, "Showing %d of %d players\n", shown, snap.Rankings.TotalUsers); err != nil {
				return err
			}
		}
	}

	if !snap.FetchedAt.IsZero() {
		_, err := fmt.Fprintf(w, "Updated %s\n", humanize.RelTime(snap.FetchedAt, now, "ago", "from now"))
		return err
	}
	return nil
}

func formatRate(r float64) string {
	return strconv.FormatFloat(r, 'f', -1, 64)
}
