package service

import (
	"fmt"
	"strconv"

	"fivesec_bot/internal/models"
)

const helpText = "*5s pattern bot*\n\n" +
	"/status - session state, stake and last cycle\n" +
	"/stats - wins, losses and win rate"

func formatStatus(s models.SessionStatus) string {
	limit := "∞"
	if s.MaxTrades > 0 {
		limit = strconv.Itoa(s.MaxTrades)
	}
	last := "-"
	if !s.LastWindow.CloseAt.IsZero() {
		last = s.LastWindow.CloseAt.UTC().Format("15:04:05")
		if s.LastWindow.Dispatched {
			last += " " + s.LastWindow.Decision.String()
		} else {
			last += " skipped (" + s.LastWindow.Reason + ")"
		}
	}
	return fmt.Sprintf(
		"*📊 Session*\n\n"+
			"State: `%s`\n"+
			"Trades: `%d/%s`\n"+
			"Skipped: `%d` of `%d` cycles\n"+
			"Open trades: `%d`\n"+
			"Stake: `%s` (step %d)\n"+
			"Last cycle: `%s`\n",
		s.State,
		s.Trades, limit,
		s.Skipped, s.Cycles,
		s.Pending,
		f2(s.Stake), s.Step,
		last,
	)
}

func formatStats(s models.Stats) string {
	return fmt.Sprintf(
		"*🧾 Journal*\n\n"+
			"Total: `%d`\n"+
			"Wins: `%d`\n"+
			"Losses: `%d`\n"+
			"Win rate: `%s%%`\n",
		s.Total, s.Wins, s.Losses, f2(s.WinRate),
	)
}

func f2(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
