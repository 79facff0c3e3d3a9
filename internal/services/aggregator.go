package services

import (
	"fmt"
	"strings"

	"github.com/chronocop/chronocop/internal/database"
	"github.com/chronocop/chronocop/internal/domain"
	"github.com/chronocop/chronocop/internal/timeslot"
)

// EnergyCount is one observed energy value and how often it occurred.
type EnergyCount struct {
	Impact domain.EnergyImpact
	Count  int
}

// DayStats are the aggregates for one calendar date. Built only from the
// entries passed in, so identical input produces identical output.
type DayStats struct {
	Date          string
	TotalMinutes  int
	PlannedCount  int
	ReactiveCount int
	Energy        []EnergyCount
	Entries       []database.TimeEntry
}

// WeekStats are the aggregates for one Monday-anchored week. Days always
// holds seven groups in Monday to Sunday order, including empty days.
type WeekStats struct {
	WeekStart     string
	TotalMinutes  int
	PlannedCount  int
	ReactiveCount int
	Energy        []EnergyCount
	Days          []DayStats
}

// entryMinutes is the slot length via minutes-since-midnight arithmetic.
// The 23:30 slot ends at "00:00" on the same date; the modulo keeps its
// length at 30 instead of going negative.
func entryMinutes(e database.TimeEntry) int {
	start := timeslot.MinutesSinceMidnight(e.StartTime)
	end := timeslot.MinutesSinceMidnight(e.EndTime)
	return ((end - start) + 24*60) % (24 * 60)
}

// countEnergy builds the distribution over values actually present,
// emitted in fixed declaration order so rendering is deterministic.
func countEnergy(entries []database.TimeEntry) []EnergyCount {
	counts := make(map[domain.EnergyImpact]int, len(domain.EnergyImpacts))
	for _, e := range entries {
		counts[e.EnergyImpact]++
	}
	var out []EnergyCount
	for _, impact := range domain.EnergyImpacts {
		if n := counts[impact]; n > 0 {
			out = append(out, EnergyCount{Impact: impact, Count: n})
		}
	}
	return out
}

// AggregateDay computes the statistics for a single date over its
// (date, start_time)-ordered entries.
func AggregateDay(date string, entries []database.TimeEntry) DayStats {
	stats := DayStats{Date: date, Entries: entries}
	for _, e := range entries {
		stats.TotalMinutes += entryMinutes(e)
		switch e.Type {
		case domain.TypePlanned:
			stats.PlannedCount++
		case domain.TypeReactive:
			stats.ReactiveCount++
		}
	}
	stats.Energy = countEnergy(entries)
	return stats
}

// AggregateWeek computes per-day groups for the week starting at the
// given Monday, always emitting all seven days in Monday to Sunday order.
func AggregateWeek(weekStart string, entries []database.TimeEntry) WeekStats {
	stats := WeekStats{WeekStart: weekStart, Energy: countEnergy(entries)}

	byDate := make(map[string][]database.TimeEntry)
	for _, e := range entries {
		byDate[e.Date] = append(byDate[e.Date], e)
	}

	start, err := timeslot.ParseDate(weekStart)
	if err != nil {
		return stats
	}
	for i := 0; i < 7; i++ {
		date := start.AddDate(0, 0, i).Format(timeslot.DateLayout)
		day := AggregateDay(date, byDate[date])
		stats.TotalMinutes += day.TotalMinutes
		stats.PlannedCount += day.PlannedCount
		stats.ReactiveCount += day.ReactiveCount
		stats.Days = append(stats.Days, day)
	}
	return stats
}

func dayName(date string) string {
	t, err := timeslot.ParseDate(date)
	if err != nil {
		return date
	}
	return t.Weekday().String()
}

func writeEnergyLine(b *strings.Builder, energy []EnergyCount) {
	if len(energy) == 0 {
		return
	}
	b.WriteString("Energy: ")
	for i, ec := range energy {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(b, "%s %d", ec.Impact, ec.Count)
	}
	b.WriteString("\n")
}

// writeEntryLine renders one entry as "start-end (duration min): activity [type, energy]".
func writeEntryLine(b *strings.Builder, e database.TimeEntry) {
	fmt.Fprintf(b, "- %s-%s (%d min): %s [%s, %s]\n",
		e.StartTime, e.EndTime, entryMinutes(e), e.Activity, e.Type, e.EnergyImpact)
}

// BuildDailyPrompt renders the daily narrative prompt. Callers must not
// invoke it with zero entries.
func BuildDailyPrompt(date string, entries []database.TimeEntry) string {
	stats := AggregateDay(date, entries)

	var b strings.Builder
	b.WriteString("You are reviewing one day of a personal time audit. Every entry is a 30-minute block tagged as planned or reactive work, with the energy it left behind.\n\n")
	fmt.Fprintf(&b, "Date: %s, %s\n", dayName(date), date)
	fmt.Fprintf(&b, "Tracked: %d minutes across %d entries (%d planned, %d reactive)\n",
		stats.TotalMinutes, len(entries), stats.PlannedCount, stats.ReactiveCount)
	writeEnergyLine(&b, stats.Energy)

	b.WriteString("\nEntries:\n")
	for _, e := range entries {
		writeEntryLine(&b, e)
	}

	b.WriteString("\nWrite a narrative summary of roughly 150-200 words with these sections:\n")
	b.WriteString("## How the day went\n")
	b.WriteString("(the overall shape of the day in two or three sentences)\n\n")
	b.WriteString("## Patterns worth noticing\n")
	b.WriteString("(planned versus reactive balance and where energy was gained or lost)\n\n")
	b.WriteString("## One suggestion\n")
	b.WriteString("(a single concrete adjustment for tomorrow)\n\n")
	b.WriteString("Base every statement strictly on the entries above. Do not invent activities.\n")

	return b.String()
}

// BuildWeeklyPrompt renders the weekly narrative prompt over a
// Monday-anchored week. Days without entries are listed as placeholders
// so the model sees the full Monday to Sunday shape.
func BuildWeeklyPrompt(weekStart string, entries []database.TimeEntry) string {
	stats := AggregateWeek(weekStart, entries)

	var b strings.Builder
	b.WriteString("You are reviewing one week of a personal time audit. Every entry is a 30-minute block tagged as planned or reactive work, with the energy it left behind.\n\n")
	fmt.Fprintf(&b, "Week starting: Monday, %s\n", weekStart)
	fmt.Fprintf(&b, "Tracked: %d minutes across %d entries (%d planned, %d reactive)\n",
		stats.TotalMinutes, len(entries), stats.PlannedCount, stats.ReactiveCount)
	writeEnergyLine(&b, stats.Energy)

	for _, day := range stats.Days {
		fmt.Fprintf(&b, "\n%s, %s", dayName(day.Date), day.Date)
		if len(day.Entries) == 0 {
			b.WriteString(": no tracked activities\n")
			continue
		}
		fmt.Fprintf(&b, " (%d min, %d planned, %d reactive):\n",
			day.TotalMinutes, day.PlannedCount, day.ReactiveCount)
		for _, e := range day.Entries {
			writeEntryLine(&b, e)
		}
	}

	b.WriteString("\nWrite a narrative summary of roughly 300-400 words with these sections:\n")
	b.WriteString("## Week in review\n")
	b.WriteString("(how the week was spent overall)\n\n")
	b.WriteString("## Planned versus reactive\n")
	b.WriteString("(how much of the week followed a plan and which days were hijacked)\n\n")
	b.WriteString("## Energy patterns\n")
	b.WriteString("(which activities or days energised and which drained)\n\n")
	b.WriteString("## Suggestions for next week\n")
	b.WriteString("(two or three concrete adjustments)\n\n")
	b.WriteString("Base every statement strictly on the entries above. Do not invent activities.\n")

	return b.String()
}
