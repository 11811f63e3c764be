// Package activity reduces per-collector activity logs to the most recent
// failure per monitored process type.
package activity

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"cmhealth/internal/schema"
	"cmhealth/pkg/models"
)

// Config controls which activity types are monitored and which statuses mean
// a successful execution. Anything not matching the success vocabulary is a
// failure; success rows never reach the output.
type Config struct {
	Monitored []string
	Success   []string
}

// dateLayouts are tried in order. ISO forms come first because they are
// unambiguous; the appliance's own exports use day-first dates.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
	"02/01/2006 15:04",
	"02/01/2006",
}

// ParseDate parses an activity-log date cell.
func ParseDate(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, value, time.UTC); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

// AggregateCollector consumes one collector's validated activity tables and
// returns one FailureEvent per monitored activity type that failed at least
// once, carrying the most recent failure. Events are ordered by activity
// type; rows with unmonitored types are ignored, rows with unparsable dates
// are skipped with a warning.
func AggregateCollector(collector string, tables []*models.Table, cfg Config) ([]models.FailureEvent, []models.Warning) {
	monitored := make(map[string]string, len(cfg.Monitored))
	for _, m := range cfg.Monitored {
		monitored[models.NormalizeIdentity(m)] = m
	}

	latest := make(map[string]models.FailureEvent)
	var warnings []models.Warning

	for _, tbl := range tables {
		for i, row := range tbl.Rows {
			rawType := row.Get(schema.ColActivityType)
			status := row.Get(schema.ColStatus)
			if rawType == "" || status == "" {
				continue
			}

			display, ok := monitored[models.NormalizeIdentity(rawType)]
			if !ok {
				continue
			}
			if isSuccess(status, cfg.Success) {
				continue
			}

			date, ok := ParseDate(row.Get(schema.ColDate))
			if !ok {
				warnings = append(warnings, models.Warning{
					Kind:    models.WarnParse,
					Source:  tbl.Source,
					Row:     i + 1,
					Message: fmt.Sprintf("unparsable date %q for %s failure, row skipped", row.Get(schema.ColDate), display),
				})
				continue
			}

			event := models.FailureEvent{
				Collector:    collector,
				ActivityType: display,
				Status:       status,
				Date:         date,
			}
			// Keep the most recent failure; on equal dates the later row wins.
			if prev, seen := latest[display]; !seen || !event.Date.Before(prev.Date) {
				latest[display] = event
			}
		}
	}

	out := make([]models.FailureEvent, 0, len(latest))
	for _, ev := range latest {
		out = append(out, ev)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ActivityType < out[j].ActivityType })
	return out, warnings
}

func isSuccess(status string, vocab []string) bool {
	s := strings.ToLower(status)
	for _, k := range vocab {
		if strings.Contains(s, strings.ToLower(k)) {
			return true
		}
	}
	return false
}
