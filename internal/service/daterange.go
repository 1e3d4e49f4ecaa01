package service

import "time"

// maxQueryWindow is the widest last-modified range the marketplace
// accepts per query.
const maxQueryWindow = 90 * 24 * time.Hour

type dateRange struct {
	From time.Time
	To   time.Time
}

// splitDateRange cuts [from, to] into sequential chunks no wider than
// window. Each chunk starts one second after the previous end so
// boundary orders are never fetched twice.
func splitDateRange(from, to time.Time, window time.Duration) []dateRange {
	if window <= 0 {
		window = maxQueryWindow
	}
	var out []dateRange
	start := from
	for {
		end := start.Add(window)
		if end.After(to) {
			end = to
		}
		out = append(out, dateRange{From: start, To: end})
		if !end.Before(to) {
			return out
		}
		start = end.Add(time.Second)
	}
}
