package job

import (
	"regexp"
	"strings"
	"time"
)

var (
	isoDateRegex = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}`)
	agoRegex     = regexp.MustCompile(`(?i)^(\d+)\s*(day|days|d|week|weeks|w|month|months)\s+ago$`)
)

// dateLayouts are tried in order for non-ISO posted dates
var dateLayouts = []string{
	"02/01/2006",
	"Jan 2, 2006",
	"2 Jan 2006",
	"January 2, 2006",
}

// IsRecent reports whether a posted date falls within maxDays of now.
// Unknown or unparseable dates are treated as recent; the posting gets the benefit of the doubt.
func IsRecent(dateStr string, maxDays int, now time.Time) bool {
	posted, ok := ParsePostedDate(dateStr, now)
	if !ok {
		return true
	}

	diff := now.Sub(posted)
	if diff > time.Duration(maxDays)*24*time.Hour {
		return false
	}
	// Future dates beyond two days are bogus (timezone slack aside)
	if diff < -2*24*time.Hour {
		return false
	}
	return true
}

// ParsePostedDate parses the date formats source adapters commonly emit
func ParsePostedDate(dateStr string, now time.Time) (time.Time, bool) {
	s := strings.TrimSpace(dateStr)
	if s == "" {
		return time.Time{}, false
	}

	switch strings.ToLower(s) {
	case "today", "just now", "recent":
		return now, true
	case "yesterday":
		return now.AddDate(0, 0, -1), true
	}

	// ISO "2026-01-27" or "2026-01-27T..."
	if isoDateRegex.MatchString(s) {
		if t, err := time.Parse("2006-01-02", s[:10]); err == nil {
			return t, true
		}
	}

	// Relative "3 days ago", "2 weeks ago"
	if m := agoRegex.FindStringSubmatch(s); m != nil {
		var n int
		for _, c := range m[1] {
			n = n*10 + int(c-'0')
		}
		switch strings.ToLower(m[2])[0] {
		case 'd':
			return now.AddDate(0, 0, -n), true
		case 'w':
			return now.AddDate(0, 0, -7*n), true
		case 'm':
			return now.AddDate(0, -n, 0), true
		}
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}

	return time.Time{}, false
}
