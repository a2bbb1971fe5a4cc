package util

import (
	"fmt"
	"strings"
	"time"

	"cafelog/internal/model"

	"github.com/dustin/go-humanize"
)

// FormatDate formats a visit date for display, e.g. "Oct 10, 2025".
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return "Unknown"
	}
	return t.Format("Jan 02, 2006")
}

// FormatDateHuman formats a visit date relative to now.
// "Today", "Yesterday", "3 days ago", "Jan 15", "Jan 15 '24"
func FormatDateHuman(t, now time.Time) string {
	if t.IsZero() {
		return "Unknown"
	}

	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	local := t.In(now.Location())
	day := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, now.Location())
	days := int(today.Sub(day).Hours() / 24)

	switch {
	case days == 0:
		return "Today"
	case days == 1:
		return "Yesterday"
	case days > 1 && days < 7:
		return humanize.RelTime(day, today, "ago", "from now")
	case local.Year() == now.Year():
		return local.Format("Jan 02")
	default:
		return local.Format("Jan 02 '06")
	}
}

// FormatStars renders a rating as filled and empty stars, e.g. "★★★☆☆".
func FormatStars(rating int) string {
	rating = model.ClampRating(rating)
	return strings.Repeat("★", rating) + strings.Repeat("☆", model.MaxRating-rating)
}

// FormatFavourite renders the favourite flag as a symbol.
func FormatFavourite(fav bool) string {
	if fav {
		return "♥"
	}
	return "·"
}

// FormatCoordinate renders a coordinate with hemisphere letters.
func FormatCoordinate(c model.Coordinate) string {
	ns, ew := "N", "E"
	lat, lon := c.Lat, c.Lon
	if lat < 0 {
		ns, lat = "S", -lat
	}
	if lon < 0 {
		ew, lon = "W", -lon
	}
	return fmt.Sprintf("%.4f°%s, %.4f°%s", lat, ns, lon, ew)
}

// ParseVisitDateInput parses flexible user input into a date. Empty input
// returns fallback.
func ParseVisitDateInput(input string, fallback time.Time) (time.Time, error) {
	s := strings.TrimSpace(input)
	if s == "" {
		return fallback, nil
	}

	layouts := []string{
		"2006-01-02",
		"January 2, 2006",
		"Jan 2, 2006",
		"Jan 02, 2006",
		"2/1/2006",
		"02/01/2006",
	}

	for _, layout := range layouts {
		if t, err := time.ParseInLocation(layout, s, fallback.Location()); err == nil {
			return t, nil
		}
	}

	return fallback, fmt.Errorf("invalid date format")
}

// TruncateString truncates a string to maxLen and adds "..." if needed.
func TruncateString(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	if maxLen < 3 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-3]) + "..."
}
