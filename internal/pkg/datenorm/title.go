package datenorm

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Title scraping recognizes four shapes, tried most-specific first. A hit
// whose components fall outside the plausible range does not stop the scan;
// the next pattern still gets a chance.
//
// Bulletin issues are named like TOCondoNews_May_2023.pdf, so `_` counts as
// a separator and the month may sit flush against the year (May2023). Plain
// \b anchors cannot express that: `_` is a word character, so a boundary
// never forms between an underscore and the token next to it.
var (
	monthNameRe = regexp.MustCompile(`(?i)(?:^|[^a-zA-Z0-9])(jan(?:uary)?|feb(?:ruary)?|mar(?:ch)?|apr(?:il)?|may|jun(?:e)?|jul(?:y)?|aug(?:ust)?|sep(?:t(?:ember)?)?|oct(?:ober)?|nov(?:ember)?|dec(?:ember)?)[\s.,_-]*(\d{4})(?:[^0-9]|$)`)
	yearMonthRe = regexp.MustCompile(`(?:^|[^0-9])(\d{4})[-/_](\d{1,2})(?:[^0-9]|$)`)
	monthYearRe = regexp.MustCompile(`(?:^|[^0-9])(\d{1,2})[-/_](\d{4})(?:[^0-9]|$)`)
	bareYearRe  = regexp.MustCompile(`(?:^|[^0-9])(\d{4})(?:[^0-9]|$)`)
)

var monthsByPrefix = map[string]time.Month{
	"jan": time.January, "feb": time.February, "mar": time.March,
	"apr": time.April, "may": time.May, "jun": time.June,
	"jul": time.July, "aug": time.August, "sep": time.September,
	"oct": time.October, "nov": time.November, "dec": time.December,
}

// fromTitle scans the title for a month/year marker and resolves it to the
// first day of that month at midnight UTC. A bare year resolves to January 1.
func (n *Normalizer) fromTitle(title string) (time.Time, bool) {
	if m := monthNameRe.FindStringSubmatch(title); m != nil {
		month := monthsByPrefix[strings.ToLower(m[1])[:3]]
		if t, ok := n.monthStart(atoi(m[2]), month); ok {
			return t, true
		}
	}
	if m := yearMonthRe.FindStringSubmatch(title); m != nil {
		if t, ok := n.monthStart(atoi(m[1]), time.Month(atoi(m[2]))); ok {
			return t, true
		}
	}
	if m := monthYearRe.FindStringSubmatch(title); m != nil {
		if t, ok := n.monthStart(atoi(m[2]), time.Month(atoi(m[1]))); ok {
			return t, true
		}
	}
	if m := bareYearRe.FindStringSubmatch(title); m != nil {
		if t, ok := n.monthStart(atoi(m[1]), time.January); ok {
			return t, true
		}
	}
	return time.Time{}, false
}

func (n *Normalizer) monthStart(year int, month time.Month) (time.Time, bool) {
	if year < n.minYear || year > n.maxYear || month < time.January || month > time.December {
		return time.Time{}, false
	}
	return time.Date(year, month, 1, 0, 0, 0, 0, time.UTC), true
}

func atoi(s string) int {
	v, _ := strconv.Atoi(s)
	return v
}
