package ephemeris

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Extract locates the two element lines in raw feed text. The first element
// line is recognized by its fixed "1 " leading token; the second must follow
// immediately with a "2 " token. A title line before the marker is tolerated
// and becomes the object name. Anything else is a *FormatError.
func Extract(text string) (*ElementSet, error) {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimRight(line, "\r\n ")
		if line != "" {
			lines = append(lines, line)
		}
	}

	for i, line := range lines {
		if !strings.HasPrefix(line, "1 ") {
			continue
		}
		if i+1 >= len(lines) || !strings.HasPrefix(lines[i+1], "2 ") {
			return nil, &FormatError{Reason: "line 1 marker found but no line 2 follows"}
		}

		name := ""
		if i > 0 {
			name = strings.TrimSpace(lines[i-1])
		}
		return parseLines(name, line, lines[i+1])
	}

	return nil, &FormatError{Reason: "no element line marker found"}
}

// parseLines builds an ElementSet from the located lines, pulling the NORAD
// catalog number from line 1 cols 3-7 and the epoch from cols 19-32.
func parseLines(name, line1, line2 string) (*ElementSet, error) {
	if len(line1) < 32 {
		return nil, &FormatError{Reason: fmt.Sprintf("line 1 too short (%d chars)", len(line1))}
	}

	noradStr := strings.TrimSpace(line1[2:7])
	noradID, err := strconv.Atoi(noradStr)
	if err != nil {
		return nil, &FormatError{Reason: fmt.Sprintf("invalid catalog number %q", noradStr)}
	}

	epochStr := strings.TrimSpace(line1[18:32])
	epoch, err := parseEpoch(epochStr)
	if err != nil {
		return nil, &FormatError{Reason: fmt.Sprintf("invalid epoch %q: %v", epochStr, err)}
	}

	return &ElementSet{
		NORADID: noradID,
		Name:    name,
		Epoch:   epoch,
		Line1:   line1,
		Line2:   line2,
	}, nil
}

// parseEpoch converts a TLE epoch in YYDDD.DDDDDDDD format to time.Time.
// Year 00-56 → 2000s, 57-99 → 1900s.
func parseEpoch(s string) (time.Time, error) {
	if len(s) < 5 {
		return time.Time{}, fmt.Errorf("epoch string too short: %q", s)
	}

	year, err := strconv.Atoi(s[:2])
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid epoch year %q: %w", s[:2], err)
	}
	if year >= 57 {
		year += 1900
	} else {
		year += 2000
	}

	dayOfYear, err := strconv.ParseFloat(s[2:], 64)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid epoch day %q: %w", s[2:], err)
	}

	// dayOfYear is 1-based: day 1 = Jan 1.
	t := time.Date(year, 1, 1, 0, 0, 0, 0, time.UTC)
	return t.Add(time.Duration((dayOfYear - 1) * float64(24*time.Hour))), nil
}
