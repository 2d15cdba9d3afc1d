package sanitizer

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

const (
	isoDateLayout     = "2006-01-02"
	isoDateTimeLayout = "2006-01-02T15:04:05Z"
)

var (
	reDatePrefix = regexp.MustCompile(`(?i)^Date:\s*`)

	// Matches are anchored at the start only; trailing text is ignored.
	reDate        = regexp.MustCompile(`^(\d{1,2})\s+([A-Za-z]{3}),?\s+(\d{4})`)
	reDateTime    = regexp.MustCompile(`^(\d{1,2})\s+([A-Za-z]{3}),?\s+(\d{4})\s+(\d{1,2}):(\d{2})`)
	reISODate     = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}`)
	reISODateTime = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}Z`)

	months = map[string]string{
		"Jan": "01", "Feb": "02", "Mar": "03", "Apr": "04",
		"May": "05", "Jun": "06", "Jul": "07", "Aug": "08",
		"Sep": "09", "Oct": "10", "Nov": "11", "Dec": "12",
	}

	datePipeline = Pipeline{
		func(s string) string { return reDatePrefix.ReplaceAllString(s, "") },
		strings.TrimSpace,
	}
)

// ParseDate converts "D[D] Mon[,] YYYY" (optionally prefixed by "Date:") to
// YYYY-MM-DD. An unknown month abbreviation maps to January. Results that
// are not calendar dates, such as day 45, yield nil.
func ParseDate(s string) *string {
	if s == "" {
		return nil
	}

	cleaned := datePipeline.Apply(s)
	if iso := reISODate.FindString(cleaned); iso != "" {
		return calendar(iso, isoDateLayout)
	}

	m := reDate.FindStringSubmatch(cleaned)
	if m == nil {
		return nil
	}
	return calendar(fmt.Sprintf("%s-%s-%s", m[3], monthNumber(m[2]), pad2(m[1])), isoDateLayout)
}

// ParseDateTime converts "D[D] Mon[,] YYYY H[H]:MM" to an ISO-8601 UTC
// timestamp with zero seconds. Impossible dates or clock times yield nil.
func ParseDateTime(s string) *string {
	if s == "" {
		return nil
	}

	cleaned := datePipeline.Apply(s)
	if iso := reISODateTime.FindString(cleaned); iso != "" {
		return calendar(iso, isoDateTimeLayout)
	}

	m := reDateTime.FindStringSubmatch(cleaned)
	if m == nil {
		return nil
	}
	out := fmt.Sprintf("%s-%s-%sT%s:%s:00Z", m[3], monthNumber(m[2]), pad2(m[1]), pad2(m[4]), m[5])
	return calendar(out, isoDateTimeLayout)
}

// calendar returns &s when s parses under layout.
func calendar(s, layout string) *string {
	if _, err := time.Parse(layout, s); err != nil {
		return nil
	}
	return &s
}

func monthNumber(abbr string) string {
	if n, ok := months[abbr]; ok {
		return n
	}
	return "01"
}

func pad2(s string) string {
	if len(s) == 1 {
		return "0" + s
	}
	return s
}
