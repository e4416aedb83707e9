package templates

import (
	"html/template"
	"strconv"
	"strings"
	"time"
)

func funcMap() template.FuncMap {
	return template.FuncMap{
		"currency":  FormatCurrency,
		"date":      FormatDate,
		"datetime":  FormatDateTime,
		"dash":      orDash,
		"upper":     strings.ToUpper,
		"barHeight": BarHeight,
		"add":       func(a, b int) int { return a + b },
		"sub":       func(a, b int) int { return a - b },
	}
}

// FormatCurrency renders an amount as rupees with Indian digit grouping
// (last three digits, then pairs): 1234567 -> ₹12,34,567.
func FormatCurrency(amount float64) string {
	negative := amount < 0
	if negative {
		amount = -amount
	}
	s := strconv.FormatFloat(amount, 'f', 0, 64)

	var grouped string
	if len(s) > 3 {
		head := s[:len(s)-3]
		grouped = "," + s[len(s)-3:]
		for len(head) > 2 {
			grouped = "," + head[len(head)-2:] + grouped
			head = head[:len(head)-2]
		}
		grouped = head + grouped
	} else {
		grouped = s
	}

	if negative {
		return "-₹" + grouped
	}
	return "₹" + grouped
}

// FormatDate renders a date value as "2 Jan"; values that do not parse are
// returned as-is.
func FormatDate(value string) string {
	t, ok := parseTime(value)
	if !ok {
		return value
	}
	return t.Format("2 Jan")
}

// FormatDateTime renders a timestamp as "02 Jan 2006, 15:04"; empty values
// become a dash, unparseable ones are returned as-is.
func FormatDateTime(value string) string {
	if value == "" {
		return "-"
	}
	t, ok := parseTime(value)
	if !ok {
		return value
	}
	return t.Format("02 Jan 2006, 15:04")
}

func parseTime(value string) (time.Time, bool) {
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, value); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func orDash(value string) string {
	if value == "" {
		return "-"
	}
	return value
}

// BarHeight scales a revenue bucket against the chart maximum, in pixels
// with a 4px floor so tiny buckets stay visible.
func BarHeight(revenue, max float64) int {
	if max <= 0 {
		return 4
	}
	height := int(revenue / max * 200)
	if height < 4 {
		return 4
	}
	return height
}
