package filter

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Kind is the type a comparison resolved to.
type Kind int

// Comparison kinds, in resolution order.
const (
	KindNumber Kind = iota
	KindDate
	KindString
)

func (k Kind) String() string {
	switch k {
	case KindNumber:
		return "number"
	case KindDate:
		return "date"
	default:
		return "string"
	}
}

// numberPattern is an optionally signed decimal with an optional exponent.
// Hex floats, digit separators and the Inf/NaN words are rejected.
var numberPattern = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?$`)

// ParseNumber parses s as a culture-invariant real number.
// Surrounding whitespace is ignored. Values overflowing float64 do not parse.
func ParseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if !numberPattern.MatchString(s) {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// dateLayouts are tried in order. Layouts with a zone come first so that an
// explicit offset is never dropped; zone-less values are read as UTC.
var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05Z0700",
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04:05 -0700",
	"2006-01-02 15:04:05 -0700 MST",
	time.RFC1123Z,
	time.RFC1123,
	time.RFC850,
	time.RFC822Z,
	time.RFC822,
	time.ANSIC,
	time.UnixDate,
	time.RubyDate,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-1-2",
	"2006/1/2",
	"2006/1/2 15:04:05",
	"2006/1/2 15:04",
	"1/2/2006",
	"1/2/2006 15:04:05",
	"1/2/2006 15:04",
	"1/2/2006 3:04:05 PM",
	"1/2/2006 3:04 PM",
	"January 2, 2006",
	"January 2, 2006 15:04:05",
	"Jan 2, 2006",
	"Jan 2, 2006 15:04:05",
	"2 January 2006",
	"2 Jan 2006",
	"2 Jan 2006 15:04:05",
	"Monday, January 2, 2006",
	"Monday, 02 January 2006 15:04:05",
}

// ParseDate parses s as a date/time using a fixed, locale-free layout list.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" || !containsDigit(s) {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func containsDigit(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= '0' && s[i] <= '9' {
			return true
		}
	}
	return false
}

// Operands is a cell and a literal resolved to a common kind.
type Operands struct {
	Kind Kind

	LeftNumber, RightNumber float64
	LeftTime, RightTime     time.Time
	LeftText, RightText     string
}

// Resolve picks the comparison kind for a cell/literal pair: number when both
// parse as numbers, else date when both parse as dates, else string.
func Resolve(cell, literal string) Operands {
	if l, ok := ParseNumber(cell); ok {
		if r, ok := ParseNumber(literal); ok {
			return Operands{Kind: KindNumber, LeftNumber: l, RightNumber: r}
		}
	}
	if l, ok := ParseDate(cell); ok {
		if r, ok := ParseDate(literal); ok {
			return Operands{Kind: KindDate, LeftTime: l, RightTime: r}
		}
	}
	return Operands{Kind: KindString, LeftText: cell, RightText: literal}
}

// compare orders the operands of a number or date pair: -1, 0 or 1.
func (o Operands) compare() int {
	switch o.Kind {
	case KindNumber:
		switch {
		case o.LeftNumber < o.RightNumber:
			return -1
		case o.LeftNumber > o.RightNumber:
			return 1
		}
		return 0
	default:
		return o.LeftTime.Compare(o.RightTime)
	}
}
