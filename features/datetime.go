package features

import (
	"strconv"
	"strings"

	"github.com/YuminosukeSato/shelterml/dataset"
	perrors "github.com/YuminosukeSato/shelterml/pkg/errors"
)

// Timestamp is a civil date and wall-clock time without a zone.
type Timestamp struct {
	Year, Month, Day     int
	Hour, Minute, Second int
}

// ParseTimestamp parses "YYYY-MM-DD HH:MM[:SS]".
func ParseTimestamp(s string) (Timestamp, error) {
	bad := func(reason string) (Timestamp, error) {
		return Timestamp{}, perrors.NewMalformedValueError(dataset.ColDateTime, s, reason)
	}

	date, clock, ok := strings.Cut(strings.TrimSpace(s), " ")
	if !ok {
		return bad(`expected "YYYY-MM-DD HH:MM[:SS]"`)
	}
	d, err := splitInts(date, "-", 3, 3)
	if err != nil {
		return bad("date is not YYYY-MM-DD")
	}
	c, err := splitInts(strings.TrimSpace(clock), ":", 2, 3)
	if err != nil {
		return bad("time is not HH:MM[:SS]")
	}

	ts := Timestamp{Year: d[0], Month: d[1], Day: d[2], Hour: c[0], Minute: c[1]}
	if len(c) == 3 {
		ts.Second = c[2]
	}
	if ts.Month < 1 || ts.Month > 12 || ts.Day < 1 || ts.Day > daysIn(ts.Year, ts.Month) {
		return bad("date out of range")
	}
	if ts.Hour > 23 || ts.Minute > 59 || ts.Second > 59 {
		return bad("time out of range")
	}
	return ts, nil
}

func splitInts(s, sep string, minParts, maxParts int) ([]int, error) {
	fields := strings.Split(s, sep)
	if len(fields) < minParts || len(fields) > maxParts {
		return nil, perrors.Newf("want %d..%d fields, got %d", minParts, maxParts, len(fields))
	}
	out := make([]int, len(fields))
	for i, f := range fields {
		v, err := strconv.Atoi(f)
		if err != nil || v < 0 {
			return nil, perrors.Newf("field %q is not a non-negative integer", f)
		}
		out[i] = v
	}
	return out, nil
}

func isLeap(y int) bool {
	return y%4 == 0 && (y%100 != 0 || y%400 == 0)
}

func daysIn(y, m int) int {
	switch m {
	case 2:
		if isLeap(y) {
			return 29
		}
		return 28
	case 4, 6, 9, 11:
		return 30
	default:
		return 31
	}
}

// DaysFromCivil returns the number of days between 1970-01-01 and the given
// proleptic Gregorian date.
func DaysFromCivil(y, m, d int) int {
	if m <= 2 {
		y--
	}
	era := y / 400
	if y < 0 && y%400 != 0 {
		era--
	}
	yoe := y - era*400
	mp := (m + 9) % 12
	doy := (153*mp+2)/5 + d - 1
	doe := yoe*365 + yoe/4 - yoe/100 + doy
	return era*146097 + doe - 719468
}

// Weekday returns the day of week with Monday = 0 and Sunday = 6.
func (t Timestamp) Weekday() int {
	// 1970-01-01 は木曜日 (3)
	return ((DaysFromCivil(t.Year, t.Month, t.Day) % 7) + 7 + 3) % 7
}

// DateTimeStep emits Year, Month, Day, Hour, Minute and Weekday.
type DateTimeStep struct{}

func (DateTimeStep) Name() string { return "datetime" }

func (DateTimeStep) Columns() []string {
	return []string{"Year", "Month", "Day", "Hour", "Minute", "Weekday"}
}

func (DateTimeStep) Extract(rec dataset.Record, dst []float64) error {
	ts, err := ParseTimestamp(rec.DateTime)
	if err != nil {
		return err
	}
	dst[0] = float64(ts.Year)
	dst[1] = float64(ts.Month)
	dst[2] = float64(ts.Day)
	dst[3] = float64(ts.Hour)
	dst[4] = float64(ts.Minute)
	dst[5] = float64(ts.Weekday())
	return nil
}
