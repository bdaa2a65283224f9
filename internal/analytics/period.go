package analytics

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/alligatorO15/fin-dashboard/internal/models"
)

var ErrInvalidPeriod = errors.New("invalid period")

// нижняя граница для all-time
var epochFloor = time.Unix(0, 0).UTC()

// ParsePreset принимает как полные имена, так и короткие алиасы фронта (3m, 6m, 1y, all)
func ParsePreset(s string) (models.PeriodPreset, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case string(models.PeriodLast3Months), "3m":
		return models.PeriodLast3Months, nil
	case string(models.PeriodLast6Months), "6m":
		return models.PeriodLast6Months, nil
	case string(models.PeriodLastYear), "1y", "12m":
		return models.PeriodLastYear, nil
	case string(models.PeriodAllTime), "all":
		return models.PeriodAllTime, nil
	}
	return "", fmt.Errorf("%w: unknown preset %q", ErrInvalidPeriod, s)
}

// ResolvePeriod превращает описание периода в конкретный диапазон дат.
// Явная пара дат передается как есть, даже если From > To: фильтр просто вернет пустой набор.
func ResolvePeriod(desc models.PeriodDescriptor, now time.Time) (models.DateRange, error) {
	if desc.From != nil && desc.To != nil {
		return models.DateRange{From: *desc.From, To: *desc.To}, nil
	}

	switch desc.Preset {
	case models.PeriodLast3Months:
		return models.DateRange{From: subMonths(now, 3), To: now}, nil
	case models.PeriodLast6Months:
		return models.DateRange{From: subMonths(now, 6), To: now}, nil
	case models.PeriodLastYear:
		return models.DateRange{From: subMonths(now, 12), To: now}, nil
	case models.PeriodAllTime:
		return models.DateRange{From: epochFloor, To: now}, nil
	case "":
		return models.DateRange{}, fmt.Errorf("%w: neither preset nor explicit from/to given", ErrInvalidPeriod)
	default:
		return models.DateRange{}, fmt.Errorf("%w: unknown preset %q", ErrInvalidPeriod, desc.Preset)
	}
}

// subMonths отнимает календарные месяцы, день прижимается к концу месяца (31 мая - 3 мес = 28/29 февраля)
func subMonths(t time.Time, n int) time.Time {
	y, m, d := t.Date()
	first := time.Date(y, m-time.Month(n), 1, 0, 0, 0, 0, t.Location())
	if last := daysInMonth(first); d > last {
		d = last
	}
	return time.Date(first.Year(), first.Month(), d, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}

func daysInMonth(t time.Time) int {
	return time.Date(t.Year(), t.Month()+1, 0, 0, 0, 0, 0, t.Location()).Day()
}
