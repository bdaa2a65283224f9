package analytics

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var ErrUnsupportedLocale = errors.New("unsupported locale")

const DefaultLocale = "pt-BR"

var (
	brazilianPortuguese = language.MustParse("pt-BR")

	supportedLocales = []language.Tag{brazilianPortuguese, language.English, language.Russian}
	localeMatcher    = language.NewMatcher(supportedLocales)

	// названия месяцев в нижнем регистре, заглавная буква ставится при создании
	monthNames = map[language.Tag][12]string{
		brazilianPortuguese: {"janeiro", "fevereiro", "março", "abril", "maio", "junho",
			"julho", "agosto", "setembro", "outubro", "novembro", "dezembro"},
		language.English: {"january", "february", "march", "april", "may", "june",
			"july", "august", "september", "october", "november", "december"},
		language.Russian: {"январь", "февраль", "март", "апрель", "май", "июнь",
			"июль", "август", "сентябрь", "октябрь", "ноябрь", "декабрь"},
	}
)

// MonthLabeler подписи месяцев вида "Janeiro 2025"
type MonthLabeler struct {
	tag   language.Tag
	names [12]string
}

func NewMonthLabeler(locale string) (*MonthLabeler, error) {
	if locale == "" {
		locale = DefaultLocale
	}
	requested, err := language.Parse(locale)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedLocale, locale)
	}
	_, idx, confidence := localeMatcher.Match(requested)
	if confidence == language.No {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedLocale, locale)
	}
	tag := supportedLocales[idx]

	// Caser хранит состояние, поэтому применяем его один раз здесь
	caser := cases.Title(tag)
	var names [12]string
	for i, name := range monthNames[tag] {
		names[i] = caser.String(name)
	}
	return &MonthLabeler{tag: tag, names: names}, nil
}

// DefaultMonthLabeler португальские подписи, как на дашборде
func DefaultMonthLabeler() *MonthLabeler {
	l, err := NewMonthLabeler(DefaultLocale)
	if err != nil {
		panic(err)
	}
	return l
}

func (l *MonthLabeler) Locale() string {
	return l.tag.String()
}

// Label подпись для месяца, в котором лежит t
func (l *MonthLabeler) Label(t time.Time) string {
	return l.names[t.Month()-1] + " " + strconv.Itoa(t.Year())
}
