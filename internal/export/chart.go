// Package export рендерит результаты аналитики в PNG
package export

import (
	"bytes"
	"errors"
	"fmt"
	"time"

	"github.com/alligatorO15/fin-dashboard/internal/analytics"
	"github.com/alligatorO15/fin-dashboard/internal/models"
	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

var ErrNotEnoughData = errors.New("not enough data to draw a chart")

const (
	chartWidth  = 900
	chartHeight = 400
)

// hex для токенов hsl(var(--chart-N)) из светлой темы дашборда
var tokenHex = []string{"e76e50", "2a9d90", "274754", "e8c468", "f4a462"}

var (
	incomeColor  = drawing.ColorFromHex("16a34a")
	expenseColor = drawing.ColorFromHex("dc2626")
	balanceColor = drawing.ColorFromHex("2563eb")
)

func tokenColor(token string, fallback int) drawing.Color {
	for i, t := range analytics.ChartColors {
		if t == token && i < len(tokenHex) {
			return drawing.ColorFromHex(tokenHex[i])
		}
	}
	return drawing.ColorFromHex(tokenHex[fallback%len(tokenHex)])
}

func monthTime(key string) (time.Time, error) {
	return time.Parse("2006-01", key)
}

// RenderTrendChart линии по категориям, по одной точке на месяц
func RenderTrendChart(series []models.CategoryTrendSeries) ([]byte, error) {
	if len(series) == 0 {
		return nil, fmt.Errorf("%w: no series", ErrNotEnoughData)
	}

	var lines []chart.Series
	var all []float64
	for i, s := range series {
		if len(s.Points) < 2 {
			return nil, fmt.Errorf("%w: need at least 2 months, got %d", ErrNotEnoughData, len(s.Points))
		}

		xValues := make([]time.Time, len(s.Points))
		yValues := make([]float64, len(s.Points))
		for j, p := range s.Points {
			month, err := monthTime(p.Month)
			if err != nil {
				return nil, fmt.Errorf("bad month key %q: %w", p.Month, err)
			}
			xValues[j] = month
			yValues[j] = p.Amount.InexactFloat64()
		}
		all = append(all, yValues...)

		lines = append(lines, chart.TimeSeries{
			Name: s.Category,
			Style: chart.Style{
				StrokeColor: tokenColor(s.Color, i),
				StrokeWidth: 2,
			},
			XValues: xValues,
			YValues: yValues,
		})
	}

	return render("Spending by category", lines, all)
}

// RenderMonthlyChart доходы, расходы и баланс по месяцам
func RenderMonthlyChart(rollups []models.MonthlyRollup) ([]byte, error) {
	if len(rollups) < 2 {
		return nil, fmt.Errorf("%w: need at least 2 months, got %d", ErrNotEnoughData, len(rollups))
	}

	xValues := make([]time.Time, len(rollups))
	income := make([]float64, len(rollups))
	expense := make([]float64, len(rollups))
	balance := make([]float64, len(rollups))
	for i, r := range rollups {
		month, err := monthTime(r.Month)
		if err != nil {
			return nil, fmt.Errorf("bad month key %q: %w", r.Month, err)
		}
		xValues[i] = month
		income[i] = r.Income.InexactFloat64()
		expense[i] = r.Expense.InexactFloat64()
		balance[i] = r.Balance.InexactFloat64()
	}

	lines := []chart.Series{
		chart.TimeSeries{
			Name:    "Income",
			Style:   chart.Style{StrokeColor: incomeColor, StrokeWidth: 2},
			XValues: xValues,
			YValues: income,
		},
		chart.TimeSeries{
			Name:    "Expense",
			Style:   chart.Style{StrokeColor: expenseColor, StrokeWidth: 2},
			XValues: xValues,
			YValues: expense,
		},
		chart.TimeSeries{
			Name: "Balance",
			Style: chart.Style{
				StrokeColor:     balanceColor,
				StrokeWidth:     1.5,
				StrokeDashArray: []float64{5.0, 3.0},
			},
			XValues: xValues,
			YValues: balance,
		},
	}

	all := append(append(append([]float64{}, income...), expense...), balance...)
	return render("Monthly cash flow", lines, all)
}

func render(title string, series []chart.Series, values []float64) ([]byte, error) {
	graph := chart.Chart{
		Title:  title,
		Width:  chartWidth,
		Height: chartHeight,
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 10, Right: 20, Bottom: 10},
		},
		XAxis: chart.XAxis{
			TickPosition: chart.TickPositionBetweenTicks,
			ValueFormatter: func(v interface{}) string {
				if t, ok := v.(float64); ok {
					return chart.TimeFromFloat64(t).Format("Jan 06")
				}
				return ""
			},
		},
		YAxis: chart.YAxis{
			ValueFormatter: func(v interface{}) string {
				if f, ok := v.(float64); ok {
					return fmt.Sprintf("%.0f", f)
				}
				return ""
			},
		},
		Series: series,
	}

	// go-chart не рисует нулевой диапазон по Y
	if lo, hi := bounds(values); lo == hi {
		graph.YAxis.Range = &chart.ContinuousRange{Min: lo, Max: lo + 1}
	}

	graph.Elements = []chart.Renderable{
		chart.LegendLeft(&graph),
	}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("chart render failed: %w", err)
	}
	return buf.Bytes(), nil
}

func bounds(values []float64) (float64, float64) {
	if len(values) == 0 {
		return 0, 0
	}
	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	return lo, hi
}
