// Package forecast projects monthly material demand with exponential smoothing.
package forecast

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"time"
)

// ErrInsufficientHistory is returned when fewer than two history points are given
var ErrInsufficientHistory = errors.New("at least 2 historical data points are required")

const (
	monthLayout  = "2006-01"
	yearlySeason = 12
	trendBeta    = 0.1
	seasonGamma  = 0.2
)

// zScores maps supported interval widths to normal quantiles
var zScores = map[float64]float64{
	0.50: 0.674,
	0.68: 1.0,
	0.80: 1.28,
	0.90: 1.645,
	0.95: 1.96,
	0.99: 2.576,
}

// Point is one month of observed demand
type Point struct {
	Month    string  `json:"month"` // YYYY-MM
	Quantity float64 `json:"quantity"`
}

// Parameters tune the smoothing model
type Parameters struct {
	Growth                string  `json:"growth"`           // linear | flat
	SeasonalityMode       string  `json:"seasonality_mode"` // additive | multiplicative
	YearlySeasonality     bool    `json:"yearly_seasonality"`
	ChangepointPriorScale float64 `json:"changepoint_prior_scale"`
	IntervalWidth         float64 `json:"interval_width"`
}

// DefaultParameters returns the parameters used when a request gives none
func DefaultParameters() Parameters {
	return Parameters{
		Growth:                "linear",
		SeasonalityMode:       "additive",
		YearlySeasonality:     true,
		ChangepointPriorScale: 0.05,
		IntervalWidth:         0.95,
	}
}

// Interval is a confidence band around one forecast value
type Interval struct {
	Lower int64 `json:"lower"`
	Upper int64 `json:"upper"`
}

// Metrics measure the in-sample fit
type Metrics struct {
	MAPE *float64 `json:"mape"` // nil when every actual is zero
	RMSE float64  `json:"rmse"`
	MAE  float64  `json:"mae"`
}

// Result is a demand projection for the requested number of months
type Result struct {
	Model     string     `json:"model"` // holt_winters | simple_exponential
	Months    []string   `json:"months"`
	Values    []int64    `json:"values"`
	Intervals []Interval `json:"confidence_intervals"`
	Metrics   Metrics    `json:"metrics"`
}

// Forecast fits the history and projects periods months past its last month.
// Histories shorter than a season use simple exponential smoothing.
func Forecast(history []Point, periods int, params Parameters) (*Result, error) {
	if len(history) < 2 {
		return nil, ErrInsufficientHistory
	}
	if periods <= 0 {
		return nil, fmt.Errorf("forecast periods must be positive, got %d", periods)
	}

	series, err := prepare(history)
	if err != nil {
		return nil, err
	}

	values := make([]float64, len(series))
	for i, s := range series {
		values[i] = s.quantity
	}

	alpha := math.Min(0.8, 0.2+params.ChangepointPriorScale)
	seasonLength := 1
	if params.YearlySeasonality {
		seasonLength = yearlySeason
	}

	var fc, fitted []float64
	model := "holt_winters"
	if len(values) < seasonLength {
		model = "simple_exponential"
		fc, fitted = simpleExponential(values, periods, alpha)
	} else {
		fc, fitted = holtWinters(values, periods, seasonLength, alpha, params)
	}

	result := &Result{
		Model:     model,
		Months:    futureMonths(series[len(series)-1].month, periods),
		Values:    make([]int64, periods),
		Intervals: make([]Interval, periods),
		Metrics:   metrics(values, fitted),
	}

	z, ok := zScores[params.IntervalWidth]
	if !ok {
		z = zScores[0.95]
	}
	stdErr := residualStdDev(values, fitted)

	for i, v := range fc {
		value := clampRound(v)
		result.Values[i] = value

		margin := z * stdErr * math.Sqrt(float64(i+1))
		lower, upper := float64(value)-margin, float64(value)+margin
		if math.IsNaN(margin) {
			lower, upper = float64(value)*0.8, float64(value)*1.2
		}
		result.Intervals[i] = Interval{Lower: clampRound(lower), Upper: clampRound(upper)}
	}

	return result, nil
}

type observation struct {
	month    time.Time
	quantity float64
}

func prepare(history []Point) ([]observation, error) {
	series := make([]observation, 0, len(history))
	for _, p := range history {
		month, err := time.Parse(monthLayout, p.Month)
		if err != nil {
			return nil, fmt.Errorf("invalid month %q (expected YYYY-MM): %w", p.Month, err)
		}
		series = append(series, observation{month: month, quantity: p.Quantity})
	}
	sort.SliceStable(series, func(i, j int) bool { return series[i].month.Before(series[j].month) })
	return series, nil
}

func futureMonths(last time.Time, periods int) []string {
	months := make([]string, periods)
	for i := range months {
		months[i] = last.AddDate(0, i+1, 0).Format(monthLayout)
	}
	return months
}

func simpleExponential(values []float64, periods int, alpha float64) (forecast, fitted []float64) {
	level := values[0]
	fitted = append(fitted, level)
	for _, v := range values[1:] {
		level = alpha*v + (1-alpha)*level
		fitted = append(fitted, level)
	}
	if math.IsNaN(level) {
		level = mean(values)
	}

	forecast = make([]float64, periods)
	for i := range forecast {
		forecast[i] = level
	}
	return forecast, fitted
}

func holtWinters(values []float64, periods, seasonLength int, alpha float64, params Parameters) (forecast, fitted []float64) {
	n := len(values)
	multiplicative := params.SeasonalityMode == "multiplicative"

	level := mean(values[:seasonLength])

	trend := 0.0
	if params.Growth != "flat" {
		if n > seasonLength {
			next := values[seasonLength:min(2*seasonLength, n)]
			trend = (mean(next) - level) / float64(seasonLength)
		} else {
			trend = (values[n-1] - values[0]) / math.Max(1, float64(n-1))
		}
	}

	seasonal := initialSeasonal(values, seasonLength, level, multiplicative)

	fitted = make([]float64, 0, n)
	for i, v := range values {
		idx := i % seasonLength
		s := seasonal[idx]
		if multiplicative {
			fitted = append(fitted, (level+trend)*s)
		} else {
			fitted = append(fitted, level+trend+s)
		}

		prevLevel := level
		if multiplicative && s > 0 {
			level = alpha*(v/s) + (1-alpha)*(level+trend)
		} else {
			level = alpha*(v-s) + (1-alpha)*(level+trend)
		}
		trend = trendBeta*(level-prevLevel) + (1-trendBeta)*trend

		if multiplicative && level > 0 {
			seasonal[idx] = seasonGamma*(v/level) + (1-seasonGamma)*s
		} else {
			seasonal[idx] = seasonGamma*(v-level) + (1-seasonGamma)*s
		}
	}

	forecast = make([]float64, periods)
	for i := range forecast {
		s := seasonal[(n+i)%seasonLength]
		var fc float64
		if multiplicative {
			fc = (level + trend*float64(i+1)) * s
		} else {
			fc = level + trend*float64(i+1) + s
		}
		if math.IsNaN(fc) || math.IsInf(fc, 0) {
			fc = level
		}
		forecast[i] = fc
	}
	return forecast, fitted
}

// initialSeasonal averages each season slot. Multiplicative factors are ratios
// normalised to mean 1; additive factors are offsets normalised to mean 0.
func initialSeasonal(values []float64, seasonLength int, level float64, multiplicative bool) []float64 {
	factors := make([]float64, seasonLength)
	for i := range factors {
		var slot []float64
		for j := i; j < len(values); j += seasonLength {
			slot = append(slot, values[j])
		}
		switch {
		case multiplicative && level > 0:
			factors[i] = mean(slot) / level
		case multiplicative:
			factors[i] = 1
		default:
			factors[i] = mean(slot) - level
		}
	}

	avg := mean(factors)
	for i := range factors {
		if multiplicative {
			if avg > 0 {
				factors[i] /= avg
			}
		} else {
			factors[i] -= avg
		}
	}
	return factors
}

func metrics(actual, fitted []float64) Metrics {
	var absSum, sqSum, pctSum float64
	nonZero := 0
	for i, y := range actual {
		diff := y - fitted[i]
		absSum += math.Abs(diff)
		sqSum += diff * diff
		if y != 0 {
			pctSum += math.Abs(diff / y)
			nonZero++
		}
	}

	n := float64(len(actual))
	m := Metrics{
		MAE:  absSum / n,
		RMSE: math.Sqrt(sqSum / n),
	}
	if nonZero > 0 {
		mape := pctSum / float64(nonZero) * 100
		m.MAPE = &mape
	}
	return m
}

// residualStdDev is the population standard deviation of the fit residuals
func residualStdDev(actual, fitted []float64) float64 {
	if len(actual) < 2 {
		return 0
	}
	residuals := make([]float64, len(actual))
	for i := range actual {
		residuals[i] = actual[i] - fitted[i]
	}
	mu := mean(residuals)
	var sum float64
	for _, r := range residuals {
		sum += (r - mu) * (r - mu)
	}
	return math.Sqrt(sum / float64(len(residuals)))
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func clampRound(v float64) int64 {
	if math.IsNaN(v) || v <= 0 {
		return 0
	}
	return int64(math.RoundToEven(v))
}
