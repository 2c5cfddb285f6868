// Package indicators implements batch technical indicators over aligned
// float slices. Every function returns a slice the same length as its
// input; positions where the indicator is undefined hold NaN.
package indicators

import "math"

// EMA computes an exponentially weighted moving average with smoothing
// factor 2/(period+1) and expanding-window normalization, so early values
// are averages of the observations seen so far rather than seeded from the
// first sample. The incremental form keeps the average exact on constant
// input: the update term vanishes when v equals the running value, so two
// EMAs of different periods agree bit-for-bit on a flat series.
func EMA(values []float64, period int) []float64 {
	out := make([]float64, len(values))
	if len(values) == 0 {
		return out
	}
	alpha := 2.0 / (float64(period) + 1.0)
	decay := 1.0 - alpha
	prev := values[0]
	out[0] = prev
	decayPow := decay
	for i := 1; i < len(values); i++ {
		decayPow *= decay
		w := alpha / (1.0 - decayPow)
		prev += w * (values[i] - prev)
		out[i] = prev
	}
	return out
}

// SMA computes a rolling simple average over a fixed window. The first
// period-1 positions are NaN.
func SMA(values []float64, period int) []float64 {
	out := make([]float64, len(values))
	var sum float64
	for i := range values {
		sum += values[i]
		if i >= period {
			sum -= values[i-period]
		}
		if i >= period-1 {
			out[i] = sum / float64(period)
		} else {
			out[i] = math.NaN()
		}
	}
	return out
}

// RSI computes the relative strength index using rolling simple averages
// of gains and losses (not Wilder smoothing). The first period positions
// are NaN. When the average loss is zero the value is 100 if there were
// gains in the window and 50 if the window was completely flat.
func RSI(values []float64, period int) []float64 {
	out := make([]float64, len(values))
	for i := range out {
		out[i] = math.NaN()
	}
	if len(values) <= period {
		return out
	}

	gains := make([]float64, len(values))
	losses := make([]float64, len(values))
	for i := 1; i < len(values); i++ {
		delta := values[i] - values[i-1]
		if delta > 0 {
			gains[i] = delta
		} else {
			losses[i] = -delta
		}
	}

	var gainSum, lossSum float64
	for i := 1; i < len(values); i++ {
		gainSum += gains[i]
		lossSum += losses[i]
		if i > period {
			gainSum -= gains[i-period]
			lossSum -= losses[i-period]
		}
		if i < period {
			continue
		}
		avgGain := gainSum / float64(period)
		avgLoss := lossSum / float64(period)
		switch {
		case avgLoss == 0 && avgGain == 0:
			out[i] = 50
		case avgLoss == 0:
			out[i] = 100
		default:
			rs := avgGain / avgLoss
			out[i] = 100 - 100/(1+rs)
		}
	}
	return out
}

// MACD computes the moving average convergence divergence: the fast EMA
// minus the slow EMA, a signal EMA of that line, and their difference as
// the histogram.
func MACD(values []float64, fast, slow, signalPeriod int) (line, signal, histogram []float64) {
	fastEMA := EMA(values, fast)
	slowEMA := EMA(values, slow)
	line = make([]float64, len(values))
	for i := range values {
		line[i] = fastEMA[i] - slowEMA[i]
	}
	signal = EMA(line, signalPeriod)
	histogram = make([]float64, len(values))
	for i := range values {
		histogram[i] = line[i] - signal[i]
	}
	return line, signal, histogram
}

// Bollinger computes Bollinger bands: a rolling mean plus/minus stdDev
// rolling sample standard deviations. Undefined positions are NaN.
func Bollinger(values []float64, period int, stdDev float64) (upper, middle, lower []float64) {
	middle = SMA(values, period)
	upper = make([]float64, len(values))
	lower = make([]float64, len(values))
	for i := range values {
		if i < period-1 {
			upper[i] = math.NaN()
			lower[i] = math.NaN()
			continue
		}
		mean := middle[i]
		var ss float64
		for j := i - period + 1; j <= i; j++ {
			d := values[j] - mean
			ss += d * d
		}
		sd := math.Sqrt(ss / float64(period-1))
		upper[i] = mean + stdDev*sd
		lower[i] = mean - stdDev*sd
	}
	return upper, middle, lower
}

// Stochastic computes the stochastic oscillator: %K from the position of
// the close within the rolling high-low range, %D as an SMA of %K. A flat
// range yields 50.
func Stochastic(highs, lows, closes []float64, kPeriod, dPeriod int) (k, d []float64) {
	k = make([]float64, len(closes))
	for i := range closes {
		if i < kPeriod-1 {
			k[i] = math.NaN()
			continue
		}
		hi := math.Inf(-1)
		lo := math.Inf(1)
		for j := i - kPeriod + 1; j <= i; j++ {
			hi = math.Max(hi, highs[j])
			lo = math.Min(lo, lows[j])
		}
		if hi == lo {
			k[i] = 50
			continue
		}
		k[i] = 100 * (closes[i] - lo) / (hi - lo)
	}
	d = rollingMeanNaN(k, dPeriod)
	return k, d
}

// rollingMeanNaN averages a fixed window, propagating NaN until the window
// holds only defined values.
func rollingMeanNaN(values []float64, period int) []float64 {
	out := make([]float64, len(values))
	for i := range values {
		if i < period-1 {
			out[i] = math.NaN()
			continue
		}
		var sum float64
		ok := true
		for j := i - period + 1; j <= i; j++ {
			if math.IsNaN(values[j]) {
				ok = false
				break
			}
			sum += values[j]
		}
		if !ok {
			out[i] = math.NaN()
			continue
		}
		out[i] = sum / float64(period)
	}
	return out
}

// Mean returns the arithmetic mean of values, NaN for an empty slice.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return math.NaN()
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}
