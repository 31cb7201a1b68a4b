// Package pivot computes and maintains the per-day support/resistance
// level sets derived from the prior day's daily candle.
package pivot

import (
	"math"

	"github.com/wfuentes35/codigo-fut/internal/model"
)

// Fibonacci retracement multipliers applied to the prior day's range.
const (
	fib382 = 0.382
	fib618 = 0.618
	fib100 = 1.000
)

// Fibonacci computes the classic pivot point with Fibonacci retracement
// levels from the prior day's high, low and close. Levels are rounded to
// 4 decimal places so repeated reads of a snapshot stay stable.
func Fibonacci(high, low, close float64) map[model.LevelKey]float64 {
	if high < low {
		high, low = low, high
	}
	rng := high - low
	pp := (high + low + close) / 3

	levels := map[model.LevelKey]float64{
		model.LevelPP: pp,
		model.LevelR1: pp + rng*fib382,
		model.LevelR2: pp + rng*fib618,
		model.LevelR3: pp + rng*fib100,
		model.LevelS1: pp - rng*fib382,
		model.LevelS2: pp - rng*fib618,
		model.LevelS3: pp - rng*fib100,
	}
	for k, v := range levels {
		levels[k] = round4(v)
	}
	return levels
}

func round4(v float64) float64 {
	return math.Round(v*1e4) / 1e4
}
