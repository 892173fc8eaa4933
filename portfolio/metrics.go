// Copyright 2021-2024
// SPDX-License-Identifier: Apache-2.0
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package portfolio

import (
	"math"
	"time"

	"gonum.org/v1/gonum/stat"
)

const tradingDaysPerYear = 252.0

type DrawDown struct {
	Begin       time.Time
	End         time.Time
	Recovery    time.Time
	LossPercent float64
}

// Metrics summarizes one cumulative return curve of a Comparison
type Metrics struct {
	Name        string
	TotalReturn float64
	CAGR        float64
	StdDev      float64
	BestDay     float64
	WorstDay    float64
	MaxDrawDown *DrawDown
}

// AllDrawDowns returns every peak-to-recovery decline of the cumulative curve.
// A drawdown still open at the last date is included with a zero Recovery.
func AllDrawDowns(dates []time.Time, cumulative []float64) []*DrawDown {
	allDrawDowns := []*DrawDown{}
	if len(cumulative) < 2 {
		return allDrawDowns
	}

	peak := cumulative[0]
	var drawDown *DrawDown
	prev := dates[0]
	for idx, value := range cumulative {
		peak = math.Max(peak, value)
		diff := value - peak
		if diff < 0 {
			loss := value/peak - 1.0
			if drawDown == nil {
				drawDown = &DrawDown{
					Begin:       prev,
					End:         dates[idx],
					LossPercent: loss,
				}
			}

			if loss < drawDown.LossPercent {
				drawDown.End = dates[idx]
				drawDown.LossPercent = loss
			}
		} else if drawDown != nil {
			drawDown.Recovery = dates[idx]
			allDrawDowns = append(allDrawDowns, drawDown)
			drawDown = nil
		}
		prev = dates[idx]
	}

	if drawDown != nil {
		allDrawDowns = append(allDrawDowns, drawDown)
	}

	return allDrawDowns
}

// MaxDrawDown returns the deepest drawdown or nil if the curve never declined
func MaxDrawDown(dates []time.Time, cumulative []float64) *DrawDown {
	var maxDrawDown *DrawDown
	for _, dd := range AllDrawDowns(dates, cumulative) {
		if maxDrawDown == nil || dd.LossPercent < maxDrawDown.LossPercent {
			maxDrawDown = dd
		}
	}
	return maxDrawDown
}

// Summarize computes the metrics of a cumulative curve that starts at 1.0
// growth. daily holds the one period return factors used to chain it.
func Summarize(name string, dates []time.Time, daily, cumulative []float64) *Metrics {
	m := &Metrics{
		Name:     name,
		CAGR:     math.NaN(),
		StdDev:   math.NaN(),
		BestDay:  math.NaN(),
		WorstDay: math.NaN(),
	}

	if len(cumulative) == 0 {
		m.TotalReturn = math.NaN()
		return m
	}

	last := cumulative[len(cumulative)-1]
	m.TotalReturn = last - 1.0

	years := dates[len(dates)-1].Sub(dates[0]).Hours() / 24 / 365.25
	if years > 0 && last > 0 {
		m.CAGR = math.Pow(last, 1.0/years) - 1.0
	}

	returns := make([]float64, len(daily))
	for idx, factor := range daily {
		returns[idx] = factor - 1.0
	}
	if len(returns) > 0 {
		m.BestDay = returns[0]
		m.WorstDay = returns[0]
		for _, r := range returns[1:] {
			m.BestDay = math.Max(m.BestDay, r)
			m.WorstDay = math.Min(m.WorstDay, r)
		}
	}
	if len(returns) > 1 {
		m.StdDev = stat.StdDev(returns, nil) * math.Sqrt(tradingDaysPerYear)
	}

	m.MaxDrawDown = MaxDrawDown(dates, cumulative)
	return m
}

// Summary returns the metrics of the benchmark, the actual portfolio and the
// copy-trade portfolio in that order
func (cmp *Comparison) Summary() []*Metrics {
	benchmark, _ := cmp.Frame.Split(BenchmarkCumulative)
	benchmarkDaily := benchmark.Div(benchmark.Lag(1, 1.0))

	return []*Metrics{
		Summarize(cmp.Benchmark, cmp.Calendar, benchmarkDaily.Vals[0], benchmark.Vals[0]),
		Summarize("Actual", cmp.Calendar, cmp.Column(ActualDaily), cmp.Column(ActualCumulative)),
		Summarize("Copy", cmp.Calendar, cmp.Column(CopyDaily), cmp.Column(CopyCumulative)),
	}
}
