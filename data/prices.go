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

package data

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/penny-vault/copytrade/common"
	"github.com/penny-vault/copytrade/dataframe"
)

// PriceSeries is the long-format (ticker, date, close, return factor) table
// for every symbol of a run plus the trading calendar taken from the
// benchmark.
type PriceSeries struct {
	Benchmark    string
	Begin        time.Time
	End          time.Time
	Observations []*PriceObservation

	calendar []time.Time
	tickers  []string
	byTicker map[string][]*PriceObservation
	lookup   map[string]map[time.Time]*PriceObservation
}

// NewPriceSeries converts a wide close-price dataframe into a PriceSeries.
// Each ticker's return factor is computed independently over the days it has a
// valid close; missing (NaN) and non-positive closes are excluded. The calendar
// is the set of days in [begin, end] on which the benchmark has a close.
func NewPriceSeries(closes *dataframe.DataFrame[time.Time], benchmark string, begin, end time.Time) (*PriceSeries, error) {
	benchmark = strings.ToUpper(strings.TrimSpace(benchmark))
	begin = common.TradeDay(begin)
	end = common.TradeDay(end)

	if end.Before(begin) {
		return nil, ErrInvalidTimeRange
	}

	cleaned := closes.Copy()
	for _, col := range cleaned.Vals {
		for idx, val := range col {
			if val <= 0 || math.IsInf(val, 0) {
				col[idx] = math.NaN()
			}
		}
	}
	factors := cleaned.ReturnFactors()

	ps := &PriceSeries{
		Benchmark:    benchmark,
		Begin:        begin,
		End:          end,
		Observations: make([]*PriceObservation, 0, cleaned.Len()*cleaned.ColCount()),
		byTicker:     make(map[string][]*PriceObservation, cleaned.ColCount()),
		lookup:       make(map[string]map[time.Time]*PriceObservation, cleaned.ColCount()),
	}

	order := make([]int, cleaned.ColCount())
	for idx := range order {
		order[idx] = idx
	}
	sort.SliceStable(order, func(i, j int) bool {
		return strings.ToUpper(cleaned.ColNames[order[i]]) < strings.ToUpper(cleaned.ColNames[order[j]])
	})

	for _, colIdx := range order {
		ticker := strings.ToUpper(cleaned.ColNames[colIdx])
		dropped := 0
		for rowIdx, dt := range cleaned.Index {
			closePrice := cleaned.Vals[colIdx][rowIdx]
			if math.IsNaN(closePrice) {
				dropped++
				continue
			}

			obs := &PriceObservation{
				Ticker:       ticker,
				Date:         common.TradeDay(dt),
				Close:        closePrice,
				ReturnFactor: factors.Vals[colIdx][rowIdx],
			}

			ps.Observations = append(ps.Observations, obs)
			ps.byTicker[ticker] = append(ps.byTicker[ticker], obs)
			if _, ok := ps.lookup[ticker]; !ok {
				ps.lookup[ticker] = make(map[time.Time]*PriceObservation, cleaned.Len())
			}
			ps.lookup[ticker][obs.Date] = obs
		}

		if _, ok := ps.byTicker[ticker]; ok {
			ps.tickers = append(ps.tickers, ticker)
		}

		if dropped > 0 {
			log.Debug().Str("Ticker", ticker).Int("Dropped", dropped).Msg("excluded days without a close price")
		}
	}

	if len(ps.Observations) == 0 {
		return nil, fmt.Errorf("%w: no observations between %s and %s", ErrNoData, begin.Format(common.DateFormat), end.Format(common.DateFormat))
	}

	for _, obs := range ps.byTicker[benchmark] {
		if obs.Date.Before(begin) || obs.Date.After(end) {
			continue
		}
		ps.calendar = append(ps.calendar, obs.Date)
	}

	if len(ps.calendar) == 0 {
		return nil, fmt.Errorf("%w: benchmark %s has no trading days between %s and %s", ErrNoData, benchmark, begin.Format(common.DateFormat), end.Format(common.DateFormat))
	}

	return ps, nil
}

// Calendar returns the benchmark's trading days in ascending order
func (ps *PriceSeries) Calendar() []time.Time {
	return ps.calendar
}

// Tickers returns every ticker with at least one observation, sorted
func (ps *PriceSeries) Tickers() []string {
	return ps.tickers
}

// Lookup returns the observation for ticker on date
func (ps *PriceSeries) Lookup(ticker string, date time.Time) (*PriceObservation, bool) {
	byDate, ok := ps.lookup[ticker]
	if !ok {
		return nil, false
	}
	obs, ok := byDate[common.TradeDay(date)]
	return obs, ok
}

// Series returns the date ordered observations of ticker
func (ps *PriceSeries) Series(ticker string) []*PriceObservation {
	return ps.byTicker[strings.ToUpper(ticker)]
}

// BenchmarkFactors returns the benchmark's daily return factors on the
// calendar as a single column dataframe named after the benchmark
func (ps *PriceSeries) BenchmarkFactors() *dataframe.DataFrame[time.Time] {
	df := &dataframe.DataFrame[time.Time]{
		ColNames: []string{ps.Benchmark},
	}
	for _, dt := range ps.calendar {
		obs, _ := ps.Lookup(ps.Benchmark, dt)
		df.InsertRow(dt, obs.ReturnFactor)
	}
	return df
}
