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
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/penny-vault/copytrade/common"
	"github.com/penny-vault/copytrade/data"
	"github.com/penny-vault/copytrade/dataframe"
)

const ReturnColumn = "Return"

// Attribution is the per-holding and per-day return breakdown of one
// holdings ledger
type Attribution struct {
	Rows  []*PortfolioDayRow
	Daily []*DailyReturn

	// Degenerate lists dates excluded because the portfolio had no positive value
	Degenerate []time.Time
}

// Aggregate values every snapshot at the day's close and blends the holdings'
// return factors, weighted by value, into one daily return per date.
// Snapshots without a close on their date are left out (inner join). A date
// whose total value is not positive is excluded and listed in Degenerate.
func Aggregate(ledger []*PositionSnapshot, prices *data.PriceSeries) *Attribution {
	att := &Attribution{
		Rows:  make([]*PortfolioDayRow, 0, len(ledger)),
		Daily: make([]*DailyReturn, 0),
	}

	unpriced := 0
	for start := 0; start < len(ledger); {
		date := ledger[start].Date
		end := start
		for end < len(ledger) && ledger[end].Date.Equal(date) {
			end++
		}

		rows := make([]*PortfolioDayRow, 0, end-start)
		total := 0.0
		for _, snap := range ledger[start:end] {
			obs, ok := prices.Lookup(snap.Ticker, snap.Date)
			if !ok {
				unpriced++
				continue
			}
			value := snap.Shares * obs.Close
			total += value
			rows = append(rows, &PortfolioDayRow{
				Date:         snap.Date,
				Ticker:       snap.Ticker,
				Shares:       snap.Shares,
				Close:        obs.Close,
				Value:        value,
				ReturnFactor: obs.ReturnFactor,
			})
		}
		start = end

		if len(rows) == 0 {
			continue
		}

		if total <= 0 {
			err := fmt.Errorf("%w: %.4f on %s", ErrDegenerateValue, total, date.Format(common.DateFormat))
			log.Warn().Err(err).Time("Date", date).Float64("TotalValue", total).Msg("excluding date from portfolio return")
			att.Degenerate = append(att.Degenerate, date)
			continue
		}

		daily := &DailyReturn{
			Date:       date,
			TotalValue: total,
			NumHolding: len(rows),
		}
		for _, row := range rows {
			row.TotalValue = total
			row.Weight = row.Value / total
			row.Contribution = row.Weight * row.ReturnFactor
			daily.Return += row.Contribution
		}

		att.Rows = append(att.Rows, rows...)
		att.Daily = append(att.Daily, daily)
	}

	if unpriced > 0 {
		log.Debug().Int("Unpriced", unpriced).Msg("holdings without a close were left out of the return")
	}

	return att
}

// Frame returns the daily returns as a date indexed dataframe with a single
// Return column
func (att *Attribution) Frame() *dataframe.DataFrame[time.Time] {
	df := &dataframe.DataFrame[time.Time]{
		Index:    make([]time.Time, len(att.Daily)),
		ColNames: []string{ReturnColumn},
		Vals:     [][]float64{make([]float64, len(att.Daily))},
	}
	for idx, daily := range att.Daily {
		df.Index[idx] = daily.Date
		df.Vals[0][idx] = daily.Return
	}
	return df
}
