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
	"sort"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/penny-vault/copytrade/common"
)

// sharesEpsilon is the smallest position still considered held; anything at
// or below it is floating point noise left by a full liquidation
const sharesEpsilon = 1.0e-9

// Reconstruct walks the trading calendar in order and returns the positions
// held at the close of every day. Transactions are keyed on the date chosen by
// field. All transactions keyed on the same day are summed per ticker before
// being applied; a ticker whose running quantity falls to zero or below is
// removed and a later purchase starts it again from zero. Days without
// activity carry the previous positions forward.
//
// A keyed date that is not a trading day is applied on the next trading day.
// Dates before the first trading day are applied on the first day and dates
// after the last trading day are ignored.
//
// A position at or below 1e-9 shares counts as closed and is evicted.
func Reconstruct(calendar []time.Time, valued []*ValuedTransaction, field DateField) []*PositionSnapshot {
	subLog := log.With().Stringer("DateField", field).Logger()

	if len(calendar) == 0 {
		return []*PositionSnapshot{}
	}

	// bucket transactions by the calendar index they are applied on
	type tickerDelta struct {
		ticker string
		shares float64
	}
	pending := make(map[int][]tickerDelta)
	ignored := 0
	for _, trx := range valued {
		keyed := common.TradeDay(field.Of(trx.Transaction))
		idx := sort.Search(len(calendar), func(i int) bool {
			return !calendar[i].Before(keyed)
		})
		if idx == len(calendar) {
			ignored++
			continue
		}
		if !calendar[idx].Equal(keyed) {
			subLog.Debug().Str("Ticker", trx.Ticker).Time("KeyedDate", keyed).Time("AppliedDate", calendar[idx]).Msg("transaction rolled forward to the next trading day")
		}
		pending[idx] = append(pending[idx], tickerDelta{ticker: trx.Ticker, shares: trx.Shares})
	}

	if ignored > 0 {
		subLog.Debug().Int("Ignored", ignored).Time("LastTradingDay", calendar[len(calendar)-1]).Msg("transactions keyed after the last trading day")
	}

	holdings := make(map[string]float64)
	snapshots := make([]*PositionSnapshot, 0, len(calendar))

	for idx, date := range calendar {
		if deltas, ok := pending[idx]; ok {
			daySums := make(map[string]float64, len(deltas))
			for _, delta := range deltas {
				daySums[delta.ticker] += delta.shares
			}

			for ticker, shares := range daySums {
				holdings[ticker] += shares
				if holdings[ticker] <= sharesEpsilon {
					delete(holdings, ticker)
					subLog.Debug().Str("Ticker", ticker).Time("Date", date).Msg("position closed")
				}
			}
		}

		tickers := make([]string, 0, len(holdings))
		for ticker := range holdings {
			tickers = append(tickers, ticker)
		}
		sort.Strings(tickers)

		for _, ticker := range tickers {
			snapshots = append(snapshots, &PositionSnapshot{
				Date:   date,
				Ticker: ticker,
				Shares: holdings[ticker],
			})
		}
	}

	subLog.Debug().Int("NumSnapshots", len(snapshots)).Int("NumDays", len(calendar)).Msg("reconstructed holdings")

	return snapshots
}
