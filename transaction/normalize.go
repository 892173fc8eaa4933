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

package transaction

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/penny-vault/copytrade/common"
)

// Normalize parses records into transactions executed after opts.Cutoff.
// Every kind that does not contain "purchase" decreases the position and is
// stored with a negative amount. Tickers are upper-cased and renamed through
// the alias table. The result is sorted by execution date; transactions
// executed on the same day keep their input order.
func Normalize(records []*Record, opts Options) ([]*Transaction, error) {
	aliases := opts.Aliases
	if aliases == nil {
		aliases = DefaultAliases
	}

	cutoff := time.Time{}
	if !opts.Cutoff.IsZero() {
		cutoff = common.TradeDay(opts.Cutoff)
	}

	representative := strings.TrimSpace(opts.Representative)

	trxs := make([]*Transaction, 0, len(records))
	skipped := 0
	for _, rec := range records {
		trx, err := parseRecord(rec)
		if err != nil {
			log.Error().Err(err).Object("Record", rec).Msg("could not parse transaction")
			return nil, err
		}

		if !cutoff.IsZero() && !trx.ExecutionDate.After(cutoff) {
			continue
		}

		if representative != "" && !strings.EqualFold(trx.Representative, representative) {
			continue
		}

		if trx.Ticker == "" || trx.Ticker == "--" {
			skipped++
			log.Warn().Object("Record", rec).Msg("skipping transaction without a ticker")
			continue
		}

		if alias, ok := aliases[trx.Ticker]; ok {
			trx.Ticker = alias
		}

		trxs = append(trxs, trx)
	}

	if len(trxs) == 0 {
		if representative != "" {
			return nil, fmt.Errorf("%w: %s has no transactions after %s", ErrNoData, representative, cutoff.Format(common.DateFormat))
		}
		return nil, fmt.Errorf("%w: no transactions after %s", ErrNoData, cutoff.Format(common.DateFormat))
	}

	sort.SliceStable(trxs, func(i, j int) bool {
		return trxs[i].ExecutionDate.Before(trxs[j].ExecutionDate)
	})

	log.Info().Str("Representative", representative).Int("NumTransactions", len(trxs)).Int("Skipped", skipped).
		Time("FirstTrade", trxs[0].ExecutionDate).Time("LastTrade", trxs[len(trxs)-1].ExecutionDate).Msg("normalized transactions")

	return trxs, nil
}

// Tickers returns the distinct tickers of trxs in order of first appearance
func Tickers(trxs []*Transaction) []string {
	tickers := make([]string, 0, len(trxs))
	for _, trx := range trxs {
		tickers = append(tickers, trx.Ticker)
	}
	return common.Unique(tickers)
}

// Representatives summarizes the trades of every individual in records. Rows
// with unparseable dates are counted but do not contribute to First/Last. The
// result is sorted by number of trades, most active first.
func Representatives(records []*Record) []*TraderSummary {
	byName := make(map[string]*TraderSummary)
	for _, rec := range records {
		name := strings.TrimSpace(rec.Representative)
		if name == "" {
			continue
		}

		summary, ok := byName[name]
		if !ok {
			summary = &TraderSummary{Representative: name}
			byName[name] = summary
		}

		summary.Trades++
		if isPurchase(rec.Kind) {
			summary.Purchases++
		}

		dt, err := common.ParseDate(rec.TransactionDate)
		if err != nil {
			continue
		}
		if summary.First.IsZero() || dt.Before(summary.First) {
			summary.First = dt
		}
		if summary.Last.IsZero() || dt.After(summary.Last) {
			summary.Last = dt
		}
	}

	res := make([]*TraderSummary, 0, len(byName))
	for _, summary := range byName {
		res = append(res, summary)
	}

	sort.Slice(res, func(i, j int) bool {
		if res[i].Trades != res[j].Trades {
			return res[i].Trades > res[j].Trades
		}
		return res[i].Representative < res[j].Representative
	})

	return res
}

func parseRecord(rec *Record) (*Transaction, error) {
	executed, err := common.ParseDate(rec.TransactionDate)
	if err != nil {
		return nil, fmt.Errorf("%w: row %d: %s %q is not a date", ErrInputFormat, rec.Row, ColTransactionDate, rec.TransactionDate)
	}

	disclosed, err := common.ParseDate(rec.ReportDate)
	if err != nil {
		return nil, fmt.Errorf("%w: row %d: %s %q is not a date", ErrInputFormat, rec.Row, ColReportDate, rec.ReportDate)
	}

	amount, err := parseAmount(rec.Amount)
	if err != nil {
		return nil, fmt.Errorf("%w: row %d: %s %q is not a number", ErrInputFormat, rec.Row, ColAmount, rec.Amount)
	}

	if amount < 0 {
		return nil, fmt.Errorf("%w: row %d: %s %q must not be negative", ErrInputFormat, rec.Row, ColAmount, rec.Amount)
	}

	if !isPurchase(rec.Kind) {
		amount = -amount
	}

	return &Transaction{
		Representative: strings.TrimSpace(rec.Representative),
		Ticker:         strings.ToUpper(strings.TrimSpace(rec.Ticker)),
		Kind:           strings.TrimSpace(rec.Kind),
		Amount:         amount,
		ExecutionDate:  executed,
		DisclosureDate: disclosed,
	}, nil
}

func parseAmount(s string) (float64, error) {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, "$", "")
	s = strings.ReplaceAll(s, ",", "")
	val, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(val) || math.IsInf(val, 0) {
		return 0, strconv.ErrSyntax
	}
	return val, nil
}

func isPurchase(kind string) bool {
	return strings.Contains(strings.ToLower(kind), "purchase")
}
