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

package cmd

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/penny-vault/copytrade/common"
	"github.com/penny-vault/copytrade/data"
	"github.com/penny-vault/copytrade/transaction"
)

// transactionFlags are shared by every command that reconstructs holdings
type transactionFlags struct {
	representative string
	cutoff         string
	end            string
	benchmark      string
	policy         string
}

func (f *transactionFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.representative, "representative", "r", "", "Only use the trades of this individual")
	cmd.Flags().StringVar(&f.cutoff, "cutoff", "2019-01-01", "Ignore trades executed on or before this date; blank keeps every trade")
	cmd.Flags().StringVar(&f.end, "end", "", "Last date of the comparison; defaults to today")
	cmd.Flags().StringVarP(&f.benchmark, "benchmark", "b", "SPY", "Ticker whose trading days and return are the reference")
	cmd.Flags().StringVar(&f.policy, "missing-price", "zero", "What to do with a trade without a close price one of: `zero`, `drop`, or `fail`")
}

func parseOptionalDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return common.ParseDate(s)
}

// loadTransactions reads the trade file and returns the normalized trades
// of the selected individual
func loadTransactions(ctx context.Context, path string, flags *transactionFlags) ([]*transaction.Transaction, error) {
	cutoff, err := parseOptionalDate(flags.cutoff)
	if err != nil {
		return nil, err
	}

	records, err := transaction.LoadFile(ctx, path)
	if err != nil {
		return nil, err
	}

	return transaction.Normalize(records, transaction.Options{
		Cutoff:         cutoff,
		Representative: flags.representative,
	})
}

// loadPrices fetches close prices for every traded ticker and the benchmark
// from the first execution date through the end date
func loadPrices(ctx context.Context, trxs []*transaction.Transaction, flags *transactionFlags) (*data.PriceSeries, error) {
	end, err := parseOptionalDate(flags.end)
	if err != nil {
		return nil, err
	}

	manager, err := data.NewManagerFromConfig()
	if err != nil {
		return nil, err
	}

	begin := trxs[0].ExecutionDate
	log.Info().Str("Provider", manager.Provider().DataType()).Time("Begin", begin).Time("End", end).Int("NumTransactions", len(trxs)).Msg("loading prices")

	return manager.BuildPriceSeries(ctx, transaction.Tickers(trxs), flags.benchmark, begin, end)
}
