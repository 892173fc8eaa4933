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
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/penny-vault/copytrade/portfolio"
	"github.com/penny-vault/copytrade/report"
)

var (
	holdingsFlags     transactionFlags
	holdingsDateField string
)

func init() {
	holdingsFlags.register(holdingsCmd)
	holdingsCmd.Flags().StringVar(&holdingsDateField, "date-field", "execution", "Key trades on `execution` or `disclosure` date")

	rootCmd.AddCommand(holdingsCmd)
}

var holdingsCmd = &cobra.Command{
	Use:   "holdings <transactions.csv>",
	Short: "Print the reconstructed daily holdings",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()

		field, err := portfolio.ParseDateField(holdingsDateField)
		if err != nil {
			log.Fatal().Err(err).Msg("invalid date field")
		}

		policy, err := portfolio.ParseMissingPricePolicy(holdingsFlags.policy)
		if err != nil {
			log.Fatal().Err(err).Msg("invalid missing price policy")
		}

		trxs, err := loadTransactions(ctx, args[0], &holdingsFlags)
		if err != nil {
			log.Fatal().Err(err).Str("FileName", args[0]).Msg("could not load transactions")
		}

		prices, err := loadPrices(ctx, trxs, &holdingsFlags)
		if err != nil {
			log.Fatal().Err(err).Msg("could not load prices")
		}

		valued, err := portfolio.Value(trxs, prices, policy)
		if err != nil {
			log.Fatal().Err(err).Msg("could not value transactions")
		}

		ledger := portfolio.Reconstruct(prices.Calendar(), valued, field)
		fmt.Println(report.HoldingsTable(ledger))
	},
}
