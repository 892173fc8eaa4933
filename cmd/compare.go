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
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/penny-vault/copytrade/portfolio"
	"github.com/penny-vault/copytrade/report"
)

var (
	compareFlags  transactionFlags
	compareFormat string
	compareOutput string
	compareChart  string
)

func init() {
	compareFlags.register(compareCmd)
	compareCmd.Flags().StringVarP(&compareFormat, "format", "f", "table", "Output format one of: `table`, `csv`, or `json`")
	compareCmd.Flags().StringVarP(&compareOutput, "output", "o", "", "Write the comparison to this file instead of stdout")
	compareCmd.Flags().StringVar(&compareChart, "chart", "", "Write a PNG chart of the cumulative returns to this file")

	rootCmd.AddCommand(compareCmd)
}

var compareCmd = &cobra.Command{
	Use:   "compare <transactions.csv>",
	Short: "Compare the actual and copy-trade returns with a benchmark",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()

		format, err := report.ParseFormat(compareFormat)
		if err != nil {
			log.Fatal().Err(err).Msg("invalid output format")
		}

		policy, err := portfolio.ParseMissingPricePolicy(compareFlags.policy)
		if err != nil {
			log.Fatal().Err(err).Msg("invalid missing price policy")
		}

		trxs, err := loadTransactions(ctx, args[0], &compareFlags)
		if err != nil {
			log.Fatal().Err(err).Str("FileName", args[0]).Str("Representative", compareFlags.representative).Msg("could not load transactions")
		}

		prices, err := loadPrices(ctx, trxs, &compareFlags)
		if err != nil {
			log.Fatal().Err(err).Msg("could not load prices")
		}

		cmp, err := portfolio.Compare(ctx, trxs, prices, portfolio.CompareOptions{
			Policy:         policy,
			Representative: compareFlags.representative,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("could not compare returns")
		}

		out := os.Stdout
		if compareOutput != "" {
			out, err = os.Create(compareOutput)
			if err != nil {
				log.Fatal().Err(err).Str("FileName", compareOutput).Msg("could not create output file")
			}
			defer out.Close()
		}

		if err := report.Write(ctx, out, format, cmp); err != nil {
			log.Fatal().Err(err).Msg("could not write comparison")
		}

		if compareChart != "" {
			fh, err := os.Create(compareChart)
			if err != nil {
				log.Fatal().Err(err).Str("FileName", compareChart).Msg("could not create chart file")
			}
			defer fh.Close()

			if err := report.WriteChart(fh, cmp); err != nil {
				log.Fatal().Err(err).Str("FileName", compareChart).Msg("could not write chart")
			}
		}
	},
}
