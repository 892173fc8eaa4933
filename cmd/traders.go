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

	"github.com/penny-vault/copytrade/report"
	"github.com/penny-vault/copytrade/transaction"
)

func init() {
	rootCmd.AddCommand(tradersCmd)
}

var tradersCmd = &cobra.Command{
	Use:   "traders <transactions.csv>",
	Short: "List the individuals in a transaction file by number of trades",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		records, err := transaction.LoadFile(context.Background(), args[0])
		if err != nil {
			log.Fatal().Err(err).Str("FileName", args[0]).Msg("could not load transactions")
		}

		fmt.Println(report.TradersTable(transaction.Representatives(records)))
	},
}
