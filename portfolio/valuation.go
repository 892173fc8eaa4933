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
	"math"

	"github.com/rs/zerolog/log"

	"github.com/penny-vault/copytrade/common"
	"github.com/penny-vault/copytrade/data"
	"github.com/penny-vault/copytrade/transaction"
)

// Value joins every transaction with the close of its ticker on the execution
// date and converts the dollar amount into shares. What happens to a
// transaction without a matching close depends on policy.
func Value(trxs []*transaction.Transaction, prices *data.PriceSeries, policy MissingPricePolicy) ([]*ValuedTransaction, error) {
	valued := make([]*ValuedTransaction, 0, len(trxs))
	missing := 0

	for _, trx := range trxs {
		obs, ok := prices.Lookup(trx.Ticker, trx.ExecutionDate)
		if ok {
			valued = append(valued, &ValuedTransaction{
				Transaction: trx,
				Close:       obs.Close,
				Shares:      trx.Amount / obs.Close,
				Matched:     true,
			})
			continue
		}

		missing++
		subLog := log.With().Str("Ticker", trx.Ticker).Time("ExecutionDate", trx.ExecutionDate).Float64("Amount", trx.Amount).Str("Policy", string(policy)).Logger()

		switch policy {
		case FailRun:
			subLog.Error().Msg("no close price for transaction")
			return nil, fmt.Errorf("%w: %s on %s", ErrMissingPrice, trx.Ticker, trx.ExecutionDate.Format(common.DateFormat))
		case DropTransaction:
			subLog.Warn().Msg("dropping transaction without a close price")
		case TreatAsZero:
			subLog.Warn().Msg("transaction without a close price contributes no shares")
			valued = append(valued, &ValuedTransaction{
				Transaction: trx,
				Close:       math.NaN(),
				Shares:      0,
				Matched:     false,
			})
		default:
			return nil, fmt.Errorf("%w: %q", ErrUnknownPolicy, policy)
		}
	}

	log.Debug().Int("NumTransactions", len(trxs)).Int("NumValued", len(valued)).Int("MissingPrice", missing).Msg("valued transactions")

	return valued, nil
}
