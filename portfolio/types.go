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
	"strings"
	"time"

	"github.com/penny-vault/copytrade/transaction"
)

// MissingPricePolicy decides what happens to a transaction whose execution
// date has no close price for its ticker
type MissingPricePolicy string

const (
	// TreatAsZero keeps the transaction but it contributes no shares
	TreatAsZero MissingPricePolicy = "zero"

	// DropTransaction removes the transaction from the run
	DropTransaction MissingPricePolicy = "drop"

	// FailRun aborts the run with ErrMissingPrice
	FailRun MissingPricePolicy = "fail"
)

// DateField selects the transaction date holdings are keyed on
type DateField int

const (
	// ExecutionDate reproduces the trades as they actually happened
	ExecutionDate DateField = iota

	// DisclosureDate reproduces what a copy-trader could act on
	DisclosureDate
)

// ValuedTransaction is a transaction joined with the close price of its ticker
// on the execution date. Close is NaN and Shares is 0 when no price matched.
type ValuedTransaction struct {
	*transaction.Transaction
	Close   float64
	Shares  float64
	Matched bool
}

// PositionSnapshot is the number of shares of one ticker held at the close of
// a trading day. Shares is always strictly positive.
type PositionSnapshot struct {
	Date   time.Time
	Ticker string
	Shares float64
}

// PortfolioDayRow is the value-weighted contribution of one holding to the
// daily return of the portfolio
type PortfolioDayRow struct {
	Date         time.Time
	Ticker       string
	Shares       float64
	Close        float64
	Value        float64
	TotalValue   float64
	Weight       float64
	ReturnFactor float64
	Contribution float64
}

// DailyReturn is the blended return factor of the whole portfolio on one day
type DailyReturn struct {
	Date       time.Time
	Return     float64
	TotalValue float64
	NumHolding int
}

// ParseMissingPricePolicy maps a config value to a policy; empty means TreatAsZero
func ParseMissingPricePolicy(s string) (MissingPricePolicy, error) {
	switch MissingPricePolicy(strings.ToLower(strings.TrimSpace(s))) {
	case TreatAsZero, "":
		return TreatAsZero, nil
	case DropTransaction:
		return DropTransaction, nil
	case FailRun:
		return FailRun, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownPolicy, s)
	}
}

// ParseDateField maps a config value to a DateField; empty means ExecutionDate
func ParseDateField(s string) (DateField, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "execution", "transaction", "transactiondate", "":
		return ExecutionDate, nil
	case "disclosure", "report", "reportdate":
		return DisclosureDate, nil
	default:
		return ExecutionDate, fmt.Errorf("%w: %q", ErrUnknownDateField, s)
	}
}

func (f DateField) String() string {
	switch f {
	case ExecutionDate:
		return "execution"
	case DisclosureDate:
		return "disclosure"
	default:
		return fmt.Sprintf("DateField(%d)", int(f))
	}
}

// Of returns the date of trx selected by f
func (f DateField) Of(trx *transaction.Transaction) time.Time {
	if f == DisclosureDate {
		return trx.DisclosureDate
	}
	return trx.ExecutionDate
}
