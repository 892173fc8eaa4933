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
	"time"

	"github.com/rs/zerolog"
)

const (
	ColRepresentative  = "Representative"
	ColTicker          = "Ticker"
	ColTransaction     = "Transaction"
	ColAmount          = "Amount"
	ColReportDate      = "ReportDate"
	ColTransactionDate = "TransactionDate"
)

// Record is one unparsed row of the transaction source. Row is the 1-based
// data row number used in error messages.
type Record struct {
	Row             int
	Representative  string
	Ticker          string
	Kind            string
	Amount          string
	ReportDate      string
	TransactionDate string
}

// Transaction is a normalized trade. Amount is positive for purchases and
// negative for every other kind.
type Transaction struct {
	Representative string
	Ticker         string
	Kind           string
	Amount         float64
	ExecutionDate  time.Time
	DisclosureDate time.Time
}

// Options control which records survive normalization
type Options struct {
	// Cutoff excludes every transaction executed on or before it; zero disables the filter
	Cutoff time.Time

	// Aliases renames tickers (e.g. FB -> META); nil uses DefaultAliases
	Aliases map[string]string

	// Representative restricts the result to one individual when set
	Representative string
}

// TraderSummary describes the trades reported by one individual
type TraderSummary struct {
	Representative string
	Trades         int
	Purchases      int
	First          time.Time
	Last           time.Time
}

var DefaultAliases = map[string]string{
	"FB": "META",
}

// IsPurchase reports whether the transaction increases the position
func (t *Transaction) IsPurchase() bool {
	return t.Amount > 0
}

func (t *Transaction) MarshalZerologObject(e *zerolog.Event) {
	e.Str("Representative", t.Representative).
		Str("Ticker", t.Ticker).
		Str("Kind", t.Kind).
		Float64("Amount", t.Amount).
		Time("ExecutionDate", t.ExecutionDate).
		Time("DisclosureDate", t.DisclosureDate)
}

func (r *Record) MarshalZerologObject(e *zerolog.Event) {
	e.Int("Row", r.Row).
		Str("Representative", r.Representative).
		Str("Ticker", r.Ticker).
		Str("Kind", r.Kind).
		Str("Amount", r.Amount).
		Str("ReportDate", r.ReportDate).
		Str("TransactionDate", r.TransactionDate)
}
