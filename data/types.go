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

package data

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/penny-vault/copytrade/dataframe"
)

const (
	ProviderTiingo = "tiingo"
	ProviderYahoo  = "yahoo"
	ProviderCSV    = "csv"
)

// Provider returns daily closing prices. The returned dataframe is indexed by
// trading day (midnight in the market timezone) with one column per symbol;
// days a symbol did not trade are NaN.
type Provider interface {
	DataType() string
	GetDataForPeriod(ctx context.Context, symbols []string, begin, end time.Time) (*dataframe.DataFrame[time.Time], error)
}

// PriceObservation is the close of one ticker on one trading day
type PriceObservation struct {
	Ticker       string
	Date         time.Time
	Close        float64
	ReturnFactor float64
}

func (p *PriceObservation) MarshalZerologObject(e *zerolog.Event) {
	e.Str("Ticker", p.Ticker)
	e.Time("Date", p.Date)
	e.Float64("Close", p.Close)
	e.Float64("ReturnFactor", p.ReturnFactor)
}

type quoteResult struct {
	Ticker string
	Data   *dataframe.DataFrame[time.Time]
	Err    error
}
