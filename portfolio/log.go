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
	"github.com/rs/zerolog"
)

func (o *ValuedTransaction) MarshalZerologObject(e *zerolog.Event) {
	e.Str("Ticker", o.Ticker).
		Time("ExecutionDate", o.ExecutionDate).
		Time("DisclosureDate", o.DisclosureDate).
		Float64("Amount", o.Amount).
		Float64("Close", o.Close).
		Float64("Shares", o.Shares).
		Bool("Matched", o.Matched)
}

func (o *PositionSnapshot) MarshalZerologObject(e *zerolog.Event) {
	e.Time("Date", o.Date).Str("Ticker", o.Ticker).Float64("Shares", o.Shares)
}

func (o *PortfolioDayRow) MarshalZerologObject(e *zerolog.Event) {
	e.Time("Date", o.Date).
		Str("Ticker", o.Ticker).
		Float64("Shares", o.Shares).
		Float64("Close", o.Close).
		Float64("Value", o.Value).
		Float64("TotalValue", o.TotalValue).
		Float64("Weight", o.Weight).
		Float64("ReturnFactor", o.ReturnFactor).
		Float64("Contribution", o.Contribution)
}

func (o *DrawDown) MarshalZerologObject(e *zerolog.Event) {
	e.Time("Begin", o.Begin).Time("End", o.End).Time("RecoveryDate", o.Recovery).Float64("LossPercent", o.LossPercent)
}

func (o *Metrics) MarshalZerologObject(e *zerolog.Event) {
	e.Str("Name", o.Name).
		Float64("TotalReturn", o.TotalReturn).
		Float64("CAGR", o.CAGR).
		Float64("StdDev", o.StdDev).
		Float64("BestDay", o.BestDay).
		Float64("WorstDay", o.WorstDay)
	if o.MaxDrawDown != nil {
		e.Float64("MaxDrawDown", o.MaxDrawDown.LossPercent)
	}
}
