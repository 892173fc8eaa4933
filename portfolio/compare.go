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
	"context"
	"fmt"
	"math"
	"time"

	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/penny-vault/copytrade/common"
	"github.com/penny-vault/copytrade/data"
	"github.com/penny-vault/copytrade/dataframe"
	"github.com/penny-vault/copytrade/observability/opentelemetry"
	"github.com/penny-vault/copytrade/transaction"
)

const (
	BenchmarkCumulative = "BenchmarkCumulative"
	ActualDaily         = "ActualDaily"
	ActualCumulative    = "ActualCumulative"
	CopyDaily           = "CopyDaily"
	CopyCumulative      = "CopyCumulative"
)

// ComparisonColumns lists the columns of Comparison.Frame in order
var ComparisonColumns = []string{BenchmarkCumulative, ActualDaily, ActualCumulative, CopyDaily, CopyCumulative}

// CompareOptions configures a Compare run
type CompareOptions struct {
	Policy         MissingPricePolicy
	Representative string
}

// Leg is one run of the holdings and ROI pipeline
type Leg struct {
	Field       DateField
	Ledger      []*PositionSnapshot
	Attribution *Attribution
}

// Comparison holds both legs of a run aligned on the benchmark's calendar
type Comparison struct {
	Representative string
	Benchmark      string
	Calendar       []time.Time
	Valued         []*ValuedTransaction
	Actual         *Leg
	Copy           *Leg

	// Frame is indexed by Calendar with the columns in ComparisonColumns
	Frame *dataframe.DataFrame[time.Time]
}

// RunLeg reconstructs holdings keyed on field and aggregates their daily return
func RunLeg(calendar []time.Time, valued []*ValuedTransaction, prices *data.PriceSeries, field DateField) *Leg {
	ledger := Reconstruct(calendar, valued, field)
	return &Leg{
		Field:       field,
		Ledger:      ledger,
		Attribution: Aggregate(ledger, prices),
	}
}

// Compare values the transactions once and runs the pipeline keyed on the
// execution date (actual) and on the disclosure date (copy). Both daily
// return series and the benchmark's cumulative return are aligned on the
// trading calendar from the first execution date onward. Days on which a
// portfolio has no return are treated as unchanged (1.0) before chaining.
func Compare(ctx context.Context, trxs []*transaction.Transaction, prices *data.PriceSeries, opts CompareOptions) (*Comparison, error) {
	_, span := otel.Tracer(opentelemetry.Name).Start(ctx, "portfolio.Compare")
	defer span.End()

	span.SetAttributes(
		attribute.String("Representative", opts.Representative),
		attribute.String("Benchmark", prices.Benchmark),
		attribute.Int("NumTransactions", len(trxs)),
	)

	if len(trxs) == 0 {
		span.SetStatus(codes.Error, "no transactions")
		return nil, transaction.ErrNoData
	}

	valued, err := Value(trxs, prices, opts.Policy)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "valuation failed")
		return nil, err
	}

	calendar := tradingDaysFrom(prices.Calendar(), firstExecution(trxs))
	if len(calendar) == 0 {
		err := fmt.Errorf("%w: no trading days after %s", ErrEmptyCalendar, firstExecution(trxs).Format(common.DateFormat))
		span.RecordError(err)
		span.SetStatus(codes.Error, "empty calendar")
		return nil, err
	}

	cmp := &Comparison{
		Representative: opts.Representative,
		Benchmark:      prices.Benchmark,
		Calendar:       calendar,
		Valued:         valued,
		Actual:         RunLeg(calendar, valued, prices, ExecutionDate),
		Copy:           RunLeg(calendar, valued, prices, DisclosureDate),
	}

	benchmark := prices.BenchmarkFactors().Reindex(calendar, math.NaN()).Fill(1.0).CumProd()
	actual := cmp.Actual.Attribution.Frame().Reindex(calendar, math.NaN()).Fill(1.0)
	copyTrade := cmp.Copy.Attribution.Frame().Reindex(calendar, math.NaN()).Fill(1.0)

	frame := &dataframe.DataFrame[time.Time]{
		Index:    calendar,
		ColNames: []string{},
		Vals:     [][]float64{},
	}
	frame.Insert(BenchmarkCumulative, benchmark.Vals[0])
	frame.Insert(ActualDaily, actual.Vals[0])
	frame.Insert(ActualCumulative, actual.CumProd().Vals[0])
	frame.Insert(CopyDaily, copyTrade.Vals[0])
	frame.Insert(CopyCumulative, copyTrade.CumProd().Vals[0])
	cmp.Frame = frame

	log.Info().
		Str("Representative", opts.Representative).
		Str("Benchmark", prices.Benchmark).
		Int("NumDays", len(calendar)).
		Int("ActualDegenerate", len(cmp.Actual.Attribution.Degenerate)).
		Int("CopyDegenerate", len(cmp.Copy.Attribution.Degenerate)).
		Msg("assembled return comparison")

	return cmp, nil
}

// Column returns the named column of the comparison frame
func (cmp *Comparison) Column(name string) []float64 {
	col, err := cmp.Frame.Column(name)
	if err != nil {
		log.Panic().Err(err).Str("Column", name).Msg("comparison frame is missing a column")
	}
	return col
}

func firstExecution(trxs []*transaction.Transaction) time.Time {
	first := trxs[0].ExecutionDate
	for _, trx := range trxs[1:] {
		if trx.ExecutionDate.Before(first) {
			first = trx.ExecutionDate
		}
	}
	return first
}

func tradingDaysFrom(calendar []time.Time, first time.Time) []time.Time {
	for idx, dt := range calendar {
		if !dt.Before(first) {
			return calendar[idx:]
		}
	}
	return []time.Time{}
}
