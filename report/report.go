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

package report

import (
	"context"
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	"github.com/goccy/go-json"
	dataframe "github.com/rocketlaunchr/dataframe-go"
	"github.com/rocketlaunchr/dataframe-go/exports"
	"github.com/rs/zerolog/log"

	"github.com/penny-vault/copytrade/common"
	"github.com/penny-vault/copytrade/portfolio"
)

type Format string

const (
	FormatTable Format = "table"
	FormatCSV   Format = "csv"
	FormatJSON  Format = "json"
)

func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case FormatTable, "":
		return FormatTable, nil
	case FormatCSV:
		return FormatCSV, nil
	case FormatJSON:
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
	}
}

// Write renders the comparison to w in the requested format
func Write(ctx context.Context, w io.Writer, format Format, cmp *portfolio.Comparison) error {
	if cmp.Frame == nil || cmp.Frame.Len() == 0 {
		return ErrEmptyComparison
	}

	switch format {
	case FormatCSV:
		return WriteCSV(ctx, w, cmp)
	case FormatJSON:
		return WriteJSON(w, cmp)
	case FormatTable:
		_, err := io.WriteString(w, Table(cmp))
		return err
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

// ToDataFrame converts the comparison into a dataframe with a leading Date
// column followed by one float column per comparison column
func ToDataFrame(cmp *portfolio.Comparison) *dataframe.DataFrame {
	nrows := cmp.Frame.Len()
	dates := make([]interface{}, nrows)
	for idx, dt := range cmp.Frame.Index {
		dates[idx] = dt.Format(common.DateFormat)
	}

	series := []dataframe.Series{
		dataframe.NewSeriesString("Date", &dataframe.SeriesInit{Capacity: nrows}, dates...),
	}
	for colIdx, name := range cmp.Frame.ColNames {
		vals := make([]interface{}, nrows)
		for rowIdx, val := range cmp.Frame.Vals[colIdx] {
			vals[rowIdx] = val
		}
		series = append(series, dataframe.NewSeriesFloat64(name, &dataframe.SeriesInit{Capacity: nrows}, vals...))
	}

	return dataframe.NewDataFrame(series...)
}

// WriteCSV writes one row per trading day
func WriteCSV(ctx context.Context, w io.Writer, cmp *portfolio.Comparison) error {
	if err := exports.ExportToCSV(ctx, w, ToDataFrame(cmp)); err != nil {
		log.Error().Err(err).Msg("could not export comparison to csv")
		return err
	}
	return nil
}

type comparisonRow struct {
	Date                time.Time `json:"date"`
	BenchmarkCumulative float64   `json:"benchmarkCumulative"`
	ActualDaily         float64   `json:"actualDaily"`
	ActualCumulative    float64   `json:"actualCumulative"`
	CopyDaily           float64   `json:"copyDaily"`
	CopyCumulative      float64   `json:"copyCumulative"`
}

type drawDownDoc struct {
	Begin       string  `json:"begin"`
	End         string  `json:"end"`
	Recovery    string  `json:"recovery,omitempty"`
	LossPercent float64 `json:"lossPercent"`
}

type metricsDoc struct {
	Name        string       `json:"name"`
	TotalReturn *float64     `json:"totalReturn"`
	CAGR        *float64     `json:"cagr"`
	StdDev      *float64     `json:"stdDev"`
	BestDay     *float64     `json:"bestDay"`
	WorstDay    *float64     `json:"worstDay"`
	MaxDrawDown *drawDownDoc `json:"maxDrawDown,omitempty"`
}

type comparisonDoc struct {
	Representative string           `json:"representative,omitempty"`
	Benchmark      string           `json:"benchmark"`
	Begin          string           `json:"begin"`
	End            string           `json:"end"`
	Rows           []*comparisonRow `json:"rows"`
	Summary        []*metricsDoc    `json:"summary"`
}

// nullable maps NaN to nil since JSON has no representation for it
func nullable(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

func newMetricsDoc(m *portfolio.Metrics) *metricsDoc {
	doc := &metricsDoc{
		Name:        m.Name,
		TotalReturn: nullable(m.TotalReturn),
		CAGR:        nullable(m.CAGR),
		StdDev:      nullable(m.StdDev),
		BestDay:     nullable(m.BestDay),
		WorstDay:    nullable(m.WorstDay),
	}
	if m.MaxDrawDown != nil {
		doc.MaxDrawDown = &drawDownDoc{
			Begin:       m.MaxDrawDown.Begin.Format(common.DateFormat),
			End:         m.MaxDrawDown.End.Format(common.DateFormat),
			LossPercent: m.MaxDrawDown.LossPercent,
		}
		if !m.MaxDrawDown.Recovery.IsZero() {
			doc.MaxDrawDown.Recovery = m.MaxDrawDown.Recovery.Format(common.DateFormat)
		}
	}
	return doc
}

// WriteJSON writes the comparison rows and the summary metrics as one document
func WriteJSON(w io.Writer, cmp *portfolio.Comparison) error {
	doc := &comparisonDoc{
		Representative: cmp.Representative,
		Benchmark:      cmp.Benchmark,
		Begin:          cmp.Frame.Start().Format(common.DateFormat),
		End:            cmp.Frame.End().Format(common.DateFormat),
		Rows:           make([]*comparisonRow, cmp.Frame.Len()),
	}

	benchmark := cmp.Column(portfolio.BenchmarkCumulative)
	actualDaily := cmp.Column(portfolio.ActualDaily)
	actualCumulative := cmp.Column(portfolio.ActualCumulative)
	copyDaily := cmp.Column(portfolio.CopyDaily)
	copyCumulative := cmp.Column(portfolio.CopyCumulative)

	for idx, dt := range cmp.Frame.Index {
		doc.Rows[idx] = &comparisonRow{
			Date:                dt,
			BenchmarkCumulative: benchmark[idx],
			ActualDaily:         actualDaily[idx],
			ActualCumulative:    actualCumulative[idx],
			CopyDaily:           copyDaily[idx],
			CopyCumulative:      copyCumulative[idx],
		}
	}

	for _, m := range cmp.Summary() {
		doc.Summary = append(doc.Summary, newMetricsDoc(m))
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		log.Error().Err(err).Msg("could not encode comparison as json")
		return err
	}
	return nil
}
