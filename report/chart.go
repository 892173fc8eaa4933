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
	"fmt"
	"io"
	"math"

	"github.com/rs/zerolog/log"
	charts "github.com/vicanso/go-charts/v2"

	"github.com/penny-vault/copytrade/portfolio"
)

// percentCurves converts the benchmark, actual and copy growth of $1 curves to
// cumulative percent returns
func percentCurves(cmp *portfolio.Comparison) [][]float64 {
	growth, _ := cmp.Frame.Split(portfolio.BenchmarkCumulative, portfolio.ActualCumulative, portfolio.CopyCumulative)
	pct := growth.AddScalar(-1.0).MulScalar(100.0)

	curves := make([][]float64, 0, 3)
	for _, name := range []string{portfolio.BenchmarkCumulative, portfolio.ActualCumulative, portfolio.CopyCumulative} {
		col, err := pct.Column(name)
		if err != nil {
			log.Panic().Err(err).Str("Column", name).Msg("comparison frame is missing a column")
		}
		curves = append(curves, col)
	}
	return curves
}

// WriteChart renders the three cumulative return curves as a PNG line chart
func WriteChart(w io.Writer, cmp *portfolio.Comparison) error {
	if cmp.Frame == nil || cmp.Frame.Len() == 0 {
		return ErrEmptyComparison
	}

	labels := make([]string, cmp.Frame.Len())
	for idx, dt := range cmp.Frame.Index {
		labels[idx] = dt.Format("Jan 02 '06")
	}

	curves := percentCurves(cmp)

	yMin, yMax := math.Inf(1), math.Inf(-1)
	for _, curve := range curves {
		for _, val := range curve {
			yMin = math.Min(yMin, val)
			yMax = math.Max(yMax, val)
		}
	}
	padding := (yMax - yMin) * 0.05
	if padding == 0 {
		padding = 5
	}
	yMin -= padding
	yMax += padding

	splitNum := 6
	if len(labels) <= 30 {
		splitNum = len(labels)/3 + 1
	}

	title := fmt.Sprintf("%s vs %s", cmp.Representative, cmp.Benchmark)
	if cmp.Representative == "" {
		title = fmt.Sprintf("Copy trade vs %s", cmp.Benchmark)
	}

	p, err := charts.LineRender(
		curves,
		charts.TitleTextOptionFunc(title, "cumulative return (%)"),
		charts.XAxisOptionFunc(charts.XAxisOption{
			Data:        labels,
			SplitNumber: splitNum,
			BoundaryGap: charts.FalseFlag(),
		}),
		charts.YAxisOptionFunc(charts.YAxisOption{
			Min:         &yMin,
			Max:         &yMax,
			DivideCount: 5,
		}),
		charts.LegendOptionFunc(charts.LegendOption{
			Data: []string{cmp.Benchmark, "Actual", "Copy"},
			Left: charts.PositionRight,
		}),
		charts.WidthOptionFunc(1000),
		charts.HeightOptionFunc(600),
		charts.ThemeOptionFunc(charts.ThemeLight),
	)
	if err != nil {
		log.Error().Err(err).Msg("could not render comparison chart")
		return fmt.Errorf("render chart: %w", err)
	}

	buf, err := p.Bytes()
	if err != nil {
		return fmt.Errorf("chart bytes: %w", err)
	}

	_, err = w.Write(buf)
	return err
}
