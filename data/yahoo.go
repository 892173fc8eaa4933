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
	"fmt"
	"io"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"

	"github.com/penny-vault/copytrade/common"
	"github.com/penny-vault/copytrade/dataframe"
	"github.com/penny-vault/copytrade/observability/opentelemetry"
)

var yahooAPI = "https://query1.finance.yahoo.com"

type yahoo struct {
	limiter *rate.Limiter
}

type yahooChartResponse struct {
	Chart struct {
		Result []struct {
			Meta struct {
				Symbol   string `json:"symbol"`
				Currency string `json:"currency"`
			} `json:"meta"`
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Close []*float64 `json:"close"`
				} `json:"quote"`
				AdjClose []struct {
					AdjClose []*float64 `json:"adjclose"`
				} `json:"adjclose"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// NewYahoo creates a provider backed by the Yahoo Finance chart API
func NewYahoo(requestsPerSecond float64) *yahoo {
	limit := rate.Inf
	if requestsPerSecond > 0 {
		limit = rate.Limit(requestsPerSecond)
	}
	return &yahoo{
		limiter: rate.NewLimiter(limit, 1),
	}
}

func (y *yahoo) DataType() string {
	return ProviderYahoo
}

// GetDataForPeriod downloads the split and dividend adjusted close of every symbol
func (y *yahoo) GetDataForPeriod(ctx context.Context, symbols []string, begin, end time.Time) (*dataframe.DataFrame[time.Time], error) {
	ctx, span := otel.Tracer(opentelemetry.Name).Start(ctx, "yahoo.GetDataForPeriod")
	defer span.End()

	if end.Before(begin) {
		span.SetStatus(codes.Error, ErrInvalidTimeRange.Error())
		return nil, ErrInvalidTimeRange
	}

	res := make([]*dataframe.DataFrame[time.Time], 0, len(symbols))
	for _, symbol := range symbols {
		df, err := y.loadDataForPeriod(ctx, strings.ToUpper(symbol), begin, end)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "download failed")
			log.Warn().Err(err).Str("Ticker", symbol).Msg("cannot download ticker data")
			return nil, err
		}
		res = append(res, df)
	}

	return dataframe.Merge(res...), nil
}

func (y *yahoo) loadDataForPeriod(ctx context.Context, symbol string, begin, end time.Time) (*dataframe.DataFrame[time.Time], error) {
	ctx, span := otel.Tracer(opentelemetry.Name).Start(ctx, "yahoo.loadDataForPeriod", trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()

	subLog := log.With().Str("Symbol", symbol).Time("Begin", begin).Time("End", end).Logger()

	// period2 is exclusive
	url := fmt.Sprintf("%s/v8/finance/chart/%s?period1=%d&period2=%d&interval=1d&events=div,splits", yahooAPI, symbol, begin.Unix(), end.AddDate(0, 0, 1).Unix())

	span.SetAttributes(
		attribute.String("Url", url),
		attribute.String("Symbol", symbol),
	)

	if err := y.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; copytrade)")
	req.Header.Set("Accept", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		subLog.Error().Err(err).Msg("yahoo http request failed")
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		subLog.Error().Err(err).Int("HTTPResponseStatusCode", resp.StatusCode).Msg("could not read yahoo body")
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		preview := string(body)
		if len(preview) > 120 {
			preview = preview[:120]
		}
		subLog.Error().Int("HTTPResponseStatusCode", resp.StatusCode).Str("Body", preview).Msg("yahoo returned invalid response code")
		return nil, fmt.Errorf("%w: %d (%s)", ErrHTTPStatus, resp.StatusCode, symbol)
	}

	var chart yahooChartResponse
	if err := json.Unmarshal(body, &chart); err != nil {
		subLog.Error().Err(err).Msg("could not unmarshal yahoo json")
		return nil, err
	}

	if chart.Chart.Error != nil {
		return nil, fmt.Errorf("%w: yahoo %s: %s", ErrNoData, chart.Chart.Error.Code, chart.Chart.Error.Description)
	}

	if len(chart.Chart.Result) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoData, symbol)
	}

	result := chart.Chart.Result[0]

	// prefer the adjusted close; fall back to the raw close when it is absent
	var closes []*float64
	switch {
	case len(result.Indicators.AdjClose) > 0 && len(result.Indicators.AdjClose[0].AdjClose) == len(result.Timestamp):
		closes = result.Indicators.AdjClose[0].AdjClose
	case len(result.Indicators.Quote) > 0 && len(result.Indicators.Quote[0].Close) == len(result.Timestamp):
		closes = result.Indicators.Quote[0].Close
	default:
		return nil, fmt.Errorf("%w: close series missing for %s", ErrNoData, symbol)
	}

	df := &dataframe.DataFrame[time.Time]{
		Index:    make([]time.Time, 0, len(result.Timestamp)),
		ColNames: []string{symbol},
		Vals:     [][]float64{make([]float64, 0, len(result.Timestamp))},
	}

	for idx, ts := range result.Timestamp {
		dt := common.TradeDay(time.Unix(ts, 0))
		val := math.NaN()
		if closes[idx] != nil {
			val = *closes[idx]
		}

		// yahoo occasionally repeats the current session; keep the latest value
		if n := df.Len(); n > 0 && df.Index[n-1].Equal(dt) {
			df.Vals[0][n-1] = val
			continue
		}
		if n := df.Len(); n > 0 && dt.Before(df.Index[n-1]) {
			continue
		}

		df.InsertRow(dt, val)
	}

	return df, nil
}
