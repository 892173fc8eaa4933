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
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

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

type tiingo struct {
	apikey  string
	limiter *rate.Limiter
}

var tiingoAPI = "https://api.tiingo.com"

// NewTiingo creates a new Tiingo data provider. requestsPerSecond bounds the
// rate of outgoing requests; values <= 0 disable limiting.
func NewTiingo(key string, requestsPerSecond float64) *tiingo {
	limit := rate.Inf
	if requestsPerSecond > 0 {
		limit = rate.Limit(requestsPerSecond)
	}
	return &tiingo{
		apikey:  key,
		limiter: rate.NewLimiter(limit, 1),
	}
}

func (t *tiingo) DataType() string {
	return ProviderTiingo
}

// GetDataForPeriod downloads the adjusted close of every symbol. Tiingo only
// serves one symbol per request so the symbols are fetched concurrently in
// chunks of 10 and merged into a single dataframe.
func (t *tiingo) GetDataForPeriod(ctx context.Context, symbols []string, begin, end time.Time) (*dataframe.DataFrame[time.Time], error) {
	ctx, span := otel.Tracer(opentelemetry.Name).Start(ctx, "tiingo.GetDataForPeriod")
	defer span.End()

	subLog := log.With().Strs("Symbols", symbols).Time("Begin", begin).Time("End", end).Logger()

	if end.Before(begin) {
		span.SetStatus(codes.Error, ErrInvalidTimeRange.Error())
		return nil, ErrInvalidTimeRange
	}

	res := make([]*dataframe.DataFrame[time.Time], 0, len(symbols))
	errs := []error{}
	ch := make(chan quoteResult)

	chunks := partitionArray(symbols, 10)
	for idx, chunk := range chunks {
		subLog.Debug().Int("Chunk", idx).Int("TotalChunks", len(chunks)).Msg("tiingo download chunk")
		for ii := range chunk {
			go tiingoDownloadWorker(ctx, ch, strings.ToUpper(chunk[ii]), begin, end, t)
		}

		for range chunk {
			v := <-ch
			if v.Err == nil {
				res = append(res, v.Data)
			} else {
				subLog.Warn().Err(v.Err).Str("Ticker", v.Ticker).Msg("cannot download ticker data")
				errs = append(errs, v.Err)
			}
		}
	}

	if len(errs) != 0 {
		span.RecordError(errs[0])
		span.SetStatus(codes.Error, "download failed")
		return nil, errs[0]
	}

	return dataframe.Merge(res...), nil
}

func tiingoDownloadWorker(ctx context.Context, result chan<- quoteResult, symbol string, begin, end time.Time, t *tiingo) {
	df, err := t.loadDataForPeriod(ctx, symbol, begin, end)
	result <- quoteResult{
		Ticker: symbol,
		Data:   df,
		Err:    err,
	}
}

func (t *tiingo) loadDataForPeriod(ctx context.Context, symbol string, begin, end time.Time) (*dataframe.DataFrame[time.Time], error) {
	ctx, span := otel.Tracer(opentelemetry.Name).Start(ctx, "tiingo.loadDataForPeriod", trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()

	subLog := log.With().Str("Symbol", symbol).Time("Begin", begin).Time("End", end).Logger()

	query := fmt.Sprintf("%s/tiingo/daily/%s/prices?startDate=%s&endDate=%s&format=csv&resampleFreq=daily", tiingoAPI, symbol, begin.Format(common.DateFormat), end.Format(common.DateFormat))
	span.SetAttributes(
		attribute.String("Url", query),
		attribute.String("Symbol", symbol),
	)

	if err := t.limiter.Wait(ctx); err != nil {
		span.RecordError(err)
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s&token=%s", query, t.apikey), nil)
	if err != nil {
		return nil, err
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		span.RecordError(err)
		msg := "tiingo http request failed"
		span.SetStatus(codes.Error, msg)
		subLog.Error().Err(err).Msg(msg)
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		span.RecordError(err)
		subLog.Error().Err(err).Int("HTTPResponseStatusCode", resp.StatusCode).Msg("read eod price body failed")
		return nil, err
	}

	if resp.StatusCode >= 400 {
		span.SetAttributes(attribute.Int("StatusCode", resp.StatusCode))
		msg := "tiingo returned invalid response code"
		span.SetStatus(codes.Error, msg)
		subLog.Error().Int("HTTPResponseStatusCode", resp.StatusCode).Bytes("Body", body).Msg(msg)
		return nil, fmt.Errorf("%w: %d (%s)", ErrHTTPStatus, resp.StatusCode, symbol)
	}

	df, err := loadCSVFrame(ctx, bytes.NewReader(body), "date", map[string]string{"adjClose": symbol})
	if err != nil {
		span.RecordError(err)
		subLog.Error().Err(err).Msg("could not parse tiingo csv")
		return nil, err
	}

	if df.ColCount() == 0 {
		return nil, fmt.Errorf("%w: adjClose column missing for %s", ErrNoData, symbol)
	}

	return df, nil
}
