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
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/penny-vault/copytrade/common"
	"github.com/penny-vault/copytrade/dataframe"
	"github.com/penny-vault/copytrade/observability/opentelemetry"
)

// Manager wraps a Provider with the shared response cache and builds the
// price series used by a reconstruction run
type Manager struct {
	provider Provider
}

// cachedFrame is the cache encoding of a close-price dataframe; NaN is not
// representable in JSON so missing closes are stored as null
type cachedFrame struct {
	Index    []time.Time  `json:"index"`
	ColNames []string     `json:"columns"`
	Vals     [][]*float64 `json:"values"`
}

func NewManager(provider Provider) *Manager {
	return &Manager{
		provider: provider,
	}
}

// NewManagerFromConfig creates the provider named by `price.provider`
func NewManagerFromConfig() (*Manager, error) {
	kind := strings.ToLower(viper.GetString("price.provider"))
	rps := viper.GetFloat64("price.requests_per_second")

	switch kind {
	case ProviderYahoo, "":
		return NewManager(NewYahoo(rps)), nil
	case ProviderTiingo:
		key := viper.GetString("tiingo.token")
		if key == "" {
			log.Error().Str("Provider", kind).Msg("tiingo token is not configured")
			return nil, fmt.Errorf("%w: tiingo.token", ErrMissingAPIKey)
		}
		return NewManager(NewTiingo(key, rps)), nil
	case ProviderCSV:
		return NewManager(NewCSVFile(viper.GetString("price.file"))), nil
	default:
		log.Error().Str("Provider", kind).Msg("unsupported price provider")
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedProvider, kind)
	}
}

// Provider returns the underlying price provider
func (m *Manager) Provider() Provider {
	return m.provider
}

// GetDataForPeriod returns the close prices of symbols, serving the response
// from cache when an identical request was made before
func (m *Manager) GetDataForPeriod(ctx context.Context, symbols []string, begin, end time.Time) (*dataframe.DataFrame[time.Time], error) {
	ctx, span := otel.Tracer(opentelemetry.Name).Start(ctx, "manager.GetDataForPeriod")
	defer span.End()

	key := cacheKey(m.provider.DataType(), symbols, begin, end)
	span.SetAttributes(attribute.String("CacheKey", key))
	subLog := log.With().Str("CacheKey", key).Logger()

	if raw, err := common.CacheGet(ctx, key); err == nil {
		df, decodeErr := decodeFrame(raw)
		if decodeErr == nil {
			subLog.Debug().Msg("price data served from cache")
			return df, nil
		}
		subLog.Warn().Err(decodeErr).Msg("could not decode cached prices")
	} else if !errors.Is(err, common.ErrCacheMiss) {
		subLog.Warn().Err(err).Msg("price cache lookup failed")
	}

	df, err := m.provider.GetDataForPeriod(ctx, symbols, begin, end)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	if raw, err := encodeFrame(df); err == nil {
		if err := common.CacheSet(ctx, key, raw); err != nil {
			subLog.Warn().Err(err).Msg("could not cache prices")
		}
	} else {
		subLog.Warn().Err(err).Msg("could not encode prices for cache")
	}

	return df, nil
}

// BuildPriceSeries fetches tickers and the benchmark in a single provider call
// and converts the result into a PriceSeries. A zero end means today.
func (m *Manager) BuildPriceSeries(ctx context.Context, tickers []string, benchmark string, begin, end time.Time) (*PriceSeries, error) {
	if end.IsZero() {
		end = time.Now()
	}
	begin = common.TradeDay(begin)
	end = common.TradeDay(end)

	if end.Before(begin) {
		return nil, ErrInvalidTimeRange
	}

	symbols := make([]string, 0, len(tickers)+1)
	symbols = append(symbols, tickers...)
	symbols = append(symbols, benchmark)
	common.ArrToUpper(symbols)
	symbols = common.Unique(symbols)
	sort.Strings(symbols)

	log.Info().Strs("Symbols", symbols).Time("Begin", begin).Time("End", end).Str("Provider", m.provider.DataType()).Msg("fetching prices")

	closes, err := m.GetDataForPeriod(ctx, symbols, begin, end)
	if err != nil {
		return nil, err
	}

	if closes.Len() == 0 {
		return nil, fmt.Errorf("%w: provider %s returned an empty result", ErrNoData, m.provider.DataType())
	}

	return NewPriceSeries(closes, benchmark, begin, end)
}

func cacheKey(provider string, symbols []string, begin, end time.Time) string {
	sorted := make([]string, len(symbols))
	copy(sorted, symbols)
	sort.Strings(sorted)
	return fmt.Sprintf("copytrade:prices:%s:%s:%s:%s", provider, begin.Format(common.DateFormat), end.Format(common.DateFormat), strings.Join(sorted, ","))
}

func encodeFrame(df *dataframe.DataFrame[time.Time]) ([]byte, error) {
	cf := cachedFrame{
		Index:    df.Index,
		ColNames: df.ColNames,
		Vals:     make([][]*float64, len(df.Vals)),
	}
	for colIdx, col := range df.Vals {
		cf.Vals[colIdx] = make([]*float64, len(col))
		for rowIdx := range col {
			if !math.IsNaN(col[rowIdx]) {
				val := col[rowIdx]
				cf.Vals[colIdx][rowIdx] = &val
			}
		}
	}
	return json.Marshal(cf)
}

func decodeFrame(raw []byte) (*dataframe.DataFrame[time.Time], error) {
	var cf cachedFrame
	if err := json.Unmarshal(raw, &cf); err != nil {
		return nil, err
	}

	tz := common.GetTimezone()
	df := &dataframe.DataFrame[time.Time]{
		Index:    make([]time.Time, len(cf.Index)),
		ColNames: cf.ColNames,
		Vals:     make([][]float64, len(cf.Vals)),
	}
	for idx, dt := range cf.Index {
		df.Index[idx] = dt.In(tz)
	}
	for colIdx, col := range cf.Vals {
		df.Vals[colIdx] = make([]float64, len(col))
		for rowIdx, val := range col {
			if val == nil {
				df.Vals[colIdx][rowIdx] = math.NaN()
			} else {
				df.Vals[colIdx][rowIdx] = *val
			}
		}
	}
	return df, nil
}
