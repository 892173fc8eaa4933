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

package data_test

import (
	"context"
	"errors"
	"math"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/spf13/viper"

	"github.com/penny-vault/copytrade/common"
	"github.com/penny-vault/copytrade/data"
	"github.com/penny-vault/copytrade/dataframe"
)

type countingProvider struct {
	calls   int
	symbols [][]string
	err     error
}

func (p *countingProvider) DataType() string {
	return "counting"
}

func (p *countingProvider) GetDataForPeriod(ctx context.Context, symbols []string, begin, end time.Time) (*dataframe.DataFrame[time.Time], error) {
	p.calls++
	p.symbols = append(p.symbols, symbols)
	if p.err != nil {
		return nil, p.err
	}

	tz := common.GetTimezone()
	df := &dataframe.DataFrame[time.Time]{
		Index: []time.Time{
			time.Date(2022, 1, 3, 0, 0, 0, 0, tz),
			time.Date(2022, 1, 4, 0, 0, 0, 0, tz),
			time.Date(2022, 1, 5, 0, 0, 0, 0, tz),
		},
	}
	for _, symbol := range symbols {
		switch symbol {
		case "SPY":
			df.Insert(symbol, []float64{400, 404, 400})
		default:
			df.Insert(symbol, []float64{100, math.NaN(), 110})
		}
	}
	return df, nil
}

var _ = Describe("Manager", func() {
	var (
		ctx      context.Context
		tz       *time.Location
		provider *countingProvider
		manager  *data.Manager
	)

	BeforeEach(func() {
		ctx = context.Background()
		tz = common.GetTimezone()

		viper.Set("cache.redis", false)
		viper.Set("cache.local_size", 8)
		Expect(common.SetupCache()).To(BeNil())

		provider = &countingProvider{}
		manager = data.NewManager(provider)
	})

	It("fetches tickers and benchmark in a single call", func() {
		ps, err := manager.BuildPriceSeries(ctx, []string{"meta", "AAPL", "META"}, "spy",
			time.Date(2022, 1, 3, 0, 0, 0, 0, tz), time.Date(2022, 1, 5, 0, 0, 0, 0, tz))
		Expect(err).To(BeNil())

		Expect(provider.calls).To(Equal(1))
		Expect(provider.symbols[0]).To(Equal([]string{"AAPL", "META", "SPY"}))
		Expect(ps.Calendar()).To(HaveLen(3))
		Expect(ps.Series("META")).To(HaveLen(2))
	})

	It("serves repeated requests from the cache", func() {
		begin := time.Date(2022, 1, 3, 0, 0, 0, 0, tz)
		end := time.Date(2022, 1, 5, 0, 0, 0, 0, tz)

		_, err := manager.BuildPriceSeries(ctx, []string{"META"}, "SPY", begin, end)
		Expect(err).To(BeNil())

		ps, err := manager.BuildPriceSeries(ctx, []string{"META"}, "SPY", begin, end)
		Expect(err).To(BeNil())
		Expect(provider.calls).To(Equal(1))

		// NaN survives the cache round trip as a missing observation
		_, ok := ps.Lookup("META", time.Date(2022, 1, 4, 0, 0, 0, 0, tz))
		Expect(ok).To(BeFalse())
		obs, ok := ps.Lookup("META", end)
		Expect(ok).To(BeTrue())
		Expect(obs.ReturnFactor).To(BeNumerically("~", 1.1, 1e-12))
	})

	It("propagates provider errors", func() {
		provider.err = errors.New("boom")
		_, err := manager.BuildPriceSeries(ctx, []string{"META"}, "SPY",
			time.Date(2022, 1, 3, 0, 0, 0, 0, tz), time.Date(2022, 1, 5, 0, 0, 0, 0, tz))
		Expect(err).To(MatchError("boom"))
	})

	It("rejects an inverted range", func() {
		_, err := manager.BuildPriceSeries(ctx, []string{"META"}, "SPY",
			time.Date(2022, 1, 5, 0, 0, 0, 0, tz), time.Date(2022, 1, 3, 0, 0, 0, 0, tz))
		Expect(err).To(MatchError(data.ErrInvalidTimeRange))
		Expect(provider.calls).To(Equal(0))
	})

	DescribeTable("selects a provider from configuration",
		func(kind, token string, expected string, expectedErr error) {
			viper.Set("price.provider", kind)
			viper.Set("tiingo.token", token)
			defer viper.Set("price.provider", "")
			defer viper.Set("tiingo.token", "")

			m, err := data.NewManagerFromConfig()
			if expectedErr != nil {
				Expect(err).To(MatchError(expectedErr))
				return
			}
			Expect(err).To(BeNil())
			Expect(m.Provider().DataType()).To(Equal(expected))
		},
		Entry("default", "", "", data.ProviderYahoo, nil),
		Entry("yahoo", "yahoo", "", data.ProviderYahoo, nil),
		Entry("tiingo", "tiingo", "TEST", data.ProviderTiingo, nil),
		Entry("tiingo without a token", "tiingo", "", "", data.ErrMissingAPIKey),
		Entry("csv", "csv", "", data.ProviderCSV, nil),
		Entry("unknown", "bloomberg", "", "", data.ErrUnsupportedProvider),
	)
})
