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
	"math"
	"os"
	"time"

	"github.com/jarcoal/httpmock"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/penny-vault/copytrade/common"
	"github.com/penny-vault/copytrade/data"
)

var _ = Describe("Tiingo", func() {
	var (
		ctx   context.Context
		tz    *time.Location
		begin time.Time
		end   time.Time
	)

	BeforeEach(func() {
		ctx = context.Background()
		tz = common.GetTimezone()
		begin = time.Date(2022, 1, 3, 0, 0, 0, 0, tz)
		end = time.Date(2022, 1, 6, 0, 0, 0, 0, tz)

		content, err := os.ReadFile("testdata/tiingo_META.csv")
		Expect(err).To(BeNil())
		httpmock.RegisterResponder("GET", "https://api.tiingo.com/tiingo/daily/META/prices?startDate=2022-01-03&endDate=2022-01-06&format=csv&resampleFreq=daily&token=TEST",
			httpmock.NewBytesResponder(200, content))

		content, err = os.ReadFile("testdata/tiingo_SPY.csv")
		Expect(err).To(BeNil())
		httpmock.RegisterResponder("GET", "https://api.tiingo.com/tiingo/daily/SPY/prices?startDate=2022-01-03&endDate=2022-01-06&format=csv&resampleFreq=daily&token=TEST",
			httpmock.NewBytesResponder(200, content))

		httpmock.RegisterResponder("GET", "https://api.tiingo.com/tiingo/daily/NOPE/prices?startDate=2022-01-03&endDate=2022-01-06&format=csv&resampleFreq=daily&token=TEST",
			httpmock.NewStringResponder(404, "not found"))
	})

	It("has the tiingo data type", func() {
		Expect(data.NewTiingo("TEST", 0).DataType()).To(Equal(data.ProviderTiingo))
	})

	It("merges the adjusted close of every symbol", func() {
		provider := data.NewTiingo("TEST", 0)
		df, err := provider.GetDataForPeriod(ctx, []string{"meta", "SPY"}, begin, end)
		Expect(err).To(BeNil())

		Expect(df.Len()).To(Equal(4))
		Expect(df.Index[0]).To(Equal(begin))
		Expect(df.Index[3]).To(Equal(end))

		meta, err := df.Column("META")
		Expect(err).To(BeNil())
		Expect(meta[0]).To(Equal(338.54))
		Expect(meta[2]).To(Equal(324.17))
		// META has no row for the 6th
		Expect(math.IsNaN(meta[3])).To(BeTrue())

		spy, err := df.Column("SPY")
		Expect(err).To(BeNil())
		Expect(spy).To(Equal([]float64{400, 404, 400, 410}))

		Expect(httpmock.GetTotalCallCount()).To(Equal(2))
	})

	It("fails when tiingo returns an error status", func() {
		provider := data.NewTiingo("TEST", 0)
		_, err := provider.GetDataForPeriod(ctx, []string{"SPY", "NOPE"}, begin, end)
		Expect(err).To(MatchError(data.ErrHTTPStatus))
	})

	It("rejects an inverted time range", func() {
		provider := data.NewTiingo("TEST", 0)
		_, err := provider.GetDataForPeriod(ctx, []string{"SPY"}, end, begin)
		Expect(err).To(MatchError(data.ErrInvalidTimeRange))
		Expect(httpmock.GetTotalCallCount()).To(Equal(0))
	})
})
