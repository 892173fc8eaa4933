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

package dataframe_test

import (
	"math"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/penny-vault/copytrade/dataframe"
)

var _ = Describe("DataFrame math", func() {
	var (
		df    *dataframe.DataFrame[time.Time]
		dates []time.Time
	)

	BeforeEach(func() {
		dates = []time.Time{
			time.Date(2022, 1, 3, 0, 0, 0, 0, time.UTC),
			time.Date(2022, 1, 4, 0, 0, 0, 0, time.UTC),
			time.Date(2022, 1, 5, 0, 0, 0, 0, time.UTC),
			time.Date(2022, 1, 6, 0, 0, 0, 0, time.UTC),
		}
		df = &dataframe.DataFrame[time.Time]{
			ColNames: []string{"META", "SPY"},
			Index:    dates,
			Vals: [][]float64{
				{100, math.NaN(), 110, 99},
				{400, 404, 400, 410},
			},
		}
	})

	It("computes return factors against the previous valid observation", func() {
		factors := df.ReturnFactors()
		Expect(factors.Vals[0][0]).To(Equal(1.0))
		Expect(math.IsNaN(factors.Vals[0][1])).To(BeTrue())
		Expect(factors.Vals[0][2]).To(BeNumerically("~", 1.1, 1e-12))
		Expect(factors.Vals[0][3]).To(BeNumerically("~", 0.9, 1e-12))

		Expect(factors.Vals[1][0]).To(Equal(1.0))
		Expect(factors.Vals[1][1]).To(BeNumerically("~", 1.01, 1e-12))
		Expect(factors.Vals[1][2]).To(BeNumerically("~", 400.0/404.0, 1e-12))

		// source is unchanged
		Expect(df.Vals[0][0]).To(Equal(100.0))
	})

	It("chains factors with a cumulative product", func() {
		chained := &dataframe.DataFrame[time.Time]{
			ColNames: []string{"ROI"},
			Index:    dates,
			Vals:     [][]float64{{1.0, 1.1, 0.5, 2.0}},
		}

		res := chained.CumProd()
		Expect(res.Vals[0][0]).To(Equal(1.0))
		Expect(res.Vals[0][1]).To(BeNumerically("~", 1.1, 1e-12))
		Expect(res.Vals[0][2]).To(BeNumerically("~", 0.55, 1e-12))
		Expect(res.Vals[0][3]).To(BeNumerically("~", 1.1, 1e-12))
	})

	It("divides like columns", func() {
		other := &dataframe.DataFrame[time.Time]{
			ColNames: []string{"SPY"},
			Index:    dates,
			Vals:     [][]float64{{4, 4, 4, 10}},
		}
		res := df.Div(other)
		Expect(res.Vals[1]).To(Equal([]float64{100, 101, 100, 41}))
	})

	It("applies scalars", func() {
		Expect(df.MulScalar(2).Vals[1]).To(Equal([]float64{800, 808, 800, 820}))
		Expect(df.AddScalar(1).Vals[1]).To(Equal([]float64{401, 405, 401, 411}))
	})
})

var _ = Describe("Merging dataframes", func() {
	It("unions the date index and fills gaps with NaN", func() {
		a := &dataframe.DataFrame[time.Time]{
			ColNames: []string{"META"},
			Index: []time.Time{
				time.Date(2022, 1, 3, 0, 0, 0, 0, time.UTC),
				time.Date(2022, 1, 5, 0, 0, 0, 0, time.UTC),
			},
			Vals: [][]float64{{1, 3}},
		}
		b := &dataframe.DataFrame[time.Time]{
			ColNames: []string{"SPY"},
			Index: []time.Time{
				time.Date(2022, 1, 4, 0, 0, 0, 0, time.UTC),
				time.Date(2022, 1, 5, 0, 0, 0, 0, time.UTC),
			},
			Vals: [][]float64{{20, 30}},
		}

		res := dataframe.Merge(a, b)
		Expect(res.Len()).To(Equal(3))
		Expect(res.ColNames).To(Equal([]string{"META", "SPY"}))
		Expect(res.Vals[0][0]).To(Equal(1.0))
		Expect(math.IsNaN(res.Vals[0][1])).To(BeTrue())
		Expect(math.IsNaN(res.Vals[1][0])).To(BeTrue())
		Expect(res.Vals[1][2]).To(Equal(30.0))
	})
})
