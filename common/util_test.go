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

package common_test

import (
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/penny-vault/copytrade/common"
)

var _ = Describe("Dates", func() {
	DescribeTable("parses supported layouts",
		func(input string, year int, month time.Month, day int) {
			dt, err := common.ParseDate(input)
			Expect(err).To(BeNil())
			Expect(dt).To(Equal(time.Date(year, month, day, 0, 0, 0, 0, common.GetTimezone())))
		},
		Entry("iso", "2022-01-03", 2022, time.January, 3),
		Entry("us", "1/3/2022", 2022, time.January, 3),
		Entry("timestamp", "2022-01-03 15:30:00", 2022, time.January, 3),
		Entry("padded", " 2022-01-03 ", 2022, time.January, 3),
	)

	It("rejects garbage", func() {
		_, err := common.ParseDate("yesterday")
		Expect(err).ToNot(BeNil())
	})

	It("truncates to the market day", func() {
		// 03:00 UTC on Jan 4 is still Jan 3 in New York
		dt := common.TradeDay(time.Date(2022, 1, 4, 3, 0, 0, 0, time.UTC))
		Expect(dt.Format(common.DateFormat)).To(Equal("2022-01-03"))
		Expect(dt.Location()).To(Equal(common.GetTimezone()))
	})

	It("produces equal map keys for the same day", func() {
		keys := map[time.Time]int{common.TradeDay(time.Date(2022, 1, 3, 15, 0, 0, 0, common.GetTimezone())): 1}
		Expect(keys).To(HaveKey(common.TradeDay(time.Date(2022, 1, 3, 20, 0, 0, 0, time.UTC))))
	})

	It("deduplicates in order", func() {
		Expect(common.Unique([]string{"B", "A", "B", "C", "A"})).To(Equal([]string{"B", "A", "C"}))
	})
})
