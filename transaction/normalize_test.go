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

package transaction_test

import (
	"context"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/penny-vault/copytrade/common"
	"github.com/penny-vault/copytrade/transaction"
)

var _ = Describe("Normalize", func() {
	var (
		records []*transaction.Record
		tz      *time.Location
	)

	BeforeEach(func() {
		var err error
		records, err = transaction.LoadFile(context.Background(), "testdata/trades.csv")
		Expect(err).To(BeNil())
		tz = common.GetTimezone()
	})

	It("filters by cutoff and representative, renames and sorts", func() {
		trxs, err := transaction.Normalize(records, transaction.Options{
			Cutoff:         time.Date(2019, 1, 1, 0, 0, 0, 0, tz),
			Representative: "William R. Keating",
		})
		Expect(err).To(BeNil())
		Expect(trxs).To(HaveLen(4))

		Expect(trxs[0].Ticker).To(Equal("AAPL"))
		Expect(trxs[0].ExecutionDate).To(Equal(time.Date(2020, 1, 13, 0, 0, 0, 0, tz)))
		Expect(trxs[0].DisclosureDate).To(Equal(time.Date(2020, 2, 10, 0, 0, 0, 0, tz)))
		Expect(trxs[0].Amount).To(Equal(8000.0))

		Expect(trxs[1].Ticker).To(Equal("META"))
		Expect(trxs[1].IsPurchase()).To(BeTrue())

		Expect(trxs[2].Amount).To(Equal(-4000.0))
		Expect(trxs[3].Kind).To(Equal("Exchange"))
		Expect(trxs[3].Amount).To(Equal(-1000.0))

		Expect(transaction.Tickers(trxs)).To(Equal([]string{"AAPL", "META"}))
	})

	It("excludes transactions executed on the cutoff", func() {
		trxs, err := transaction.Normalize(records, transaction.Options{
			Cutoff:         time.Date(2020, 1, 13, 0, 0, 0, 0, tz),
			Representative: "William R. Keating",
		})
		Expect(err).To(BeNil())
		Expect(trxs).To(HaveLen(3))
		Expect(trxs[0].Ticker).To(Equal("META"))
	})

	It("keeps every representative when none is named", func() {
		trxs, err := transaction.Normalize(records, transaction.Options{})
		Expect(err).To(BeNil())
		// the "--" ticker row is skipped
		Expect(trxs).To(HaveLen(7))
		Expect(trxs[0].Ticker).To(Equal("T"))
		Expect(trxs[1].Ticker).To(Equal("GOOGL"))
		Expect(trxs[1].Amount).To(Equal(-32500.5))
	})

	It("uses a custom alias table", func() {
		trxs, err := transaction.Normalize(records, transaction.Options{
			Cutoff:         time.Date(2019, 1, 1, 0, 0, 0, 0, tz),
			Representative: "William R. Keating",
			Aliases:        map[string]string{"AAPL": "APPLE"},
		})
		Expect(err).To(BeNil())
		Expect(trxs[0].Ticker).To(Equal("APPLE"))
		Expect(trxs[1].Ticker).To(Equal("FB"))
	})

	It("fails when the representative has no transactions", func() {
		_, err := transaction.Normalize(records, transaction.Options{
			Representative: "Nobody",
		})
		Expect(err).To(MatchError(transaction.ErrNoData))
	})

	It("fails when the cutoff excludes everything", func() {
		_, err := transaction.Normalize(records, transaction.Options{
			Cutoff: time.Date(2030, 1, 1, 0, 0, 0, 0, tz),
		})
		Expect(err).To(MatchError(transaction.ErrNoData))
	})

	DescribeTable("rejects malformed rows",
		func(rec *transaction.Record, column string) {
			_, err := transaction.Normalize([]*transaction.Record{rec}, transaction.Options{})
			Expect(err).To(MatchError(transaction.ErrInputFormat))
			Expect(err.Error()).To(ContainSubstring(column))
		},
		Entry("bad execution date", &transaction.Record{Row: 1, Ticker: "A", Kind: "Purchase", Amount: "1", ReportDate: "2020-01-01", TransactionDate: "yesterday"}, transaction.ColTransactionDate),
		Entry("missing disclosure date", &transaction.Record{Row: 1, Ticker: "A", Kind: "Purchase", Amount: "1", ReportDate: "", TransactionDate: "2020-01-01"}, transaction.ColReportDate),
		Entry("bad amount", &transaction.Record{Row: 1, Ticker: "A", Kind: "Purchase", Amount: "lots", ReportDate: "2020-01-01", TransactionDate: "2020-01-01"}, transaction.ColAmount),
		Entry("NaN amount", &transaction.Record{Row: 1, Ticker: "A", Kind: "Purchase", Amount: "NaN", ReportDate: "2020-01-01", TransactionDate: "2020-01-01"}, transaction.ColAmount),
		Entry("negative amount", &transaction.Record{Row: 1, Ticker: "A", Kind: "Sale", Amount: "-5", ReportDate: "2020-01-01", TransactionDate: "2020-01-01"}, transaction.ColAmount),
	)

	It("surfaces unparseable dates from a file", func() {
		bad, err := transaction.LoadFile(context.Background(), "testdata/bad_date.csv")
		Expect(err).To(BeNil())
		_, err = transaction.Normalize(bad, transaction.Options{})
		Expect(err).To(MatchError(transaction.ErrInputFormat))
		Expect(err.Error()).To(ContainSubstring("row 1"))
	})

	DescribeTable("classifies transaction kinds",
		func(kind string, expectedSign float64) {
			rec := &transaction.Record{Row: 1, Ticker: "A", Kind: kind, Amount: "10", ReportDate: "2020-01-02", TransactionDate: "2020-01-02"}
			trxs, err := transaction.Normalize([]*transaction.Record{rec}, transaction.Options{})
			Expect(err).To(BeNil())
			Expect(trxs[0].Amount).To(Equal(10 * expectedSign))
		},
		Entry("purchase", "Purchase", 1.0),
		Entry("lower case purchase", "purchase", 1.0),
		Entry("partial sale", "Sale (Partial)", -1.0),
		Entry("full sale", "Sale (Full)", -1.0),
		Entry("exchange", "Exchange", -1.0),
		Entry("blank", "", -1.0),
	)
})

var _ = Describe("Representatives", func() {
	It("summarizes trades per individual", func() {
		records, err := transaction.LoadFile(context.Background(), "testdata/trades.csv")
		Expect(err).To(BeNil())

		tz := common.GetTimezone()
		summaries := transaction.Representatives(records)
		Expect(summaries).To(HaveLen(2))

		Expect(summaries[0].Representative).To(Equal("William R. Keating"))
		Expect(summaries[0].Trades).To(Equal(6))
		Expect(summaries[0].Purchases).To(Equal(4))
		Expect(summaries[0].First).To(Equal(time.Date(2018, 10, 20, 0, 0, 0, 0, tz)))
		Expect(summaries[0].Last).To(Equal(time.Date(2020, 3, 20, 0, 0, 0, 0, tz)))

		Expect(summaries[1].Representative).To(Equal("Nancy Pelosi"))
		Expect(summaries[1].Trades).To(Equal(2))
	})
})
