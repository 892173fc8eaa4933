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

package portfolio_test

import (
	"bytes"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/penny-vault/copytrade/data"
	"github.com/penny-vault/copytrade/portfolio"
	"github.com/penny-vault/copytrade/transaction"
)

// tickersOn returns the tickers held on date
func tickersOn(ledger []*portfolio.PositionSnapshot, date time.Time) map[string]float64 {
	held := make(map[string]float64)
	for _, snap := range ledger {
		if snap.Date.Equal(date) {
			held[snap.Ticker] = snap.Shares
		}
	}
	return held
}

var _ = Describe("Reconstruct", func() {
	var (
		prices   *data.PriceSeries
		calendar []time.Time
	)

	BeforeEach(func() {
		prices = priceSeries(map[string][]float64{
			"X": {50, 55, 55, 60, 60, 66},
			"Z": {10, 10, 10, 10, 10, 10},
		})
		calendar = prices.Calendar()
	})

	valueAll := func(trxs ...*transaction.Transaction) []*portfolio.ValuedTransaction {
		valued, err := portfolio.Value(trxs, prices, portfolio.FailRun)
		Expect(err).To(BeNil())
		return valued
	}

	It("returns nothing for an empty calendar", func() {
		ledger := portfolio.Reconstruct([]time.Time{}, valueAll(trx("X", 1000, "2022-01-03", "2022-01-03")), portfolio.ExecutionDate)
		Expect(ledger).To(BeEmpty())
	})

	It("holds a single purchase from its first day onward", func() {
		ledger := portfolio.Reconstruct(calendar, valueAll(trx("X", 1000, "2022-01-03", "2022-01-07")), portfolio.ExecutionDate)
		Expect(ledger).To(HaveLen(len(calendar)))
		Expect(ledger[0].Date).To(Equal(day("2022-01-03")))
		Expect(ledger[0].Ticker).To(Equal("X"))
		Expect(ledger[0].Shares).To(BeNumerically("~", 20.0, 1e-12))
		for idx, snap := range ledger {
			Expect(snap.Date).To(Equal(calendar[idx]))
			Expect(snap.Shares).To(BeNumerically("~", 20.0, 1e-12))
		}
	})

	It("removes a ticker once it is fully sold", func() {
		ledger := portfolio.Reconstruct(calendar, valueAll(
			trx("X", 500, "2022-01-03", "2022-01-03"),
			trx("X", -550, "2022-01-05", "2022-01-05"),
		), portfolio.ExecutionDate)

		Expect(ledger).To(HaveLen(2))
		Expect(ledger[0].Date).To(Equal(day("2022-01-03")))
		Expect(ledger[1].Date).To(Equal(day("2022-01-04")))
		for _, snap := range ledger {
			Expect(snap.Ticker).To(Equal("X"))
			Expect(snap.Shares).To(BeNumerically("~", 10.0, 1e-12))
		}
	})

	It("removes a ticker that is oversold", func() {
		ledger := portfolio.Reconstruct(calendar, valueAll(
			trx("Z", 100, "2022-01-03", "2022-01-03"),
			trx("Z", -200, "2022-01-04", "2022-01-04"),
		), portfolio.ExecutionDate)
		Expect(ledger).To(HaveLen(1))
		Expect(ledger[0].Date).To(Equal(day("2022-01-03")))
	})

	It("starts a re-purchase after full liquidation from zero", func() {
		ledger := portfolio.Reconstruct(calendar, valueAll(
			trx("Z", 100, "2022-01-03", "2022-01-03"),
			trx("Z", -300, "2022-01-04", "2022-01-04"),
			trx("Z", 50, "2022-01-06", "2022-01-06"),
		), portfolio.ExecutionDate)

		Expect(tickersOn(ledger, day("2022-01-04"))).To(BeEmpty())
		Expect(tickersOn(ledger, day("2022-01-05"))).To(BeEmpty())
		Expect(tickersOn(ledger, day("2022-01-06"))).To(HaveKeyWithValue("Z", 5.0))
		Expect(tickersOn(ledger, day("2022-01-10"))).To(HaveKeyWithValue("Z", 5.0))
	})

	It("nets same day transactions before applying them", func() {
		ledger := portfolio.Reconstruct(calendar, valueAll(
			trx("Z", -100, "2022-01-03", "2022-01-03"),
			trx("Z", 150, "2022-01-03", "2022-01-03"),
		), portfolio.ExecutionDate)
		Expect(ledger).To(HaveLen(len(calendar)))
		Expect(ledger[0].Shares).To(Equal(5.0))
	})

	It("emits every held ticker each day sorted by ticker", func() {
		ledger := portfolio.Reconstruct(calendar, valueAll(
			trx("Z", 100, "2022-01-03", "2022-01-03"),
			trx("X", 1000, "2022-01-03", "2022-01-03"),
		), portfolio.ExecutionDate)
		Expect(ledger).To(HaveLen(2 * len(calendar)))
		for idx := 0; idx < len(ledger); idx += 2 {
			Expect(ledger[idx].Ticker).To(Equal("X"))
			Expect(ledger[idx+1].Ticker).To(Equal("Z"))
			Expect(ledger[idx].Date).To(Equal(ledger[idx+1].Date))
		}
	})

	It("diverges between execution and disclosure keyed ledgers until disclosure", func() {
		valued := valueAll(trx("X", 1000, "2022-01-03", "2022-01-07"))
		actual := portfolio.Reconstruct(calendar, valued, portfolio.ExecutionDate)
		copyTrade := portfolio.Reconstruct(calendar, valued, portfolio.DisclosureDate)

		for _, dt := range calendar[:4] {
			Expect(tickersOn(actual, dt)).To(HaveKey("X"))
			Expect(tickersOn(copyTrade, dt)).To(BeEmpty())
		}
		for _, dt := range calendar[4:] {
			Expect(tickersOn(copyTrade, dt)).To(Equal(tickersOn(actual, dt)))
		}
	})

	It("applies a non-trading day on the next trading day", func() {
		// 2022-01-08 is a Saturday
		ledger := portfolio.Reconstruct(calendar, valueAll(trx("Z", 100, "2022-01-03", "2022-01-08")), portfolio.DisclosureDate)
		Expect(ledger).To(HaveLen(1))
		Expect(ledger[0].Date).To(Equal(day("2022-01-10")))
	})

	It("logs the keyed and applied dates of a rolled forward transaction", func() {
		buf := &bytes.Buffer{}
		prevLogger, prevLevel := log.Logger, zerolog.GlobalLevel()
		log.Logger = zerolog.New(buf)
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
		DeferCleanup(func() {
			log.Logger = prevLogger
			zerolog.SetGlobalLevel(prevLevel)
		})

		portfolio.Reconstruct(calendar, valueAll(trx("Z", 100, "2022-01-03", "2022-01-08")), portfolio.DisclosureDate)
		Expect(buf.String()).To(ContainSubstring("rolled forward"))
		Expect(buf.String()).To(ContainSubstring(`"Ticker":"Z"`))
		Expect(buf.String()).To(ContainSubstring(`"KeyedDate":"2022-01-08`))
		Expect(buf.String()).To(ContainSubstring(`"AppliedDate":"2022-01-10`))
	})

	It("does not log a transaction keyed on a trading day as rolled forward", func() {
		buf := &bytes.Buffer{}
		prevLogger, prevLevel := log.Logger, zerolog.GlobalLevel()
		log.Logger = zerolog.New(buf)
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
		DeferCleanup(func() {
			log.Logger = prevLogger
			zerolog.SetGlobalLevel(prevLevel)
		})

		portfolio.Reconstruct(calendar, valueAll(trx("Z", 100, "2022-01-03", "2022-01-04")), portfolio.DisclosureDate)
		Expect(buf.String()).ToNot(ContainSubstring("rolled forward"))
	})

	It("evicts a position left with a sub-epsilon remainder", func() {
		buy := &portfolio.ValuedTransaction{Transaction: trx("Z", 100, "2022-01-03", "2022-01-03"), Shares: 10}
		sell := &portfolio.ValuedTransaction{Transaction: trx("Z", 100, "2022-01-04", "2022-01-04"), Shares: -10 + 1e-10}
		ledger := portfolio.Reconstruct(calendar, []*portfolio.ValuedTransaction{buy, sell}, portfolio.ExecutionDate)
		Expect(ledger).To(HaveLen(1))
		Expect(ledger[0].Date).To(Equal(day("2022-01-03")))
	})

	It("applies dates before the calendar on the first day", func() {
		ledger := portfolio.Reconstruct(calendar[2:], valueAll(trx("Z", 100, "2022-01-03", "2022-01-03")), portfolio.ExecutionDate)
		Expect(ledger).To(HaveLen(4))
		Expect(ledger[0].Date).To(Equal(day("2022-01-05")))
	})

	It("ignores dates after the calendar", func() {
		ledger := portfolio.Reconstruct(calendar, valueAll(trx("Z", 100, "2022-01-03", "2022-01-14")), portfolio.DisclosureDate)
		Expect(ledger).To(BeEmpty())
	})

	It("never holds a position for a transaction without a price", func() {
		valued, err := portfolio.Value([]*transaction.Transaction{trx("Y", 100, "2022-01-03", "2022-01-03")}, prices, portfolio.TreatAsZero)
		Expect(err).To(BeNil())
		ledger := portfolio.Reconstruct(calendar, valued, portfolio.ExecutionDate)
		Expect(ledger).To(BeEmpty())
	})
})
