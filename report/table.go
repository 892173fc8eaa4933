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
	"strings"

	"github.com/olekukonko/tablewriter"

	"github.com/penny-vault/copytrade/common"
	"github.com/penny-vault/copytrade/portfolio"
	"github.com/penny-vault/copytrade/transaction"
)

func percent(v float64) string {
	return fmt.Sprintf("%.2f%%", v*100)
}

// Table renders the daily comparison followed by the summary metrics
func Table(cmp *portfolio.Comparison) string {
	s := &strings.Builder{}
	s.WriteString(cmp.Frame.Table())
	s.WriteString("\n")
	s.WriteString(SummaryTable(cmp.Summary()))
	return s.String()
}

func SummaryTable(metrics []*portfolio.Metrics) string {
	s := &strings.Builder{}
	table := tablewriter.NewWriter(s)
	table.SetHeader([]string{"Portfolio", "Total Return", "CAGR", "Std Dev", "Best Day", "Worst Day", "Max Drawdown"})
	table.SetBorder(false)

	for _, m := range metrics {
		maxDrawDown := "-"
		if m.MaxDrawDown != nil {
			maxDrawDown = fmt.Sprintf("%s (%s)", percent(m.MaxDrawDown.LossPercent), m.MaxDrawDown.End.Format(common.DateFormat))
		}
		table.Append([]string{
			m.Name,
			percent(m.TotalReturn),
			percent(m.CAGR),
			percent(m.StdDev),
			percent(m.BestDay),
			percent(m.WorstDay),
			maxDrawDown,
		})
	}

	table.Render()
	return s.String()
}

// HoldingsTable lists every position snapshot of a ledger
func HoldingsTable(ledger []*portfolio.PositionSnapshot) string {
	if len(ledger) == 0 {
		return "<NO DATA>"
	}

	s := &strings.Builder{}
	table := tablewriter.NewWriter(s)
	table.SetHeader([]string{"Date", "Ticker", "Shares"})
	table.SetFooter([]string{"Num Rows", fmt.Sprintf("%d", len(ledger)), ""})
	table.SetBorder(false)

	for _, snap := range ledger {
		table.Append([]string{snap.Date.Format(common.DateFormat), snap.Ticker, fmt.Sprintf("%.4f", snap.Shares)})
	}

	table.Render()
	return s.String()
}

// TradersTable lists the individuals found in a transaction file
func TradersTable(traders []*transaction.TraderSummary) string {
	s := &strings.Builder{}
	table := tablewriter.NewWriter(s)
	table.SetHeader([]string{"Representative", "Trades", "Purchases", "First", "Last"})
	table.SetBorder(false)

	for _, trader := range traders {
		table.Append([]string{
			trader.Representative,
			fmt.Sprintf("%d", trader.Trades),
			fmt.Sprintf("%d", trader.Purchases),
			trader.First.Format(common.DateFormat),
			trader.Last.Format(common.DateFormat),
		})
	}

	table.Render()
	return s.String()
}
