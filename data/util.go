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
	"sort"
	"strconv"
	"strings"
	"time"

	rdf "github.com/rocketlaunchr/dataframe-go"
	"github.com/rocketlaunchr/dataframe-go/imports"

	"github.com/penny-vault/copytrade/common"
	"github.com/penny-vault/copytrade/dataframe"
)

func partitionArray(xs []string, chunkSize int) [][]string {
	if len(xs) == 0 {
		return nil
	}
	divided := make([][]string, (len(xs)+chunkSize-1)/chunkSize)
	prev := 0
	i := 0
	till := len(xs) - chunkSize
	for prev < till {
		next := prev + chunkSize
		divided[i] = xs[prev:next]
		prev = next
		i++
	}
	divided[i] = xs[prev:]
	return divided
}

// cellString returns the textual value of a cell loaded by imports.LoadFromCSV
func cellString(series rdf.Series, row int) string {
	switch v := series.Value(row).(type) {
	case string:
		return v
	case *string:
		if v == nil {
			return ""
		}
		return *v
	case nil:
		return ""
	default:
		return fmt.Sprintf("%v", v)
	}
}

// parseClose converts a price cell to a float; blank, null and unparseable
// values are NaN
func parseClose(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "null") || strings.EqualFold(s, "nan") {
		return math.NaN()
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return math.NaN()
	}
	return v
}

// loadCSVFrame reads a CSV with a date column into a date indexed dataframe.
// columns maps source column names to the column names of the result; when
// columns is nil every non-date column is kept under its own (upper-cased) name.
// Rows are sorted by date and duplicate dates keep the last row.
func loadCSVFrame(ctx context.Context, r io.ReadSeeker, dateCol string, columns map[string]string) (*dataframe.DataFrame[time.Time], error) {
	raw, err := imports.LoadFromCSV(ctx, r, imports.CSVLoadOptions{})
	if err != nil {
		return nil, err
	}

	names := raw.Names()
	dateIdx := -1
	for idx, name := range names {
		if strings.EqualFold(strings.TrimSpace(name), dateCol) {
			dateIdx = idx
			break
		}
	}
	if dateIdx == -1 {
		return nil, fmt.Errorf("%w: %s", ErrDateColumnMissing, dateCol)
	}

	type srcCol struct {
		idx  int
		name string
	}
	cols := make([]srcCol, 0, len(names))
	for idx, name := range names {
		if idx == dateIdx {
			continue
		}
		name = strings.TrimSpace(name)
		if columns == nil {
			cols = append(cols, srcCol{idx: idx, name: strings.ToUpper(name)})
			continue
		}
		if dest, ok := columns[name]; ok {
			cols = append(cols, srcCol{idx: idx, name: dest})
		}
	}

	byDate := make(map[time.Time][]float64, raw.NRows())
	for row := 0; row < raw.NRows(); row++ {
		dateStr := cellString(raw.Series[dateIdx], row)
		if strings.TrimSpace(dateStr) == "" {
			continue
		}

		// tiingo returns dates as either 2006-01-02 or RFC3339
		dt, err := common.ParseDate(dateStr)
		if err != nil {
			return nil, fmt.Errorf("row %d: cannot parse date %q: %w", row+1, dateStr, err)
		}

		vals := make([]float64, len(cols))
		for colIdx, col := range cols {
			vals[colIdx] = parseClose(cellString(raw.Series[col.idx], row))
		}
		byDate[dt] = vals
	}

	df := &dataframe.DataFrame[time.Time]{
		Index:    make([]time.Time, 0, len(byDate)),
		ColNames: make([]string, len(cols)),
		Vals:     make([][]float64, len(cols)),
	}
	for colIdx, col := range cols {
		df.ColNames[colIdx] = col.name
	}

	for dt := range byDate {
		df.Index = append(df.Index, dt)
	}
	sortDates(df.Index)

	for _, dt := range df.Index {
		for colIdx, val := range byDate[dt] {
			df.Vals[colIdx] = append(df.Vals[colIdx], val)
		}
	}

	for colIdx := range df.Vals {
		if df.Vals[colIdx] == nil {
			df.Vals[colIdx] = []float64{}
		}
	}

	return df, nil
}

func sortDates(dates []time.Time) {
	sort.Slice(dates, func(i, j int) bool {
		return dates[i].Before(dates[j])
	})
}
