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

package transaction

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	rdf "github.com/rocketlaunchr/dataframe-go"
	"github.com/rocketlaunchr/dataframe-go/imports"
	"github.com/rs/zerolog/log"
)

var requiredColumns = []string{
	ColRepresentative,
	ColTicker,
	ColTransaction,
	ColAmount,
	ColReportDate,
	ColTransactionDate,
}

// LoadFile reads the transaction CSV at path
func LoadFile(ctx context.Context, path string) ([]*Record, error) {
	fh, err := os.Open(path)
	if err != nil {
		log.Error().Err(err).Str("FileName", path).Msg("error opening transaction file")
		return nil, err
	}
	defer fh.Close()

	return Load(ctx, fh)
}

// Load reads a transaction CSV. Column names are matched case-insensitively;
// columns other than the required ones are ignored. Values are kept as text
// and only interpreted by Normalize.
func Load(ctx context.Context, r io.ReadSeeker) ([]*Record, error) {
	raw, err := imports.LoadFromCSV(ctx, r, imports.CSVLoadOptions{})
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInputFormat, err.Error())
	}

	colIdx := make(map[string]int, len(requiredColumns))
	for idx, name := range raw.Names() {
		colIdx[strings.ToLower(strings.TrimSpace(name))] = idx
	}

	series := make(map[string]rdf.Series, len(requiredColumns))
	for _, col := range requiredColumns {
		idx, ok := colIdx[strings.ToLower(col)]
		if !ok {
			return nil, fmt.Errorf("%w: missing column %s", ErrInputFormat, col)
		}
		series[col] = raw.Series[idx]
	}

	nrows := raw.NRows()
	records := make([]*Record, 0, nrows)
	for row := 0; row < nrows; row++ {
		records = append(records, &Record{
			Row:             row + 1,
			Representative:  cellString(series[ColRepresentative], row),
			Ticker:          cellString(series[ColTicker], row),
			Kind:            cellString(series[ColTransaction], row),
			Amount:          cellString(series[ColAmount], row),
			ReportDate:      cellString(series[ColReportDate], row),
			TransactionDate: cellString(series[ColTransactionDate], row),
		})
	}

	log.Debug().Int("NumRecords", len(records)).Msg("loaded transaction records")
	return records, nil
}

func cellString(series rdf.Series, row int) string {
	switch v := series.Value(row).(type) {
	case string:
		return strings.TrimSpace(v)
	case *string:
		if v == nil {
			return ""
		}
		return strings.TrimSpace(*v)
	case nil:
		return ""
	default:
		return strings.TrimSpace(fmt.Sprintf("%v", v))
	}
}
