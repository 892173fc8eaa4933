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
	"math"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/penny-vault/copytrade/dataframe"
	"github.com/penny-vault/copytrade/observability/opentelemetry"
)

// csvFile serves prices from a local CSV with a Date column and one close
// column per ticker
type csvFile struct {
	path string
}

func NewCSVFile(path string) *csvFile {
	return &csvFile{
		path: path,
	}
}

func (c *csvFile) DataType() string {
	return ProviderCSV
}

func (c *csvFile) GetDataForPeriod(ctx context.Context, symbols []string, begin, end time.Time) (*dataframe.DataFrame[time.Time], error) {
	ctx, span := otel.Tracer(opentelemetry.Name).Start(ctx, "csv.GetDataForPeriod")
	defer span.End()

	span.SetAttributes(attribute.String("Path", c.path))

	if end.Before(begin) {
		return nil, ErrInvalidTimeRange
	}

	fh, err := os.Open(c.path)
	if err != nil {
		log.Error().Err(err).Str("FileName", c.path).Msg("error opening price file")
		return nil, err
	}
	defer fh.Close()

	df, err := loadCSVFrame(ctx, fh, "date", nil)
	if err != nil {
		log.Error().Err(err).Str("FileName", c.path).Msg("error reading price file")
		return nil, err
	}

	upper := make([]string, len(symbols))
	for idx, symbol := range symbols {
		upper[idx] = strings.ToUpper(symbol)
	}

	selected, _ := df.Split(upper...)
	for _, symbol := range upper {
		if selected.ColIndex(symbol) == -1 {
			log.Warn().Str("Ticker", symbol).Str("FileName", c.path).Msg("ticker not present in price file")
			missing := make([]float64, selected.Len())
			for idx := range missing {
				missing[idx] = math.NaN()
			}
			selected.Insert(symbol, missing)
		}
	}

	return selected.Trim(begin, end), nil
}
