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

package dataframe

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// AddScalar adds the scalar value to all columns in dataframe df and returns a new dataframe
func (df *DataFrame[T]) AddScalar(scalar float64) *DataFrame[T] {
	df = df.Copy()

	for colIdx := range df.ColNames {
		floats.AddConst(scalar, df.Vals[colIdx])
	}
	return df
}

// CumProd computes the running product of each column and returns a new dataframe
func (df *DataFrame[T]) CumProd() *DataFrame[T] {
	df = df.Copy()
	for colIdx := range df.Vals {
		if len(df.Vals[colIdx]) == 0 {
			continue
		}
		floats.CumProd(df.Vals[colIdx], df.Vals[colIdx])
	}
	return df
}

// Div divides all columns in `df` by the corresponding column in `other` and returns a new dataframe.
// Panics if rows are not equal.
func (df *DataFrame[T]) Div(other *DataFrame[T]) *DataFrame[T] {
	df = df.Copy()

	otherMap := make(map[string]int, len(other.ColNames))
	for idx, val := range other.ColNames {
		otherMap[val] = idx
	}

	for idx, colName := range df.ColNames {
		if otherIdx, ok := otherMap[colName]; ok {
			floats.Div(df.Vals[idx], other.Vals[otherIdx])
		}
	}
	return df
}

// Fill replaces every NaN with val in place
func (df *DataFrame[T]) Fill(val float64) *DataFrame[T] {
	for _, col := range df.Vals {
		for rowIdx := range col {
			if math.IsNaN(col[rowIdx]) {
				col[rowIdx] = val
			}
		}
	}
	return df
}

// MulScalar multiplies all columns in dataframe df by the scalar and returns a new dataframe
func (df *DataFrame[T]) MulScalar(scalar float64) *DataFrame[T] {
	df = df.Copy()

	for colIdx := range df.ColNames {
		floats.Scale(scalar, df.Vals[colIdx])
	}
	return df
}

// ReturnFactors computes the one period growth factor (v[t] / v[t-1]) of each column.
// NaN observations are skipped so the factor is always taken against the previous
// non-NaN value; the first valid observation of a column has a factor of 1.0 and
// NaN observations stay NaN.
func (df *DataFrame[T]) ReturnFactors() *DataFrame[T] {
	df = df.Copy()
	for _, col := range df.Vals {
		prev := math.NaN()
		for rowIdx, val := range col {
			if math.IsNaN(val) {
				continue
			}

			if math.IsNaN(prev) {
				col[rowIdx] = 1.0
			} else {
				col[rowIdx] = val / prev
			}
			prev = val
		}
	}
	return df
}
