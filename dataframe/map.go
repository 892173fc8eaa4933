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
	"sort"
	"time"
)

// Merge combines the columns of all dataframes into a single dataframe whose
// index is the sorted union of every input index. Cells with no observation are
// NaN. When a column name appears more than once the last dataframe wins.
func Merge(dfs ...*DataFrame[time.Time]) *DataFrame[time.Time] {
	seen := make(map[time.Time]bool)
	index := make([]time.Time, 0)
	for _, df := range dfs {
		for _, dt := range df.Index {
			if !seen[dt] {
				seen[dt] = true
				index = append(index, dt)
			}
		}
	}

	sort.Slice(index, func(i, j int) bool {
		return index[i].Before(index[j])
	})

	res := &DataFrame[time.Time]{
		Index:    index,
		ColNames: []string{},
		Vals:     [][]float64{},
	}

	for _, df := range dfs {
		aligned := df.Reindex(index, math.NaN())
		for colIdx, colName := range aligned.ColNames {
			if existing := res.ColIndex(colName); existing != -1 {
				res.Vals[existing] = aligned.Vals[colIdx]
				continue
			}
			res.ColNames = append(res.ColNames, colName)
			res.Vals = append(res.Vals, aligned.Vals[colIdx])
		}
	}

	return res
}
