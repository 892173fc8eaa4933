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

package common

import (
	"fmt"
	"runtime"
)

// Version is the release of the copytrade build
const Version = "0.3.0-dev"

// Set by the linker, see magefile.go
var (
	commitHash string
	buildDate  string
)

// BuildVersionString is what `copytrade version` prints
func BuildVersionString() string {
	commit := commitHash
	if commit == "" {
		commit = "unknown"
	}

	date := buildDate
	if date == "" {
		date = "unknown"
	}

	return fmt.Sprintf("%s v%s %s/%s\n\nBuild Date: %s\nCommit: %s\nBuilt with: %s",
		ProgramName, Version, runtime.GOOS, runtime.GOARCH, date, commit, runtime.Version())
}
