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
	"runtime"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/penny-vault/copytrade/common"
)

var _ = Describe("Version", func() {
	It("names the program, version and platform", func() {
		out := common.BuildVersionString()
		Expect(out).To(HavePrefix("copytrade v" + common.Version + " " + runtime.GOOS + "/" + runtime.GOARCH))
		Expect(out).To(ContainSubstring("Built with: " + runtime.Version()))
	})

	It("reports an unstamped build as unknown", func() {
		out := common.BuildVersionString()
		Expect(out).To(ContainSubstring("Build Date: unknown"))
		Expect(out).To(ContainSubstring("Commit: unknown"))
	})
})
