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
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/rs/zerolog/pkgerrors"
	"github.com/spf13/viper"
)

const (
	ProgramName = "copytrade"
	DateFormat  = "2006-01-02"
)

// ArrToUpper upper-cases every entry of arr in place
func ArrToUpper(arr []string) {
	for ii := range arr {
		arr[ii] = strings.ToUpper(strings.TrimSpace(arr[ii]))
	}
}

// Unique returns the distinct values of arr in the order they were first seen
func Unique(arr []string) []string {
	seen := make(map[string]bool, len(arr))
	res := make([]string, 0, len(arr))
	for _, val := range arr {
		if seen[val] {
			continue
		}
		seen[val] = true
		res = append(res, val)
	}
	return res
}

func SetupLogging() {
	// Set level
	level := viper.GetString("log.level")
	level = strings.ToLower(level)

	switch level {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	case "fatal":
		zerolog.SetGlobalLevel(zerolog.FatalLevel)
	case "info":
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	case "panic":
		zerolog.SetGlobalLevel(zerolog.PanicLevel)
	case "trace":
		zerolog.SetGlobalLevel(zerolog.TraceLevel)
	case "warning":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	}

	// Set report caller
	if viper.GetBool("log.report_caller") {
		log.Logger = log.With().Caller().Logger()
	}

	// Setup output; reports go to stdout so logs default to stderr
	output := viper.GetString("log.output")
	switch output {
	case "stdout":
		if viper.GetBool("log.pretty") {
			log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout})
		} else {
			log.Logger = log.Output(os.Stdout)
		}
	case "stderr", "":
		if viper.GetBool("log.pretty") {
			log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
		} else {
			log.Logger = log.Output(os.Stderr)
		}
	default:
		fh, err := os.OpenFile(output, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0600)
		if err != nil {
			panic(err)
		}
		if viper.GetBool("log.pretty") {
			log.Logger = log.Output(zerolog.ConsoleWriter{Out: fh, NoColor: true})
		} else {
			log.Logger = log.Output(fh)
		}
	}

	// setup stack marshaler
	zerolog.ErrorStackMarshaler = pkgerrors.MarshalStack
}

var (
	marketTZ     *time.Location
	marketTZOnce sync.Once
)

// GetTimezone returns the reference timezone of the market (New York). The
// same *time.Location is returned on every call so dates built from it can be
// used as map keys.
func GetTimezone() *time.Location {
	marketTZOnce.Do(func() {
		tz, err := time.LoadLocation("America/New_York") // New York is the reference time
		if err != nil {
			log.Panic().Err(err).Msg("could not load timezone")
		}
		marketTZ = tz
	})
	return marketTZ
}

// TradeDay truncates t to midnight of its calendar day in the market timezone.
// All joins between transactions and prices are keyed on this value.
func TradeDay(t time.Time) time.Time {
	tz := GetTimezone()
	t = t.In(tz)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, tz)
}

// ParseDate parses a calendar date in the market timezone. Both ISO (2006-01-02)
// and US (1/2/2006) layouts are accepted.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	tz := GetTimezone()

	var (
		dt  time.Time
		err error
	)
	for _, layout := range []string{DateFormat, "1/2/2006", "2006-01-02 15:04:05", time.RFC3339} {
		dt, err = time.ParseInLocation(layout, s, tz)
		if err == nil {
			return TradeDay(dt), nil
		}
	}
	return time.Time{}, err
}
