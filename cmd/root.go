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

package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/penny-vault/copytrade/common"
	"github.com/penny-vault/copytrade/observability/opentelemetry"
)

var shutdownTracing func(context.Context) error

func init() {
	// Logging configuration
	viper.BindEnv("log.level", "COPYTRADE_LOG_LEVEL")
	rootCmd.PersistentFlags().String("log-level", "warning", "Logging level")
	viper.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))

	viper.BindEnv("log.report_caller", "COPYTRADE_LOG_REPORT_CALLER")
	rootCmd.PersistentFlags().Bool("log-report-caller", false, "Log function name that called log statement")
	viper.BindPFlag("log.report_caller", rootCmd.PersistentFlags().Lookup("log-report-caller"))

	viper.BindEnv("log.output", "COPYTRADE_LOG_OUTPUT")
	rootCmd.PersistentFlags().String("log-output", "stderr", "Write logs to specified output one of: file path, `stdout`, or `stderr`")
	viper.BindPFlag("log.output", rootCmd.PersistentFlags().Lookup("log-output"))

	rootCmd.PersistentFlags().Bool("log-pretty", true, "Format log messages for a console")
	viper.BindPFlag("log.pretty", rootCmd.PersistentFlags().Lookup("log-pretty"))

	// Price data
	viper.BindEnv("price.provider", "COPYTRADE_PRICE_PROVIDER")
	rootCmd.PersistentFlags().String("price-provider", "yahoo", "Source of daily close prices one of: `yahoo`, `tiingo`, or `csv`")
	viper.BindPFlag("price.provider", rootCmd.PersistentFlags().Lookup("price-provider"))

	rootCmd.PersistentFlags().String("price-file", "", "Wide close-price CSV used by the csv provider")
	viper.BindPFlag("price.file", rootCmd.PersistentFlags().Lookup("price-file"))

	rootCmd.PersistentFlags().Float64("price-rps", 5, "Maximum requests per second sent to the price provider")
	viper.BindPFlag("price.requests_per_second", rootCmd.PersistentFlags().Lookup("price-rps"))

	viper.BindEnv("tiingo.token", "TIINGO_TOKEN")
	rootCmd.PersistentFlags().String("tiingo-token", "", "Tiingo API token")
	viper.BindPFlag("tiingo.token", rootCmd.PersistentFlags().Lookup("tiingo-token"))

	// Cache
	rootCmd.PersistentFlags().Int("cache-local-size", 32, "Number of price responses kept in memory")
	viper.BindPFlag("cache.local_size", rootCmd.PersistentFlags().Lookup("cache-local-size"))

	viper.BindEnv("cache.redis_url", "REDIS_URL")
	rootCmd.PersistentFlags().String("cache-redis-url", "", "Redis connection string; enables the shared cache when set")
	viper.BindPFlag("cache.redis_url", rootCmd.PersistentFlags().Lookup("cache-redis-url"))

	rootCmd.PersistentFlags().Int("cache-ttl", 86400, "Seconds a price response stays in redis")
	viper.BindPFlag("cache.ttl", rootCmd.PersistentFlags().Lookup("cache-ttl"))

	// Tracing
	viper.BindEnv("otlp.endpoint", "OTLP_ENDPOINT")
	rootCmd.PersistentFlags().String("otlp-endpoint", "", "OpenTelemetry collector endpoint; tracing is disabled when blank")
	viper.BindPFlag("otlp.endpoint", rootCmd.PersistentFlags().Lookup("otlp-endpoint"))
}

var rootCmd = &cobra.Command{
	Use:     common.ProgramName,
	Version: common.Version,
	Short:   "Compare a public official's trades with copy-trading them",
	Long: `Reconstruct the daily holdings of an individual from their disclosed trades
and compare the return of trading on the execution date, copying the trades on
the disclosure date, and holding a benchmark.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		common.SetupLogging()

		viper.Set("cache.redis", viper.GetString("cache.redis_url") != "")
		if err := common.SetupCache(); err != nil {
			return err
		}

		var err error
		shutdownTracing, err = opentelemetry.Setup()
		if err != nil {
			log.Warn().Err(err).Msg("tracing disabled")
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if shutdownTracing == nil {
			return
		}
		if err := shutdownTracing(context.Background()); err != nil {
			log.Warn().Err(err).Msg("could not flush traces")
		}
	},
}

func Execute() {
	// values in .env are only applied when the variable is not already set
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		fmt.Fprintln(os.Stderr, err)
	}

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
