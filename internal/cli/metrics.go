// Copyright (c) 2026 Anchorlock Contributors
//
// This file is part of go-anchorlock.
//
// go-anchorlock is licensed under the GNU Affero General Public License v3.0.
// See LICENSE file or visit https://www.gnu.org/licenses/agpl-3.0.html

package cli

import (
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
)

var metricsListen string

var metricsCmd = &cobra.Command{
	Use:   "metrics",
	Short: "Serve the Prometheus metrics endpoint",
	Long: `Serve /metrics over HTTP so a scraper can collect the anchorlock
counters (secret accesses, audit flow, handshakes, rekeys). Runs until
interrupted.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		log := newLogger(cfg).Component("metrics")

		listen := cfg.Metrics.Listen
		if metricsListen != "" {
			listen = metricsListen
		}
		if listen == "" {
			return errors.New("no listen address configured")
		}

		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		srv := &http.Server{
			Addr:              listen,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		}
		log.Info("serving metrics", "listen", listen)
		return srv.ListenAndServe()
	},
}

func init() {
	metricsCmd.Flags().StringVar(&metricsListen, "listen", "",
		"listen address (overrides config)")
}
