// Package main は 負荷試験ツールのエントリーポイントを提供します。
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/amakane-hakari/sortkv/loadtest/attacker"
	"github.com/amakane-hakari/sortkv/loadtest/config"
	"github.com/amakane-hakari/sortkv/loadtest/scenario"
)

func main() {
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %v\n", err)
		os.Exit(2)
	}

	fmt.Printf("[INFO] base-url=%s rate=%d duration=%s read-ratio=%.2f pin-ratio=%.2f admin-ratio=%.2f keys=%d value-size=%d ttl-ratio=%.2f ttl-ms=%d read-only=%v\n",
		cfg.BaseURL, cfg.Rate, cfg.Duration, cfg.ReadRatio, cfg.PinRatio, cfg.AdminRatio, cfg.Keys, cfg.ValueSize, cfg.TTLRatio, cfg.TTLMillis, cfg.DisablePUT)

	gen := scenario.NewGenerator(scenario.Options{
		BaseURL:    cfg.BaseURL,
		Keys:       cfg.Keys,
		ReadRatio:  cfg.ReadRatio,
		PinRatio:   cfg.PinRatio,
		AdminRatio: cfg.AdminRatio,
		ValueSize:  cfg.ValueSize,
		TTLRatio:   cfg.TTLRatio,
		TTLms:      cfg.TTLMillis,
		ReadOnly:   cfg.DisablePUT,
		Seed:       time.Now().UnixNano(),
	})

	r := attacker.Runner{
		BaseURL:  cfg.BaseURL,
		Rate:     cfg.Rate,
		Duration: cfg.Duration,
		Timeout:  cfg.Timeout,
		Name:     cfg.Name,
		Output:   cfg.Output,
	}

	if _, err := r.Run(gen.Targeter()); err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %v\n", err)
		os.Exit(1)
	}
}
