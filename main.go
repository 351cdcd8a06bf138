package main

import (
	"flag"
	"fmt"
	"math"
	"os"

	"DeltaV/internal/server"
)

func main() {
	addr := flag.String("addr", ":8080", "address to listen on (e.g., 127.0.0.1:8080)")
	configPath := flag.String("config", "configs/calculator.json", "path to calculator tuning file (json, toml or yaml)")
	policy := flag.String("policy", "", "override geometry policy (coaxial or scaled)")
	voidRatio := flag.Float64("void-ratio", math.NaN(), "override tank diameter as a fraction of body diameter (0-1)")
	capacityExp := flag.Float64("capacity-exp", math.NaN(), "override fuel capacity exponent for the scaled policy")
	escapeVelocity := flag.Float64("escape-velocity", math.NaN(), "override escape velocity threshold in m/s")
	sweepMax := flag.Int("sweep-max-steps", -1, "override maximum number of points in a sweep")
	debug := flag.Bool("debug", false, "log every request")
	flag.Parse()

	cfg := server.DefaultAppConfig()
	cfg.ConfigPath = *configPath
	cfg.Debug = *debug

	var overrides server.CalcOverrides

	if *policy != "" {
		val := *policy
		overrides.Policy = &val
	}
	if !math.IsNaN(*voidRatio) {
		val := *voidRatio
		overrides.VoidRatio = &val
	}
	if !math.IsNaN(*capacityExp) {
		val := *capacityExp
		overrides.CapacityExponent = &val
	}
	if !math.IsNaN(*escapeVelocity) {
		val := *escapeVelocity
		overrides.EscapeVelocity = &val
	}
	if *sweepMax >= 0 {
		val := *sweepMax
		overrides.MaxSweepSteps = &val
	}

	cfg.Overrides = overrides

	if err := server.StartApp(*addr, cfg); err != nil {
		fmt.Fprintf(os.Stderr, "deltav: %v\n", err)
		os.Exit(1)
	}
}
