package server

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"DeltaV/internal/rocket"
)

// CalcSettings is the resolved tuning of the calculator.
type CalcSettings struct {
	Policy           string
	VoidRatio        float64
	CapacityExponent float64
	EscapeVelocity   float64
	MaxSweepSteps    int
	Materials        []rocket.Material // appended to the built-in table
	Fuels            []rocket.Fuel     // appended to the built-in table
}

func DefaultCalcSettings() CalcSettings {
	return CalcSettings{
		Policy:           rocket.PolicyCoaxial,
		VoidRatio:        rocket.DefaultVoidRatio,
		CapacityExponent: rocket.DefaultCapacityExponent,
		EscapeVelocity:   rocket.EarthEscapeVelocity,
		MaxSweepSteps:    rocket.MaxSweepSteps,
	}
}

// SanitizeCalcSettings replaces out-of-range values with defaults.
// An unknown policy name is left for NewCalculator to report.
func SanitizeCalcSettings(s CalcSettings) CalcSettings {
	defaults := DefaultCalcSettings()
	s.Policy = strings.ToLower(strings.TrimSpace(s.Policy))
	if s.Policy == "" {
		s.Policy = defaults.Policy
	}
	if !(s.VoidRatio > 0 && s.VoidRatio < 1) {
		s.VoidRatio = defaults.VoidRatio
	}
	if !(s.CapacityExponent > 0) {
		s.CapacityExponent = defaults.CapacityExponent
	}
	if !(s.EscapeVelocity > 0) {
		s.EscapeVelocity = defaults.EscapeVelocity
	}
	if s.MaxSweepSteps < rocket.MinSweepSteps {
		s.MaxSweepSteps = defaults.MaxSweepSteps
	}
	if s.MaxSweepSteps > rocket.SweepStepsCeiling {
		s.MaxSweepSteps = rocket.SweepStepsCeiling
	}
	return s
}

// NewCalculator builds the calculator these settings describe.
func (s CalcSettings) NewCalculator() (*rocket.Calculator, error) {
	policy, err := rocket.PolicyByName(s.Policy, s.VoidRatio, s.CapacityExponent)
	if err != nil {
		return nil, err
	}
	catalog := rocket.DefaultCatalog()
	if len(s.Materials) > 0 || len(s.Fuels) > 0 {
		catalog, err = catalog.Extend(s.Materials, s.Fuels)
		if err != nil {
			return nil, fmt.Errorf("extend catalog: %w", err)
		}
	}
	return rocket.NewCalculator(catalog,
		rocket.WithPolicy(policy),
		rocket.WithEscapeVelocity(s.EscapeVelocity),
		rocket.WithMaxSweepSteps(s.MaxSweepSteps),
	), nil
}

type materialConfig struct {
	Name    string  `mapstructure:"name"`
	Density float64 `mapstructure:"density"`
}

type fuelConfig struct {
	Name            string  `mapstructure:"name"`
	Density         float64 `mapstructure:"density"`
	ExhaustVelocity float64 `mapstructure:"exhaustVelocity"`
}

// CalcOverrides represents optional command-line overrides.
type CalcOverrides struct {
	Policy           *string
	VoidRatio        *float64
	CapacityExponent *float64
	EscapeVelocity   *float64
	MaxSweepSteps    *int
}

func (o CalcOverrides) apply(base CalcSettings) CalcSettings {
	if o.Policy != nil {
		base.Policy = *o.Policy
	}
	if o.VoidRatio != nil {
		base.VoidRatio = *o.VoidRatio
	}
	if o.CapacityExponent != nil {
		base.CapacityExponent = *o.CapacityExponent
	}
	if o.EscapeVelocity != nil {
		base.EscapeVelocity = *o.EscapeVelocity
	}
	if o.MaxSweepSteps != nil {
		base.MaxSweepSteps = *o.MaxSweepSteps
	}
	return SanitizeCalcSettings(base)
}

// newConfigReader prepares a viper instance for path. DELTAV_* environment
// variables take precedence over the file, e.g. DELTAV_GEOMETRY_VOIDRATIO.
func newConfigReader(path string) *viper.Viper {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetEnvPrefix("DELTAV")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

func mergeCalcConfig(base CalcSettings, v *viper.Viper) (CalcSettings, error) {
	if v.IsSet("geometry.policy") {
		base.Policy = v.GetString("geometry.policy")
	}
	if v.IsSet("geometry.voidRatio") {
		base.VoidRatio = v.GetFloat64("geometry.voidRatio")
	}
	if v.IsSet("geometry.capacityExponent") {
		base.CapacityExponent = v.GetFloat64("geometry.capacityExponent")
	}
	if v.IsSet("escapeVelocity") {
		base.EscapeVelocity = v.GetFloat64("escapeVelocity")
	}
	if v.IsSet("sweep.maxSteps") {
		base.MaxSweepSteps = v.GetInt("sweep.maxSteps")
	}

	var materials []materialConfig
	if err := v.UnmarshalKey("materials", &materials); err != nil {
		return SanitizeCalcSettings(base), fmt.Errorf("decode materials: %w", err)
	}
	for _, m := range materials {
		base.Materials = append(base.Materials, rocket.Material{Name: m.Name, Density: m.Density})
	}
	var fuels []fuelConfig
	if err := v.UnmarshalKey("fuels", &fuels); err != nil {
		return SanitizeCalcSettings(base), fmt.Errorf("decode fuels: %w", err)
	}
	for _, f := range fuels {
		base.Fuels = append(base.Fuels, rocket.Fuel{Name: f.Name, Density: f.Density, ExhaustVelocity: f.ExhaustVelocity})
	}
	return SanitizeCalcSettings(base), nil
}

// loadCalcSettings layers the config file and environment over base. A
// missing file is not an error; the environment still applies.
func loadCalcSettings(path string, base CalcSettings) (CalcSettings, error) {
	if path == "" {
		return mergeCalcConfig(base, newConfigReader(""))
	}
	cleanPath := filepath.Clean(path)
	v := newConfigReader(cleanPath)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.Is(err, fs.ErrNotExist) || errors.As(err, &notFound) {
			return mergeCalcConfig(base, v)
		}
		return SanitizeCalcSettings(base), fmt.Errorf("read calculator config %q: %w", cleanPath, err)
	}
	settings, err := mergeCalcConfig(base, v)
	if err != nil {
		return settings, fmt.Errorf("parse calculator config %q: %w", cleanPath, err)
	}
	return settings, nil
}

func applyCalcOverrides(base CalcSettings, overrides CalcOverrides) CalcSettings {
	return overrides.apply(base)
}
