package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"DeltaV/internal/rocket"
)

var errNonNumeric = errors.New("non-numeric value")

// numberDTO accepts a JSON number or a numeric string. null and a missing
// field both decode as 0.
type numberDTO float64

func (n *numberDTO) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*n = 0
		return nil
	}
	var raw string
	if len(data) > 0 && data[0] == '"' {
		if err := json.Unmarshal(data, &raw); err != nil {
			return err
		}
	} else {
		raw = string(data)
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return fmt.Errorf("%w: %s", errNonNumeric, data)
	}
	*n = numberDTO(v)
	return nil
}

type calculateRequestDTO struct {
	Material       string    `json:"material"`
	Height         numberDTO `json:"height"`
	Diameter       numberDTO `json:"diameter"`
	FuelType       string    `json:"fuel_type"`
	FillPercentage numberDTO `json:"fuel_fill_percentage"` // fraction, 0..1
}

func (d calculateRequestDTO) toRequest() rocket.Request {
	return rocket.Request{
		Material:     d.Material,
		Fuel:         d.FuelType,
		Height:       float64(d.Height),
		Diameter:     float64(d.Diameter),
		FillFraction: float64(d.FillPercentage),
	}
}

type calculateResponseDTO struct {
	DeltaV         float64 `json:"delta_v"`
	DryMass        float64 `json:"dry_mass"`
	FuelMass       float64 `json:"fuel_mass"`
	InitialMass    float64 `json:"initial_mass"`
	MassRatio      float64 `json:"mass_ratio"`
	EscapeVelocity float64 `json:"escape_velocity"`
	EscapesEarth   bool    `json:"escapes_earth"`
}

func resultToDTO(r rocket.Result) calculateResponseDTO {
	return calculateResponseDTO{
		DeltaV:         r.DeltaV,
		DryMass:        r.DryMass,
		FuelMass:       r.FuelMass,
		InitialMass:    r.InitialMass,
		MassRatio:      r.MassRatio,
		EscapeVelocity: r.EscapeVelocity,
		EscapesEarth:   r.Escapes,
	}
}

type sweepRequestDTO struct {
	calculateRequestDTO
	Steps *numberDTO `json:"steps,omitempty"`
}

// steps returns the requested sample count, or the default when absent.
func (d sweepRequestDTO) steps() (int, error) {
	if d.Steps == nil {
		return rocket.DefaultSweepSteps, nil
	}
	v := float64(*d.Steps)
	if v != math.Trunc(v) {
		return 0, fmt.Errorf("steps must be a whole number, got %v: %w", v, rocket.ErrInvalidInput)
	}
	if v > math.MaxInt32 || v < math.MinInt32 {
		return 0, fmt.Errorf("steps out of range: %w", rocket.ErrInvalidInput)
	}
	return int(v), nil
}

type sweepPointDTO struct {
	Fill   float64 `json:"fill"`
	DeltaV float64 `json:"delta_v"`
}

type sweepResponseDTO struct {
	Points []sweepPointDTO `json:"points"`
}

func sweepToDTO(points []rocket.SweepPoint) sweepResponseDTO {
	out := sweepResponseDTO{Points: make([]sweepPointDTO, len(points))}
	for i, p := range points {
		out.Points[i] = sweepPointDTO{Fill: p.Fill, DeltaV: p.DeltaV}
	}
	return out
}

type messageDTO struct {
	Message string `json:"message"`
}

type errorDTO struct {
	Error string `json:"error"`
}
