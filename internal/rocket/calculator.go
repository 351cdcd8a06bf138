package rocket

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrInvalidInput covers unknown names and out-of-range or non-numeric values.
	ErrInvalidInput = errors.New("invalid input")
	// ErrDomain is returned when the geometry leaves no positive dry mass.
	ErrDomain = errors.New("degenerate mass ratio")
)

// Request is a single delta-v calculation.
type Request struct {
	Material     string
	Fuel         string
	Height       float64 // m
	Diameter     float64 // m
	FillFraction float64 // 0..1
}

// Result is the outcome of a calculation. DeltaV is the headline figure; the
// masses are reported so callers can show how it was reached.
type Result struct {
	DeltaV         float64 // m/s
	DryMass        float64 // kg
	FuelMass       float64 // kg
	InitialMass    float64 // kg
	MassRatio      float64 // initial / dry
	EscapeVelocity float64 // m/s threshold used for Escapes
	Escapes        bool
}

// Calculator evaluates the Tsiolkovsky rocket equation over a cylinder model
// of the rocket. It holds no mutable state and is safe for concurrent use.
type Calculator struct {
	catalog        *Catalog
	policy         Policy
	escapeVelocity float64
	maxSweepSteps  int
}

// Option tunes a Calculator.
type Option func(*Calculator)

func WithPolicy(p Policy) Option {
	return func(c *Calculator) { c.policy = p }
}

func WithEscapeVelocity(v float64) Option {
	return func(c *Calculator) {
		if v > 0 && !math.IsInf(v, 0) {
			c.escapeVelocity = v
		}
	}
}

func WithMaxSweepSteps(n int) Option {
	return func(c *Calculator) {
		if n >= MinSweepSteps {
			c.maxSweepSteps = min(n, SweepStepsCeiling)
		}
	}
}

// NewCalculator builds a calculator over the given catalog. A nil catalog
// means DefaultCatalog.
func NewCalculator(catalog *Catalog, opts ...Option) *Calculator {
	if catalog == nil {
		catalog = DefaultCatalog()
	}
	c := &Calculator{
		catalog:        catalog,
		policy:         DefaultPolicy(),
		escapeVelocity: EarthEscapeVelocity,
		maxSweepSteps:  MaxSweepSteps,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Calculator) Catalog() *Catalog { return c.catalog }
func (c *Calculator) Policy() Policy    { return c.policy }

// DeltaV is Compute reduced to the headline figure.
func (c *Calculator) DeltaV(material, fuel string, height, diameter, fill float64) (float64, error) {
	res, err := c.Compute(Request{
		Material:     material,
		Fuel:         fuel,
		Height:       height,
		Diameter:     diameter,
		FillFraction: fill,
	})
	if err != nil {
		return 0, err
	}
	return res.DeltaV, nil
}

// Compute validates the request and evaluates
//
//	dry     = (total - void) * materialDensity
//	fuel    = capacity(void, shell) * fuelDensity * fill
//	deltaV  = exhaustVelocity * ln((dry + fuel) / dry)
func (c *Calculator) Compute(req Request) (Result, error) {
	mat, fuel, err := c.validate(req)
	if err != nil {
		return Result{}, err
	}

	// The float64 conversions stop the compiler fusing a product into the
	// following add, so results are identical on every architecture.
	size := c.policy.Size(Body{Height: req.Height, Diameter: req.Diameter})
	dry := float64(size.Shell * mat.Density)
	if !(dry > 0) || math.IsInf(dry, 0) {
		return Result{}, fmt.Errorf("dry mass %v kg for %s body %.3fm x %.3fm: %w",
			dry, mat.Name, req.Height, req.Diameter, ErrDomain)
	}

	fullFuel := float64(size.FuelCapacity * fuel.Density)
	fuelMass := float64(fullFuel * req.FillFraction)
	initial := dry + fuelMass
	ratio := initial / dry
	if !(ratio >= 1) || math.IsInf(ratio, 0) {
		return Result{}, fmt.Errorf("mass ratio %v: %w", ratio, ErrDomain)
	}

	dv := fuel.ExhaustVelocity * math.Log(ratio)
	return Result{
		DeltaV:         dv,
		DryMass:        dry,
		FuelMass:       fuelMass,
		InitialMass:    initial,
		MassRatio:      ratio,
		EscapeVelocity: c.escapeVelocity,
		Escapes:        dv >= c.escapeVelocity,
	}, nil
}

func (c *Calculator) validate(req Request) (Material, Fuel, error) {
	mat, ok := c.catalog.Material(req.Material)
	if !ok {
		return Material{}, Fuel{}, fmt.Errorf("unknown material %q: %w", req.Material, ErrInvalidInput)
	}
	fuel, ok := c.catalog.Fuel(req.Fuel)
	if !ok {
		return Material{}, Fuel{}, fmt.Errorf("unknown fuel type %q: %w", req.Fuel, ErrInvalidInput)
	}
	if !(req.Height > 0) || math.IsInf(req.Height, 0) {
		return Material{}, Fuel{}, fmt.Errorf("height must be a positive number of meters, got %v: %w", req.Height, ErrInvalidInput)
	}
	if !(req.Diameter > 0) || math.IsInf(req.Diameter, 0) {
		return Material{}, Fuel{}, fmt.Errorf("diameter must be a positive number of meters, got %v: %w", req.Diameter, ErrInvalidInput)
	}
	if !(req.FillFraction >= 0 && req.FillFraction <= 1) {
		return Material{}, Fuel{}, fmt.Errorf("fuel fill percentage must be between 0 and 1, got %v: %w", req.FillFraction, ErrInvalidInput)
	}
	return mat, fuel, nil
}
