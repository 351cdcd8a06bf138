package rocket

import (
	"fmt"
	"math"
	"strings"
)

// Body is the outer cylinder approximating the rocket.
type Body struct {
	Height   float64 // m
	Diameter float64 // m
}

// Volume returns the volume enclosed by the outer cylinder.
func (b Body) Volume() float64 {
	return cylinderVolume(b.Diameter, b.Height)
}

// CapacityFunc maps the tank (void) and shell volumes to the volume of fuel
// the tank holds when full. It must be non-negative for non-negative inputs.
type CapacityFunc func(void, shell float64) float64

// LinearCapacity fills the whole void with fuel.
func LinearCapacity(void, _ float64) float64 {
	return void
}

// PowerCapacity scales fuel capacity as void^exp, super-linear for exp > 1.
func PowerCapacity(exp float64) CapacityFunc {
	return func(void, _ float64) float64 {
		return math.Pow(void, exp)
	}
}

// Policy decides how much of the body is structure and how much is tank.
//
// The tank is a coaxial cylinder of the same height whose diameter is
// VoidRatio times the body diameter. Everything outside it is shell.
type Policy struct {
	Name      string
	VoidRatio float64
	Exponent  float64 // only meaningful for PolicyScaled
	Capacity  CapacityFunc
}

// Sizing is the volume split produced by a policy for one body.
type Sizing struct {
	Total        float64 // m^3
	Void         float64 // m^3
	Shell        float64 // m^3
	FuelCapacity float64 // m^3 of fuel at 100% fill
}

// Size splits the body into shell and tank volumes.
func (p Policy) Size(b Body) Sizing {
	total := b.Volume()
	void := cylinderVolume(b.Diameter*p.VoidRatio, b.Height)
	shell := total - void
	capacity := p.Capacity
	if capacity == nil {
		capacity = LinearCapacity
	}
	return Sizing{
		Total:        total,
		Void:         void,
		Shell:        shell,
		FuelCapacity: capacity(void, shell),
	}
}

// DefaultPolicy is a coaxial tank at 85% of the body diameter, filled
// linearly.
func DefaultPolicy() Policy {
	return Policy{
		Name:      PolicyCoaxial,
		VoidRatio: DefaultVoidRatio,
		Exponent:  1,
		Capacity:  LinearCapacity,
	}
}

// PolicyByName builds a named policy. The tuning values are sanitized.
func PolicyByName(name string, voidRatio, exponent float64) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", PolicyCoaxial:
		return SanitizePolicy(Policy{Name: PolicyCoaxial, VoidRatio: voidRatio, Exponent: 1}), nil
	case PolicyScaled:
		return SanitizePolicy(Policy{Name: PolicyScaled, VoidRatio: voidRatio, Exponent: exponent}), nil
	default:
		return DefaultPolicy(), fmt.Errorf("unknown geometry policy %q: %w", name, ErrInvalidInput)
	}
}

// SanitizePolicy replaces out-of-range tuning with defaults and rebuilds the
// capacity function to match the policy name.
func SanitizePolicy(p Policy) Policy {
	if !(p.VoidRatio > 0 && p.VoidRatio < 1) {
		p.VoidRatio = DefaultVoidRatio
	}
	switch p.Name {
	case PolicyScaled:
		if !(p.Exponent > 0) || math.IsInf(p.Exponent, 0) {
			p.Exponent = DefaultCapacityExponent
		}
		p.Capacity = PowerCapacity(p.Exponent)
	default:
		p.Name = PolicyCoaxial
		p.Exponent = 1
		p.Capacity = LinearCapacity
	}
	return p
}

func (p Policy) String() string {
	if p.Name == PolicyScaled {
		return fmt.Sprintf("%s(ratio=%.3f, exp=%.3f)", p.Name, p.VoidRatio, p.Exponent)
	}
	return fmt.Sprintf("%s(ratio=%.3f)", p.Name, p.VoidRatio)
}

func cylinderVolume(diameter, height float64) float64 {
	r := diameter / 2
	return float64(math.Pi * (r * r) * height)
}
