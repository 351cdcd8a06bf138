package rocket

import (
	"fmt"
	"math"
)

// Material is a structural material the rocket body can be built from.
type Material struct {
	Name    string
	Density float64 // kg/m^3
}

// Fuel is a propellant the tank can be filled with.
type Fuel struct {
	Name            string
	Density         float64 // kg/m^3
	ExhaustVelocity float64 // m/s
}

// Catalog holds the material and fuel reference tables. A Catalog is never
// mutated after construction, so it can be shared between goroutines.
type Catalog struct {
	materials []Material
	fuels     []Fuel
	matIdx    map[string]int
	fuelIdx   map[string]int
}

var defaultMaterials = []Material{
	{Name: "Aluminum-Lithium Alloy", Density: 2550},
	{Name: "Carbon Fiber", Density: 1800},
	{Name: "Glass", Density: 2500},
	{Name: "Gold", Density: 19320},
	{Name: "Ice", Density: 917},
	{Name: "Inconel", Density: 8497},
	{Name: "Peanutbutter", Density: 1091},
	{Name: "Plastic", Density: 1040},
	{Name: "Porcelain Ceramic", Density: 2400},
	{Name: "Silver", Density: 10490},
	{Name: "Steel", Density: 7850},
	{Name: "Titanium", Density: 4540},
	{Name: "Wood", Density: 440},
}

var defaultFuels = []Fuel{
	{Name: "Hydrazine", Density: 1010, ExhaustVelocity: 3500},
	{Name: "Hydrogen Peroxide", Density: 1450, ExhaustVelocity: 1800},
	{Name: "Liquid Hydrogen", Density: 70.9, ExhaustVelocity: 6553},
	{Name: "Liquid Methane", Density: 26429, ExhaustVelocity: 3450},
	{Name: "Liquid Oxygen", Density: 1141, ExhaustVelocity: 3000},
	{Name: "Nitrous Oxide", Density: 1220, ExhaustVelocity: 2300},
	{Name: "Refined Petroleum-1", Density: 820, ExhaustVelocity: 2700},
}

// DefaultCatalog returns the built-in reference tables.
func DefaultCatalog() *Catalog {
	c, err := NewCatalog(defaultMaterials, defaultFuels)
	if err != nil {
		panic(err) // built-in tables are fixed
	}
	return c
}

// NewCatalog validates the given entries and builds a catalog that lists them
// in the order given.
func NewCatalog(materials []Material, fuels []Fuel) (*Catalog, error) {
	c := &Catalog{
		materials: make([]Material, 0, len(materials)),
		fuels:     make([]Fuel, 0, len(fuels)),
		matIdx:    make(map[string]int, len(materials)),
		fuelIdx:   make(map[string]int, len(fuels)),
	}
	for _, m := range materials {
		if err := c.addMaterial(m); err != nil {
			return nil, err
		}
	}
	for _, f := range fuels {
		if err := c.addFuel(f); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Extend returns a new catalog with the extra entries appended after the
// existing ones. The receiver is left untouched.
func (c *Catalog) Extend(materials []Material, fuels []Fuel) (*Catalog, error) {
	allMaterials := append(append([]Material(nil), c.materials...), materials...)
	allFuels := append(append([]Fuel(nil), c.fuels...), fuels...)
	return NewCatalog(allMaterials, allFuels)
}

func (c *Catalog) addMaterial(m Material) error {
	if m.Name == "" {
		return fmt.Errorf("material with empty name: %w", ErrInvalidInput)
	}
	if _, dup := c.matIdx[m.Name]; dup {
		return fmt.Errorf("duplicate material %q: %w", m.Name, ErrInvalidInput)
	}
	if !(m.Density > 0) || math.IsInf(m.Density, 0) {
		return fmt.Errorf("material %q density %v: %w", m.Name, m.Density, ErrInvalidInput)
	}
	c.matIdx[m.Name] = len(c.materials)
	c.materials = append(c.materials, m)
	return nil
}

func (c *Catalog) addFuel(f Fuel) error {
	if f.Name == "" {
		return fmt.Errorf("fuel with empty name: %w", ErrInvalidInput)
	}
	if _, dup := c.fuelIdx[f.Name]; dup {
		return fmt.Errorf("duplicate fuel %q: %w", f.Name, ErrInvalidInput)
	}
	if !(f.Density > 0) || math.IsInf(f.Density, 0) {
		return fmt.Errorf("fuel %q density %v: %w", f.Name, f.Density, ErrInvalidInput)
	}
	if !(f.ExhaustVelocity > 0) || math.IsInf(f.ExhaustVelocity, 0) {
		return fmt.Errorf("fuel %q exhaust velocity %v: %w", f.Name, f.ExhaustVelocity, ErrInvalidInput)
	}
	c.fuelIdx[f.Name] = len(c.fuels)
	c.fuels = append(c.fuels, f)
	return nil
}

// MaterialNames lists material names in declared order.
func (c *Catalog) MaterialNames() []string {
	names := make([]string, len(c.materials))
	for i, m := range c.materials {
		names[i] = m.Name
	}
	return names
}

// FuelNames lists fuel names in declared order.
func (c *Catalog) FuelNames() []string {
	names := make([]string, len(c.fuels))
	for i, f := range c.fuels {
		names[i] = f.Name
	}
	return names
}

func (c *Catalog) Material(name string) (Material, bool) {
	i, ok := c.matIdx[name]
	if !ok {
		return Material{}, false
	}
	return c.materials[i], true
}

func (c *Catalog) Fuel(name string) (Fuel, bool) {
	i, ok := c.fuelIdx[name]
	if !ok {
		return Fuel{}, false
	}
	return c.fuels[i], true
}
