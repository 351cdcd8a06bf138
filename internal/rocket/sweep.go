package rocket

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
)

// SweepPoint is delta-v at one fill fraction.
type SweepPoint struct {
	Fill   float64
	DeltaV float64
}

// Sweep evaluates the request at steps evenly spaced fill fractions from
// empty to full. The request's own FillFraction is ignored.
func (c *Calculator) Sweep(req Request, steps int) ([]SweepPoint, error) {
	if steps < MinSweepSteps || steps > c.maxSweepSteps {
		return nil, fmt.Errorf("sweep steps must be between %d and %d, got %d: %w",
			MinSweepSteps, c.maxSweepSteps, steps, ErrInvalidInput)
	}

	fills := floats.Span(make([]float64, steps), 0, 1)
	fills[0], fills[steps-1] = 0, 1

	points := make([]SweepPoint, 0, steps)
	for _, fill := range fills {
		req.FillFraction = fill
		res, err := c.Compute(req)
		if err != nil {
			return nil, err
		}
		points = append(points, SweepPoint{Fill: fill, DeltaV: res.DeltaV})
	}
	return points, nil
}

func (c *Calculator) MaxSweepSteps() int { return c.maxSweepSteps }
