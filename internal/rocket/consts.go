package rocket

const (
	DefaultVoidRatio        = 0.85    // inner tank diameter / outer body diameter
	DefaultCapacityExponent = 1.1     // used by the "scaled" policy only
	EarthEscapeVelocity     = 11200.0 // m/s
	DefaultSweepSteps       = 11
	MinSweepSteps           = 2
	MaxSweepSteps           = 101
	SweepStepsCeiling       = 10 * MaxSweepSteps // upper bound for a configured maximum

	PolicyCoaxial = "coaxial"
	PolicyScaled  = "scaled"
)
