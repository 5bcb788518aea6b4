package prefs

// Defaults used when a property list omits a value or supplies one that is
// out of range.
const (
	DefaultParticles    = 1024 * 8
	DefaultChannels     = 4
	DefaultTexRes       = 64
	MinParticles        = 1024
	DefaultDamping      = float32(1.0)
	DefaultPointSize    = float32(10.0)
	DefaultSofteningSqr = float32(1.0)
	DefaultTimestep     = float32(0.016)

	DefaultClusterScale  = float32(1.54)
	DefaultVelocityScale = float32(8.0)
)
