package physics

const (
	CollisionAxisTolerance = 1e-9
	GroundProbeDistance    = 0.001
	MinimumResidualSpeed   = 1e-4

	// DefaultRadius matches a 0.6 wide player column.
	DefaultRadius = 0.3
)
