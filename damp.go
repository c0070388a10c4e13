package arix

// Frame is one frame tick supplied by a render loop driver.
type Frame struct {
	// DT is the elapsed time since the previous tick in seconds.
	DT float64
	// Elapsed is the total time since the driver started in seconds.
	Elapsed float64
}

// Damp eases v toward t by the fraction clamp(dt*k, 0, 1) of the remaining
// distance. A step with dt*k >= 1 lands exactly on t.
func Damp(v, t, dt, k float64) float64 {
	return v + (t-v)*clamp(dt*k, 0, 1)
}

// DampVec3 eases the whole vector v toward t with a single shared rate.
func DampVec3(v, t Vec3, dt, k float64) Vec3 {
	return v.Lerp(t, clamp(dt*k, 0, 1))
}
