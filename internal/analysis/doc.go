// Package analysis characterizes recorded and simulated trajectories.
//
//   - [DominantPeriod]: orbital period of a coordinate series via FFT
//   - [LyapunovExponent]: largest Lyapunov exponent by trajectory separation
//   - [Portrait]: orbit or phase-space trace of one body from recorded frames
//   - [Poincare]: section of a body's trajectory at positive y crossings
//
// # Chaos Detection
//
// A positive largest Lyapunov exponent indicates chaotic dynamics:
//
//	lambda, err := analysis.LyapunovExponent(sys.Bodies(), 1, 1e-3, 2000)
//	if err == nil && lambda > 0 {
//	    // trajectories diverge exponentially
//	}
package analysis
