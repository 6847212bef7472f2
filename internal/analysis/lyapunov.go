package analysis

import (
	"fmt"
	"math"

	"github.com/san-kum/gravsim/internal/gravity"
)

// renormAt is the phase-space separation above which the perturbed
// trajectory is pulled back toward the reference.
const renormAt = 1.0

// LyapunovExponent estimates the largest Lyapunov exponent of the system
// started from bodies by offsetting body's x position by perturbation and
// following both trajectories for steps steps.
func LyapunovExponent(bodies []gravity.Body, body int, perturbation float32, steps int) (float64, error) {
	if body < 0 || body >= len(bodies) {
		return 0, fmt.Errorf("body index %d out of range [0,%d)", body, len(bodies))
	}
	if steps <= 0 {
		return 0, fmt.Errorf("steps must be positive, got %d", steps)
	}
	if perturbation == 0 {
		return 0, fmt.Errorf("perturbation must be non-zero")
	}

	ref, err := gravity.NewSystem(bodies)
	if err != nil {
		return 0, err
	}
	shifted := append([]gravity.Body(nil), bodies...)
	shifted[body].Position[0] += perturbation
	pert, err := gravity.NewSystem(shifted)
	if err != nil {
		return 0, err
	}

	d0 := separation(ref.Bodies(), pert.Bodies())
	if d0 == 0 {
		return 0, fmt.Errorf("perturbation %g lost to float32 rounding", perturbation)
	}

	sumLog := 0.0
	sep, base := d0, d0
	for i := 0; i < steps; i++ {
		if err := ref.Step(); err != nil {
			return 0, err
		}
		if err := pert.Step(); err != nil {
			return 0, err
		}

		rb, pb := ref.Bodies(), pert.Bodies()
		sep = separation(rb, pb)
		if math.IsNaN(sep) || math.IsInf(sep, 0) {
			return 0, fmt.Errorf("step %d: %w", i, gravity.ErrNonFinite)
		}

		if sep > renormAt {
			sumLog += math.Log(sep / base)
			scale := float32(d0 / sep)
			for k := range pb {
				pb[k].Position = rb[k].Position.Add(pb[k].Position.Sub(rb[k].Position).Mul(scale))
				pb[k].Velocity = rb[k].Velocity.Add(pb[k].Velocity.Sub(rb[k].Velocity).Mul(scale))
			}
			if pert, err = gravity.NewSystem(pb); err != nil {
				return 0, err
			}
			sep = separation(rb, pert.Bodies())
			if base = sep; base == 0 {
				base = d0
			}
		}
	}
	if sep > 0 && base > 0 {
		sumLog += math.Log(sep / base)
	}

	return sumLog / (float64(steps) * float64(gravity.DT)), nil
}

// separation is the Euclidean distance between two states in
// (position, velocity) space.
func separation(a, b []gravity.Body) float64 {
	sum := 0.0
	for i := range a {
		dp := a[i].Position.Sub(b[i].Position)
		dv := a[i].Velocity.Sub(b[i].Velocity)
		for _, c := range []float32{dp[0], dp[1], dv[0], dv[1]} {
			sum += float64(c) * float64(c)
		}
	}
	return math.Sqrt(sum)
}
