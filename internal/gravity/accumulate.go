package gravity

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
	"golang.org/x/sync/errgroup"
)

// minParallelBodies is the system size below which AccumulateParallel
// runs the sequential pass.
const minParallelBodies = 64

// PairForce returns the force term for the ordered pair (a, b), where a is
// the later body in enumeration order. The caller subtracts it from a and
// adds it to b. ok is false for coincident bodies, which contribute nothing.
func PairForce(a, b Body) (force mgl32.Vec2, ok bool) {
	d := a.Position.Sub(b.Position)
	distSq := d.Dot(d)
	// Same test as normalizing d: a zero (or underflowed) length has no direction.
	if distSq == 0 || !finite(distSq) {
		return mgl32.Vec2{}, false
	}
	dist := float32(math.Sqrt(float64(distSq)))
	dir := mgl32.Vec2{d[0] / dist, d[1] / dist}
	magnitude := G * a.mass * b.mass / distSq
	return dir.Mul(magnitude), true
}

// Accumulate computes every body's acceleration from the current positions.
func (s *System) Accumulate() {
	s.enter(StageAccumulate)
	s.resetTotals()
	accumulateRows(s.bodies, s.totals, 0, len(s.bodies))
	s.normalize()
}

// AccumulateParallel is Accumulate with the pair loop split across workers.
// Each worker owns a private totals slice; the slices are summed in worker
// order, so the result is deterministic for a given worker count.
func (s *System) AccumulateParallel(workers int) error {
	n := len(s.bodies)
	if workers <= 1 || n < minParallelBodies {
		s.Accumulate()
		return nil
	}
	if workers > n {
		workers = n
	}

	s.enter(StageAccumulate)
	s.resetTotals()

	bounds := rowBounds(n, workers)
	partial := make([][]mgl32.Vec2, workers)

	var g errgroup.Group
	for w := 0; w < workers; w++ {
		partial[w] = make([]mgl32.Vec2, n)
		g.Go(func() error {
			accumulateRows(s.bodies, partial[w], bounds[w], bounds[w+1])
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for w := 0; w < workers; w++ {
		for k := range s.totals {
			s.totals[k] = s.totals[k].Add(partial[w][k])
		}
	}
	s.normalize()
	return nil
}

// accumulateRows visits every pair (i, j) with lo <= i < hi and j < i.
func accumulateRows(bodies []Body, totals []mgl32.Vec2, lo, hi int) {
	for i := lo; i < hi; i++ {
		for j := 0; j < i; j++ {
			f, ok := PairForce(bodies[i], bodies[j])
			if !ok {
				continue
			}
			totals[i] = totals[i].Sub(f)
			totals[j] = totals[j].Add(f)
		}
	}
}

// rowBounds splits [0, n) into chunks holding roughly equal pair counts.
// Row i costs i pairs, so the k-th boundary sits near n*sqrt(k/workers).
func rowBounds(n, workers int) []int {
	bounds := make([]int, workers+1)
	for k := 1; k < workers; k++ {
		b := int(float64(n) * math.Sqrt(float64(k)/float64(workers)))
		if b < bounds[k-1] {
			b = bounds[k-1]
		}
		bounds[k] = b
	}
	bounds[workers] = n
	return bounds
}

func (s *System) resetTotals() {
	for i := range s.totals {
		s.totals[i] = mgl32.Vec2{}
		s.bodies[i].Acceleration = mgl32.Vec2{}
	}
}

// normalize turns force totals into accelerations (a = F/m).
func (s *System) normalize() {
	for i := range s.bodies {
		m := s.bodies[i].mass
		t := s.totals[i]
		s.bodies[i].Acceleration = mgl32.Vec2{t[0] / m, t[1] / m}
	}
}
