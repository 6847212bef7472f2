package gravity

// IntegrateVelocity advances every velocity by acc * DT.
// Must follow a completed Accumulate.
func (s *System) IntegrateVelocity() {
	s.enter(StageIntegrateVelocity)
	for i := range s.bodies {
		b := &s.bodies[i]
		b.Velocity = b.Velocity.Add(b.Acceleration.Mul(DT))
	}
}

// IntegratePosition advances every position by the already updated
// velocity times DT (semi-implicit Euler).
func (s *System) IntegratePosition() {
	s.enter(StageIntegratePosition)
	for i := range s.bodies {
		b := &s.bodies[i]
		b.Position = b.Position.Add(b.Velocity.Mul(DT))
	}
}
