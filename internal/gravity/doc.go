// Package gravity is the physics core of gravsim.
//
// A [System] owns an ordered set of point masses ([Body]) and advances
// them one discrete step at a time with a three-stage pipeline:
//
//   - [System.Accumulate]: pairwise gravitational forces, normalized by mass
//   - [System.IntegrateVelocity]: vel += acc * DT
//   - [System.IntegratePosition]: pos += vel * DT
//
// The stages run strictly in that order (semi-implicit Euler): velocity
// uses the freshly accumulated acceleration and position uses the updated
// velocity. [System.Step] runs the whole sequence once.
//
// # Units
//
// G is 1.0 and DT is 1.5. Both are fixed natural units, not calibrated
// physical constants.
//
// # Thread Safety
//
// A System is NOT safe for concurrent use. [System.AccumulateParallel]
// fans out internally but joins before returning.
package gravity
