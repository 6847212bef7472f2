// Package viz is the terminal viewer, built on Bubble Tea.
//
//   - [Model]: live view of one scene on a braille [Canvas]
//   - [Picker]: preset list that opens a live view
//
// # Input
//
//	Space      - Pause/Resume
//	.          - Single step while paused
//	R          - Reset scene and camera
//	Arrows/hjkl - Pan
//	+/-        - Zoom
//	Left drag  - Pan
//	Wheel      - Zoom about the cursor
//	[ ]        - Step through recent history
//	T          - Cycle themes
//	?          - Help overlay
package viz
