// Package viz renders simulations in the terminal.
//
//   - [Canvas]: braille pixel canvas, two by four dots per cell
//   - [Camera]: orbit camera projecting particle positions onto a canvas
//   - [EnergyPlot]: asciigraph line plot of a recorded metric
//   - [Live]: Bubble Tea model stepping a compute stage in real time
//
// # Key Bindings
//
//	Space  - Pause/Resume
//	R      - Regenerate initial conditions
//	Tab    - Cycle tunable parameter
//	Up/K   - Increase parameter (+5%)
//	Down/J - Decrease parameter (-5%)
//	X/Y/Z  - Rotate camera
//	+/-    - Zoom
//	T      - Cycle themes
//	?      - Help
package viz
