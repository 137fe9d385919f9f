// Package viz draws a running simulation in the terminal.
//
// [Model] is a Bubble Tea program that ticks a [sim.Simulation] at 60 FPS
// and renders it on a braille [Canvas] through a springy orbiting [Camera].
// [RunInteractive] adds a preset menu in front of it.
//
// # Key Bindings
//
//	Space  - pause / resume
//	R      - reset
//	+ / -  - speed x2 / ÷2
//	> / <  - speed x10 / ÷10
//	Tab    - focus next body
//	Arrows - rotate camera
//	I / O  - zoom
//	G      - toggle GIF recording
//	?      - help overlay
package viz
