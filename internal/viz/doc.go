// Package viz renders sweep tables and trajectories in the terminal.
//
//   - [SweepPlots]: biomass, producer growth and persistence against K
//   - [SweepTable]: the same records as a styled table
//   - [TrajectoryPlot]: biomass of selected species over time
//   - [Live]: a Bubble Tea model that integrates a web in real time
//
// # Key Bindings (Live)
//
//	Space - Pause/Resume simulation
//	R     - Reset to initial biomass and parameters
//	Tab   - Cycle parameters
//	Up/K  - Increase parameter (+5%)
//	Down/J - Decrease parameter (-5%)
//	T     - Cycle color themes
//	?     - Show help overlay
package viz
