// Package dynamo provides core simulation primitives for dynamical systems.
//
// The package defines the fundamental interfaces and types for numerical
// simulation of ordinary differential equations (ODEs):
//
//   - [State]: vector representing system state (species biomass)
//   - [System]: interface for ODE systems (dX/dt = f(X, t))
//   - [Integrator]: numerical stepper interface
//   - [Projector]: post-step state correction (e.g. extinction clamping)
//   - [Simulator]: orchestrates simulation runs
//
// # Example
//
//	model := bioenergetic.NewModel(params)
//	integ := integrators.NewRK4()
//	sim := dynamo.New(model, integ)
//	result, _ := sim.Run(ctx, b0, cfg)
//
// # Thread Safety
//
// Simulator instances are NOT thread-safe. Integrators keep scratch buffers,
// so parallel runs must each own their simulator. Use [Ensemble], which
// builds one simulator per replicate.
package dynamo
