// Package analysis extracts orbital quantities from sampled runs.
//
//   - [OrbitalPeriod]: dominant period of a series from its power spectrum
//   - [RadialStats]: mean and spread of the distance to a centre
//   - [Distances]: distance series between two bodies of a [sim.Result]
//
// Periods come out in the unit of the sampling interval, simulated days for
// results produced by the sim package:
//
//	d, _ := analysis.Distances(res, "Earth", "Sun")
//	period, err := analysis.OrbitalPeriod(d, res.Times[1]-res.Times[0])
package analysis
