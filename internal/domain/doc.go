// Package domain models the maritime port-risk prototype: the static port and
// lane registries, the synthetic vessel trajectories generated from them, and
// the collaborator contracts for weather, news and language-model risk scoring.
//
// # Synthetic Trajectories
//
// Trajectories are demo data for a map, not a forecast. Each vessel is assigned
// a lane (base route) eligible for its category, the lane is densified by linear
// interpolation between consecutive ports, every coordinate is jittered, and a
// speed and timestamp are derived per point:
//
//	points per vessel = (ports in lane - 1) * (k + 1) + 1
//	first/last point  = 0.5 * base speed           (port departure/approach)
//	inside slow zone  = 0.7 * base speed           (e.g. the Suez Canal box)
//	elsewhere         = base speed * U[0.8, 1.2]
//	hours to point i  = dist(i-1, i) * 60 / speed(i)
//
// Distance is planar in coordinate degrees by default (one degree of arc is
// roughly sixty nautical miles, hence the factor of 60). Set
// GeneratorOptions.Geodesic for haversine nautical miles instead.
//
// Randomness is always supplied by the caller through GeneratorOptions so that
// a fixed seed reproduces the same trajectory set.
//
// # Language-Model Output
//
// News and risk text returned by language models has no contractual format.
// [ParseNewsItems], [ParseRiskScore] and [ParseRiskStatus] are strict: anything
// that does not match is dropped or reported as unparsed, never raised.
package domain
