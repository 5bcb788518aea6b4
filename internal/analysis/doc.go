// Package analysis finds periodic behavior in recorded metric series.
//
// A self-gravitating cluster that is out of virial equilibrium oscillates:
// kinetic energy rises and falls as the cluster collapses and rebounds.
// [Dominant] reports the period of the strongest such oscillation:
//
//	series := viz.Series(history, "kinetic_energy")
//	peak, err := analysis.Dominant(series, sampleInterval)
package analysis
