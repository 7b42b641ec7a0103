// Package analysis provides post-processing for recorded particle traces.
//
//   - [PowerSpectrum] and [DominantFrequency]: spectral content of a trace
//   - [NewPhasePortrait]: a trace against its rate, rendered as text
//   - [Crossings] and [Period]: level crossings and the mean period they imply
//
// # Frequency Of An Elastic Bar
//
//	v := result.Series("velocity", 0)
//	f, err := analysis.DominantFrequency(v, dt)
package analysis
