// Package analysis characterises the long-run dynamics of a food web.
//
//   - [BifurcationDiagram]: tail extrema of one species across K, the
//     classic paradox-of-enrichment figure
//   - [LyapunovExponent]: largest exponent via trajectory separation
//   - [NewPhasePortrait]: consumer against resource from a stored run
//
// A flat branch in the bifurcation diagram is a stable equilibrium. Two
// branches splitting apart mark the onset of limit cycles:
//
//	points, err := analysis.BifurcationDiagram(ctx, model, integ, b0, cfg)
//	fmt.Print(analysis.BifurcationToASCII(points, 60, 20))
package analysis
