// Package bioenergetic implements the Yodzis-Innes bio-energetic consumer
// resource model on top of a [foodweb.FoodWeb].
//
// For producer i and consumer i the biomass dynamics are
//
//	dB_i/dt = r_i·G_i·B_i − Σ_k x_k·y_k·B_k·F_ki / e_ki
//	dB_i/dt = −x_i·B_i + Σ_j x_i·y_i·B_i·F_ij − Σ_k x_k·y_k·B_k·F_ki / e_ki
//
// with the generalised functional response
//
//	F_ij = ω_ij·B_j^h / (B0^h + c·B_i·B0^h + Σ_l ω_il·B_l^h)
//
// Producer growth G_i is logistic. Under [SpeciesSpecific] productivity each
// producer has its own carrying capacity (G_i = 1 − B_i/K_i). Under
// [SystemWide] productivity all producers share one K
// (G_i = 1 − ΣB_p/K).
package bioenergetic
