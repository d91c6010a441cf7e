// Package foodweb describes who-eats-whom topologies.
//
// A [FoodWeb] is an immutable S×S adjacency structure where A[i][j] means
// species i consumes species j. Species without prey are producers. From
// the adjacency the package derives prey-averaged trophic levels and body
// masses M_i = Z^(TL_i - 1), where Z is the predator-prey body-mass ratio.
//
// Webs are built from an explicit matrix ([FromAdjacency], [FromMatrix]),
// as a linear chain ([Chain]) or sampled from the niche model ([Niche]).
package foodweb
