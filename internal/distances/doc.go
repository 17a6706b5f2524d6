// Package distances implements elastic distance measures between time-series
// cases: dynamic time warping and its derivative and weighted variants,
// alignment paths, pairwise distance matrices, and the bounding matrices
// (Sakoe-Chiba window, Itakura parallelogram) that constrain them.
package distances
