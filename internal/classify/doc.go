// Package classify implements the matrix profile classifier: a pipeline that
// transforms each case into its z-normalised matrix profile and classifies the
// profiles with a nearest-neighbour estimator.
package classify
