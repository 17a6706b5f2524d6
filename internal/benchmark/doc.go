// Package benchmark loads published estimator accuracy results and compares
// estimators across datasets: mean accuracies, average ranks, pairwise
// win/tie/loss counts, and the best estimator per dataset.
package benchmark
