// Package averaging computes barycenters of time-series collections under
// elastic distances (DTW barycenter averaging).
package averaging
