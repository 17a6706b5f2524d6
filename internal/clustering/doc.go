// Package clustering groups time-series collections with kernel k-means over
// the Global Alignment Kernel.
package clustering
