// Package segment transforms univariate collections into interval views:
// fixed intervals, randomly sampled intervals, and hop-1 sliding windows.
package segment
