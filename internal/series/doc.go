// Package series defines the collection types shared by every estimator:
// ordered sets of time-series cases backed by gonum matrices, along with
// validation helpers and a seeded synthetic generator used across tests and
// examples.
package series
