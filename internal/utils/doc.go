// Package utils carries the cross-command plumbing: a Viper-backed
// configuration loader with embedded defaults and environment overrides, and
// a zap logger factory with configurable level and format fallbacks.
package utils
