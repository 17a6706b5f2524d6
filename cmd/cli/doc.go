// Package cli assembles the aeon command tree. The root command loads
// configuration and builds the logger, then hands both to the benchmark,
// cluster, classify, and segment subcommands through provider closures.
package cli
