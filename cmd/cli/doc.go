// Package cli constructs the thanks command-line interface. It wires the Cobra
// root command, the layered configuration loader seeded with the embedded
// default configuration, and the zap logger handed to the star command.
package cli
