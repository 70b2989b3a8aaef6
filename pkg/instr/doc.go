// Package instr layers the IEEE 488.2 common-command surface over a
// dispatch session: identification, reset, status clearing, operation
// completion and error-queue draining work the same on every
// SCPI-conforming instrument regardless of its declaration tree.
//
// The package also ships a compiled-in declaration for the Keithley
// 24xx source-meter family; see K24xx.
package instr
