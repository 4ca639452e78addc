// Package ir defines the intermediate representation produced by the
// journey compiler: an ordered sequence of typed browser actions grouped
// by originating acceptance criterion, plus journey-level metadata.
//
// The IR is a pure value. Compiling the same journey against the same
// store snapshot yields byte-identical IR, which is what makes the
// content hash in hash.go meaningful.
package ir
