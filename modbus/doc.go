// Package modbus contains the protocol-level definitions shared by the
// go-modbus client packages: the error domain used to classify primitive
// failures, function and exception code constants, the Transport interface
// that the session layer drives, and helpers for the packed external
// representation of coil values.
//
// The session and retry logic lives in the mbtcp package; this package is
// deliberately free of any I/O.
package modbus
