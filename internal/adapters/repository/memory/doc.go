// Package memory holds in-process implementations of the repository ports.
// They back STORAGE_DRIVER=memory and the unit tests; data is lost on restart.
package memory
