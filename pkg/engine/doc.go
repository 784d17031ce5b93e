// Package engine launches the external JSHint engine and its runtime probe.
//
// The engine is an opaque JVM process. This package only knows how to build
// its argument vector, verify that the runtime is installed, and map the
// process outcome to success or failure:
//
//	java -cp <probe.jar> Test                      # must print "OK"
//	java -cp <rhino.jar> <main> <jshint.js> <token> <file>...
//
// Arguments are passed as a vector, never through a shell, so the serialized
// configuration token needs no quoting.
//
// The package also defines the classified Error used across the pipeline.
package engine
