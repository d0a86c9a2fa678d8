package domain

type endpointEventKind uint8

const (
	// unknown
	unknown endpointEventKind = iota

	// I/O
	evPong // pong received

	// ctrl
	evClose // session teardown
	evReadError
	evWriteError
)

type endpointEvent struct {
	kind endpointEventKind
	err  error
}
