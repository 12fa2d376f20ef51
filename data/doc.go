// Package data provides the data object used to move bulk bytes between an
// application and the backend process.
//
// A Data handle wraps a Backend, the concrete backing store. The handle
// resolves the backend's capability table once, at construction: whichever
// of io.Reader, io.Writer, io.Seeker and Releaser the backend implements is
// what the handle can do. Operations distinguish three failure modes:
//
//   - gpgerr.ErrInvalidHandle: the handle is nil or already released
//   - gpgerr.ErrUnsupported: the backend lacks the capability
//   - gpgerr.ErrIO: the capability ran and failed (the cause is wrapped)
//
// # Backing Stores
//
//	mem := data.NewMem()                      // growable memory buffer
//	in, _ := data.NewFromBytes(plain, true)   // copy of an existing slice
//	fd, _ := data.NewFromFD(int(f.Fd()))      // raw descriptor
//	st, _ := data.NewFromStream(conn)         // any io.Reader/io.Writer/io.Seeker
//
// Custom stores implement any subset of the capability interfaces and are
// wrapped with New.
//
// # Outbound Queue
//
// Each handle carries a Pending queue of at most ChunkSize bytes. The
// iobridge package uses it to hold a chunk that a non-blocking descriptor
// has only partially accepted.
package data
