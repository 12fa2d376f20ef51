// Package iobridge relays bytes between backend process descriptors and data
// objects without ever blocking the caller.
//
// The functions here are readiness handlers. An external event loop (poll,
// epoll, a goroutine per conversation, ...) calls them when a descriptor is
// ready and they move at most one chunk per call:
//
//	for {
//	    // wait until stdout of the backend is readable
//	    done, err := iobridge.Inbound(stdout, plaintext)
//	    if err != nil || done {
//	        break
//	    }
//	}
//
// Outbound keeps a partially written chunk in the data object's Pending
// queue. When the descriptor reports EAGAIN the call returns without error
// and the loop invokes it again once the descriptor is writable:
//
//	for {
//	    // wait until stdin of the backend is writable
//	    done, err := iobridge.Outbound(stdin, ciphertext)
//	    if err != nil || done {
//	        break
//	    }
//	}
//
// A true completion result means the descriptor has been closed; callers
// stop polling it. Completion is reported exactly once per stream.
//
// LineInbound is the status channel counterpart: it feeds raw bytes to a
// LineSink (such as *status.Dispatcher) and closes the sink at end of stream.
package iobridge
