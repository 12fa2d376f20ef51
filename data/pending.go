package data

// Pending is a bounded byte queue holding at most ChunkSize bytes. It keeps
// a chunk that a descriptor has only partially accepted until the next
// write attempt, and records whether a relay over the data object has
// reached end of stream. The zero value is an empty queue.
type Pending struct {
	buf  [ChunkSize]byte
	n    int
	done bool
}

// MarkDone records that a relay reached end of stream.
func (q *Pending) MarkDone() {
	q.done = true
}

// Done reports whether a relay reached end of stream. Seeking the data
// object or resetting the queue clears it.
func (q *Pending) Done() bool {
	return q.done
}

// Len returns the number of queued bytes.
func (q *Pending) Len() int {
	return q.n
}

// Empty reports whether the queue holds no bytes.
func (q *Pending) Empty() bool {
	return q.n == 0
}

// Bytes returns the queued bytes. The slice is only valid until the next
// call that modifies the queue.
func (q *Pending) Bytes() []byte {
	return q.buf[:q.n]
}

// Fill calls read with the free tail of the queue and accounts for the
// bytes it reports. It returns read's results unchanged.
func (q *Pending) Fill(read func(p []byte) (int, error)) (int, error) {
	if q.n == len(q.buf) {
		return 0, nil
	}
	n, err := read(q.buf[q.n:])
	if n > 0 {
		if n > len(q.buf)-q.n {
			n = len(q.buf) - q.n
		}
		q.n += n
	}
	return n, err
}

// Consume drops the first n bytes and shifts the remainder to the front.
func (q *Pending) Consume(n int) {
	if n <= 0 {
		return
	}
	if n >= q.n {
		q.n = 0
		return
	}
	copy(q.buf[:], q.buf[n:q.n])
	q.n -= n
}

// Reset empties the queue, wipes its contents and clears the end of stream
// mark.
func (q *Pending) Reset() {
	clear(q.buf[:q.n])
	q.n = 0
	q.done = false
}
