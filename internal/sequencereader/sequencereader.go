// Copyright (C) 2024 Creditor Corp. Group.
// See LICENSE for copying information.

package sequencereader

import (
	"errors"
)

// ErrSequenceEnded defines that there are no more elements to read.
var ErrSequenceEnded = errors.New("the sequence is ended")

// SequenceReader defines the simplest reader for sequences.
type SequenceReader[T any] struct {
	s    []T
	idx  int
	size int
}

// New is a constructor for SequenceReader.
func New[T any](seq []T) *SequenceReader[T] {
	return &SequenceReader[T]{
		s:    seq,
		idx:  0,
		size: len(seq),
	}
}

// HasNext returns true is sequence is not ended.
func (sr *SequenceReader[T]) HasNext() bool {
	return sr.idx < sr.size
}

// Next returns next element of the sequence.
func (sr *SequenceReader[T]) Next() (T, error) {
	if !sr.HasNext() {
		return *new(T), ErrSequenceEnded
	}

	pIdx := sr.idx
	sr.idx++

	return sr.s[pIdx], nil
}

// Peek returns next element of the sequence without moving forward.
func (sr *SequenceReader[T]) Peek() (T, error) {
	if !sr.HasNext() {
		return *new(T), ErrSequenceEnded
	}

	return sr.s[sr.idx], nil
}

// Position returns index of the element that will be returned by Next.
func (sr *SequenceReader[T]) Position() int {
	return sr.idx
}

// Len returns how many items are left.
func (sr *SequenceReader[T]) Len() int {
	return sr.size - sr.idx
}
