// Package internal holds helpers shared by the emulator packages.
package internal

import (
	"iter"
)

// IterSeqConcat chains sequences, stopping early if the consumer stops.
func IterSeqConcat[T any](seqs ...iter.Seq[T]) iter.Seq[T] {
	return func(yield func(T) bool) {
		for _, seq := range seqs {
			for val := range seq {
				if !yield(val) {
					return
				}
			}
		}
	}
}

// IterSeq2Concat chains key/value sequences, stopping early if the consumer stops.
// Duplicate keys are all yielded; a map collector keeps the last.
func IterSeq2Concat[T1 any, T2 any](seqs ...iter.Seq2[T1, T2]) iter.Seq2[T1, T2] {
	return func(yield func(T1, T2) bool) {
		for _, seq := range seqs {
			for val1, val2 := range seq {
				if !yield(val1, val2) {
					return
				}
			}
		}
	}
}
