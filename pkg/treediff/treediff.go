// Package treediff computes the change records that would turn tree [left]
// into tree [right].
//
// A tree is a mapping (string keys), a sequence (integer indices) or a leaf
// scalar, nested arbitrarily. The result of [Diff] is an ordered list of
// [Change] records: every deletion first (left tree order), then every
// addition (right tree order), then every leaf update (left tree order).
//
//	left := map[string]any{"first": map[string]any{"second": 123}}
//	right := map[string]any{"first": map[string]any{"third": 456}}
//	treediff.Diff(left, right)
//	// - first.second: 123
//	// + first.third: 456
//
// Sequences are compared by position only. Passing cyclic structures is
// undefined behavior; use [WithMaxDepth] to fail fast with [ErrTooDeep].
package treediff
