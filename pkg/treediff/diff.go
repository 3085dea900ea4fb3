package treediff

import (
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// Differ computes diffs with a fixed configuration. The zero value is not
// usable; create one with [New]. A Differ holds no per-call state and may be
// used from multiple goroutines.
type Differ struct {
	maxDepth int
	parallel bool
	logger   zerolog.Logger
}

// New returns a Differ configured by [opts].
func New(opts ...Option) *Differ {
	d := &Differ{logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

var defaultDiffer = New()

// Diff returns the change records that turn [left] into [right]: every
// deletion, then every addition, then every update. Identical trees yield an
// empty (nil) result.
func Diff(left, right any) Changes {
	changes, _ := defaultDiffer.Diff(left, right)
	return changes
}

// DiffDeletions reports every path of [left] that is missing in [right],
// at its shallowest missing point.
func DiffDeletions(left, right any) Changes {
	changes, _ := defaultDiffer.Deletions(left, right)
	return changes
}

// DiffAdditions reports every path of [right] that is missing in [left],
// at its shallowest missing point.
func DiffAdditions(left, right any) Changes {
	changes, _ := defaultDiffer.Additions(left, right)
	return changes
}

// DiffUpdates reports every leaf of [left] whose counterpart in [right] is a
// different leaf.
func DiffUpdates(left, right any) Changes {
	changes, _ := defaultDiffer.Updates(left, right)
	return changes
}

// Diff is the configurable form of the package level [Diff]. The only error
// it returns is [ErrTooDeep], when a depth limit is set.
func (d *Differ) Diff(left, right any) (Changes, error) {
	start := time.Now()
	passes := [3]func(left, right any) (Changes, error){
		d.Deletions,
		d.Additions,
		d.Updates,
	}
	var results [3]Changes

	if d.parallel {
		var g errgroup.Group
		for i, pass := range passes {
			g.Go(func() error {
				var err error
				results[i], err = pass(left, right)
				return err
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
	} else {
		for i, pass := range passes {
			var err error
			if results[i], err = pass(left, right); err != nil {
				return nil, err
			}
		}
	}

	var out Changes
	if n := len(results[0]) + len(results[1]) + len(results[2]); n > 0 {
		out = make(Changes, 0, n)
		for _, r := range results {
			out = append(out, r...)
		}
	}

	d.logger.Debug().
		Int("deleted", len(results[0])).
		Int("added", len(results[1])).
		Int("updated", len(results[2])).
		Bool("parallel", d.parallel).
		Dur("took", time.Since(start)).
		Msg("Computed diff")
	return out, nil
}

// Deletions walks [left] and records every path that does not resolve in
// [right] (or resolves to a value of a different kind) as a delete.
func (d *Differ) Deletions(left, right any) (Changes, error) {
	return d.scanMissing(left, right, ChangeDelete)
}

// Additions walks [right] and records every path that does not resolve in
// [left] (or resolves to a value of a different kind) as an add.
func (d *Differ) Additions(left, right any) (Changes, error) {
	return d.scanMissing(right, left, ChangeAdd)
}

// scanMissing walks [walked] and emits one record of type [t] for each
// non-root path whose counterpart in [other] is absent or of another kind
// (leaf, mapping, sequence). The subtree below a record is pruned.
func (d *Differ) scanMissing(walked, other any, t ChangeType) (Changes, error) {
	var out Changes
	err := WalkDepth(walked, d.maxDepth, func(value any, path Path) Action {
		if len(path) == 0 {
			return Continue
		}
		if counterpart, ok := Resolve(other, path); ok && kindOf(counterpart) == kindOf(value) {
			return Continue
		}
		change := Change{Type: t, Path: path}
		if t == ChangeDelete {
			change.OldValue = value
		} else {
			change.NewValue = value
		}
		out = append(out, change)
		return SkipChildren
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Updates walks [left] and records every leaf whose counterpart in [right]
// is a different leaf. Containers are never compared here; a changed
// container shape is the business of the deletion and addition passes.
func (d *Differ) Updates(left, right any) (Changes, error) {
	var out Changes
	err := WalkDepth(left, d.maxDepth, func(value any, path Path) Action {
		if len(path) == 0 {
			return Continue
		}
		counterpart, ok := Resolve(right, path)
		if kindOf(value) != kindLeaf {
			if !ok || kindOf(counterpart) != kindOf(value) {
				// nothing below can resolve on the right side
				return SkipChildren
			}
			return Continue
		}
		if ok && kindOf(counterpart) == kindLeaf && !equalLeaf(value, counterpart) {
			out = append(out, Change{
				Type:     ChangeUpdate,
				Path:     path,
				OldValue: value,
				NewValue: counterpart,
			})
		}
		return Continue
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
