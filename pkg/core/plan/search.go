package plan

import (
	"math"

	"golang.org/x/sync/errgroup"
)

// searchSize returns the number of eligible candidates from any anchor:
// all anchors minus the gap on both sides minus the current anchor.
func (p *Planner) searchSize() int {
	return len(p.anchors) - 2*p.cfg.GapCount - 1
}

// candidate returns the anchor at scan offset i from current.
func (p *Planner) candidate(current, i int) int {
	return (current + i + p.cfg.GapCount + 1) % len(p.anchors)
}

// nextAnchor finds the eligible anchor with the smallest line score from
// current. Degenerate lines are skipped. ok is false if no candidate remains.
func (p *Planner) nextAnchor(current int) (next int, score float64, ok bool) {
	size := p.searchSize()
	if size <= 0 {
		return 0, 0, false
	}

	scores := make([]float64, size)
	if p.cfg.Workers > 1 && size > 1 {
		p.scoreParallel(current, scores)
	} else {
		for i := range scores {
			scores[i] = p.residual.Score(p.trace(current, p.candidate(current, i)))
		}
	}

	best := -1
	for i, s := range scores {
		if math.IsInf(s, -1) {
			continue
		}
		if best < 0 || s < scores[best] {
			best = i
		}
	}
	if best < 0 {
		return 0, 0, false
	}
	return p.candidate(current, best), scores[best], true
}

// scoreParallel fills scores using up to cfg.Workers goroutines, each scoring a
// contiguous range of scan offsets. Results land at their offset, so the
// reduction in nextAnchor does not depend on scheduling.
func (p *Planner) scoreParallel(current int, scores []float64) {
	workers := min(p.cfg.Workers, len(scores))
	chunk := (len(scores) + workers - 1) / workers

	var g errgroup.Group
	for lo := 0; lo < len(scores); lo += chunk {
		hi := min(lo+chunk, len(scores))
		g.Go(func() error {
			for i := lo; i < hi; i++ {
				scores[i] = p.residual.Score(p.trace(current, p.candidate(current, i)))
			}
			return nil
		})
	}
	_ = g.Wait()
}
