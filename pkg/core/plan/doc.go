// Package plan implements the greedy thread-art planner.
//
// A [Planner] holds a residual buffer derived from an inverted grayscale image:
// every pixel starts with a "darkness debt" of 255 - v. Starting from an anchor,
// the planner repeatedly scores the line to every eligible anchor, picks the line
// that best pays down the remaining debt, commits it into the buffer and moves on.
// The resulting anchor order, drawn as consecutive straight lines, approximates
// the source image.
//
// # Scoring
//
// For each sample of a rasterized line the planner computes
//
//	adjusted = residual[pixel] - weight*lineWeight
//
// A negative value means the line would overshoot an already satisfied pixel and
// costs -lightnessPenalty*adjusted; otherwise the cost is adjusted itself. A
// line's score is the mean cost over its samples and the smallest score wins.
// Lines without any in-bounds samples score -Inf and are never selected.
//
// # Eligibility
//
// With N anchors and a gap of g, the 2g+1 anchors centred on the current anchor
// are excluded. The remaining N-2g-1 anchors are scanned starting just past the
// excluded arc; ties go to the first one found.
//
// # Termination
//
// A [Strategy] is consulted before every step, including the first.
// [FixedCount] stops after a fixed number of lines, [LossThreshold] stops once
// the total residual falls below a target. [WithContext] and [Observe] wrap any
// strategy with cancellation and progress reporting.
//
// # Usage
//
//	anchors := anchors.Circle(288, src.Width, src.Height, 0)
//	p, err := plan.New(plan.Config{LineWeight: 0.2, LightnessPenalty: 5}, raster.Grid{}, anchors, src)
//	if err != nil {
//	    return err
//	}
//	order, err := p.Run(0, plan.FixedCount(500))
package plan
