// Copyright 2026 The Monofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package dmap

import (
	"math"
	"sync"

	"github.com/cpmech/gosl/chk"
)

// CombineMode defines how contributions arriving at the same target entry
// are merged during an export
type CombineMode int

const (
	Insert CombineMode = iota // overwrite target entry
	Add                       // accumulate into target entry
	AbsMax                    // keep the largest absolute value
)

// xfer is one source-to-target index pair of a transfer plan
type xfer struct {
	srcL int
	dstL int
}

// Exporter moves values from a vector over a source map into a vector over
// a target map. The transfer plan is precomputed once per (source, target)
// pair and reused
type Exporter struct {
	src  *Map
	dst  *Map
	plan []xfer
}

// NewExporter precomputes the transfer plan: every source gid also present
// in the target map generates one transfer pair
func NewExporter(src, dst *Map) (o *Exporter) {
	o = &Exporter{src: src, dst: dst}
	for l, g := range src.Gids() {
		if d := dst.Lid(g); d >= 0 {
			o.plan = append(o.plan, xfer{srcL: l, dstL: d})
		}
	}
	return
}

// NumTransfers returns the plan size
func (o *Exporter) NumTransfers() int { return len(o.plan) }

// Apply runs the plan, merging with the given combine mode
func (o *Exporter) Apply(src, dst *Vector, mode CombineMode) (err error) {
	if !src.M.SameAs(o.src) || !dst.M.SameAs(o.dst) {
		return chk.Err("Exporter.Apply: %v", ErrDomainMismatch)
	}
	for _, t := range o.plan {
		combine(dst.V, t.dstL, src.V[t.srcL], mode)
	}
	return
}

func combine(dst []float64, l int, v float64, mode CombineMode) {
	switch mode {
	case Insert:
		dst[l] = v
	case Add:
		dst[l] += v
	case AbsMax:
		if math.Abs(v) > math.Abs(dst[l]) {
			dst[l] = v
		}
	}
}

// PartitionMap splits [0, MaxIndex) into ParallelDegree contiguous buckets
// with a maximum imbalance of one item
type PartitionMap struct {
	MaxIndex       int
	ParallelDegree int
	Partitions     [][2]int
}

// NewPartitionMap builds the buckets via Split1D
func NewPartitionMap(degree, maxIndex int) (pm *PartitionMap) {
	pm = &PartitionMap{
		MaxIndex:       maxIndex,
		ParallelDegree: degree,
		Partitions:     make([][2]int, degree),
	}
	for n := 0; n < degree; n++ {
		pm.Partitions[n] = pm.Split1D(n)
	}
	return
}

// Split1D returns the bucket of worker n
func (pm *PartitionMap) Split1D(n int) (bucket [2]int) {
	npart := pm.MaxIndex / pm.ParallelDegree
	remainder := pm.MaxIndex % pm.ParallelDegree
	var startAdd, endAdd int
	if remainder != 0 {
		if n+1 > remainder {
			startAdd = remainder
		} else {
			startAdd = n
			endAdd = 1
		}
	}
	bucket[0] = n*npart + startAdd
	bucket[1] = bucket[0] + npart + endAdd
	return
}

// GetBucket returns the bucket owning global index k
func (pm *PartitionMap) GetBucket(k int) (bucketNum, min, max int) {
	bucketNum = pm.ParallelDegree * k / pm.MaxIndex
	for !(pm.Partitions[bucketNum][0] <= k && pm.Partitions[bucketNum][1] > k) {
		if pm.Partitions[bucketNum][0] > k {
			bucketNum--
		} else {
			bucketNum++
		}
		if bucketNum == -1 || bucketNum == pm.ParallelDegree {
			return -1, 0, 0
		}
	}
	min, max = pm.Partitions[bucketNum][0], pm.Partitions[bucketNum][1]
	return
}

// contribution is one message of a parallel export: a value headed for a
// target local index
type contribution struct {
	dstL int
	val  float64
}

// ParExporter runs the transfer plan with worker goroutines. Source-side
// workers scan their bucket of the plan and post contributions to the
// target-side owner through per-worker mailboxes; target workers then merge
// their inbox with the combine mode. Insert and AbsMax are order
// independent; Add may differ from the serial result by IEEE-754 rounding
type ParExporter struct {
	ex    *Exporter
	pm    *PartitionMap // over the target local indices
	boxes []chan []contribution
	nw    int
}

// NewParExporter wraps ex with nw workers
func NewParExporter(ex *Exporter, nw int) (o *ParExporter) {
	if nw < 1 {
		nw = 1
	}
	if n := ex.dst.NumMyElements(); nw > n && n > 0 {
		nw = n
	}
	o = &ParExporter{ex: ex, nw: nw}
	o.pm = NewPartitionMap(nw, ex.dst.NumMyElements())
	o.boxes = make([]chan []contribution, nw)
	for i := range o.boxes {
		o.boxes[i] = make(chan []contribution, nw)
	}
	return
}

// Apply runs the plan in parallel
func (o *ParExporter) Apply(src, dst *Vector, mode CombineMode) (err error) {
	if !src.M.SameAs(o.ex.src) || !dst.M.SameAs(o.ex.dst) {
		return chk.Err("ParExporter.Apply: %v", ErrDomainMismatch)
	}

	// post: each worker walks its slice of the plan and sorts contributions
	// into one outbox per target bucket
	planPart := NewPartitionMap(o.nw, len(o.ex.plan))
	var wg sync.WaitGroup
	wg.Add(o.nw)
	for w := 0; w < o.nw; w++ {
		go func(w int) {
			defer wg.Done()
			out := make([][]contribution, o.nw)
			lo, hi := planPart.Partitions[w][0], planPart.Partitions[w][1]
			for _, t := range o.ex.plan[lo:hi] {
				bn, _, _ := o.pm.GetBucket(t.dstL)
				out[bn] = append(out[bn], contribution{dstL: t.dstL, val: src.V[t.srcL]})
			}
			for bn, msgs := range out {
				if len(msgs) > 0 {
					o.boxes[bn] <- msgs
				}
			}
		}(w)
	}
	wg.Wait()

	// receive: each target worker drains its mailbox and merges
	wg.Add(o.nw)
	for w := 0; w < o.nw; w++ {
		go func(w int) {
			defer wg.Done()
			var inbox []contribution
			for {
				select {
				case msgs := <-o.boxes[w]:
					inbox = append(inbox, msgs...)
				default:
					for _, c := range inbox {
						combine(dst.V, c.dstL, c.val, mode)
					}
					return
				}
			}
		}(w)
	}
	wg.Wait()
	return
}
