// Copyright 2026 The Monofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package out implements time-series collection of simulation results
package out

import (
	"encoding/gob"
	"encoding/json"
	"os"

	"github.com/cpmech/gosl/chk"

	"github.com/reginabuehler/4C-sub006/fem"
)

// Series holds the recorded history of one simulation: one entry per
// accepted time step
type Series struct {
	Times  []float64
	Steps  []int
	Fields map[string][][]float64 // field name -> state snapshot per step
	Lams   [][][]float64          // coupling index -> multiplier per step
}

// Collector hooks into the driver and records the state of every field
// after each accepted time step
type Collector struct {
	Series
	prev func(m *fem.Main) // chained hook
}

// NewCollector attaches a collector to the driver, chaining an already
// installed StepOut hook
func NewCollector(m *fem.Main) (o *Collector) {
	o = new(Collector)
	o.Fields = make(map[string][][]float64)
	o.prev = m.StepOut
	m.StepOut = o.record
	return
}

func (o *Collector) record(m *fem.Main) {
	o.Times = append(o.Times, m.Time)
	o.Steps = append(o.Steps, m.Step)
	for _, f := range m.Fields {
		o.Fields[f.Name()] = append(o.Fields[f.Name()], append([]float64(nil), f.State().V...))
	}
	for i, c := range m.Couplings {
		if i == len(o.Lams) {
			o.Lams = append(o.Lams, nil)
		}
		o.Lams[i] = append(o.Lams[i], append([]float64(nil), c.Lam.V...))
	}
	if o.prev != nil {
		o.prev(m)
	}
}

// NumSteps returns the number of recorded steps
func (o *Series) NumSteps() int { return len(o.Times) }

// Last returns the last recorded state of the named field
func (o *Series) Last(field string) []float64 {
	h := o.Fields[field]
	if len(h) == 0 {
		return nil
	}
	return h[len(h)-1]
}

// Save writes the series to path; "gob" selects the binary encoder,
// anything else JSON
func (o *Series) Save(path, encoder string) (err error) {
	fil, err := os.Create(path)
	if err != nil {
		return
	}
	defer fil.Close()
	if encoder == "gob" {
		return gob.NewEncoder(fil).Encode(o)
	}
	return json.NewEncoder(fil).Encode(o)
}

// Load reads a series written by Save
func Load(path, encoder string) (s *Series, err error) {
	fil, err := os.Open(path)
	if err != nil {
		return
	}
	defer fil.Close()
	s = new(Series)
	if encoder == "gob" {
		err = gob.NewDecoder(fil).Decode(s)
	} else {
		err = json.NewDecoder(fil).Decode(s)
	}
	if err != nil {
		return nil, chk.Err("cannot decode results file %q:\n%v", path, err)
	}
	return
}
