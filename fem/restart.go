// Copyright 2026 The Monofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fem

import (
	"encoding/gob"
	"encoding/json"
	"os"

	"github.com/cpmech/gosl/chk"

	"github.com/reginabuehler/4C-sub006/spm"
)

// RestartData collects everything needed to resume a simulation: driver
// time and step counter, the per-field state vectors and the mortar
// multiplier history
type RestartData struct {
	Time      float64
	Step      int
	Fields    map[string][]float64
	Couplings []*CouplingState
}

// CouplingState holds the restart data of one mortar coupling; the D
// matrix of the last accepted step is stored in triplet form
type CouplingState struct {
	Lam, LamN      []float64
	DnRows, DnCols []int
	DnVals         []float64
}

// SaveRestart writes the current state to path with the encoder selected
// in the simulation data ("gob" or "json")
func (o *Main) SaveRestart(path string) (err error) {
	data := &RestartData{
		Time:   o.Time,
		Step:   o.Step,
		Fields: make(map[string][]float64),
	}
	for _, f := range o.Fields {
		data.Fields[f.Name()] = f.WriteState()
	}
	for _, c := range o.Couplings {
		cs := &CouplingState{
			Lam:  append([]float64(nil), c.Lam.V...),
			LamN: append([]float64(nil), c.LamN.V...),
		}
		if c.Dn != nil {
			err = c.Dn.EachNonZero(func(rgid, cgid int, v float64) {
				cs.DnRows = append(cs.DnRows, rgid)
				cs.DnCols = append(cs.DnCols, cgid)
				cs.DnVals = append(cs.DnVals, v)
			})
			if err != nil {
				return
			}
		}
		data.Couplings = append(data.Couplings, cs)
	}

	fil, err := os.Create(path)
	if err != nil {
		return
	}
	defer fil.Close()
	if o.Sim.Data.Encoder == "gob" {
		return gob.NewEncoder(fil).Encode(data)
	}
	return json.NewEncoder(fil).Encode(data)
}

// LoadRestart restores a state written by SaveRestart. Fields and
// couplings must match the saved layout
func (o *Main) LoadRestart(path string) (err error) {
	fil, err := os.Open(path)
	if err != nil {
		return
	}
	defer fil.Close()
	data := new(RestartData)
	if o.Sim.Data.Encoder == "gob" {
		err = gob.NewDecoder(fil).Decode(data)
	} else {
		err = json.NewDecoder(fil).Decode(data)
	}
	if err != nil {
		return chk.Err("cannot decode restart file %q:\n%v", path, err)
	}

	for _, f := range o.Fields {
		vals, ok := data.Fields[f.Name()]
		if !ok {
			return chk.Err("restart file has no data for field %q", f.Name())
		}
		if err = f.ReadState(vals); err != nil {
			return
		}
	}
	if len(data.Couplings) != len(o.Couplings) {
		return chk.Err("restart file has %d couplings but the driver has %d", len(data.Couplings), len(o.Couplings))
	}
	for i, c := range o.Couplings {
		cs := data.Couplings[i]
		n := c.RowMap.NumMyElements()
		if len(cs.Lam) != n {
			return chk.Err("coupling %d: restart multiplier has %d entries but %d are expected", i, len(cs.Lam), n)
		}
		copy(c.Lam.V, cs.Lam)
		copy(c.LamN.V, cs.LamN)
		if len(cs.DnVals) > 0 {
			dn := spm.NewMatrix(c.RowMap, 8, false, false)
			for k, v := range cs.DnVals {
				if err = dn.AssembleValue(v, cs.DnRows[k], cs.DnCols[k]); err != nil {
					return
				}
			}
			if err = dn.Complete(c.RowMap, c.RowMap); err != nil {
				return
			}
			c.Dn = dn
		}
	}
	o.Time = data.Time
	o.Step = data.Step
	return
}
