// SGI FREE SOFTWARE LICENSE B (Version 2.0, Sept. 18, 2008)
// Copyright (C) [dates of first publication] Silicon Graphics, Inc.
// All Rights Reserved.
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell copies
// of the Software, and to permit persons to whom the Software is furnished to do so,
// subject to the following conditions:
//
// The above copyright notice including the dates of first publication and either this
// permission notice or a reference to http://oss.sgi.com/projects/FreeB/ shall be
// included in all copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR IMPLIED,
// INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY, FITNESS FOR A
// PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL SILICON GRAPHICS, INC.
// BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER LIABILITY, WHETHER IN AN ACTION OF CONTRACT,
// TORT OR OTHERWISE, ARISING FROM, OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE
// OR OTHER DEALINGS IN THE SOFTWARE.
//
// Except as contained in this notice, the name of Silicon Graphics, Inc. shall not
// be used in advertising or otherwise to promote the sale, use or other dealings in
// this Software without prior written authorization from Silicon Graphics, Inc.

package wildmesh

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics bundles the Prometheus collectors passes report to. A nil
// *Metrics records nothing.
type Metrics struct {
	Edits         *prometheus.CounterVec
	PassDurations *prometheus.HistogramVec
	Vertices      prometheus.Gauge
	Cells         prometheus.Gauge
}

// NewMetrics registers the collectors against reg, defaulting to the global
// Prometheus registry when nil. Registering twice returns the collectors
// already in place.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	edits, err := registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "wildmesh_edits_total",
		Help: "Edits attempted by passes, labeled by pass and outcome.",
	}, []string{"pass", "outcome"}), "wildmesh_edits_total")
	if err != nil {
		return nil, err
	}
	durations, err := registerHistogramVec(reg, prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "wildmesh_pass_duration_seconds",
		Help:    "Wall time of a pass in seconds.",
		Buckets: prometheus.ExponentialBuckets(0.001, 4, 10),
	}, []string{"pass"}), "wildmesh_pass_duration_seconds")
	if err != nil {
		return nil, err
	}
	vertices, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "wildmesh_live_vertices",
		Help: "Live vertices after the last pass.",
	}), "wildmesh_live_vertices")
	if err != nil {
		return nil, err
	}
	cells, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "wildmesh_live_cells",
		Help: "Live cells after the last pass.",
	}), "wildmesh_live_cells")
	if err != nil {
		return nil, err
	}
	return &Metrics{
		Edits:         edits,
		PassDurations: durations,
		Vertices:      vertices,
		Cells:         cells,
	}, nil
}

func (m *Metrics) observeEdit(pass string, o Outcome) {
	if m == nil || m.Edits == nil {
		return
	}
	m.Edits.WithLabelValues(pass, o.String()).Inc()
}

func (m *Metrics) observePass(pass string, _ Stats, elapsed time.Duration, mesh *Mesh) {
	if m == nil {
		return
	}
	if m.PassDurations != nil {
		m.PassDurations.WithLabelValues(pass).Observe(elapsed.Seconds())
	}
	if m.Vertices != nil {
		m.Vertices.Set(float64(mesh.NumVertices()))
	}
	if m.Cells != nil {
		m.Cells.Set(float64(mesh.NumCells()))
	}
}

func registerCounterVec(reg prometheus.Registerer, vec *prometheus.CounterVec, name string) (*prometheus.CounterVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("wildmesh: collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

func registerHistogramVec(reg prometheus.Registerer, vec *prometheus.HistogramVec, name string) (*prometheus.HistogramVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.HistogramVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("wildmesh: collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

func registerGauge(reg prometheus.Registerer, gauge prometheus.Gauge, name string) (prometheus.Gauge, error) {
	if err := reg.Register(gauge); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Gauge); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("wildmesh: collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return gauge, nil
}
