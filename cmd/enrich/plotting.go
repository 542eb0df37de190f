// Copyright ©2020 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"image/color"
	"math"
	"path/filepath"
	"sort"
	"strconv"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/kortschak/enrich/internal/calculation"
)

// plotPValues plots the sorted adjusted p-values of the non-trivial
// terms of r to dir/<study>.png along with the alpha and, if positive,
// the permutation null thresholds.
func plotPValues(dir string, r *calculation.Result, alpha, threshold float64) error {
	var pvals []float64
	for _, p := range r.Properties() {
		if !p.Ignore {
			pvals = append(pvals, p.PAdjusted)
		}
	}
	sort.Float64s(pvals)

	p := plot.New()
	p.Title.Text = fmt.Sprintf("%s p-values\n%s", r.CalculationName(), r.StudyName())
	p.X.Label.Text = "rank"
	p.Y.Label.Text = "p"
	p.Y.Scale = logScale{}
	p.Y.Tick.Marker = logTicks{}
	xys := sliceToXYs(pvals)
	if len(xys) != 0 {
		values, err := plotter.NewLine(xys)
		if err != nil {
			return err
		}
		last := xys[len(xys)-1].X

		threshAlpha, err := plotter.NewLine(plotter.XYs{{X: 0, Y: alpha}, {X: last, Y: alpha}})
		if err != nil {
			return err
		}
		threshAlpha.Color = color.RGBA{R: 255, A: 255}
		p.Add(values, threshAlpha)

		if threshold > 0 {
			threshNull, err := plotter.NewLine(plotter.XYs{{X: 0, Y: threshold}, {X: last, Y: threshold}})
			if err != nil {
				return err
			}
			threshNull.Color = color.RGBA{B: 255, A: 255}
			p.Add(threshNull)
		}
	}
	return p.Save(18*vg.Centimeter, 15*vg.Centimeter, filepath.Join(dir, r.StudyName()+".png"))
}

// sliceToXYs returns the values of s against their rank, omitting
// zeros which cannot be placed on a log scale.
func sliceToXYs(s []float64) plotter.XYs {
	xy := make(plotter.XYs, 0, len(s))
	for i, v := range s {
		if v == 0 {
			continue
		}
		xy = append(xy, plotter.XY{X: float64(i), Y: v})
	}
	return xy
}

type logScale struct{}

func (logScale) Normalize(min, max, x float64) float64 {
	min = math.Max(min, 1e-16)
	max = math.Max(max, 1e-16)
	x = math.Max(x, 1e-16)
	logMin := math.Log(min)
	return (math.Log(x) - logMin) / (math.Log(max) - logMin)
}

type logTicks struct{ powers int }

func (t logTicks) Ticks(min, max float64) []plot.Tick {
	min = math.Max(min, 1e-16)
	max = math.Max(max, 1e-16)
	if t.powers < 1 {
		t.powers = 1
	}

	val := math.Pow10(int(math.Floor(math.Log10(min))))
	max = math.Pow10(int(math.Ceil(math.Log10(max))))
	var ticks []plot.Tick
	for val < max {
		for i := 1; i < 10; i++ {
			if i == 1 {
				ticks = append(ticks, plot.Tick{Value: val, Label: strconv.FormatFloat(val, 'e', 0, 64)})
			}
			if t.powers != 1 {
				break
			}
			ticks = append(ticks, plot.Tick{Value: val * float64(i)})
		}
		val *= math.Pow10(t.powers)
	}
	ticks = append(ticks, plot.Tick{Value: val, Label: strconv.FormatFloat(val, 'e', 0, 64)})

	return ticks
}
