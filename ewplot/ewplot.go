/*
 * ewplot.go, part of goewald.
 *
 * Copyright 2024 Raul Mera <rmera{at}chemDOThelsinkiDOTfi>
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU Lesser General Public License as
 * published by the Free Software Foundation; either version 2.1 of the
 * License, or (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU Lesser General
 * Public License along with this program.  If not, see
 * <http://www.gnu.org/licenses/>.
 *
 */

//Package ewplot draws diagnostic plots: how a splitting coefficient
//divides the Coulomb interaction between real and reciprocal space, and
//how the reciprocal energy converges with the wavevector cutoff.
package ewplot

import (
	"fmt"
	"image/color"
	"math"

	ewald "github.com/rmera/goewald"
	v3 "github.com/rmera/goewald/v3"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

//Splitting plots 1/r together with its short- and long-ranged Ewald
//parts for the given splitting coefficient, from rmin to rmax (nm), and
//saves the result to filename (the suffix picks the image format).
func Splitting(beta, rmin, rmax float64, filename string) error {
	if beta <= 0 || rmin <= 0 || rmax <= rmin {
		return fmt.Errorf("ewplot: bad splitting plot range: beta %v, rmin %v, rmax %v", beta, rmin, rmax)
	}
	const points = 400
	rs := floats.Span(make([]float64, points), rmin, rmax)
	full := make(plotter.XYs, points)
	short := make(plotter.XYs, points)
	long := make(plotter.XYs, points)
	for i, r := range rs {
		full[i].X, full[i].Y = r, 1/r
		short[i].X, short[i].Y = r, math.Erfc(beta*r)/r
		long[i].X, long[i].Y = r, ewald.VQEwaldLR(beta, r)
	}
	p := plot.New()
	p.Title.Text = fmt.Sprintf("Ewald splitting, beta = %.3g 1/nm", beta)
	p.X.Label.Text = "r (nm)"
	p.Y.Label.Text = "v(r) (1/nm)"
	for _, c := range []struct {
		xys   plotter.XYs
		label string
		col   color.RGBA
	}{
		{full, "1/r", color.RGBA{A: 255}},
		{short, "short range", color.RGBA{B: 255, A: 255}},
		{long, "long range", color.RGBA{R: 255, A: 255}},
	} {
		l, err := plotter.NewLine(c.xys)
		if err != nil {
			return err
		}
		l.Color = c.col
		p.Add(l)
		p.Legend.Add(c.label, l)
	}
	return p.Save(5*vg.Inch, 4*vg.Inch, filename)
}

//Convergence evaluates the reciprocal energy of the given charges at a
//series of wavevector cutoffs and plots it, as a quick way to pick a kmax
//for a production setup. The largest cutoff also sets the plot's
//reference line.
func Convergence(x *v3.Matrix, charges []float64, box ewald.Box, beta float64, kmaxes []int, filename string) error {
	if len(kmaxes) < 2 {
		return fmt.Errorf("ewplot: need at least two kmax values, got %d", len(kmaxes))
	}
	pts := make(plotter.XYs, len(kmaxes))
	for i, kmax := range kmaxes {
		sv, err := ewald.NewSolver(&ewald.Settings{Coulomb: ewald.CoulombEwald, BetaQ: beta, Kmax: kmax})
		if err != nil {
			return err
		}
		f := v3.Zeros(len(charges))
		var vir ewald.Tensor
		e, err := sv.Evaluate(x, f, charges, nil, box, 0, len(charges), &vir, nil)
		if err != nil {
			return err
		}
		pts[i].X, pts[i].Y = float64(kmax), e
	}
	p := plot.New()
	p.Title.Text = fmt.Sprintf("reciprocal-sum convergence, beta = %.3g 1/nm", beta)
	p.X.Label.Text = "kmax"
	p.Y.Label.Text = "reciprocal energy (kJ/mol)"
	l, err := plotter.NewLine(pts)
	if err != nil {
		return err
	}
	p.Add(l, plotter.NewGrid())
	ref := plotter.NewFunction(func(float64) float64 { return pts[len(pts)-1].Y })
	ref.Dashes = []vg.Length{vg.Points(2), vg.Points(2)}
	p.Add(ref)
	return p.Save(5*vg.Inch, 4*vg.Inch, filename)
}
