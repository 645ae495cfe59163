/*
 * conf.go, part of goewald.
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

//Package conf reads and validates the user-facing run configuration and
//resolves it, once, into the tag-based settings the force machinery runs
//on. Strings live here and only here.
package conf

import (
	"fmt"
	"math"
	"os"
	"runtime"

	ewald "github.com/rmera/goewald"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

//Config is the YAML-facing run configuration. Zero values mean "use the
//default": in particular a zero splitting coefficient asks for it to be
//derived from the cutoff and the direct-space tolerance.
type Config struct {
	Coulomb        string  `yaml:"coulomb"`         //"ewald" (default) or "cutoff"
	Vdw            string  `yaml:"vdw"`             //"cutoff" (default) or "ewald"
	RCoulomb       float64 `yaml:"rcoulomb"`        //direct-space Coulomb cutoff, nm
	RVdw           float64 `yaml:"rvdw"`            //direct-space LJ cutoff, nm
	EwaldRtol      float64 `yaml:"ewald_rtol"`      //erfc(beta*rc) at the cutoff
	EwaldRtolLJ    float64 `yaml:"ewald_rtol_lj"`   //dispersion analogue
	BetaQ          float64 `yaml:"beta_q"`          //1/nm; 0 derives it from rcoulomb and ewald_rtol
	BetaLJ         float64 `yaml:"beta_lj"`         //1/nm; 0 derives it from rvdw and ewald_rtol_lj
	Kmax           int     `yaml:"kmax"`            //reciprocal lattice indexes summed per axis
	EpsilonSurface float64 `yaml:"epsilon_surface"` //0 means tinfoil boundaries
	Threads        int     `yaml:"threads"`         //0 means all CPUs
}

//Default returns the configuration used when a field (or the whole file)
//is absent. The tolerances and cutoffs follow common practice for
//biomolecular systems.
func Default() *Config {
	return &Config{
		Coulomb:     "ewald",
		Vdw:         "cutoff",
		RCoulomb:    1.0,
		RVdw:        1.0,
		EwaldRtol:   1e-5,
		EwaldRtolLJ: 1e-3,
		Kmax:        20,
	}
}

//Load reads a YAML configuration file, filling absent fields from
//Default and validating the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading run configuration: %w", err)
	}
	c := Default()
	if err := yaml.Unmarshal(data, c); err != nil {
		return nil, fmt.Errorf("parsing run configuration: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

var validCoulomb = map[string]bool{"": true, "ewald": true, "cutoff": true}

var validVdw = map[string]bool{"": true, "ewald": true, "cutoff": true}

//Validate checks names and parameter ranges. It is called by Load, and
//should be called again by anyone mutating a Config afterwards.
func (c *Config) Validate() error {
	if !validCoulomb[c.Coulomb] {
		return fmt.Errorf("unknown coulomb treatment %q", c.Coulomb)
	}
	if !validVdw[c.Vdw] {
		return fmt.Errorf("unknown vdw treatment %q", c.Vdw)
	}
	if c.Coulomb != "cutoff" {
		if c.RCoulomb <= 0 && c.BetaQ <= 0 {
			return fmt.Errorf("ewald electrostatics needs rcoulomb or beta_q")
		}
		if c.BetaQ == 0 && (c.EwaldRtol <= 0 || c.EwaldRtol >= 1) {
			return fmt.Errorf("ewald_rtol must be in (0,1), got %v", c.EwaldRtol)
		}
		if c.Kmax < 1 {
			return fmt.Errorf("kmax must be at least 1, got %d", c.Kmax)
		}
	}
	if c.Vdw == "ewald" {
		if c.RVdw <= 0 && c.BetaLJ <= 0 {
			return fmt.Errorf("ewald dispersion needs rvdw or beta_lj")
		}
		if c.BetaLJ == 0 && (c.EwaldRtolLJ <= 0 || c.EwaldRtolLJ >= 1) {
			return fmt.Errorf("ewald_rtol_lj must be in (0,1), got %v", c.EwaldRtolLJ)
		}
	}
	if c.BetaQ < 0 || c.BetaLJ < 0 {
		return fmt.Errorf("splitting coefficients cannot be negative")
	}
	if c.Threads < 0 {
		return fmt.Errorf("threads cannot be negative, got %d", c.Threads)
	}
	if c.EpsilonSurface < 0 {
		return fmt.Errorf("epsilon_surface cannot be negative, got %v", c.EpsilonSurface)
	}
	return nil
}

//Settings resolves the configuration into the tags and numbers the force
//machinery uses. All string matching and coefficient derivation happens
//here; nothing downstream ever revisits it.
func (c *Config) Settings() (*ewald.Settings, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	set := &ewald.Settings{
		Kmax:           c.Kmax,
		EpsilonSurface: c.EpsilonSurface,
		Threads:        c.Threads,
	}
	if set.Threads == 0 {
		set.Threads = runtime.NumCPU()
	}
	switch c.Coulomb {
	case "cutoff":
		set.Coulomb = ewald.CoulombCutoff
	default:
		set.Coulomb = ewald.CoulombEwald
		set.BetaQ = c.BetaQ
		if set.BetaQ == 0 {
			set.BetaQ = EwaldCoeffQ(c.RCoulomb, c.EwaldRtol)
		} else if c.RCoulomb > 0 {
			derived := EwaldCoeffQ(c.RCoulomb, c.EwaldRtol)
			if math.Abs(set.BetaQ-derived) > 0.5 {
				logrus.Warnf("beta_q %.3g differs a lot from the value %.3g implied by rcoulomb and ewald_rtol", set.BetaQ, derived)
			}
		}
	}
	if c.Vdw == "ewald" {
		set.Vdw = ewald.VdwEwald
		set.BetaLJ = c.BetaLJ
		if set.BetaLJ == 0 {
			set.BetaLJ = EwaldCoeffLJ(c.RVdw, c.EwaldRtolLJ)
		}
	} else {
		set.Vdw = ewald.VdwCutoff
	}
	if set.Threads > runtime.NumCPU() {
		logrus.Warnf("running %d correction workers on %d CPUs", set.Threads, runtime.NumCPU())
	}
	return set, nil
}

//EwaldCoeffQ returns the splitting coefficient (1/nm) for which the
//direct-space Coulomb part decays to rtol at the cutoff rc: the solution
//of erfc(beta*rc) = rtol. Doubling brackets the root, then sixty halvings
//pin it to full double precision.
func EwaldCoeffQ(rc, rtol float64) float64 {
	beta := 5.0
	i := 0
	for math.Erfc(beta*rc) > rtol {
		beta *= 2
		i++
	}
	low, high := 0.0, beta
	for n := 0; n < i+60; n++ {
		beta = (low + high) / 2
		if math.Erfc(beta*rc) > rtol {
			low = beta
		} else {
			high = beta
		}
	}
	return beta
}

//ljDecay is the dimensionless magnitude of the direct-space dispersion
//part at x = beta*rc.
func ljDecay(x float64) float64 {
	x2 := x * x
	return math.Exp(-x2) * (1 + x2 + x2*x2/2)
}

//EwaldCoeffLJ is the dispersion analogue of EwaldCoeffQ: it solves
//exp(-x^2)*(1+x^2+x^4/2) = rtol for x = beta*rc.
func EwaldCoeffLJ(rc, rtol float64) float64 {
	beta := 5.0
	i := 0
	for ljDecay(beta*rc) > rtol {
		beta *= 2
		i++
	}
	low, high := 0.0, beta
	for n := 0; n < i+60; n++ {
		beta = (low + high) / 2
		if ljDecay(beta*rc) > rtol {
			low = beta
		} else {
			high = beta
		}
	}
	return beta
}
