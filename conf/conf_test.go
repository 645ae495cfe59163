/*
 * conf_test.go, part of goewald.
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

package conf

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	ewald "github.com/rmera/goewald"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEwaldCoeffQ(t *testing.T) {
	for _, tc := range []struct{ rc, rtol float64 }{
		{1.0, 1e-5},
		{0.9, 1e-5},
		{1.2, 1e-6},
		{1.0, 1e-10},
	} {
		beta := EwaldCoeffQ(tc.rc, tc.rtol)
		got := math.Erfc(beta * tc.rc)
		assert.InEpsilon(t, tc.rtol, got, 1e-6,
			"erfc(beta*rc) should hit rtol for rc=%v rtol=%v (beta=%v)", tc.rc, tc.rtol, beta)
	}
	//the standard biomolecular setup lands near the well-known 3.12/nm
	assert.InDelta(t, 3.12, EwaldCoeffQ(1.0, 1e-5), 0.01)
}

func TestEwaldCoeffLJ(t *testing.T) {
	for _, tc := range []struct{ rc, rtol float64 }{
		{1.0, 1e-3},
		{0.9, 1e-4},
	} {
		beta := EwaldCoeffLJ(tc.rc, tc.rtol)
		got := ljDecay(beta * tc.rc)
		assert.InEpsilon(t, tc.rtol, got, 1e-6,
			"dispersion decay should hit rtol for rc=%v rtol=%v (beta=%v)", tc.rc, tc.rtol, beta)
	}
}

func TestDefaultIsValid(t *testing.T) {
	c := Default()
	require.NoError(t, c.Validate())
	set, err := c.Settings()
	require.NoError(t, err)
	assert.Equal(t, ewald.CoulombEwald, set.Coulomb)
	assert.Equal(t, ewald.VdwCutoff, set.Vdw)
	assert.Greater(t, set.BetaQ, 0.0)
	assert.Greater(t, set.Threads, 0)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.yaml")
	text := []byte("coulomb: ewald\nvdw: ewald\nrcoulomb: 0.9\nrvdw: 0.9\nkmax: 32\nthreads: 4\nepsilon_surface: 1.0\n")
	require.NoError(t, os.WriteFile(path, text, 0o644))
	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 32, c.Kmax)
	//fields absent from the file keep their defaults
	assert.Equal(t, 1e-5, c.EwaldRtol)
	set, err := c.Settings()
	require.NoError(t, err)
	assert.Equal(t, ewald.VdwEwald, set.Vdw)
	assert.Greater(t, set.BetaLJ, 0.0)
	assert.Equal(t, 4, set.Threads)
	assert.True(t, set.SurfaceTerm())
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nonexistent.yaml"))
	assert.Error(t, err)
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("coulomb: [not, a, string]\n"), 0o644))
	_, err = Load(path)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	bad := func(mut func(*Config)) *Config {
		c := Default()
		mut(c)
		return c
	}
	assert.Error(t, bad(func(c *Config) { c.Coulomb = "pme" }).Validate())
	assert.Error(t, bad(func(c *Config) { c.Vdw = "shift" }).Validate())
	assert.Error(t, bad(func(c *Config) { c.Kmax = 0 }).Validate())
	assert.Error(t, bad(func(c *Config) { c.RCoulomb = 0; c.BetaQ = 0 }).Validate())
	assert.Error(t, bad(func(c *Config) { c.EwaldRtol = 2 }).Validate())
	assert.Error(t, bad(func(c *Config) { c.Threads = -1 }).Validate())
	assert.Error(t, bad(func(c *Config) { c.EpsilonSurface = -3 }).Validate())
	assert.NoError(t, bad(func(c *Config) { c.Coulomb = "cutoff"; c.Kmax = 0 }).Validate())
}

//an explicit beta wins over the derived one
func TestExplicitBeta(t *testing.T) {
	c := Default()
	c.BetaQ = 2.7
	set, err := c.Settings()
	require.NoError(t, err)
	assert.Equal(t, 2.7, set.BetaQ)
}
