/*
 * root.go, part of goewald.
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

package main

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	ewald "github.com/rmera/goewald"
	"github.com/rmera/goewald/conf"
	"github.com/rmera/goewald/ewplot"
	"github.com/rmera/goewald/snap"
	v3 "github.com/rmera/goewald/v3"
)

var (
	confPath string
	logLevel string
	lambdaQ  float64
	lambdaLJ float64
)

var rootCmd = &cobra.Command{
	Use:   "goewald",
	Short: "long-range electrostatics for periodic systems by Ewald summation",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level, err := logrus.ParseLevel(logLevel)
		if err != nil {
			return fmt.Errorf("invalid log level %q", logLevel)
		}
		logrus.SetLevel(level)
		return nil
	},
}

func loadConfig() (*conf.Config, error) {
	if confPath == "" {
		return conf.Default(), nil
	}
	return conf.Load(confPath)
}

var energyCmd = &cobra.Command{
	Use:   "energy snapshot-file",
	Short: "evaluate the long-range energies, forces and virial for a snapshot",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := loadConfig()
		if err != nil {
			return err
		}
		set, err := c.Settings()
		if err != nil {
			return err
		}
		s, err := snap.Read(args[0])
		if err != nil {
			return err
		}
		sys, err := s.System()
		if err != nil {
			return err
		}
		logrus.Infof("%d atoms, net charge %.3g, sum q^2 %.4g, beta %.4g 1/nm, kmax %d, %d threads",
			sys.Len(), sys.NetCharge(0), sys.ChargeSq(0), set.BetaQ, set.Kmax, set.Threads)
		if set.Vdw == ewald.VdwEwald {
			logrus.Infof("ewald dispersion active, beta %.4g 1/nm, sum C6 %.4g", set.BetaLJ, sys.SumC6(0))
		}
		a, err := ewald.NewAssembler(*set, sys)
		if err != nil {
			return err
		}
		f := v3.Zeros(sys.Len())
		enerd := ewald.NewEnergyData()
		var vir ewald.Tensor
		lambda := [ewald.CouplingCount]float64{ewald.CouplingCoul: lambdaQ, ewald.CouplingVdw: lambdaLJ}
		work := ewald.StepWork{Forces: true, Energy: true, Virial: true, Dvdl: sys.PerturbedQ()}
		if err = a.CalcLongRange(s.X, f, s.Box, lambda, work, nil, enerd, &vir); err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		for _, term := range []ewald.EnergyTerm{ewald.TermCoulombRecip, ewald.TermLJRecip} {
			fmt.Fprintf(out, "%-18s %20.8f kJ/mol\n", term, enerd.Term[term])
		}
		if sys.PerturbedQ() {
			fmt.Fprintf(out, "%-18s %20.8f kJ/mol\n", "dV/dlambda (coul)", enerd.Dvdl[ewald.CouplingCoul])
		}
		fmt.Fprintln(out, "virial (kJ/mol):")
		for d := 0; d < 3; d++ {
			fmt.Fprintf(out, "  %14.6f %14.6f %14.6f\n", vir[d][0], vir[d][1], vir[d][2])
		}
		fmt.Fprintln(out, "forces (kJ/mol/nm):")
		for i := 0; i < sys.Len(); i++ {
			fmt.Fprintf(out, "  %6d %14.6f %14.6f %14.6f\n", i, f.At(i, 0), f.At(i, 1), f.At(i, 2))
		}
		return nil
	},
}

var splitCmd = &cobra.Command{
	Use:   "split output-image",
	Short: "plot the Ewald splitting of 1/r for the configured coefficient",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := loadConfig()
		if err != nil {
			return err
		}
		set, err := c.Settings()
		if err != nil {
			return err
		}
		if set.Coulomb != ewald.CoulombEwald {
			return fmt.Errorf("nothing to plot: electrostatics is %q", c.Coulomb)
		}
		rmax := c.RCoulomb * 1.5
		if rmax <= 0 {
			rmax = 1.5
		}
		return ewplot.Splitting(set.BetaQ, 0.02, rmax, args[0])
	},
}

var convergeCmd = &cobra.Command{
	Use:   "converge snapshot-file output-image",
	Short: "plot the reciprocal energy of a snapshot against kmax",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := loadConfig()
		if err != nil {
			return err
		}
		set, err := c.Settings()
		if err != nil {
			return err
		}
		s, err := snap.Read(args[0])
		if err != nil {
			return err
		}
		kmaxes := make([]int, 0, set.Kmax)
		for k := 2; k <= set.Kmax; k += 2 {
			kmaxes = append(kmaxes, k)
		}
		return ewplot.Convergence(s.X, s.ChargeA, s.Box, set.BetaQ, kmaxes, args[1])
	},
}

var coeffCmd = &cobra.Command{
	Use:   "coeff",
	Short: "print the splitting coefficients implied by the cutoffs and tolerances",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := loadConfig()
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "beta_q  = %.6g 1/nm (rcoulomb %.3g nm, rtol %.3g)\n",
			conf.EwaldCoeffQ(c.RCoulomb, c.EwaldRtol), c.RCoulomb, c.EwaldRtol)
		fmt.Fprintf(out, "beta_lj = %.6g 1/nm (rvdw %.3g nm, rtol %.3g)\n",
			conf.EwaldCoeffLJ(c.RVdw, c.EwaldRtolLJ), c.RVdw, c.EwaldRtolLJ)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&confPath, "conf", "c", "", "YAML run configuration (defaults used when absent)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "logrus verbosity level")
	energyCmd.Flags().Float64Var(&lambdaQ, "lambda-q", 0, "coupling parameter for perturbed charges")
	energyCmd.Flags().Float64Var(&lambdaLJ, "lambda-lj", 0, "coupling parameter for perturbed dispersion")
	rootCmd.AddCommand(energyCmd, splitCmd, convergeCmd, coeffCmd)
}
