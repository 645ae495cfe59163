/*
 * errors.go, part of goewald.
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

package ewald

//Error is the interface for errors that all packages in this library
//implement. The Decorate method allows to add and retrieve info from the
//error, without changing its type or wrapping it around something else.
//The decoration slice should contain a list of functions in the calling
//stack, plus, for each function, any relevant information, or nothing.
type Error interface {
	Error() string
	Decorate(string) []string
}

//CError is the concrete error type of the package. All errors surfaced by
//this package are unrecoverable at this layer: a partially-computed
//long-ranged energy is physically meaningless, so callers should treat any
//of them as fatal to the current step.
type CError struct {
	msg  string
	deco []string
}

func (err CError) Error() string { return err.msg }

//Decorate adds new information to the error and returns the current
//decoration stack. An empty string only queries the stack.
func (err CError) Decorate(deco string) []string {
	//Even though this method does not use a pointer receiver, appending to
	//err.deco works as the slice header itself refers to shared storage.
	if deco != "" {
		err.deco = append(err.deco, deco)
	}
	return err.deco
}

//errDecorate asserts that err implements Error, decorates it and gives
//it back. Errors of other types are returned unchanged.
func errDecorate(err error, caller string) error {
	err2, ok := err.(Error)
	if !ok {
		return err
	}
	err2.Decorate(caller)
	return err2
}

//Messages for the recurring failure modes.
const (
	ErrBoxNotDiagonal = "goewald: plain Ewald supports only rectangular (diagonal) boxes"
	ErrBoxNotPositive = "goewald: box edge lengths must be positive"
	ErrNilCoordinates = "goewald: nil coordinate matrix given"
	ErrTableUnset     = "goewald: reciprocal tables not initialized for this system"
	ErrNoCharges      = "goewald: at least one charge set must be supplied"
	ErrShortSlice     = "goewald: slice shorter than the number of atoms"
	ErrExclOutOfRange = "goewald: exclusion list references an out-of-range atom index"
	ErrExclAsymmetric = "goewald: exclusion list is not symmetric"
	ErrBadBeta        = "goewald: the Ewald splitting coefficient must be positive"
	ErrWorkFailed     = "goewald: a correction worker failed; discarding the whole step"
)
