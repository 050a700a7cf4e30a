/*
 * errors.go, part of gomatter.
 *
 * Copyright 2025 Raul Mera <rmera{at}usachDOTcl>
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
 * goMatter is developed at the Universidad de Santiago de Chile
 * (USACH).
 *
 */
/***Dedicated to the long life of the Ven. Khenpo Phuntzok Tenzin Rinpoche***/

package matter

import "fmt"

//Error is the interface for errors that all packages in this library
//implement. The Decorate method allows to add and retrieve info from the
//error, without changing its type or wrapping it around something else.
//The decorate slice should contain a list of functions in the calling
//stack, plus, for each function, any relevant information, or nothing.
//If passed an empty string, Decorate just returns the current value.
type Error interface {
	Error() string
	Decorate(string) []string
}

//errBase carries the message and decoration trail shared by all the
//concrete error types of the package.
type errBase struct {
	message string
	deco    []string
}

func (e *errBase) Decorate(dec string) []string {
	if dec != "" {
		e.deco = append(e.deco, dec)
	}
	return e.deco
}

//InvalidSymmetryError signals an unrecognized space group, or a basis
//that is inconsistent with the requested group (say, two different
//species sharing a symmetry orbit). It is always produced before any
//oracle call, and retrying with the same input will fail again.
type InvalidSymmetryError struct {
	errBase
}

func NewInvalidSymmetry(format string, a ...interface{}) *InvalidSymmetryError {
	e := new(InvalidSymmetryError)
	e.message = fmt.Sprintf(format, a...)
	return e
}

func (e *InvalidSymmetryError) Error() string {
	return "goMatter: invalid symmetry: " + e.message
}

//InvalidStructureError signals malformed builder input: mismatched
//species/coordinates, a singular cell, or a nonsensical parameter.
//Non-retryable, and always produced before any oracle call.
type InvalidStructureError struct {
	errBase
}

func NewInvalidStructure(format string, a ...interface{}) *InvalidStructureError {
	e := new(InvalidStructureError)
	e.message = fmt.Sprintf(format, a...)
	return e
}

func (e *InvalidStructureError) Error() string {
	return "goMatter: invalid structure: " + e.message
}

//OracleEvaluationError wraps a failure of the force-field oracle in the
//middle of a run. The engines propagate it immediately and mark the run
//as failed; they never retry, as the oracle may be expensive or
//non-idempotent to call blindly again.
type OracleEvaluationError struct {
	errBase
	Err error //the underlying oracle failure
}

func NewOracleEvaluation(err error, caller string) *OracleEvaluationError {
	e := new(OracleEvaluationError)
	e.Err = err
	e.message = err.Error()
	e.deco = []string{caller}
	return e
}

func (e *OracleEvaluationError) Error() string {
	return "goMatter: oracle evaluation failed: " + e.message
}

func (e *OracleEvaluationError) Unwrap() error {
	return e.Err
}

//UnsupportedFilterError signals that a cell filter was requested for a
//Configuration that cannot take one (a non-periodic structure). Rejected
//before the run starts.
type UnsupportedFilterError struct {
	errBase
}

func NewUnsupportedFilter(format string, a ...interface{}) *UnsupportedFilterError {
	e := new(UnsupportedFilterError)
	e.message = fmt.Sprintf(format, a...)
	return e
}

func (e *UnsupportedFilterError) Error() string {
	return "goMatter: unsupported filter: " + e.message
}

//NumericalDivergenceError signals non-finite positions or velocities
//during an MD run (a numerical blow-up). LastStep reports the last step
//for which the state was still finite.
type NumericalDivergenceError struct {
	errBase
	LastStep int
}

func NewNumericalDivergence(laststep int, format string, a ...interface{}) *NumericalDivergenceError {
	e := new(NumericalDivergenceError)
	e.message = fmt.Sprintf(format, a...)
	e.LastStep = laststep
	return e
}

func (e *NumericalDivergenceError) Error() string {
	return fmt.Sprintf("goMatter: numerical divergence after step %d: %s", e.LastStep, e.message)
}

//errDecorate asserts that err implements Error and decorates it with the
//caller's name before returning it. If used with a plain error, it will
//cause a panic, which is intended: only goMatter errors should reach it.
func errDecorate(err error, caller string) error {
	err2 := err.(Error)
	err2.Decorate(caller)
	return err2
}
