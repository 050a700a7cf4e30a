/*
 * v3_test.go, part of gomatter.
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

package v3

import (
	"math"
	"testing"
)

func TestNewMatrix(Te *testing.T) {
	if _, err := NewMatrix([]float64{1, 2, 3, 4}); err == nil {
		Te.Error("data not divisible by 3 should be rejected")
	}
	A, err := NewMatrix([]float64{1, 0, 0, 0, 2, 0})
	if err != nil {
		Te.Fatal(err)
	}
	if A.NVecs() != 2 {
		Te.Errorf("NVecs: %d", A.NVecs())
	}
}

func TestVectorOps(Te *testing.T) {
	a, _ := NewMatrix([]float64{1, 0, 0})
	b, _ := NewMatrix([]float64{0, 1, 0})
	c := Zeros(1)
	c.Cross(a, b)
	if c.At(0, 2) != 1 {
		Te.Errorf("cross product: %v", c.At(0, 2))
	}
	if d := a.Dot(b); d != 0 {
		Te.Errorf("dot: %v", d)
	}
	if n := a.Norm(); n != 1 {
		Te.Errorf("norm: %v", n)
	}
}

func TestMaxAbsAndFinite(Te *testing.T) {
	A, _ := NewMatrix([]float64{1, -7, 2, 0.5, 0, 3})
	if A.MaxAbs() != 7 {
		Te.Errorf("MaxAbs: %v", A.MaxAbs())
	}
	if !A.IsFinite() {
		Te.Error("finite matrix reported as non-finite")
	}
	A.Set(1, 1, math.Inf(1))
	if A.IsFinite() {
		Te.Error("infinity not detected")
	}
}

func TestSetMatrix(Te *testing.T) {
	F := Zeros(4)
	A, _ := NewMatrix([]float64{1, 2, 3, 4, 5, 6})
	F.SetMatrix(1, 0, A)
	if F.At(1, 0) != 1 || F.At(2, 2) != 6 {
		Te.Errorf("block not placed: %v %v", F.At(1, 0), F.At(2, 2))
	}
	if F.At(0, 0) != 0 || F.At(3, 0) != 0 {
		Te.Error("rows outside the block were touched")
	}
	sub, _ := NewMatrix([]float64{7, 8, 9})
	F.SetMatrix(0, 0, sub)
	if F.At(0, 2) != 9 {
		Te.Errorf("single-row block: %v", F.At(0, 2))
	}
	defer func() {
		if recover() == nil {
			Te.Error("out-of-bounds SetMatrix should panic")
		}
	}()
	F.SetMatrix(3, 0, A)
}

func TestSwapAndViews(Te *testing.T) {
	A, _ := NewMatrix([]float64{1, 2, 3, 4, 5, 6, 7, 8, 9})
	A.SwapVecs(0, 2)
	if A.At(0, 0) != 7 || A.At(2, 2) != 3 {
		Te.Errorf("swap: %v %v", A.At(0, 0), A.At(2, 2))
	}
	v := A.View(1, 1, 2, 2)
	if r, c := v.Dims(); r != 2 || c != 2 {
		Te.Errorf("view dims: %d %d", r, c)
	}
	v.Set(0, 0, -5)
	if A.At(1, 1) != -5 {
		Te.Error("view is not sharing data with the parent")
	}
}

func TestVecArithmetic(Te *testing.T) {
	A, _ := NewMatrix([]float64{1, 1, 1, 2, 2, 2})
	shift, _ := NewMatrix([]float64{1, 0, -1})
	A.AddVec(A, shift)
	if A.At(0, 0) != 2 || A.At(1, 2) != 1 {
		Te.Errorf("AddVec: %v %v", A.At(0, 0), A.At(1, 2))
	}
	A.SubVec(A, shift)
	if A.At(0, 0) != 1 || A.At(1, 2) != 2 {
		Te.Errorf("SubVec: %v %v", A.At(0, 0), A.At(1, 2))
	}
}

func TestMulAliasing(Te *testing.T) {
	R, _ := NewMatrix([]float64{1, 2, 3})
	C, _ := NewMatrix([]float64{2, 0, 0, 0, 2, 0, 0, 0, 2})
	R.Mul(R, C.Dense)
	if R.At(0, 0) != 2 || R.At(0, 2) != 6 {
		Te.Errorf("aliased Mul: %v %v", R.At(0, 0), R.At(0, 2))
	}
	out := Zeros(1)
	out.Mul(R, C.Dense)
	if out.At(0, 1) != 8 {
		Te.Errorf("Mul: %v", out.At(0, 1))
	}
}

func TestMaxVecNorm(Te *testing.T) {
	A, _ := NewMatrix([]float64{3, 4, 0, 0, 0, 1})
	if n := A.MaxVecNorm(); math.Abs(n-5) > 1e-12 {
		Te.Errorf("MaxVecNorm: %v", n)
	}
}

func TestDet(Te *testing.T) {
	A, _ := NewMatrix([]float64{2, 0, 0, 0, 3, 0, 0, 0, 4})
	if d := Det(A); math.Abs(d-24) > 1e-12 {
		Te.Errorf("det: %v", d)
	}
}
