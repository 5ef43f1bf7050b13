// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package tensor

import (
	"testing"
)

func TestFacadeIndexSelect(t *testing.T) {
	x, err := FromFloat32([]float32{1, 2, 3, 4, 5, 6}, Shape{2, 3}, CPU)
	if err != nil {
		t.Fatalf("FromFloat32: %v", err)
	}
	idx, err := FromInt64([]int64{2, 0}, Shape{2}, CPU)
	if err != nil {
		t.Fatalf("FromInt64: %v", err)
	}

	out, err := IndexSelect(x, 1, idx)
	if err != nil {
		t.Fatalf("IndexSelect: %v", err)
	}
	if !out.Shape().Equal(Shape{2, 2}) {
		t.Errorf("IndexSelect shape = %v, want [2 2]", out.Shape())
	}
	want := []float32{3, 1, 6, 4}
	for i, v := range out.AsFloat32() {
		if v != want[i] {
			t.Errorf("IndexSelect[%d] = %v, want %v", i, v, want[i])
		}
	}
}

func TestFacadeIndexPut(t *testing.T) {
	x, err := FromFloat32([]float32{0, 0, 0}, Shape{3}, CPU)
	if err != nil {
		t.Fatalf("FromFloat32: %v", err)
	}
	idx, err := FromInt64([]int64{0, 2}, Shape{2}, CPU)
	if err != nil {
		t.Fatalf("FromInt64: %v", err)
	}
	values, err := Full(Shape{1}, 7, Float32, CPU)
	if err != nil {
		t.Fatalf("Full: %v", err)
	}

	if err := IndexPut(x, []*RawTensor{idx}, values, false); err != nil {
		t.Fatalf("IndexPut: %v", err)
	}
	want := []float32{7, 0, 7}
	for i, v := range x.AsFloat32() {
		if v != want[i] {
			t.Errorf("x[%d] = %v, want %v", i, v, want[i])
		}
	}
}
