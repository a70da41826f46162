// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package convert

import (
	"errors"
	"testing"

	"github.com/gogpu/gfxconv/ir"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name    string
		in      ir.Type
		want    ir.Type
		wantErr error
	}{
		{"f32 scalar", ir.F32T, ir.F32T, nil},
		{"i8 scalar", ir.I8, ir.I8, nil},
		{"f16 scalar", ir.F16T, ir.F16T, nil},
		{"vector<4xf32>", ir.Vector(4, ir.F32T), ir.Vector(4, ir.F32T), nil},
		{"vector<2xi64>", ir.Vector(2, ir.I64), ir.Vector(2, ir.I64), nil},
		{"vector<2xf16>", ir.Vector(2, ir.F16T), ir.I32, nil},
		{"vector<4xi8>", ir.Vector(4, ir.I8), ir.I32, nil},
		{"vector<2xi8>", ir.Vector(2, ir.I8), ir.I16, nil},
		{"vector<1xf16>", ir.Vector(1, ir.F16T), ir.I16, nil},
		{"vector<4xf16>", ir.Vector(4, ir.F16T), ir.Vector(2, ir.I32), nil},
		{"vector<8xf16>", ir.Vector(8, ir.F16T), ir.Vector(4, ir.I32), nil},
		{"vector<16xi8>", ir.Vector(16, ir.I8), ir.Vector(4, ir.I32), nil},
		{"vector<8xf32>", ir.Vector(8, ir.F32T), nil, WidthExceeded},
		{"vector<3xi64>", ir.Vector(3, ir.I64), nil, WidthExceeded},
		{"vector<6xi8>", ir.Vector(6, ir.I8), nil, Unrepresentable},
		{"vector<3xf16>", ir.Vector(3, ir.F16T), nil, Unrepresentable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Classify(tt.in, DefaultWidthLimits())
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Classify(%s) error = %v, want %v", tt.in, err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Classify(%s) error = %v", tt.in, err)
			}
			if !ir.Equal(got, tt.want) {
				t.Errorf("Classify(%s) = %s, want %s", tt.in, got, tt.want)
			}
			if ir.BitWidth(got) != ir.BitWidth(tt.in) {
				t.Errorf("Classify(%s) changed the width: %d -> %d", tt.in, ir.BitWidth(tt.in), ir.BitWidth(got))
			}
		})
	}
}

func TestClassify_Limits(t *testing.T) {
	wide := WidthLimits{MaxBits: 256, WordBits: 32}
	got, err := Classify(ir.Vector(8, ir.F32T), wide)
	if err != nil || !ir.Equal(got, ir.Vector(8, ir.F32T)) {
		t.Errorf("Classify(vector<8xf32>, 256) = %v, %v", got, err)
	}
	got, err = Classify(ir.Vector(16, ir.F16T), wide)
	if err != nil || !ir.Equal(got, ir.Vector(8, ir.I32)) {
		t.Errorf("Classify(vector<16xf16>, 256) = %v, %v", got, err)
	}

	// A zero limit falls back to the defaults.
	if _, err := Classify(ir.Vector(8, ir.F32T), WidthLimits{}); !errors.Is(err, WidthExceeded) {
		t.Errorf("zero limits should default to 128 bits, got %v", err)
	}
}
