// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package gpu

import (
	"errors"
	"math"
	"strconv"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestNewLaunchConfig(t *testing.T) {
	tests := []struct {
		name          string
		width, height int
		gridX, gridY  uint32
	}{
		{"exact", 32, 64, 2, 4},
		{"partial block", 33, 17, 3, 2},
		{"single pixel", 1, 1, 1, 1},
		{"smaller than block", 15, 15, 1, 1},
		{"empty", 0, 0, 0, 0},
		{"wide", 1920, 1080, 120, 68},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NewLaunchConfig(tt.width, tt.height)
			if err != nil {
				t.Fatalf("NewLaunchConfig() error = %v", err)
			}
			want := LaunchConfig{
				BlockX: BlockSize, BlockY: BlockSize,
				GridX: tt.gridX, GridY: tt.gridY,
				Width: uint32(tt.width), Height: uint32(tt.height), //nolint:gosec // test values
			}
			if diff := cmp.Diff(want, got); diff != "" {
				t.Errorf("NewLaunchConfig(%d, %d) mismatch (-want +got):\n%s", tt.width, tt.height, diff)
			}
		})
	}
}

func TestNewLaunchConfig_Invalid(t *testing.T) {
	if strconv.IntSize < 64 {
		t.Skip("requires 64-bit int")
	}
	tooWide := uint64(math.MaxUint32) + 1
	for _, dims := range [][2]int{{-1, 4}, {4, -1}, {int(tooWide), 1}} { //nolint:gosec // 64-bit only
		if _, err := NewLaunchConfig(dims[0], dims[1]); err == nil {
			t.Errorf("NewLaunchConfig(%d, %d) error = nil, want error", dims[0], dims[1])
		}
	}
}

func TestNewLaunchConfig_MaxWidth(t *testing.T) {
	if strconv.IntSize < 64 {
		t.Skip("requires 64-bit int")
	}
	maxWidth := uint64(math.MaxUint32)
	cfg, err := NewLaunchConfig(int(maxWidth), 1) //nolint:gosec // 64-bit only
	if err != nil {
		t.Fatalf("NewLaunchConfig() error = %v", err)
	}
	if want := uint32((uint64(math.MaxUint32) + BlockSize - 1) / BlockSize); cfg.GridX != want {
		t.Errorf("GridX = %d, want %d", cfg.GridX, want)
	}
}

func TestLaunchConfig_Validate(t *testing.T) {
	tests := []struct {
		name         string
		gridX, gridY uint32
		maxX, maxY   uint32
		wantErr      bool
	}{
		{"within", 10, 10, 16, 16, false},
		{"at limit", 16, 16, 16, 16, false},
		{"one over", 17, 16, 16, 16, true},
		{"product within, axis over", 64, 2, 16, 16, false},
		{"zero limits", 1, 1, 0, 0, true},
		{"empty grid", 0, 0, 0, 0, false},
		{"large limits no overflow", math.MaxUint32, math.MaxUint32, math.MaxUint32, math.MaxUint32, false},
		{"large grid over", math.MaxUint32, 2, math.MaxUint32, 1, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := LaunchConfig{BlockX: BlockSize, BlockY: BlockSize, GridX: tt.gridX, GridY: tt.gridY}
			err := cfg.Validate(tt.maxX, tt.maxY)
			if tt.wantErr {
				if !errors.Is(err, ErrGridTooLarge) {
					t.Errorf("Validate() error = %v, want ErrGridTooLarge", err)
				}
				return
			}
			if err != nil {
				t.Errorf("Validate() error = %v, want nil", err)
			}
		})
	}
}

func TestLaunchConfig_String(t *testing.T) {
	cfg, _ := NewLaunchConfig(33, 17)
	if got, want := cfg.String(), "grid 3x2 block 16x16 image 33x17"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}
