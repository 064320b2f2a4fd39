// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package gpu

import (
	"testing"

	"github.com/gogpu/imgray/internal/filter"
	"github.com/gogpu/imgray/internal/image"
)

func TestCPUDevice_Limits(t *testing.T) {
	dev := NewCPUDevice(7, 9)
	if x, y := dev.MaxGridDim(); x != 7 || y != 9 {
		t.Errorf("MaxGridDim() = (%d, %d), want (7, 9)", x, y)
	}
	if dev.Name() != "cpu" {
		t.Errorf("Name() = %q", dev.Name())
	}
}

func TestCPUDevice_CompileRejectsNonCompute(t *testing.T) {
	dev := NewCPUDevice(1, 1)
	if _, err := dev.Compile("fn main() {}"); err == nil {
		t.Error("Compile() accepted source without @compute")
	}
	if dev.Compiles() != 0 {
		t.Errorf("Compiles() = %d, want 0", dev.Compiles())
	}
}

func TestCPUDevice_CompileAfterClose(t *testing.T) {
	dev := NewCPUDevice(1, 1)
	dev.Close()
	if _, err := dev.Compile(LuminanceShader); err == nil {
		t.Error("Compile() succeeded on a closed device")
	}
}

func TestCPUKernel_InPlace(t *testing.T) {
	dev := NewCPUDevice(DefaultMaxGridDim, DefaultMaxGridDim)
	k, err := dev.Compile(LuminanceShader)
	if err != nil {
		t.Fatalf("Compile() error = %v", err)
	}
	defer k.Release()

	src := randomImage(t, 19, 5, 3)
	planes := image.SplitPlanes(src)
	cfg, _ := NewLaunchConfig(19, 5)

	if err := k.Launch(cfg, planes); err != nil {
		t.Fatalf("Launch() error = %v", err)
	}
	for i := range planes[0].Pix {
		x, y := i%19, i/19
		r, g, b := src.At(x, y)
		want := filter.Luminance(r, g, b)
		for c, p := range planes {
			if p.Pix[i] != want {
				t.Fatalf("plane %d pixel (%d,%d) = %d, want %d", c, x, y, p.Pix[i], want)
			}
		}
	}
	if dev.Launches() != 1 {
		t.Errorf("Launches() = %d, want 1", dev.Launches())
	}
}

func TestCPUKernel_ShortPlane(t *testing.T) {
	dev := NewCPUDevice(DefaultMaxGridDim, DefaultMaxGridDim)
	k, _ := dev.Compile(LuminanceShader)

	cfg, _ := NewLaunchConfig(4, 4)
	planes := [image.Channels]*image.Plane{
		image.NewPlane(4, 4), image.NewPlane(4, 3), image.NewPlane(4, 4),
	}
	if err := k.Launch(cfg, planes); err == nil {
		t.Error("Launch() accepted a short plane")
	}
}

func TestOpenCPU(t *testing.T) {
	dev, err := OpenCPU()
	if err != nil {
		t.Fatalf("OpenCPU() error = %v", err)
	}
	defer dev.Close()
	if x, y := dev.MaxGridDim(); x != DefaultMaxGridDim || y != DefaultMaxGridDim {
		t.Errorf("MaxGridDim() = (%d, %d), want default", x, y)
	}
}
