// Package imgray converts color images to grayscale.
//
// # Overview
//
// Every pixel (R, G, B) becomes (L, L, L) with
//
//	L = floor(0.2126*R + 0.7152*G + 0.0722*B)
//
// computed in fixed point so that every execution path produces the same
// bytes. Two paths are available:
//
//   - [ModeHost] splits the image into an n x n grid of tiles, where n is
//     the number of usable CPUs, and converts the tiles on a worker pool.
//     It can be cancelled through its context.
//   - [ModeDevice] splits the image into channel planes and converts them
//     with one compute kernel launch on a GPU (or on the host emulation
//     device).
//
// # Quick Start
//
//	img, err := imgray.Load("photo.png")
//	if err != nil {
//		return err
//	}
//
//	conv := imgray.New()
//	defer conv.Close()
//
//	gray, err := conv.Convert(ctx, img, imgray.ModeHost)
//	if err != nil {
//		return err
//	}
//	return imgray.Save(gray, "photo-gray.png")
//
// # Errors
//
// A host run cancelled during collection fails with [ErrCancelled]. A device
// run fails with [ErrGridTooLarge] before touching the device when the image
// needs more thread blocks than the device supports, with
// [*KernelCompileError] or [*KernelLaunchError] when the device rejects the
// kernel, and with [ErrNoDevice] when no device can be opened.
//
// # Logging
//
// The package is silent by default. See [SetLogger].
package imgray
