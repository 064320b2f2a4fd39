// Package filter implements the luminance transform applied to every pixel
// by both grayscale execution paths.
//
// The weights are the Rec. 709 luma coefficients (0.2126, 0.7152, 0.0722).
// They are evaluated in fixed point so the result is the exact floor of the
// weighted sum and can be reproduced bit-for-bit by the GPU kernel, which
// only has 32-bit integer and float arithmetic available:
//
//	L = (2126*R + 7152*G + 722*B) / 10000
//
// All functions are pure and safe to call concurrently on disjoint tiles.
package filter
