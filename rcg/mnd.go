// Copyright © 2015-2020 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

package rcg

// The N and D registers hold complemented values: N keeps ~(n-m) and D
// keeps ~n, truncated to the field width. Decoding adds m back after
// undoing the complement. Round trip holds whenever n-m fits the field.

// EncodeN returns the N register image for multiplier m and divisor n.
func EncodeN(m, n, width uint32) uint32 {
	return ^(n - m) & (uint32(1)<<width - 1)
}

// EncodeD returns the D register image for divisor n.
func EncodeD(n, width uint32) uint32 {
	return ^n & (uint32(1)<<width - 1)
}

// DecodeN recovers the logical divisor from the N register image and the
// multiplier.
func DecodeN(raw, m, width uint32) uint32 {
	return (^raw & (uint32(1)<<width - 1)) + m
}
