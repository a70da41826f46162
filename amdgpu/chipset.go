// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package amdgpu

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Chipset identifies an AMDGPU hardware generation, as in "gfx90a".
// The major version selects the ISA family; the minor version is the
// stepping within it, written as two hexadecimal digits.
type Chipset struct {
	Major uint32
	Minor uint32
}

// ParseChipset parses a chipset name of the form gfx<major><minor>, where
// minor is the last two characters (hexadecimal) and major the decimal digits
// before them. For example gfx908 is 9.0x08 and gfx1030 is 10.0x30.
func ParseChipset(name string) (Chipset, error) {
	digits, ok := strings.CutPrefix(name, "gfx")
	if !ok {
		return Chipset{}, errors.Errorf("chipset %q does not start with \"gfx\"", name)
	}
	if len(digits) < 3 {
		return Chipset{}, errors.Errorf("chipset %q is too short", name)
	}
	majorText, minorText := digits[:len(digits)-2], digits[len(digits)-2:]
	major, err := strconv.ParseUint(majorText, 10, 32)
	if err != nil {
		return Chipset{}, errors.Errorf("chipset %q has invalid major version %q", name, majorText)
	}
	minor, err := strconv.ParseUint(minorText, 16, 32)
	if err != nil {
		return Chipset{}, errors.Errorf("chipset %q has invalid minor version %q", name, minorText)
	}
	return Chipset{Major: uint32(major), Minor: uint32(minor)}, nil
}

// MustParseChipset is like ParseChipset but panics on error.
func MustParseChipset(name string) Chipset {
	c, err := ParseChipset(name)
	if err != nil {
		panic(err)
	}
	return c
}

// String returns the canonical chipset name.
// Example: "gfx908", "gfx1030"
func (c Chipset) String() string {
	return fmt.Sprintf("gfx%d%02x", c.Major, c.Minor)
}

// SupportsRawBufferOps returns true if buffer intrinsics can be used.
// Raw buffer instructions were introduced with GCN (gfx9).
func (c Chipset) SupportsRawBufferOps() bool {
	return c.Major >= 9
}

// HasRDNADescriptorBits returns true if the buffer descriptor's last word
// carries the RDNA reserved bit and out-of-bounds select field.
// Only gfx10 encodes them; gfx9 leaves those bits zero.
func (c Chipset) HasRDNADescriptorBits() bool {
	return c.Major == 10
}
