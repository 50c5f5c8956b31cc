// Copyright © 2015-2020 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

package regmap

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

const iomemFile = "/proc/iomem"

// Span is one physical address range of an iomem region.
type Span struct {
	Start uintptr
	End   uintptr
}

func (s Span) String() string {
	return fmt.Sprintf("%x-%x", s.Start, s.End)
}

// Regions maps an iomem resource name to its address spans, as listed by
// /proc/iomem or anything of similar structure.
type Regions map[string][]Span

// ParseIomem reads "START-END : NAME" lines into a Regions map.
func ParseIomem(r io.Reader) (Regions, error) {
	regions := make(Regions)
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		fields := strings.SplitAfterN(scanner.Text(), ":", 2)
		if len(fields) != 2 {
			continue
		}
		var span Span
		n, err := fmt.Sscanf(fields[0], "%x-%x", &span.Start, &span.End)
		if err != nil || n != 2 {
			continue
		}
		name := strings.TrimSpace(fields[1])
		regions[name] = append(regions[name], span)
	}
	return regions, scanner.Err()
}

// CheckWindow returns nil if [physAddr, physAddr+size) lies within one span
// of the named region.
func (regions Regions) CheckWindow(name string, physAddr uintptr, size uint32) error {
	for _, span := range regions[name] {
		if physAddr >= span.Start && physAddr+uintptr(size)-1 <= span.End {
			return nil
		}
	}
	return fmt.Errorf("%#x+%#x: no %q iomem resource covers the window",
		physAddr, size, name)
}

// CheckIomem verifies against the running kernel's /proc/iomem that the
// window is part of the named resource before a caller maps it.
func CheckIomem(name string, physAddr uintptr, size uint32) error {
	f, err := os.Open(iomemFile)
	if err != nil {
		return err
	}
	defer f.Close()
	regions, err := ParseIomem(f)
	if err != nil {
		return err
	}
	return regions.CheckWindow(name, physAddr, size)
}
