// Copyright © 2015-2020 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

// This is a goes machine for SoC clock generator control.
package main

import (
	"fmt"
	"os"

	"github.com/platinasystems/goes/external/redis"
)

func main() {
	redis.DefaultHash = "clkgen"
	if err := Goes.Main(os.Args...); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
