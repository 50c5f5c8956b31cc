// Copyright © 2015-2020 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

// Package clkctl provides access to the SoC's root clock generators.
package clkctl

import (
	"fmt"
	"strconv"

	"github.com/platinasystems/clkgen/gcc"
	"github.com/platinasystems/flags"
	"github.com/platinasystems/goes/lang"
	"github.com/platinasystems/parms"
)

type Command struct{}

func (Command) String() string { return "clkctl" }

func (Command) Usage() string {
	return "clkctl [-e] [CLOCK [-set HZ] [-parent INDEX]]"
}

func (Command) Apropos() lang.Alt {
	return lang.Alt{
		lang.EnUS: "show and set root clock generator rates",
	}
}

func (Command) Man() lang.Alt {
	return lang.Alt{
		lang.EnUS: `
DESCRIPTION
	Without arguments, list every known clock generator with its rate
	and enable state.
	  -e  restrict the listing to enabled clocks

	With a CLOCK name, show that generator.
	  -set HZ       reprogram the generator for HZ; the rate must be
	                covered by the generator's frequency table
	  -parent INDEX select the parent source by parent-map index`,
	}
}

func (Command) Main(args ...string) error {
	flag, args := flags.New(args, "-e")
	parm, args := parms.New(args, "-set", "-parent")

	g, err := gcc.Attach()
	if err != nil {
		return err
	}
	defer g.Close()

	if len(args) == 0 {
		for _, name := range g.Names() {
			if err = show(g, name, flag.ByName["-e"]); err != nil {
				return err
			}
		}
		return nil
	}
	if len(args) > 1 {
		return fmt.Errorf("%v: unexpected", args[1:])
	}

	name := args[0]
	c, found := g.ByName[name]
	if !found {
		return fmt.Errorf("%s: unknown clock", name)
	}
	if s := parm.ByName["-parent"]; s != "" {
		index, err := strconv.Atoi(s)
		if err != nil {
			return fmt.Errorf("%s: %v", s, err)
		}
		if err = c.SetParent(index); err != nil {
			return err
		}
	}
	if s := parm.ByName["-set"]; s != "" {
		hz, err := strconv.ParseUint(s, 0, 64)
		if err != nil {
			return fmt.Errorf("%s: %v", s, err)
		}
		if err = c.SetRate(hz); err != nil {
			return err
		}
	}
	return show(g, name, false)
}

func show(g *gcc.Group, name string, onlyEnabled bool) error {
	c := g.ByName[name]
	enabled, err := c.Enabled()
	if err != nil {
		return fmt.Errorf("%s: %v", name, err)
	}
	if onlyEnabled && !enabled {
		return nil
	}
	hz, err := c.Rate()
	if err != nil {
		return fmt.Errorf("%s: %v", name, err)
	}
	parent, err := c.Parent()
	if err != nil {
		return fmt.Errorf("%s: %v", name, err)
	}
	state := "off"
	if enabled {
		state = "on"
	}
	fmt.Printf("%s: %d Hz, parent %d, %s\n", name, hz, parent, state)
	return nil
}
