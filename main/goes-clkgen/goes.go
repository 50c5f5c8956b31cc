// Copyright © 2015-2020 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

package main

import (
	"github.com/platinasystems/goes"
	"github.com/platinasystems/goes/cmd"
	"github.com/platinasystems/goes/cmd/bang"
	"github.com/platinasystems/goes/cmd/cat"
	"github.com/platinasystems/goes/cmd/cd"
	"github.com/platinasystems/goes/cmd/cli"
	"github.com/platinasystems/goes/cmd/daemons"
	"github.com/platinasystems/goes/cmd/echo"
	"github.com/platinasystems/goes/cmd/env"
	"github.com/platinasystems/goes/cmd/exit"
	"github.com/platinasystems/goes/cmd/export"
	"github.com/platinasystems/goes/cmd/kill"
	"github.com/platinasystems/goes/cmd/ln"
	"github.com/platinasystems/goes/cmd/ls"
	"github.com/platinasystems/goes/cmd/mkdir"
	"github.com/platinasystems/goes/cmd/mount"
	"github.com/platinasystems/goes/cmd/pwd"
	"github.com/platinasystems/goes/cmd/reboot"
	"github.com/platinasystems/goes/cmd/redisd"
	"github.com/platinasystems/goes/cmd/reload"
	"github.com/platinasystems/goes/cmd/rm"
	"github.com/platinasystems/goes/cmd/sleep"
	"github.com/platinasystems/goes/cmd/start"
	"github.com/platinasystems/goes/cmd/stop"
	"github.com/platinasystems/goes/cmd/umount"
	"github.com/platinasystems/goes/cmd/version"
	"github.com/platinasystems/goes/lang"

	"github.com/platinasystems/clkgen/cmd/clkctl"
	"github.com/platinasystems/clkgen/cmd/clkgend"
)

var Goes = &goes.Goes{
	NAME: "goes-clkgen",
	APROPOS: lang.Alt{
		lang.EnUS: "goes machine for SoC clock control",
	},
	ByName: map[string]cmd.Cmd{
		"!":       bang.Command{},
		"cat":     cat.Command{},
		"cd":      &cd.Command{},
		"cli":     &cli.Command{},
		"clkctl":  clkctl.Command{},
		"clkgend": &clkgend.Command{},
		"daemon":  daemons.Admin,
		"echo":    echo.Command{},
		"env":     &env.Command{},
		"exit":    exit.Command{},
		"export":  export.Command{},
		"goes-daemons": &daemons.Server{
			Init: [][]string{
				[]string{"redisd"},
				[]string{"clkgend"},
			},
		},
		"kill":    kill.Command{},
		"ln":      ln.Command{},
		"ls":      ls.Command{},
		"mkdir":   mkdir.Command{},
		"mount":   mount.Command{},
		"pwd":     pwd.Command{},
		"reboot":  &reboot.Command{},
		"redisd": &redisd.Command{
			Machine: "clkgen",
		},
		"reload":  reload.Command{},
		"rm":      rm.Command{},
		"sleep":   sleep.Command{},
		"start":   &start.Command{},
		"stop":    &stop.Command{},
		"umount":  umount.Command{},
		"version": &version.Command{},
	},
}
