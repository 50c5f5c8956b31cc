// Copyright © 2015-2020 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

// Package clkgend publishes root clock generator and on-chip memory state
// to redis and accepts clock rate writes through Hset.
package clkgend

import (
	"fmt"
	"net/rpc"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/jpillora/backoff"
	"github.com/platinasystems/clkgen/gcc"
	"github.com/platinasystems/clkgen/ocm"
	"github.com/platinasystems/goes/cmd"
	"github.com/platinasystems/goes/external/atsock"
	"github.com/platinasystems/goes/external/log"
	"github.com/platinasystems/goes/external/redis"
	"github.com/platinasystems/goes/external/redis/publisher"
	"github.com/platinasystems/goes/external/redis/rpc/args"
	"github.com/platinasystems/goes/external/redis/rpc/reply"
	"github.com/platinasystems/goes/lang"
)

type Command struct {
	Info
}

type Info struct {
	mutex sync.Mutex
	rpc   *atsock.RpcServer
	pub   *publisher.Publisher
	stop  chan struct{}

	group *gcc.Group
	mem   *ocm.Dev

	lastu map[string]uint64
	lasts map[string]string
}

func (*Command) String() string { return "clkgend" }

func (*Command) Usage() string { return "clkgend" }

func (*Command) Apropos() lang.Alt {
	return lang.Alt{
		lang.EnUS: "clock generator daemon, publishes to redis",
	}
}

func (*Command) Kind() cmd.Kind { return cmd.Daemon }

func (c *Command) Main(...string) error {
	var err error

	b := &backoff.Backoff{
		Min:    100 * time.Millisecond,
		Max:    10 * time.Second,
		Factor: 2,
	}
	for {
		if err = redis.IsReady(); err == nil {
			break
		}
		if b.Attempt() > 10 {
			return err
		}
		time.Sleep(b.Duration())
	}

	c.stop = make(chan struct{})
	c.lastu = make(map[string]uint64)
	c.lasts = make(map[string]string)

	c.group, err = gcc.Attach()
	if err != nil {
		return err
	}
	defer c.group.Close()

	c.mem, err = ocm.Attach()
	if err != nil {
		log.Print("warning: ocm: ", err)
		c.mem = nil
	} else {
		defer c.mem.Close()
	}

	if c.pub, err = publisher.New(); err != nil {
		return err
	}
	defer c.pub.Close()

	if c.rpc, err = atsock.NewRpcServer("clkgend"); err != nil {
		return err
	}
	defer c.rpc.Close()

	rpc.Register(&c.Info)
	for _, v := range []string{
		"clk.",
		"ocm.",
	} {
		err = redis.Assign(redis.DefaultHash+":"+v, "clkgend", "Info")
		if err != nil {
			return err
		}
	}

	t := time.NewTicker(5 * time.Second)
	defer t.Stop()
	c.update()
	for {
		select {
		case <-c.stop:
			return nil
		case <-t.C:
			c.update()
		}
	}
}

func (c *Command) Close() error {
	close(c.stop)
	return nil
}

func (c *Command) update() {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	for _, name := range c.group.Names() {
		clk := c.group.ByName[name]
		if hz, err := clk.Rate(); err == nil {
			c.pubUint("clk."+name+".rate.hz", hz)
		} else {
			log.Print("warning: ", name, ": ", err)
		}
		if enabled, err := clk.Enabled(); err == nil {
			c.pubString("clk."+name+".enabled",
				strconv.FormatBool(enabled))
		}
		c.pubUint("clk."+name+".update.timeouts",
			uint64(clk.Timeouts()))
	}
	if c.mem != nil {
		c.pubUint("ocm.pool.size", uint64(c.mem.Pool.Size()))
		c.pubUint("ocm.pool.avail", uint64(c.mem.Pool.Avail()))
		if fault, err := c.mem.Parity.Check(); err == nil {
			if fault != nil {
				c.pubString("ocm.parity.fault",
					fmt.Sprintf("%#08x at %#08x",
						fault.Status, fault.Addr))
			} else {
				c.pubString("ocm.parity.fault", "none")
			}
		}
	}
}

func (c *Command) pubUint(key string, v uint64) {
	if last, found := c.lastu[key]; !found || last != v {
		c.pub.Print(key, ": ", v)
		c.lastu[key] = v
	}
}

func (c *Command) pubString(key, v string) {
	if last, found := c.lasts[key]; !found || last != v {
		c.pub.Print(key, ": ", v)
		c.lasts[key] = v
	}
}

// Hset accepts rate writes of the form "clk.NAME.rate.hz".
func (i *Info) Hset(a args.Hset, r *reply.Hset) error {
	field := strings.TrimPrefix(a.Field, "clk.")
	if field == a.Field || !strings.HasSuffix(field, ".rate.hz") {
		return fmt.Errorf("%s: can't set", a.Field)
	}
	name := strings.TrimSuffix(field, ".rate.hz")

	i.mutex.Lock()
	defer i.mutex.Unlock()

	clk, found := i.group.ByName[name]
	if !found {
		return fmt.Errorf("%s: unknown clock", name)
	}
	hz, err := strconv.ParseUint(string(a.Value), 0, 64)
	if err != nil {
		return err
	}
	if err = clk.SetRate(hz); err != nil {
		return err
	}
	if v, err := clk.Rate(); err == nil {
		i.pub.Print("clk."+name+".rate.hz", ": ", v)
		i.lastu["clk."+name+".rate.hz"] = v
	}
	*r = 1
	return nil
}
