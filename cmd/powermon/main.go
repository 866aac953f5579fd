// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// powermon reads the INA237 and G1320 devices listed in a board description.
//
// With -once it prints every attribute and exits. Otherwise it polls the
// devices and publishes changed readings to redis until interrupted.
package main

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/GermanBionicSystems/powermon/board"
	"github.com/GermanBionicSystems/powermon/monitor"
	"github.com/maruel/ansi256"
	"github.com/mattn/go-colorable"
	"github.com/platinasystems/flags"
	"github.com/platinasystems/log"
	"github.com/platinasystems/parms"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/host/v3"
)

const (
	defaultConfig = "/etc/powermon.yaml"
	usage         = "powermon [-once] [-config FILE] [-redis ADDR] [-interval DURATION]"
)

func mainImpl() error {
	flag, args := flags.New(os.Args[1:], "-once", "-h", "-help")
	parm, args := parms.New(args, "-config", "-redis", "-interval")
	if flag.ByName["-h"] || flag.ByName["-help"] {
		fmt.Println(usage)
		return nil
	}
	if len(args) != 0 {
		return fmt.Errorf("%v: unexpected", args)
	}

	path := parm.ByName["-config"]
	if path == "" {
		path = defaultConfig
	}
	cfg, err := board.Load(path)
	if err != nil {
		return err
	}
	if s := parm.ByName["-redis"]; s != "" {
		cfg.Redis = s
	}
	if s := parm.ByName["-interval"]; s != "" {
		if cfg.Interval, err = time.ParseDuration(s); err != nil {
			return err
		}
	}

	if _, err = host.Init(); err != nil {
		return err
	}
	var blob []byte
	if cfg.DeviceTree != "" {
		if blob, err = os.ReadFile(cfg.DeviceTree); err != nil {
			return err
		}
	}

	buses := map[string]i2c.BusCloser{}
	defer func() {
		for _, b := range buses {
			b.Close()
		}
	}()
	for _, name := range cfg.Buses() {
		b, err := i2creg.Open(name)
		if err != nil {
			return fmt.Errorf("failed to open I²C %q: %w", name, err)
		}
		buses[name] = b
	}

	var devs []monitor.Device
	for i := range cfg.Devices {
		d := &cfg.Devices[i]
		src, err := d.Source(blob)
		if err != nil {
			return err
		}
		s, err := d.Open(buses[d.Bus], src)
		if err != nil {
			return err
		}
		defer s.Halt()
		devs = append(devs, monitor.Device{Name: d.Name, Dev: s})
	}

	if flag.ByName["-once"] {
		failed, err := printTable(colorable.NewColorableStdout(), ansi256.Default, devs)
		if err != nil {
			return err
		}
		if failed != 0 {
			return fmt.Errorf("%d of %d devices failed", failed, len(devs))
		}
		return nil
	}

	if cfg.Redis == "" {
		return errors.New("no redis server configured")
	}
	m := monitor.New(monitor.NewRedisPublisher(cfg.Redis), cfg.Interval, devs...)
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-c
		m.Close()
	}()
	log.Print("notice: monitoring ", len(devs), " devices every ", cfg.Interval)
	return m.Run()
}

func main() {
	if err := mainImpl(); err != nil {
		fmt.Fprintf(os.Stderr, "powermon: %s.\n", err)
		os.Exit(1)
	}
}
