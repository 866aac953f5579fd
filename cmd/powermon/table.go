// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package main

import (
	"bytes"
	"fmt"
	"image/color"
	"io"
	"sort"

	"github.com/GermanBionicSystems/powermon/monitor"
	"github.com/maruel/ansi256"
)

var (
	colorOK     = color.NRGBA{0, 200, 0, 255}
	colorFailed = color.NRGBA{200, 0, 0, 255}
)

// printTable writes one block per device: a status swatch, the device name
// and its attributes sorted by name. It returns the number of devices that
// failed to read.
func printTable(w io.Writer, p *ansi256.Palette, devs []monitor.Device) (int, error) {
	var buf bytes.Buffer
	failed := 0
	for _, d := range devs {
		s, err := d.Dev.Snapshot()
		c := colorOK
		if err != nil {
			c = colorFailed
			failed++
		}
		fmt.Fprintf(&buf, "%s\033[0m %s (%s)\n", p.Block(c), d.Name, d.Dev)
		if err != nil {
			fmt.Fprintf(&buf, "    error: %v\n", err)
			continue
		}
		keys := make([]string, 0, len(s))
		for k := range s {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(&buf, "    %-16s %s\n", k, s[k])
		}
	}
	_, err := buf.WriteTo(w)
	return failed, err
}
