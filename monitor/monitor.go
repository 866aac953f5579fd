// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package monitor polls power monitoring devices and publishes the readings
// that changed since the previous poll.
//
// Keys are "<device>.<attribute>", e.g. "vdd-core.curr1_input" or
// "psu0.POWER_NOW".
package monitor

import (
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/platinasystems/log"
)

// Snapshotter is a device whose attributes can be read as strings.
type Snapshotter interface {
	String() string
	Snapshot() (map[string]string, error)
}

// Device is a named Snapshotter.
type Device struct {
	Name string
	Dev  Snapshotter
}

// Monitor publishes device readings to a Publisher.
type Monitor struct {
	pub      Publisher
	interval time.Duration
	devs     []Device

	mu     sync.Mutex
	last   map[string]string
	failed map[string]bool
	stop   chan struct{}
	once   sync.Once
}

// New returns a Monitor polling devs every interval.
func New(pub Publisher, interval time.Duration, devs ...Device) *Monitor {
	return &Monitor{
		pub:      pub,
		interval: interval,
		devs:     devs,
		last:     map[string]string{},
		failed:   map[string]bool{},
		stop:     make(chan struct{}),
	}
}

// Update polls every device once and publishes the changed values. A device
// failing to read is logged and skipped. The first publish error aborts the
// pass; unpublished values are retried by the next Update.
func (m *Monitor) Update() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, d := range m.devs {
		s, err := d.Dev.Snapshot()
		if err != nil {
			if !m.failed[d.Name] {
				log.Print("warning: ", d.Name, ": ", err)
				m.failed[d.Name] = true
			}
			continue
		}
		if m.failed[d.Name] {
			log.Print("notice: ", d.Name, " recovered")
			delete(m.failed, d.Name)
		}
		keys := make([]string, 0, len(s))
		for k := range s {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			key := d.Name + "." + k
			v := s[k]
			if last, ok := m.last[key]; ok && last == v {
				continue
			}
			if err := m.pub.Publish(key, v); err != nil {
				return err
			}
			m.last[key] = v
		}
	}
	return nil
}

// Run calls Update every interval until Close. Publish errors are logged and
// the loop keeps going.
func (m *Monitor) Run() error {
	if m.interval <= 0 {
		return errors.New("monitor: invalid interval")
	}
	t := time.NewTicker(m.interval)
	defer t.Stop()
	for {
		if err := m.Update(); err != nil && !errors.Is(err, ErrNotConnected) {
			log.Print("warning: ", err)
		}
		select {
		case <-m.stop:
			return nil
		case <-t.C:
		}
	}
}

// Close stops Run and closes the publisher.
func (m *Monitor) Close() error {
	var err error
	m.once.Do(func() {
		close(m.stop)
		m.mu.Lock()
		err = m.pub.Close()
		m.mu.Unlock()
	})
	return err
}
