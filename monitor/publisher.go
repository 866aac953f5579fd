// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package monitor

import (
	"errors"
	"fmt"
	"time"

	"github.com/garyburd/redigo/redis"
	"github.com/jpillora/backoff"
	"github.com/platinasystems/log"
)

// DefaultHash is the redis hash readings are stored in.
const DefaultHash = "powermon"

// ErrNotConnected is returned while the publisher waits to redial.
var ErrNotConnected = errors.New("monitor: redis not connected")

// Publisher stores one reading.
type Publisher interface {
	Publish(key, value string) error
	Close() error
}

// Conn is the part of redis.Conn used by RedisPublisher.
type Conn interface {
	Do(cmd string, args ...interface{}) (interface{}, error)
	Close() error
}

// RedisPublisher writes readings to a redis hash with HSET and announces them
// on the channel of the same name as "key: value".
//
// A failed connection is redialed with exponential backoff. Publish fails
// with ErrNotConnected until then.
type RedisPublisher struct {
	Hash string

	dial func() (Conn, error)
	now  func() time.Time
	c    Conn
	b    backoff.Backoff
	next time.Time
	down bool
}

// NewRedisPublisher returns a publisher writing to the redis server at addr,
// e.g. "127.0.0.1:6379". The first connection is made by the first Publish.
func NewRedisPublisher(addr string) *RedisPublisher {
	return newRedisPublisher(func() (Conn, error) {
		return redis.Dial("tcp", addr)
	})
}

func newRedisPublisher(dial func() (Conn, error)) *RedisPublisher {
	return &RedisPublisher{
		Hash: DefaultHash,
		dial: dial,
		now:  time.Now,
		b: backoff.Backoff{
			Min:    1 * time.Second,
			Max:    60 * time.Second,
			Factor: 2,
			Jitter: false,
		},
	}
}

func (p *RedisPublisher) connect() error {
	if p.c != nil {
		return nil
	}
	if now := p.now(); now.Before(p.next) {
		return ErrNotConnected
	}
	c, err := p.dial()
	if err != nil {
		d := p.b.Duration()
		p.next = p.now().Add(d)
		p.down = true
		log.Print("warning: redis dial: ", err, ", retry in ", d)
		return fmt.Errorf("%w: %v", ErrNotConnected, err)
	}
	if p.down {
		log.Print("notice: redis connected")
		p.down = false
	}
	p.b.Reset()
	p.c = c
	return nil
}

// Publish implements Publisher.
func (p *RedisPublisher) Publish(key, value string) error {
	if err := p.connect(); err != nil {
		return err
	}
	if _, err := p.c.Do("HSET", p.Hash, key, value); err != nil {
		p.drop()
		return fmt.Errorf("monitor: hset %s: %w", key, err)
	}
	if _, err := p.c.Do("PUBLISH", p.Hash, key+": "+value); err != nil {
		p.drop()
		return fmt.Errorf("monitor: publish %s: %w", key, err)
	}
	return nil
}

func (p *RedisPublisher) drop() {
	if err := p.c.Close(); err != nil {
		log.Print("warning: redis close: ", err)
	}
	p.c = nil
}

// Close implements Publisher.
func (p *RedisPublisher) Close() error {
	if p.c == nil {
		return nil
	}
	err := p.c.Close()
	p.c = nil
	return err
}

var _ Publisher = &RedisPublisher{}
