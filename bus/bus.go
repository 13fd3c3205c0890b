// Package bus is a small in-process pub/sub used to publish node telemetry.
// Topics are token paths; subscriptions may use "+" for one level and "#"
// (last token only) for any remaining levels. Retained messages are replayed
// to new subscribers.
package bus

import (
	"reflect"
	"sync"
)

const (
	SingleWild = "+"
	MultiWild  = "#"
)

// Topic is a sequence of comparable tokens.
type Topic []any

// T builds a topic and panics on a token that cannot be used as a map key.
func T(tokens ...any) Topic {
	for _, tok := range tokens {
		if tok == nil || !reflect.TypeOf(tok).Comparable() {
			panic("bus: topic token is not comparable")
		}
	}
	return Topic(tokens)
}

func (t Topic) String() string {
	b := make([]byte, 0, 32)
	for i, tok := range t {
		if i > 0 {
			b = append(b, '/')
		}
		switch x := tok.(type) {
		case string:
			b = append(b, x...)
		case interface{ String() string }:
			b = append(b, x.String()...)
		case int:
			b = appendInt(b, x)
		default:
			b = append(b, '?')
		}
	}
	return string(b)
}

func appendInt(b []byte, v int) []byte {
	if v < 0 {
		b = append(b, '-')
		v = -v
	}
	var d [20]byte
	i := len(d)
	for {
		i--
		d[i] = byte('0' + v%10)
		v /= 10
		if v == 0 {
			break
		}
	}
	return append(b, d[i:]...)
}

type Message struct {
	Topic    Topic
	Payload  any
	Retained bool
}

type Subscription struct {
	topic Topic
	ch    chan *Message
	conn  *Connection
}

func (s *Subscription) Topic() Topic             { return s.topic }
func (s *Subscription) Channel() <-chan *Message { return s.ch }
func (s *Subscription) Unsubscribe()             { s.conn.Unsubscribe(s) }

type node struct {
	children map[any]*node
	subs     []*Subscription
	retained *Message
}

func (n *node) child(tok any, create bool) *node {
	if c := n.children[tok]; c != nil || !create {
		return c
	}
	if n.children == nil {
		n.children = make(map[any]*node)
	}
	c := &node{}
	n.children[tok] = c
	return c
}

type Bus struct {
	mu   sync.Mutex
	subs node // subscription filters, wildcards stored literally
	ret  node // retained messages by concrete topic
	qLen int
}

// NewBus creates a bus whose subscriptions buffer queueLen messages. A full
// queue drops its oldest message.
func NewBus(queueLen int) *Bus {
	if queueLen <= 0 {
		queueLen = 8
	}
	return &Bus{qLen: queueLen}
}

func (b *Bus) NewMessage(t Topic, payload any, retained bool) *Message {
	return &Message{Topic: t, Payload: payload, Retained: retained}
}

// Publish delivers msg to every matching subscription. A retained message
// with a nil payload clears the retained value for its topic.
func (b *Bus) Publish(msg *Message) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if msg.Retained {
		n := &b.ret
		for _, tok := range msg.Topic {
			n = n.child(tok, true)
		}
		if msg.Payload == nil {
			n.retained = nil
		} else {
			n.retained = msg
		}
	}
	b.deliver(&b.subs, msg.Topic, msg)
}

// deliver walks the subscription trie along topic, following literal,
// single-level and multi-level branches.
func (b *Bus) deliver(n *node, rest Topic, msg *Message) {
	if n == nil {
		return
	}
	if h := n.children[MultiWild]; h != nil {
		for _, s := range h.subs {
			send(s, msg)
		}
	}
	if len(rest) == 0 {
		for _, s := range n.subs {
			send(s, msg)
		}
		return
	}
	b.deliver(n.children[rest[0]], rest[1:], msg)
	if rest[0] != SingleWild {
		b.deliver(n.children[SingleWild], rest[1:], msg)
	}
}

func send(s *Subscription, msg *Message) {
	select {
	case s.ch <- msg:
		return
	default:
	}
	select {
	case <-s.ch:
	default:
	}
	select {
	case s.ch <- msg:
	default:
	}
}

// replay sends every retained message matching filter to s.
func replay(n *node, filter Topic, s *Subscription) {
	if n == nil {
		return
	}
	if len(filter) == 0 {
		if n.retained != nil {
			send(s, n.retained)
		}
		return
	}
	switch filter[0] {
	case MultiWild:
		var walk func(*node)
		walk = func(n *node) {
			if n.retained != nil {
				send(s, n.retained)
			}
			for _, c := range n.children {
				walk(c)
			}
		}
		walk(n)
	case SingleWild:
		for _, c := range n.children {
			replay(c, filter[1:], s)
		}
	default:
		replay(n.children[filter[0]], filter[1:], s)
	}
}

func (b *Bus) subscribe(s *Subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := &b.subs
	for _, tok := range s.topic {
		n = n.child(tok, true)
	}
	n.subs = append(n.subs, s)
	replay(&b.ret, s.topic, s)
}

func (b *Bus) unsubscribe(s *Subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := &b.subs
	path := make([]*node, 0, len(s.topic))
	for _, tok := range s.topic {
		path = append(path, n)
		if n = n.children[tok]; n == nil {
			return
		}
	}
	for i, x := range n.subs {
		if x == s {
			n.subs = append(n.subs[:i], n.subs[i+1:]...)
			break
		}
	}
	for i := len(s.topic) - 1; i >= 0; i-- {
		parent, tok := path[i], s.topic[i]
		c := parent.children[tok]
		if len(c.subs) != 0 || len(c.children) != 0 {
			break
		}
		delete(parent.children, tok)
	}
}

// Connection groups the subscriptions of one client so they can be dropped
// together.
type Connection struct {
	bus  *Bus
	id   string
	mu   sync.Mutex
	subs []*Subscription
}

func (b *Bus) NewConnection(id string) *Connection {
	return &Connection{bus: b, id: id}
}

func (c *Connection) ID() string { return c.id }

func (c *Connection) NewMessage(t Topic, payload any, retained bool) *Message {
	return c.bus.NewMessage(t, payload, retained)
}

func (c *Connection) Publish(msg *Message) { c.bus.Publish(msg) }

func (c *Connection) Subscribe(t Topic) *Subscription {
	s := &Subscription{topic: t, ch: make(chan *Message, c.bus.qLen), conn: c}
	c.mu.Lock()
	c.subs = append(c.subs, s)
	c.mu.Unlock()
	c.bus.subscribe(s)
	return s
}

// Unsubscribe removes s and closes its channel.
func (c *Connection) Unsubscribe(s *Subscription) {
	c.bus.unsubscribe(s)
	c.mu.Lock()
	for i, x := range c.subs {
		if x == s {
			c.subs = append(c.subs[:i], c.subs[i+1:]...)
			c.mu.Unlock()
			close(s.ch)
			return
		}
	}
	c.mu.Unlock()
}

func (c *Connection) Disconnect() {
	c.mu.Lock()
	subs := c.subs
	c.subs = nil
	c.mu.Unlock()
	for _, s := range subs {
		c.bus.unsubscribe(s)
		close(s.ch)
	}
}
