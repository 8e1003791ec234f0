// Package pipeline composes the inbound message flow: raw payload
// acquisition, adapter admission and parsing, priority-ordered
// modification, and listener fan-out. Stage implementations are plugged
// in through explicit registries built at startup.
package pipeline

import "encoding/json"

// Payload wraps the raw inbound bytes for one request. It is built once
// by the consumer chain and shared read-only by every candidate adapter.
type Payload struct {
	raw []byte

	decoded bool
	value   any
	jsonErr error
}

func NewPayload(raw []byte) *Payload {
	return &Payload{raw: raw}
}

func (p *Payload) Raw() []byte { return p.raw }

func (p *Payload) IsEmpty() bool { return len(p.raw) == 0 }

// JSON decodes the raw bytes once and caches the result. An empty
// payload decodes to nil without error.
func (p *Payload) JSON() (any, error) {
	if !p.decoded {
		p.decoded = true
		if len(p.raw) > 0 {
			p.jsonErr = json.Unmarshal(p.raw, &p.value)
		}
	}
	return p.value, p.jsonErr
}
