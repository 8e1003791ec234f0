// Package domain holds the canonical in-flight representation of one
// inbound SMS/MMS event. A Message is created by exactly one adapter,
// mutated in place by the modifier chain, handed to every listener, and
// discarded when the request completes.
package domain

import "encoding/json"

const DefaultSIPProfile = "internal"

// MediaPart is one fetched MMS attachment.
type MediaPart struct {
	URL         string `json:"url"`
	ContentType string `json:"contentType,omitempty"`
	Data        []byte `json:"data,omitempty"`
}

// Extension is a routable endpoint resolved for a message recipient.
type Extension struct {
	ExtensionUUID string `json:"extensionUuid"`
	Extension     string `json:"extension"`
	DomainUUID    string `json:"domainUuid"`
	DomainName    string `json:"domainName"`
	UserUUID      string `json:"userUuid,omitempty"`
}

// Message is the unit of work flowing through the pipeline. The message
// and provider identifiers are assigned at construction and never change;
// everything else is open for mutation by modifiers.
type Message struct {
	uuid         string
	providerUUID string

	ToNumber   string `json:"toNumber"`
	FromNumber string `json:"fromNumber"`
	// Time is the carrier-supplied timestamp, kept opaque.
	Time string `json:"time,omitempty"`
	// Type is "sms" or "mms", empty until classified.
	Type string `json:"type,omitempty"`

	SMS string      `json:"sms,omitempty"`
	MMS []MediaPart `json:"mms,omitempty"`

	UserUUIDs             []string    `json:"userUuids,omitempty"`
	Extensions            []Extension `json:"extensions,omitempty"`
	DomainName            string      `json:"domainName,omitempty"`
	DomainUUID            string      `json:"domainUuid,omitempty"`
	DestinationUUID       string      `json:"destinationUuid,omitempty"`
	UserUUID              string      `json:"userUuid,omitempty"`
	GroupUUID             string      `json:"groupUuid,omitempty"`
	ContactUUID           string      `json:"contactUuid,omitempty"`
	SIPProfile            string      `json:"sipProfile"`
	BroadcastDestinations []string    `json:"broadcastDestinations,omitempty"`
	OfflineDestinations   []string    `json:"offlineDestinations,omitempty"`

	// ReceivedData is the raw payload as delivered by the carrier,
	// kept for audit and debugging.
	ReceivedData []byte `json:"-"`

	fields map[string]string
}

// New constructs a Message. The message uuid and the producing adapter's
// provider uuid are fixed for the lifetime of the instance.
func New(uuid, providerUUID string) *Message {
	return &Message{
		uuid:         uuid,
		providerUUID: providerUUID,
		SIPProfile:   DefaultSIPProfile,
		fields:       make(map[string]string),
	}
}

func (m *Message) UUID() string         { return m.uuid }
func (m *Message) ProviderUUID() string { return m.providerUUID }

// Valid reports whether the message may enter the modifier and listener
// stages. Adapters must produce both envelope numbers.
func (m *Message) Valid() bool {
	return m.ToNumber != "" && m.FromNumber != ""
}

// SetField writes a named value. Names matching a first-class attribute
// assign that attribute directly; only unknown names land in the open
// field bag, so attributes are never shadowed by bag entries.
func (m *Message) SetField(name, value string) {
	if m.setAttr(name, value) {
		return
	}
	if m.fields == nil {
		m.fields = make(map[string]string)
	}
	m.fields[name] = value
}

// GetField reads a named value, with first-class attributes taking
// priority over the bag. Missing names yield the empty string.
func (m *Message) GetField(name string) string {
	if v, ok := m.getAttr(name); ok {
		return v
	}
	return m.fields[name]
}

// HasField reports whether the name resolves to an attribute or bag entry.
func (m *Message) HasField(name string) bool {
	if _, ok := m.getAttr(name); ok {
		return true
	}
	_, ok := m.fields[name]
	return ok
}

// Fields returns a copy of the open field bag.
func (m *Message) Fields() map[string]string {
	out := make(map[string]string, len(m.fields))
	for k, v := range m.fields {
		out[k] = v
	}
	return out
}

func (m *Message) setAttr(name, value string) bool {
	switch name {
	case "to_number":
		m.ToNumber = value
	case "from_number":
		m.FromNumber = value
	case "time":
		m.Time = value
	case "type":
		m.Type = value
	case "sms":
		m.SMS = value
	case "domain_name":
		m.DomainName = value
	case "domain_uuid":
		m.DomainUUID = value
	case "destination_uuid":
		m.DestinationUUID = value
	case "user_uuid":
		m.UserUUID = value
	case "group_uuid":
		m.GroupUUID = value
	case "contact_uuid":
		m.ContactUUID = value
	case "sip_profile":
		m.SIPProfile = value
	default:
		return false
	}
	return true
}

func (m *Message) getAttr(name string) (string, bool) {
	switch name {
	case "to_number":
		return m.ToNumber, true
	case "from_number":
		return m.FromNumber, true
	case "time":
		return m.Time, true
	case "type":
		return m.Type, true
	case "sms":
		return m.SMS, true
	case "domain_name":
		return m.DomainName, true
	case "domain_uuid":
		return m.DomainUUID, true
	case "destination_uuid":
		return m.DestinationUUID, true
	case "user_uuid":
		return m.UserUUID, true
	case "group_uuid":
		return m.GroupUUID, true
	case "contact_uuid":
		return m.ContactUUID, true
	case "sip_profile":
		return m.SIPProfile, true
	}
	return "", false
}

// MarshalJSON includes the immutable identifiers and the field bag so a
// serialized message is a faithful audit record.
func (m *Message) MarshalJSON() ([]byte, error) {
	type alias Message
	return json.Marshal(struct {
		UUID         string            `json:"uuid"`
		ProviderUUID string            `json:"providerUuid"`
		Fields       map[string]string `json:"fields,omitempty"`
		*alias
	}{
		UUID:         m.uuid,
		ProviderUUID: m.providerUUID,
		Fields:       m.fields,
		alias:        (*alias)(m),
	})
}
