package domain

import (
	"encoding/json"
	"testing"
)

func TestNewDefaults(t *testing.T) {
	m := New("msg-uuid", "prov-uuid")
	if m.UUID() != "msg-uuid" {
		t.Fatalf("uuid = %q", m.UUID())
	}
	if m.ProviderUUID() != "prov-uuid" {
		t.Fatalf("provider uuid = %q", m.ProviderUUID())
	}
	if m.SIPProfile != DefaultSIPProfile {
		t.Fatalf("sip profile = %q, want %q", m.SIPProfile, DefaultSIPProfile)
	}
	if m.Valid() {
		t.Fatalf("message without numbers must not be valid")
	}
}

func TestValidRequiresBothNumbers(t *testing.T) {
	m := New("u", "p")
	m.ToNumber = "14155552671"
	if m.Valid() {
		t.Fatalf("missing from_number must not be valid")
	}
	m.FromNumber = "12025550123"
	if !m.Valid() {
		t.Fatalf("both numbers set, expected valid")
	}
}

func TestSetFieldAttributePriority(t *testing.T) {
	m := New("u", "p")
	m.SetField("to_number", "14155552671")
	if m.ToNumber != "14155552671" {
		t.Fatalf("attribute not assigned, to_number = %q", m.ToNumber)
	}
	if _, ok := m.Fields()["to_number"]; ok {
		t.Fatalf("attribute name leaked into field bag")
	}
	if m.GetField("to_number") != "14155552671" {
		t.Fatalf("GetField should read attribute")
	}
}

func TestSetFieldBag(t *testing.T) {
	m := New("u", "p")
	m.SetField("carrier_segment_count", "3")
	if !m.HasField("carrier_segment_count") {
		t.Fatalf("expected bag field present")
	}
	if got := m.GetField("carrier_segment_count"); got != "3" {
		t.Fatalf("bag field = %q", got)
	}
	if m.HasField("nope") {
		t.Fatalf("unknown field reported present")
	}
	if m.GetField("nope") != "" {
		t.Fatalf("unknown field should be empty")
	}
}

func TestHasFieldAttributes(t *testing.T) {
	m := New("u", "p")
	// sip_profile has a default, so the attribute always resolves
	if !m.HasField("sip_profile") {
		t.Fatalf("sip_profile attribute should resolve")
	}
	if m.GetField("sip_profile") != DefaultSIPProfile {
		t.Fatalf("sip_profile = %q", m.GetField("sip_profile"))
	}
}

func TestMarshalIncludesIdentity(t *testing.T) {
	m := New("msg-1", "prov-1")
	m.ToNumber = "14155552671"
	m.FromNumber = "12025550123"
	m.SMS = "hello"
	m.Type = "sms"
	m.SetField("segment", "1")

	b, err := json.Marshal(m)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var got map[string]any
	if err := json.Unmarshal(b, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got["uuid"] != "msg-1" || got["providerUuid"] != "prov-1" {
		t.Fatalf("identity missing from serialized form: %s", b)
	}
	fields, ok := got["fields"].(map[string]any)
	if !ok || fields["segment"] != "1" {
		t.Fatalf("field bag missing from serialized form: %s", b)
	}
}
