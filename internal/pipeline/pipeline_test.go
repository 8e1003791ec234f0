package pipeline

import (
	"context"
	"errors"
	"testing"

	"opensms/internal/domain"
	"opensms/internal/settings"
	"opensms/internal/store"
)

type fakeConsumer struct {
	name string
	raw  []byte
	err  error
}

func (f fakeConsumer) Name() string { return f.name }
func (f fakeConsumer) Consume(context.Context, settings.Source) ([]byte, error) {
	return f.raw, f.err
}

type fakeAdapter struct {
	name         string
	providerUUID string
	admit        bool
	msg          *domain.Message
	err          error
}

func (f *fakeAdapter) Name() string         { return f.name }
func (f *fakeAdapter) ProviderUUID() string { return f.providerUUID }
func (f *fakeAdapter) Admit(context.Context, settings.Source, string) bool {
	return f.admit
}
func (f *fakeAdapter) Receive(context.Context, settings.Source, *Payload) (*domain.Message, error) {
	return f.msg, f.err
}
func (f *fakeAdapter) AppDefaults(context.Context, BootstrapStore) error { return nil }
func (f *fakeAdapter) AppConfig() []store.DefaultSetting                 { return nil }

type orderedModifier struct {
	name     string
	priority int
	log      *[]string
	err      error
}

func (m orderedModifier) Name() string  { return m.name }
func (m orderedModifier) Priority() int { return m.priority }
func (m orderedModifier) Apply(_ context.Context, _ settings.Source, msg *domain.Message) error {
	*m.log = append(*m.log, m.name)
	return m.err
}

type recordListener struct {
	name string
	log  *[]string
	err  error
}

func (l recordListener) Name() string { return l.name }
func (l recordListener) OnMessage(_ context.Context, _ settings.Source, msg *domain.Message) error {
	*l.log = append(*l.log, l.name+":"+msg.UUID())
	return l.err
}

func validMessage(uuid, provider string) *domain.Message {
	m := domain.New(uuid, provider)
	m.ToNumber = "14155552671"
	m.FromNumber = "12025550123"
	return m
}

func TestConsumerChainFirstNonEmptyWins(t *testing.T) {
	chain := NewConsumerChain(
		fakeConsumer{name: "a"},
		fakeConsumer{name: "b"},
		fakeConsumer{name: "c", raw: []byte("X")},
		fakeConsumer{name: "d", raw: []byte("Y")},
	)
	p := chain.Payload(context.Background(), settings.Static{})
	if string(p.Raw()) != "X" {
		t.Fatalf("payload = %q, want X", p.Raw())
	}
	if p.IsEmpty() {
		t.Fatalf("payload should not be empty")
	}
}

func TestConsumerChainAllEmpty(t *testing.T) {
	chain := NewConsumerChain(fakeConsumer{name: "a"}, fakeConsumer{name: "b"})
	p := chain.Payload(context.Background(), settings.Static{})
	if p == nil {
		t.Fatalf("chain must always yield a payload")
	}
	if !p.IsEmpty() {
		t.Fatalf("expected empty payload")
	}
}

func TestConsumerChainErrorDoesNotMaskLater(t *testing.T) {
	chain := NewConsumerChain(
		fakeConsumer{name: "broken", err: errors.New("boom")},
		fakeConsumer{name: "ok", raw: []byte("X")},
	)
	p := chain.Payload(context.Background(), settings.Static{})
	if string(p.Raw()) != "X" {
		t.Fatalf("payload = %q, want X", p.Raw())
	}
}

func TestPayloadJSONLazyDecode(t *testing.T) {
	p := NewPayload([]byte(`[{"message":{"from":"+12025550123"}}]`))
	v, err := p.JSON()
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	arr, ok := v.([]any)
	if !ok || len(arr) != 1 {
		t.Fatalf("unexpected decoded form: %#v", v)
	}

	bad := NewPayload([]byte("{not json"))
	if _, err := bad.JSON(); err == nil {
		t.Fatalf("expected decode error")
	}
	// Cached on repeat
	if _, err := bad.JSON(); err == nil {
		t.Fatalf("expected cached decode error")
	}
}

func TestSelectorMultipleAdaptersEachProduceMessages(t *testing.T) {
	a := &fakeAdapter{name: "a", providerUUID: "prov-a", admit: true, msg: validMessage("m1", "prov-a")}
	b := &fakeAdapter{name: "b", providerUUID: "prov-b", admit: true, msg: validMessage("m2", "prov-b")}
	denied := &fakeAdapter{name: "denied", admit: false, msg: validMessage("m3", "prov-c")}

	sel := &Selector{Adapters: []Adapter{a, b, denied}}
	msgs := sel.Messages(context.Background(), settings.Static{}, "3.82.123.96", NewPayload([]byte("{}")))
	if len(msgs) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(msgs))
	}
	if msgs[0].ProviderUUID() == msgs[1].ProviderUUID() {
		t.Fatalf("messages should carry their own provider uuids")
	}
	if msgs[0].UUID() != "m1" || msgs[1].UUID() != "m2" {
		t.Fatalf("registration order not preserved: %s, %s", msgs[0].UUID(), msgs[1].UUID())
	}
}

func TestSelectorDiscardsInvalidMessage(t *testing.T) {
	missingFrom := domain.New("m1", "prov-a")
	missingFrom.ToNumber = "14155552671"

	sel := &Selector{Adapters: []Adapter{
		&fakeAdapter{name: "a", admit: true, msg: missingFrom},
	}}
	msgs := sel.Messages(context.Background(), settings.Static{}, "1.2.3.4", NewPayload(nil))
	if len(msgs) != 0 {
		t.Fatalf("message missing from_number must be discarded, got %d", len(msgs))
	}
}

func TestSelectorAdapterErrorScopedToAdapter(t *testing.T) {
	sel := &Selector{Adapters: []Adapter{
		&fakeAdapter{name: "broken", admit: true, err: errors.New("invalid json")},
		&fakeAdapter{name: "ok", admit: true, msg: validMessage("m1", "prov-b")},
	}}
	msgs := sel.Messages(context.Background(), settings.Static{}, "1.2.3.4", NewPayload([]byte("x")))
	if len(msgs) != 1 || msgs[0].UUID() != "m1" {
		t.Fatalf("sibling adapter should still run, got %d messages", len(msgs))
	}
}

func TestSelectorNilMessageSkipped(t *testing.T) {
	sel := &Selector{Adapters: []Adapter{
		&fakeAdapter{name: "verification", admit: true}, // nil msg, nil err
	}}
	msgs := sel.Messages(context.Background(), settings.Static{}, "1.2.3.4", NewPayload(nil))
	if len(msgs) != 0 {
		t.Fatalf("non-message event must yield no messages")
	}
}

func TestModifierChainPriorityOrder(t *testing.T) {
	var ran []string
	chain := NewModifierChain(
		orderedModifier{name: "p20", priority: 20, log: &ran},
		orderedModifier{name: "p0", priority: 0, log: &ran},
		orderedModifier{name: "p10", priority: 10, log: &ran},
	)
	if err := chain.Apply(context.Background(), settings.Static{}, validMessage("m", "p")); err != nil {
		t.Fatalf("apply: %v", err)
	}
	want := []string{"p0", "p10", "p20"}
	for i, name := range want {
		if ran[i] != name {
			t.Fatalf("order = %v, want %v", ran, want)
		}
	}
}

func TestModifierChainStableSort(t *testing.T) {
	var ran []string
	chain := NewModifierChain(
		orderedModifier{name: "first", priority: 5, log: &ran},
		orderedModifier{name: "second", priority: 5, log: &ran},
	)
	_ = chain.Apply(context.Background(), settings.Static{}, validMessage("m", "p"))
	if ran[0] != "first" || ran[1] != "second" {
		t.Fatalf("equal priorities must keep registration order, got %v", ran)
	}
}

func TestModifierChainAbortsOnError(t *testing.T) {
	var ran []string
	chain := NewModifierChain(
		orderedModifier{name: "a", priority: 0, log: &ran},
		orderedModifier{name: "b", priority: 5, log: &ran, err: errors.New("lookup failed")},
		orderedModifier{name: "c", priority: 10, log: &ran},
	)
	err := chain.Apply(context.Background(), settings.Static{}, validMessage("m", "p"))
	if err == nil {
		t.Fatalf("expected error")
	}
	if len(ran) != 2 {
		t.Fatalf("modifiers after the failure must not run, ran %v", ran)
	}
}

func TestListenerFanoutOrderAndIsolation(t *testing.T) {
	var log []string
	fan := NewListenerFanout(
		recordListener{name: "storage", log: &log},
		recordListener{name: "switch", log: &log},
	)
	msg := validMessage("m1", "p")
	if err := fan.OnMessage(context.Background(), settings.Static{}, msg); err != nil {
		t.Fatalf("fanout: %v", err)
	}
	if len(log) != 2 || log[0] != "storage:m1" || log[1] != "switch:m1" {
		t.Fatalf("listeners not invoked once each in order: %v", log)
	}
}

func TestListenerFanoutCollectsErrors(t *testing.T) {
	var log []string
	errStorage := errors.New("write failed")
	fan := NewListenerFanout(
		recordListener{name: "storage", log: &log, err: errStorage},
		recordListener{name: "switch", log: &log},
	)
	err := fan.OnMessage(context.Background(), settings.Static{}, validMessage("m1", "p"))
	if !errors.Is(err, errStorage) {
		t.Fatalf("expected storage error surfaced, got %v", err)
	}
	if len(log) != 2 {
		t.Fatalf("a failing listener must not skip the rest, ran %v", log)
	}
}

func TestPipelineRunZeroMessagesIsSuccess(t *testing.T) {
	p := &Pipeline{
		Consumers: NewConsumerChain(fakeConsumer{name: "empty"}),
		Selector:  &Selector{},
		Modifiers: NewModifierChain(),
		Listeners: NewListenerFanout(),
	}
	if err := p.Run(context.Background(), settings.Static{}, "1.2.3.4"); err != nil {
		t.Fatalf("empty pipeline run should succeed: %v", err)
	}
}

func TestPipelineRunModifierFailureSkipsListeners(t *testing.T) {
	var modLog, listenLog []string
	p := &Pipeline{
		Consumers: NewConsumerChain(fakeConsumer{name: "body", raw: []byte("{}")}),
		Selector: &Selector{Adapters: []Adapter{
			&fakeAdapter{name: "a", admit: true, msg: validMessage("m1", "prov-a")},
		}},
		Modifiers: NewModifierChain(
			orderedModifier{name: "boom", priority: 0, log: &modLog, err: errors.New("bad state")},
		),
		Listeners: NewListenerFanout(recordListener{name: "storage", log: &listenLog}),
	}
	if err := p.Run(context.Background(), settings.Static{}, "1.2.3.4"); err == nil {
		t.Fatalf("expected error surfaced")
	}
	if len(listenLog) != 0 {
		t.Fatalf("listeners must not see a message whose modifiers aborted")
	}
}
