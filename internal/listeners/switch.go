package listeners

import (
	"context"
	"fmt"
	"sync"

	"opensms/internal/domain"
	"opensms/internal/observability"
	"opensms/internal/settings"
)

// EventSender is the signaling channel slice the switch writer needs.
type EventSender interface {
	Connected() bool
	SendEvent(ctx context.Context, name string, headers map[string]string, body string) error
}

// Switch delivers the message into the telephony layer as a custom
// SMS::SEND_MESSAGE event. The connection is reused across messages and
// re-dialed when it drops; a failure to connect or send is fatal for
// this listener invocation.
type Switch struct {
	Dial func(ctx context.Context) (EventSender, error)

	mu   sync.Mutex
	conn EventSender
}

func (s *Switch) Name() string { return "switch_writer" }

func (s *Switch) OnMessage(ctx context.Context, _ settings.Source, msg *domain.Message) error {
	conn, err := s.connection(ctx)
	if err != nil {
		observability.SwitchEvents.WithLabelValues("connect_error").Inc()
		return fmt.Errorf("switch connect: %w", err)
	}

	profile := msg.SIPProfile
	if profile == "" {
		profile = domain.DefaultSIPProfile
	}

	err = conn.SendEvent(ctx, "CUSTOM", map[string]string{
		"Event-Subclass": "SMS::SEND_MESSAGE",
		"proto":          "sip",
		"dest_proto":     "sip",
		"from":           msg.FromNumber,
		"from_full":      "sip:" + msg.FromNumber,
		"to":             msg.ToNumber,
		"subject":        "sip:" + msg.ToNumber,
		"type":           "text/plain",
		"replying":       "true",
		"sip_profile":    profile,
	}, msg.SMS)
	if err != nil {
		observability.SwitchEvents.WithLabelValues("send_error").Inc()
		return fmt.Errorf("switch send: %w", err)
	}
	observability.SwitchEvents.WithLabelValues("ok").Inc()
	return nil
}

func (s *Switch) connection(ctx context.Context) (EventSender, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn != nil && s.conn.Connected() {
		return s.conn, nil
	}
	conn, err := s.Dial(ctx)
	if err != nil {
		return nil, err
	}
	s.conn = conn
	return conn, nil
}
