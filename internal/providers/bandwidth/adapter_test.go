package bandwidth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"opensms/internal/pipeline"
	"opensms/internal/settings"
	"opensms/internal/store"
)

type fakeACL struct {
	blocks []store.ACLBlock
	err    error

	created   bool
	blocksSet []string
	defaults  []store.DefaultSetting
	exists    bool
}

func (f *fakeACL) ACLExists(context.Context, string) (bool, error) { return f.exists, f.err }
func (f *fakeACL) CreateACL(_ context.Context, _, _, _ string) error {
	f.created = true
	return nil
}
func (f *fakeACL) ListACLBlocks(context.Context, string) ([]store.ACLBlock, error) {
	return f.blocks, f.err
}
func (f *fakeACL) AddACLBlocks(_ context.Context, _ string, cidrs []string, _ string) error {
	f.blocksSet = cidrs
	return nil
}
func (f *fakeACL) UpsertDefaultSettings(_ context.Context, d []store.DefaultSetting) error {
	f.defaults = d
	return nil
}

func allowListACL() *fakeACL {
	return &fakeACL{blocks: []store.ACLBlock{
		{NodeUUID: "n1", CIDR: "3.82.123.96/32"},
		{NodeUUID: "n2", CIDR: "18.233.250.246/32"},
	}}
}

func TestAdmit(t *testing.T) {
	a := New(allowListACL(), nil)
	if !a.Admit(context.Background(), settings.Static{}, "3.82.123.96") {
		t.Fatalf("allow-listed ip should be admitted")
	}
	if a.Admit(context.Background(), settings.Static{}, "3.82.123.97") {
		t.Fatalf("unlisted ip must be denied")
	}
}

func TestAdmitFailsClosedOnStoreError(t *testing.T) {
	a := New(&fakeACL{err: errors.New("db down")}, nil)
	if a.Admit(context.Background(), settings.Static{}, "3.82.123.96") {
		t.Fatalf("store failure must deny admission")
	}
}

func TestReceiveEmptyPayload(t *testing.T) {
	a := New(allowListACL(), nil)
	msg, err := a.Receive(context.Background(), settings.Static{}, pipeline.NewPayload(nil))
	if err != nil || msg != nil {
		t.Fatalf("empty payload: msg=%v err=%v", msg, err)
	}
}

func TestReceiveMalformedJSONIsHardFailure(t *testing.T) {
	a := New(allowListACL(), nil)
	_, err := a.Receive(context.Background(), settings.Static{}, pipeline.NewPayload([]byte("{not json")))
	if err == nil {
		t.Fatalf("malformed payload must error")
	}
}

func TestReceiveNonMessageEvent(t *testing.T) {
	a := New(allowListACL(), nil)
	msg, err := a.Receive(context.Background(), settings.Static{}, pipeline.NewPayload([]byte("[]")))
	if err != nil || msg != nil {
		t.Fatalf("event array without messages: msg=%v err=%v", msg, err)
	}
}

func TestReceiveSMS(t *testing.T) {
	payload := []byte(`[{"type":"message-received","message":{"to":["+14155552671"],"from":"+12025550123","text":"hello","time":"2024-03-01T12:00:00Z"}}]`)
	a := New(allowListACL(), nil)
	msg, err := a.Receive(context.Background(), settings.Static{}, pipeline.NewPayload(payload))
	if err != nil {
		t.Fatalf("receive: %v", err)
	}
	if msg == nil {
		t.Fatalf("expected a message")
	}
	if msg.ToNumber != "+14155552671" || msg.FromNumber != "+12025550123" {
		t.Fatalf("envelope = %q/%q", msg.ToNumber, msg.FromNumber)
	}
	if msg.SMS != "hello" || msg.Type != "sms" {
		t.Fatalf("sms=%q type=%q", msg.SMS, msg.Type)
	}
	if msg.Time != "2024-03-01T12:00:00Z" {
		t.Fatalf("time = %q", msg.Time)
	}
	if msg.ProviderUUID() != ProviderUUID {
		t.Fatalf("provider uuid = %q", msg.ProviderUUID())
	}
	if msg.UUID() == "" {
		t.Fatalf("message uuid must be assigned")
	}
	if string(msg.ReceivedData) != string(payload) {
		t.Fatalf("raw payload not retained")
	}
}

func TestReceiveMMSFetchesMediaAndOverridesType(t *testing.T) {
	var gotAuth bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u, p, ok := r.BasicAuth()
		gotAuth = ok && u == "cbuser" && p == "cbpass"
		w.Header().Set("Content-Type", "image/jpeg")
		_, _ = w.Write([]byte("jpegbytes"))
	}))
	defer srv.Close()

	payload := []byte(`[{"message":{"to":["+14155552671"],"from":"+12025550123","text":"caption","media":["` + srv.URL + `/img.jpg"]}}]`)
	st := settings.Static{
		"bandwidth/callback_user_id":  "cbuser",
		"bandwidth/callback_password": "cbpass",
	}

	a := New(allowListACL(), NewMediaClient(5*time.Second, 100, 10))
	msg, err := a.Receive(context.Background(), st, pipeline.NewPayload(payload))
	if err != nil {
		t.Fatalf("receive: %v", err)
	}
	if msg.Type != "mms" {
		t.Fatalf("media must classify as mms, got %q", msg.Type)
	}
	if len(msg.MMS) != 1 || string(msg.MMS[0].Data) != "jpegbytes" {
		t.Fatalf("media parts = %#v", msg.MMS)
	}
	if msg.MMS[0].ContentType != "image/jpeg" {
		t.Fatalf("content type = %q", msg.MMS[0].ContentType)
	}
	if !gotAuth {
		t.Fatalf("media fetch must carry callback credentials")
	}
}

func TestReceiveMediaFailureSkipsPart(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/bad" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, _ = w.Write([]byte("ok-bytes"))
	}))
	defer srv.Close()

	payload := []byte(`[{"message":{"to":["+14155552671"],"from":"+12025550123","media":["` + srv.URL + `/bad","` + srv.URL + `/good"]}}]`)
	a := New(allowListACL(), NewMediaClient(5*time.Second, 100, 10))
	msg, err := a.Receive(context.Background(), settings.Static{}, pipeline.NewPayload(payload))
	if err != nil {
		t.Fatalf("one failed media url must not abort the message: %v", err)
	}
	if len(msg.MMS) != 1 || string(msg.MMS[0].Data) != "ok-bytes" {
		t.Fatalf("expected the surviving part, got %#v", msg.MMS)
	}
	if msg.Type != "mms" {
		t.Fatalf("type = %q", msg.Type)
	}
}

func TestAppDefaultsCreatesACLOnce(t *testing.T) {
	db := &fakeACL{}
	a := New(db, nil)
	if err := a.AppDefaults(context.Background(), db); err != nil {
		t.Fatalf("app defaults: %v", err)
	}
	if !db.created {
		t.Fatalf("missing acl should be created")
	}
	if len(db.blocksSet) != len(CallbackCIDRs) {
		t.Fatalf("allow blocks = %v", db.blocksSet)
	}
	if len(db.defaults) == 0 {
		t.Fatalf("default settings should be declared")
	}

	db2 := &fakeACL{exists: true}
	if err := New(db2, nil).AppDefaults(context.Background(), db2); err != nil {
		t.Fatalf("app defaults rerun: %v", err)
	}
	if db2.created {
		t.Fatalf("existing acl must not be recreated")
	}
}
