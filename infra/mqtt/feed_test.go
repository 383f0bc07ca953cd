package mqtt

import (
	"testing"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	"github.com/flexfleet/flexdispatch/ingest"
)

// mockClient implements Client for tests
type mockClient struct {
	subscribed []struct {
		topic string
		qos   byte
	}
	handler paho.MessageHandler
	subErr  error
}

func (m *mockClient) IsConnected() bool   { return true }
func (m *mockClient) Connect() paho.Token { return &dummyToken{} }
func (m *mockClient) Disconnect(uint)     {}
func (m *mockClient) Subscribe(topic string, qos byte, cb paho.MessageHandler) paho.Token {
	m.subscribed = append(m.subscribed, struct {
		topic string
		qos   byte
	}{topic, qos})
	m.handler = cb
	return &dummyToken{err: m.subErr}
}

type dummyToken struct{ err error }

func (d dummyToken) Wait() bool                     { return true }
func (d dummyToken) WaitTimeout(time.Duration) bool { return true }
func (d dummyToken) Done() <-chan struct{}          { ch := make(chan struct{}); close(ch); return ch }
func (d dummyToken) Error() error                   { return d.err }

type mockMessage struct{ p []byte }

func (m mockMessage) Duplicate() bool   { return false }
func (m mockMessage) Qos() byte         { return 0 }
func (m mockMessage) Retained() bool    { return false }
func (m mockMessage) Topic() string     { return "flex/shortfalls" }
func (m mockMessage) MessageID() uint16 { return 0 }
func (m mockMessage) Payload() []byte   { return m.p }
func (m mockMessage) Ack()              {}

func TestShortfallFeedDecodes(t *testing.T) {
	mc := &mockClient{}
	cfg := Config{ShortfallTopic: "flex/shortfalls", QoS: 1}
	feed, err := NewShortfallFeed(mc, cfg)
	if err != nil {
		t.Fatalf("feed: %v", err)
	}
	defer feed.Close()
	if len(mc.subscribed) != 1 || mc.subscribed[0].topic != "flex/shortfalls" || mc.subscribed[0].qos != 1 {
		t.Fatalf("unexpected subscription %+v", mc.subscribed)
	}

	mc.handler(nil, mockMessage{p: []byte(`{"call_time":"08:15","origin":"ALR","destination":"XWW","a":10,"b":5,"c":0,"d":0}`)})

	var rec ingest.ShortfallRecord
	select {
	case rec = <-feed.Records():
	case <-time.After(time.Second):
		t.Fatal("no record delivered")
	}
	if rec.CallTime != "08:15" || rec.Origin != "ALR" || rec.Destination != "XWW" {
		t.Fatalf("unexpected record %+v", rec)
	}
	if rec.A != 10 || rec.B != 5 {
		t.Fatalf("unexpected quantities %+v", rec)
	}
}

func TestShortfallFeedSkipsBadPayload(t *testing.T) {
	mc := &mockClient{}
	feed, err := NewShortfallFeed(mc, Config{ShortfallTopic: "t"})
	if err != nil {
		t.Fatalf("feed: %v", err)
	}
	defer feed.Close()

	mc.handler(nil, mockMessage{p: []byte("not json")})
	select {
	case rec := <-feed.Records():
		t.Fatalf("unexpected record %+v", rec)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestShortfallFeedDropsAfterClose(t *testing.T) {
	mc := &mockClient{}
	feed, err := NewShortfallFeed(mc, Config{ShortfallTopic: "t"})
	if err != nil {
		t.Fatalf("feed: %v", err)
	}
	feed.Close()
	mc.handler(nil, mockMessage{p: []byte(`{"origin":"ALR"}`)})
	select {
	case rec, ok := <-feed.Records():
		if ok {
			t.Fatalf("record delivered after close: %+v", rec)
		}
	case <-time.After(50 * time.Millisecond):
	}
}
