package mqtt

import (
	"encoding/json"
	"sync"

	paho "github.com/eclipse/paho.mqtt.golang"

	"github.com/flexfleet/flexdispatch/infra/logger"
	"github.com/flexfleet/flexdispatch/ingest"
)

// ShortfallFeed receives rollcage shortfall notifications from a broker
// topic and hands the decoded records to a channel consumer.
type ShortfallFeed struct {
	cli   Client
	topic string
	qos   byte
	log   logger.Logger

	out    chan ingest.ShortfallRecord
	once   sync.Once
	closed chan struct{}
}

// NewShortfallFeed subscribes the connected client to the shortfall topic.
func NewShortfallFeed(cli Client, cfg Config) (*ShortfallFeed, error) {
	f := &ShortfallFeed{
		cli:    cli,
		topic:  cfg.ShortfallTopic,
		qos:    cfg.QoS,
		log:    logger.New("shortfall_feed"),
		out:    make(chan ingest.ShortfallRecord, 64),
		closed: make(chan struct{}),
	}
	if token := cli.Subscribe(f.topic, f.qos, f.onMessage); token.Wait() && token.Error() != nil {
		return nil, token.Error()
	}
	return f, nil
}

// Records returns the channel of decoded shortfall records.
func (f *ShortfallFeed) Records() <-chan ingest.ShortfallRecord { return f.out }

func (f *ShortfallFeed) onMessage(_ paho.Client, msg paho.Message) {
	var rec ingest.ShortfallRecord
	if err := json.Unmarshal(msg.Payload(), &rec); err != nil {
		f.log.Errorf("decode shortfall on %s: %v", msg.Topic(), err)
		return
	}
	select {
	case <-f.closed:
		return
	default:
	}
	select {
	case f.out <- rec:
	default:
		f.log.Warnf("shortfall feed full, dropping record from %s", rec.Origin)
	}
}

// Close stops delivery. The record channel is left open so in-flight
// readers never see a send on a closed channel; the underlying client
// connection stays open for the caller to disconnect in its own teardown.
func (f *ShortfallFeed) Close() {
	f.once.Do(func() { close(f.closed) })
}
