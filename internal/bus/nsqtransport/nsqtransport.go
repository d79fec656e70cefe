// Package nsqtransport forwards bus events onto NSQ topics so out-of-process
// subscribers (future indexers, the downstream embedding pipeline that is
// explicitly out of scope here) can tail the event stream without coupling
// to the in-process bus. Grounded on the teacher's
// features/source.EventPublisher / features/job.EventPublisher interface
// (Publish(topic string, body []byte) error), generalized to a full
// *nsq.Producer instead of one ad hoc topic.
package nsqtransport

import (
	"fmt"

	"github.com/nsqio/go-nsq"
)

// Producer is the subset of *nsq.Producer this transport calls, so tests
// can substitute a fake without spinning up nsqd.
type Producer interface {
	Publish(topic string, body []byte) error
}

// Transport implements bus.Transport by publishing each event under a
// topic derived from its type name, prefixed so all pipeline events share
// one namespace on the NSQ cluster.
type Transport struct {
	producer Producer
	prefix   string
}

func New(producer Producer, topicPrefix string) *Transport {
	if topicPrefix == "" {
		topicPrefix = "pipeline.event"
	}
	return &Transport{producer: producer, prefix: topicPrefix}
}

func (t *Transport) Forward(eventTypeName string, payload []byte) error {
	topic := fmt.Sprintf("%s.%s", t.prefix, eventTypeName)
	if err := t.producer.Publish(topic, payload); err != nil {
		return fmt.Errorf("nsqtransport: publish %s: %w", topic, err)
	}
	return nil
}

// nsqProducerAdapter narrows *nsq.Producer to the Producer interface; kept
// as a named type so callers can wrap nsq.NewProducer output directly.
type nsqProducerAdapter struct {
	*nsq.Producer
}

// Adapt wraps a concrete *nsq.Producer as a Producer.
func Adapt(p *nsq.Producer) Producer {
	return nsqProducerAdapter{p}
}
