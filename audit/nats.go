package audit

import (
	"encoding/json"
	"time"

	"github.com/nats-io/nats.go"
	logger "github.com/sirupsen/logrus"
)

const subjectPrefix = "bridge.audit."

// NatsPublisher publishes audit records to a NATS subject per event type.
type NatsPublisher struct {
	conn *nats.Conn
}

func NewNatsPublisher(url string) (*NatsPublisher, error) {
	conn, err := nats.Connect(url,
		nats.Timeout(10*time.Second),
		nats.ReconnectWait(5*time.Second),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			logger.WithError(err).Warn("nats disconnected")
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.Info("nats reconnected")
		}),
	)
	if err != nil {
		return nil, err
	}
	return &NatsPublisher{conn: conn}, nil
}

func (p *NatsPublisher) Publish(r Record) {
	if r.Timestamp == 0 {
		r.Timestamp = time.Now().Unix()
	}

	data, err := json.Marshal(r)
	if err != nil {
		logger.WithError(err).Warn("failed to marshal audit record")
		return
	}

	if err := p.conn.Publish(subjectPrefix+string(r.Event), data); err != nil {
		logger.WithFields(logger.Fields{
			"event":     r.Event,
			"depositId": r.DepositId,
		}).WithError(err).Warn("failed to publish audit record")
	}
}

func (p *NatsPublisher) Close() {
	p.conn.Close()
}
