/*
kafka.go - Kafka topic producer

PURPOSE:
  Consumes JSON transaction messages from a Kafka topic and feeds them into
  the same ingestion channel as every other producer. The engine neither
  knows nor cares that a record arrived over Kafka rather than from a file:
  the ordering channel is the only contract.

MESSAGE FORMAT:
  {"type": "deposit", "client": 1, "tx": 1, "amount": "1.5"}

  The amount is a decimal (string or number per shopspring JSON rules) and
  must be absent on dispute/resolve/chargeback messages.
*/
package ingest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"

	"github.com/PawelBis/transaction-system/ledger"
)

// KafkaConfig selects the topic to consume.
type KafkaConfig struct {
	Brokers []string
	Topic   string
	GroupID string
}

type KafkaSource struct {
	reader *kafka.Reader
}

func NewKafkaSource(cfg KafkaConfig) *KafkaSource {
	return &KafkaSource{
		reader: kafka.NewReader(kafka.ReaderConfig{
			Brokers: cfg.Brokers,
			Topic:   cfg.Topic,
			GroupID: cfg.GroupID,
		}),
	}
}

// wireTransaction is the JSON shape on the topic.
type wireTransaction struct {
	Type   string           `json:"type"`
	Client uint16           `json:"client"`
	Tx     uint32           `json:"tx"`
	Amount *decimal.Decimal `json:"amount,omitempty"`
}

// Stream consumes messages until the context is cancelled or the source is
// closed. Undecodable or invalid messages are reported to onErr (may be
// nil) and skipped, in keeping with the per-record rejection policy.
func (s *KafkaSource) Stream(ctx context.Context, sink Sink, onErr func(error)) error {
	for {
		msg, err := s.reader.ReadMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}

		rec, err := decodeMessage(msg.Value)
		if err != nil {
			if onErr != nil {
				onErr(fmt.Errorf("offset %d: %w", msg.Offset, err))
			}
			continue
		}

		if err := sink.Send(rec); err != nil {
			return err
		}
	}
}

func (s *KafkaSource) Close() error {
	return s.reader.Close()
}

func decodeMessage(data []byte) (ledger.Record, error) {
	var wire wireTransaction
	if err := json.Unmarshal(data, &wire); err != nil {
		return ledger.Record{}, fmt.Errorf("%w: %v", ledger.ErrMalformedRecord, err)
	}

	kind, err := ledger.ParseKind(wire.Type)
	if err != nil {
		return ledger.Record{}, err
	}

	rec := ledger.Record{
		Kind:   kind,
		Client: ledger.ClientID(wire.Client),
		Tx:     ledger.TxID(wire.Tx),
	}
	if wire.Amount != nil {
		amount, err := ledger.NewAmount(*wire.Amount)
		if err != nil {
			return ledger.Record{}, err
		}
		rec.Amount = &amount
	}

	if err := rec.Validate(); err != nil {
		return ledger.Record{}, err
	}
	return rec, nil
}
