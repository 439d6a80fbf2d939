package sqlite

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/klauspost/compress/zstd"

	"warenbuchung/internal/core/id"
)

// JournalAction classifies a journal entry.
type JournalAction string

const (
	JournalCreate JournalAction = "create"
	JournalDelete JournalAction = "delete"
	JournalSync   JournalAction = "sync"
)

// CompressionAlgo specifies the payload compression used.
type CompressionAlgo string

const (
	CompressionNone CompressionAlgo = "none"
	CompressionZstd CompressionAlgo = "zstd"
)

// Journal records every local booking mutation with its full payload,
// so offline activity can be inspected after the fact. Large payloads
// are zstd-compressed.
type Journal struct {
	txManager         *TxManager
	encoder           *zstd.Encoder
	decoder           *zstd.Decoder
	compressThreshold int
}

// NewJournal creates a journal writer.
func NewJournal(txManager *TxManager) (*Journal, error) {
	encoder, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, fmt.Errorf("create zstd encoder: %w", err)
	}
	decoder, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("create zstd decoder: %w", err)
	}
	return &Journal{
		txManager:         txManager,
		encoder:           encoder,
		decoder:           decoder,
		compressThreshold: 4 * 1024,
	}, nil
}

// Log appends an entry. Payloads are JSON-encoded.
func (j *Journal) Log(ctx context.Context, action JournalAction, entityID string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal journal payload: %w", err)
	}

	algo := CompressionNone
	if len(data) > j.compressThreshold {
		data = j.encoder.EncodeAll(data, nil)
		algo = CompressionZstd
	}

	querier := j.txManager.GetQuerier(ctx)
	_, err = querier.ExecContext(ctx,
		`INSERT INTO journal (id, action, entity_id, payload, compression, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		id.New().String(), string(action), entityID, data, string(algo), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("insert journal entry: %w", err)
	}
	return nil
}

// Decode returns the decompressed payload of an entry.
func (j *Journal) Decode(payload []byte, algo CompressionAlgo) ([]byte, error) {
	if algo != CompressionZstd {
		return payload, nil
	}
	return j.decoder.DecodeAll(payload, nil)
}
