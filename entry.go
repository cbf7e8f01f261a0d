package cachevault

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/unkn0wn-root/cachevault/cachestore"
	"github.com/unkn0wn-root/cachevault/codec"
)

// Entry is the stored record for one key: the encoded (possibly compressed
// and/or encrypted) payload plus its size metadata.
type Entry struct {
	Key       string
	Payload   []byte
	Metadata  codec.Metadata
	Timestamp time.Time
}

// entryBody is the JSON persisted as a cache record body. Payload bytes
// travel base64-encoded inside the JSON.
type entryBody struct {
	Data      []byte         `json:"data"`
	Metadata  codec.Metadata `json:"metadata"`
	Timestamp time.Time      `json:"timestamp"`
}

func (s *Store) newRecord(e Entry) (cachestore.Record, error) {
	body, err := json.Marshal(entryBody{
		Data:      e.Payload,
		Metadata:  e.Metadata,
		Timestamp: e.Timestamp,
	})
	if err != nil {
		return cachestore.Record{}, fmt.Errorf("cachevault: marshal entry: %w", err)
	}
	return cachestore.Record{
		Body:         body,
		ContentType:  "application/json",
		MaxAge:       s.cacheDuration,
		LastModified: e.Timestamp,
	}, nil
}

func decodeEntry(key string, rec cachestore.Record) (Entry, error) {
	var body entryBody
	if err := json.Unmarshal(rec.Body, &body); err != nil {
		return Entry{}, fmt.Errorf("%w: entry body: %v", ErrCorruptData, err)
	}
	return Entry{
		Key:       key,
		Payload:   body.Data,
		Metadata:  body.Metadata,
		Timestamp: body.Timestamp,
	}, nil
}
