package internal

import (
	"encoding/json"
	"fmt"
	"strings"
)

// KeyPrefix namespaces every persisted unit entry inside a shared store.
const KeyPrefix = "_UNIT_"

// Store is the external key/value store persisted units write through to.
type Store interface {
	Get(key string) ([]byte, bool, error)
	Set(key string, value []byte) error
	Delete(key string) error
	Keys(prefix string) ([]string, error)
}

// Bridge reads and writes unit values wrapped as {"value": v} so a stored
// null stays distinguishable from a missing entry.
type Bridge struct {
	store Store
}

func NewBridge(store Store) *Bridge {
	return &Bridge{store: store}
}

func (b *Bridge) Write(id string, v any) error {
	data, err := json.Marshal(struct {
		Value any `json:"value"`
	}{v})
	if err != nil {
		return fmt.Errorf("encode %s: %w", id, err)
	}

	if err := b.store.Set(KeyPrefix+id, data); err != nil {
		return fmt.Errorf("write %s: %w", id, err)
	}

	return nil
}

// Read returns the raw JSON of the stored value. Missing, unreadable or
// corrupt entries all read as absent.
func (b *Bridge) Read(id string) (json.RawMessage, bool) {
	data, ok, err := b.store.Get(KeyPrefix + id)
	if err != nil || !ok {
		return nil, false
	}

	var wrapped map[string]json.RawMessage
	if err := json.Unmarshal(data, &wrapped); err != nil {
		return nil, false
	}

	raw, ok := wrapped["value"]
	return raw, ok
}

func (b *Bridge) Remove(id string) error {
	if err := b.store.Delete(KeyPrefix + id); err != nil {
		return fmt.Errorf("remove %s: %w", id, err)
	}
	return nil
}

// IDs lists the ids of every persisted unit in the store.
func (b *Bridge) IDs() ([]string, error) {
	keys, err := b.store.Keys(KeyPrefix)
	if err != nil {
		return nil, fmt.Errorf("list keys: %w", err)
	}

	ids := make([]string, 0, len(keys))
	for _, key := range keys {
		if id, ok := strings.CutPrefix(key, KeyPrefix); ok {
			ids = append(ids, id)
		}
	}

	return ids, nil
}

// ClearAll removes every prefixed entry and leaves the rest of the store alone.
func ClearAll(store Store) error {
	keys, err := store.Keys(KeyPrefix)
	if err != nil {
		return fmt.Errorf("list keys: %w", err)
	}

	for _, key := range keys {
		if !strings.HasPrefix(key, KeyPrefix) {
			continue
		}
		if err := store.Delete(key); err != nil {
			return fmt.Errorf("remove %s: %w", key, err)
		}
	}

	return nil
}
