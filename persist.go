package unit

import (
	"encoding/json"

	"github.com/AnatoleLucet/unit/internal"
)

// KeyPrefix is prepended to unit ids to form store keys.
const KeyPrefix = internal.KeyPrefix

// ClearPersisted removes every unit entry from s. Keys without KeyPrefix
// are left untouched.
func ClearPersisted(s Store) error {
	return internal.ClearAll(s)
}

// PersistedKeys lists the ids of the units persisted in s.
func PersistedKeys(s Store) ([]string, error) {
	return internal.NewBridge(s).IDs()
}

// ReadPersisted returns the raw JSON value stored for id.
func ReadPersisted(s Store, id string) (json.RawMessage, bool) {
	return internal.NewBridge(s).Read(id)
}

func RemovePersisted(s Store, id string) error {
	return internal.NewBridge(s).Remove(id)
}
