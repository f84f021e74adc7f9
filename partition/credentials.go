package partition

import (
	"context"
	"errors"
	"fmt"

	"github.com/hazyhaar/unstruct/kvstore"
)

// CredentialKey is the fixed key-value store key holding the partition
// service API key.
const CredentialKey = "unstructured_api_key"

// APIKey reads the stored API key. Absence is not an error: it returns
// "" and the adapter proceeds unauthenticated.
func APIKey(ctx context.Context, store kvstore.Store) (string, error) {
	v, err := store.Get(ctx, CredentialKey)
	if errors.Is(err, kvstore.ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("partition: read api key: %w", err)
	}
	return string(v), nil
}

// SetAPIKey stores or overwrites the API key.
func SetAPIKey(ctx context.Context, store kvstore.Store, key string) error {
	if err := store.Set(ctx, CredentialKey, []byte(key)); err != nil {
		return fmt.Errorf("partition: store api key: %w", err)
	}
	return nil
}

// DeleteAPIKey removes the stored API key. Deleting a missing key is a
// no-op.
func DeleteAPIKey(ctx context.Context, store kvstore.Store) error {
	if err := store.Delete(ctx, CredentialKey); err != nil {
		return fmt.Errorf("partition: delete api key: %w", err)
	}
	return nil
}
