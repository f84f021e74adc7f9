package partition

import (
	"context"
	"errors"
	"testing"

	"github.com/hazyhaar/unstruct/kvstore"
)

func TestCredentialRoundTrip(t *testing.T) {
	stores := map[string]kvstore.Store{
		"memory": kvstore.NewMemory(),
		"sqlite": kvstore.OpenMemory(t),
	}

	for name, store := range stores {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			// Fresh store: no key, no error.
			key, err := APIKey(ctx, store)
			if err != nil {
				t.Fatalf("APIKey on empty store: %v", err)
			}
			if key != "" {
				t.Errorf("empty store: got %q, want empty", key)
			}

			if err := SetAPIKey(ctx, store, "abc"); err != nil {
				t.Fatal(err)
			}
			key, err = APIKey(ctx, store)
			if err != nil {
				t.Fatal(err)
			}
			if key != "abc" {
				t.Errorf("after set: got %q, want abc", key)
			}

			// Overwrite.
			if err := SetAPIKey(ctx, store, "def"); err != nil {
				t.Fatal(err)
			}
			if key, _ = APIKey(ctx, store); key != "def" {
				t.Errorf("after overwrite: got %q, want def", key)
			}

			if err := DeleteAPIKey(ctx, store); err != nil {
				t.Fatal(err)
			}
			key, err = APIKey(ctx, store)
			if err != nil {
				t.Fatalf("APIKey after delete: %v", err)
			}
			if key != "" {
				t.Errorf("after delete: got %q, want empty", key)
			}

			// Deleting an absent key is a no-op.
			if err := DeleteAPIKey(ctx, store); err != nil {
				t.Errorf("delete of absent key: %v", err)
			}
		})
	}
}

func TestCredentialRoundTrip_Sealed(t *testing.T) {
	inner := kvstore.OpenMemory(t)
	sealed, err := kvstore.NewSealed(inner, []byte("0123456789abcdef0123456789abcdef"))
	if err != nil {
		t.Fatal(err)
	}

	ctx := context.Background()
	if err := SetAPIKey(ctx, sealed, "abc"); err != nil {
		t.Fatal(err)
	}

	// The inner store must not hold the key in cleartext.
	raw, err := inner.Get(ctx, CredentialKey)
	if err != nil {
		t.Fatal(err)
	}
	if string(raw) == "abc" {
		t.Error("inner store holds the credential in cleartext")
	}

	key, err := APIKey(ctx, sealed)
	if err != nil {
		t.Fatal(err)
	}
	if key != "abc" {
		t.Errorf("sealed round trip: got %q, want abc", key)
	}
}

// errStore fails every operation.
type errStore struct{ err error }

func (s errStore) Get(context.Context, string) ([]byte, error) { return nil, s.err }
func (s errStore) Set(context.Context, string, []byte) error   { return s.err }
func (s errStore) Delete(context.Context, string) error        { return s.err }

func TestAPIKey_StoreErrorPropagates(t *testing.T) {
	cause := errors.New("disk on fire")
	_, err := APIKey(context.Background(), errStore{err: cause})
	if !errors.Is(err, cause) {
		t.Errorf("expected wrapped store error, got %v", err)
	}
}
