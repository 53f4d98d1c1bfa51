package auth

import (
	"context"
	"database/sql"
	"encoding/hex"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

const (
	testSecretID = "0123456789abcdef0123456789abcdef"
	testRandom   = "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"
)

func testKey() string {
	return FormatAPIKey(testSecretID, testRandom)
}

func testSecret() []byte {
	return []byte("0123456789abcdef0123456789abcdef")
}

// fakeQueries implements the Queries interface against a single stored key.
type fakeQueries struct {
	keyHash    []byte
	tenantID   string
	revokedAt  sql.NullTime
	lastUsedAt sql.NullTime

	lastUsedUpdates int
	getErr          error
}

func (f *fakeQueries) Get(name string, dest interface{}, args ...interface{}) error {
	if f.getErr != nil {
		return f.getErr
	}
	hash, ok := args[0].([]byte)
	if !ok || !VerifyHMAC(f.keyHash, hash) {
		return sql.ErrNoRows
	}

	result := dest.(*struct {
		APIKeyID   string       `db:"api_key_id"`
		TenantID   string       `db:"tenant_id"`
		RevokedAt  sql.NullTime `db:"revoked_at"`
		LastUsedAt sql.NullTime `db:"last_used_at"`
	})
	result.APIKeyID = "key-1"
	result.TenantID = f.tenantID
	result.RevokedAt = f.revokedAt
	result.LastUsedAt = f.lastUsedAt
	return nil
}

func (f *fakeQueries) Exec(name string, args ...interface{}) (sql.Result, error) {
	if name == "update-last-used" {
		f.lastUsedUpdates++
	}
	return nil, nil
}

func newTestAuthenticator(q *fakeQueries) *Authenticator {
	q.keyHash = ComputeHMAC(testSecret(), testKey())
	return NewAuthenticator(map[string][]byte{testSecretID: testSecret()}, q)
}

func TestParseAPIKey(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		wantErr bool
	}{
		{"valid key", testKey(), false},
		{"wrong prefix", "tk-v1-" + testSecretID + "-" + testRandom, true},
		{"wrong version", "rk-v2-" + testSecretID + "-" + testRandom, true},
		{"short secret_id", "rk-v1-abc-" + testRandom, true},
		{"short random", "rk-v1-" + testSecretID + "-abc", true},
		{"uppercase hex", "rk-v1-" + strings.ToUpper(testSecretID) + "-" + testRandom, true},
		{"missing parts", "rk-v1-" + testSecretID, true},
		{"empty", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			secretID, randomData, err := ParseAPIKey(tt.key)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseAPIKey(%q) error = %v, wantErr %v", tt.key, err, tt.wantErr)
			}
			if !tt.wantErr {
				if secretID != testSecretID {
					t.Errorf("secretID = %s, want %s", secretID, testSecretID)
				}
				if randomData != testRandom {
					t.Errorf("randomData = %s, want %s", randomData, testRandom)
				}
			}
		})
	}
}

func TestComputeHMAC(t *testing.T) {
	hash := ComputeHMAC(testSecret(), testKey())
	if len(hash) != 32 {
		t.Errorf("hash length = %d, want 32 (SHA-256)", len(hash))
	}
	if !VerifyHMAC(hash, ComputeHMAC(testSecret(), testKey())) {
		t.Error("HMAC not deterministic for same secret and key")
	}
	if VerifyHMAC(hash, ComputeHMAC([]byte("another secret another secret!!!"), testKey())) {
		t.Error("HMAC matched across different secrets")
	}
	// Hex round trip sanity for storage in text columns
	if _, err := hex.DecodeString(hex.EncodeToString(hash)); err != nil {
		t.Errorf("hash not hex-encodable: %v", err)
	}
}

func TestAuthenticate(t *testing.T) {
	t.Run("valid key", func(t *testing.T) {
		q := &fakeQueries{tenantID: "acme"}
		a := newTestAuthenticator(q)

		tenantID, err := a.Authenticate(context.Background(), testKey())
		if err != nil {
			t.Fatalf("Authenticate failed: %v", err)
		}
		if tenantID != "acme" {
			t.Errorf("tenantID = %s, want acme", tenantID)
		}
		if q.lastUsedUpdates != 1 {
			t.Errorf("last_used updates = %d, want 1", q.lastUsedUpdates)
		}
	})

	t.Run("malformed key", func(t *testing.T) {
		a := newTestAuthenticator(&fakeQueries{})
		if _, err := a.Authenticate(context.Background(), "garbage"); err != ErrInvalidKeyFormat {
			t.Errorf("err = %v, want ErrInvalidKeyFormat", err)
		}
	})

	t.Run("unknown secret id", func(t *testing.T) {
		a := NewAuthenticator(map[string][]byte{}, &fakeQueries{})
		if _, err := a.Authenticate(context.Background(), testKey()); err != ErrUnknownKey {
			t.Errorf("err = %v, want ErrUnknownKey", err)
		}
	})

	t.Run("key not in database", func(t *testing.T) {
		q := &fakeQueries{}
		a := newTestAuthenticator(q)
		q.keyHash = []byte("different hash entirely........")

		if _, err := a.Authenticate(context.Background(), testKey()); err != ErrInvalidKey {
			t.Errorf("err = %v, want ErrInvalidKey", err)
		}
	})

	t.Run("revoked key", func(t *testing.T) {
		q := &fakeQueries{
			tenantID:  "acme",
			revokedAt: sql.NullTime{Time: time.Now(), Valid: true},
		}
		a := newTestAuthenticator(q)
		if _, err := a.Authenticate(context.Background(), testKey()); err != ErrKeyRevoked {
			t.Errorf("err = %v, want ErrKeyRevoked", err)
		}
	})

	t.Run("recent last_used skips update", func(t *testing.T) {
		q := &fakeQueries{
			tenantID:   "acme",
			lastUsedAt: sql.NullTime{Time: time.Now(), Valid: true},
		}
		a := newTestAuthenticator(q)
		if _, err := a.Authenticate(context.Background(), testKey()); err != nil {
			t.Fatalf("Authenticate failed: %v", err)
		}
		if q.lastUsedUpdates != 0 {
			t.Errorf("last_used updates = %d, want 0 within throttle window", q.lastUsedUpdates)
		}
	})
}

func TestMiddleware(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(TenantIDFromContext(r.Context())))
	})

	t.Run("valid key passes tenant through", func(t *testing.T) {
		a := newTestAuthenticator(&fakeQueries{tenantID: "acme"})

		req := httptest.NewRequest(http.MethodGet, "/v1/rule-groups", nil)
		req.Header.Set("X-Api-Key", testKey())
		rec := httptest.NewRecorder()

		a.Middleware(handler).ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rec.Code)
		}
		if rec.Body.String() != "acme" {
			t.Errorf("tenant = %q, want acme", rec.Body.String())
		}
	})

	t.Run("missing key", func(t *testing.T) {
		a := newTestAuthenticator(&fakeQueries{})

		req := httptest.NewRequest(http.MethodGet, "/v1/rule-groups", nil)
		rec := httptest.NewRecorder()

		a.Middleware(handler).ServeHTTP(rec, req)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("status = %d, want 401", rec.Code)
		}
	})

	t.Run("revoked key", func(t *testing.T) {
		a := newTestAuthenticator(&fakeQueries{
			revokedAt: sql.NullTime{Time: time.Now(), Valid: true},
		})

		req := httptest.NewRequest(http.MethodGet, "/v1/rule-groups", nil)
		req.Header.Set("X-Api-Key", testKey())
		rec := httptest.NewRecorder()

		a.Middleware(handler).ServeHTTP(rec, req)
		if rec.Code != http.StatusForbidden {
			t.Errorf("status = %d, want 403", rec.Code)
		}
	})
}
