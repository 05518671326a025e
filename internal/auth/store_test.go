package auth

import (
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/juank27/alegra-api/internal/logging"
	"github.com/juank27/alegra-api/internal/storage"
)

func newTestStore(t *testing.T) *TokenStore {
	t.Helper()
	db, err := storage.Open(filepath.Join(t.TempDir(), "app.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = db.Close() })

	cipher, err := NewCipher("test-secret")
	if err != nil {
		t.Fatal(err)
	}
	return NewTokenStore(db, cipher)
}

func TestStoreSaveAndFind(t *testing.T) {
	store := newTestStore(t)

	if err := store.SaveToken("user@test", "token-1"); err != nil {
		t.Fatal(err)
	}

	email, err := store.FindEmail("token-1")
	if err != nil {
		t.Fatal(err)
	}
	if email != "user@test" {
		t.Fatalf("email=%q", email)
	}

	email, err = store.FindEmail("wrong")
	if err != nil {
		t.Fatal(err)
	}
	if email != "" {
		t.Fatalf("email=%q", email)
	}
}

func TestEnsureAdminIdempotent(t *testing.T) {
	store := newTestStore(t)

	for i := 0; i < 3; i++ {
		if err := store.EnsureAdmin("admin@test", "admin-token"); err != nil {
			t.Fatal(err)
		}
	}

	tokens, err := store.LoadTokens()
	if err != nil {
		t.Fatal(err)
	}
	if len(tokens) != 1 || tokens["admin@test"] != "admin-token" {
		t.Fatalf("tokens=%v", tokens)
	}
}

func TestEnsureAdminRequiresCredential(t *testing.T) {
	store := newTestStore(t)
	if err := store.EnsureAdmin("", "token"); err == nil {
		t.Fatal("expected error")
	}
	if err := store.EnsureAdmin("admin@test", ""); err == nil {
		t.Fatal("expected error")
	}
}

func TestMiddleware(t *testing.T) {
	store := newTestStore(t)
	if err := store.SaveToken("user@test", "good-token"); err != nil {
		t.Fatal(err)
	}

	var seenEmail string
	handler := Middleware(store, logging.Discard(), http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seenEmail = UserEmail(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	cases := []struct {
		name   string
		header string
		status int
	}{
		{name: "missing header", header: "", status: http.StatusUnauthorized},
		{name: "not bearer", header: "Basic abc", status: http.StatusUnauthorized},
		{name: "unknown token", header: "Bearer nope", status: http.StatusUnauthorized},
		{name: "valid token", header: "Bearer good-token", status: http.StatusOK},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			if rec.Code != tc.status {
				t.Fatalf("status=%d want %d", rec.Code, tc.status)
			}
		})
	}

	if seenEmail != "user@test" {
		t.Fatalf("seenEmail=%q", seenEmail)
	}
}
