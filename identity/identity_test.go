// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package identity

import (
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"

	"github.com/danielhkuo/forum/auth"
	"github.com/danielhkuo/forum/testutil"
)

func newMockStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()

	mockDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("Failed to create sqlmock: %v", err)
	}
	t.Cleanup(func() {
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Errorf("Unmet database expectations: %v", err)
		}
		mockDB.Close()
	})

	return NewStore(sqlx.NewDb(mockDB, "postgres")), mock
}

var (
	selectLogin = regexp.QuoteMeta(`SELECT id, password_hash FROM users WHERE username = $1`)
	updateLogin = regexp.QuoteMeta(`UPDATE users SET latest_login_time = NOW(), csrf_token = $1 WHERE id = $2`)
	selectToken = regexp.QuoteMeta(`SELECT csrf_token FROM users WHERE id = $1`)
)

func TestLogin(t *testing.T) {
	hash, err := auth.HashPassword("correct horse battery")
	if err != nil {
		t.Fatal(err)
	}

	t.Run("correct password starts a session", func(t *testing.T) {
		store, mock := newMockStore(t)
		mock.ExpectQuery(selectLogin).WithArgs("alice").
			WillReturnRows(sqlmock.NewRows([]string{"id", "password_hash"}).AddRow(int64(7), hash))
		mock.ExpectExec(updateLogin).WithArgs(sqlmock.AnyArg(), int64(7)).
			WillReturnResult(sqlmock.NewResult(0, 1))

		id, ok, err := store.Login(context.Background(), "alice", "correct horse battery")
		if err != nil {
			t.Fatal(err)
		}
		if !ok || id != 7 {
			t.Errorf("expected login as 7, got id=%d ok=%v", id, ok)
		}
	})

	t.Run("wrong password", func(t *testing.T) {
		store, mock := newMockStore(t)
		mock.ExpectQuery(selectLogin).WithArgs("alice").
			WillReturnRows(sqlmock.NewRows([]string{"id", "password_hash"}).AddRow(int64(7), hash))

		_, ok, err := store.Login(context.Background(), "alice", "incorrect horse")
		if err != nil {
			t.Fatal(err)
		}
		if ok {
			t.Error("wrong password should not log in")
		}
	})

	t.Run("locked account", func(t *testing.T) {
		store, mock := newMockStore(t)
		mock.ExpectQuery(selectLogin).WithArgs("bob").
			WillReturnRows(sqlmock.NewRows([]string{"id", "password_hash"}).AddRow(int64(8), nil))

		_, ok, err := store.Login(context.Background(), "bob", "")
		if err != nil {
			t.Fatal(err)
		}
		if ok {
			t.Error("locked account should not log in")
		}
	})

	t.Run("unknown user", func(t *testing.T) {
		store, mock := newMockStore(t)
		mock.ExpectQuery(selectLogin).WithArgs("nobody").
			WillReturnRows(sqlmock.NewRows([]string{"id", "password_hash"}))

		_, ok, err := store.Login(context.Background(), "nobody", "correct horse battery")
		if err != nil {
			t.Fatal(err)
		}
		if ok {
			t.Error("unknown user should not log in")
		}
	})
}

func TestRegister_Mock(t *testing.T) {
	insert := regexp.QuoteMeta(`INSERT INTO users`)

	t.Run("new username", func(t *testing.T) {
		store, mock := newMockStore(t)
		mock.ExpectQuery(insert).WithArgs("alice", sqlmock.AnyArg()).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(1)))

		created, err := store.Register(context.Background(), "alice", "correct horse battery")
		if err != nil {
			t.Fatal(err)
		}
		if !created {
			t.Error("expected the user to be created")
		}
	})

	t.Run("taken username", func(t *testing.T) {
		store, mock := newMockStore(t)
		mock.ExpectQuery(insert).WithArgs("alice", sqlmock.AnyArg()).
			WillReturnRows(sqlmock.NewRows([]string{"id"}))

		created, err := store.Register(context.Background(), "alice", "correct horse battery")
		if err != nil {
			t.Fatal(err)
		}
		if created {
			t.Error("duplicate username should not be created")
		}
	})
}

func TestValidateCSRF_Mock(t *testing.T) {
	tests := []struct {
		name   string
		stored interface{}
		given  string
		query  bool
		want   bool
	}{
		{"match", "abc123", "abc123", true, true},
		{"mismatch", "abc123", "abc124", true, false},
		{"prefix", "abc123", "abc", true, false},
		{"logged out", nil, "abc123", true, false},
		{"empty token", "abc123", "", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, mock := newMockStore(t)
			if tt.query {
				mock.ExpectQuery(selectToken).WithArgs(int64(3)).
					WillReturnRows(sqlmock.NewRows([]string{"csrf_token"}).AddRow(tt.stored))
			}

			got, err := store.ValidateCSRF(context.Background(), 3, tt.given)
			if err != nil {
				t.Fatal(err)
			}
			if got != tt.want {
				t.Errorf("ValidateCSRF = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIsAuthenticated_NonPositiveIDSkipsQuery(t *testing.T) {
	store, _ := newMockStore(t)

	for _, id := range []int64{0, -1} {
		ok, err := store.IsAuthenticated(context.Background(), id)
		if err != nil {
			t.Fatal(err)
		}
		if ok {
			t.Errorf("id %d should not be authenticated", id)
		}
	}
}

func TestIdentityStore_Postgres(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := NewStore(db)
	ctx := context.Background()

	created, err := store.Register(ctx, "alice", "correct horse battery")
	if err != nil || !created {
		t.Fatalf("Register: created=%v err=%v", created, err)
	}

	created, err = store.Register(ctx, "alice", "another long password")
	if err != nil {
		t.Fatal(err)
	}
	if created {
		t.Error("second registration of alice should be refused")
	}
	if n := testutil.CountRows(t, db, `SELECT COUNT(*) FROM users WHERE username = 'alice'`); n != 1 {
		t.Errorf("expected 1 alice, got %d", n)
	}

	if _, ok, _ := store.Login(ctx, "alice", "wrong password!"); ok {
		t.Error("wrong password should not log in")
	}

	id, ok, err := store.Login(ctx, "alice", "correct horse battery")
	if err != nil || !ok {
		t.Fatalf("Login: ok=%v err=%v", ok, err)
	}

	authed, err := store.IsAuthenticated(ctx, id)
	if err != nil || !authed {
		t.Errorf("IsAuthenticated: %v %v", authed, err)
	}
	if authed, _ := store.IsAuthenticated(ctx, id+1000); authed {
		t.Error("unknown id should not be authenticated")
	}

	first, ok, err := store.CSRFToken(ctx, id)
	if err != nil || !ok || first == "" {
		t.Fatalf("CSRFToken after login: %q %v %v", first, ok, err)
	}

	// A second login replaces the token of the first session.
	if _, ok, _ := store.Login(ctx, "alice", "correct horse battery"); !ok {
		t.Fatal("second login failed")
	}
	if valid, _ := store.ValidateCSRF(ctx, id, first); valid {
		t.Error("old token should be invalid after a new login")
	}
	second, _, _ := store.CSRFToken(ctx, id)
	if valid, _ := store.ValidateCSRF(ctx, id, second); !valid {
		t.Error("current token should validate")
	}

	if err := store.Logout(ctx, id); err != nil {
		t.Fatal(err)
	}
	if valid, _ := store.ValidateCSRF(ctx, id, second); valid {
		t.Error("token should be invalid after logout")
	}
	if _, ok, _ := store.CSRFToken(ctx, id); ok {
		t.Error("logged out user should have no token")
	}

	name, ok, err := store.Username(ctx, id)
	if err != nil || !ok || name != "alice" {
		t.Errorf("Username = %q %v %v", name, ok, err)
	}
}

func TestIdentityStore_LockedAccount(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := NewStore(db)
	ctx := context.Background()

	id := testutil.CreateTestUser(t, db, "carol", "correct horse battery")
	testutil.LockTestUser(t, db, id)

	if _, ok, _ := store.Login(ctx, "carol", "correct horse battery"); ok {
		t.Error("locked account should not log in")
	}

	users, err := store.Users(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(users) != 1 || !users[0].Locked || users[0].LatestLoginTime != nil {
		t.Errorf("unexpected users listing: %+v", users)
	}
}
