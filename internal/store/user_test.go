package store

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"auto-card/internal/database"
	"auto-card/internal/model"
	"auto-card/internal/service"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"
)

/* ---------- 假實作 ---------- */

// fakeUserRow 支援三種 Scan 呼叫場景：
// 1) len(dest)==8 → 完整使用者列
// 2) len(dest)==2 → CreateUser (id, created_at)
// 3) len(dest)==1 → UpdateUser (updated_at)
type fakeUserRow struct {
	scanErr error
	user    *model.User
}

func (r *fakeUserRow) Scan(dest ...any) error {
	if r.scanErr != nil {
		return r.scanErr
	}
	u := r.user
	switch len(dest) {
	case 8:
		*dest[0].(*int) = u.ID
		*dest[1].(*string) = u.Email
		*dest[2].(*string) = u.Username
		*dest[3].(*string) = u.PasswordHash
		*dest[4].(*bool) = u.IsActive
		*dest[5].(*bool) = u.IsAdmin
		*dest[6].(*time.Time) = u.CreatedAt
		*dest[7].(**time.Time) = u.UpdatedAt
	case 2:
		*dest[0].(*int) = u.ID
		*dest[1].(*time.Time) = u.CreatedAt
	case 1:
		*dest[0].(**time.Time) = u.UpdatedAt
	default:
		panic("fakeUserRow.Scan: unexpected dest count")
	}
	return nil
}

// fakeUserRows 實作 pgx.Rows 供 ListUsers 測試
type fakeUserRows struct {
	users []model.User
	idx   int
	err   error
}

func (r *fakeUserRows) Close()                                       {}
func (r *fakeUserRows) Err() error                                   { return r.err }
func (r *fakeUserRows) CommandTag() pgconn.CommandTag                { return pgconn.CommandTag{} }
func (r *fakeUserRows) FieldDescriptions() []pgconn.FieldDescription { return nil }
func (r *fakeUserRows) Next() bool {
	if r.idx >= len(r.users) {
		return false
	}
	r.idx++
	return true
}
func (r *fakeUserRows) Scan(dest ...any) error {
	row := fakeUserRow{user: &r.users[r.idx-1]}
	return row.Scan(dest...)
}
func (r *fakeUserRows) Values() ([]any, error) { return nil, nil }
func (r *fakeUserRows) RawValues() [][]byte    { return nil }
func (r *fakeUserRows) Conn() *pgx.Conn        { return nil }

func sampleUser(t *testing.T) *model.User {
	t.Helper()
	hash, err := service.HashPassword("pw")
	require.NoError(t, err)
	now := time.Now().UTC()
	return &model.User{
		ID:           7,
		Email:        "alice@example.com",
		Username:     "alice",
		PasswordHash: hash,
		IsActive:     true,
		IsAdmin:      false,
		CreatedAt:    now,
	}
}

/* ---------- 查詢 ---------- */

func TestGetUser(t *testing.T) {
	sample := sampleUser(t)

	t.Run("GetUserByID success", func(t *testing.T) {
		db := &database.FakeDB{
			QueryRowFn: func(_ context.Context, _ string, _ ...any) pgx.Row {
				return &fakeUserRow{user: sample}
			},
		}
		u, err := GetUserByID(context.Background(), db, 7)
		require.NoError(t, err)
		require.Equal(t, sample.Email, u.Email)
		require.True(t, u.IsActive)
	})

	t.Run("GetUserByID not found", func(t *testing.T) {
		db := &database.FakeDB{
			QueryRowFn: func(_ context.Context, _ string, _ ...any) pgx.Row {
				return &fakeUserRow{scanErr: pgx.ErrNoRows}
			},
		}
		u, err := GetUserByID(context.Background(), db, 999)
		require.ErrorIs(t, err, ErrNotFound)
		require.Nil(t, u)
	})

	t.Run("GetUserByEmail success", func(t *testing.T) {
		db := &database.FakeDB{
			QueryRowFn: func(_ context.Context, _ string, _ ...any) pgx.Row {
				return &fakeUserRow{user: sample}
			},
		}
		u, err := GetUserByEmail(context.Background(), db, "alice@example.com")
		require.NoError(t, err)
		require.Equal(t, 7, u.ID)
	})

	t.Run("GetUserByUsername not found", func(t *testing.T) {
		db := &database.FakeDB{
			QueryRowFn: func(_ context.Context, _ string, _ ...any) pgx.Row {
				return &fakeUserRow{scanErr: pgx.ErrNoRows}
			},
		}
		u, err := GetUserByUsername(context.Background(), db, "bob")
		require.ErrorIs(t, err, ErrNotFound)
		require.Nil(t, u)
	})

	t.Run("scan error wrapped", func(t *testing.T) {
		db := &database.FakeDB{
			QueryRowFn: func(_ context.Context, _ string, _ ...any) pgx.Row {
				return &fakeUserRow{scanErr: errors.New("boom")}
			},
		}
		_, err := GetUserByID(context.Background(), db, 1)
		require.Error(t, err)
		require.NotErrorIs(t, err, ErrNotFound)
	})
}

func TestListUsers(t *testing.T) {
	a := *sampleUser(t)
	b := a
	b.ID = 8
	b.Email = "bob@example.com"
	b.Username = "bob"

	t.Run("success", func(t *testing.T) {
		var gotArgs []any
		db := &database.FakeDB{
			QueryFn: func(_ context.Context, _ string, args ...any) (pgx.Rows, error) {
				gotArgs = args
				return &fakeUserRows{users: []model.User{a, b}}, nil
			},
		}
		users, err := ListUsers(context.Background(), db, 10, 2)
		require.NoError(t, err)
		require.Len(t, users, 2)
		require.Equal(t, 7, users[0].ID)
		require.Equal(t, 8, users[1].ID)
		require.Equal(t, []any{10, 2}, gotArgs)
	})

	t.Run("query error", func(t *testing.T) {
		db := &database.FakeDB{
			QueryFn: func(_ context.Context, _ string, _ ...any) (pgx.Rows, error) {
				return nil, errors.New("q")
			},
		}
		_, err := ListUsers(context.Background(), db, 0, 100)
		require.Error(t, err)
	})

	t.Run("rows error", func(t *testing.T) {
		db := &database.FakeDB{
			QueryFn: func(_ context.Context, _ string, _ ...any) (pgx.Rows, error) {
				return &fakeUserRows{err: errors.New("rows")}, nil
			},
		}
		_, err := ListUsers(context.Background(), db, 0, 100)
		require.Error(t, err)
	})
}

/* ---------- 建立 ---------- */

// createDispatchDB 依 SQL 內容分派前置檢查、INSERT 與 bootstrap UPDATE。
func createDispatchDB(insertRow pgx.Row, execFn func(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)) *database.FakeDB {
	return &database.FakeDB{
		QueryRowFn: func(_ context.Context, sql string, _ ...any) pgx.Row {
			switch {
			case strings.Contains(sql, "WHERE email"):
				return &fakeUserRow{scanErr: pgx.ErrNoRows}
			case strings.Contains(sql, "WHERE username"):
				return &fakeUserRow{scanErr: pgx.ErrNoRows}
			case strings.Contains(sql, "INSERT"):
				return insertRow
			default:
				panic("unexpected query: " + sql)
			}
		},
		ExecFn: execFn,
	}
}

func TestCreateUser(t *testing.T) {
	now := time.Now().UTC()
	params := CreateUserParams{
		Email:    "alice@example.com",
		Username: "alice",
		Password: "pw123",
		IsActive: true,
	}

	t.Run("first user becomes admin", func(t *testing.T) {
		promoted := false
		db := createDispatchDB(
			&fakeUserRow{user: &model.User{ID: 1, CreatedAt: now}},
			func(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
				require.Contains(t, sql, "is_admin = TRUE")
				require.Equal(t, []any{1}, args)
				promoted = true
				return pgconn.NewCommandTag("UPDATE 1"), nil
			},
		)
		u, err := CreateUser(context.Background(), db, params)
		require.NoError(t, err)
		require.True(t, promoted)
		require.True(t, u.IsAdmin)
		require.Equal(t, 1, u.ID)
		// 密碼以哈希存放，可驗證且非明文
		require.NotEqual(t, "pw123", u.PasswordHash)
		require.True(t, service.CheckPassword(u.PasswordHash, "pw123"))
	})

	t.Run("second user stays regular", func(t *testing.T) {
		db := createDispatchDB(
			&fakeUserRow{user: &model.User{ID: 2, CreatedAt: now}},
			nil,
		)
		u, err := CreateUser(context.Background(), db, params)
		require.NoError(t, err)
		require.False(t, u.IsAdmin)
		require.Equal(t, 2, u.ID)
	})

	t.Run("duplicate email pre-check", func(t *testing.T) {
		existing := sampleUser(t)
		db := &database.FakeDB{
			QueryRowFn: func(_ context.Context, sql string, _ ...any) pgx.Row {
				require.Contains(t, sql, "WHERE email")
				return &fakeUserRow{user: existing}
			},
		}
		_, err := CreateUser(context.Background(), db, params)
		require.ErrorIs(t, err, ErrEmailTaken)
	})

	t.Run("duplicate username pre-check", func(t *testing.T) {
		existing := sampleUser(t)
		db := &database.FakeDB{
			QueryRowFn: func(_ context.Context, sql string, _ ...any) pgx.Row {
				if strings.Contains(sql, "WHERE email") {
					return &fakeUserRow{scanErr: pgx.ErrNoRows}
				}
				return &fakeUserRow{user: existing}
			},
		}
		_, err := CreateUser(context.Background(), db, params)
		require.ErrorIs(t, err, ErrUsernameTaken)
	})

	t.Run("raced unique violation on insert", func(t *testing.T) {
		db := createDispatchDB(
			&fakeUserRow{scanErr: &pgconn.PgError{Code: "23505", ConstraintName: "users_username_key"}},
			nil,
		)
		_, err := CreateUser(context.Background(), db, params)
		require.ErrorIs(t, err, ErrUsernameTaken)

		db = createDispatchDB(
			&fakeUserRow{scanErr: &pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"}},
			nil,
		)
		_, err = CreateUser(context.Background(), db, params)
		require.ErrorIs(t, err, ErrEmailTaken)
	})

	t.Run("insert error", func(t *testing.T) {
		db := createDispatchDB(&fakeUserRow{scanErr: errors.New("dup key")}, nil)
		_, err := CreateUser(context.Background(), db, params)
		require.Error(t, err)
		require.NotErrorIs(t, err, ErrEmailTaken)
	})
}

/* ---------- 更新 ---------- */

func TestUpdateUser(t *testing.T) {
	now := time.Now().UTC()

	t.Run("partial update keeps other fields", func(t *testing.T) {
		existing := sampleUser(t)
		var updateArgs []any
		db := &database.FakeDB{
			QueryRowFn: func(_ context.Context, sql string, args ...any) pgx.Row {
				if strings.Contains(sql, "SELECT") {
					return &fakeUserRow{user: existing}
				}
				updateArgs = args
				return &fakeUserRow{user: &model.User{UpdatedAt: &now}}
			},
		}
		newName := "bobby"
		u, err := UpdateUser(context.Background(), db, 7, UpdateUserParams{Username: &newName})
		require.NoError(t, err)
		require.Equal(t, "bobby", u.Username)
		require.Equal(t, existing.Email, u.Email)
		require.NotNil(t, u.UpdatedAt)
		// UPDATE 帶回既有 email 與新 username
		require.Equal(t, existing.Email, updateArgs[0])
		require.Equal(t, "bobby", updateArgs[1])
		require.Equal(t, existing.PasswordHash, updateArgs[2])
	})

	t.Run("password rehashed", func(t *testing.T) {
		existing := sampleUser(t)
		var updateArgs []any
		db := &database.FakeDB{
			QueryRowFn: func(_ context.Context, sql string, args ...any) pgx.Row {
				if strings.Contains(sql, "SELECT") {
					return &fakeUserRow{user: existing}
				}
				updateArgs = args
				return &fakeUserRow{user: &model.User{UpdatedAt: &now}}
			},
		}
		newPw := "newpw"
		u, err := UpdateUser(context.Background(), db, 7, UpdateUserParams{Password: &newPw})
		require.NoError(t, err)
		require.NotEqual(t, existing.PasswordHash, u.PasswordHash)
		hash, ok := updateArgs[2].(string)
		require.True(t, ok)
		require.NotEqual(t, "newpw", hash)
		require.True(t, service.CheckPassword(hash, "newpw"))
	})

	t.Run("not found", func(t *testing.T) {
		db := &database.FakeDB{
			QueryRowFn: func(_ context.Context, _ string, _ ...any) pgx.Row {
				return &fakeUserRow{scanErr: pgx.ErrNoRows}
			},
		}
		u, err := UpdateUser(context.Background(), db, 999, UpdateUserParams{})
		require.ErrorIs(t, err, ErrNotFound)
		require.Nil(t, u)
	})

	t.Run("duplicate on update", func(t *testing.T) {
		existing := sampleUser(t)
		db := &database.FakeDB{
			QueryRowFn: func(_ context.Context, sql string, _ ...any) pgx.Row {
				if strings.Contains(sql, "SELECT") {
					return &fakeUserRow{user: existing}
				}
				return &fakeUserRow{scanErr: &pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"}}
			},
		}
		newEmail := "taken@example.com"
		_, err := UpdateUser(context.Background(), db, 7, UpdateUserParams{Email: &newEmail})
		require.ErrorIs(t, err, ErrEmailTaken)
	})
}

/* ---------- 刪除與旗標 ---------- */

func TestDeleteUser(t *testing.T) {
	t.Run("returns prior state", func(t *testing.T) {
		sample := sampleUser(t)
		db := &database.FakeDB{
			QueryRowFn: func(_ context.Context, sql string, args ...any) pgx.Row {
				require.Contains(t, sql, "DELETE")
				require.Equal(t, []any{7}, args)
				return &fakeUserRow{user: sample}
			},
		}
		u, err := DeleteUser(context.Background(), db, 7)
		require.NoError(t, err)
		require.Equal(t, sample.Username, u.Username)
	})

	t.Run("not found", func(t *testing.T) {
		db := &database.FakeDB{
			QueryRowFn: func(_ context.Context, _ string, _ ...any) pgx.Row {
				return &fakeUserRow{scanErr: pgx.ErrNoRows}
			},
		}
		u, err := DeleteUser(context.Background(), db, 999)
		require.ErrorIs(t, err, ErrNotFound)
		require.Nil(t, u)
	})
}

func TestSetUserAdmin(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		db := &database.FakeDB{
			ExecFn: func(_ context.Context, _ string, args ...any) (pgconn.CommandTag, error) {
				require.Equal(t, []any{true, 5}, args)
				return pgconn.NewCommandTag("UPDATE 1"), nil
			},
		}
		require.NoError(t, SetUserAdmin(context.Background(), db, 5, true))
	})

	t.Run("not found", func(t *testing.T) {
		db := &database.FakeDB{
			ExecFn: func(_ context.Context, _ string, _ ...any) (pgconn.CommandTag, error) {
				return pgconn.NewCommandTag("UPDATE 0"), nil
			},
		}
		require.ErrorIs(t, SetUserAdmin(context.Background(), db, 5, true), ErrNotFound)
	})

	t.Run("exec error", func(t *testing.T) {
		db := &database.FakeDB{
			ExecFn: func(_ context.Context, _ string, _ ...any) (pgconn.CommandTag, error) {
				return pgconn.CommandTag{}, errors.New("exec")
			},
		}
		require.Error(t, SetUserAdmin(context.Background(), db, 5, false))
	})
}

/* ---------- 驗證 ---------- */

func TestAuthenticateUser(t *testing.T) {
	sample := sampleUser(t)

	t.Run("success", func(t *testing.T) {
		db := &database.FakeDB{
			QueryRowFn: func(_ context.Context, _ string, _ ...any) pgx.Row {
				return &fakeUserRow{user: sample}
			},
		}
		u, err := AuthenticateUser(context.Background(), db, "alice", "pw")
		require.NoError(t, err)
		require.Equal(t, sample.ID, u.ID)
	})

	t.Run("wrong password", func(t *testing.T) {
		db := &database.FakeDB{
			QueryRowFn: func(_ context.Context, _ string, _ ...any) pgx.Row {
				return &fakeUserRow{user: sample}
			},
		}
		u, err := AuthenticateUser(context.Background(), db, "alice", "bad")
		require.ErrorIs(t, err, ErrInvalidCredentials)
		require.Nil(t, u)
	})

	t.Run("unknown username indistinguishable", func(t *testing.T) {
		db := &database.FakeDB{
			QueryRowFn: func(_ context.Context, _ string, _ ...any) pgx.Row {
				return &fakeUserRow{scanErr: pgx.ErrNoRows}
			},
		}
		u, err := AuthenticateUser(context.Background(), db, "ghost", "pw")
		require.ErrorIs(t, err, ErrInvalidCredentials)
		require.Nil(t, u)
	})
}
