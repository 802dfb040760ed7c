package metadata

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/dmitrijs2005/docverify/internal/dbx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`CREATE TABLE metadata (key TEXT PRIMARY KEY, value BLOB NOT NULL);`)
	require.NoError(t, err)
	return db
}

func TestPut_InsertsAndOverwrites(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, r.Put(ctx, map[string][]byte{
		"username":      []byte("ana"),
		"access_token":  []byte("a1"),
		"refresh_token": []byte("r1"),
	}))
	require.NoError(t, r.Put(ctx, map[string][]byte{"access_token": []byte("a2")}))

	m, err := r.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string][]byte{
		"username":      []byte("ana"),
		"access_token":  []byte("a2"),
		"refresh_token": []byte("r1"),
	}, m)
}

func TestPut_EmptyAndNilValues(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, r.Put(ctx, nil), "nothing to write")
	require.NoError(t, r.Put(ctx, map[string][]byte{"refresh_token": nil}))

	v, err := r.Get(ctx, "refresh_token")
	require.NoError(t, err)
	assert.Empty(t, v)
}

func TestGet_MissingKey(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))

	v, err := r.Get(context.Background(), "absent")
	require.NoError(t, err)
	assert.Nil(t, v)
}

func TestDelete(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, r.Put(ctx, map[string][]byte{
		"username":      []byte("ana"),
		"access_token":  []byte("a"),
		"refresh_token": {0xBB, 0xCC},
	}))

	require.NoError(t, r.Delete(ctx, "username", "access_token", "absent"))
	require.NoError(t, r.Delete(ctx), "no keys is a no-op")

	m, err := r.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string][]byte{"refresh_token": {0xBB, 0xCC}}, m)
}

func TestWritesInsideRolledBackTx(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()

	err := dbx.WithTx(ctx, db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := NewSQLiteRepository(tx).Put(ctx, map[string][]byte{"access_token": []byte("a")}); err != nil {
			return err
		}
		return errors.New("abort")
	})
	require.Error(t, err)

	v, err := NewSQLiteRepository(db).Get(ctx, "access_token")
	require.NoError(t, err)
	assert.Nil(t, v)
}

func TestErrorsNameTheKeys(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()
	require.NoError(t, db.Close())

	_, err := r.Get(ctx, "k")
	assert.ErrorContains(t, err, `get "k"`)
	assert.ErrorContains(t, r.Put(ctx, map[string][]byte{"b": nil, "a": nil}), "put a,b")
	assert.ErrorContains(t, r.Delete(ctx, "k1", "k2"), "delete k1,k2")
	_, err = r.List(ctx)
	assert.ErrorContains(t, err, "list")
}
