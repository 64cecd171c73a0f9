//go:build integration

package postgres_test

import (
	"context"
	"database/sql"
	"testing"

	"github.com/phrazzld/pinyin-picturebook/internal/platform/postgres"
	"github.com/phrazzld/pinyin-picturebook/internal/store"
	"github.com/phrazzld/pinyin-picturebook/internal/testdb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBookStoreIntegration(t *testing.T) {
	db := testdb.GetTestDBWithT(t)
	ctx := context.Background()

	s := postgres.NewBookStore(db, testdb.Logger(t))
	b := testBook(t)
	b.Images[0] = "data:image/png;base64,AAAA"
	t.Cleanup(func() {
		_, _ = db.ExecContext(context.Background(), "DELETE FROM books WHERE id = $1", b.ID)
	})

	require.NoError(t, s.Create(ctx, b))
	assert.ErrorIs(t, s.Create(ctx, b), store.ErrDuplicate)

	require.NoError(t, s.SavePageImage(ctx, b.ID, 2, "data:image/png;base64,CCCC"))
	assert.ErrorIs(t, s.SavePageImage(ctx, b.ID, 42, "x"), store.ErrBookNotFound)

	got, err := s.GetByID(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, b.Story, got.Story)
	assert.Equal(t, "data:image/png;base64,AAAA", got.Images[0])
	assert.Equal(t, "data:image/png;base64,CCCC", got.Images[2])

	list, err := s.List(ctx, 100)
	require.NoError(t, err)
	var found bool
	for _, summary := range list {
		if summary.ID == b.ID {
			found = true
			assert.Equal(t, len(b.Story.Pages), summary.PageCount)
		}
	}
	assert.True(t, found)
}

func TestSchemaCascadesPageDeletes(t *testing.T) {
	db := testdb.GetTestDBWithT(t)

	testdb.WithTx(t, db, func(t *testing.T, tx *sql.Tx) {
		b := testBook(t)
		_, err := tx.Exec(`INSERT INTO books (id, title, source_text, quiz) VALUES ($1, $2, $3, '[]')`,
			b.ID, b.Story.Title, b.SourceText)
		require.NoError(t, err)
		_, err = tx.Exec(`INSERT INTO book_pages (book_id, page_index, image_prompt, content) VALUES ($1, 0, 'p', '[]')`, b.ID)
		require.NoError(t, err)

		_, err = tx.Exec(`INSERT INTO book_pages (book_id, page_index, image_prompt, content) VALUES ($1, -1, 'p', '[]')`, b.ID)
		require.Error(t, err, "negative page indexes are rejected")
	})

	testdb.WithTx(t, db, func(t *testing.T, tx *sql.Tx) {
		b := testBook(t)
		_, err := tx.Exec(`INSERT INTO books (id, title, source_text, quiz) VALUES ($1, $2, $3, '[]')`,
			b.ID, b.Story.Title, b.SourceText)
		require.NoError(t, err)
		_, err = tx.Exec(`INSERT INTO book_pages (book_id, page_index, image_prompt, content) VALUES ($1, 0, 'p', '[]')`, b.ID)
		require.NoError(t, err)

		_, err = tx.Exec(`DELETE FROM books WHERE id = $1`, b.ID)
		require.NoError(t, err)

		var pages int
		require.NoError(t, tx.QueryRow(`SELECT count(*) FROM book_pages WHERE book_id = $1`, b.ID).Scan(&pages))
		assert.Zero(t, pages)
	})
}
