package domain_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/phrazzld/pinyin-picturebook/internal/domain"
	"github.com/phrazzld/pinyin-picturebook/internal/domain/domaintest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewBook(t *testing.T) {
	t.Parallel()

	b, err := domain.NewBook("  龟兔赛跑的故事 ", domaintest.Story(4))

	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, b.ID)
	assert.Equal(t, "龟兔赛跑的故事", b.SourceText)
	assert.False(t, b.CreatedAt.IsZero())
	assert.NotNil(t, b.Images)

	sum := b.Summary()
	assert.Equal(t, b.ID, sum.ID)
	assert.Equal(t, "龟兔赛跑", sum.Title)
	assert.Equal(t, 4, sum.PageCount)
}

func TestNewBookRejectsInvalid(t *testing.T) {
	t.Parallel()

	_, err := domain.NewBook("  ", domaintest.Story(4))
	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.ErrorIs(t, err, domain.ErrEmptyText)

	_, err = domain.NewBook("text", domaintest.Story(2))
	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.ErrorIs(t, err, domain.ErrInvalidStory)
}

func TestBookStoryDataAttachesImages(t *testing.T) {
	t.Parallel()

	b, err := domain.NewBook("text", domaintest.Story(4))
	require.NoError(t, err)
	b.Images[2] = "data:image/png;base64,AAAA"

	s := b.StoryData()

	assert.False(t, s.Pages[0].HasImage())
	assert.Equal(t, "data:image/png;base64,AAAA", s.Pages[2].ImageData)
	assert.Equal(t, b.Story, s.Generated())
}
