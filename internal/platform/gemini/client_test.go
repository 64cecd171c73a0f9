package gemini

import (
	"context"
	"errors"
	"testing"

	"github.com/phrazzld/pinyin-picturebook/internal/config"
	"github.com/phrazzld/pinyin-picturebook/internal/generation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewModelsWithoutAPIKey(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("GOOGLE_API_KEY", "")

	models, err := NewModels(context.Background(), config.LLMConfig{TextModel: "gemini-2.5-flash"})
	require.NoError(t, err, "a missing key is reported on first use, not at startup")

	g := NewStoryGenerator(models, "gemini-2.5-flash", testOptions(3))
	_, err = g.GenerateStory(context.Background(), "小猫钓鱼")

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMissingAPIKey))
	assert.Equal(t, generation.KindAuth, generation.KindOf(err))
	assert.True(t, generation.IsPermanent(err))
}

func TestPolicyFromConfig(t *testing.T) {
	cfg := config.Default().LLM
	p := PolicyFromConfig(cfg)
	assert.Equal(t, cfg.MaxAttempts, p.MaxAttempts)
	assert.Equal(t, cfg.BaseDelay, p.BaseDelay)
}
