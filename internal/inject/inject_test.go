package inject

import (
	"context"
	"testing"
	"time"

	"github.com/dmorgan81/imagine/internal/handler"
	"github.com/dmorgan81/imagine/internal/image"
	"github.com/dmorgan81/imagine/internal/orchestrate"
	"github.com/dmorgan81/imagine/internal/prompt"
	"github.com/dmorgan81/imagine/internal/store"
	"github.com/samber/do"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func env(vars map[string]string) func(string) string {
	return func(k string) string { return vars[k] }
}

func TestOrchestratorConfigDefaults(t *testing.T) {
	c, err := orchestratorConfig(env(nil))
	require.NoError(t, err)
	assert.Equal(t, orchestrate.DefaultConfig(), c)
}

func TestOrchestratorConfig(t *testing.T) {
	c, err := orchestratorConfig(env(map[string]string{
		"IMAGE_MODE":    "economy",
		"DISPATCH":      "sequential",
		"VARIATION":     "suffix",
		"ON_TIMEOUT":    "fail",
		"IMAGE_COUNT":   "3",
		"MAX_DURATION":  "90",
		"ECONOMY_MODEL": "dall-e-2-hd",
		"IMAGE_SIZE":    "256x256",
	}))
	require.NoError(t, err)
	assert.Equal(t, orchestrate.Economy, c.Mode)
	assert.Equal(t, orchestrate.Sequential, c.Dispatch)
	assert.Equal(t, prompt.Suffix, c.Variation)
	assert.Equal(t, orchestrate.Fail, c.OnTimeout)
	assert.Equal(t, 3, c.Count)
	assert.Equal(t, 90*time.Second, c.MaxDuration)
	assert.Equal(t, "dall-e-2-hd", c.EconomyModel)
	assert.Equal(t, "256x256", c.Size)
}

func TestOrchestratorConfigInvalid(t *testing.T) {
	_, err := orchestratorConfig(env(map[string]string{
		"DISPATCH":     "eventually",
		"IMAGE_COUNT":  "four",
		"MAX_DURATION": "soon",
	}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "dispatch")
	assert.Contains(t, err.Error(), "IMAGE_COUNT")
	assert.Contains(t, err.Error(), "MAX_DURATION")

	_, err = orchestratorConfig(env(map[string]string{"IMAGE_COUNT": "0"}))
	assert.Error(t, err)
}

func TestParseDuration(t *testing.T) {
	d, err := parseDuration("2m")
	require.NoError(t, err)
	assert.Equal(t, 2*time.Minute, d)
}

func TestSetup(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("ARCHIVE_BUCKET", "")
	t.Setenv("ARCHIVE_DIR", t.TempDir())
	t.Setenv("ARCHIVE_BASE_URL", "")
	t.Setenv("PORT", "9090")

	injector := Setup(context.Background())
	defer func() { _ = injector.Shutdown() }()

	assert.NotNil(t, do.MustInvoke[*handler.Handler](injector))

	gen, ok := do.MustInvoke[image.Generator](injector).(*image.OpenAIGenerator)
	require.True(t, ok)
	assert.Equal(t, "sk-test", gen.Key)
	assert.Equal(t, image.DefaultBaseURL, gen.BaseURL)

	archiver := do.MustInvoke[*store.Archiver](injector)
	assert.True(t, archiver.Enabled())
	assert.Equal(t, "http://localhost:9090/images", archiver.BaseURL)
}

func TestSetupWithoutKey(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("OPENAI_API_KEY_PARAM", "")
	t.Setenv("ARCHIVE_BUCKET", "")
	t.Setenv("ARCHIVE_DIR", "")

	injector := Setup(context.Background())
	defer func() { _ = injector.Shutdown() }()

	h := do.MustInvoke[*handler.Handler](injector)
	status, out := h.Generate(context.Background(), []byte(`{"prompt":"cat"}`))
	assert.Equal(t, 500, status)
	assert.Equal(t, "Server configuration error: API key is missing", out.Error)
	assert.False(t, do.MustInvoke[*store.Archiver](injector).Enabled())
}
