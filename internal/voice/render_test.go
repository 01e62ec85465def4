package voice

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() RenderConfig {
	return DefaultRenderConfig("/webhook/voice/turn")
}

func TestRenderSpeakAndListen(t *testing.T) {
	markup, err := Render([]Action{
		Speak{Text: "Hola, ¿en qué puedo ayudarte?"},
		Listen{},
	}, testConfig())
	require.NoError(t, err)

	assert.Contains(t, markup, "<Response>")
	assert.Contains(t, markup, "Hola, ¿en qué puedo ayudarte?")
	assert.Contains(t, markup, `voice="alice"`)
	assert.Contains(t, markup, `language="es-ES"`)
	assert.Contains(t, markup, "<Gather")
	assert.Contains(t, markup, `input="speech"`)
	assert.Contains(t, markup, `action="/webhook/voice/turn"`)
	assert.Contains(t, markup, `actionOnEmptyResult="true"`)
}

func TestRenderSpeakAndHangup(t *testing.T) {
	markup, err := Render([]Action{
		Speak{Text: "Hasta pronto."},
		Hangup{},
	}, testConfig())
	require.NoError(t, err)

	assert.Contains(t, markup, "Hasta pronto.")
	assert.Contains(t, markup, "<Hangup")
	assert.NotContains(t, markup, "<Gather")
}

func TestRenderRedirect(t *testing.T) {
	markup, err := Render([]Action{
		Redirect{URL: "https://example.com/webhook/voice"},
	}, testConfig())
	require.NoError(t, err)

	assert.Contains(t, markup, "<Redirect")
	assert.Contains(t, markup, "https://example.com/webhook/voice")
	assert.Contains(t, markup, `method="POST"`)
}

func TestRenderEmptySequence(t *testing.T) {
	markup, err := Render(nil, testConfig())
	require.NoError(t, err)
	assert.Contains(t, markup, "<Response")
}
