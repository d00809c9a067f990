package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateSlug(t *testing.T) {
	cases := map[string]string{
		"WhatsApp Plus v17.20 MOD":   "whatsapp-plus-v17-20-mod",
		"  Café Crème  ":             "cafe-creme",
		"Tools & Utilities":          "tools-and-utilities",
		"Straße Øresund":             "strasse-oresund",
		"---":                        "",
		"Notepad++ for Android (PRO)": "notepad-plus-plus-for-android-pro",
	}
	for input, expected := range cases {
		assert.Equal(t, expected, GenerateSlug(input), input)
	}
}

func TestRenderMarkdown(t *testing.T) {
	out, err := RenderMarkdown("# Title\n\nSee https://example.com and **bold**")
	require.NoError(t, err)
	assert.Contains(t, out, "<h1>Title</h1>")
	assert.Contains(t, out, "<strong>bold</strong>")
	assert.Contains(t, out, `<a href="https://example.com">`)
}
