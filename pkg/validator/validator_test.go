package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Name  string `validate:"required,max=5"`
	Slug  string `validate:"omitempty,slug"`
	Color string `validate:"omitempty,hexcolor"`
}

func TestValidateCustomTags(t *testing.T) {
	assert.NoError(t, Validate(sample{Name: "ok", Slug: "some-slug-2", Color: "#a1b2c3"}))

	err := Validate(sample{Name: "ok", Slug: "Bad Slug"})
	require.Error(t, err)
	assert.Contains(t, Message(err), "Slug may only contain")

	err = Validate(sample{Name: "toolong"})
	require.Error(t, err)
	assert.Equal(t, "Name must be at most 5 characters", Message(err))
}

func TestIsSlug(t *testing.T) {
	assert.True(t, IsSlug("whatsapp-plus"))
	assert.False(t, IsSlug("-leading"))
	assert.False(t, IsSlug("double--dash"))
	assert.False(t, IsSlug(""))
}

func TestSanitizers(t *testing.T) {
	html := `<p onclick="x()">Hi <script>alert(1)</script><a href="https://example.com">link</a></p>`
	clean := SanitizeHTML(html)
	assert.NotContains(t, clean, "script")
	assert.NotContains(t, clean, "onclick")
	assert.Contains(t, clean, "<p>")

	assert.Equal(t, "Hi there", SanitizeText("<b>Hi</b> there"))
	assert.Equal(t, "don&#39;t &amp; won&#39;t", SanitizeText("don't & won't"))

	for _, encoded := range []string{
		"&lt;img src=x onerror=alert(1)&gt;",
		"&#60;script&#62;alert(1)&#60;/script&#62;",
	} {
		clean := SanitizeText(encoded)
		assert.NotContains(t, clean, "<", encoded)
		assert.NotContains(t, clean, ">", encoded)
	}
}
