package markdown

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRenderFormatsMarkdown(t *testing.T) {
	out := string(Render("**tilde diacrítica**\n\n1. *él*\n2. *el*"))

	assert.Contains(t, out, "<strong>tilde diacrítica</strong>")
	assert.Contains(t, out, "<ol>")
	assert.Contains(t, out, "<em>él</em>")
}

func TestRenderDropsRawHTML(t *testing.T) {
	out := string(Render(`hola <script>alert("x")</script>`))

	assert.NotContains(t, out, "<script>")
	assert.Contains(t, out, "hola")
}

func TestRenderHardWraps(t *testing.T) {
	out := string(Render("línea uno\nlínea dos"))
	assert.Contains(t, out, "<br")
}
