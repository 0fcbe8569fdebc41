package debug

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInitWithWriter(t *testing.T) {
	defer Init(false)

	var buf bytes.Buffer
	InitWithWriter(&buf, true, false)
	assert.True(t, Enabled())

	Debug("resolved path", "model", "Category", "path", "name_pl")
	assert.Contains(t, buf.String(), "resolved path")
	assert.Contains(t, buf.String(), "path=name_pl")

	buf.Reset()
	InitWithWriter(&buf, false, true)
	Debug("hidden")
	Error("shown", "code", 7)
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"msg":"shown"`)
}
