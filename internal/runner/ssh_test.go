package runner

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSSHRunner_Target(t *testing.T) {
	assert.Equal(t, "web1.example.com", NewSSHRunner("web1.example.com", "").target())
	assert.Equal(t, "deploy@web1.example.com", NewSSHRunner("web1.example.com", "deploy").target())
}

func TestShellQuote(t *testing.T) {
	assert.Equal(t, "'cd /srv/app'", shellQuote("cd /srv/app"))
	assert.Equal(t, `'it'\''s'`, shellQuote("it's"))
}
