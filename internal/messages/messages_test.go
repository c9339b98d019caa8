package messages

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/BatmanBruc/rtx-toolkit-bot/types"
)

func TestEscape(t *testing.T) {
	assert.Equal(t, "&lt;b&gt;Tom &amp; Jerry&#39;s&lt;/b&gt;", Escape("  <b>Tom & Jerry's</b> "))
}

func TestTitle(t *testing.T) {
	tests := []struct {
		icon, text, want string
	}{
		{"🔧", "Admin Panel", "🔧 <b>Admin Panel</b>"},
		{"", "Plain", "<b>Plain</b>"},
		{"⚠️", "A <tag>", "⚠️ <b>A &lt;tag&gt;</b>"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Title(tt.icon, tt.text))
	}
}

func TestHeadersUseTitle(t *testing.T) {
	assert.Equal(t, Title("🔧", "Admin Panel"), AdminPanel())
	assert.Contains(t, Error(types.ErrAccessDenied), Title("⛔", "Access denied"))
	assert.Contains(t, Status(types.Result{Limit: 5}), Title("📊", "Your Status"))
}
