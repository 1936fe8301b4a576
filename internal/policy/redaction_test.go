package policy

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedactPII(t *testing.T) {
	input := "Email me at sam@example.com or +1 (555) 123-9876 and use 4242 4242 4242 4242."
	out, changed := RedactPII(input)
	require.True(t, changed)
	for _, marker := range []string{"[REDACTED_EMAIL]", "[REDACTED_PHONE]", "[REDACTED_CARD]"} {
		assert.Contains(t, out, marker)
	}
}

func TestRedactPIILeavesPlainText(t *testing.T) {
	out, changed := RedactPII("Mi hijo tiene berrinches todos los días")
	assert.False(t, changed, "text without PII: %q", out)
}

func TestPreview(t *testing.T) {
	got := Preview("Hola,\n escríbeme a mama@example.com por favor", 20)
	assert.NotContains(t, got, "mama@example.com")
	assert.NotContains(t, got, "\n")
	assert.True(t, strings.HasSuffix(got, "…"), "want truncated with ellipsis, got %q", got)
	assert.Equal(t, "Hola", Preview("Hola", 20))
}
