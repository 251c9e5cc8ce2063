package sanitize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestText(t *testing.T) {
	assert.Equal(t, "Kailua near the beach", Text("  <b>Kailua</b>\n near   the beach "))
	assert.Equal(t, "alert(1)", Text("&lt;script&gt;alert(1)&lt;/script&gt;"))
}

func TestEmail(t *testing.T) {
	assert.Equal(t, "visitor@example.com", Email("  Visitor@Example.COM "))
}
