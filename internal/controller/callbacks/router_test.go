package callbacks

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPrefixOf(t *testing.T) {
	assert.Equal(t, "accept_req:", prefixOf("accept_req:12"))
	assert.Equal(t, "propose_pick:", prefixOf("propose_pick:1:2:3"))
	assert.Equal(t, "noop", prefixOf("noop"))
}

func TestRoutes_PrefixesAreDistinct(t *testing.T) {
	for prefix := range routes {
		assert.True(t, strings.HasSuffix(prefix, ":"), prefix)
		assert.Equal(t, prefix, prefixOf(prefix+"1"), "prefix must contain a single colon")
	}
}

func TestCounterparty(t *testing.T) {
	assert.Equal(t, int64(2), counterparty(1, 2, 1))
	assert.Equal(t, int64(1), counterparty(1, 2, 2))
}
