package privilege

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRequire(t *testing.T) {
	yes := func() bool { return true }
	no := func() bool { return false }

	assert.NoError(t, Require(false, no))
	assert.NoError(t, Require(true, yes))
	assert.ErrorIs(t, Require(true, no), ErrNotPrivileged)
}

func TestElevatedMatchesEUID(t *testing.T) {
	assert.Equal(t, os.Geteuid() == 0, Elevated())
}
