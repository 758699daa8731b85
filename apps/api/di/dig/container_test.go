package dig_container

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	echoapi "github.com/trezcool/kazi/apps/api/echo"
	"github.com/trezcool/kazi/core"
	"github.com/trezcool/kazi/core/member"
)

func setenv(t *testing.T, key, value string) {
	prev, ok := os.LookupEnv(key)
	require.NoError(t, os.Setenv(key, value))
	t.Cleanup(func() {
		if ok {
			_ = os.Setenv(key, prev)
		} else {
			_ = os.Unsetenv(key)
		}
	})
}

func TestNew(t *testing.T) {
	setenv(t, "ENV", "TEST")
	setenv(t, "TEST_DATABASE_INMEMORY", "true")
	setenv(t, "TEST_DEBUG", "true")

	c := New()
	err := c.Invoke(func(conf *core.Config, repo member.Repository, closeDB CloseDB, server *echoapi.Server) {
		assert.True(t, conf.TestMode)
		assert.True(t, conf.Database.InMemory)
		assert.NotNil(t, repo)
		assert.NotNil(t, server)
		assert.NoError(t, closeDB())
	})
	require.NoError(t, err)
}
