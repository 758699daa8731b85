package logsvc

import (
	"errors"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/kazi/core"
	"github.com/trezcool/kazi/core/member"
)

func TestRollbarLogger(t *testing.T) {
	std, hook := test.NewNullLogger()
	std.SetLevel(logrus.DebugLevel)
	logger := NewRollbarLogger(std, &core.Config{Env: "TEST"})
	logger.Enable(false)

	m := member.Member{ID: "m1", Name: "Amani", Email: "amani@kazi.test"}
	other := member.Member{ID: "m2"}
	err := errors.New("boom")

	logger.Error("notifying member", err, map[string]interface{}{"task": "t1"}, m, other)
	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, logrus.ErrorLevel, entry.Level)
	assert.Equal(t, "notifying member", entry.Message)
	assert.Equal(t, err, entry.Data[logrus.ErrorKey])
	assert.Equal(t, "t1", entry.Data["task"])
	assert.Equal(t, "m1", entry.Data["member"])

	logger.Debug("plain")
	assert.Equal(t, logrus.DebugLevel, hook.LastEntry().Level)
	assert.Empty(t, hook.LastEntry().Data)

	logger.Warn("careful")
	logger.Info("fyi")
	assert.Len(t, hook.AllEntries(), 4)
}

func TestNewStdLogger(t *testing.T) {
	assert.Equal(t, logrus.DebugLevel, NewStdLogger(&core.Config{Debug: true}).GetLevel())
	assert.Equal(t, logrus.InfoLevel, NewStdLogger(&core.Config{}).GetLevel())
}
