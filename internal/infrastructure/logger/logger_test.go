package logger

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiebiao/bookstore-orderengine/internal/infrastructure/config"
)

func TestNew_JSONToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	l, cleanup, err := New(config.LogConfig{Level: "debug", Format: "json", Output: path})
	require.NoError(t, err)
	t.Cleanup(func() {
		l.SetOutput(os.Stdout)
		l.SetFormatter(&logrus.TextFormatter{})
		l.SetLevel(logrus.InfoLevel)
	})

	l.WithField("order_id", "o-1").Debug("订单已创建")
	cleanup()

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &entry))
	assert.Equal(t, "o-1", entry["order_id"])
	assert.Equal(t, "debug", entry["level"])
}

func TestNew_InvalidLevelFallsBackToInfo(t *testing.T) {
	l, cleanup, err := New(config.LogConfig{Level: "verbose", Output: "stderr"})
	require.NoError(t, err)
	defer cleanup()
	t.Cleanup(func() { l.SetOutput(os.Stdout) })

	assert.Equal(t, logrus.InfoLevel, l.GetLevel())
}
