package monetdbe

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

func restoreLogger(t *testing.T) {
	level, formatter, out := log.GetLevel(), log.StandardLogger().Formatter, log.StandardLogger().Out
	t.Cleanup(func() {
		log.SetLevel(level)
		log.SetFormatter(formatter)
		log.SetOutput(out)
	})
}

func TestLogConfigure(t *testing.T) {
	restoreLogger(t)

	path := filepath.Join(t.TempDir(), "monetdbe.log")
	cfg := LogConfig{Format: "json", Level: "debug", File: path}
	require.NoError(t, cfg.Configure())
	require.Equal(t, log.DebugLevel, log.GetLevel())

	log.WithField("dbdir", "/data").Info("connected")
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(b), `"dbdir":"/data"`)
	require.Contains(t, string(b), `"msg":"connected"`)
}

func TestLogConfigureErrors(t *testing.T) {
	restoreLogger(t)

	require.Error(t, (&LogConfig{Level: "loud"}).Configure())
	require.Error(t, (&LogConfig{Format: "xml"}).Configure())
	require.Error(t, (&LogConfig{File: filepath.Join(t.TempDir(), "missing", "x.log")}).Configure())
	require.NoError(t, (&LogConfig{File: "-"}).Configure())
}

func TestEngineErrorIsLogged(t *testing.T) {
	restoreLogger(t)

	var buf bytes.Buffer
	log.SetOutput(&buf)
	log.SetLevel(log.ErrorLevel)

	s, _ := newTestSession(t)
	_, err := s.Exec(`SELEC`)
	require.Error(t, err)
	require.Contains(t, buf.String(), "could not execute query")
}
