package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestWatcherDeliversUpdates(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "env.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("team_size: 1\n"), 0644))

	watcher, err := Watch(cfgPath, zaptest.NewLogger(t))
	require.NoError(t, err)
	defer watcher.Close()

	require.NoError(t, os.WriteFile(cfgPath, []byte("team_size: 2\n"), 0644))

	var got *EnvConfig
	require.Eventually(t, func() bool {
		select {
		case got = <-watcher.Updates():
			return true
		default:
			return false
		}
	}, 5*time.Second, 20*time.Millisecond)
	require.Equal(t, IntList{2}, got.TeamSize)
}

func TestWatcherDropsInvalidUpdates(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "env.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("team_size: 1\n"), 0644))

	watcher, err := Watch(cfgPath, zaptest.NewLogger(t))
	require.NoError(t, err)
	defer watcher.Close()

	// out of range, must not be delivered
	require.NoError(t, os.WriteFile(cfgPath, []byte("team_size: 99\n"), 0644))
	time.Sleep(200 * time.Millisecond)

	select {
	case cfg := <-watcher.Updates():
		t.Fatalf("unexpected update delivered: %+v", cfg)
	default:
	}

	// the watcher survives the bad write and picks up the next good one
	require.NoError(t, os.WriteFile(cfgPath, []byte("team_size: 3\n"), 0644))
	var got *EnvConfig
	require.Eventually(t, func() bool {
		select {
		case got = <-watcher.Updates():
			return true
		default:
			return false
		}
	}, 5*time.Second, 20*time.Millisecond)
	require.Equal(t, IntList{3}, got.TeamSize)
}
