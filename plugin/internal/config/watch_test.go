package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestWatch_ReloadsOnWrite(t *testing.T) {
	defer goleak.VerifyNone(t)

	l, _ := newTestLoader(t)
	require.NoError(t, l.Load())

	ctx, cancel := context.WithCancel(context.Background())
	changes := make(chan General, 16)
	done := make(chan error, 1)
	go func() {
		done <- l.Watch(ctx, func(g General, _ Text) {
			select {
			case changes <- g:
			default:
			}
		})
	}()

	// The watcher may not be registered yet; keep rewriting until a reload
	// with the new value arrives.
	path := filepath.Join(l.Dir(), GeneralFileName)
	require.Eventually(t, func() bool {
		if err := replaceFile(path, "maxAttempts: 11\n"); err != nil {
			return false
		}
		for {
			select {
			case g := <-changes:
				if g.MaxAttempts == 11 {
					return true
				}
			case <-time.After(100 * time.Millisecond):
				return false
			}
		}
	}, 5*time.Second, 50*time.Millisecond)

	assert.Equal(t, 11, l.General().MaxAttempts)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Watch did not return after cancel")
	}
}

func TestWatch_BrokenReloadKeepsPrevious(t *testing.T) {
	defer goleak.VerifyNone(t)

	l, _ := newTestLoader(t)
	require.NoError(t, l.Load())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	called := make(chan struct{}, 16)
	done := make(chan error, 1)
	go func() {
		done <- l.Watch(ctx, func(General, Text) { called <- struct{}{} })
	}()

	path := filepath.Join(l.Dir(), GeneralFileName)
	require.NoError(t, replaceFile(path, "timeoutLogin: 10 bananas\n"))

	// Give the watcher time to see the write; the failed reload must not
	// reach onChange.
	time.Sleep(300 * time.Millisecond)
	select {
	case <-called:
		t.Fatal("onChange called for a failed reload")
	default:
	}
	assert.Equal(t, DefaultGeneral(), l.General())

	cancel()
	require.NoError(t, <-done)
}

func TestWatch_MissingDirectory(t *testing.T) {
	l := New(nil, filepath.Join(t.TempDir(), "missing"))
	err := l.Watch(context.Background(), nil)
	require.Error(t, err)
}

// replaceFile swaps content in with a rename so the watcher never observes
// a truncated file.
func replaceFile(path, content string) error {
	tmp := filepath.Join(filepath.Dir(path), ".pending")
	if err := os.WriteFile(tmp, []byte(content), 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
