package cli

import (
	"bytes"
	"context"
	"os"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func waitDone(t *testing.T, ctx context.Context) {
	t.Helper()
	select {
	case <-ctx.Done():
	case <-time.After(time.Second):
		t.Fatal("context was not cancelled")
	}
}

func TestSignalContext_RecordsSignal(t *testing.T) {
	ch := make(chan os.Signal, 1)
	sc := watchSignals(context.Background(), ch)
	defer sc.Stop()
	assert.Nil(t, sc.Signal())

	ch <- syscall.SIGTERM
	waitDone(t, sc)
	assert.Equal(t, syscall.SIGTERM, sc.Signal())
}

func TestSignalContext_Stop(t *testing.T) {
	sc := NewSignalContext(context.Background())
	sc.Stop()

	waitDone(t, sc)
	assert.ErrorIs(t, sc.Err(), context.Canceled)
	assert.Nil(t, sc.Signal())
}

func TestSignalContext_ParentCancel(t *testing.T) {
	parent, cancel := context.WithCancel(context.Background())
	sc := watchSignals(parent, make(chan os.Signal))
	cancel()

	waitDone(t, sc)
	assert.Nil(t, sc.Signal())
}

func TestPrintSystemMessage(t *testing.T) {
	var buf bytes.Buffer
	printSystemMessage(&buf, "listening on :%d", 8080)
	require.Equal(t, ">>> listening on :8080\n", buf.String())
}
