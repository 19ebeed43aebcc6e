package cli

import (
	"bytes"
	"context"
	"encoding/base64"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/aretw0/chatlist/internal/config"
	"github.com/aretw0/chatlist/internal/logging"
	"github.com/aretw0/chatlist/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateManager_Memory(t *testing.T) {
	mgr, closeStore, err := createManager(config.Default(), logging.NewNop())
	require.NoError(t, err)
	defer closeStore()

	_, err = mgr.Update(context.Background(), "a", []domain.Cell{{RoomID: "1", Title: "x"}})
	require.NoError(t, err)
	ids, err := mgr.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, ids)
}

func TestCreateManager_Redis(t *testing.T) {
	mr := miniredis.RunT(t)

	cfg := config.Default()
	cfg.Store = "redis"
	cfg.Redis.Addr = mr.Addr()
	cfg.Redis.Prefix = "test:"

	mgr, closeStore, err := createManager(cfg, logging.NewNop())
	require.NoError(t, err)
	defer closeStore()

	_, err = mgr.Update(context.Background(), "inbox", []domain.Cell{{RoomID: "1", Title: "x"}})
	require.NoError(t, err)
	assert.True(t, mr.Exists("test:list:inbox"))

	snapshot, err := mgr.Load(context.Background(), "inbox")
	require.NoError(t, err)
	assert.Equal(t, uint64(1), snapshot.Version)
}

func TestCreateManager_UnknownStore(t *testing.T) {
	cfg := config.Default()
	cfg.Store = "etcd"
	_, _, err := createManager(cfg, logging.NewNop())
	assert.Error(t, err)
}

func TestCreateLogger(t *testing.T) {
	logger, err := CreateLogger("debug")
	require.NoError(t, err)
	assert.NotNil(t, logger)

	_, err = CreateLogger("loud")
	assert.Error(t, err)
}

func TestCreateManager_Encrypted(t *testing.T) {
	mr := miniredis.RunT(t)

	cfg := config.Default()
	cfg.Store = "redis"
	cfg.Redis.Addr = mr.Addr()
	cfg.EncryptionKey = base64.StdEncoding.EncodeToString(bytes.Repeat([]byte{7}, 32))

	mgr, closeStore, err := createManager(cfg, logging.NewNop())
	require.NoError(t, err)
	defer closeStore()

	ctx := context.Background()
	_, err = mgr.Update(ctx, "inbox", []domain.Cell{{RoomID: "1", Title: "secret title"}})
	require.NoError(t, err)

	raw, err := mr.Get(cfg.Redis.Prefix + "list:inbox")
	require.NoError(t, err)
	assert.NotContains(t, raw, "secret title")

	snapshot, err := mgr.Load(ctx, "inbox")
	require.NoError(t, err)
	assert.Equal(t, "secret title", snapshot.Cells[0].Title)
}

func TestCreateManager_BadEncryptionKey(t *testing.T) {
	cfg := config.Default()
	cfg.EncryptionKey = "not base64!"
	_, _, err := createManager(cfg, logging.NewNop())
	assert.ErrorContains(t, err, "encryption_key")

	cfg.EncryptionKey = base64.StdEncoding.EncodeToString([]byte("short"))
	_, _, err = createManager(cfg, logging.NewNop())
	assert.Error(t, err)
}
