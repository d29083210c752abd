package previewcache

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ginjaninja78/oc-consolidator/internal/config"
	"github.com/ginjaninja78/oc-consolidator/internal/types"
	pkgerrors "github.com/ginjaninja78/oc-consolidator/pkg/errors"
)

type mockCmdable struct {
	data map[string]string
	ttls map[string]time.Duration
}

func newMockCmdable() *mockCmdable {
	return &mockCmdable{data: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (m *mockCmdable) Ping(context.Context) *redis.StatusCmd {
	return redis.NewStatusResult("PONG", nil)
}

func (m *mockCmdable) Set(_ context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd {
	switch v := value.(type) {
	case []byte:
		m.data[key] = string(v)
	default:
		m.data[key] = fmt.Sprint(v)
	}
	m.ttls[key] = expiration
	return redis.NewStatusResult("OK", nil)
}

func (m *mockCmdable) Get(_ context.Context, key string) *redis.StringCmd {
	v, ok := m.data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (m *mockCmdable) GetDel(ctx context.Context, key string) *redis.StringCmd {
	cmd := m.Get(ctx, key)
	delete(m.data, key)
	return cmd
}

func (m *mockCmdable) Del(_ context.Context, keys ...string) *redis.IntCmd {
	var n int64
	for _, k := range keys {
		if _, ok := m.data[k]; ok {
			delete(m.data, k)
			n++
		}
	}
	return redis.NewIntResult(n, nil)
}

func sampleEntry() Entry {
	return Entry{
		MainFile:   "oc_1.xlsx",
		DetailFile: "oc_2.xlsx",
		Records: []types.ConsolidatedRecord{{
			MainRecord: types.MainRecord{OrderNumber: "OC-100", SupplierName: "Acme", Amount: decimal.NewFromInt(50000), Date: "2024-03-05"},
			Details:    []types.DetailRecord{{OrderNumber: "OC-100", CostCenterCode: "CC-01"}},
		}},
	}
}

func TestSaveLoadTake(t *testing.T) {
	ctx := context.Background()
	mock := newMockCmdable()
	cache := &Cache{store: mock, ttl: 10 * time.Minute}

	token, err := cache.Save(ctx, sampleEntry())
	require.NoError(t, err)
	require.NotEmpty(t, token)

	key := cache.PreviewKey(token)
	assert.Equal(t, "occ:preview:"+token, key)
	assert.Equal(t, 10*time.Minute, mock.ttls[key])

	loaded, err := cache.Load(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, token, loaded.Token)
	assert.False(t, loaded.CreatedAt.IsZero())
	require.Len(t, loaded.Records, 1)
	assert.True(t, loaded.Records[0].Amount.Equal(decimal.NewFromInt(50000)))

	taken, err := cache.Take(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, "oc_1.xlsx", taken.MainFile)

	_, err = cache.Take(ctx, token)
	assert.True(t, pkgerrors.Is(err, pkgerrors.CodeNotFound))
}

func TestLoadRejectsMalformedToken(t *testing.T) {
	cache := &Cache{store: newMockCmdable(), ttl: time.Minute}
	_, err := cache.Load(context.Background(), "../../etc")
	assert.True(t, pkgerrors.Is(err, pkgerrors.CodeValidation))
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	cache := &Cache{store: newMockCmdable(), ttl: time.Minute}

	token, err := cache.Save(ctx, sampleEntry())
	require.NoError(t, err)
	require.NoError(t, cache.Delete(ctx, token))

	_, err = cache.Load(ctx, token)
	assert.True(t, pkgerrors.Is(err, pkgerrors.CodeNotFound))
}

func TestUninitializedCache(t *testing.T) {
	cache := &Cache{}
	_, err := cache.Save(context.Background(), Entry{})
	assert.Error(t, err)
	assert.Error(t, cache.Ping(context.Background()))
	assert.NoError(t, cache.Close())
}

func TestNewRequiresURL(t *testing.T) {
	_, err := New(context.Background(), config.RedisConfig{})
	assert.Error(t, err)
	assert.Equal(t, defaultTTL, ttlOrDefault(0))
}
