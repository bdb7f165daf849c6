package service

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mkurbatov/lessonhub-api/internal/catalog"
	"github.com/mkurbatov/lessonhub-api/internal/models"
	appErrors "github.com/mkurbatov/lessonhub-api/pkg/errors"
)

type memCacheRepo struct {
	values map[string][]byte
	sets   int
	gets   int
}

func newMemCacheRepo() *memCacheRepo {
	return &memCacheRepo{values: map[string][]byte{}}
}

func (m *memCacheRepo) Get(ctx context.Context, key string, dest interface{}) error {
	m.gets++
	raw, ok := m.values[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (m *memCacheRepo) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	m.sets++
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.values[key] = raw
	return nil
}

func (m *memCacheRepo) DeleteByPattern(ctx context.Context, pattern string) error {
	prefix := strings.TrimSuffix(pattern, "*")
	for key := range m.values {
		if strings.HasPrefix(key, prefix) {
			delete(m.values, key)
		}
	}
	return nil
}

func TestCacheServiceRoundTrip(t *testing.T) {
	repo := newMemCacheRepo()
	svc := NewCacheService(repo, nil, time.Minute, zap.NewNop(), true)

	var out string
	hit, err := svc.Get(context.Background(), "k1", &out)
	require.NoError(t, err)
	assert.False(t, hit)

	require.NoError(t, svc.Set(context.Background(), "k1", "value", 0))

	hit, err = svc.Get(context.Background(), "k1", &out)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, "value", out)
}

func TestCacheServiceDisabled(t *testing.T) {
	repo := newMemCacheRepo()
	svc := NewCacheService(repo, nil, time.Minute, zap.NewNop(), false)

	require.NoError(t, svc.Set(context.Background(), "k1", "value", 0))

	var out string
	hit, err := svc.Get(context.Background(), "k1", &out)
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Zero(t, repo.gets, "a disabled cache never reaches the repository")
	assert.Zero(t, repo.sets)
}

func TestCacheServiceInvalidate(t *testing.T) {
	repo := newMemCacheRepo()
	svc := NewCacheService(repo, nil, time.Minute, zap.NewNop(), true)

	require.NoError(t, svc.Set(context.Background(), "availability:t-1:a", 1, 0))
	require.NoError(t, svc.Set(context.Background(), "availability:t-2:a", 2, 0))

	require.NoError(t, svc.Invalidate(context.Background(), "availability:t-1:*"))
	assert.NotContains(t, repo.values, "availability:t-1:a")
	assert.Contains(t, repo.values, "availability:t-2:a")
}

func TestFindFreeSlotsUsesCache(t *testing.T) {
	teacherRepo := &availTeacherRepoMock{
		teachers: map[string]*models.Teacher{"t-1": {ID: "t-1"}},
		hours:    map[string]map[int]*models.WorkingHours{"t-1": mondayHours("t-1", "13:00", "15:00")},
	}
	timelineRepo := &countingTimelineRepo{inner: &availTimelineRepoMock{}}
	repo := newMemCacheRepo()
	service := NewAvailabilityService(
		teacherRepo,
		timelineRepo,
		catalog.Default(),
		NewCacheService(repo, nil, time.Minute, zap.NewNop(), true),
		nil,
		validator.New(),
		zap.NewNop(),
		30*time.Minute,
		7,
	)

	first, err := service.FindFreeSlots(context.Background(), "t-1", monday, SlotOptions{})
	require.NoError(t, err)
	second, err := service.FindFreeSlots(context.Background(), "t-1", monday, SlotOptions{})
	require.NoError(t, err)

	assert.Equal(t, first.Clocks(), second.Clocks())
	assert.Equal(t, 1, timelineRepo.calls, "the second lookup must come from cache")

	service.InvalidateTeacher(context.Background(), "t-1")
	_, err = service.FindFreeSlots(context.Background(), "t-1", monday, SlotOptions{})
	require.NoError(t, err)
	assert.Equal(t, 2, timelineRepo.calls, "invalidation forces a recompute")
}

type countingTimelineRepo struct {
	inner *availTimelineRepoMock
	calls int
}

func (c *countingTimelineRepo) ListByTeacherAndRange(ctx context.Context, teacherID string, from, to time.Time) ([]models.TimelineEntry, error) {
	c.calls++
	return c.inner.ListByTeacherAndRange(ctx, teacherID, from, to)
}
