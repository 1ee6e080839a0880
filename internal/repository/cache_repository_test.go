package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/noah-isme/alumni-mentorship-api/pkg/errors"
)

func TestCacheRepositoryWithoutClient(t *testing.T) {
	repo := NewCacheRepository(nil, nil)
	ctx := context.Background()

	var dest map[string]int
	assert.ErrorIs(t, repo.Get(ctx, "mentorship:summary:a", &dest), appErrors.ErrCacheMiss)
	require.NoError(t, repo.Set(ctx, "k", map[string]int{"a": 1}, time.Minute))
	require.NoError(t, repo.Delete(ctx, "k"))
	assert.False(t, repo.Enabled())

	_, err := repo.Publish(ctx, "notifications:u1", map[string]string{"id": "n-1"})
	assert.ErrorIs(t, err, ErrPushDisabled)
	require.NoError(t, repo.PingContext(ctx))
	require.NoError(t, repo.Close())
}
