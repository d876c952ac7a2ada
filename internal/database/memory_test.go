package database

import (
	"context"
	"testing"
	"time"

	"gaming-ops-portal/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func leave(user string, status models.Status, at time.Time) *models.LeaveRequest {
	return &models.LeaveRequest{UserID: user, LeaveType: "vacation", Review: models.Review{Status: status}, CreatedAt: at}
}

func TestMemoryCreateGetUpdate(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	id, err := s.Create(ctx, models.CollectionLeaveRequests, leave("ana", models.StatusPending, time.Now()))
	require.NoError(t, err)
	require.NotEmpty(t, id)

	var got models.LeaveRequest
	require.NoError(t, s.Get(ctx, models.CollectionLeaveRequests, id, &got))
	assert.Equal(t, id, got.ID)
	assert.Equal(t, "ana", got.UserID)

	require.NoError(t, s.Update(ctx, models.CollectionLeaveRequests, id, map[string]any{"status": "Approved", "reviewedBy": "Hana"}))
	require.NoError(t, s.Get(ctx, models.CollectionLeaveRequests, id, &got))
	assert.Equal(t, models.StatusApproved, got.Status)
	assert.Equal(t, "Hana", got.ReviewedBy)

	assert.ErrorIs(t, s.Get(ctx, models.CollectionLeaveRequests, "missing", &got), ErrNotFound)
	assert.ErrorIs(t, s.Update(ctx, models.CollectionLeaveRequests, "missing", map[string]any{"status": "x"}), ErrNotFound)

	require.NoError(t, s.Delete(ctx, models.CollectionLeaveRequests, id))
	assert.ErrorIs(t, s.Get(ctx, models.CollectionLeaveRequests, id, &got), ErrNotFound)
}

func TestMemoryFind(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	base := time.Date(2026, 10, 1, 8, 0, 0, 0, time.UTC)
	for i, user := range []string{"ana", "ben", "ana", "ana"} {
		_, err := s.Create(ctx, models.CollectionLeaveRequests, leave(user, models.StatusPending, base.Add(time.Duration(i)*time.Hour)))
		require.NoError(t, err)
	}

	var mine []models.LeaveRequest
	require.NoError(t, s.Find(ctx, models.CollectionLeaveRequests, Where("userId", "ana").Order("createdAt", true).Take(2), &mine))
	require.Len(t, mine, 2)
	assert.True(t, mine[0].CreatedAt.After(mine[1].CreatedAt))
	assert.Equal(t, base.Add(3*time.Hour), mine[0].CreatedAt.UTC())
	for _, l := range mine {
		assert.NotEmpty(t, l.ID)
		assert.Equal(t, "ana", l.UserID)
	}

	var none []models.LeaveRequest
	require.NoError(t, s.Find(ctx, models.CollectionClients, Query{}, &none))
	assert.Empty(t, none)

	assert.Error(t, s.Find(ctx, models.CollectionLeaveRequests, Query{}, &models.LeaveRequest{}))
}

func TestMemoryIncrement(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	id := SafeID("Lucky/Star")
	for i := 0; i < 3; i++ {
		require.NoError(t, s.Increment(ctx, models.CollectionOperatorDeviceSummary, id,
			map[string]int64{"totalRequests": 1, "posRequests": int64(i % 2)},
			map[string]any{"operator": "Lucky/Star"}))
	}
	var sum models.OperatorDeviceSummary
	require.NoError(t, s.Get(ctx, models.CollectionOperatorDeviceSummary, id, &sum))
	assert.EqualValues(t, 3, sum.TotalRequests)
	assert.EqualValues(t, 1, sum.POSRequests)
	assert.Equal(t, "Lucky/Star", sum.Operator)
}

func TestMemoryWatch(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	s := NewMemoryStore()

	ch, err := s.Watch(ctx, models.CollectionClients, Query{})
	require.NoError(t, err)
	select {
	case ev := <-ch:
		assert.Equal(t, models.CollectionClients, ev.Collection)
	case <-time.After(time.Second):
		t.Fatal("no initial snapshot")
	}

	_, err = s.Create(context.Background(), models.CollectionClients, &models.Client{Name: "Lucky Star"})
	require.NoError(t, err)
	select {
	case <-ch:
	case <-time.After(time.Second):
		t.Fatal("no change event")
	}

	cancel()
	assert.Eventually(t, func() bool {
		select {
		case _, ok := <-ch:
			return !ok
		default:
			return false
		}
	}, time.Second, 10*time.Millisecond)
}

func TestSafeID(t *testing.T) {
	assert.Equal(t, "Lucky_Star", SafeID(" Lucky/Star "))
	assert.Equal(t, "_", SafeID(""))
	assert.Equal(t, "_", SafeID(".."))
	assert.Equal(t, "ok", SafeID("ok"))
}

func TestSeedUser(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	require.NoError(t, SeedUser(ctx, s, models.User{Email: " HR@Example.com ", Role: models.RoleHR}, "pw123456", zerolog.Nop()))

	var u models.User
	require.NoError(t, s.Get(ctx, models.CollectionUsers, "hr@example.com", &u))
	assert.Equal(t, models.RoleHR, u.Role)
	assert.Equal(t, "active", u.Status)
	assert.NotEqual(t, "pw123456", u.Password)

	// A second seed leaves the existing account alone.
	require.NoError(t, SeedUser(ctx, s, models.User{Email: "hr@example.com", Role: models.RoleAdmin}, "other", zerolog.Nop()))
	require.NoError(t, s.Get(ctx, models.CollectionUsers, "hr@example.com", &u))
	assert.Equal(t, models.RoleHR, u.Role)

	assert.Error(t, SeedUser(ctx, s, models.User{Email: "x@example.com", Role: "root"}, "pw", zerolog.Nop()))
}
