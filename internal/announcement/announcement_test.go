package announcement

import (
	"context"
	"errors"
	"testing"
	"time"

	"gaming-ops-portal/internal/database"
	"gaming-ops-portal/internal/models"
	"gaming-ops-portal/internal/view"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)

type brokenCollection struct {
	database.Store
	collection string
}

func (b brokenCollection) Find(ctx context.Context, collection string, q database.Query, out any) error {
	if collection == b.collection {
		return errors.New("missing index")
	}
	return b.Store.Find(ctx, collection, q, out)
}

func create(t *testing.T, s database.Store, collection string, doc any) string {
	t.Helper()
	id, err := s.Create(context.Background(), collection, doc)
	require.NoError(t, err)
	return id
}

func TestPromote(t *testing.T) {
	assert.Equal(t, models.PriorityNormal, Promote(models.PriorityLow, now.Add(-4*24*time.Hour), now))
	assert.Equal(t, models.PriorityLow, Promote(models.PriorityLow, now.Add(-2*24*time.Hour), now))
	assert.Equal(t, models.PriorityUrgent, Promote(models.PriorityUrgent, now.Add(-30*24*time.Hour), now))
	assert.Equal(t, models.PriorityUrgent, Promote(models.PriorityHigh, now.Add(-30*24*time.Hour), now))
}

func TestMergeOrderAndCap(t *testing.T) {
	var items []models.Announcement
	for i := 0; i < 25; i++ {
		items = append(items, models.Announcement{Title: "low", Priority: models.PriorityLow, At: now.Add(time.Duration(i) * time.Minute)})
	}
	items = append(items, models.Announcement{Title: "high-old", Priority: models.PriorityHigh, At: now.Add(-time.Hour)})
	items = append(items, models.Announcement{Title: "high-new", Priority: models.PriorityHigh, At: now})

	merged := Merge(items)
	require.Len(t, merged, MaxItems)
	assert.Equal(t, "high-new", merged[0].Title)
	assert.Equal(t, "high-old", merged[1].Title)
	assert.True(t, merged[2].At.After(merged[3].At))
}

func TestBuildForHRSkipsFailingSource(t *testing.T) {
	mem := database.NewMemoryStore()
	create(t, mem, models.CollectionLeaveRequests, models.LeaveRequest{
		EmployeeName: "Ana", LeaveType: "sick", Department: "Operations",
		Review: models.Review{Status: models.StatusPending}, CreatedAt: now.Add(-time.Hour),
	})
	create(t, mem, models.CollectionLeaveRequests, models.LeaveRequest{
		EmployeeName: "Ben", LeaveType: "vacation", Review: models.Review{Status: models.StatusApproved}, CreatedAt: now,
	})
	create(t, mem, models.CollectionAccomplishments, models.AccomplishmentReport{
		Submitter: "Cy", Review: models.Review{Status: models.StatusPending}, CreatedAt: now.Add(-5 * 24 * time.Hour),
	})
	create(t, mem, models.CollectionEarlyRestRequests, models.EarlyRestRequest{
		EmployeeName: "Dee", Review: models.Review{Status: models.StatusPending}, CreatedAt: now,
	})

	b := NewBuilder(brokenCollection{Store: mem, collection: models.CollectionEarlyRestRequests}, zerolog.Nop())
	b.now = func() time.Time { return now }

	items := b.Build(context.Background(), view.Viewer{ID: "hr@example.com", Role: models.RoleHR})
	require.Len(t, items, 2)
	assert.Equal(t, "Sick leave: Ana", items[0].Title)
	assert.Equal(t, models.PriorityHigh, items[0].Priority)
	assert.Equal(t, "Operations", items[0].Body)
	assert.Equal(t, "Accomplishment report from Cy", items[1].Title)
	assert.Equal(t, models.PriorityNormal, items[1].Priority, "stale pending item is promoted")
	assert.Contains(t, items[1].Link, "/records/accomplishments/")
}

func TestBuildForEmployee(t *testing.T) {
	mem := database.NewMemoryStore()
	reviewed := now.Add(-24 * time.Hour)
	longAgo := now.Add(-30 * 24 * time.Hour)
	me := "ana@example.com"
	create(t, mem, models.CollectionTravelOrders, models.TravelOrder{
		UserID: me, EmployeeName: "Ana", Destination: "Cebu", CreatedAt: now.Add(-48 * time.Hour),
		Review: models.Review{Status: models.StatusApproved, ReviewedBy: "admin@example.com", ReviewedAt: &reviewed},
	})
	create(t, mem, models.CollectionTravelOrders, models.TravelOrder{
		UserID: me, CreatedAt: longAgo.Add(-time.Hour),
		Review: models.Review{Status: models.StatusRejected, ReviewedAt: &longAgo},
	})
	create(t, mem, models.CollectionLeaveRequests, models.LeaveRequest{
		UserID: me, EmployeeName: "Ana", LeaveType: "vacation", CreatedAt: now,
		Review: models.Review{Status: models.StatusPending},
	})
	create(t, mem, models.CollectionLeaveRequests, models.LeaveRequest{
		UserID: "ben@example.com", Review: models.Review{Status: models.StatusPending}, CreatedAt: now,
	})

	b := NewBuilder(mem, zerolog.Nop())
	b.now = func() time.Time { return now }
	items := b.Build(context.Background(), view.Viewer{ID: me, Role: models.RoleEmployee})
	require.Len(t, items, 2)
	assert.Equal(t, "Travel order: Ana to Cebu", items[0].Title)
	assert.Equal(t, "Approved by admin@example.com.", items[0].Body)
	assert.Equal(t, models.PriorityNormal, items[0].Priority)
	assert.Equal(t, "Vacation leave: Ana", items[1].Title)
	assert.Equal(t, models.PriorityLow, items[1].Priority)
}

func TestSourcesPerRole(t *testing.T) {
	assert.Len(t, Sources(models.RoleAdmin), 5)
	assert.Len(t, Sources(models.RoleHR), 3)
	assert.Len(t, Sources(models.RoleEmployee), 12)
}
