// Package announcement assembles the notification list shown above every
// dashboard. Nothing here is stored; the list is rebuilt per page load.
package announcement

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"gaming-ops-portal/internal/dashboard"
	"gaming-ops-portal/internal/database"
	"gaming-ops-portal/internal/models"
	"gaming-ops-portal/internal/view"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

const (
	// MaxItems caps the merged list.
	MaxItems = 20
	// StaleAfter is how long an item may stay pending before it is promoted.
	StaleAfter = 72 * time.Hour
	// RecentWindow bounds the "your request was reviewed" items.
	RecentWindow = 7 * 24 * time.Hour

	perSource = 20
)

// headline is the subset of fields every source document can fill.
type headline struct {
	models.Document `bson:",inline"`
	models.Review   `bson:",inline"`
	EmployeeName    string    `bson:"employeeName" firestore:"employeeName"`
	Submitter       string    `bson:"submitter" firestore:"submitter"`
	RequestedBy     string    `bson:"requestedBy" firestore:"requestedBy"`
	Name            string    `bson:"name" firestore:"name"`
	Department      string    `bson:"department" firestore:"department"`
	Destination     string    `bson:"destination" firestore:"destination"`
	Operator        string    `bson:"operator" firestore:"operator"`
	LeaveType       string    `bson:"leaveType" firestore:"leaveType"`
	Category        string    `bson:"category" firestore:"category"`
	Location        string    `bson:"location" firestore:"location"`
	Area            string    `bson:"area" firestore:"area"`
	CreatedAt       time.Time `bson:"createdAt" firestore:"createdAt"`
}

func (h headline) who() string {
	for _, s := range []string{h.EmployeeName, h.Submitter, h.RequestedBy} {
		if s != "" {
			return s
		}
	}
	return "Someone"
}

// Source is one query feeding the list.
type Source struct {
	Name       string
	Collection string
	Priority   models.Priority
	query      func(v view.Viewer) database.Query
	keep       func(h headline, now time.Time) bool
	title      func(h headline) string
}

func pendingQuery(view.Viewer) database.Query {
	return database.Where("status", string(models.StatusPending)).Order("createdAt", true).Take(perSource)
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

var titles = map[string]func(h headline) string{
	models.CollectionTravelOrders: func(h headline) string {
		return fmt.Sprintf("Travel order: %s to %s", h.who(), h.Destination)
	},
	models.CollectionDeviceIDChanges: func(h headline) string {
		return fmt.Sprintf("Device ID change for %s by %s", h.Operator, h.who())
	},
	models.CollectionITServiceOrders: func(h headline) string {
		return fmt.Sprintf("IT service (%s) at %s", h.Category, h.Location)
	},
	models.CollectionAccomplishments: func(h headline) string {
		return fmt.Sprintf("Accomplishment report from %s", h.who())
	},
	models.CollectionClients: func(h headline) string {
		return fmt.Sprintf("New client %s (%s)", h.Name, h.Area)
	},
	models.CollectionLeaveRequests: func(h headline) string {
		return fmt.Sprintf("%s leave: %s", capitalize(h.LeaveType), h.who())
	},
	models.CollectionEarlyRestRequests: func(h headline) string {
		return fmt.Sprintf("Early rest: %s", h.who())
	},
}

func pendingSource(name, collection string, p models.Priority) Source {
	return Source{Name: name, Collection: collection, Priority: p, query: pendingQuery, title: titles[collection]}
}

// Sources lists what a viewer with role gets announcements from.
func Sources(role string) []Source {
	switch role {
	case models.RoleAdmin:
		return []Source{
			pendingSource("Travel orders", models.CollectionTravelOrders, models.PriorityHigh),
			pendingSource("Device ID changes", models.CollectionDeviceIDChanges, models.PriorityHigh),
			pendingSource("IT service", models.CollectionITServiceOrders, models.PriorityNormal),
			pendingSource("Accomplishments", models.CollectionAccomplishments, models.PriorityLow),
			{
				Name: "Clients", Collection: models.CollectionClients, Priority: models.PriorityLow,
				title: titles[models.CollectionClients],
				query: func(view.Viewer) database.Query {
					return database.Query{}.Order("createdAt", true).Take(perSource)
				},
				keep: func(h headline, now time.Time) bool { return now.Sub(h.CreatedAt) <= RecentWindow },
			},
		}
	case models.RoleHR:
		return []Source{
			pendingSource("Leave", models.CollectionLeaveRequests, models.PriorityHigh),
			pendingSource("Early rest", models.CollectionEarlyRestRequests, models.PriorityHigh),
			pendingSource("Accomplishments", models.CollectionAccomplishments, models.PriorityLow),
		}
	}
	return employeeSources()
}

var employeeCollections = []struct {
	name, collection, owner string
}{
	{"Travel orders", models.CollectionTravelOrders, "userId"},
	{"Accomplishments", models.CollectionAccomplishments, "uniquekey"},
	{"Device ID changes", models.CollectionDeviceIDChanges, "userId"},
	{"Leave", models.CollectionLeaveRequests, "userId"},
	{"Early rest", models.CollectionEarlyRestRequests, "userId"},
	{"IT service", models.CollectionITServiceOrders, "userId"},
}

func employeeSources() []Source {
	var out []Source
	for _, c := range employeeCollections {
		owner := c.owner
		mine := func(v view.Viewer) database.Query {
			return database.Where(owner, v.ID).Order("createdAt", true).Take(perSource)
		}
		out = append(out,
			Source{
				Name: c.name, Collection: c.collection, Priority: models.PriorityNormal, query: mine,
				title: titles[c.collection],
				keep: func(h headline, now time.Time) bool {
					return h.Status != models.StatusPending && h.ReviewedAt != nil && now.Sub(*h.ReviewedAt) <= RecentWindow
				},
			},
			Source{
				Name: c.name, Collection: c.collection, Priority: models.PriorityLow, query: mine,
				title: titles[c.collection],
				keep:  func(h headline, _ time.Time) bool { return h.Status == models.StatusPending },
			},
		)
	}
	return out
}

// Builder runs the sources for a viewer and merges their items.
type Builder struct {
	store database.Store
	log   zerolog.Logger
	now   func() time.Time
}

func NewBuilder(store database.Store, log zerolog.Logger) *Builder {
	return &Builder{store: store, log: log, now: time.Now}
}

// Build queries every source concurrently. A failing source is logged and
// left out; it never fails the whole list.
func (b *Builder) Build(ctx context.Context, v view.Viewer) []models.Announcement {
	sources := Sources(v.Role)
	results := make([][]models.Announcement, len(sources))
	now := b.now()

	var g errgroup.Group
	g.SetLimit(4)
	for i, src := range sources {
		g.Go(func() error {
			items, err := b.load(ctx, src, v, now)
			if err != nil {
				b.log.Warn().Err(err).Str("source", src.Name).Str("collection", src.Collection).Msg("announcement source failed")
				return nil
			}
			results[i] = items
			return nil
		})
	}
	_ = g.Wait()

	var all []models.Announcement
	for _, r := range results {
		all = append(all, r...)
	}
	return Merge(all)
}

func (b *Builder) load(ctx context.Context, src Source, v view.Viewer, now time.Time) ([]models.Announcement, error) {
	var docs []headline
	if err := b.store.Find(ctx, src.Collection, src.query(v), &docs); err != nil {
		return nil, err
	}
	out := make([]models.Announcement, 0, len(docs))
	for _, h := range docs {
		if src.keep != nil && !src.keep(h, now) {
			continue
		}
		out = append(out, item(src, h, now))
	}
	return out, nil
}

func item(src Source, h headline, now time.Time) models.Announcement {
	a := models.Announcement{
		Title:    src.Name,
		Source:   src.Name,
		RecordID: h.ID,
		Status:   h.Status,
		Priority: src.Priority,
		At:       h.CreatedAt,
		Link:     dashboard.RecordLink(src.Collection, h.ID),
	}
	if src.title != nil {
		a.Title = src.title(h)
	}
	if h.ReviewedAt != nil && h.Status != models.StatusPending {
		a.At = *h.ReviewedAt
		a.Body = fmt.Sprintf("%s by %s.", h.Status, h.ReviewedBy)
		if h.Remarks != "" {
			a.Body += " " + h.Remarks
		}
	} else if h.Department != "" {
		a.Body = h.Department
	}
	if h.Status == models.StatusPending {
		a.Priority = Promote(a.Priority, a.At, now)
	}
	return a
}

// Promote raises a pending item one level once it is older than StaleAfter.
func Promote(p models.Priority, at, now time.Time) models.Priority {
	if at.IsZero() || now.Sub(at) <= StaleAfter || p >= models.PriorityUrgent {
		return p
	}
	return p + 1
}

// Merge sorts by priority, highest first, then newest first, and caps the
// list at MaxItems.
func Merge(items []models.Announcement) []models.Announcement {
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].Priority != items[j].Priority {
			return items[i].Priority > items[j].Priority
		}
		return items[i].At.After(items[j].At)
	})
	if len(items) > MaxItems {
		items = items[:MaxItems]
	}
	return items
}
