package dashboard

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"gaming-ops-portal/internal/database"
	"gaming-ops-portal/internal/models"
	"gaming-ops-portal/internal/view"
)

const (
	BoardEmployee = "employee"
	BoardAdmin    = "admin"
	BoardHR       = "hr"
)

// Rows loaded per section.
const sectionLimit = 200

type loader func(ctx context.Context, s database.Store, collection string, q database.Query) ([]Row, error)

// Section is one live table on a board.
type Section struct {
	Key        string
	Title      string
	Collection string
	Columns    []Column
	// Actions are the review statuses offered on pending rows.
	Actions    []string
	ActionBase string
	scope      func(v view.Viewer) database.Query
	load       loader
}

// Query is what the section lists for v.
func (s Section) Query(v view.Viewer) database.Query {
	q := database.Query{}
	if s.scope != nil {
		q = s.scope(v)
	}
	if q.OrderBy == "" {
		q = q.Order("createdAt", true)
	}
	if q.Limit == 0 {
		q = q.Take(sectionLimit)
	}
	return q
}

// Load reads the section's rows for v and builds its table.
func (s Section) Load(ctx context.Context, store database.Store, v view.Viewer) (Table, error) {
	rows, err := s.load(ctx, store, s.Collection, s.Query(v))
	if err != nil {
		return Table{}, fmt.Errorf("load %s: %w", s.Key, err)
	}
	return NewTable(s.Columns, rows), nil
}

func rowsOf[T any](convert func(T) Row) loader {
	return func(ctx context.Context, s database.Store, collection string, q database.Query) ([]Row, error) {
		var docs []T
		if err := s.Find(ctx, collection, q, &docs); err != nil {
			return nil, err
		}
		out := make([]Row, 0, len(docs))
		for _, d := range docs {
			r := convert(d)
			if r.Link == "" && r.ID != "" {
				r.Link = RecordLink(collection, r.ID)
			}
			out = append(out, r)
		}
		return out, nil
	}
}

// RecordLink is where the report viewer for a record lives.
func RecordLink(collection, id string) string {
	return "/records/" + collection + "/" + id
}

func own(field string) func(v view.Viewer) database.Query {
	return func(v view.Viewer) database.Query { return database.Where(field, v.ID) }
}

func day(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Local().Format("2006-01-02")
}

var (
	travelColumns = []Column{
		{Label: "Order #"}, {Label: "Employee"}, {Label: "Department", Filterable: true},
		{Label: "Travel date"}, {Label: "Destination"}, {Label: "Status", Filterable: true},
	}
	accomplishmentColumns = []Column{
		{Label: "Submitted by"}, {Label: "Department", Filterable: true}, {Label: "Service date"},
		{Label: "Service type", Filterable: true}, {Label: "Location"}, {Label: "Photos"},
		{Label: "Status", Filterable: true},
	}
	deviceColumns = []Column{
		{Label: "Request #"}, {Label: "Requested by"}, {Label: "Type", Filterable: true},
		{Label: "Operator", Filterable: true}, {Label: "New code"}, {Label: "Status", Filterable: true},
	}
	leaveColumns = []Column{
		{Label: "Employee"}, {Label: "Department", Filterable: true}, {Label: "Type", Filterable: true},
		{Label: "From"}, {Label: "To"}, {Label: "Status", Filterable: true},
	}
	earlyRestColumns = []Column{
		{Label: "Employee"}, {Label: "Department", Filterable: true}, {Label: "Date"},
		{Label: "Rest time"}, {Label: "Reason"}, {Label: "Status", Filterable: true},
	}
	itColumns = []Column{
		{Label: "Employee"}, {Label: "Category", Filterable: true}, {Label: "Location"},
		{Label: "Description"}, {Label: "Filed"}, {Label: "Status", Filterable: true},
	}
	clientColumns = []Column{
		{Label: "Client"}, {Label: "Contact"}, {Label: "Area", Filterable: true}, {Label: "Added"},
		{Label: "Status", Filterable: true},
	}
	summaryColumns = []Column{
		{Label: "Operator"}, {Label: "Total"}, {Label: "POS"}, {Label: "Phone"}, {Label: "Last request"},
	}
)

func travelRow(o models.TravelOrder) Row {
	return Row{ID: o.ID, Status: string(o.Status), Cells: []string{
		o.OrderNumber, o.EmployeeName, o.Department, o.TravelDate, o.Destination, string(o.Status),
	}}
}

func accomplishmentRow(a models.AccomplishmentReport) Row {
	return Row{ID: a.ID, Status: string(a.Status), Cells: []string{
		a.Submitter, a.Department, a.ServiceDate, a.ServiceType, a.Location, strconv.Itoa(a.PhotoCount), string(a.Status),
	}}
}

func deviceRow(d models.DeviceIDChange) Row {
	return Row{ID: d.ID, Status: string(d.Status), Cells: []string{
		d.RequestNumber, d.RequestedBy, strings.ToUpper(string(d.DeviceType)), d.Operator, d.NewCode, string(d.Status),
	}}
}

func leaveRow(l models.LeaveRequest) Row {
	return Row{ID: l.ID, Status: string(l.Status), Cells: []string{
		l.EmployeeName, l.Department, l.LeaveType, l.StartDate, l.EndDate, string(l.Status),
	}}
}

func earlyRestRow(e models.EarlyRestRequest) Row {
	return Row{ID: e.ID, Status: string(e.Status), Cells: []string{
		e.EmployeeName, e.Department, e.Date, e.RestTime, e.Reason, string(e.Status),
	}}
}

func itRow(o models.ITServiceOrder) Row {
	return Row{ID: o.ID, Status: string(o.Status), Cells: []string{
		o.EmployeeName, o.Category, o.Location, o.Description, day(o.CreatedAt), string(o.Status),
	}}
}

func clientRow(c models.Client) Row {
	return Row{ID: c.ID, Status: c.Status, Cells: []string{c.Name, c.ContactPerson, c.Area, day(c.CreatedAt), c.Status}}
}

func summaryRow(s models.OperatorDeviceSummary) Row {
	last := ""
	if !s.LastRequestAt.IsZero() {
		last = s.LastRequestAt.Local().Format("2006-01-02 15:04")
	}
	return Row{ID: s.ID, Cells: []string{
		s.Operator,
		strconv.FormatInt(s.TotalRequests, 10),
		strconv.FormatInt(s.POSRequests, 10),
		strconv.FormatInt(s.PhoneRequests, 10),
		last,
	}}
}

var review = []string{string(models.StatusApproved), string(models.StatusRejected)}

func employeeSections() []Section {
	return []Section{
		{Key: "my-travel-orders", Title: "My travel orders", Collection: models.CollectionTravelOrders,
			Columns: travelColumns, scope: own("userId"), load: rowsOf(travelRow)},
		{Key: "my-accomplishments", Title: "My accomplishment reports", Collection: models.CollectionAccomplishments,
			Columns: accomplishmentColumns, scope: own("uniquekey"), load: rowsOf(accomplishmentRow)},
		{Key: "my-device-changes", Title: "My device ID changes", Collection: models.CollectionDeviceIDChanges,
			Columns: deviceColumns, scope: own("userId"), load: rowsOf(deviceRow)},
		{Key: "my-leave", Title: "My leave requests", Collection: models.CollectionLeaveRequests,
			Columns: leaveColumns, scope: own("userId"), load: rowsOf(leaveRow)},
		{Key: "my-early-rest", Title: "My early rest requests", Collection: models.CollectionEarlyRestRequests,
			Columns: earlyRestColumns, scope: own("userId"), load: rowsOf(earlyRestRow)},
		{Key: "my-it-service", Title: "My IT service orders", Collection: models.CollectionITServiceOrders,
			Columns: itColumns, scope: own("userId"), load: rowsOf(itRow)},
	}
}

func adminSections() []Section {
	const base = "/admin"
	return []Section{
		{Key: "travel-orders", Title: "Travel orders", Collection: models.CollectionTravelOrders,
			Columns: travelColumns, Actions: review, ActionBase: base, load: rowsOf(travelRow)},
		{Key: "accomplishments", Title: "Accomplishment reports", Collection: models.CollectionAccomplishments,
			Columns: accomplishmentColumns, Actions: review, ActionBase: base, load: rowsOf(accomplishmentRow)},
		{Key: "device-changes", Title: "Device ID changes", Collection: models.CollectionDeviceIDChanges,
			Columns: deviceColumns, Actions: review, ActionBase: base, load: rowsOf(deviceRow)},
		{Key: "it-service", Title: "IT service orders", Collection: models.CollectionITServiceOrders,
			Columns: itColumns, ActionBase: base, load: rowsOf(itRow),
			Actions: []string{string(models.StatusCompleted), string(models.StatusCancelled)}},
		{Key: "clients", Title: "Clients", Collection: models.CollectionClients,
			Columns: clientColumns, load: rowsOf(clientRow)},
		{Key: "operator-summary", Title: "Device changes per operator", Collection: models.CollectionOperatorDeviceSummary,
			Columns: summaryColumns, load: rowsOf(summaryRow),
			scope: func(view.Viewer) database.Query { return database.Query{}.Order("totalRequests", true) }},
	}
}

func hrSections() []Section {
	const base = "/hr"
	return []Section{
		{Key: "leave", Title: "Leave requests", Collection: models.CollectionLeaveRequests,
			Columns: leaveColumns, Actions: review, ActionBase: base, load: rowsOf(leaveRow)},
		{Key: "early-rest", Title: "Early rest requests", Collection: models.CollectionEarlyRestRequests,
			Columns: earlyRestColumns, Actions: review, ActionBase: base, load: rowsOf(earlyRestRow)},
		{Key: "hr-accomplishments", Title: "Accomplishment reports", Collection: models.CollectionAccomplishments,
			Columns: accomplishmentColumns, Actions: review, ActionBase: base, load: rowsOf(accomplishmentRow)},
	}
}

// Link is a button in a board's header.
type Link struct {
	Href  string
	Label string
}

// Board is a named set of sections shown on one page.
type Board struct {
	Name     string
	Title    string
	Roles    []string
	Actions  []Link
	Sections []Section
}

var boards = map[string]Board{
	BoardEmployee: {
		Name:  BoardEmployee,
		Title: "My dashboard",
		Roles: []string{models.RoleEmployee, models.RoleAdmin, models.RoleHR},
		Actions: []Link{
			{Href: "/forms/travel-order/new", Label: "Travel order"},
			{Href: "/forms/accomplishment/new", Label: "Accomplishment report"},
			{Href: "/forms/device-change/new", Label: "Device ID change"},
			{Href: "/forms/leave/new", Label: "Leave"},
			{Href: "/forms/early-rest/new", Label: "Early rest"},
			{Href: "/forms/it-service/new", Label: "IT service"},
		},
		Sections: employeeSections(),
	},
	BoardAdmin: {
		Name:     BoardAdmin,
		Title:    "Admin dashboard",
		Roles:    []string{models.RoleAdmin},
		Actions:  []Link{{Href: "/forms/client/new", Label: "Add client"}},
		Sections: adminSections(),
	},
	BoardHR: {
		Name:     BoardHR,
		Title:    "HR dashboard",
		Roles:    []string{models.RoleHR, models.RoleAdmin},
		Sections: hrSections(),
	},
}

// Lookup returns the board with the given name.
func Lookup(name string) (Board, bool) {
	b, ok := boards[name]
	return b, ok
}

// Allowed reports whether a viewer with role may open the board.
func (b Board) Allowed(role string) bool {
	for _, r := range b.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// Section returns the section with key.
func (b Board) Section(key string) (Section, bool) {
	for _, s := range b.Sections {
		if s.Key == key {
			return s, true
		}
	}
	return Section{}, false
}

// ReviewActions returns the statuses a board offers for a collection, used
// to check status updates posted back from the tables.
func ReviewActions(board, collection string) []string {
	b, ok := boards[board]
	if !ok {
		return nil
	}
	for _, s := range b.Sections {
		if s.Collection == collection && len(s.Actions) > 0 {
			return s.Actions
		}
	}
	return nil
}
