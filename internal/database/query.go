package database

// Filter is an equality condition on a top-level field.
type Filter struct {
	Field string
	Value any
}

// Query describes what Find and Watch look at. Only equality filters and a
// single ordering are supported because that is all Firestore can serve
// without bespoke composite indexes for every screen.
type Query struct {
	Filters []Filter
	OrderBy string
	Desc    bool
	Limit   int
}

func Where(field string, value any) Query {
	return Query{Filters: []Filter{{Field: field, Value: value}}}
}

func (q Query) Where(field string, value any) Query {
	q.Filters = append(append([]Filter(nil), q.Filters...), Filter{Field: field, Value: value})
	return q
}

func (q Query) Order(field string, desc bool) Query {
	q.OrderBy = field
	q.Desc = desc
	return q
}

func (q Query) Take(n int) Query {
	q.Limit = n
	return q
}
