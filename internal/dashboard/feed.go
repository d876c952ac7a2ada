package dashboard

import (
	"context"
	"encoding/json"
	"fmt"
	"html/template"
	"strconv"
	"sync"

	"gaming-ops-portal/internal/auth"
	"gaming-ops-portal/internal/database"
	"gaming-ops-portal/internal/view"

	"github.com/rs/zerolog"
)

// SectionView is the render context of one section.
type SectionView struct {
	Key        string
	Title      string
	Table      Table
	Search     string
	Actions    []string
	ActionBase string
	Collection string
}

// BoardView is the render context of the dashboard template.
type BoardView struct {
	Board    string
	Title    string
	Actions  []Link
	Sections []SectionView
}

// Update is the websocket message carrying a rebuilt section. Filters are
// the dropdown options recomputed from the new rows.
type Update struct {
	Section string        `json:"section"`
	Rows    template.HTML `json:"rows"`
	Counts  template.HTML `json:"counts"`
	Filters []FilterSet   `json:"filters"`
}

// ViewOptions narrows the first render of a board.
type ViewOptions struct {
	Search string
	// Filters maps FilterKey(section, column) to the picked value.
	Filters map[string]string
}

// FilterKey names a section's column dropdown in query strings.
func FilterKey(section string, column int) string {
	return section + ":" + strconv.Itoa(column)
}

// Pusher delivers a payload to one session's clients on a topic.
type Pusher interface {
	Send(session, topic string, payload []byte) int
}

// listener is one store watch. refs counts the open pages using it.
type listener struct {
	ctx    context.Context
	cancel context.CancelFunc
	refs   int
}

// Feed keeps one store listener per (session, section) and pushes rebuilt
// tables to the session whenever the underlying collection changes. A
// listener lives while at least one page holds it, or until logout.
type Feed struct {
	store    database.Store
	renderer *view.Renderer
	pusher   Pusher
	sessions *auth.Sessions
	log      zerolog.Logger

	mu        sync.Mutex
	listeners map[string]*listener
}

func NewFeed(store database.Store, renderer *view.Renderer, pusher Pusher, sessions *auth.Sessions, log zerolog.Logger) *Feed {
	return &Feed{
		store:     store,
		renderer:  renderer,
		pusher:    pusher,
		sessions:  sessions,
		log:       log,
		listeners: make(map[string]*listener),
	}
}

func sectionView(s Section, t Table, opts ViewOptions) SectionView {
	t = Search(t, opts.Search)
	for i, fs := range t.Filters {
		picked := opts.Filters[FilterKey(s.Key, fs.Column)]
		if picked == "" {
			continue
		}
		t.Filters[i].Selected = picked
		t = FilterBy(t, fs.Column, picked)
	}
	return SectionView{
		Key:        s.Key,
		Title:      s.Title,
		Table:      t,
		Search:     opts.Search,
		Actions:    s.Actions,
		ActionBase: s.ActionBase,
		Collection: s.Collection,
	}
}

// View loads every section of b once, for the initial page render.
func (f *Feed) View(ctx context.Context, b Board, v view.Viewer, opts ViewOptions) (BoardView, error) {
	bv := BoardView{Board: b.Name, Title: b.Title, Actions: b.Actions}
	for _, s := range b.Sections {
		t, err := s.Load(ctx, f.store, v)
		if err != nil {
			return BoardView{}, err
		}
		bv.Sections = append(bv.Sections, sectionView(s, t, opts))
	}
	return bv, nil
}

// Render is View followed by the dashboard template.
func (f *Feed) Render(ctx context.Context, b Board, v view.Viewer, opts ViewOptions) (template.HTML, error) {
	bv, err := f.View(ctx, b, v, opts)
	if err != nil {
		return "", err
	}
	return f.renderer.Fragment("dashboard", bv)
}

func listenerKey(session, board, section string) string {
	return session + "|" + board + "|" + section
}

// Start takes a reference on the listeners of every section of b for v,
// starting those not yet running. Each successful Start is paired with a
// Stop. Logging out cancels the listeners whatever their count.
func (f *Feed) Start(b Board, v view.Viewer) error {
	for i, s := range b.Sections {
		if err := f.acquire(b.Name, s, v); err != nil {
			for _, done := range b.Sections[:i] {
				f.release(b.Name, done, v)
			}
			return err
		}
	}
	return nil
}

// Stop drops the references Start took. The last one cancels the listener.
func (f *Feed) Stop(b Board, v view.Viewer) {
	for _, s := range b.Sections {
		f.release(b.Name, s, v)
	}
}

func (f *Feed) acquire(board string, s Section, v view.Viewer) error {
	key := listenerKey(v.ID, board, s.Key)

	f.mu.Lock()
	if l, ok := f.listeners[key]; ok && l.ctx.Err() == nil {
		l.refs++
		f.mu.Unlock()
		return nil
	}
	ctx, cancel := context.WithCancel(context.Background())
	l := &listener{ctx: ctx, cancel: cancel, refs: 1}
	f.listeners[key] = l
	f.mu.Unlock()

	events, err := f.store.Watch(ctx, s.Collection, s.Query(v))
	if err != nil {
		cancel()
		f.drop(key, l)
		return fmt.Errorf("watch %s: %w", s.Collection, err)
	}
	f.sessions.RegisterLogoutCallback(v.ID, key, cancel)

	go func() {
		defer f.drop(key, l)
		for range events {
			if err := f.push(ctx, board, s, v); err != nil && ctx.Err() == nil {
				f.log.Error().Err(err).Str("section", s.Key).Str("user", v.ID).Msg("refresh dashboard section")
			}
		}
	}()
	return nil
}

func (f *Feed) release(board string, s Section, v view.Viewer) {
	key := listenerKey(v.ID, board, s.Key)
	f.mu.Lock()
	defer f.mu.Unlock()
	l, ok := f.listeners[key]
	if !ok {
		return
	}
	if l.refs--; l.refs > 0 {
		return
	}
	delete(f.listeners, key)
	l.cancel()
	f.sessions.Forget(v.ID, key)
}

// drop removes the registry entry if it still belongs to l.
func (f *Feed) drop(key string, l *listener) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listeners[key] == l {
		delete(f.listeners, key)
	}
}

func (f *Feed) push(ctx context.Context, board string, s Section, v view.Viewer) error {
	t, err := s.Load(ctx, f.store, v)
	if err != nil {
		return err
	}
	sv := sectionView(s, t, ViewOptions{})
	rows, err := f.renderer.Fragment("table_body", sv)
	if err != nil {
		return err
	}
	counts, err := f.renderer.Fragment("counts", sv.Table)
	if err != nil {
		return err
	}
	payload, err := json.Marshal(Update{Section: s.Key, Rows: rows, Counts: counts, Filters: sv.Table.Filters})
	if err != nil {
		return err
	}
	f.pusher.Send(v.ID, board, payload)
	return nil
}

// Active returns how many listeners are running.
func (f *Feed) Active() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.listeners)
}
