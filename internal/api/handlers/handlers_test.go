package handlers

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"net/url"
	"strings"
	"testing"
	"time"

	"gaming-ops-portal/internal/announcement"
	"gaming-ops-portal/internal/api/middleware"
	"gaming-ops-portal/internal/auth"
	"gaming-ops-portal/internal/dashboard"
	"gaming-ops-portal/internal/database"
	"gaming-ops-portal/internal/forms"
	"gaming-ops-portal/internal/models"
	"gaming-ops-portal/internal/relay"
	"gaming-ops-portal/internal/socket"
	"gaming-ops-portal/internal/submission"
	"gaming-ops-portal/internal/view"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func init() {
	gin.SetMode(gin.TestMode)
	auth.HashCost = bcrypt.MinCost
}

type fakeRelay struct {
	sendErr  error
	mediaErr error
	openErr  error
	sent     int
	items    []models.MediaPointer
	files    map[int]string
}

func (r *fakeRelay) Name() string { return "fake" }

func (r *fakeRelay) Send(context.Context, relay.Record, string, []relay.File, *models.RelayProgress) error {
	r.sent++
	return r.sendErr
}

func (r *fakeRelay) Media(context.Context, string) ([]models.MediaPointer, error) {
	return r.items, r.mediaErr
}

func (r *fakeRelay) Open(_ context.Context, _ string, n int, thumb bool) (relay.Download, error) {
	if r.openErr != nil {
		return relay.Download{}, r.openErr
	}
	body, ok := r.files[n]
	if !ok {
		return relay.Download{}, relay.ErrNoMedia
	}
	if thumb {
		body = "thumb " + body
	}
	return relay.Download{Body: io.NopCloser(strings.NewReader(body)), ContentType: "image/jpeg", Size: int64(len(body))}, nil
}

type queued struct {
	rec   relay.Record
	files []relay.File
}

type fakeQueue struct{ entries []queued }

func (q *fakeQueue) Enqueue(_ context.Context, rec relay.Record, _ string, files []relay.File, _ models.RelayProgress, _ error) (string, error) {
	q.entries = append(q.entries, queued{rec: rec, files: files})
	return "entry-1", nil
}

type brokenCreate struct {
	*database.MemoryStore
}

func (brokenCreate) Create(context.Context, string, any) (string, error) {
	return "", errors.New("permission denied")
}

var (
	ana = view.Viewer{ID: "ana@example.com", Email: "ana@example.com", Name: "Ana", Role: models.RoleEmployee, Department: "Operations"}
	ben = view.Viewer{ID: "ben@example.com", Email: "ben@example.com", Name: "Ben", Role: models.RoleEmployee, Department: "Operations"}
	hr  = view.Viewer{ID: "hana@example.com", Email: "hana@example.com", Name: "Hana", Role: models.RoleHR, Department: "HR"}
)

type harness struct {
	t      *testing.T
	store  *database.MemoryStore
	signer *auth.Signer
	relay  *fakeRelay
	queue  *fakeQueue
	engine *gin.Engine
}

func newHarness(t *testing.T, submitStore database.Store) *harness {
	t.Helper()
	store := database.NewMemoryStore()
	if submitStore == nil {
		submitStore = store
	}
	h := &harness{
		t:      t,
		store:  store,
		signer: auth.NewSigner("test-secret", time.Hour),
		relay:  &fakeRelay{},
		queue:  &fakeQueue{},
	}
	renderer := view.MustRenderer()
	sessions := auth.NewSessions()
	portal := &Portal{
		Store:     store,
		Renderer:  renderer,
		Feed:      dashboard.NewFeed(store, renderer, socket.NewHub(zerolog.Nop()), sessions, zerolog.Nop()),
		Announcer: announcement.NewBuilder(store, zerolog.Nop()),
		Log:       zerolog.Nop(),
	}
	svc := submission.NewService(submitStore, h.relay, h.queue, time.Second, zerolog.Nop())

	authH := &AuthHandler{Store: store, Signer: h.signer, Sessions: sessions, Renderer: renderer, Log: zerolog.Nop()}
	formH := &FormHandler{Portal: portal, Submissions: svc, now: func() time.Time {
		return time.Date(2026, 10, 10, 9, 0, 0, 0, time.UTC)
	}}
	reviewH := &ReviewHandler{Portal: portal, Submissions: svc}
	recordH := &RecordHandler{Portal: portal, Relay: h.relay}
	dashH := &DashboardHandler{Portal: portal}

	r := gin.New()
	r.Use(middleware.Authenticate(h.signer))
	r.POST("/login", authH.Login)
	pages := r.Group("/", middleware.RequireViewer())
	pages.GET("/dashboard", dashH.Show(dashboard.BoardEmployee))
	pages.GET("/forms/:kind/new", formH.New)
	pages.GET("/records/:collection/:id", recordH.Show)
	pages.GET("/records/:collection/:id/media/:n", recordH.File)
	pages.POST("/travel-orders", formH.Submit(forms.KindTravelOrder))
	pages.POST("/accomplishments", formH.Submit(forms.KindAccomplishment))
	pages.POST("/device-changes", formH.Submit(forms.KindDeviceChange))
	hrGroup := r.Group("/hr", middleware.RequireViewer(), middleware.Authorize(models.RoleHR, models.RoleAdmin))
	hrGroup.POST("/:collection/:id/status", reviewH.Review(dashboard.BoardHR))
	api := r.Group("/api", middleware.RequireViewer())
	api.POST("/forms/:kind/validate", formH.Validate)
	api.GET("/records/:collection/:id/media", recordH.Media)
	h.engine = r
	return h
}

func (h *harness) do(req *http.Request, v *view.Viewer) *httptest.ResponseRecorder {
	h.t.Helper()
	if v != nil {
		tok, err := h.signer.Generate(v.ID, v.Email, v.Name, v.Role, v.Department)
		require.NoError(h.t, err)
		req.AddCookie(&http.Cookie{Name: middleware.CookieName, Value: tok})
	}
	w := httptest.NewRecorder()
	h.engine.ServeHTTP(w, req)
	return w
}

func (h *harness) get(path string, v *view.Viewer) *httptest.ResponseRecorder {
	return h.do(httptest.NewRequest(http.MethodGet, path, nil), v)
}

func (h *harness) post(path string, form url.Values, v *view.Viewer) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return h.do(req, v)
}

func flashesOf(t *testing.T, w *httptest.ResponseRecorder) []view.Flash {
	t.Helper()
	for _, c := range w.Result().Cookies() {
		if c.Name != flashCookie {
			continue
		}
		raw, err := base64.RawURLEncoding.DecodeString(c.Value)
		require.NoError(t, err)
		var out []view.Flash
		require.NoError(t, json.Unmarshal(raw, &out))
		return out
	}
	return nil
}

func travelForm() url.Values {
	return url.Values{
		"employeeName":  {"Ana"},
		"department":    {"Operations"},
		"dateFiled":     {"2026-10-10"},
		"travelDate":    {"2026-10-12"},
		"departureTime": {"08:00"},
		"returnTime":    {"17:00"},
		"destination":   {"Pasig"},
		"driverName":    {"Ben"},
		"passengers":    {"Cy\nDee"},
		"purpose":       {"Site visit"},
	}
}

func TestLogin(t *testing.T) {
	h := newHarness(t, nil)
	require.NoError(t, database.SeedUser(context.Background(), h.store, models.User{
		Email: "ana@example.com", Name: "Ana", Role: models.RoleEmployee,
	}, "secret123", zerolog.Nop()))

	w := h.post("/login", url.Values{"email": {"Ana@Example.com"}, "password": {"secret123"}}, nil)
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/dashboard", w.Header().Get("Location"))
	assert.Contains(t, w.Header().Get("Set-Cookie"), middleware.CookieName+"=")

	w = h.post("/login", url.Values{"email": {"ana@example.com"}, "password": {"wrong"}}, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), msgInvalidLogin)
}

func TestNewFormMountsPrefilledModal(t *testing.T) {
	h := newHarness(t, nil)

	w := h.get("/forms/travel-order/new", &ana)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, view.CountByID(w.Body.Bytes(), "travel-order-modal"))
	assert.Contains(t, w.Body.String(), `value="2026-10-10"`)
	assert.NotContains(t, w.Body.String(), "has-error")

	w = h.get("/forms/client/new", &ana)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = h.get("/forms/unknown/new", &ana)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSubmitTravelOrder(t *testing.T) {
	h := newHarness(t, nil)

	w := h.post("/travel-orders", travelForm(), &ana)
	require.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/dashboard", w.Header().Get("Location"))
	assert.Equal(t, []view.Flash{{Kind: view.FlashSuccess, Message: "Travel order submitted successfully."}}, flashesOf(t, w))

	var orders []models.TravelOrder
	require.NoError(t, h.store.Find(context.Background(), models.CollectionTravelOrders, database.Query{}, &orders))
	require.Len(t, orders, 1)
	assert.Equal(t, ana.ID, orders[0].UserID)
	assert.Equal(t, models.StatusPending, orders[0].Status)
	assert.Equal(t, []string{"Cy", "Dee"}, orders[0].Passengers)
	assert.True(t, strings.HasPrefix(orders[0].OrderNumber, "TO-20261010-"))
	assert.Zero(t, h.relay.sent)
}

func TestInvalidSubmitShowsErrors(t *testing.T) {
	h := newHarness(t, nil)
	form := travelForm()
	form.Set("travelDate", "2026-10-01")

	w := h.post("/travel-orders", form, &ana)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, 1, view.CountByID(w.Body.Bytes(), "travel-order-modal"))
	assert.Contains(t, w.Body.String(), forms.MsgTravelBeforeFiling)
	assert.Contains(t, w.Body.String(), `value="Pasig"`)

	var orders []models.TravelOrder
	require.NoError(t, h.store.Find(context.Background(), models.CollectionTravelOrders, database.Query{}, &orders))
	assert.Empty(t, orders)
}

func TestStoreFailureKeepsInput(t *testing.T) {
	h := newHarness(t, brokenCreate{database.NewMemoryStore()})

	w := h.post("/travel-orders", travelForm(), &ana)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), msgSaveFailed)
	assert.Contains(t, w.Body.String(), `value="Pasig"`)
	assert.Nil(t, flashesOf(t, w))
}

func accomplishmentRequest(t *testing.T, photo []byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for k, v := range map[string]string{
		"department":  "Operations",
		"position":    "Technician",
		"serviceDate": "2026-10-09",
		"serviceTime": "13:30",
		"serviceType": "Repair",
		"location":    "Makati outlet",
		"description": "Replaced the thermal printer",
	} {
		require.NoError(t, mw.WriteField(k, v))
	}
	hdr := textproto.MIMEHeader{}
	hdr.Set("Content-Disposition", `form-data; name="photos"; filename="printer.jpg"`)
	hdr.Set("Content-Type", "image/jpeg")
	part, err := mw.CreatePart(hdr)
	require.NoError(t, err)
	_, err = part.Write(photo)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/accomplishments", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestAccomplishmentRelayFailureWarns(t *testing.T) {
	h := newHarness(t, nil)
	h.relay.sendErr = errors.New("telegram: 502")

	w := h.do(accomplishmentRequest(t, []byte("\xff\xd8\xff\xe0 jpeg")), &ana)
	require.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, []view.Flash{
		{Kind: view.FlashSuccess, Message: "Accomplishment report submitted successfully."},
		{Kind: view.FlashWarning, Message: submission.WarningRelay},
	}, flashesOf(t, w))

	var reports []models.AccomplishmentReport
	require.NoError(t, h.store.Find(context.Background(), models.CollectionAccomplishments, database.Query{}, &reports))
	require.Len(t, reports, 1)
	assert.Equal(t, ana.ID, reports[0].UniqueKey)
	assert.Equal(t, 1, reports[0].PhotoCount)

	require.Len(t, h.queue.entries, 1)
	assert.Equal(t, reports[0].ID, h.queue.entries[0].rec.ID)
	require.Len(t, h.queue.entries[0].files, 1)
	assert.Equal(t, "image/jpeg", h.queue.entries[0].files[0].ContentType)
}

func TestDeviceChangeUpdatesSummary(t *testing.T) {
	h := newHarness(t, nil)
	form := url.Values{
		"deviceType": {"pos"},
		"operator":   {"Lucky Star"},
		"oldPosCode": {"POS-001"},
		"newCode":    {"POS-002"},
		"reason":     {"Terminal screen cracked"},
	}
	w := h.post("/device-changes", form, &ana)
	require.Equal(t, http.StatusSeeOther, w.Code)

	var sum models.OperatorDeviceSummary
	require.NoError(t, h.store.Get(context.Background(), models.CollectionOperatorDeviceSummary, submission.SummaryID("Lucky Star"), &sum))
	assert.EqualValues(t, 1, sum.TotalRequests)
	assert.EqualValues(t, 1, sum.POSRequests)
}

func TestValidateEndpoint(t *testing.T) {
	h := newHarness(t, nil)

	w := h.post("/api/forms/device-change/validate", url.Values{"deviceType": {"phone"}}, &ana)
	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Errors   map[string]string `json:"errors"`
		Valid    bool              `json:"valid"`
		Required []string          `json:"required"`
		Optional []string          `json:"optional"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.Valid)
	assert.Contains(t, resp.Required, "oldPhoneNumber")
	assert.Equal(t, []string{"oldPosCode"}, resp.Optional)
	assert.Contains(t, resp.Errors, "operator")

	w = h.post("/api/forms/nope/validate", url.Values{}, &ana)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestValidateChecksRole(t *testing.T) {
	h := newHarness(t, nil)

	w := h.post("/api/forms/client/validate", url.Values{"name": {"Acme"}}, &ana)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.NotContains(t, w.Body.String(), "errors")

	w = h.post("/api/forms/client/validate", url.Values{}, &hr)
	assert.Equal(t, http.StatusForbidden, w.Code)

	root := view.Viewer{ID: "root@example.com", Email: "root@example.com", Name: "Root", Role: models.RoleAdmin}
	w = h.post("/api/forms/client/validate", url.Values{}, &root)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"valid":false`)
}

func TestReview(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()
	id, err := h.store.Create(ctx, models.CollectionLeaveRequests, &models.LeaveRequest{
		UserID: ana.ID, LeaveType: "sick", Review: models.Review{Status: models.StatusPending},
	})
	require.NoError(t, err)
	path := "/hr/" + models.CollectionLeaveRequests + "/" + id + "/status"

	w := h.post(path, url.Values{"status": {"Approved"}}, &ana)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = h.post(path, url.Values{"status": {"Completed"}}, &hr)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = h.post(path, url.Values{"status": {"Approved"}, "remarks": {" Get well "}}, &hr)
	require.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/hr", w.Header().Get("Location"))

	var got models.LeaveRequest
	require.NoError(t, h.store.Get(ctx, models.CollectionLeaveRequests, id, &got))
	assert.Equal(t, models.StatusApproved, got.Status)
	assert.Equal(t, "Hana", got.ReviewedBy)
	assert.Equal(t, "Get well", got.Remarks)
	require.NotNil(t, got.ReviewedAt)

	w = h.post("/hr/"+models.CollectionLeaveRequests+"/missing/status", url.Values{"status": {"Rejected"}}, &hr)
	require.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, view.FlashError, flashesOf(t, w)[0].Kind)
}

func TestRecordViewer(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()
	id, err := h.store.Create(ctx, models.CollectionAccomplishments, &models.AccomplishmentReport{
		UniqueKey: ana.ID, Location: "Pasig depot", Review: models.Review{Status: models.StatusPending},
	})
	require.NoError(t, err)
	path := "/records/" + models.CollectionAccomplishments + "/" + id

	assert.Equal(t, http.StatusForbidden, h.get(path, &ben).Code)
	assert.Equal(t, http.StatusNotFound, h.get("/records/nope/"+id, &ana).Code)
	assert.Equal(t, http.StatusNotFound, h.get("/records/"+models.CollectionAccomplishments+"/missing", &ana).Code)

	w := h.get(path, &ana)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, view.CountByID(w.Body.Bytes(), view.ReportViewerID))
	assert.Contains(t, w.Body.String(), "Pasig depot")
	assert.Contains(t, w.Body.String(), "No photos attached.")

	h.relay.mediaErr = errors.New("telegram down")
	w = h.get(path, &hr)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), msgPhotosUnavailable)

	w = h.get("/api/records/"+models.CollectionAccomplishments+"/"+id+"/media", &ana)
	assert.Equal(t, http.StatusBadGateway, w.Code)
}

func TestReportViewerClosesToHomeBoard(t *testing.T) {
	h := newHarness(t, nil)
	id, err := h.store.Create(context.Background(), models.CollectionLeaveRequests, &models.LeaveRequest{
		UserID: ana.ID, LeaveType: "sick", Review: models.Review{Status: models.StatusPending},
	})
	require.NoError(t, err)
	path := "/records/" + models.CollectionLeaveRequests + "/" + id

	w := h.get(path, &hr)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `id="report-viewer-close" href="/hr"`)

	w = h.get(path, &ana)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `id="report-viewer-close" href="/dashboard"`)
}

func TestAttachmentsStreamThroughPortal(t *testing.T) {
	h := newHarness(t, nil)
	id, err := h.store.Create(context.Background(), models.CollectionAccomplishments, &models.AccomplishmentReport{
		UniqueKey: ana.ID, Location: "Pasig depot", Review: models.Review{Status: models.StatusPending},
	})
	require.NoError(t, err)
	h.relay.items = []models.MediaPointer{{ID: "file-2", ThumbID: "file-1", FileName: "site.jpg", Relay: relay.NameTelegram}}
	h.relay.files = map[int]string{0: "jpeg bytes"}
	base := "/records/" + models.CollectionAccomplishments + "/" + id

	w := h.get("/api/records/"+models.CollectionAccomplishments+"/"+id+"/media", &ana)
	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Items []models.MediaPointer `json:"items"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Items, 1)
	assert.Equal(t, MediaPath(models.CollectionAccomplishments, id, 0), resp.Items[0].URL)
	assert.Equal(t, resp.Items[0].URL+"?thumb=1", resp.Items[0].ThumbURL)

	w = h.get(base, &ana)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), MediaPath(models.CollectionAccomplishments, id, 0))

	w = h.get(base+"/media/0", &ana)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "jpeg bytes", w.Body.String())
	assert.Equal(t, "image/jpeg", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Cache-Control"), "private")

	w = h.get(base+"/media/0?thumb=1", &ana)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "thumb jpeg bytes", w.Body.String())

	assert.Equal(t, http.StatusNotFound, h.get(base+"/media/3", &ana).Code)
	assert.Equal(t, http.StatusNotFound, h.get(base+"/media/x", &ana).Code)
	assert.Equal(t, http.StatusForbidden, h.get(base+"/media/0", &ben).Code)

	h.relay.openErr = errors.New("telegram down")
	w = h.get(base+"/media/0", &ana)
	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Equal(t, msgPhotosUnavailable, w.Body.String())
}
