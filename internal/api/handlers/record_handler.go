package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"gaming-ops-portal/internal/database"
	"gaming-ops-portal/internal/models"
	"gaming-ops-portal/internal/relay"
	"gaming-ops-portal/internal/view"

	"github.com/gin-gonic/gin"
)

const msgPhotosUnavailable = "Photos are unavailable right now."

var recordTitles = map[string]string{
	models.CollectionTravelOrders:          "Travel Order",
	models.CollectionAccomplishments:       "Accomplishment Report",
	models.CollectionDeviceIDChanges:       "Device ID Change",
	models.CollectionOperatorDeviceSummary: "Operator Summary",
	models.CollectionEarlyRestRequests:     "Early Rest Request",
	models.CollectionITServiceOrders:       "IT Service Order",
	models.CollectionLeaveRequests:         "Leave Request",
	models.CollectionClients:               "Client",
}

// RecordHandler shows single records in the report viewer.
type RecordHandler struct {
	*Portal
	Relay relay.Relay
}

// load fetches a record the viewer may see. Employees only see their own.
func (h *RecordHandler) load(c *gin.Context) (string, string, map[string]string, bool) {
	v := mustViewer(c)
	collection, id := c.Param("collection"), c.Param("id")
	doc, ok := models.New(collection)
	if !ok {
		c.String(http.StatusNotFound, "Record not found.")
		return "", "", nil, false
	}
	err := h.Store.Get(c.Request.Context(), collection, id, doc)
	if errors.Is(err, database.ErrNotFound) {
		c.String(http.StatusNotFound, "Record not found.")
		return "", "", nil, false
	}
	if err != nil {
		h.Log.Error().Err(err).Str("collection", collection).Str("id", id).Msg("load record")
		c.String(http.StatusInternalServerError, "internal error")
		return "", "", nil, false
	}
	fields, err := view.FlattenRecord(doc)
	if err != nil {
		h.Log.Error().Err(err).Str("collection", collection).Str("id", id).Msg("flatten record")
		c.String(http.StatusInternalServerError, "internal error")
		return "", "", nil, false
	}
	if !canSee(v, fields) {
		c.String(http.StatusForbidden, "You do not have permission to view this record.")
		return "", "", nil, false
	}
	return collection, id, fields, true
}

func canSee(v view.Viewer, fields map[string]string) bool {
	if v.Role == models.RoleAdmin || v.Role == models.RoleHR {
		return true
	}
	return fields["userId"] == v.ID || fields["uniquekey"] == v.ID
}

// MediaPath is the portal URL that streams the n-th attachment of a record.
func MediaPath(collection, id string, n int) string {
	return fmt.Sprintf("/records/%s/%s/media/%d", collection, id, n)
}

// linkMedia points items the relay cannot link publicly at MediaPath.
func linkMedia(collection, id string, items []models.MediaPointer) []models.MediaPointer {
	for i := range items {
		if items[i].URL != "" {
			continue
		}
		items[i].URL = MediaPath(collection, id, i)
		if items[i].ThumbID != "" {
			items[i].ThumbURL = items[i].URL + "?thumb=1"
		}
	}
	return items
}

// Show mounts the report viewer over the viewer's home board.
func (h *RecordHandler) Show(c *gin.Context) {
	collection, id, fields, ok := h.load(c)
	if !ok {
		return
	}
	v := mustViewer(c)
	rv := view.ReportView{
		Title:    recordTitles[collection],
		RecordID: id,
		Groups:   view.CategorizeFields(fields),
		Back:     BoardPath(HomeBoard(v)),
	}
	if collection == models.CollectionAccomplishments {
		photos, err := h.Relay.Media(c.Request.Context(), id)
		if err != nil {
			h.Log.Warn().Err(err).Str("record", id).Str("relay", h.Relay.Name()).Msg("load photos")
			rv.PhotoError = msgPhotosUnavailable
		}
		rv.Photos = linkMedia(collection, id, photos)
	}

	m, err := h.Renderer.ReportModal(rv)
	if err != nil {
		h.Log.Error().Err(err).Msg("render report")
		c.String(http.StatusInternalServerError, "internal error")
		return
	}
	h.renderModal(c, http.StatusOK, HomeBoard(v), v, m,
		view.AttachSpec{RootID: view.ReportViewerID, Required: []string{"report-viewer-close", "report-viewer-photos"}}, nil)
}

// Media returns a record's attachments as JSON.
func (h *RecordHandler) Media(c *gin.Context) {
	collection, id, _, ok := h.load(c)
	if !ok {
		return
	}
	photos, err := h.Relay.Media(c.Request.Context(), id)
	if err != nil {
		h.Log.Warn().Err(err).Str("record", id).Msg("load photos")
		c.JSON(http.StatusBadGateway, gin.H{"error": msgPhotosUnavailable})
		return
	}
	if photos == nil {
		photos = []models.MediaPointer{}
	}
	c.JSON(http.StatusOK, gin.H{"recordId": id, "items": linkMedia(collection, id, photos)})
}

// File streams one attachment through the portal, so relay credentials
// never reach the browser.
func (h *RecordHandler) File(c *gin.Context) {
	_, id, _, ok := h.load(c)
	if !ok {
		return
	}
	n, err := strconv.Atoi(c.Param("n"))
	if err != nil {
		c.String(http.StatusNotFound, "Attachment not found.")
		return
	}
	d, err := h.Relay.Open(c.Request.Context(), id, n, c.Query("thumb") == "1")
	if errors.Is(err, relay.ErrNoMedia) {
		c.String(http.StatusNotFound, "Attachment not found.")
		return
	}
	if err != nil {
		h.Log.Warn().Err(err).Str("record", id).Int("item", n).Str("relay", h.Relay.Name()).Msg("open attachment")
		c.String(http.StatusBadGateway, msgPhotosUnavailable)
		return
	}
	defer d.Body.Close()
	if d.ContentType == "" {
		d.ContentType = "application/octet-stream"
	}
	c.Header("Cache-Control", "private, max-age=300")
	if d.Size >= 0 {
		c.DataFromReader(http.StatusOK, d.Size, d.ContentType, d.Body, nil)
		return
	}
	c.Header("Content-Type", d.ContentType)
	c.Status(http.StatusOK)
	if _, err := io.Copy(c.Writer, d.Body); err != nil {
		h.Log.Warn().Err(err).Str("record", id).Msg("stream attachment")
	}
}
