package view

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"gaming-ops-portal/internal/forms"
	"gaming-ops-portal/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"
)

func renderPage(t *testing.T, r *Renderer) []byte {
	t.Helper()
	page, err := r.PageBytes(Page{
		Title:   "Dashboard",
		Viewer:  &Viewer{Name: "Ana", Role: models.RoleEmployee, Department: "Operations"},
		Content: "<p>board</p>",
	})
	require.NoError(t, err)
	return page
}

func findInput(t *testing.T, page []byte, name, value string) *html.Node {
	t.Helper()
	doc, err := html.Parse(bytes.NewReader(page))
	require.NoError(t, err)
	return findFirst(doc, func(n *html.Node) bool {
		return (n.Data == "input" || n.Data == "textarea") && attr(n, "name") == name && (value == "" || attr(n, "value") == value)
	})
}

func TestMountingTwiceKeepsOneInstance(t *testing.T) {
	r := MustRenderer()
	page := renderPage(t, r)

	v, ok := BuildForm(&forms.TravelOrderForm{}, false)
	require.True(t, ok)
	m, err := r.FormModal(v)
	require.NoError(t, err)

	once, err := Mount(page, m)
	require.NoError(t, err)
	assert.Equal(t, 1, CountByID(once, "travel-order-modal"))

	twice, err := Mount(once, m)
	require.NoError(t, err)
	assert.Equal(t, 1, CountByID(twice, "travel-order-modal"))
	require.NoError(t, Attach(twice, v.AttachSpec()))
}

func TestMountDifferentModalsCoexist(t *testing.T) {
	r := MustRenderer()
	page := renderPage(t, r)

	travel, _ := BuildForm(&forms.TravelOrderForm{}, false)
	leave, _ := BuildForm(&forms.LeaveForm{}, false)
	m1, err := r.FormModal(travel)
	require.NoError(t, err)
	m2, err := r.FormModal(leave)
	require.NoError(t, err)

	page, err = Mount(page, m1)
	require.NoError(t, err)
	page, err = Mount(page, m2)
	require.NoError(t, err)
	assert.Equal(t, 1, CountByID(page, "travel-order-modal"))
	assert.Equal(t, 1, CountByID(page, "leave-modal"))
}

func TestAttachReportsMissingElements(t *testing.T) {
	page := []byte(`<html><body><div id="leave-modal"><form id="leave-form"></form></div></body></html>`)
	err := Attach(page, AttachSpec{RootID: "leave-modal", Required: []string{"leave-form", "leave-submit", "leave-close"}})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMissingElement))

	var missing *MissingElementsError
	require.True(t, errors.As(err, &missing))
	assert.Equal(t, []string{"leave-submit", "leave-close"}, missing.IDs)

	err = Attach(page, AttachSpec{RootID: "travel-order-modal"})
	assert.True(t, errors.Is(err, ErrMissingElement))
}

func TestSubmitDisabledUntilValid(t *testing.T) {
	r := MustRenderer()

	empty, _ := BuildForm(&forms.EarlyRestForm{}, false)
	assert.True(t, empty.SubmitDisabled)
	for _, f := range empty.Fields {
		assert.Empty(t, f.Error, "pristine form should not show errors")
	}
	m, err := r.FormModal(empty)
	require.NoError(t, err)
	assert.Contains(t, string(m.HTML), `id="early-rest-submit" type="submit" disabled`)

	filled, _ := BuildForm(&forms.EarlyRestForm{Date: "2026-10-20", RestTime: "15:00", Reason: "Clinic appointment"}, true)
	assert.False(t, filled.SubmitDisabled)
	m, err = r.FormModal(filled)
	require.NoError(t, err)
	assert.NotContains(t, string(m.HTML), "disabled")
}

func TestBuildFormShowsFieldErrors(t *testing.T) {
	f := &forms.TravelOrderForm{DateFiled: "2026-10-10", TravelDate: "2026-10-01"}
	v, _ := BuildForm(f, true)
	var travelDateErr string
	for _, fv := range v.Fields {
		if fv.Name == "travelDate" {
			travelDateErr = fv.Error
		}
	}
	assert.Equal(t, forms.MsgTravelBeforeFiling, travelDateErr)
}

func TestDeviceTypeMovesRequiredAttribute(t *testing.T) {
	r := MustRenderer()
	render := func(deviceType string) []byte {
		v, _ := BuildForm(&forms.DeviceChangeForm{DeviceType: deviceType}, false)
		m, err := r.FormModal(v)
		require.NoError(t, err)
		return []byte("<html><body>" + string(m.HTML) + "</body></html>")
	}

	pos := render("pos")
	require.NotNil(t, findInput(t, pos, "oldPosCode", ""))
	assert.True(t, hasAttr(findInput(t, pos, "oldPosCode", ""), "required"))
	assert.False(t, hasAttr(findInput(t, pos, "oldPhoneNumber", ""), "required"))
	assert.True(t, hasAttr(findInput(t, pos, "deviceType", "pos"), "checked"))

	phone := render("phone")
	assert.True(t, hasAttr(findInput(t, phone, "oldPhoneNumber", ""), "required"))
	assert.False(t, hasAttr(findInput(t, phone, "oldPosCode", ""), "required"))
}

func TestCategorizeFields(t *testing.T) {
	groups := CategorizeFields(map[string]string{
		"serviceDate": "2026-10-01",
		"serviceTime": "13:00",
		"location":    "Makati outlet",
		"submitter":   "Ana Reyes",
		"description": "Replaced printer",
		"serviceType": "Repair",
		"status":      "Pending",
		"reviewedAt":  "2026-10-02",
		"userId":      "ana@example.com",
		"remarks":     "",
	})

	var names []string
	for _, g := range groups {
		names = append(names, g.Name)
	}
	assert.Equal(t, []string{"Schedule", "Location", "People", "Details", "Status", "Other"}, names)

	assert.Equal(t, []Field{
		{Key: "serviceDate", Label: "Service Date", Value: "2026-10-01"},
		{Key: "serviceTime", Label: "Service Time", Value: "13:00"},
	}, groups[0].Fields)
	assert.Len(t, groups[3].Fields, 2)
	assert.Equal(t, "reviewedAt", groups[4].Fields[0].Key)
	assert.Len(t, groups[4].Fields, 2)
}

func TestFlattenRecord(t *testing.T) {
	order := models.TravelOrder{
		EmployeeName: "Ana",
		Passengers:   []string{"Ben", "Cy"},
		Review:       models.Review{Status: models.StatusPending},
	}
	order.ID = "abc"
	fields, err := FlattenRecord(order)
	require.NoError(t, err)
	assert.Equal(t, "Ana", fields["employeeName"])
	assert.Equal(t, "Ben, Cy", fields["passengers"])
	assert.Equal(t, "Pending", fields["status"])
	assert.NotContains(t, fields, "id")
}

func TestReportModalRendersPhotos(t *testing.T) {
	r := MustRenderer()
	m, err := r.ReportModal(ReportView{
		Title:  "Accomplishment Report",
		Groups: CategorizeFields(map[string]string{"location": "Pasig"}),
		Photos: []models.MediaPointer{{URL: "https://cdn.example.com/a.jpg", FileName: "a.jpg"}},
	})
	require.NoError(t, err)
	assert.Equal(t, ReportViewerID, m.RootID)
	assert.Contains(t, string(m.HTML), "https://cdn.example.com/a.jpg")
	assert.Contains(t, string(m.HTML), "Pasig")

	m, err = r.ReportModal(ReportView{Title: "x", PhotoError: "Photos are unavailable right now."})
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(m.HTML), "Photos are unavailable right now."))
	assert.NotContains(t, string(m.HTML), "No photos attached.")
}
