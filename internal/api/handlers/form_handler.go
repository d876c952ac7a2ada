package handlers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	"gaming-ops-portal/internal/dashboard"
	"gaming-ops-portal/internal/forms"
	"gaming-ops-portal/internal/models"
	"gaming-ops-portal/internal/relay"
	"gaming-ops-portal/internal/submission"
	"gaming-ops-portal/internal/view"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

const (
	msgUnreadableForm = "The form could not be read. Please try again."
	msgSaveFailed     = "Your submission could not be saved. Please try again."
)

type formDef struct {
	label string
	board string
	roles []string
}

func (s formDef) allowed(role string) bool {
	if len(s.roles) == 0 {
		return true
	}
	for _, r := range s.roles {
		if r == role {
			return true
		}
	}
	return false
}

var formDefs = map[string]formDef{
	forms.KindTravelOrder:    {label: "Travel order", board: dashboard.BoardEmployee},
	forms.KindAccomplishment: {label: "Accomplishment report", board: dashboard.BoardEmployee},
	forms.KindDeviceChange:   {label: "Device ID change request", board: dashboard.BoardEmployee},
	forms.KindLeave:          {label: "Leave request", board: dashboard.BoardEmployee},
	forms.KindEarlyRest:      {label: "Early rest request", board: dashboard.BoardEmployee},
	forms.KindITService:      {label: "IT service order", board: dashboard.BoardEmployee},
	forms.KindClient:         {label: "Client", board: dashboard.BoardAdmin, roles: []string{models.RoleAdmin}},
}

type FormHandler struct {
	*Portal
	Submissions *submission.Service
	now         func() time.Time
}

func (h *FormHandler) clock() time.Time {
	if h.now != nil {
		return h.now()
	}
	return time.Now()
}

// bindForm fills f from the request. Rule failures are left to f.Validate so
// every field gets its own message; only unreadable bodies are errors.
func bindForm(c *gin.Context, f forms.Form) error {
	err := c.ShouldBind(f)
	var verrs validator.ValidationErrors
	if err == nil || errors.As(err, &verrs) {
		return nil
	}
	return err
}

// resolveForm finds the definition and an empty form for kind. The status
// is non-zero when the kind is unknown or the role may not use it.
func resolveForm(kind, role string) (formDef, forms.Form, int) {
	def, ok := formDefs[kind]
	f, okForm := forms.New(kind)
	if !ok || !okForm {
		return formDef{}, nil, http.StatusNotFound
	}
	if !def.allowed(role) {
		return formDef{}, nil, http.StatusForbidden
	}
	return def, f, 0
}

func (h *FormHandler) lookup(c *gin.Context) (string, formDef, forms.Form, bool) {
	kind := c.Param("kind")
	def, f, status := resolveForm(kind, mustViewer(c).Role)
	switch status {
	case http.StatusNotFound:
		c.String(status, "Unknown form.")
		return "", formDef{}, nil, false
	case http.StatusForbidden:
		c.String(status, "You do not have permission to access this page.")
		return "", formDef{}, nil, false
	}
	return kind, def, f, true
}

// New mounts an empty form modal over the form's board.
func (h *FormHandler) New(c *gin.Context) {
	kind, _, f, ok := h.lookup(c)
	if !ok {
		return
	}
	h.prefill(f, mustViewer(c))
	h.showForm(c, http.StatusOK, kind, f, false, nil, nil)
}

func (h *FormHandler) prefill(f forms.Form, v view.Viewer) {
	today := h.clock().Format("2006-01-02")
	switch f := f.(type) {
	case *forms.TravelOrderForm:
		f.EmployeeName, f.Department, f.DateFiled = v.Name, v.Department, today
	case *forms.AccomplishmentForm:
		f.Department, f.ServiceDate = v.Department, today
	case *forms.EarlyRestForm:
		f.Date = today
	}
}

// showForm renders the modal for f. With show set, field errors are shown.
func (h *FormHandler) showForm(c *gin.Context, status int, kind string, f forms.Form, show bool, extra forms.FieldErrors, flashes []view.Flash) {
	v := mustViewer(c)
	fv, _ := view.BuildForm(f, show)
	fv.Back = BoardPath(HomeBoard(v))
	for name, msg := range extra {
		if name == "_form" {
			fv.FormError = msg
			continue
		}
		for i := range fv.Fields {
			if fv.Fields[i].Name == name && fv.Fields[i].Error == "" {
				fv.Fields[i].Error = msg
			}
		}
		fv.SubmitDisabled = true
	}
	m, err := h.Renderer.FormModal(fv)
	if err != nil {
		h.Log.Error().Err(err).Str("form", kind).Msg("render form")
		c.String(http.StatusInternalServerError, "internal error")
		return
	}
	h.renderModal(c, status, formDefs[kind].board, v, m, fv.AttachSpec(), flashes)
}

// Validate answers the page's per-keystroke checks with the same rules the
// submit runs.
func (h *FormHandler) Validate(c *gin.Context) {
	_, f, status := resolveForm(c.Param("kind"), mustViewer(c).Role)
	switch status {
	case http.StatusNotFound:
		c.JSON(status, gin.H{"error": "unknown form"})
		return
	case http.StatusForbidden:
		c.JSON(status, gin.H{"error": "You do not have permission to use this form"})
		return
	}
	if err := bindForm(c, f); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": msgUnreadableForm})
		return
	}
	errs := f.Validate()
	resp := gin.H{"errors": errs, "valid": errs.Valid()}
	if df, ok := f.(*forms.DeviceChangeForm); ok {
		req := forms.RequiredFields(models.DeviceType(df.DeviceType))
		required := make([]string, 0, len(req))
		for name := range req {
			required = append(required, name)
		}
		sort.Strings(required)
		var optional []string
		for _, name := range []string{"oldPosCode", "oldPhoneNumber"} {
			if !req[name] {
				optional = append(optional, name)
			}
		}
		resp["required"] = required
		resp["optional"] = optional
	}
	c.JSON(http.StatusOK, resp)
}

// Submit validates, stores and relays one form, then redirects to the board
// with the outcome banners.
func (h *FormHandler) Submit(kind string) gin.HandlerFunc {
	return func(c *gin.Context) {
		def := formDefs[kind]
		v := mustViewer(c)
		if !def.allowed(v.Role) {
			c.String(http.StatusForbidden, "You do not have permission to access this page.")
			return
		}
		f, _ := forms.New(kind)
		if err := bindForm(c, f); err != nil {
			h.Log.Warn().Err(err).Str("form", kind).Msg("bind form")
			h.showForm(c, http.StatusBadRequest, kind, f, true, forms.FieldErrors{"_form": msgUnreadableForm}, nil)
			return
		}

		errs := f.Validate()
		var files []relay.File
		if kind == forms.KindAccomplishment {
			var photoErrs forms.FieldErrors
			files, photoErrs = h.readPhotos(c)
			for k, msg := range photoErrs {
				errs.Add(k, msg)
			}
		}
		if !errs.Valid() {
			h.showForm(c, http.StatusUnprocessableEntity, kind, f, true, errs, nil)
			return
		}

		res, err := h.save(c.Request.Context(), f, v, files)
		if err != nil {
			h.Log.Error().Err(err).Str("form", kind).Str("user", v.ID).Msg("save submission")
			h.showForm(c, http.StatusInternalServerError, kind, f, true, nil,
				[]view.Flash{{Kind: view.FlashError, Message: msgSaveFailed}})
			return
		}

		flashes := []view.Flash{{Kind: view.FlashSuccess, Message: submission.Success(def.label)}}
		if res.Warning != "" {
			flashes = append(flashes, view.Flash{Kind: view.FlashWarning, Message: res.Warning})
		}
		redirectWithFlashes(c, BoardPath(def.board), flashes...)
	}
}

func (h *FormHandler) readPhotos(c *gin.Context) ([]relay.File, forms.FieldErrors) {
	mf, err := c.MultipartForm()
	if err != nil {
		if errors.Is(err, http.ErrNotMultipart) {
			return nil, nil
		}
		return nil, forms.FieldErrors{"photos": "Photos could not be read."}
	}
	headers := mf.File["photos"]
	if errs := forms.ValidatePhotos(headers); !errs.Valid() {
		return nil, errs
	}

	files := make([]relay.File, 0, len(headers))
	for _, fh := range headers {
		src, err := fh.Open()
		if err != nil {
			return nil, forms.FieldErrors{"photos": fmt.Sprintf("%s could not be read.", fh.Filename)}
		}
		data, err := io.ReadAll(io.LimitReader(src, forms.MaxPhotoBytes+1))
		src.Close()
		if err != nil {
			return nil, forms.FieldErrors{"photos": fmt.Sprintf("%s could not be read.", fh.Filename)}
		}
		ct := fh.Header.Get("Content-Type")
		if ct == "" || ct == "application/octet-stream" {
			ct = http.DetectContentType(data)
		}
		if !strings.HasPrefix(ct, "image/") {
			return nil, forms.FieldErrors{"photos": fmt.Sprintf("%s is not an image.", fh.Filename)}
		}
		files = append(files, relay.File{Name: fh.Filename, ContentType: ct, Data: data})
	}
	return files, nil
}

func reference(prefix string, now time.Time) string {
	return fmt.Sprintf("%s-%s-%s", prefix, now.Format("20060102"), strings.ToUpper(uuid.NewString()[:6]))
}

// save turns a valid form into its record and submits it.
func (h *FormHandler) save(ctx context.Context, f forms.Form, v view.Viewer, files []relay.File) (submission.Result, error) {
	now := h.clock().UTC()
	pending := models.Review{Status: models.StatusPending}

	switch f := f.(type) {
	case *forms.TravelOrderForm:
		doc := &models.TravelOrder{
			OrderNumber:   reference("TO", now),
			UserID:        v.ID,
			EmployeeName:  f.EmployeeName,
			Department:    f.Department,
			DateFiled:     f.DateFiled,
			TravelDate:    f.TravelDate,
			DepartureTime: f.DepartureTime,
			ReturnTime:    f.ReturnTime,
			Destination:   f.Destination,
			DriverName:    f.DriverName,
			RelieverName:  f.RelieverName,
			Passengers:    f.PassengerList(),
			Purpose:       f.Purpose,
			Review:        pending,
			CreatedAt:     now,
			UpdatedAt:     now,
		}
		return h.Submissions.Submit(ctx, models.CollectionTravelOrders, doc, nil, forms.KindTravelOrder)

	case *forms.AccomplishmentForm:
		doc := &models.AccomplishmentReport{
			UniqueKey:   v.ID,
			Submitter:   v.Name,
			Department:  f.Department,
			Position:    f.Position,
			ServiceDate: f.ServiceDate,
			ServiceTime: f.ServiceTime,
			ServiceType: f.ServiceType,
			Location:    f.Location,
			Description: f.Description,
			PhotoCount:  len(files),
			Review:      pending,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		return h.Submissions.Submit(ctx, models.CollectionAccomplishments, doc, files, forms.KindAccomplishment)

	case *forms.DeviceChangeForm:
		doc := &models.DeviceIDChange{
			RequestNumber: reference("DC", now),
			UserID:        v.ID,
			RequestedBy:   v.Name,
			DeviceType:    models.DeviceType(f.DeviceType),
			Operator:      strings.TrimSpace(f.Operator),
			NewCode:       f.NewCode,
			Reason:        f.Reason,
			Review:        pending,
			CreatedAt:     now,
			UpdatedAt:     now,
		}
		if doc.DeviceType == models.DeviceTypePOS {
			doc.OldPOSCode = f.OldPOSCode
		} else {
			doc.OldPhoneNumber = f.OldPhoneNumber
		}
		return h.Submissions.SubmitDeviceChange(ctx, doc)

	case *forms.LeaveForm:
		doc := &models.LeaveRequest{
			UserID:       v.ID,
			EmployeeName: v.Name,
			Department:   v.Department,
			LeaveType:    f.LeaveType,
			StartDate:    f.StartDate,
			EndDate:      f.EndDate,
			Reason:       f.Reason,
			Review:       pending,
			CreatedAt:    now,
		}
		return h.Submissions.Submit(ctx, models.CollectionLeaveRequests, doc, nil, forms.KindLeave)

	case *forms.EarlyRestForm:
		doc := &models.EarlyRestRequest{
			UserID:       v.ID,
			EmployeeName: v.Name,
			Department:   v.Department,
			Date:         f.Date,
			RestTime:     f.RestTime,
			Reason:       f.Reason,
			Review:       pending,
			CreatedAt:    now,
		}
		return h.Submissions.Submit(ctx, models.CollectionEarlyRestRequests, doc, nil, forms.KindEarlyRest)

	case *forms.ITServiceForm:
		doc := &models.ITServiceOrder{
			UserID:       v.ID,
			EmployeeName: v.Name,
			Department:   v.Department,
			Category:     f.Category,
			Description:  f.Description,
			Location:     f.Location,
			Review:       pending,
			CreatedAt:    now,
		}
		return h.Submissions.Submit(ctx, models.CollectionITServiceOrders, doc, nil, forms.KindITService)

	case *forms.ClientForm:
		doc := &models.Client{
			Name:          f.Name,
			ContactPerson: f.ContactPerson,
			Area:          f.Area,
			Status:        "Active",
			CreatedAt:     now,
		}
		return h.Submissions.Submit(ctx, models.CollectionClients, doc, nil, forms.KindClient)
	}
	return submission.Result{}, fmt.Errorf("unsupported form %T", f)
}
