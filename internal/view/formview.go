package view

import (
	"gaming-ops-portal/internal/forms"
	"gaming-ops-portal/internal/models"
)

type Option struct {
	Value    string
	Label    string
	Selected bool
}

// FieldView is one input in a form modal.
type FieldView struct {
	Name        string
	Label       string
	Type        string // text, date, time, textarea, select, radio, file
	Value       string
	Options     []Option
	Required    bool
	Error       string
	Placeholder string
	Multiple    bool
	Accept      string
}

func (f FieldView) ID() string { return "field-" + f.Name }

// FormView is the render context of a form modal.
type FormView struct {
	Kind           string
	Title          string
	Action         string
	Multipart      bool
	Fields         []FieldView
	SubmitLabel    string
	SubmitDisabled bool
	FormError      string
	// Back is where closing the modal leads.
	Back string
}

func (v FormView) RootID() string   { return v.Kind + "-modal" }
func (v FormView) FormID() string   { return v.Kind + "-form" }
func (v FormView) SubmitID() string { return v.Kind + "-submit" }
func (v FormView) CloseID() string  { return v.Kind + "-close" }

// AttachSpec lists what the mounted form modal must expose.
func (v FormView) AttachSpec() AttachSpec {
	return AttachSpec{RootID: v.RootID(), Required: []string{v.FormID(), v.SubmitID(), v.CloseID()}}
}

// FormModal renders a form view into modal markup.
func (r *Renderer) FormModal(v FormView) (Modal, error) {
	markup, err := r.Fragment("form_modal", v)
	if err != nil {
		return Modal{}, err
	}
	return Modal{RootID: v.RootID(), HTML: markup}, nil
}

// BuildForm picks the view builder for a bound form. Field errors are only
// shown once show is set, but the submit button is disabled whenever the
// form does not validate.
func BuildForm(form forms.Form, show bool) (FormView, bool) {
	errs := form.Validate()
	var v FormView
	switch f := form.(type) {
	case *forms.TravelOrderForm:
		v = travelOrderView(f)
	case *forms.AccomplishmentForm:
		v = accomplishmentView(f)
	case *forms.DeviceChangeForm:
		v = deviceChangeView(f)
	case *forms.LeaveForm:
		v = leaveView(f)
	case *forms.EarlyRestForm:
		v = earlyRestView(f)
	case *forms.ITServiceForm:
		v = itServiceView(f)
	case *forms.ClientForm:
		v = clientView(f)
	default:
		return FormView{}, false
	}
	v.SubmitDisabled = !errs.Valid()
	if show {
		for i := range v.Fields {
			v.Fields[i].Error = errs[v.Fields[i].Name]
		}
		v.FormError = errs["_form"]
	}
	return v, true
}

func travelOrderView(f *forms.TravelOrderForm) FormView {
	return FormView{
		Kind:        forms.KindTravelOrder,
		Title:       "Travel Order",
		Action:      "/travel-orders",
		SubmitLabel: "Submit travel order",
		Fields: []FieldView{
			{Name: "employeeName", Label: "Employee name", Type: "text", Value: f.EmployeeName, Required: true},
			{Name: "department", Label: "Department", Type: "text", Value: f.Department, Required: true},
			{Name: "dateFiled", Label: "Date filed", Type: "date", Value: f.DateFiled, Required: true},
			{Name: "travelDate", Label: "Travel date", Type: "date", Value: f.TravelDate, Required: true},
			{Name: "departureTime", Label: "Departure time", Type: "time", Value: f.DepartureTime, Required: true},
			{Name: "returnTime", Label: "Return time", Type: "time", Value: f.ReturnTime, Required: true},
			{Name: "destination", Label: "Destination", Type: "text", Value: f.Destination, Required: true},
			{Name: "driverName", Label: "Driver", Type: "text", Value: f.DriverName, Required: true},
			{Name: "relieverName", Label: "Reliever", Type: "text", Value: f.RelieverName},
			{Name: "passengers", Label: "Passengers", Type: "textarea", Value: f.Passengers, Placeholder: "One name per line"},
			{Name: "purpose", Label: "Purpose", Type: "textarea", Value: f.Purpose, Required: true},
		},
	}
}

func accomplishmentView(f *forms.AccomplishmentForm) FormView {
	return FormView{
		Kind:        forms.KindAccomplishment,
		Title:       "Accomplishment Report",
		Action:      "/accomplishments",
		Multipart:   true,
		SubmitLabel: "Submit report",
		Fields: []FieldView{
			{Name: "department", Label: "Department", Type: "text", Value: f.Department, Required: true},
			{Name: "position", Label: "Position", Type: "text", Value: f.Position, Required: true},
			{Name: "serviceDate", Label: "Service date", Type: "date", Value: f.ServiceDate, Required: true},
			{Name: "serviceTime", Label: "Service time", Type: "time", Value: f.ServiceTime, Required: true},
			{Name: "serviceType", Label: "Service type", Type: "select", Required: true, Options: options(f.ServiceType,
				"Installation", "Repair", "Preventive maintenance", "Pull-out", "Audit", "Other")},
			{Name: "location", Label: "Location", Type: "text", Value: f.Location, Required: true},
			{Name: "description", Label: "Description", Type: "textarea", Value: f.Description, Required: true,
				Placeholder: "At least 10 characters"},
			{Name: "photos", Label: "Photos", Type: "file", Multiple: true, Accept: "image/*"},
		},
	}
}

func deviceChangeView(f *forms.DeviceChangeForm) FormView {
	req := forms.RequiredFields(models.DeviceType(f.DeviceType))
	return FormView{
		Kind:        forms.KindDeviceChange,
		Title:       "Device ID Change",
		Action:      "/device-changes",
		SubmitLabel: "Submit request",
		Fields: []FieldView{
			{Name: "deviceType", Label: "Device type", Type: "radio", Required: req["deviceType"], Options: []Option{
				{Value: string(models.DeviceTypePOS), Label: "POS terminal", Selected: f.DeviceType == string(models.DeviceTypePOS)},
				{Value: string(models.DeviceTypePhone), Label: "Phone", Selected: f.DeviceType == string(models.DeviceTypePhone)},
			}},
			{Name: "operator", Label: "Operator", Type: "text", Value: f.Operator, Required: req["operator"]},
			{Name: "oldPosCode", Label: "Old POS code", Type: "text", Value: f.OldPOSCode, Required: req["oldPosCode"]},
			{Name: "oldPhoneNumber", Label: "Old phone number", Type: "text", Value: f.OldPhoneNumber, Required: req["oldPhoneNumber"]},
			{Name: "newCode", Label: "New device code", Type: "text", Value: f.NewCode, Required: req["newCode"]},
			{Name: "reason", Label: "Reason", Type: "textarea", Value: f.Reason, Required: req["reason"]},
		},
	}
}

func leaveView(f *forms.LeaveForm) FormView {
	return FormView{
		Kind:        forms.KindLeave,
		Title:       "Leave Request",
		Action:      "/requests/leave",
		SubmitLabel: "File leave",
		Fields: []FieldView{
			{Name: "leaveType", Label: "Leave type", Type: "select", Required: true, Options: options(f.LeaveType, "vacation", "sick", "emergency")},
			{Name: "startDate", Label: "Start date", Type: "date", Value: f.StartDate, Required: true},
			{Name: "endDate", Label: "End date", Type: "date", Value: f.EndDate, Required: true},
			{Name: "reason", Label: "Reason", Type: "textarea", Value: f.Reason, Required: true},
		},
	}
}

func earlyRestView(f *forms.EarlyRestForm) FormView {
	return FormView{
		Kind:        forms.KindEarlyRest,
		Title:       "Early Rest Request",
		Action:      "/requests/early-rest",
		SubmitLabel: "Request early rest",
		Fields: []FieldView{
			{Name: "date", Label: "Date", Type: "date", Value: f.Date, Required: true},
			{Name: "restTime", Label: "Rest time", Type: "time", Value: f.RestTime, Required: true},
			{Name: "reason", Label: "Reason", Type: "textarea", Value: f.Reason, Required: true},
		},
	}
}

func itServiceView(f *forms.ITServiceForm) FormView {
	return FormView{
		Kind:        forms.KindITService,
		Title:       "IT Service Order",
		Action:      "/requests/it-service",
		SubmitLabel: "Open service order",
		Fields: []FieldView{
			{Name: "category", Label: "Category", Type: "select", Required: true, Options: options(f.Category, "hardware", "software", "network", "account", "other")},
			{Name: "location", Label: "Location", Type: "text", Value: f.Location, Required: true},
			{Name: "description", Label: "Description", Type: "textarea", Value: f.Description, Required: true},
		},
	}
}

func clientView(f *forms.ClientForm) FormView {
	return FormView{
		Kind:        forms.KindClient,
		Title:       "New Client",
		Action:      "/admin/clients",
		SubmitLabel: "Add client",
		Fields: []FieldView{
			{Name: "name", Label: "Client name", Type: "text", Value: f.Name, Required: true},
			{Name: "contactPerson", Label: "Contact person", Type: "text", Value: f.ContactPerson, Required: true},
			{Name: "area", Label: "Area", Type: "text", Value: f.Area, Required: true},
		},
	}
}

func options(selected string, values ...string) []Option {
	out := make([]Option, 0, len(values))
	for _, v := range values {
		out = append(out, Option{Value: v, Label: v, Selected: v == selected})
	}
	return out
}
