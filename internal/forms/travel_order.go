package forms

import "strings"

const (
	MsgTravelBeforeFiling = "Travel date cannot be before the filing date."
	MsgReturnBeforeDepart = "Return time must be after departure time."
)

type TravelOrderForm struct {
	EmployeeName  string `form:"employeeName" json:"employeeName" label:"Employee name" binding:"required"`
	Department    string `form:"department" json:"department" label:"Department" binding:"required"`
	DateFiled     string `form:"dateFiled" json:"dateFiled" label:"Date filed" binding:"required,datetime=2006-01-02"`
	TravelDate    string `form:"travelDate" json:"travelDate" label:"Travel date" binding:"required,datetime=2006-01-02"`
	DepartureTime string `form:"departureTime" json:"departureTime" label:"Departure time" binding:"required,datetime=15:04"`
	ReturnTime    string `form:"returnTime" json:"returnTime" label:"Return time" binding:"required,datetime=15:04"`
	Destination   string `form:"destination" json:"destination" label:"Destination" binding:"required,max=200"`
	DriverName    string `form:"driverName" json:"driverName" label:"Driver" binding:"required"`
	RelieverName  string `form:"relieverName" json:"relieverName" label:"Reliever"`
	Passengers    string `form:"passengers" json:"passengers" label:"Passengers"`
	Purpose       string `form:"purpose" json:"purpose" label:"Purpose" binding:"required,max=2000"`
}

func (f *TravelOrderForm) Validate() FieldErrors {
	errs := walk(f)

	filed, okFiled := parseDate(f.DateFiled)
	travel, okTravel := parseDate(f.TravelDate)
	if okFiled && okTravel && travel.Before(filed) {
		errs.Add("travelDate", MsgTravelBeforeFiling)
	}

	// Later trips may run overnight; only same-day filings are checked.
	dep, okDep := parseClock(f.DepartureTime)
	ret, okRet := parseClock(f.ReturnTime)
	if f.TravelDate == f.DateFiled && okDep && okRet && !ret.After(dep) {
		errs.Add("returnTime", MsgReturnBeforeDepart)
	}
	return errs
}

// PassengerList splits the textarea into one trimmed name per line.
func (f *TravelOrderForm) PassengerList() []string {
	var out []string
	for _, line := range strings.Split(f.Passengers, "\n") {
		if name := strings.TrimSpace(line); name != "" {
			out = append(out, name)
		}
	}
	return out
}
