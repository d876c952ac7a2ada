package forms

const MsgEndBeforeStart = "End date cannot be before the start date."

type LeaveForm struct {
	LeaveType string `form:"leaveType" json:"leaveType" label:"Leave type" binding:"required,oneof=vacation sick emergency"`
	StartDate string `form:"startDate" json:"startDate" label:"Start date" binding:"required,datetime=2006-01-02"`
	EndDate   string `form:"endDate" json:"endDate" label:"End date" binding:"required,datetime=2006-01-02"`
	Reason    string `form:"reason" json:"reason" label:"Reason" binding:"required,max=1000"`
}

func (f *LeaveForm) Validate() FieldErrors {
	errs := walk(f)
	start, okStart := parseDate(f.StartDate)
	end, okEnd := parseDate(f.EndDate)
	if okStart && okEnd && end.Before(start) {
		errs.Add("endDate", MsgEndBeforeStart)
	}
	return errs
}

type EarlyRestForm struct {
	Date     string `form:"date" json:"date" label:"Date" binding:"required,datetime=2006-01-02"`
	RestTime string `form:"restTime" json:"restTime" label:"Rest time" binding:"required,datetime=15:04"`
	Reason   string `form:"reason" json:"reason" label:"Reason" binding:"required,max=1000"`
}

func (f *EarlyRestForm) Validate() FieldErrors { return walk(f) }

type ITServiceForm struct {
	Category    string `form:"category" json:"category" label:"Category" binding:"required,oneof=hardware software network account other"`
	Location    string `form:"location" json:"location" label:"Location" binding:"required"`
	Description string `form:"description" json:"description" label:"Description" binding:"required,max=2000"`
}

func (f *ITServiceForm) Validate() FieldErrors {
	errs := walk(f)
	if length(f.Description) < DescriptionMin {
		errs.Add("description", MsgDescriptionShort)
	}
	return errs
}

type ClientForm struct {
	Name          string `form:"name" json:"name" label:"Client name" binding:"required,max=200"`
	ContactPerson string `form:"contactPerson" json:"contactPerson" label:"Contact person" binding:"required"`
	Area          string `form:"area" json:"area" label:"Area" binding:"required"`
}

func (f *ClientForm) Validate() FieldErrors { return walk(f) }
