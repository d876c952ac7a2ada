package forms

import "gaming-ops-portal/internal/models"

const MsgReasonShort = "Reason must be at least 10 characters."

type DeviceChangeForm struct {
	DeviceType     string `form:"deviceType" json:"deviceType" label:"Device type" binding:"required,oneof=pos phone"`
	Operator       string `form:"operator" json:"operator" label:"Operator" binding:"required"`
	OldPOSCode     string `form:"oldPosCode" json:"oldPosCode" label:"Old POS code" binding:"required_if=DeviceType pos"`
	OldPhoneNumber string `form:"oldPhoneNumber" json:"oldPhoneNumber" label:"Old phone number" binding:"required_if=DeviceType phone"`
	NewCode        string `form:"newCode" json:"newCode" label:"New device code" binding:"required"`
	Reason         string `form:"reason" json:"reason" label:"Reason" binding:"required"`
}

// RequiredFields lists the fields that carry the required attribute for a
// device type. Switching the radio moves required between the POS-only and
// phone-only inputs.
func RequiredFields(deviceType models.DeviceType) map[string]bool {
	req := map[string]bool{
		"deviceType": true,
		"operator":   true,
		"newCode":    true,
		"reason":     true,
	}
	switch deviceType {
	case models.DeviceTypePOS:
		req["oldPosCode"] = true
	case models.DeviceTypePhone:
		req["oldPhoneNumber"] = true
	}
	return req
}

func (f *DeviceChangeForm) Validate() FieldErrors {
	errs := walk(f)
	if length(f.Reason) < 10 {
		errs.Add("reason", MsgReasonShort)
	}
	return errs
}
