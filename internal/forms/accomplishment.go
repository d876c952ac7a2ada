package forms

import (
	"fmt"
	"mime/multipart"
	"strings"
)

const (
	DescriptionMin = 10
	DescriptionMax = 2000
	MaxPhotos      = 10
	MaxPhotoBytes  = 10 << 20

	MsgDescriptionShort = "Description must be at least 10 characters."
	MsgDescriptionLong  = "Description must not exceed 2000 characters."
)

type AccomplishmentForm struct {
	Department  string `form:"department" json:"department" label:"Department" binding:"required"`
	Position    string `form:"position" json:"position" label:"Position" binding:"required"`
	ServiceDate string `form:"serviceDate" json:"serviceDate" label:"Service date" binding:"required,datetime=2006-01-02"`
	ServiceTime string `form:"serviceTime" json:"serviceTime" label:"Service time" binding:"required,datetime=15:04"`
	ServiceType string `form:"serviceType" json:"serviceType" label:"Service type" binding:"required"`
	Location    string `form:"location" json:"location" label:"Location" binding:"required"`
	Description string `form:"description" json:"description" label:"Description" binding:"required"`
}

func (f *AccomplishmentForm) Validate() FieldErrors {
	errs := walk(f)
	switch n := length(f.Description); {
	case n < DescriptionMin:
		errs.Add("description", MsgDescriptionShort)
	case n > DescriptionMax:
		errs.Add("description", MsgDescriptionLong)
	}
	return errs
}

// ValidatePhotos checks the drop-zone uploads.
func ValidatePhotos(files []*multipart.FileHeader) FieldErrors {
	errs := FieldErrors{}
	if len(files) > MaxPhotos {
		errs.Add("photos", fmt.Sprintf("At most %d photos can be attached.", MaxPhotos))
		return errs
	}
	for _, fh := range files {
		if fh.Size > MaxPhotoBytes {
			errs.Add("photos", fmt.Sprintf("%s is larger than 10 MB.", fh.Filename))
			continue
		}
		if ct := fh.Header.Get("Content-Type"); ct != "" && ct != "application/octet-stream" && !strings.HasPrefix(ct, "image/") {
			errs.Add("photos", fmt.Sprintf("%s is not an image.", fh.Filename))
		}
	}
	return errs
}
