// Package forms validates the portal's submission forms. Each form owns its
// Validate; required fields are walked by go-playground/validator using the
// same binding tags gin reads, cross-field rules are appended by hand.
package forms

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
)

const (
	dateLayout = "2006-01-02"
	timeLayout = "15:04"
)

// FieldErrors maps a form field name to the message shown under it.
type FieldErrors map[string]string

func (e FieldErrors) Valid() bool { return len(e) == 0 }

// Add keeps the first message recorded for a field.
func (e FieldErrors) Add(field, msg string) {
	if _, ok := e[field]; !ok {
		e[field] = msg
	}
}

func (e FieldErrors) Error() string {
	parts := make([]string, 0, len(e))
	for f, m := range e {
		parts = append(parts, f+": "+m)
	}
	return strings.Join(parts, "; ")
}

// Form is implemented by every submission form.
type Form interface {
	Validate() FieldErrors
}

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func engine() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.SetTagName("binding")
		validate.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("form"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name == "" {
				return f.Name
			}
			return name
		})
	})
	return validate
}

// trim strips surrounding whitespace from every string field, so blank
// input fails required and lengths count what is stored.
func trim(form any) {
	v := reflect.Indirect(reflect.ValueOf(form))
	if v.Kind() != reflect.Struct {
		return
	}
	for i := 0; i < v.NumField(); i++ {
		if f := v.Field(i); f.Kind() == reflect.String && f.CanSet() {
			f.SetString(strings.TrimSpace(f.String()))
		}
	}
}

// walk trims form, runs its tag rules and returns one message per failing
// field.
func walk(form any) FieldErrors {
	trim(form)
	errs := FieldErrors{}
	err := engine().Struct(form)
	if err == nil {
		return errs
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		errs.Add("_form", err.Error())
		return errs
	}
	t := reflect.Indirect(reflect.ValueOf(form)).Type()
	for _, fe := range verrs {
		errs.Add(fe.Field(), message(t, fe))
	}
	return errs
}

func label(t reflect.Type, structField string) string {
	if f, ok := t.FieldByName(structField); ok {
		if l := f.Tag.Get("label"); l != "" {
			return l
		}
	}
	return structField
}

func message(t reflect.Type, fe validator.FieldError) string {
	l := label(t, fe.StructField())
	switch fe.Tag() {
	case "required", "required_if":
		return l + " is required."
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s.", l, strings.ReplaceAll(fe.Param(), " ", ", "))
	case "datetime":
		if fe.Param() == timeLayout {
			return l + " must be a valid time (HH:MM)."
		}
		return l + " must be a valid date (YYYY-MM-DD)."
	case "email":
		return l + " must be a valid email address."
	case "max":
		return fmt.Sprintf("%s must not exceed %s characters.", l, fe.Param())
	}
	return l + " is invalid."
}

func parseDate(s string) (time.Time, bool) {
	t, err := time.Parse(dateLayout, s)
	return t, err == nil
}

func parseClock(s string) (time.Time, bool) {
	t, err := time.Parse(timeLayout, s)
	return t, err == nil
}

func length(s string) int {
	return utf8.RuneCountInString(s)
}

// New returns an empty form for a kind, ready to be bound.
func New(kind string) (Form, bool) {
	switch kind {
	case KindTravelOrder:
		return &TravelOrderForm{}, true
	case KindAccomplishment:
		return &AccomplishmentForm{}, true
	case KindDeviceChange:
		return &DeviceChangeForm{}, true
	case KindLeave:
		return &LeaveForm{}, true
	case KindEarlyRest:
		return &EarlyRestForm{}, true
	case KindITService:
		return &ITServiceForm{}, true
	case KindClient:
		return &ClientForm{}, true
	}
	return nil, false
}

const (
	KindTravelOrder    = "travel-order"
	KindAccomplishment = "accomplishment"
	KindDeviceChange   = "device-change"
	KindLeave          = "leave"
	KindEarlyRest      = "early-rest"
	KindITService      = "it-service"
	KindClient         = "client"
)
