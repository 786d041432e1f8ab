package service

import (
	"fmt"
	"math"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/keja/keja/internal/model"
)

// Field limits mirror the column sizes in the schema.
const (
	maxHandleLength   = 150
	maxTitleLength    = 150
	maxPriceLength    = 50
	maxLocationLength = 150
	maxImageRefLength = 255
)

func validateHandle(v *ValidationError, handle string) {
	switch {
	case handle == "":
		v.Add("handle", "is required")
	case utf8.RuneCountInString(handle) > maxHandleLength:
		v.Add("handle", fmt.Sprintf("must be at most %d characters", maxHandleLength))
	case strings.IndexFunc(handle, unicode.IsControl) >= 0:
		v.Add("handle", "must not contain control characters")
	}
}

func validateRequired(v *ValidationError, field, value string, maxLen int) {
	switch {
	case strings.TrimSpace(value) == "":
		v.Add(field, "is required")
	case !utf8.ValidString(value):
		v.Add(field, "must be valid UTF-8")
	case strings.ContainsRune(value, 0):
		v.Add(field, "must not contain NUL characters")
	case maxLen > 0 && utf8.RuneCountInString(value) > maxLen:
		v.Add(field, fmt.Sprintf("must be at most %d characters", maxLen))
	}
}

func validateCategory(v *ValidationError, field string, c model.Category) {
	if c == "" {
		v.Add(field, "is required")
		return
	}
	if !c.IsValid() {
		v.Add(field, "must be one of: "+categoryList())
	}
}

func validateLatitude(v *ValidationError, lat *float64) {
	if lat != nil && (math.IsNaN(*lat) || *lat < -90 || *lat > 90) {
		v.Add("latitude", "must be between -90 and 90")
	}
}

func validateLongitude(v *ValidationError, lng *float64) {
	if lng != nil && (math.IsNaN(*lng) || *lng < -180 || *lng > 180) {
		v.Add("longitude", "must be between -180 and 180")
	}
}

func validateImageRef(v *ValidationError, ref *string) {
	if ref != nil && utf8.RuneCountInString(*ref) > maxImageRefLength {
		v.Add("image", fmt.Sprintf("reference must be at most %d characters", maxImageRefLength))
	}
}

func categoryList() string {
	cats := model.Categories()
	names := make([]string, len(cats))
	for i, c := range cats {
		names[i] = string(c)
	}
	return strings.Join(names, ", ")
}
