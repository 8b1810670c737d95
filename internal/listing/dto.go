package listing

import (
	"strings"
	"time"

	"github.com/frahmantamala/hardware-marketplace/internal"
	"github.com/frahmantamala/hardware-marketplace/internal/core/common/validation"
	"github.com/frahmantamala/hardware-marketplace/internal/hardware"
	"github.com/frahmantamala/hardware-marketplace/internal/impact"
)

type CreateListingDTO struct {
	SerialNumber   string `json:"serialNumber"`
	Title          string `json:"title"`
	Category       string `json:"category"`
	Description    string `json:"description"`
	Location       string `json:"location"`
	Condition      string `json:"condition"`
	CPU            string `json:"cpu"`
	RAM            string `json:"ram"`
	Storage        string `json:"storage"`
	Ports          string `json:"ports"`
	OtherSpecs     string `json:"otherSpecs"`
	ExpirationDate string `json:"expirationDate"`
	// Status is accepted for compatibility and ignored; new listings are always available.
	Status string `json:"status,omitempty"`

	expiration time.Time
}

// Validate checks required fields, the category enum and the expiration date.
func (dto *CreateListingDTO) Validate(now time.Time) error {
	var parseErr error
	if strings.TrimSpace(dto.ExpirationDate) != "" {
		dto.expiration, parseErr = validation.ParseDate(dto.ExpirationDate)
	}

	v := validation.NewValidator()
	v.Field("serialNumber", dto.SerialNumber).Required().MaxLength(100)
	v.Field("title", dto.Title).Required().MaxLength(200)
	v.Field("category", dto.Category).Required().OneOf(hardware.Categories, internal.ErrCodeInvalidCategory)
	v.Field("expirationDate", dto.ExpirationDate).Required().Custom(func(interface{}) *internal.AppError {
		if parseErr != nil {
			return internal.NewValidationFieldError("expirationDate", parseErr.Error(), internal.ErrCodeInvalidDate)
		}
		return nil
	})
	v.Field("expirationDate", dto.expiration).NotPast(now)

	if appErr := v.Validate(); appErr != nil {
		return appErr
	}
	return nil
}

// Expiration is the parsed expiration date, available after Validate.
func (dto *CreateListingDTO) Expiration() time.Time {
	return validation.StartOfDay(dto.expiration)
}

type UpdateListingDTO struct {
	Title          *string `json:"title,omitempty"`
	Description    *string `json:"description,omitempty"`
	Location       *string `json:"location,omitempty"`
	Condition      *string `json:"condition,omitempty"`
	ExpirationDate *string `json:"expirationDate,omitempty"`

	// Identity and state fields may not be edited; they are only decoded so a
	// request that tries gets a clear error.
	SerialNumber *string `json:"serialNumber,omitempty"`
	Category     *string `json:"category,omitempty"`
	Department   *string `json:"department,omitempty"`
	Status       *string `json:"status,omitempty"`
}

func (dto *UpdateListingDTO) ToFields(now time.Time) (UpdateFields, error) {
	var errs []internal.ValidationError
	immutable := map[string]*string{
		"serialNumber": dto.SerialNumber,
		"category":     dto.Category,
		"department":   dto.Department,
		"status":       dto.Status,
	}
	for _, name := range []string{"serialNumber", "category", "department", "status"} {
		if immutable[name] != nil {
			errs = append(errs, internal.ValidationError{
				Field:   name,
				Message: name + " cannot be changed",
				Code:    string(internal.ErrCodeValidationFailed),
			})
		}
	}
	if len(errs) > 0 {
		return UpdateFields{}, internal.NewValidationError("Validation failed", internal.ErrCodeValidationFailed).
			WithDetails(internal.ValidationErrors{Errors: errs})
	}

	fields := UpdateFields{
		Title:       dto.Title,
		Description: dto.Description,
		Location:    dto.Location,
		Condition:   dto.Condition,
	}

	v := validation.NewValidator()
	if dto.Title != nil {
		v.Field("title", dto.Title).Required()
		v.Field("title", *dto.Title).MaxLength(200)
	}
	if dto.ExpirationDate != nil {
		t, err := validation.ParseDate(*dto.ExpirationDate)
		if err != nil {
			return UpdateFields{}, internal.NewValidationFieldError("expirationDate", err.Error(), internal.ErrCodeInvalidDate)
		}
		t = validation.StartOfDay(t)
		v.Field("expirationDate", t).NotPast(now)
		fields.ExpirationDate = &t
	}
	if appErr := v.Validate(); appErr != nil {
		return UpdateFields{}, appErr
	}
	if fields.IsEmpty() {
		return UpdateFields{}, internal.NewValidationError("No updatable fields supplied", internal.ErrCodeMissingFields)
	}
	return fields, nil
}

// ListingDetail is a listing with the environmental impact of reusing it.
type ListingDetail struct {
	*Listing
	Impact impact.Impact `json:"impact"`
}

// FilterFromQuery reads list filters from query parameters.
func FilterFromQuery(get func(string) string) (Filter, error) {
	f := Filter{
		Category:   strings.TrimSpace(get("category")),
		Status:     strings.TrimSpace(get("status")),
		Department: strings.TrimSpace(get("department")),
		Search:     strings.TrimSpace(get("search")),
	}
	if strings.EqualFold(f.Category, "all") {
		f.Category = ""
	}
	if f.Category != "" && !hardware.IsValidCategory(f.Category) {
		return Filter{}, internal.NewValidationFieldError("category", "unknown category "+f.Category, internal.ErrCodeInvalidCategory)
	}
	if f.Status != "" && !IsValidStatus(f.Status) {
		return Filter{}, internal.NewValidationFieldError("status", "unknown status "+f.Status, internal.ErrCodeInvalidStatus)
	}
	return f, nil
}
