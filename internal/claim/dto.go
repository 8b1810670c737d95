package claim

import (
	"strconv"
	"strings"

	"github.com/frahmantamala/hardware-marketplace/internal"
	"github.com/frahmantamala/hardware-marketplace/internal/core/common/validation"
)

type FileClaimDTO struct {
	ListingID     int64  `json:"listingId"`
	Justification string `json:"justification"`
}

func (dto *FileClaimDTO) Validate() error {
	v := validation.NewValidator()
	v.Field("listingId", dto.ListingID).Required()
	v.Field("justification", dto.Justification).Required().MaxLength(2000)
	if appErr := v.Validate(); appErr != nil {
		return appErr
	}
	return nil
}

type DenyClaimDTO struct {
	Reason string `json:"reason"`
}

func (dto *DenyClaimDTO) Validate() error {
	v := validation.NewValidator()
	v.Field("reason", dto.Reason).Required().MaxLength(2000)
	if appErr := v.Validate(); appErr != nil {
		return appErr
	}
	return nil
}

// FilterFromQuery reads claim filters from query parameters. mine=true
// restricts to claims the caller filed.
func FilterFromQuery(get func(string) string, userID int64) (Filter, error) {
	f := Filter{
		Status:          strings.TrimSpace(get("status")),
		Department:      strings.TrimSpace(get("department")),
		OwnerDepartment: strings.TrimSpace(get("ownerDepartment")),
	}
	if raw := strings.TrimSpace(get("listingId")); raw != "" {
		id, err := parsePositive(raw)
		if err != nil {
			return Filter{}, internal.NewValidationFieldError("listingId", "listingId must be a positive integer", internal.ErrCodeValidationFailed)
		}
		f.ListingID = id
	}
	if f.Status != "" && !IsValidStatus(f.Status) {
		return Filter{}, internal.NewValidationFieldError("status", "unknown status "+f.Status, internal.ErrCodeInvalidStatus)
	}
	if strings.EqualFold(get("mine"), "true") {
		f.RequestedBy = userID
	}
	return f, nil
}

func parsePositive(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, err
	}
	if id <= 0 {
		return 0, strconv.ErrRange
	}
	return id, nil
}
