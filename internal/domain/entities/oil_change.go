package entities

import (
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
)

// OilChangeRecord is one oil change logged by a user.
type OilChangeRecord struct {
	ID             uuid.UUID   `json:"id"`
	UserID         uuid.UUID   `json:"userId"`
	CarModel       null.String `json:"carModel"`
	PurchaseDate   null.Time   `json:"purchaseDate"`
	ChangeDate     time.Time   `json:"changeDate"`
	KilometersDone int         `json:"kilometersDone"`
	Notes          null.String `json:"notes"`
	CreatedAt      time.Time   `json:"createdAt"`
	UpdatedAt      time.Time   `json:"updatedAt"`
}

// CreateOilChangeInput is the create payload; ChangeDate and KilometersDone are required.
type CreateOilChangeInput struct {
	CarModel       *string    `json:"carModel"`
	PurchaseDate   *time.Time `json:"purchaseDate"`
	ChangeDate     *time.Time `json:"changeDate"`
	KilometersDone *int       `json:"kilometersDone"`
	Notes          *string    `json:"notes"`
}

// UpdateOilChangeInput applies only the fields that are present.
type UpdateOilChangeInput struct {
	CarModel       *string    `json:"carModel"`
	PurchaseDate   *time.Time `json:"purchaseDate"`
	ChangeDate     *time.Time `json:"changeDate"`
	KilometersDone *int       `json:"kilometersDone"`
	Notes          *string    `json:"notes"`
}

// OilStatus buckets how urgently the oil needs changing.
type OilStatus string

const (
	OilStatusUnknown OilStatus = "unknown"
	OilStatusGood    OilStatus = "good"
	OilStatusWarning OilStatus = "warning"
	OilStatusOverdue OilStatus = "overdue"
)

const (
	OilWarningDays = 150
	OilOverdueDays = 180
	OilWarningKm   = 4500
	OilOverdueKm   = 5000
)

// OilChangeStatus is derived from the latest record and never stored.
type OilChangeStatus struct {
	Status        OilStatus        `json:"status"`
	DaysSince     int              `json:"daysSince"`
	DaysRemaining int              `json:"daysRemaining"`
	KmSince       *int             `json:"kmSince,omitempty"`
	KmRemaining   *int             `json:"kmRemaining,omitempty"`
	WarningDate   *time.Time       `json:"warningDate,omitempty"`
	DueDate       *time.Time       `json:"dueDate,omitempty"`
	LastChange    *OilChangeRecord `json:"lastChange,omitempty"`
}

// ClassifyOil maps elapsed days and kilometers to a status. Both
// thresholds are inclusive.
func ClassifyOil(days, km int) OilStatus {
	switch {
	case days >= OilOverdueDays || km >= OilOverdueKm:
		return OilStatusOverdue
	case days >= OilWarningDays || km >= OilWarningKm:
		return OilStatusWarning
	default:
		return OilStatusGood
	}
}

// DeriveOilStatus computes the status of the latest record at now.
// currentKm is the odometer reading supplied by the client, if any.
func DeriveOilStatus(latest *OilChangeRecord, now time.Time, currentKm *int) OilChangeStatus {
	if latest == nil {
		return OilChangeStatus{Status: OilStatusUnknown}
	}

	days := int(now.Sub(latest.ChangeDate) / (24 * time.Hour))
	if days < 0 {
		days = 0
	}

	out := OilChangeStatus{
		DaysSince:     days,
		DaysRemaining: max(OilOverdueDays-days, 0),
		LastChange:    latest,
	}

	warning := latest.ChangeDate.AddDate(0, 0, OilWarningDays)
	due := latest.ChangeDate.AddDate(0, 0, OilOverdueDays)
	out.WarningDate = &warning
	out.DueDate = &due

	km := 0
	if currentKm != nil {
		km = max(*currentKm-latest.KilometersDone, 0)
		remaining := max(OilOverdueKm-km, 0)
		out.KmSince = &km
		out.KmRemaining = &remaining
	}

	out.Status = ClassifyOil(days, km)
	return out
}
