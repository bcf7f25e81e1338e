package model

import (
	"time"
)

// RemoteWorkStatus defines the approval state of a remote work entry.
type RemoteWorkStatus string

const (
	StatusNew      RemoteWorkStatus = "new"
	StatusApproved RemoteWorkStatus = "approved"
	StatusRejected RemoteWorkStatus = "rejected"
)

// RemoteWorkType is a closed set: entries are either home office days or
// business trips. Display metadata lives in the TypeInfo table below.
type RemoteWorkType string

const (
	TypeHomeoffice   RemoteWorkType = "homeoffice"
	TypeBusinessTrip RemoteWorkType = "business_trip"
)

// TypeInfo carries the static display metadata for a remote work type.
type TypeInfo struct {
	Type  RemoteWorkType
	Label string
	Icon  string
	Color string
}

var typeInfos = map[RemoteWorkType]TypeInfo{
	TypeHomeoffice:   {Type: TypeHomeoffice, Label: "Home office", Icon: "fas fa-home", Color: "#228be6"},
	TypeBusinessTrip: {Type: TypeBusinessTrip, Label: "Business trip", Icon: "fas fa-car", Color: "#f76707"},
}

// InfoForType returns the display metadata for a type. Unknown types fall
// back to homeoffice so a bad row never breaks rendering.
func InfoForType(t RemoteWorkType) TypeInfo {
	if info, ok := typeInfos[t]; ok {
		return info
	}
	return typeInfos[TypeHomeoffice]
}

// AllTypes returns the known types in a stable order.
func AllTypes() []TypeInfo {
	return []TypeInfo{typeInfos[TypeHomeoffice], typeInfos[TypeBusinessTrip]}
}

// User is the minimal slice of the identity system this service needs.
// Identity and authorization are owned elsewhere.
type User struct {
	ID           int64  `json:"id"`
	Username     string `json:"username"`
	DisplayName  string `json:"displayName"`
	Email        string `json:"email,omitempty"`
	HolidayGroup int    `json:"holidayGroup,omitempty"`
}

// RemoteWork is a single day-granular remote work entry.
//
// Uniqueness of user+date is deliberately not enforced: overlapping
// entries only produce warnings, so the same day may legitimately carry
// more than one entry (e.g. a half day of each type).
type RemoteWork struct {
	ID         int64            `json:"id"`
	User       *User            `json:"user"`
	Type       RemoteWorkType   `json:"type"`
	Date       time.Time        `json:"date"`
	HalfDay    bool             `json:"halfDay"`
	Comment    string           `json:"comment"`
	Status     RemoteWorkStatus `json:"status"`
	CreatedBy  *User            `json:"createdBy,omitempty"`
	CreatedAt  time.Time        `json:"createdAt"`
	ApprovedBy *User            `json:"approvedBy,omitempty"`
	ApprovedAt *time.Time       `json:"approvedAt,omitempty"`
}

func (r *RemoteWork) IsHomeoffice() bool {
	return r.Type == TypeHomeoffice
}

func (r *RemoteWork) IsBusinessTrip() bool {
	return r.Type == TypeBusinessTrip
}

func (r *RemoteWork) IsNew() bool {
	return r.Status == StatusNew
}

func (r *RemoteWork) IsApproved() bool {
	return r.Status == StatusApproved
}

func (r *RemoteWork) IsRejected() bool {
	return r.Status == StatusRejected
}

// DayValue returns the bookable value of the entry: 1.0 for a full day,
// 0.5 for a half day.
func (r *RemoteWork) DayValue() float64 {
	if r.HalfDay {
		return 0.5
	}
	return 1.0
}

// Approve moves the entry into the approved state. ApprovedBy and
// ApprovedAt are set if and only if the entry is approved.
func (r *RemoteWork) Approve(approver *User, at time.Time) {
	r.ApprovedBy = approver
	r.ApprovedAt = &at
	r.Status = StatusApproved
}

// Reject moves the entry into the rejected state and clears any previous
// approval. There is no way back to "new".
func (r *RemoteWork) Reject() {
	r.ApprovedBy = nil
	r.ApprovedAt = nil
	r.Status = StatusRejected
}

// OverlapWarning is advisory data about an existing commitment on the
// same day. Warnings never block the caller and are never persisted.
type OverlapWarning struct {
	ConflictingType string    `json:"conflictingType"`
	Date            time.Time `json:"date"`
	MessageKey      string    `json:"messageKey"`
}

// AbsenceType is the coarse category an external absence record maps to.
type AbsenceType string

const (
	AbsenceHoliday  AbsenceType = "holiday"
	AbsenceSickness AbsenceType = "sickness"
	AbsenceTimeOff  AbsenceType = "time_off"
	AbsenceOther    AbsenceType = "absence"
)

// Absence is the read-only view of an absence record owned by an
// external system (vacation, sickness and the like).
type Absence struct {
	Type     AbsenceType `json:"type"`
	Date     time.Time   `json:"date"`
	Rejected bool        `json:"rejected"`
}

// PublicHoliday is the read-only view of a public holiday entry owned by
// an external system.
type PublicHoliday struct {
	Name    string    `json:"name"`
	Date    time.Time `json:"date"`
	HalfDay bool      `json:"halfDay"`
}

// Statistic sums up a user's remote work days for one year.
type Statistic struct {
	HomeofficeDays   float64 `json:"homeofficeDays"`
	BusinessTripDays float64 `json:"businessTripDays"`
}

func (s *Statistic) AddHomeofficeDays(v float64) {
	s.HomeofficeDays += v
}

func (s *Statistic) AddBusinessTripDays(v float64) {
	s.BusinessTripDays += v
}
