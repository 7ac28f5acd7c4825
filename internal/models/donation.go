package models

import "time"

const (
	PriorityLow  = "low"
	PriorityMid  = "mid"
	PriorityHigh = "high"
)

// DonationRequest is a call for blood posted by a user on behalf of a patient.
type DonationRequest struct {
	ID                  int64      `json:"id" db:"id"`
	UserID              int64      `json:"userId" db:"user_id" validate:"required"`
	HospitalID          int64      `json:"hospitalId" db:"hospital_id" validate:"required"`
	BloodType           string     `json:"bloodType" db:"blood_type" validate:"notblank"`
	Reason              string     `json:"reason" db:"reason" validate:"notblank"`
	Description         *string    `json:"description,omitempty" db:"description"`
	Priority            string     `json:"priority" db:"priority" validate:"oneof=low mid high"`
	PatientRecordNumber *string    `json:"patientRecordNumber,omitempty" db:"patient_record_number"`
	PatientGender       *string    `json:"patientGender,omitempty" db:"patient_gender"`
	NeededAt            *time.Time `json:"neededAt,omitempty" db:"needed_at"`
	VerifiedAt          *time.Time `json:"verifiedAt" db:"verified_at"`
	ClosedAt            *time.Time `json:"closedAt" db:"closed_at"`
	CreatedAt           time.Time  `json:"createdAt" db:"created_at"`

	RequesterFirstname string `json:"requesterFirstname" db:"requester_firstname"`
	RequesterLastname  string `json:"requesterLastname" db:"requester_lastname"`
	HospitalName       string `json:"hospitalName" db:"hospital_name"`
}

func (r *DonationRequest) Status() string {
	switch {
	case r.ClosedAt != nil:
		return "closed"
	case r.VerifiedAt != nil:
		return "verified"
	default:
		return "pending"
	}
}

const (
	DonationPending   = "pending"
	DonationConfirmed = "confirmed"
	DonationRejected  = "rejected"
	DonationCanceled  = "canceled"
	DonationDonated   = "donated"
)

// Donation is a user's offer to donate against a DonationRequest.
type Donation struct {
	ID                int64      `json:"id" db:"id"`
	ReferenceCode     string     `json:"referenceCode" db:"reference_code"`
	UserID            int64      `json:"userId" db:"user_id" validate:"required"`
	DonationRequestID int64      `json:"donationRequestId" db:"donation_request_id" validate:"required"`
	BloodType         *string    `json:"bloodType" db:"blood_type"`
	DonorGender       *string    `json:"donorGender" db:"donor_gender"`
	DonorDOB          *time.Time `json:"donorDOB" db:"donor_dob"`
	ConfirmedAt       *time.Time `json:"confirmedAt" db:"confirmed_at"`
	RejectedAt        *time.Time `json:"rejectedAt" db:"rejected_at"`
	RejectedReason    *string    `json:"rejectedReason" db:"rejected_reason"`
	CanceledAt        *time.Time `json:"canceledAt" db:"canceled_at"`
	DonatedAt         *time.Time `json:"donatedAt" db:"donated_at"`
	UpdatedBy         *int64     `json:"updatedBy" db:"updated_by"`
	CreatedAt         time.Time  `json:"createdAt" db:"created_at"`

	DonorFirstname string `json:"donorFirstname" db:"donor_firstname"`
	DonorLastname  string `json:"donorLastname" db:"donor_lastname"`
	RequestReason  string `json:"requestReason" db:"request_reason"`
	Priority       string `json:"priority" db:"priority"`
}

// Status ranks the lifecycle timestamps: donated beats rejected beats canceled beats confirmed.
func (d *Donation) Status() string {
	switch {
	case d.DonatedAt != nil:
		return DonationDonated
	case d.RejectedAt != nil:
		return DonationRejected
	case d.CanceledAt != nil:
		return DonationCanceled
	case d.ConfirmedAt != nil:
		return DonationConfirmed
	default:
		return DonationPending
	}
}

func (d *Donation) DonorName() string {
	if d.DonorLastname == "" {
		return d.DonorFirstname
	}
	return d.DonorFirstname + " " + d.DonorLastname
}
