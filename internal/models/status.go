package models

// Status change types accepted by the updateStatus endpoints.
const (
	StatusVerify = "VERIFY"
	StatusReject = "REJECT"
	StatusCancel = "CANCEL"
	StatusDonate = "DONATE"
	StatusClose  = "CLOSE"
)

// StatusChange moves a donation or donation request through its lifecycle.
type StatusChange struct {
	Type            string `json:"type" validate:"oneof=VERIFY REJECT CANCEL DONATE CLOSE"`
	RejectionReason string `json:"rejectionReason,omitempty" validate:"required_if=Type REJECT"`
	UpdatedBy       int64  `json:"updatedBy,omitempty"`
}

// Authored is implemented by records that carry the id of the operator who wrote them.
type Authored interface {
	StampAuthor(userID int64)
}

func (n *News) StampAuthor(userID int64) {
	if n.UserID == 0 {
		n.UserID = userID
	}
}

func (e *Event) StampAuthor(userID int64) {
	if e.UserID == 0 {
		e.UserID = userID
	}
}

func (f *FAQ) StampAuthor(userID int64) {
	if f.UserID == 0 {
		f.UserID = userID
	}
}

// Illustrated is implemented by records that carry an uploaded image.
type Illustrated interface {
	SetImage(key string)
}

func (n *News) SetImage(key string) { n.Image = &key }

func (e *Event) SetImage(key string) { e.Image = &key }
