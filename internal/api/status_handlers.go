package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/andriandrian/lifeline-admin/internal/database"
	"github.com/andriandrian/lifeline-admin/internal/models"
	"github.com/andriandrian/lifeline-admin/internal/validation"
)

type statusUpdater func(q *database.Queries, ctx context.Context, id int64, change models.StatusChange) error

func (s *Server) updateStatus(w http.ResponseWriter, r *http.Request, entity string, apply statusUpdater) (int64, bool) {
	claims := GetUserFromContext(r.Context())
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid ID")
		return 0, false
	}

	var change models.StatusChange
	if err := json.NewDecoder(r.Body).Decode(&change); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return 0, false
	}
	if change.UpdatedBy == 0 {
		change.UpdatedBy = claims.UserID
	}
	if err := validation.Struct(&change); err != nil {
		s.writeStoreError(w, r, err, entity)
		return 0, false
	}

	journal := database.Change{Entity: entity, Action: database.ActionStatus}
	err := s.store.Record(r.Context(), claims.UserID, journal, func(q *database.Queries) (int64, error) {
		return id, apply(q, r.Context(), id, change)
	})
	if err != nil {
		s.writeStoreError(w, r, err, entity)
		return 0, false
	}

	s.metrics.StatusChange(entity, change.Type)
	return id, true
}

// @Summary      Change donation status
// @Description  VERIFY, REJECT (with rejectionReason) or CANCEL a pending donation, or DONATE a confirmed one.
// @Tags         donations
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id      path      int                  true  "Donation ID"
// @Param        change  body      models.StatusChange  true  "Status change"
// @Success      200     {object}  Envelope{data=models.Donation}
// @Failure      400     {object}  Envelope "Validation failed"
// @Failure      404     {object}  Envelope "Donation not found"
// @Failure      409     {object}  Envelope "Transition not allowed"
// @Router       /donation/updateStatus/{id} [patch]
func (s *Server) UpdateDonationStatusHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := s.updateStatus(w, r, database.Donations.Entity, (*database.Queries).UpdateDonationStatus)
	if !ok {
		return
	}
	h := &resourceHandler[models.Donation]{s: s, table: database.Donations}
	h.respondWith(w, r, id, http.StatusOK)
}

// @Summary      Change donation request status
// @Description  VERIFY an open request or CLOSE it.
// @Tags         donations
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id      path      int                  true  "Donation request ID"
// @Param        change  body      models.StatusChange  true  "Status change"
// @Success      200     {object}  Envelope{data=models.DonationRequest}
// @Failure      400     {object}  Envelope "Validation failed"
// @Failure      404     {object}  Envelope "Donation request not found"
// @Failure      409     {object}  Envelope "Transition not allowed"
// @Router       /donationRequest/updateStatus/{id} [patch]
func (s *Server) UpdateDonationRequestStatusHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := s.updateStatus(w, r, database.DonationRequests.Entity, (*database.Queries).UpdateDonationRequestStatus)
	if !ok {
		return
	}
	h := &resourceHandler[models.DonationRequest]{s: s, table: database.DonationRequests}
	h.respondWith(w, r, id, http.StatusOK)
}
