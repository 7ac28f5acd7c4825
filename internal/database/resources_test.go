package database

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/andriandrian/lifeline-admin/internal/models"
)

func createHospital(t *testing.T) *models.Hospital {
	t.Helper()
	ctx := context.Background()
	id, err := Hospitals.Create(ctx, testStore.GetPool(), &models.Hospital{Name: "RS Harapan", Address: "Jl. Merdeka 1"})
	require.NoError(t, err)

	h, err := Hospitals.Get(ctx, testStore.GetPool(), id)
	require.NoError(t, err)
	require.NotNil(t, h)
	return h
}

func createRequest(t *testing.T, requester *models.User, hospital *models.Hospital) *models.DonationRequest {
	t.Helper()
	ctx := context.Background()

	var id int64
	query := `
		INSERT INTO donation_requests (user_id, hospital_id, blood_type, reason, priority)
		VALUES ($1, $2, 'O+', 'Surgery', 'high') RETURNING id
	`
	require.NoError(t, testStore.GetPool().QueryRow(ctx, query, requester.ID, hospital.ID).Scan(&id))

	r, err := DonationRequests.Get(ctx, testStore.GetPool(), id)
	require.NoError(t, err)
	return r
}

func createDonation(t *testing.T, donor *models.User, request *models.DonationRequest) *models.Donation {
	t.Helper()
	ctx := context.Background()

	id, err := Donations.Create(ctx, testStore.GetPool(), &models.Donation{UserID: donor.ID, DonationRequestID: request.ID})
	require.NoError(t, err)

	d, err := Donations.Get(ctx, testStore.GetPool(), id)
	require.NoError(t, err)
	return d
}

func TestHospitalLifecycle(t *testing.T) {
	ctx := context.Background()
	db := testStore.GetPool()
	h := createHospital(t)
	require.Equal(t, "RS Harapan", h.Name)

	h.Address = "Jl. Sudirman 2"
	require.NoError(t, Hospitals.Update(ctx, db, h.ID, h))

	got, err := Hospitals.Get(ctx, db, h.ID)
	require.NoError(t, err)
	require.Equal(t, "Jl. Sudirman 2", got.Address)

	all, err := Hospitals.List(ctx, db)
	require.NoError(t, err)
	require.NotEmpty(t, all)

	require.NoError(t, Hospitals.Delete(ctx, db, h.ID))
	got, err = Hospitals.Get(ctx, db, h.ID)
	require.NoError(t, err)
	require.Nil(t, got)

	require.ErrorIs(t, Hospitals.Delete(ctx, db, h.ID), ErrNotFound)
	require.ErrorIs(t, Hospitals.Update(ctx, db, h.ID, h), ErrNotFound)
}

func TestViewsJoinNames(t *testing.T) {
	requester := createRandomUser(t, false)
	donor := createRandomUser(t, false)
	request := createRequest(t, requester, createHospital(t))

	require.Equal(t, "Test", request.RequesterFirstname)
	require.Equal(t, "RS Harapan", request.HospitalName)
	require.Equal(t, "pending", request.Status())

	donation := createDonation(t, donor, request)
	require.Len(t, donation.ReferenceCode, 10)
	require.Equal(t, "Surgery", donation.RequestReason)
	require.Equal(t, models.PriorityHigh, donation.Priority)
	require.Equal(t, "Test User", donation.DonorName())
	require.Equal(t, models.DonationPending, donation.Status())
}

func TestEventDatesAndAuthor(t *testing.T) {
	ctx := context.Background()
	db := testStore.GetPool()
	author := createRandomUser(t, true)
	start := time.Date(2026, 8, 17, 8, 0, 0, 0, time.UTC)

	id, err := Events.Create(ctx, db, &models.Event{
		Title: "Donor Darah", Description: "Blood drive", Location: "Balai Kota",
		StartDate: start, EndDate: start.Add(4 * time.Hour), UserID: author.ID,
	})
	require.NoError(t, err)

	ev, err := Events.Get(ctx, db, id)
	require.NoError(t, err)
	require.True(t, start.Equal(ev.StartDate))
	require.Equal(t, "Test", ev.AuthorFirstname)
	require.Nil(t, ev.Image)
}

func TestCreate_MissingReference(t *testing.T) {
	_, err := FAQs.Create(context.Background(), testStore.GetPool(), &models.FAQ{Question: "Q", Answer: "A", UserID: 999999})
	require.ErrorIs(t, err, ErrReference)
}

func TestCanCreate(t *testing.T) {
	require.False(t, Users.CanCreate())
	require.False(t, DonationRequests.CanCreate())
	require.True(t, Donations.CanCreate())
	require.True(t, FAQs.CanCreate())
}

func TestRecord_JournalsAndPublishes(t *testing.T) {
	ctx := context.Background()
	author := createRandomUser(t, true)

	before, err := testStore.GetEventsSince(ctx, 0)
	require.NoError(t, err)
	var lastID int64
	if len(before) > 0 {
		lastID = before[len(before)-1].ID
	}

	var faqID int64
	err = testStore.Record(ctx, author.ID, Change{Entity: FAQs.Entity, Action: ActionCreated}, func(q *Queries) (int64, error) {
		id, err := FAQs.Create(ctx, q.DB(), &models.FAQ{Question: "Who?", Answer: "Anyone healthy", UserID: author.ID})
		faqID = id
		return id, err
	})
	require.NoError(t, err)

	events, err := testStore.GetEventsSince(ctx, lastID)
	require.NoError(t, err)
	require.NotEmpty(t, events)

	last := events[len(events)-1]
	require.Equal(t, "faq.created", last.EventType)
	require.Equal(t, author.ID, last.UserID)

	var change Change
	require.NoError(t, json.Unmarshal(last.Payload, &change))
	require.Equal(t, Change{Entity: "faq", Action: ActionCreated, ID: faqID}, change)

	var pushed Event
	require.NoError(t, json.Unmarshal(testHub.last(), &pushed))
	require.Equal(t, last.ID, pushed.ID)
}

func TestRecord_RollsBackOnError(t *testing.T) {
	ctx := context.Background()

	before, err := Rewards.List(ctx, testStore.GetPool())
	require.NoError(t, err)

	err = testStore.Record(ctx, 1, Change{Entity: Rewards.Entity, Action: ActionCreated}, func(q *Queries) (int64, error) {
		if _, err := Rewards.Create(ctx, q.DB(), &models.Reward{Name: "Mug", Description: "Mug", Points: 10, Stock: 1}); err != nil {
			return 0, err
		}
		return 0, ErrNotFound
	})
	require.ErrorIs(t, err, ErrNotFound)

	after, err := Rewards.List(ctx, testStore.GetPool())
	require.NoError(t, err)
	require.Len(t, after, len(before))
}
