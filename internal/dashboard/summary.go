// Package dashboard builds the landing-page counters from the entity lists.
package dashboard

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/andriandrian/lifeline-admin/internal/client"
	"github.com/andriandrian/lifeline-admin/internal/models"
)

// Sources are the list fetches the summary is built from.
type Sources struct {
	Users            func(context.Context) ([]models.User, error)
	Donations        func(context.Context) ([]models.Donation, error)
	DonationRequests func(context.Context) ([]models.DonationRequest, error)
	Events           func(context.Context) ([]models.Event, error)
	Rewards          func(context.Context) ([]models.Reward, error)
}

// FromClient wires every source to the API.
func FromClient(c *client.Client) Sources {
	return Sources{
		Users:            c.Users().List,
		Donations:        c.Donations().List,
		DonationRequests: c.DonationRequests().List,
		Events:           c.Events().List,
		Rewards:          c.Rewards().List,
	}
}

type Summary struct {
	Users            int
	Operators        int
	Donations        int
	PendingDonations int
	DonationRequests int
	OpenRequests     int
	UrgentRequests   int
	Events           int
	UpcomingEvents   int
	Rewards          int
	RewardStock      int

	// Failed lists the sources that could not be fetched; their counters are zero.
	Failed []string
}

// Service computes the summary. now is replaceable for tests.
type Service struct {
	sources Sources
	log     logrus.FieldLogger
	now     func() time.Time
}

func NewService(sources Sources, log logrus.FieldLogger) *Service {
	return &Service{sources: sources, log: log, now: time.Now}
}

// Summary runs every fetch in parallel and waits for all of them. A failing
// source never cancels the others.
func (s *Service) Summary(ctx context.Context) *Summary {
	var (
		out Summary
		mu  sync.Mutex
		g   errgroup.Group
	)

	fail := func(source string, err error) {
		s.log.WithError(err).WithField("source", source).Warn("dashboard source failed")
		mu.Lock()
		out.Failed = append(out.Failed, source)
		mu.Unlock()
	}

	g.Go(func() error {
		users, err := s.sources.Users(ctx)
		if err != nil {
			fail("users", err)
			return nil
		}
		out.Users = len(users)
		for _, u := range users {
			if u.IsAdmin {
				out.Operators++
			}
		}
		return nil
	})

	g.Go(func() error {
		donations, err := s.sources.Donations(ctx)
		if err != nil {
			fail("donations", err)
			return nil
		}
		out.Donations = len(donations)
		for i := range donations {
			if donations[i].Status() == models.DonationPending {
				out.PendingDonations++
			}
		}
		return nil
	})

	g.Go(func() error {
		requests, err := s.sources.DonationRequests(ctx)
		if err != nil {
			fail("donationRequests", err)
			return nil
		}
		out.DonationRequests = len(requests)
		for i := range requests {
			if requests[i].ClosedAt != nil {
				continue
			}
			out.OpenRequests++
			if requests[i].Priority == models.PriorityHigh {
				out.UrgentRequests++
			}
		}
		return nil
	})

	g.Go(func() error {
		events, err := s.sources.Events(ctx)
		if err != nil {
			fail("events", err)
			return nil
		}
		now := s.now()
		out.Events = len(events)
		for _, e := range events {
			if e.EndDate.After(now) {
				out.UpcomingEvents++
			}
		}
		return nil
	})

	g.Go(func() error {
		rewards, err := s.sources.Rewards(ctx)
		if err != nil {
			fail("rewards", err)
			return nil
		}
		out.Rewards = len(rewards)
		for _, r := range rewards {
			out.RewardStock += r.Stock
		}
		return nil
	})

	_ = g.Wait()
	sort.Strings(out.Failed)
	return &out
}
