package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/andriandrian/lifeline-admin/internal/client"
	"github.com/andriandrian/lifeline-admin/internal/dashboard"
	"github.com/andriandrian/lifeline-admin/internal/models"
)

// NewRootCmd builds the lifelinectl command tree around a.
func NewRootCmd(a *App) *cobra.Command {
	root := &cobra.Command{
		Use:           "lifelinectl",
		Short:         "Operate the Lifeline blood donation back office from a terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(a.out)

	root.AddCommand(
		newLoginCmd(a),
		newLogoutCmd(a),
		newWhoamiCmd(a),
		newSummaryCmd(a),
		newListCmd(a),
		newShowCmd(a),
		newDeleteCmd(a),
		newUpdateCmd(a),
		newStatusCmd(a),
		newCreateCmd(a),
	)
	return root
}

func newLoginCmd(a *App) *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in as an operator",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			if email == "" {
				if email, err = a.readLine("Email: "); err != nil {
					return err
				}
			}
			if password == "" {
				if password, err = a.readLine("Password: "); err != nil {
					return err
				}
			}

			sess, err := a.Client.Login(cmd.Context(), email, password)
			if err != nil {
				return err
			}
			a.Success(fmt.Sprintf("Logged in as %s", sess.User.Name))
			return nil
		},
	}

	cmd.Flags().StringVarP(&email, "email", "e", "", "operator email")
	cmd.Flags().StringVarP(&password, "password", "p", "", "password; prompted when omitted")
	return cmd
}

func newLogoutCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "End the current session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.Client.Logout(cmd.Context()); err != nil {
				return err
			}
			a.Success("Logged out")
			return nil
		},
	}
}

func newWhoamiCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in operator",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			me, err := a.Client.Me(cmd.Context())
			if err != nil {
				return err
			}
			a.printf("%s (id %d)\n", me.Name, me.ID)
			return nil
		},
	}
}

func newSummaryCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "summary",
		Short: "Show the dashboard counters",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s := dashboard.NewService(dashboard.FromClient(a.Client), a.Log).Summary(cmd.Context())

			renderTable(a.out, []string{"Metric", "Count"}, [][]string{
				{"Users", strconv.Itoa(s.Users)},
				{"Operators", strconv.Itoa(s.Operators)},
				{"Donations", strconv.Itoa(s.Donations)},
				{"Pending donations", strconv.Itoa(s.PendingDonations)},
				{"Donation requests", strconv.Itoa(s.DonationRequests)},
				{"Open requests", strconv.Itoa(s.OpenRequests)},
				{"Urgent requests", strconv.Itoa(s.UrgentRequests)},
				{"Events", strconv.Itoa(s.Events)},
				{"Upcoming events", strconv.Itoa(s.UpcomingEvents)},
				{"Rewards", strconv.Itoa(s.Rewards)},
				{"Reward stock", strconv.Itoa(s.RewardStock)},
			})
			if len(s.Failed) > 0 {
				a.Error(fmt.Errorf("could not load: %s", strings.Join(s.Failed, ", ")))
			}
			return nil
		},
	}
}

func parseFilters(raw []string) (map[string]string, error) {
	return parsePairs(raw, "filter", "column")
}

// parsePairs splits key=value arguments; kind and key name the argument in errors.
func parsePairs(raw []string, kind, key string) (map[string]string, error) {
	pairs := make(map[string]string, len(raw))
	for _, p := range raw {
		k, v, ok := strings.Cut(p, "=")
		if !ok || k == "" {
			return nil, fmt.Errorf("%s %q must look like %s=value", kind, p, key)
		}
		pairs[k] = v
	}
	return pairs, nil
}

func newListCmd(a *App) *cobra.Command {
	var (
		opts    listOptions
		filters []string
	)

	cmd := &cobra.Command{
		Use:       "list <entity>",
		Short:     "List records, ten per page",
		Args:      cobra.ExactArgs(1),
		ValidArgs: entityNames(),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := lookupView(args[0])
			if err != nil {
				return err
			}
			if opts.filters, err = parseFilters(filters); err != nil {
				return err
			}
			return v.list(cmd.Context(), a, opts)
		},
	}

	cmd.Flags().IntVar(&opts.page, "page", 1, "page to show, starting at 1")
	cmd.Flags().StringVarP(&opts.search, "search", "s", "", "case-insensitive text search")
	cmd.Flags().StringArrayVarP(&filters, "filter", "f", nil, "exact column match, e.g. status=pending (repeatable)")
	return cmd
}

func parseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", raw)
	}
	return id, nil
}

func newShowCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:       "show <entity> <id>",
		Short:     "Show one record",
		Args:      cobra.ExactArgs(2),
		ValidArgs: entityNames(),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := lookupView(args[0])
			if err != nil {
				return err
			}
			id, err := parseID(args[1])
			if err != nil {
				return err
			}
			return v.show(cmd.Context(), a, id)
		},
	}
}

func newDeleteCmd(a *App) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:       "delete <entity> <id>",
		Short:     "Delete a record after confirmation",
		Args:      cobra.ExactArgs(2),
		ValidArgs: entityNames(),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := lookupView(args[0])
			if err != nil {
				return err
			}
			id, err := parseID(args[1])
			if err != nil {
				return err
			}
			return v.remove(cmd.Context(), a, id, yes)
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "do not ask for confirmation")
	return cmd
}

func newUpdateCmd(a *App) *cobra.Command {
	var sets []string

	cmd := &cobra.Command{
		Use:       "update <entity> <id> --set field=value...",
		Short:     "Change fields of a record",
		Args:      cobra.ExactArgs(2),
		ValidArgs: entityNames(),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := lookupView(args[0])
			if err != nil {
				return err
			}
			id, err := parseID(args[1])
			if err != nil {
				return err
			}
			changes, err := parsePairs(sets, "--set", "field")
			if err != nil {
				return err
			}
			if len(changes) == 0 {
				return fmt.Errorf("nothing to update, pass at least one --set field=value")
			}
			return v.update(cmd.Context(), a, id, changes)
		},
	}

	cmd.Flags().StringArrayVar(&sets, "set", nil, "field=value to change (repeatable); an empty value clears an optional field")
	return cmd
}

func newStatusCmd(a *App) *cobra.Command {
	var reason string

	cmd := &cobra.Command{
		Use:   "status <donation|donationRequest> <id> <VERIFY|REJECT|CANCEL|DONATE|CLOSE>",
		Short: "Move a donation or donation request through its lifecycle",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[1])
			if err != nil {
				return err
			}
			change := models.StatusChange{Type: strings.ToUpper(args[2]), RejectionReason: reason}

			ctx := cmd.Context()
			var status string
			switch args[0] {
			case client.ResourceDonation:
				res := a.Client.Donations()
				if err := res.UpdateStatus(ctx, id, change); err != nil {
					return err
				}
				d, err := res.Get(ctx, id)
				if err != nil {
					return err
				}
				status = d.Status()
			case client.ResourceDonationRequest:
				res := a.Client.DonationRequests()
				if err := res.UpdateStatus(ctx, id, change); err != nil {
					return err
				}
				r, err := res.Get(ctx, id)
				if err != nil {
					return err
				}
				status = r.Status()
			default:
				return fmt.Errorf("status changes apply to %s and %s only", client.ResourceDonation, client.ResourceDonationRequest)
			}

			a.Success(fmt.Sprintf("%s #%d is now %s", args[0], id, status))
			return nil
		},
	}

	cmd.Flags().StringVarP(&reason, "reason", "r", "", "rejection reason, required for REJECT")
	return cmd
}

func newCreateCmd(a *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a record",
	}
	cmd.AddCommand(
		newCreateHospitalCmd(a),
		newCreateNewsCmd(a),
		newCreateEventCmd(a),
		newCreateRewardCmd(a),
		newCreateFAQCmd(a),
	)
	return cmd
}

func newCreateFAQCmd(a *App) *cobra.Command {
	var faq models.FAQ

	cmd := &cobra.Command{
		Use:   "faq",
		Short: "Add a frequently asked question",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			created, err := a.Client.FAQs().Create(cmd.Context(), &faq)
			if err != nil {
				return err
			}
			a.Success(fmt.Sprintf("faq #%d created", created.ID))
			return nil
		},
	}

	cmd.Flags().StringVar(&faq.Question, "question", "", "question text")
	cmd.Flags().StringVar(&faq.Answer, "answer", "", "answer text")
	return cmd
}

func newCreateRewardCmd(a *App) *cobra.Command {
	var reward models.Reward

	cmd := &cobra.Command{
		Use:   "reward",
		Short: "Add a reward donors can redeem",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			created, err := a.Client.Rewards().Create(cmd.Context(), &reward)
			if err != nil {
				return err
			}
			a.Success(fmt.Sprintf("reward #%d created", created.ID))
			return nil
		},
	}

	cmd.Flags().StringVar(&reward.Name, "name", "", "reward name")
	cmd.Flags().StringVar(&reward.Description, "description", "", "reward description")
	cmd.Flags().IntVar(&reward.Points, "points", 0, "points needed to redeem")
	cmd.Flags().IntVar(&reward.Stock, "stock", 0, "units available")
	return cmd
}

func newCreateHospitalCmd(a *App) *cobra.Command {
	var (
		hospital models.Hospital
		phone    string
	)

	cmd := &cobra.Command{
		Use:   "hospital",
		Short: "Add a hospital donation requests can point at",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if phone != "" {
				hospital.Phone = &phone
			}
			created, err := a.Client.Hospitals().Create(cmd.Context(), &hospital)
			if err != nil {
				return err
			}
			a.Success(fmt.Sprintf("hospital #%d created", created.ID))
			return nil
		},
	}

	cmd.Flags().StringVar(&hospital.Name, "name", "", "hospital name")
	cmd.Flags().StringVar(&hospital.Address, "address", "", "street address")
	cmd.Flags().StringVar(&phone, "phone", "", "contact number")
	return cmd
}

// openImage opens the --image file; an empty path leaves the upload nil so
// the client reports the missing image.
func openImage(path string) (*client.Upload, func(), error) {
	if path == "" {
		return nil, func() {}, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open image: %w", err)
	}
	return &client.Upload{Filename: filepath.Base(path), Content: f}, func() { _ = f.Close() }, nil
}

func newCreateNewsCmd(a *App) *cobra.Command {
	var (
		news  models.News
		image string
	)

	cmd := &cobra.Command{
		Use:   "news",
		Short: "Publish a news article with a cover image",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			img, closeImage, err := openImage(image)
			if err != nil {
				return err
			}
			defer closeImage()

			created, err := a.Client.News().CreateWithImage(cmd.Context(), &news, img)
			if err != nil {
				return err
			}
			a.Success(fmt.Sprintf("news #%d created", created.ID))
			return nil
		},
	}

	cmd.Flags().StringVar(&news.Title, "title", "", "headline")
	cmd.Flags().StringVar(&news.Content, "content", "", "article body")
	cmd.Flags().StringVar(&image, "image", "", "path to the cover image")
	return cmd
}

func newCreateEventCmd(a *App) *cobra.Command {
	var (
		event      models.Event
		start, end string
		image      string
	)

	cmd := &cobra.Command{
		Use:   "event",
		Short: "Announce a donation event with a poster image",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			if start != "" {
				if event.StartDate, err = parseTime(start); err != nil {
					return fmt.Errorf("--start: %w", err)
				}
			}
			if end != "" {
				if event.EndDate, err = parseTime(end); err != nil {
					return fmt.Errorf("--end: %w", err)
				}
			}

			img, closeImage, err := openImage(image)
			if err != nil {
				return err
			}
			defer closeImage()

			created, err := a.Client.Events().CreateWithImage(cmd.Context(), &event, img)
			if err != nil {
				return err
			}
			a.Success(fmt.Sprintf("event #%d created", created.ID))
			return nil
		},
	}

	cmd.Flags().StringVar(&event.Title, "title", "", "event name")
	cmd.Flags().StringVar(&event.Description, "description", "", "what happens at the event")
	cmd.Flags().StringVar(&event.Location, "location", "", "venue")
	cmd.Flags().StringVar(&start, "start", "", "start time, YYYY-MM-DD or RFC 3339")
	cmd.Flags().StringVar(&end, "end", "", "end time, YYYY-MM-DD or RFC 3339")
	cmd.Flags().StringVar(&image, "image", "", "path to the poster image")
	return cmd
}
