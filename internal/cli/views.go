package cli

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"strconv"
	"strings"

	"github.com/andriandrian/lifeline-admin/internal/client"
	"github.com/andriandrian/lifeline-admin/internal/models"
	"github.com/andriandrian/lifeline-admin/internal/table"
)

type column[T any] struct {
	key   string
	title string
	value func(T) string
}

type listOptions struct {
	page    int
	search  string
	filters map[string]string
}

// entityView is the list/show/update/delete behaviour of one entity, independent of its type.
type entityView interface {
	list(ctx context.Context, a *App, opts listOptions) error
	show(ctx context.Context, a *App, id int64) error
	update(ctx context.Context, a *App, id int64, changes map[string]string) error
	remove(ctx context.Context, a *App, id int64, yes bool) error
}

type view[T any] struct {
	resource func(*client.Client) *client.Resource[T]
	// noun names one record in prompts and notices.
	noun    string
	columns []column[T]
	// search is the column --search matches against.
	search func(T) string
	id     func(T) int64
	// editable lists the JSON fields update may change.
	editable []string
	// detail adds fields that are too wide for the list.
	detail func(T) [][2]string
}

func (v *view[T]) label(id int64) string {
	return fmt.Sprintf("%s #%d", v.noun, id)
}

func (v *view[T]) column(key string) (column[T], bool) {
	for _, c := range v.columns {
		if strings.EqualFold(c.key, key) {
			return c, true
		}
	}
	return column[T]{}, false
}

func (v *view[T]) keys() []string {
	keys := make([]string, 0, len(v.columns))
	for _, c := range v.columns {
		keys = append(keys, c.key)
	}
	return keys
}

func (v *view[T]) list(ctx context.Context, a *App, opts listOptions) error {
	ctl := table.NewController[T](a.PageSize)
	if err := table.Source(ctl, v.resource(a.Client).List)(ctx); err != nil {
		return err
	}

	if opts.search != "" {
		ctl.SetFilter("search", table.Contains(v.search, opts.search))
	}
	for key, want := range opts.filters {
		c, ok := v.column(key)
		if !ok {
			return fmt.Errorf("unknown column %q, expected one of: %s", key, strings.Join(v.keys(), ", "))
		}
		ctl.SetFilter(c.key, table.Equals(c.value, want))
	}
	page := ctl.SetPage(opts.page - 1)

	v.render(a, ctl.Page())
	a.printf("Page %d of %d, %d of %d rows\n", page+1, ctl.PageCount(), ctl.Len(), ctl.Total())
	return nil
}

func (v *view[T]) render(a *App, rows []table.Row[T]) {
	headers := make([]string, 0, len(v.columns)+1)
	headers = append(headers, "No")
	for _, c := range v.columns {
		headers = append(headers, c.title)
	}

	cells := make([][]string, 0, len(rows))
	for _, row := range rows {
		line := make([]string, 0, len(headers))
		line = append(line, strconv.Itoa(row.Number()))
		for _, c := range v.columns {
			line = append(line, c.value(row.Value))
		}
		cells = append(cells, line)
	}
	renderTable(a.out, headers, cells)
}

func (v *view[T]) show(ctx context.Context, a *App, id int64) error {
	item, err := v.resource(a.Client).Get(ctx, id)
	if err != nil {
		return err
	}

	fields := make([][2]string, 0, len(v.columns))
	for _, c := range v.columns {
		fields = append(fields, [2]string{c.title, c.value(*item)})
	}
	if v.detail != nil {
		fields = append(fields, v.detail(*item)...)
	}
	renderDetail(a.out, fields)
	return nil
}

// update fetches the record, applies the field changes and sends it back.
func (v *view[T]) update(ctx context.Context, a *App, id int64, changes map[string]string) error {
	for field := range changes {
		if !slices.Contains(v.editable, field) {
			return fmt.Errorf("field %q cannot be changed, expected one of: %s", field, strings.Join(v.editable, ", "))
		}
	}

	res := v.resource(a.Client)
	item, err := res.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := applyChanges(item, changes); err != nil {
		return err
	}
	if _, err := res.Update(ctx, id, item); err != nil {
		return err
	}

	a.Success(fmt.Sprintf("%s updated", v.label(id)))
	return nil
}

// remove runs the table delete flow: confirm, delete, notify, then reload the
// list after the usual delay and report how many rows remain. Nothing is
// fetched before the operator confirms.
func (v *view[T]) remove(ctx context.Context, a *App, id int64, yes bool) error {
	res := v.resource(a.Client)
	ctl := table.NewController[T](a.PageSize)
	load := table.Source(ctl, res.List)

	var reloaded bool
	d := &table.Deletion[int64]{
		Confirmer: a.confirmer(yes),
		Deleter:   res,
		Notifier:  a,
		Reloader: table.ReloadFunc(func(ctx context.Context) error {
			if err := load(ctx); err != nil {
				return err
			}
			reloaded = true
			return nil
		}),
		ID:    func(id int64) int64 { return id },
		Label: v.label,
		Delay: a.ReloadDelay,
	}

	outcome, err := d.Delete(ctx, table.Row[int64]{Value: id})
	switch outcome {
	case table.Canceled:
		if err == nil {
			a.printf("Nothing deleted.\n")
		}
		return err
	case table.Failed:
		// Already reported by the notifier.
		return errReported
	}

	d.Wait()
	if reloaded {
		a.printf("%d %s records remain.\n", ctl.Total(), res.Name())
	}
	return nil
}

func fullName(first, last string) string {
	return strings.TrimSpace(first + " " + last)
}

func role(u models.User) string {
	if u.IsAdmin {
		return "operator"
	}
	return "donor"
}

func requestStatus(r models.DonationRequest) string { return r.Status() }

func donationStatus(d models.Donation) string { return d.Status() }

var views = map[string]entityView{
	client.ResourceUser: &view[models.User]{
		resource: (*client.Client).Users,
		noun:     "user",
		columns: []column[models.User]{
			{"id", "ID", func(u models.User) string { return formatID(u.ID) }},
			{"name", "Name", func(u models.User) string { return fullName(u.Firstname, u.Lastname) }},
			{"email", "Email", func(u models.User) string { return u.Email }},
			{"bloodType", "Blood type", func(u models.User) string { return formatOptional(u.BloodType) }},
			{"role", "Role", role},
		},
		search:   func(u models.User) string { return fullName(u.Firstname, u.Lastname) + " " + u.Email },
		id:       func(u models.User) int64 { return u.ID },
		editable: []string{"firstname", "lastname", "email", "phone", "blood_type", "gender", "dob", "is_admin"},
		detail:   func(u models.User) [][2]string {
			return [][2]string{
				{"Phone", formatOptional(u.Phone)},
				{"Gender", formatOptional(u.Gender)},
				{"Date of birth", formatOptionalDate(u.DOB)},
				{"Joined", formatDate(u.CreatedAt)},
			}
		},
	},
	client.ResourceHospital: &view[models.Hospital]{
		resource: (*client.Client).Hospitals,
		noun:     "hospital",
		columns: []column[models.Hospital]{
			{"id", "ID", func(h models.Hospital) string { return formatID(h.ID) }},
			{"name", "Name", func(h models.Hospital) string { return h.Name }},
			{"address", "Address", func(h models.Hospital) string { return h.Address }},
			{"phone", "Phone", func(h models.Hospital) string { return formatOptional(h.Phone) }},
		},
		search:   func(h models.Hospital) string { return h.Name },
		id:       func(h models.Hospital) int64 { return h.ID },
		editable: []string{"name", "address", "phone"},
	},
	client.ResourceDonationRequest: &view[models.DonationRequest]{
		resource: (*client.Client).DonationRequests,
		noun:     "request",
		columns: []column[models.DonationRequest]{
			{"id", "ID", func(r models.DonationRequest) string { return formatID(r.ID) }},
			{"requester", "Requester", func(r models.DonationRequest) string {
				return fullName(r.RequesterFirstname, r.RequesterLastname)
			}},
			{"hospital", "Hospital", func(r models.DonationRequest) string { return r.HospitalName }},
			{"bloodType", "Blood type", func(r models.DonationRequest) string { return r.BloodType }},
			{"priority", "Priority", func(r models.DonationRequest) string { return r.Priority }},
			{"status", "Status", requestStatus},
			{"createdAt", "Created", func(r models.DonationRequest) string { return formatDate(r.CreatedAt) }},
		},
		search:   func(r models.DonationRequest) string { return fullName(r.RequesterFirstname, r.RequesterLastname) },
		id:       func(r models.DonationRequest) int64 { return r.ID },
		editable: []string{
			"hospitalId", "bloodType", "reason", "description", "priority",
			"patientRecordNumber", "patientGender", "neededAt",
		},
		detail:   func(r models.DonationRequest) [][2]string {
			return [][2]string{
				{"Reason", r.Reason},
				{"Description", formatOptional(r.Description)},
				{"Patient record", formatOptional(r.PatientRecordNumber)},
				{"Patient gender", formatOptional(r.PatientGender)},
				{"Needed at", formatOptionalDate(r.NeededAt)},
				{"Verified at", formatOptionalDate(r.VerifiedAt)},
				{"Closed at", formatOptionalDate(r.ClosedAt)},
			}
		},
	},
	client.ResourceDonation: &view[models.Donation]{
		resource: (*client.Client).Donations,
		noun:     "donation",
		columns: []column[models.Donation]{
			{"id", "ID", func(d models.Donation) string { return formatID(d.ID) }},
			{"reference", "Reference", func(d models.Donation) string { return d.ReferenceCode }},
			{"donor", "Donor", func(d models.Donation) string { return d.DonorName() }},
			{"request", "Request", func(d models.Donation) string { return d.RequestReason }},
			{"priority", "Priority", func(d models.Donation) string { return d.Priority }},
			{"status", "Status", donationStatus},
			{"createdAt", "Created", func(d models.Donation) string { return formatDate(d.CreatedAt) }},
		},
		search:   func(d models.Donation) string { return d.DonorName() + " " + d.ReferenceCode },
		id:       func(d models.Donation) int64 { return d.ID },
		editable: []string{"bloodType", "donorGender", "donorDOB"},
		detail:   func(d models.Donation) [][2]string {
			return [][2]string{
				{"Blood type", formatOptional(d.BloodType)},
				{"Donor gender", formatOptional(d.DonorGender)},
				{"Donor date of birth", formatOptionalDate(d.DonorDOB)},
				{"Confirmed at", formatOptionalDate(d.ConfirmedAt)},
				{"Rejected at", formatOptionalDate(d.RejectedAt)},
				{"Rejection reason", formatOptional(d.RejectedReason)},
				{"Canceled at", formatOptionalDate(d.CanceledAt)},
				{"Donated at", formatOptionalDate(d.DonatedAt)},
			}
		},
	},
	client.ResourceNews: &view[models.News]{
		resource: (*client.Client).News,
		noun:     "news",
		columns: []column[models.News]{
			{"id", "ID", func(n models.News) string { return formatID(n.ID) }},
			{"title", "Title", func(n models.News) string { return n.Title }},
			{"author", "Author", func(n models.News) string { return n.AuthorFirstname }},
			{"createdAt", "Created", func(n models.News) string { return formatDate(n.CreatedAt) }},
		},
		search:   func(n models.News) string { return n.Title },
		id:       func(n models.News) int64 { return n.ID },
		editable: []string{"title", "content"},
		detail:   func(n models.News) [][2]string {
			return [][2]string{{"Content", n.Content}, {"Image", formatOptional(n.Image)}}
		},
	},
	client.ResourceEvent: &view[models.Event]{
		resource: (*client.Client).Events,
		noun:     "event",
		columns: []column[models.Event]{
			{"id", "ID", func(e models.Event) string { return formatID(e.ID) }},
			{"title", "Title", func(e models.Event) string { return e.Title }},
			{"location", "Location", func(e models.Event) string { return e.Location }},
			{"start", "Starts", func(e models.Event) string { return formatDate(e.StartDate) }},
			{"end", "Ends", func(e models.Event) string { return formatDate(e.EndDate) }},
		},
		search:   func(e models.Event) string { return e.Title },
		id:       func(e models.Event) int64 { return e.ID },
		editable: []string{"title", "description", "location", "startDate", "endDate"},
		detail:   func(e models.Event) [][2]string {
			return [][2]string{{"Description", e.Description}, {"Image", formatOptional(e.Image)}}
		},
	},
	client.ResourceReward: &view[models.Reward]{
		resource: (*client.Client).Rewards,
		noun:     "reward",
		columns: []column[models.Reward]{
			{"id", "ID", func(r models.Reward) string { return formatID(r.ID) }},
			{"name", "Name", func(r models.Reward) string { return r.Name }},
			{"points", "Points", func(r models.Reward) string { return strconv.Itoa(r.Points) }},
			{"stock", "Stock", func(r models.Reward) string { return strconv.Itoa(r.Stock) }},
		},
		search:   func(r models.Reward) string { return r.Name },
		id:       func(r models.Reward) int64 { return r.ID },
		editable: []string{"name", "description", "points", "stock"},
		detail:   func(r models.Reward) [][2]string {
			return [][2]string{{"Description", r.Description}}
		},
	},
	client.ResourceFAQ: &view[models.FAQ]{
		resource: (*client.Client).FAQs,
		noun:     "FAQ",
		columns: []column[models.FAQ]{
			{"id", "ID", func(f models.FAQ) string { return formatID(f.ID) }},
			{"question", "Question", func(f models.FAQ) string { return f.Question }},
			{"answer", "Answer", func(f models.FAQ) string { return f.Answer }},
		},
		search:   func(f models.FAQ) string { return f.Question },
		id:       func(f models.FAQ) int64 { return f.ID },
		editable: []string{"question", "answer"},
	},
}

func entityNames() []string {
	names := make([]string, 0, len(views))
	for name := range views {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func lookupView(entity string) (entityView, error) {
	v, ok := views[entity]
	if !ok {
		return nil, fmt.Errorf("unknown entity %q, expected one of: %s", entity, strings.Join(entityNames(), ", "))
	}
	return v, nil
}
