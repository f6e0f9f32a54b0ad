package reservation

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"campus_fleet/internal/apperror"
	"campus_fleet/internal/clock"
	"campus_fleet/internal/models"
)

// fakeRepo is an in-memory Repository. WithTx serializes callers on one
// mutex, mirroring the row locks the gorm implementation takes, so the
// concurrency tests exercise the same check-then-insert protocol.
type fakeRepo struct {
	txMu sync.Mutex
	mu   sync.Mutex

	users        map[uint]*models.User
	drivers      map[uint]*models.Driver
	vehicles     map[uint]*models.Vehicle
	reservations map[uint]*models.Reservation
	nextID       uint
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		users:        make(map[uint]*models.User),
		drivers:      make(map[uint]*models.Driver),
		vehicles:     make(map[uint]*models.Vehicle),
		reservations: make(map[uint]*models.Reservation),
	}
}

func (f *fakeRepo) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	f.txMu.Lock()
	defer f.txMu.Unlock()
	return fn(ctx)
}

func (f *fakeRepo) GetUser(_ context.Context, id uint) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u, ok := f.users[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, apperror.NotFound("requester not found")
}

func (f *fakeRepo) GetDriver(_ context.Context, id uint) (*models.Driver, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if d, ok := f.drivers[id]; ok {
		cp := *d
		return &cp, nil
	}
	return nil, apperror.NotFound("driver not found")
}

func (f *fakeRepo) GetDriverForUpdate(ctx context.Context, id uint) (*models.Driver, error) {
	return f.GetDriver(ctx, id)
}

func (f *fakeRepo) GetVehicleForUpdate(_ context.Context, id uint) (*models.Vehicle, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if v, ok := f.vehicles[id]; ok {
		cp := *v
		return &cp, nil
	}
	return nil, apperror.NotFound("vehicle not found")
}

func (f *fakeRepo) GetReservation(_ context.Context, id uint) (*models.Reservation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if r, ok := f.reservations[id]; ok {
		cp := *r
		return &cp, nil
	}
	return nil, apperror.NotFound("reservation not found")
}

func (f *fakeRepo) CountOverlapping(_ context.Context, kind ResourceKind, resourceID uint, date time.Time, start, end string, excludeID uint) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var n int64
	for _, r := range f.reservations {
		if r.ID == excludeID {
			continue
		}
		if !dateOnly(r.Date).Equal(dateOnly(date)) {
			continue
		}
		if r.State != models.ReservationPending && r.State != models.ReservationApproved {
			continue
		}
		switch kind {
		case ResourceDriver:
			if r.DriverID == nil || *r.DriverID != resourceID {
				continue
			}
		default:
			if r.VehicleID != resourceID {
				continue
			}
		}
		if WindowsOverlap(start, end, r.StartTime, r.EndTime) {
			n++
		}
	}
	return n, nil
}

func (f *fakeRepo) Create(_ context.Context, r *models.Reservation) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	r.ID = f.nextID
	cp := *r
	f.reservations[r.ID] = &cp
	return nil
}

func (f *fakeRepo) UpdateGuarded(_ context.Context, id uint, allowed []models.ReservationState, updates map[string]interface{}) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	r, ok := f.reservations[id]
	if !ok {
		return 0, nil
	}
	permitted := false
	for _, s := range allowed {
		if r.State == s {
			permitted = true
			break
		}
	}
	if !permitted {
		return 0, nil
	}

	for k, v := range updates {
		switch k {
		case "state":
			r.State = v.(models.ReservationState)
		case "notes":
			r.Notes = v.(string)
		case "approved_by":
			id := v.(uint)
			r.ApprovedBy = &id
		case "approval_date":
			t := v.(time.Time)
			r.ApprovalDate = &t
		case "date":
			r.Date = v.(time.Time)
		case "start_time":
			r.StartTime = v.(string)
		case "end_time":
			r.EndTime = v.(string)
		}
	}
	return 1, nil
}

func (f *fakeRepo) ListBetween(_ context.Context, from, to time.Time, vehicleID uint) ([]models.Reservation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []models.Reservation
	for _, r := range f.reservations {
		d := dateOnly(r.Date)
		if d.Before(dateOnly(from)) || d.After(dateOnly(to)) {
			continue
		}
		if vehicleID != 0 && r.VehicleID != vehicleID {
			continue
		}
		out = append(out, *r)
	}
	return out, nil
}

func (f *fakeRepo) List(_ context.Context, filter ListFilter) ([]models.Reservation, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []models.Reservation
	for _, r := range f.reservations {
		if filter.RequesterID != 0 && r.RequesterID != filter.RequesterID {
			continue
		}
		if filter.VehicleID != 0 && r.VehicleID != filter.VehicleID {
			continue
		}
		if filter.State != "" && r.State != filter.State {
			continue
		}
		out = append(out, *r)
	}
	return out, int64(len(out)), nil
}

type notifierCall struct {
	event  string
	id     uint
	reason string
}

type recordingNotifier struct {
	mu    sync.Mutex
	calls []notifierCall
}

func (n *recordingNotifier) record(event string, r models.Reservation, reason string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.calls = append(n.calls, notifierCall{event: event, id: r.ID, reason: reason})
}

func (n *recordingNotifier) NotifyCreated(r models.Reservation)  { n.record("created", r, "") }
func (n *recordingNotifier) NotifyApproved(r models.Reservation) { n.record("approved", r, "") }
func (n *recordingNotifier) NotifyRejected(r models.Reservation, reason string) {
	n.record("rejected", r, reason)
}
func (n *recordingNotifier) NotifyCancelled(r models.Reservation, reason string) {
	n.record("cancelled", r, reason)
}

type recordingAuditor struct {
	mu      sync.Mutex
	actions []string
}

func (a *recordingAuditor) Record(action string, entityID uint, before, after string, actorID uint) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.actions = append(a.actions, action)
}

var testNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

type fixture struct {
	svc      *Service
	repo     *fakeRepo
	notifier *recordingNotifier
	audit    *recordingAuditor
}

func newFixture() *fixture {
	repo := newFakeRepo()
	repo.users[1] = &models.User{Name: "Ana", Role: RoleRequester}
	repo.users[1].ID = 1
	repo.users[2] = &models.User{Name: "Bea", Role: RoleRequester}
	repo.users[2].ID = 2
	repo.users[9] = &models.User{Name: "Ops", Role: RoleAdmin}
	repo.users[9].ID = 9
	repo.users[5] = &models.User{Name: "Dan", Role: RoleDriver}
	repo.users[5].ID = 5

	v := &models.Vehicle{Capacity: 4, State: models.VehicleAvailable}
	v.ID = 1
	repo.vehicles[1] = v

	busy := &models.Vehicle{Capacity: 12, State: models.VehicleMaintenance}
	busy.ID = 2
	repo.vehicles[2] = busy

	d := &models.Driver{UserID: 5, Enabled: true}
	d.ID = 1
	repo.drivers[1] = d

	off := &models.Driver{UserID: 6, Enabled: false}
	off.ID = 2
	repo.drivers[2] = off

	notifier := &recordingNotifier{}
	auditor := &recordingAuditor{}
	svc := NewService(repo, clock.NewFixed(testNow), notifier, auditor)
	return &fixture{svc: svc, repo: repo, notifier: notifier, audit: auditor}
}

func (fx *fixture) seed(t *testing.T, state models.ReservationState, date time.Time, start, end string) *models.Reservation {
	t.Helper()
	res := &models.Reservation{
		Reference:      "ref",
		VehicleID:      1,
		RequesterID:    1,
		Date:           date,
		StartTime:      start,
		EndTime:        end,
		Origin:         "Main campus",
		Destination:    "North campus",
		UnitName:       "Engineering",
		Reason:         "faculty field visit",
		PassengerCount: 2,
		State:          state,
	}
	if err := fx.repo.Create(context.Background(), res); err != nil {
		t.Fatalf("seed: %v", err)
	}
	fx.repo.reservations[res.ID].State = state
	return fx.repo.reservations[res.ID]
}

func validInput() CreateInput {
	return CreateInput{
		RequesterID:    1,
		VehicleID:      1,
		Date:           "2025-06-10",
		StartTime:      "08:00",
		EndTime:        "10:00",
		Destination:    "North campus",
		UnitName:       "Engineering",
		Reason:         "faculty field visit",
		PassengerCount: 2,
	}
}

func wantKind(t *testing.T, err error, kind apperror.Kind) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected error of kind %v, got nil", kind)
	}
	var appErr *apperror.Error
	if !errors.As(err, &appErr) {
		t.Fatalf("expected apperror, got %T: %v", err, err)
	}
	if appErr.Kind != kind {
		t.Fatalf("expected kind %v, got %v (%s)", kind, appErr.Kind, appErr.Message)
	}
}

func adminActor() Actor     { return Actor{UserID: 9, Role: RoleAdmin} }
func requesterActor() Actor { return Actor{UserID: 1, Role: RoleRequester} }

func TestCreateValidation(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	cases := []struct {
		name   string
		mutate func(*CreateInput)
		kind   apperror.Kind
	}{
		{"missing vehicle", func(in *CreateInput) { in.VehicleID = 0 }, apperror.KindValidation},
		{"missing date", func(in *CreateInput) { in.Date = "" }, apperror.KindValidation},
		{"missing destination", func(in *CreateInput) { in.Destination = "" }, apperror.KindValidation},
		{"missing unit", func(in *CreateInput) { in.UnitName = "" }, apperror.KindValidation},
		{"short reason", func(in *CreateInput) { in.Reason = "short" }, apperror.KindValidation},
		{"bad date", func(in *CreateInput) { in.Date = "10-06-2025" }, apperror.KindValidation},
		{"bad time", func(in *CreateInput) { in.StartTime = "8am" }, apperror.KindValidation},
		{"start equals end", func(in *CreateInput) { in.EndTime = in.StartTime }, apperror.KindValidation},
		{"start after end", func(in *CreateInput) { in.StartTime = "11:00"; in.EndTime = "10:00" }, apperror.KindValidation},
		{"past date", func(in *CreateInput) { in.Date = "2025-05-31" }, apperror.KindValidation},
		{"zero passengers negative", func(in *CreateInput) { in.PassengerCount = -1 }, apperror.KindValidation},
		{"over capacity", func(in *CreateInput) { in.PassengerCount = 5 }, apperror.KindValidation},
		{"unknown vehicle", func(in *CreateInput) { in.VehicleID = 99 }, apperror.KindNotFound},
		{"unknown requester", func(in *CreateInput) { in.RequesterID = 99 }, apperror.KindNotFound},
		{"vehicle in maintenance", func(in *CreateInput) { in.VehicleID = 2 }, apperror.KindConflict},
		{"unknown driver", func(in *CreateInput) { id := uint(99); in.DriverID = &id }, apperror.KindNotFound},
		{"disabled driver", func(in *CreateInput) { id := uint(2); in.DriverID = &id }, apperror.KindValidation},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			fx := newFixture()
			in := validInput()
			tc.mutate(&in)
			_, err := fx.svc.Create(ctx, in)
			wantKind(t, err, tc.kind)
			if len(fx.repo.reservations) != 0 {
				t.Fatalf("failed creation must not persist anything")
			}
			if len(fx.notifier.calls) != 0 {
				t.Fatalf("failed creation must not notify")
			}
		})
	}
}

func TestCreateSuccess(t *testing.T) {
	t.Parallel()
	fx := newFixture()

	res, err := fx.svc.Create(context.Background(), validInput())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if res.State != models.ReservationPending {
		t.Fatalf("expected PENDING, got %s", res.State)
	}
	if res.Reference == "" {
		t.Fatalf("expected a reference code")
	}
	if res.ID == 0 {
		t.Fatalf("expected an assigned id")
	}
	if len(fx.notifier.calls) != 1 || fx.notifier.calls[0].event != "created" {
		t.Fatalf("expected one created notification, got %+v", fx.notifier.calls)
	}
	if len(fx.audit.actions) != 1 || fx.audit.actions[0] != "reservation.create" {
		t.Fatalf("expected create audit entry, got %+v", fx.audit.actions)
	}

	t.Run("passenger count defaults to one", func(t *testing.T) {
		in := validInput()
		in.PassengerCount = 0
		in.Date = "2025-06-11"
		res, err := fx.svc.Create(context.Background(), in)
		if err != nil {
			t.Fatalf("Create: %v", err)
		}
		if res.PassengerCount != 1 {
			t.Fatalf("expected default passenger count 1, got %d", res.PassengerCount)
		}
	})
}

func TestCreateOverlapBoundaries(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	// Vehicle 1 holds an approved 08:00-10:00 booking on 2025-06-10.
	newCase := func() *fixture {
		fx := newFixture()
		res := fx.seed(t, models.ReservationApproved, time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC), "08:00", "10:00")
		_ = res
		return fx
	}

	t.Run("contained window conflicts", func(t *testing.T) {
		fx := newCase()
		in := validInput()
		in.StartTime, in.EndTime = "09:00", "11:00"
		_, err := fx.svc.Create(ctx, in)
		wantKind(t, err, apperror.KindConflict)
	})

	t.Run("touching window conflicts under inclusive boundaries", func(t *testing.T) {
		fx := newCase()
		in := validInput()
		in.StartTime, in.EndTime = "10:00", "12:00"
		_, err := fx.svc.Create(ctx, in)
		wantKind(t, err, apperror.KindConflict)
	})

	t.Run("disjoint window succeeds", func(t *testing.T) {
		fx := newCase()
		in := validInput()
		in.StartTime, in.EndTime = "10:01", "12:00"
		if _, err := fx.svc.Create(ctx, in); err != nil {
			t.Fatalf("Create: %v", err)
		}
	})

	t.Run("same window different date succeeds", func(t *testing.T) {
		fx := newCase()
		in := validInput()
		in.Date = "2025-06-11"
		if _, err := fx.svc.Create(ctx, in); err != nil {
			t.Fatalf("Create: %v", err)
		}
	})

	t.Run("terminal states release the window", func(t *testing.T) {
		fx := newFixture()
		fx.seed(t, models.ReservationCancelled, time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC), "08:00", "10:00")
		if _, err := fx.svc.Create(ctx, validInput()); err != nil {
			t.Fatalf("Create over cancelled reservation: %v", err)
		}
	})
}

func TestDriverConflict(t *testing.T) {
	t.Parallel()
	fx := newFixture()
	ctx := context.Background()

	driverID := uint(1)
	in := validInput()
	in.DriverID = &driverID
	if _, err := fx.svc.Create(ctx, in); err != nil {
		t.Fatalf("Create: %v", err)
	}

	// Same driver, different vehicle, overlapping window.
	other := &models.Vehicle{Capacity: 8, State: models.VehicleAvailable}
	other.ID = 3
	fx.repo.vehicles[3] = other

	in2 := validInput()
	in2.VehicleID = 3
	in2.DriverID = &driverID
	in2.StartTime, in2.EndTime = "09:00", "11:00"
	_, err := fx.svc.Create(ctx, in2)
	wantKind(t, err, apperror.KindConflict)
}

func TestConcurrentCreate(t *testing.T) {
	t.Parallel()
	fx := newFixture()

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = fx.svc.Create(context.Background(), validInput())
		}(i)
	}
	wg.Wait()

	var ok, conflict int
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		default:
			var appErr *apperror.Error
			if errors.As(err, &appErr) && appErr.Kind == apperror.KindConflict {
				conflict++
			}
		}
	}
	if ok != 1 || conflict != 1 {
		t.Fatalf("expected exactly one success and one conflict, got %d successes, %d conflicts (%v)", ok, conflict, errs)
	}
	if len(fx.repo.reservations) != 1 {
		t.Fatalf("expected exactly one persisted reservation, got %d", len(fx.repo.reservations))
	}
}

func TestApprove(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	future := time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)

	t.Run("admin approves pending", func(t *testing.T) {
		fx := newFixture()
		res := fx.seed(t, models.ReservationPending, future, "08:00", "10:00")

		out, err := fx.svc.Approve(ctx, adminActor(), res.ID)
		if err != nil {
			t.Fatalf("Approve: %v", err)
		}
		if out.State != models.ReservationApproved {
			t.Fatalf("expected APPROVED, got %s", out.State)
		}
		if out.ApprovedBy == nil || *out.ApprovedBy != 9 {
			t.Fatalf("expected approved_by to record the admin")
		}
		if out.ApprovalDate == nil || !out.ApprovalDate.Equal(testNow) {
			t.Fatalf("expected approval_date %v, got %v", testNow, out.ApprovalDate)
		}
		if len(fx.notifier.calls) != 1 || fx.notifier.calls[0].event != "approved" {
			t.Fatalf("expected approved notification, got %+v", fx.notifier.calls)
		}
	})

	t.Run("non-admin denied", func(t *testing.T) {
		fx := newFixture()
		res := fx.seed(t, models.ReservationPending, future, "08:00", "10:00")
		_, err := fx.svc.Approve(ctx, requesterActor(), res.ID)
		wantKind(t, err, apperror.KindPermission)
	})

	t.Run("approving a terminal reservation fails", func(t *testing.T) {
		fx := newFixture()
		res := fx.seed(t, models.ReservationCancelled, future, "08:00", "10:00")
		_, err := fx.svc.Approve(ctx, adminActor(), res.ID)
		wantKind(t, err, apperror.KindInvalidTransition)
	})

	t.Run("unknown reservation", func(t *testing.T) {
		fx := newFixture()
		_, err := fx.svc.Approve(ctx, adminActor(), 42)
		wantKind(t, err, apperror.KindNotFound)
	})
}

func TestReject(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	future := time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)

	t.Run("empty reason fails", func(t *testing.T) {
		fx := newFixture()
		res := fx.seed(t, models.ReservationPending, future, "08:00", "10:00")
		_, err := fx.svc.Reject(ctx, adminActor(), res.ID, "  ")
		wantKind(t, err, apperror.KindValidation)
	})

	t.Run("reason appended to notes", func(t *testing.T) {
		fx := newFixture()
		res := fx.seed(t, models.ReservationPending, future, "08:00", "10:00")
		fx.repo.reservations[res.ID].Notes = "prior note"

		out, err := fx.svc.Reject(ctx, adminActor(), res.ID, "vehicle needed for maintenance")
		if err != nil {
			t.Fatalf("Reject: %v", err)
		}
		if out.State != models.ReservationRejected {
			t.Fatalf("expected REJECTED, got %s", out.State)
		}
		want := "prior note\nRejected: vehicle needed for maintenance"
		if out.Notes != want {
			t.Fatalf("expected notes %q, got %q", want, out.Notes)
		}
		if len(fx.notifier.calls) != 1 || fx.notifier.calls[0].reason != "vehicle needed for maintenance" {
			t.Fatalf("expected rejection notification with reason, got %+v", fx.notifier.calls)
		}
	})

	t.Run("rejecting approved fails", func(t *testing.T) {
		fx := newFixture()
		res := fx.seed(t, models.ReservationApproved, future, "08:00", "10:00")
		_, err := fx.svc.Reject(ctx, adminActor(), res.ID, "too late for this one")
		wantKind(t, err, apperror.KindInvalidTransition)
	})
}

func TestCancel(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	tomorrow := time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)
	today := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	t.Run("requester cancels own future reservation", func(t *testing.T) {
		fx := newFixture()
		res := fx.seed(t, models.ReservationPending, tomorrow, "08:00", "10:00")
		out, err := fx.svc.Cancel(ctx, requesterActor(), res.ID, "plans changed")
		if err != nil {
			t.Fatalf("Cancel: %v", err)
		}
		if out.State != models.ReservationCancelled {
			t.Fatalf("expected CANCELLED, got %s", out.State)
		}
		if out.Notes != "Cancelled: plans changed" {
			t.Fatalf("expected cancellation note, got %q", out.Notes)
		}
	})

	t.Run("same-day cancellation blocked for requester", func(t *testing.T) {
		fx := newFixture()
		res := fx.seed(t, models.ReservationPending, today, "08:00", "10:00")
		_, err := fx.svc.Cancel(ctx, requesterActor(), res.ID, "")
		wantKind(t, err, apperror.KindValidation)
	})

	t.Run("same-day cancellation blocked for admin too", func(t *testing.T) {
		fx := newFixture()
		res := fx.seed(t, models.ReservationApproved, today, "08:00", "10:00")
		_, err := fx.svc.Cancel(ctx, adminActor(), res.ID, "")
		wantKind(t, err, apperror.KindValidation)
	})

	t.Run("other requester denied", func(t *testing.T) {
		fx := newFixture()
		res := fx.seed(t, models.ReservationPending, tomorrow, "08:00", "10:00")
		_, err := fx.svc.Cancel(ctx, Actor{UserID: 2, Role: RoleRequester}, res.ID, "")
		wantKind(t, err, apperror.KindPermission)
	})

	t.Run("admin cancels approved reservation", func(t *testing.T) {
		fx := newFixture()
		res := fx.seed(t, models.ReservationApproved, tomorrow, "08:00", "10:00")
		out, err := fx.svc.Cancel(ctx, adminActor(), res.ID, "vehicle recalled")
		if err != nil {
			t.Fatalf("Cancel: %v", err)
		}
		if out.State != models.ReservationCancelled {
			t.Fatalf("expected CANCELLED, got %s", out.State)
		}
	})

	t.Run("cancelling completed fails", func(t *testing.T) {
		fx := newFixture()
		res := fx.seed(t, models.ReservationCompleted, tomorrow, "08:00", "10:00")
		_, err := fx.svc.Cancel(ctx, adminActor(), res.ID, "")
		wantKind(t, err, apperror.KindInvalidTransition)
	})
}

func TestComplete(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	past := time.Date(2025, 5, 28, 0, 0, 0, 0, time.UTC)
	future := time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)

	t.Run("admin completes past approved reservation", func(t *testing.T) {
		fx := newFixture()
		res := fx.seed(t, models.ReservationApproved, past, "08:00", "10:00")
		out, err := fx.svc.Complete(ctx, adminActor(), res.ID)
		if err != nil {
			t.Fatalf("Complete: %v", err)
		}
		if out.State != models.ReservationCompleted {
			t.Fatalf("expected COMPLETED, got %s", out.State)
		}

		// Second completion must fail: no self-transition on terminals.
		_, err = fx.svc.Complete(ctx, adminActor(), res.ID)
		wantKind(t, err, apperror.KindInvalidTransition)
	})

	t.Run("completing before the trip date fails", func(t *testing.T) {
		fx := newFixture()
		res := fx.seed(t, models.ReservationApproved, future, "08:00", "10:00")
		_, err := fx.svc.Complete(ctx, adminActor(), res.ID)
		wantKind(t, err, apperror.KindValidation)
	})

	t.Run("completing pending fails", func(t *testing.T) {
		fx := newFixture()
		res := fx.seed(t, models.ReservationPending, past, "08:00", "10:00")
		_, err := fx.svc.Complete(ctx, adminActor(), res.ID)
		wantKind(t, err, apperror.KindInvalidTransition)
	})

	t.Run("assigned driver may complete", func(t *testing.T) {
		fx := newFixture()
		res := fx.seed(t, models.ReservationApproved, past, "08:00", "10:00")
		driverID := uint(1)
		fx.repo.reservations[res.ID].DriverID = &driverID

		out, err := fx.svc.Complete(ctx, Actor{UserID: 5, Role: RoleDriver}, res.ID)
		if err != nil {
			t.Fatalf("Complete: %v", err)
		}
		if out.State != models.ReservationCompleted {
			t.Fatalf("expected COMPLETED, got %s", out.State)
		}
	})

	t.Run("unassigned driver denied", func(t *testing.T) {
		fx := newFixture()
		res := fx.seed(t, models.ReservationApproved, past, "08:00", "10:00")
		_, err := fx.svc.Complete(ctx, Actor{UserID: 5, Role: RoleDriver}, res.ID)
		wantKind(t, err, apperror.KindPermission)
	})
}

func TestUpdateWindow(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	future := time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)

	t.Run("admin moves the window", func(t *testing.T) {
		fx := newFixture()
		res := fx.seed(t, models.ReservationApproved, future, "08:00", "10:00")
		out, err := fx.svc.UpdateWindow(ctx, adminActor(), res.ID, "2025-06-12", "14:00", "16:00")
		if err != nil {
			t.Fatalf("UpdateWindow: %v", err)
		}
		if out.StartTime != "14:00" || out.EndTime != "16:00" {
			t.Fatalf("window not updated: %s-%s", out.StartTime, out.EndTime)
		}
	})

	t.Run("edit re-runs the conflict check", func(t *testing.T) {
		fx := newFixture()
		blocker := fx.seed(t, models.ReservationApproved, future, "12:00", "14:00")
		_ = blocker
		res := fx.seed(t, models.ReservationPending, future, "08:00", "10:00")

		_, err := fx.svc.UpdateWindow(ctx, adminActor(), res.ID, "2025-06-10", "13:00", "15:00")
		wantKind(t, err, apperror.KindConflict)
	})

	t.Run("reservation may keep its own slot", func(t *testing.T) {
		fx := newFixture()
		res := fx.seed(t, models.ReservationApproved, future, "08:00", "10:00")
		// Shrinking inside its own window must not self-conflict.
		if _, err := fx.svc.UpdateWindow(ctx, adminActor(), res.ID, "2025-06-10", "08:30", "09:30"); err != nil {
			t.Fatalf("UpdateWindow: %v", err)
		}
	})

	t.Run("non-admin denied", func(t *testing.T) {
		fx := newFixture()
		res := fx.seed(t, models.ReservationPending, future, "08:00", "10:00")
		_, err := fx.svc.UpdateWindow(ctx, requesterActor(), res.ID, "2025-06-12", "14:00", "16:00")
		wantKind(t, err, apperror.KindPermission)
	})

	t.Run("terminal reservation cannot be moved", func(t *testing.T) {
		fx := newFixture()
		res := fx.seed(t, models.ReservationRejected, future, "08:00", "10:00")
		_, err := fx.svc.UpdateWindow(ctx, adminActor(), res.ID, "2025-06-12", "14:00", "16:00")
		wantKind(t, err, apperror.KindInvalidTransition)
	})
}

func TestCheckAvailability(t *testing.T) {
	t.Parallel()
	fx := newFixture()
	ctx := context.Background()
	fx.seed(t, models.ReservationApproved, time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC), "08:00", "10:00")

	available, err := fx.svc.CheckAvailability(ctx, ResourceVehicle, 1, "2025-06-10", "09:00", "11:00")
	if err != nil {
		t.Fatalf("CheckAvailability: %v", err)
	}
	if available {
		t.Fatalf("expected overlapping window to be unavailable")
	}

	available, err = fx.svc.CheckAvailability(ctx, ResourceVehicle, 1, "2025-06-10", "10:01", "12:00")
	if err != nil {
		t.Fatalf("CheckAvailability: %v", err)
	}
	if !available {
		t.Fatalf("expected disjoint window to be available")
	}

	if _, err := fx.svc.CheckAvailability(ctx, "BUILDING", 1, "2025-06-10", "08:00", "10:00"); err == nil {
		t.Fatalf("expected unknown resource kind to fail")
	}
	if _, err := fx.svc.CheckAvailability(ctx, ResourceVehicle, 1, "2025-06-10", "10:00", "09:00"); err == nil {
		t.Fatalf("expected reversed window to fail")
	}
}

func TestListCalendar(t *testing.T) {
	t.Parallel()
	fx := newFixture()
	ctx := context.Background()

	fx.seed(t, models.ReservationApproved, time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC), "08:00", "10:00")
	fx.seed(t, models.ReservationPending, time.Date(2025, 6, 20, 0, 0, 0, 0, time.UTC), "08:00", "10:00")

	entries, err := fx.svc.ListCalendar(ctx, "2025-06-01", "2025-06-30", 0)
	if err != nil {
		t.Fatalf("ListCalendar: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}

	for _, e := range entries {
		switch e.Date {
		case "2025-06-02":
			if !e.Imminent {
				t.Fatalf("next-day approved reservation should be imminent")
			}
			if e.RemainingDays != 1 {
				t.Fatalf("expected 1 remaining day, got %d", e.RemainingDays)
			}
			if !e.Cancellable {
				t.Fatalf("future active reservation should be cancellable")
			}
			if e.Modifiable {
				t.Fatalf("approved reservation should not be modifiable")
			}
		case "2025-06-20":
			if e.Imminent {
				t.Fatalf("a reservation 19 days out is not imminent")
			}
			if !e.Modifiable {
				t.Fatalf("future pending reservation should be modifiable")
			}
		default:
			t.Fatalf("unexpected entry date %s", e.Date)
		}
	}

	if _, err := fx.svc.ListCalendar(ctx, "2025-06-30", "2025-06-01", 0); err == nil {
		t.Fatalf("expected reversed range to fail")
	}
}
