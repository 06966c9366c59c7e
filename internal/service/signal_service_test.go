package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/signals-service/internal/domain"
	"github.com/spec-kit/signals-service/internal/events"
	"github.com/spec-kit/signals-service/internal/repository"
	apperrors "github.com/spec-kit/signals-service/pkg/util"
)

type fakeSignalRepo struct {
	mu      sync.Mutex
	nextID  int64
	childID int64
	signals map[int64]*domain.Signal
}

func newFakeSignalRepo() *fakeSignalRepo {
	return &fakeSignalRepo{signals: map[int64]*domain.Signal{}}
}

func (f *fakeSignalRepo) Create(_ context.Context, signal *domain.Signal) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	signal.ID = f.nextID
	signal.CreatedAt = time.Now()
	if signal.Status != nil {
		f.childID++
		signal.Status.ID = f.childID
		signal.Status.SignalID = signal.ID
	}
	if signal.CategoryAssignment != nil {
		f.childID++
		signal.CategoryAssignment.ID = f.childID
		signal.CategoryAssignment.SignalID = signal.ID
	}
	if signal.Priority != nil {
		f.childID++
		signal.Priority.ID = f.childID
		signal.Priority.SignalID = signal.ID
	}
	if signal.Location != nil {
		f.childID++
		signal.Location.ID = f.childID
		signal.Location.SignalID = signal.ID
	}
	f.signals[signal.ID] = signal
	return nil
}

func (f *fakeSignalRepo) GetByID(_ context.Context, id int64) (*domain.Signal, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	signal, ok := f.signals[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return signal, nil
}

func (f *fakeSignalRepo) GetByPublicID(_ context.Context, publicID string) (*domain.Signal, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, signal := range f.signals {
		if signal.SignalID == publicID {
			return signal, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeSignalRepo) List(_ context.Context, _, _ int) ([]domain.Signal, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var result []domain.Signal
	for _, signal := range f.signals {
		result = append(result, *signal)
	}
	return result, len(result), nil
}

func (f *fakeSignalRepo) SetImage(_ context.Context, publicID, image string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, signal := range f.signals {
		if signal.SignalID == publicID {
			if signal.Image != "" {
				return repository.ErrImageExists
			}
			signal.Image = image
			return nil
		}
	}
	return pgx.ErrNoRows
}

func (f *fakeSignalRepo) ApplyStatus(_ context.Context, signalID int64, decide func(*domain.Status) (*domain.Status, error)) (*domain.Status, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	signal, ok := f.signals[signalID]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	next, err := decide(signal.Status)
	if err != nil {
		return nil, err
	}
	f.childID++
	next.ID = f.childID
	next.SignalID = signalID
	next.CreatedAt = time.Now()
	signal.Status = next
	return next, nil
}

func (f *fakeSignalRepo) ApplyCategoryAssignment(_ context.Context, signalID int64, decide func(*domain.CategoryAssignment) (*domain.CategoryAssignment, error)) (*domain.CategoryAssignment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	signal, ok := f.signals[signalID]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	next, err := decide(signal.CategoryAssignment)
	if err != nil {
		return nil, err
	}
	f.childID++
	next.ID = f.childID
	next.SignalID = signalID
	next.CreatedAt = time.Now()
	signal.CategoryAssignment = next
	return next, nil
}

func (f *fakeSignalRepo) ApplyPriority(_ context.Context, signalID int64, decide func(*domain.Priority) (*domain.Priority, error)) (*domain.Priority, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	signal, ok := f.signals[signalID]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	next, err := decide(signal.Priority)
	if err != nil {
		return nil, err
	}
	f.childID++
	next.ID = f.childID
	next.SignalID = signalID
	signal.Priority = next
	return next, nil
}

func (f *fakeSignalRepo) ApplyLocation(_ context.Context, signalID int64, decide func(*domain.Location) (*domain.Location, error)) (*domain.Location, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	signal, ok := f.signals[signalID]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	next, err := decide(signal.Location)
	if err != nil {
		return nil, err
	}
	f.childID++
	next.ID = f.childID
	next.SignalID = signalID
	signal.Location = next
	return next, nil
}

type fakeCategoryRepo struct {
	categories []*domain.Category
}

func (f *fakeCategoryRepo) GetByID(_ context.Context, id int64) (*domain.Category, error) {
	for _, c := range f.categories {
		if c.ID == id {
			return c, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeCategoryRepo) GetBySlugs(_ context.Context, mainSlug, subSlug string) (*domain.Category, error) {
	for _, c := range f.categories {
		if c.Parent != nil && c.Parent.Slug == mainSlug && c.Slug == subSlug {
			return c, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeCategoryRepo) GetByNames(_ context.Context, mainName, subName string) (*domain.Category, error) {
	for _, c := range f.categories {
		if c.Parent != nil && c.Parent.Name == mainName && c.Name == subName {
			return c, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeCategoryRepo) ListMainCategories(context.Context) ([]domain.MainCategory, error) {
	return nil, nil
}

func (f *fakeCategoryRepo) GetMainBySlug(context.Context, string) (*domain.MainCategory, error) {
	return nil, pgx.ErrNoRows
}

func (f *fakeCategoryRepo) ListByMain(context.Context, int64) ([]domain.Category, error) {
	return nil, nil
}

func (f *fakeCategoryRepo) GetAssignmentByID(context.Context, int64) (*domain.CategoryAssignment, error) {
	return nil, pgx.ErrNoRows
}

func (f *fakeCategoryRepo) ListAssignments(context.Context, int, int) ([]domain.CategoryAssignment, int, error) {
	return nil, 0, nil
}

func (f *fakeCategoryRepo) ListAssignmentsBySignal(context.Context, int64) ([]domain.CategoryAssignment, error) {
	return nil, nil
}

type eventRecorder struct {
	mu     sync.Mutex
	events []events.Event
}

func (r *eventRecorder) record(_ context.Context, event events.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return nil
}

func (r *eventRecorder) byType(eventType events.EventType) []events.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []events.Event
	for _, event := range r.events {
		if event.Type == eventType {
			result = append(result, event)
		}
	}
	return result
}

func testCategory() *domain.Category {
	return &domain.Category{
		ID:   7,
		Slug: "fietswrak",
		Name: "Fietswrak",
		Parent: &domain.MainCategory{
			ID:   1,
			Slug: "overlast-in-de-openbare-ruimte",
			Name: "Overlast in de openbare ruimte",
		},
	}
}

func newTestService(t *testing.T) (*SignalService, *fakeSignalRepo, *eventRecorder) {
	t.Helper()
	repo := newFakeSignalRepo()
	categories := &fakeCategoryRepo{categories: []*domain.Category{testCategory()}}
	dispatcher := events.NewInMemoryDispatcher()
	recorder := &eventRecorder{}
	for _, eventType := range []events.EventType{
		events.EventSignalCreated,
		events.EventSignalStatusChanged,
		events.EventSignalCategoryChanged,
		events.EventSignalPriorityChanged,
		events.EventSignalLocationChanged,
	} {
		dispatcher.Subscribe(eventType, recorder.record)
	}
	svc := NewSignalService(repo, nil, categories, nil, nil, dispatcher, zap.NewNop())
	return svc, repo, recorder
}

func validCreateInput() CreateSignalInput {
	return CreateSignalInput{
		Text:              "Er ligt een fietswrak op de stoep.",
		IncidentDateStart: time.Date(2018, 9, 5, 21, 0, 0, 0, time.UTC),
		Category: CategoryRef{
			MainSlug: "overlast-in-de-openbare-ruimte",
			SubSlug:  "fietswrak",
		},
		Location: &LocationInput{
			Stadsdeel:   domain.StadsdeelOost,
			AddressText: "Oostelijke Handelskade 12",
		},
	}
}

func TestCreateSignal(t *testing.T) {
	svc, _, recorder := newTestService(t)

	signal, err := svc.CreateSignal(context.Background(), validCreateInput())
	if err != nil {
		t.Fatalf("CreateSignal: %v", err)
	}
	if signal.SignalID == "" {
		t.Fatalf("public id not assigned")
	}
	if signal.Status == nil || signal.Status.State != domain.StateGemeld {
		t.Fatalf("new signal must start in gemeld, got %+v", signal.Status)
	}
	if signal.Priority == nil || signal.Priority.Priority != domain.PriorityNormal {
		t.Fatalf("default priority must be normal, got %+v", signal.Priority)
	}
	if signal.Source != SourceOnline {
		t.Fatalf("source = %q, want %q", signal.Source, SourceOnline)
	}
	if got := recorder.byType(events.EventSignalCreated); len(got) != 1 {
		t.Fatalf("created events = %d, want 1", len(got))
	}
}

func TestCreateSignalValidation(t *testing.T) {
	svc, _, _ := newTestService(t)

	input := validCreateInput()
	input.Text = ""
	input.Location = nil

	_, err := svc.CreateSignal(context.Background(), input)
	var domainErr *apperrors.DomainError
	if !errors.As(err, &domainErr) {
		t.Fatalf("expected DomainError, got %v", err)
	}
	if domainErr.HTTPStatus != 400 {
		t.Fatalf("status = %d, want 400", domainErr.HTTPStatus)
	}
	for _, field := range []string{"text", "location"} {
		if len(domainErr.Fields[field]) == 0 {
			t.Fatalf("missing %q in %v", field, domainErr.Fields)
		}
	}
}

func TestCreateSignalResolvesLegacyCategoryNames(t *testing.T) {
	svc, _, _ := newTestService(t)

	bySlug, err := svc.CreateSignal(context.Background(), validCreateInput())
	if err != nil {
		t.Fatalf("CreateSignal by slug: %v", err)
	}

	input := validCreateInput()
	input.Category = CategoryRef{
		MainName: "Overlast in de openbare ruimte",
		SubName:  "Fietswrak",
	}
	byName, err := svc.CreateSignal(context.Background(), input)
	if err != nil {
		t.Fatalf("CreateSignal by legacy names: %v", err)
	}

	if bySlug.CategoryAssignment.CategoryID != byName.CategoryAssignment.CategoryID {
		t.Fatalf("slug and legacy name lookups must resolve to the same category")
	}
}

func TestCreateSignalResolvesCategoryTermURL(t *testing.T) {
	svc, _, _ := newTestService(t)

	input := validCreateInput()
	input.Category = CategoryRef{
		TermURL: "http://localhost/signals/v1/public/terms/categories/overlast-in-de-openbare-ruimte/sub_categories/fietswrak",
	}
	signal, err := svc.CreateSignal(context.Background(), input)
	if err != nil {
		t.Fatalf("CreateSignal by term URL: %v", err)
	}
	if signal.CategoryAssignment.CategoryID != 7 {
		t.Fatalf("category id = %d, want 7", signal.CategoryAssignment.CategoryID)
	}
}

func TestCreateSignalUnknownCategory(t *testing.T) {
	svc, _, _ := newTestService(t)

	input := validCreateInput()
	input.Category = CategoryRef{MainSlug: "nope", SubSlug: "missing"}
	_, err := svc.CreateSignal(context.Background(), input)

	var domainErr *apperrors.DomainError
	if !errors.As(err, &domainErr) || len(domainErr.Fields["category"]) == 0 {
		t.Fatalf("expected category field error, got %v", err)
	}
}

func TestUpdateStatusAllowedTransition(t *testing.T) {
	svc, repo, recorder := newTestService(t)
	signal, err := svc.CreateSignal(context.Background(), validCreateInput())
	if err != nil {
		t.Fatalf("CreateSignal: %v", err)
	}

	status, err := svc.UpdateStatus(context.Background(), StatusUpdateInput{
		SignalID: signal.ID,
		State:    domain.StateBehandeling,
		User:     "behandelaar@amsterdam.nl",
	})
	if err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}
	if status.State != domain.StateBehandeling {
		t.Fatalf("state = %q", status.State)
	}

	stored, _ := repo.GetByID(context.Background(), signal.ID)
	if stored.Status.State != domain.StateBehandeling {
		t.Fatalf("current status not moved, got %q", stored.Status.State)
	}
	if got := recorder.byType(events.EventSignalStatusChanged); len(got) != 1 {
		t.Fatalf("status events = %d, want 1", len(got))
	}
}

func TestUpdateStatusInvalidTransition(t *testing.T) {
	svc, repo, _ := newTestService(t)
	signal, err := svc.CreateSignal(context.Background(), validCreateInput())
	if err != nil {
		t.Fatalf("CreateSignal: %v", err)
	}

	_, err = svc.UpdateStatus(context.Background(), StatusUpdateInput{
		SignalID: signal.ID,
		State:    domain.StateHeropend,
	})
	var domainErr *apperrors.DomainError
	if !errors.As(err, &domainErr) || len(domainErr.Fields["state"]) == 0 {
		t.Fatalf("expected state field error, got %v", err)
	}
	if !strings.Contains(domainErr.Fields["state"][0], "Invalid state transition") {
		t.Fatalf("message = %q", domainErr.Fields["state"][0])
	}

	stored, _ := repo.GetByID(context.Background(), signal.ID)
	if stored.Status.State != domain.StateGemeld {
		t.Fatalf("rejected transition must not mutate state, got %q", stored.Status.State)
	}
}

func TestUpdateStatusRequiresTargetAPI(t *testing.T) {
	svc, _, _ := newTestService(t)
	signal, err := svc.CreateSignal(context.Background(), validCreateInput())
	if err != nil {
		t.Fatalf("CreateSignal: %v", err)
	}

	_, err = svc.UpdateStatus(context.Background(), StatusUpdateInput{
		SignalID: signal.ID,
		State:    domain.StateTeVerzenden,
	})
	var domainErr *apperrors.DomainError
	if !errors.As(err, &domainErr) || len(domainErr.Fields["target_api"]) == 0 {
		t.Fatalf("expected target_api field error, got %v", err)
	}

	// with a target the same transition passes
	status, err := svc.UpdateStatus(context.Background(), StatusUpdateInput{
		SignalID:  signal.ID,
		State:     domain.StateTeVerzenden,
		TargetAPI: "sigmax",
	})
	if err != nil {
		t.Fatalf("UpdateStatus with target_api: %v", err)
	}
	if status.TargetAPI != "sigmax" {
		t.Fatalf("target_api = %q", status.TargetAPI)
	}
}

func TestUpdateStatusReportsBothFieldsAtOnce(t *testing.T) {
	svc, _, _ := newTestService(t)
	signal, err := svc.CreateSignal(context.Background(), validCreateInput())
	if err != nil {
		t.Fatalf("CreateSignal: %v", err)
	}

	// close the signal so that a jump to verzonden is also disallowed
	if _, err := svc.UpdateStatus(context.Background(), StatusUpdateInput{
		SignalID: signal.ID,
		State:    domain.StateAfgehandeld,
	}); err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}

	_, err = svc.UpdateStatus(context.Background(), StatusUpdateInput{
		SignalID: signal.ID,
		State:    domain.StateVerzonden,
	})
	var domainErr *apperrors.DomainError
	if !errors.As(err, &domainErr) {
		t.Fatalf("expected DomainError, got %v", err)
	}
	if len(domainErr.Fields["state"]) == 0 || len(domainErr.Fields["target_api"]) == 0 {
		t.Fatalf("expected both state and target_api errors, got %v", domainErr.Fields)
	}
}

func TestAssignCategoryAppendsEvenWhenUnchanged(t *testing.T) {
	svc, repo, recorder := newTestService(t)
	signal, err := svc.CreateSignal(context.Background(), validCreateInput())
	if err != nil {
		t.Fatalf("CreateSignal: %v", err)
	}
	firstID := signal.CategoryAssignment.ID

	assignment, err := svc.AssignCategory(context.Background(), signal.ID, CategoryRef{
		MainSlug: "overlast-in-de-openbare-ruimte",
		SubSlug:  "fietswrak",
	}, "behandelaar@amsterdam.nl")
	if err != nil {
		t.Fatalf("AssignCategory: %v", err)
	}
	if assignment.ID == firstID {
		t.Fatalf("re-assignment must append a new history row")
	}

	stored, _ := repo.GetByID(context.Background(), signal.ID)
	if stored.CategoryAssignment.ID != assignment.ID {
		t.Fatalf("current assignment pointer not moved")
	}
	if got := recorder.byType(events.EventSignalCategoryChanged); len(got) != 1 {
		t.Fatalf("category events = %d, want 1", len(got))
	}
}

func TestUpdatePriority(t *testing.T) {
	svc, repo, _ := newTestService(t)
	signal, err := svc.CreateSignal(context.Background(), validCreateInput())
	if err != nil {
		t.Fatalf("CreateSignal: %v", err)
	}

	if _, err := svc.UpdatePriority(context.Background(), signal.ID, domain.PriorityLevel("urgent"), ""); err == nil {
		t.Fatalf("unknown priority level must be rejected")
	}

	priority, err := svc.UpdatePriority(context.Background(), signal.ID, domain.PriorityHigh, "behandelaar@amsterdam.nl")
	if err != nil {
		t.Fatalf("UpdatePriority: %v", err)
	}
	if priority.Priority != domain.PriorityHigh {
		t.Fatalf("priority = %q", priority.Priority)
	}

	stored, _ := repo.GetByID(context.Background(), signal.ID)
	if stored.Priority.Priority != domain.PriorityHigh {
		t.Fatalf("current priority not moved")
	}
}

func TestAttachImage(t *testing.T) {
	svc, _, _ := newTestService(t)
	signal, err := svc.CreateSignal(context.Background(), validCreateInput())
	if err != nil {
		t.Fatalf("CreateSignal: %v", err)
	}

	if err := svc.AttachImage(context.Background(), signal.SignalID, "uploads/1.jpg"); err != nil {
		t.Fatalf("AttachImage: %v", err)
	}

	err = svc.AttachImage(context.Background(), signal.SignalID, "uploads/2.jpg")
	var domainErr *apperrors.DomainError
	if !errors.As(err, &domainErr) || domainErr.HTTPStatus != 403 {
		t.Fatalf("second upload must be forbidden, got %v", err)
	}
}
