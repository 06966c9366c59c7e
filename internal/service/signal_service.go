package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/signals-service/internal/domain"
	"github.com/spec-kit/signals-service/internal/events"
	"github.com/spec-kit/signals-service/internal/repository"
	apperrors "github.com/spec-kit/signals-service/pkg/util"
)

const (
	// SourceOnline is the source recorded for signals filed through
	// the public API.
	SourceOnline = "online"

	msgFieldRequired = "This field is required."
	msgImageExists   = "Melding is reeds van een afbeelding voorzien."
)

// CategoryRef identifies a sub category, either by term URL or slug
// pair, or by the legacy main/sub name pair older clients still send.
type CategoryRef struct {
	TermURL  string
	MainSlug string
	SubSlug  string
	MainName string
	SubName  string
}

// LocationInput carries the location fields of a create request.
type LocationInput struct {
	Stadsdeel       domain.Stadsdeel
	Address         map[string]any
	AddressText     string
	BuurtCode       string
	Latitude        float64
	Longitude       float64
	ExtraProperties map[string]any
}

// ReporterInput carries the optional reporter contact details.
type ReporterInput struct {
	Email    string
	Phone    string
	RemoveAt *time.Time
}

// CreateSignalInput is everything a citizen submits when filing a
// signal.
type CreateSignalInput struct {
	Source            string
	Text              string
	TextExtra         string
	IncidentDateStart time.Time
	IncidentDateEnd   *time.Time
	OperationalDate   *time.Time
	ExtraProperties   map[string]any

	Category CategoryRef
	Location *LocationInput
	Reporter *ReporterInput
	Priority domain.PriorityLevel
}

// StatusUpdateInput describes a requested workflow transition.
type StatusUpdateInput struct {
	SignalID        int64
	State           domain.StatusState
	Text            string
	User            string
	TargetAPI       string
	ExtraProperties map[string]any
}

// SignalService implements the signal aggregate's use cases. All
// mutations append history rows; nothing is ever updated in place.
type SignalService struct {
	signals    repository.SignalRepository
	statuses   repository.StatusRepository
	categories repository.CategoryRepository
	priorities repository.PriorityRepository
	locations  repository.LocationRepository
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// NewSignalService wires the service.
func NewSignalService(
	signals repository.SignalRepository,
	statuses repository.StatusRepository,
	categories repository.CategoryRepository,
	priorities repository.PriorityRepository,
	locations repository.LocationRepository,
	dispatcher events.Dispatcher,
	logger *zap.Logger,
) *SignalService {
	return &SignalService{
		signals:    signals,
		statuses:   statuses,
		categories: categories,
		priorities: priorities,
		locations:  locations,
		dispatcher: dispatcher,
		logger:     logger,
	}
}

// CreateSignal files a new signal. The signal starts in the reported
// state with a normal priority unless the request raises it, and all
// child rows become visible atomically.
func (s *SignalService) CreateSignal(ctx context.Context, input CreateSignalInput) (*domain.Signal, error) {
	fields := map[string][]string{}
	if strings.TrimSpace(input.Text) == "" {
		fields["text"] = append(fields["text"], msgFieldRequired)
	}
	if input.IncidentDateStart.IsZero() {
		fields["incident_date_start"] = append(fields["incident_date_start"], msgFieldRequired)
	}
	if input.Location == nil {
		fields["location"] = append(fields["location"], msgFieldRequired)
	} else if input.Location.Stadsdeel != "" && !input.Location.Stadsdeel.IsValid() {
		fields["location"] = append(fields["location"],
			fmt.Sprintf("\"%s\" is not a valid stadsdeel.", input.Location.Stadsdeel))
	}

	priority := input.Priority
	if priority == "" {
		priority = domain.PriorityNormal
	}
	if !priority.IsValid() {
		fields["priority"] = append(fields["priority"],
			fmt.Sprintf("\"%s\" is not a valid choice.", priority))
	}

	category, err := s.resolveCategory(ctx, input.Category)
	if err != nil {
		var domainErr *apperrors.DomainError
		if errors.As(err, &domainErr) && domainErr.Fields != nil {
			for field, messages := range domainErr.Fields {
				fields[field] = append(fields[field], messages...)
			}
		} else {
			return nil, err
		}
	}
	if len(fields) > 0 {
		return nil, apperrors.NewValidationError(fields)
	}

	source := input.Source
	if source == "" {
		source = SourceOnline
	}

	signal := &domain.Signal{
		SignalID:          uuid.NewString(),
		Source:            source,
		Text:              input.Text,
		TextExtra:         input.TextExtra,
		IncidentDateStart: input.IncidentDateStart,
		IncidentDateEnd:   input.IncidentDateEnd,
		OperationalDate:   input.OperationalDate,
		ExtraProperties:   input.ExtraProperties,
		Status: &domain.Status{
			State: domain.StateGemeld,
		},
		CategoryAssignment: &domain.CategoryAssignment{
			CategoryID: category.ID,
			Category:   category,
		},
		Priority: &domain.Priority{
			Priority: priority,
		},
		Location: &domain.Location{
			Stadsdeel:       input.Location.Stadsdeel,
			Address:         input.Location.Address,
			AddressText:     input.Location.AddressText,
			BuurtCode:       input.Location.BuurtCode,
			Latitude:        input.Location.Latitude,
			Longitude:       input.Location.Longitude,
			ExtraProperties: input.Location.ExtraProperties,
		},
	}
	if input.Reporter != nil {
		signal.Reporter = &domain.Reporter{
			Email:    input.Reporter.Email,
			Phone:    input.Reporter.Phone,
			RemoveAt: input.Reporter.RemoveAt,
		}
	}

	if err := s.signals.Create(ctx, signal); err != nil {
		return nil, apperrors.MapError(err)
	}

	s.publish(ctx, events.EventSignalCreated, signal.ID, "", events.SignalCreatedPayload{
		PublicID:   signal.SignalID,
		State:      signal.Status.State,
		CategoryID: category.ID,
		Stadsdeel:  signal.Location.Stadsdeel,
		Priority:   priority,
	})
	return signal, nil
}

// GetByPublicID loads one signal by its public uuid.
func (s *SignalService) GetByPublicID(ctx context.Context, publicID string) (*domain.Signal, error) {
	signal, err := s.signals.GetByPublicID(ctx, publicID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return signal, nil
}

// GetByID loads one signal by its internal id.
func (s *SignalService) GetByID(ctx context.Context, id int64) (*domain.Signal, error) {
	signal, err := s.signals.GetByID(ctx, id)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return signal, nil
}

// List pages over signals, newest first.
func (s *SignalService) List(ctx context.Context, limit, offset int) ([]domain.Signal, int, error) {
	signals, count, err := s.signals.List(ctx, limit, offset)
	if err != nil {
		return nil, 0, apperrors.MapError(err)
	}
	return signals, count, nil
}

// AttachImage stores the uploaded image reference. A signal carries at
// most one image; a second upload is rejected.
func (s *SignalService) AttachImage(ctx context.Context, publicID, image string) error {
	if image == "" {
		return apperrors.NewFieldError("image", msgFieldRequired)
	}
	if err := s.signals.SetImage(ctx, publicID, image); err != nil {
		if errors.Is(err, repository.ErrImageExists) {
			return apperrors.NewForbidden(msgImageExists)
		}
		return apperrors.MapError(err)
	}
	return nil
}

// UpdateStatus appends a new status after validating the transition
// against the workflow table. The check runs inside the repository's
// signal lock, so two conflicting transitions cannot both pass.
func (s *SignalService) UpdateStatus(ctx context.Context, input StatusUpdateInput) (*domain.Status, error) {
	if !input.State.IsValid() {
		return nil, apperrors.NewFieldError("state",
			fmt.Sprintf("\"%s\" is not a valid choice.", input.State))
	}

	var oldState domain.StatusState
	status, err := s.signals.ApplyStatus(ctx, input.SignalID, func(current *domain.Status) (*domain.Status, error) {
		fields := map[string][]string{}
		if current != nil {
			oldState = current.State
			if !domain.CanTransition(current.State, input.State) {
				fields["state"] = append(fields["state"],
					fmt.Sprintf("Invalid state transition from `%s` to `%s`.",
						current.State.DisplayName(), input.State.DisplayName()))
			}
		}
		if domain.RequiresTargetAPI(input.State) && input.TargetAPI == "" {
			fields["target_api"] = append(fields["target_api"], msgFieldRequired)
		}
		if len(fields) > 0 {
			return nil, apperrors.NewValidationError(fields)
		}
		return &domain.Status{
			State:           input.State,
			Text:            input.Text,
			User:            input.User,
			TargetAPI:       input.TargetAPI,
			ExtraProperties: input.ExtraProperties,
		}, nil
	})
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	s.publish(ctx, events.EventSignalStatusChanged, input.SignalID, input.User, events.StatusChangedPayload{
		OldState:  oldState,
		NewState:  status.State,
		Text:      status.Text,
		TargetAPI: status.TargetAPI,
	})
	return status, nil
}

// AssignCategory appends a new category assignment. Re-assignment to
// the same category still appends; the history records every decision.
func (s *SignalService) AssignCategory(ctx context.Context, signalID int64, ref CategoryRef, createdBy string) (*domain.CategoryAssignment, error) {
	category, err := s.resolveCategory(ctx, ref)
	if err != nil {
		return nil, err
	}

	var oldCategoryID int64
	assignment, err := s.signals.ApplyCategoryAssignment(ctx, signalID, func(current *domain.CategoryAssignment) (*domain.CategoryAssignment, error) {
		if current != nil {
			oldCategoryID = current.CategoryID
		}
		return &domain.CategoryAssignment{
			CategoryID: category.ID,
			Category:   category,
			CreatedBy:  createdBy,
		}, nil
	})
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	assignment.Category = category

	s.publish(ctx, events.EventSignalCategoryChanged, signalID, createdBy, events.CategoryChangedPayload{
		OldCategoryID: oldCategoryID,
		NewCategoryID: category.ID,
	})
	return assignment, nil
}

// UpdatePriority appends a new priority entry.
func (s *SignalService) UpdatePriority(ctx context.Context, signalID int64, level domain.PriorityLevel, createdBy string) (*domain.Priority, error) {
	if !level.IsValid() {
		return nil, apperrors.NewFieldError("priority",
			fmt.Sprintf("\"%s\" is not a valid choice.", level))
	}

	var oldLevel domain.PriorityLevel
	priority, err := s.signals.ApplyPriority(ctx, signalID, func(current *domain.Priority) (*domain.Priority, error) {
		if current != nil {
			oldLevel = current.Priority
		}
		return &domain.Priority{
			Priority:  level,
			CreatedBy: createdBy,
		}, nil
	})
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	s.publish(ctx, events.EventSignalPriorityChanged, signalID, createdBy, events.PriorityChangedPayload{
		OldPriority: oldLevel,
		NewPriority: level,
	})
	return priority, nil
}

// UpdateLocation appends a new location entry.
func (s *SignalService) UpdateLocation(ctx context.Context, signalID int64, input LocationInput, createdBy string) (*domain.Location, error) {
	if input.Stadsdeel != "" && !input.Stadsdeel.IsValid() {
		return nil, apperrors.NewFieldError("stadsdeel",
			fmt.Sprintf("\"%s\" is not a valid choice.", input.Stadsdeel))
	}

	location, err := s.signals.ApplyLocation(ctx, signalID, func(current *domain.Location) (*domain.Location, error) {
		return &domain.Location{
			Stadsdeel:       input.Stadsdeel,
			Address:         input.Address,
			AddressText:     input.AddressText,
			BuurtCode:       input.BuurtCode,
			Latitude:        input.Latitude,
			Longitude:       input.Longitude,
			ExtraProperties: input.ExtraProperties,
		}, nil
	})
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	s.publish(ctx, events.EventSignalLocationChanged, signalID, createdBy, events.LocationChangedPayload{
		LocationID: location.ID,
		Stadsdeel:  location.Stadsdeel,
	})
	return location, nil
}

// ListStatuses pages over the global status history.
func (s *SignalService) ListStatuses(ctx context.Context, limit, offset int) ([]domain.Status, int, error) {
	statuses, count, err := s.statuses.List(ctx, limit, offset)
	if err != nil {
		return nil, 0, apperrors.MapError(err)
	}
	return statuses, count, nil
}

// ListCategoryAssignments pages over the global assignment history.
func (s *SignalService) ListCategoryAssignments(ctx context.Context, limit, offset int) ([]domain.CategoryAssignment, int, error) {
	assignments, count, err := s.categories.ListAssignments(ctx, limit, offset)
	if err != nil {
		return nil, 0, apperrors.MapError(err)
	}
	return assignments, count, nil
}

// ListPriorities pages over the global priority history.
func (s *SignalService) ListPriorities(ctx context.Context, limit, offset int) ([]domain.Priority, int, error) {
	priorities, count, err := s.priorities.List(ctx, limit, offset)
	if err != nil {
		return nil, 0, apperrors.MapError(err)
	}
	return priorities, count, nil
}

// ListLocations pages over the global location history.
func (s *SignalService) ListLocations(ctx context.Context, limit, offset int) ([]domain.Location, int, error) {
	locations, count, err := s.locations.List(ctx, limit, offset)
	if err != nil {
		return nil, 0, apperrors.MapError(err)
	}
	return locations, count, nil
}

// GetStatus loads one status history row.
func (s *SignalService) GetStatus(ctx context.Context, id int64) (*domain.Status, error) {
	status, err := s.statuses.GetByID(ctx, id)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return status, nil
}

// GetCategoryAssignment loads one assignment history row.
func (s *SignalService) GetCategoryAssignment(ctx context.Context, id int64) (*domain.CategoryAssignment, error) {
	assignment, err := s.categories.GetAssignmentByID(ctx, id)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return assignment, nil
}

// GetPriority loads one priority history row.
func (s *SignalService) GetPriority(ctx context.Context, id int64) (*domain.Priority, error) {
	priority, err := s.priorities.GetByID(ctx, id)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return priority, nil
}

// GetLocation loads one location history row.
func (s *SignalService) GetLocation(ctx context.Context, id int64) (*domain.Location, error) {
	location, err := s.locations.GetByID(ctx, id)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return location, nil
}

// SignalHistory bundles the append-only child rows of one signal,
// oldest first.
type SignalHistory struct {
	Statuses   []domain.Status
	Categories []domain.CategoryAssignment
	Priorities []domain.Priority
	Locations  []domain.Location
}

// History returns the full audit trail of one signal.
func (s *SignalService) History(ctx context.Context, signalID int64) (*SignalHistory, error) {
	if _, err := s.signals.GetByID(ctx, signalID); err != nil {
		return nil, apperrors.MapError(err)
	}

	history := &SignalHistory{}
	var err error
	if history.Statuses, err = s.statuses.ListBySignal(ctx, signalID); err != nil {
		return nil, apperrors.MapError(err)
	}
	if history.Categories, err = s.categories.ListAssignmentsBySignal(ctx, signalID); err != nil {
		return nil, apperrors.MapError(err)
	}
	if history.Priorities, err = s.priorities.ListBySignal(ctx, signalID); err != nil {
		return nil, apperrors.MapError(err)
	}
	if history.Locations, err = s.locations.ListBySignal(ctx, signalID); err != nil {
		return nil, apperrors.MapError(err)
	}
	return history, nil
}

// resolveCategory loads the sub category a request refers to. Term
// URLs and slug pairs are the current form; the main/sub name pair is
// kept for older clients.
func (s *SignalService) resolveCategory(ctx context.Context, ref CategoryRef) (*domain.Category, error) {
	mainSlug, subSlug := ref.MainSlug, ref.SubSlug
	if ref.TermURL != "" {
		parsedMain, parsedSub, ok := parseCategoryTermURL(ref.TermURL)
		if !ok {
			return nil, apperrors.NewFieldError("category", "Invalid category term URL.")
		}
		mainSlug, subSlug = parsedMain, parsedSub
	}

	switch {
	case mainSlug != "" && subSlug != "":
		category, err := s.categories.GetBySlugs(ctx, mainSlug, subSlug)
		if err != nil {
			return nil, categoryLookupError(err)
		}
		return category, nil
	case ref.MainName != "" && ref.SubName != "":
		category, err := s.categories.GetByNames(ctx, ref.MainName, ref.SubName)
		if err != nil {
			return nil, categoryLookupError(err)
		}
		return category, nil
	}
	return nil, apperrors.NewFieldError("category", msgFieldRequired)
}

func categoryLookupError(err error) error {
	var domainErr *apperrors.DomainError
	if errors.As(apperrors.ToDomainError(err), &domainErr) && domainErr.Code == "NOT_FOUND" {
		return apperrors.NewFieldError("category", "Category does not exist.")
	}
	return apperrors.MapError(err)
}

// parseCategoryTermURL extracts the slug pair from a public terms URL,
// e.g. .../terms/categories/overlast-op-het-water/sub_categories/jachten.
func parseCategoryTermURL(raw string) (string, string, bool) {
	parts := strings.Split(strings.Trim(raw, "/"), "/")
	for i := 0; i+3 < len(parts); i++ {
		if parts[i] == "categories" && parts[i+2] == "sub_categories" {
			if parts[i+1] == "" || parts[i+3] == "" {
				return "", "", false
			}
			return parts[i+1], parts[i+3], true
		}
	}
	return "", "", false
}

func (s *SignalService) publish(ctx context.Context, eventType events.EventType, signalID int64, actor string, payload any) {
	event := events.Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		SignalID:  signalID,
		Actor:     actor,
		Timestamp: time.Now().UTC(),
		Payload:   payload,
	}
	if err := s.dispatcher.Publish(ctx, event); err != nil {
		s.logger.Warn("event publish failed",
			zap.String("event_type", string(eventType)),
			zap.Int64("signal_id", signalID),
			zap.Error(err))
	}
}
