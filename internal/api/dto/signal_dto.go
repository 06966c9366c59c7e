package dto

import (
	"time"

	"github.com/spec-kit/signals-service/internal/domain"
	"github.com/spec-kit/signals-service/internal/service"
)

// CategoryPayload accepts either the sub_category term URL or the
// legacy main/sub name pair.
type CategoryPayload struct {
	SubCategory string `json:"sub_category,omitempty"`
	MainSlug    string `json:"main_slug,omitempty"`
	SubSlug     string `json:"sub_slug,omitempty"`
	Main        string `json:"main,omitempty"`
	Sub         string `json:"sub,omitempty"`
}

// LocationPayload carries the location fields of a request.
type LocationPayload struct {
	Stadsdeel       string         `json:"stadsdeel"`
	Address         map[string]any `json:"address,omitempty"`
	AddressText     string         `json:"address_text,omitempty"`
	BuurtCode       string         `json:"buurt_code,omitempty"`
	Latitude        float64        `json:"latitude,omitempty"`
	Longitude       float64        `json:"longitude,omitempty"`
	ExtraProperties map[string]any `json:"extra_properties,omitempty"`
}

// ReporterPayload carries reporter contact details.
type ReporterPayload struct {
	Email    string     `json:"email,omitempty"`
	Phone    string     `json:"phone,omitempty"`
	RemoveAt *time.Time `json:"remove_at,omitempty"`
}

// PriorityPayload carries the requested priority.
type PriorityPayload struct {
	Priority string `json:"priority"`
}

// StatusPayload carries a requested status transition.
type StatusPayload struct {
	Signal          int64          `json:"_signal,omitempty"`
	State           string         `json:"state"`
	Text            string         `json:"text,omitempty"`
	TargetAPI       string         `json:"target_api,omitempty"`
	ExtraProperties map[string]any `json:"extra_properties,omitempty"`
}

// CreateSignalRequest is the public create payload.
type CreateSignalRequest struct {
	Source            string           `json:"source,omitempty"`
	Text              string           `json:"text"`
	TextExtra         string           `json:"text_extra,omitempty"`
	IncidentDateStart time.Time        `json:"incident_date_start"`
	IncidentDateEnd   *time.Time       `json:"incident_date_end,omitempty"`
	OperationalDate   *time.Time       `json:"operational_date,omitempty"`
	ExtraProperties   map[string]any   `json:"extra_properties,omitempty"`
	Category          CategoryPayload  `json:"category"`
	Location          *LocationPayload `json:"location"`
	Reporter          *ReporterPayload `json:"reporter,omitempty"`
	Priority          *PriorityPayload `json:"priority,omitempty"`
}

// ToInput maps the request onto the service input.
func (r *CreateSignalRequest) ToInput() service.CreateSignalInput {
	input := service.CreateSignalInput{
		Source:            r.Source,
		Text:              r.Text,
		TextExtra:         r.TextExtra,
		IncidentDateStart: r.IncidentDateStart,
		IncidentDateEnd:   r.IncidentDateEnd,
		OperationalDate:   r.OperationalDate,
		ExtraProperties:   r.ExtraProperties,
		Category: service.CategoryRef{
			TermURL:  r.Category.SubCategory,
			MainSlug: r.Category.MainSlug,
			SubSlug:  r.Category.SubSlug,
			MainName: r.Category.Main,
			SubName:  r.Category.Sub,
		},
	}
	if r.Location != nil {
		input.Location = &service.LocationInput{
			Stadsdeel:       domain.Stadsdeel(r.Location.Stadsdeel),
			Address:         r.Location.Address,
			AddressText:     r.Location.AddressText,
			BuurtCode:       r.Location.BuurtCode,
			Latitude:        r.Location.Latitude,
			Longitude:       r.Location.Longitude,
			ExtraProperties: r.Location.ExtraProperties,
		}
	}
	if r.Reporter != nil {
		input.Reporter = &service.ReporterInput{
			Email:    r.Reporter.Email,
			Phone:    r.Reporter.Phone,
			RemoveAt: r.Reporter.RemoveAt,
		}
	}
	if r.Priority != nil {
		input.Priority = domain.PriorityLevel(r.Priority.Priority)
	}
	return input
}

// AttachImageRequest references the signal an uploaded image belongs
// to.
type AttachImageRequest struct {
	SignalID string `json:"signal_id"`
	Image    string `json:"image"`
}

// StatusResponse is one status history entry.
type StatusResponse struct {
	ID              int64          `json:"id"`
	Signal          int64          `json:"_signal"`
	State           string         `json:"state"`
	StateDisplay    string         `json:"state_display"`
	Text            string         `json:"text,omitempty"`
	User            string         `json:"user,omitempty"`
	TargetAPI       string         `json:"target_api,omitempty"`
	ExtraProperties map[string]any `json:"extra_properties,omitempty"`
	CreatedAt       time.Time      `json:"created_at"`
}

// NewStatusResponse maps a status.
func NewStatusResponse(status *domain.Status) *StatusResponse {
	if status == nil {
		return nil
	}
	return &StatusResponse{
		ID:              status.ID,
		Signal:          status.SignalID,
		State:           string(status.State),
		StateDisplay:    status.State.DisplayName(),
		Text:            status.Text,
		User:            status.User,
		TargetAPI:       status.TargetAPI,
		ExtraProperties: status.ExtraProperties,
		CreatedAt:       status.CreatedAt,
	}
}

// CategoryAssignmentResponse is one assignment history entry.
type CategoryAssignmentResponse struct {
	ID        int64     `json:"id"`
	Signal    int64     `json:"_signal"`
	Main      string    `json:"main"`
	Sub       string    `json:"sub"`
	SubSlug   string    `json:"sub_slug"`
	CreatedBy string    `json:"created_by,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// NewCategoryAssignmentResponse maps an assignment.
func NewCategoryAssignmentResponse(assignment *domain.CategoryAssignment) *CategoryAssignmentResponse {
	if assignment == nil {
		return nil
	}
	resp := &CategoryAssignmentResponse{
		ID:        assignment.ID,
		Signal:    assignment.SignalID,
		CreatedBy: assignment.CreatedBy,
		CreatedAt: assignment.CreatedAt,
	}
	if assignment.Category != nil {
		resp.Sub = assignment.Category.Name
		resp.SubSlug = assignment.Category.Slug
		if assignment.Category.Parent != nil {
			resp.Main = assignment.Category.Parent.Name
		}
	}
	return resp
}

// PriorityResponse is one priority history entry.
type PriorityResponse struct {
	ID        int64     `json:"id"`
	Signal    int64     `json:"_signal"`
	Priority  string    `json:"priority"`
	CreatedBy string    `json:"created_by,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// NewPriorityResponse maps a priority.
func NewPriorityResponse(priority *domain.Priority) *PriorityResponse {
	if priority == nil {
		return nil
	}
	return &PriorityResponse{
		ID:        priority.ID,
		Signal:    priority.SignalID,
		Priority:  string(priority.Priority),
		CreatedBy: priority.CreatedBy,
		CreatedAt: priority.CreatedAt,
	}
}

// LocationResponse is one location history entry.
type LocationResponse struct {
	ID               int64          `json:"id"`
	Signal           int64          `json:"_signal"`
	Stadsdeel        string         `json:"stadsdeel,omitempty"`
	StadsdeelDisplay string         `json:"stadsdeel_display,omitempty"`
	Address          map[string]any `json:"address,omitempty"`
	AddressText      string         `json:"address_text,omitempty"`
	BuurtCode        string         `json:"buurt_code,omitempty"`
	Latitude         float64        `json:"latitude,omitempty"`
	Longitude        float64        `json:"longitude,omitempty"`
	ExtraProperties  map[string]any `json:"extra_properties,omitempty"`
	CreatedAt        time.Time      `json:"created_at"`
}

// NewLocationResponse maps a location.
func NewLocationResponse(location *domain.Location) *LocationResponse {
	if location == nil {
		return nil
	}
	return &LocationResponse{
		ID:               location.ID,
		Signal:           location.SignalID,
		Stadsdeel:        string(location.Stadsdeel),
		StadsdeelDisplay: location.Stadsdeel.DisplayName(),
		Address:          location.Address,
		AddressText:      location.AddressText,
		BuurtCode:        location.BuurtCode,
		Latitude:         location.Latitude,
		Longitude:        location.Longitude,
		ExtraProperties:  location.ExtraProperties,
		CreatedAt:        location.CreatedAt,
	}
}

// ReporterResponse is the reporter of a signal.
type ReporterResponse struct {
	Email     string     `json:"email,omitempty"`
	Phone     string     `json:"phone,omitempty"`
	RemoveAt  *time.Time `json:"remove_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

// NewReporterResponse maps a reporter.
func NewReporterResponse(reporter *domain.Reporter) *ReporterResponse {
	if reporter == nil {
		return nil
	}
	return &ReporterResponse{
		Email:     reporter.Email,
		Phone:     reporter.Phone,
		RemoveAt:  reporter.RemoveAt,
		CreatedAt: reporter.CreatedAt,
	}
}

// SignalResponse is the full authenticated view of a signal.
type SignalResponse struct {
	ID                int64                       `json:"id"`
	SignalID          string                      `json:"signal_id"`
	Source            string                      `json:"source"`
	Text              string                      `json:"text"`
	TextExtra         string                      `json:"text_extra,omitempty"`
	Image             string                      `json:"image,omitempty"`
	IncidentDateStart time.Time                   `json:"incident_date_start"`
	IncidentDateEnd   *time.Time                  `json:"incident_date_end,omitempty"`
	OperationalDate   *time.Time                  `json:"operational_date,omitempty"`
	ExtraProperties   map[string]any              `json:"extra_properties,omitempty"`
	Status            *StatusResponse             `json:"status"`
	Category          *CategoryAssignmentResponse `json:"category"`
	Priority          *PriorityResponse           `json:"priority"`
	Location          *LocationResponse           `json:"location"`
	Reporter          *ReporterResponse           `json:"reporter"`
	CreatedAt         time.Time                   `json:"created_at"`
	UpdatedAt         time.Time                   `json:"updated_at"`
}

// NewSignalResponse maps a signal aggregate.
func NewSignalResponse(signal *domain.Signal) *SignalResponse {
	return &SignalResponse{
		ID:                signal.ID,
		SignalID:          signal.SignalID,
		Source:            signal.Source,
		Text:              signal.Text,
		TextExtra:         signal.TextExtra,
		Image:             signal.Image,
		IncidentDateStart: signal.IncidentDateStart,
		IncidentDateEnd:   signal.IncidentDateEnd,
		OperationalDate:   signal.OperationalDate,
		ExtraProperties:   signal.ExtraProperties,
		Status:            NewStatusResponse(signal.Status),
		Category:          NewCategoryAssignmentResponse(signal.CategoryAssignment),
		Priority:          NewPriorityResponse(signal.Priority),
		Location:          NewLocationResponse(signal.Location),
		Reporter:          NewReporterResponse(signal.Reporter),
		CreatedAt:         signal.CreatedAt,
		UpdatedAt:         signal.UpdatedAt,
	}
}

// PublicStatusResponse is the workflow state as shown to citizens.
type PublicStatusResponse struct {
	ID           int64  `json:"id"`
	State        string `json:"state"`
	StateDisplay string `json:"state_display"`
}

// PublicSignalResponse is the citizen-facing view: the workflow state
// is exposed, every other field stays null.
type PublicSignalResponse struct {
	SignalID        string                `json:"signal_id"`
	Status          *PublicStatusResponse `json:"status"`
	Text            *string               `json:"text"`
	Location        *string               `json:"location"`
	Category        *string               `json:"category"`
	Reporter        *string               `json:"reporter"`
	IncidentDateEnd *time.Time            `json:"incident_date_end"`
	OperationalDate *time.Time            `json:"operational_date"`
	CreatedAt       time.Time             `json:"created_at"`
	UpdatedAt       time.Time             `json:"updated_at"`
}

// NewPublicSignalResponse maps a signal for citizens.
func NewPublicSignalResponse(signal *domain.Signal) *PublicSignalResponse {
	resp := &PublicSignalResponse{
		SignalID:  signal.SignalID,
		CreatedAt: signal.CreatedAt,
		UpdatedAt: signal.UpdatedAt,
	}
	if signal.Status != nil {
		resp.Status = &PublicStatusResponse{
			ID:           signal.Status.ID,
			State:        string(signal.Status.State),
			StateDisplay: signal.Status.State.DisplayName(),
		}
	}
	return resp
}

// ListResponse is the paging envelope shared by the list endpoints.
type ListResponse struct {
	Count   int `json:"count"`
	Results any `json:"results"`
}
