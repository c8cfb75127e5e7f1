// Package booking orchestrates slot booking, cancellation, rescheduling
// and weekly template saves on top of the pure resolution engine.
package booking

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"rosterd/internal/availability"
	"rosterd/internal/cache"
	"rosterd/internal/conflict"
	"rosterd/internal/events"
	"rosterd/internal/metrics"
	"rosterd/internal/model"
	"rosterd/internal/schedule"
	"rosterd/internal/timegrid"
)

// Store is the storage collaborator for the booking service. Implemented
// by *db.DB; mocked in tests.
type Store interface {
	GetWeeklyTemplate(ctx context.Context, staffID string, weekStart time.Time) (*model.WeeklyTemplate, error)
	GetDailyOverride(ctx context.Context, staffID string, date time.Time) (*model.DailyOverride, error)
	SaveWeeklyTemplates(ctx context.Context, templates []*model.WeeklyTemplate) error
	SaveDailyOverride(ctx context.Context, o *model.DailyOverride) error

	GetActiveEventsOn(ctx context.Context, staffID string, date time.Time) ([]model.ScheduleEvent, error)
	GetEvent(ctx context.Context, eventID string) (*model.ScheduleEvent, error)
	SaveEvents(ctx context.Context, evs []*model.ScheduleEvent) error
	UpdateEventStatus(ctx context.Context, eventID string, status model.EventStatus) error
	UpdateEventTimes(ctx context.Context, eventID string, start, end time.Time) error
	CancelMaterializedEvents(ctx context.Context, staffID string, from, to time.Time) (int64, error)

	GetStaff(ctx context.Context, staffID string) (*model.Staff, error)
	GetStaffContractWindow(ctx context.Context, staffID string) (model.ContractWindow, error)

	AppendAudit(ctx context.Context, actorID, action, entity, entityID, details string) error
}

// PolicyError reports a blocked booking attempt.
type PolicyError struct {
	Reason availability.Reason
}

func (e *PolicyError) Error() string {
	return fmt.Sprintf("booking blocked: %s", e.Reason)
}

// ConfirmRequiredError reports a soft restriction the actor may book
// through after explicit confirmation.
type ConfirmRequiredError struct {
	Reason availability.Reason
}

func (e *ConfirmRequiredError) Error() string {
	return fmt.Sprintf("confirmation required: %s", e.Reason)
}

// ConflictError carries every violation found while editing a reservation.
type ConflictError struct {
	Conflicts []conflict.Conflict
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%d schedule conflicts", len(e.Conflicts))
}

// Options tune the service behavior.
type Options struct {
	SlotMinutes       int
	BlockPastBookings bool

	// Now is overridable for tests; defaults to time.Now.
	Now func() time.Time
}

// Service is the write-side facade over the schedule core.
type Service struct {
	store    Store
	resolver *schedule.Resolver
	cache    *cache.DayCache
	bus      *events.Bus
	logger   zerolog.Logger
	opts     Options
}

// NewService wires the booking service. cache and bus may be nil.
func NewService(store Store, resolver *schedule.Resolver, dayCache *cache.DayCache, bus *events.Bus, logger zerolog.Logger, opts Options) *Service {
	if opts.SlotMinutes <= 0 {
		opts.SlotMinutes = timegrid.DefaultStepMinutes
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Service{
		store:    store,
		resolver: resolver,
		cache:    dayCache,
		bus:      bus,
		logger:   logger.With().Str("component", "booking").Logger(),
		opts:     opts,
	}
}

func (s *Service) availabilityInput(ctx context.Context, staffID string, date time.Time) (availability.Input, error) {
	day, err := s.resolver.Resolve(ctx, staffID, date)
	if err != nil {
		return availability.Input{}, err
	}
	contract, err := s.store.GetStaffContractWindow(ctx, staffID)
	if err != nil {
		return availability.Input{}, fmt.Errorf("get contract window: %w", err)
	}
	evs, err := s.store.GetActiveEventsOn(ctx, staffID, date)
	if err != nil {
		return availability.Input{}, fmt.Errorf("get active events: %w", err)
	}
	in := availability.Input{
		StaffID:  staffID,
		Day:      day,
		Contract: contract,
		Events:   evs,
	}
	if s.opts.BlockPastBookings {
		in.Now = s.opts.Now()
	}
	return in, nil
}

// DaySlots returns the per-slot availability grid the calendar renders
// for one staff member and date.
func (s *Service) DaySlots(ctx context.Context, staffID string, date time.Time, actor model.Actor) ([]availability.SlotState, error) {
	in, err := s.availabilityInput(ctx, staffID, date)
	if err != nil {
		return nil, err
	}
	return availability.DayGrid(in, date, s.opts.SlotMinutes, actor)
}

// BookRequest describes a booking attempt.
type BookRequest struct {
	StaffID   string
	Date      time.Time
	SlotStart timegrid.Minutes
	SlotEnd   timegrid.Minutes
	Type      model.EventType
	Actor     model.Actor

	// Confirmed acknowledges a soft restriction the actor was shown.
	Confirmed bool
}

// BookSlot checks the slot and creates the reservation event. A soft
// restriction without Confirmed yields ConfirmRequiredError; a hard block
// yields PolicyError.
func (s *Service) BookSlot(ctx context.Context, req BookRequest) (*model.ScheduleEvent, error) {
	in, err := s.availabilityInput(ctx, req.StaffID, req.Date)
	if err != nil {
		return nil, err
	}
	verdict, err := availability.IsSlotBookable(in, req.Date, req.SlotStart, req.SlotEnd, req.Actor)
	if err != nil {
		return nil, err
	}
	if !verdict.Bookable {
		return nil, &PolicyError{Reason: verdict.Reason}
	}
	if verdict.Reason != availability.ReasonNone && !req.Confirmed {
		return nil, &ConfirmRequiredError{Reason: verdict.Reason}
	}

	evType := req.Type
	if evType == "" {
		evType = model.EventClass
	}
	ev := &model.ScheduleEvent{
		ID:         uuid.NewString(),
		StaffID:    req.StaffID,
		StartTime:  model.SlotTime(req.Date, req.SlotStart),
		EndTime:    model.SlotTime(req.Date, req.SlotEnd),
		Type:       evType,
		SourceType: model.SourceBooking,
		Status:     model.StatusActive,
	}
	if err := s.store.SaveEvents(ctx, []*model.ScheduleEvent{ev}); err != nil {
		return nil, fmt.Errorf("save event: %w", err)
	}

	s.audit(ctx, req.Actor.ID, "book", "schedule_event", ev.ID,
		fmt.Sprintf("%s %s-%s", req.Date.Format("2006-01-02"), req.SlotStart, req.SlotEnd))
	s.bus.Publish(events.Event{Topic: events.TopicBookingCreated, StaffID: ev.StaffID, EntityID: ev.ID})

	s.logger.Info().
		Str("staff_id", ev.StaffID).
		Str("event_id", ev.ID).
		Str("slot", req.SlotStart.String()+"-"+req.SlotEnd.String()).
		Msg("slot booked")
	return ev, nil
}

// Cancel flips an active event to cancelled. The transition is terminal;
// the row stays as history.
func (s *Service) Cancel(ctx context.Context, eventID string, actor model.Actor) error {
	ev, err := s.store.GetEvent(ctx, eventID)
	if err != nil {
		return err
	}
	if !ev.IsActive() {
		return fmt.Errorf("event %s is already cancelled", eventID)
	}
	if err := s.store.UpdateEventStatus(ctx, eventID, model.StatusCancelled); err != nil {
		return err
	}

	s.audit(ctx, actor.ID, "cancel", "schedule_event", eventID, "")
	s.bus.Publish(events.Event{Topic: events.TopicBookingCancelled, StaffID: ev.StaffID, EntityID: eventID})
	return nil
}

// Reschedule moves an existing reservation, reporting every conflict of
// the new window at once.
func (s *Service) Reschedule(ctx context.Context, eventID string, newStart, newEnd time.Time, actor model.Actor) error {
	ev, err := s.store.GetEvent(ctx, eventID)
	if err != nil {
		return err
	}
	if !ev.IsActive() {
		return fmt.Errorf("event %s is cancelled", eventID)
	}

	day, err := s.resolver.Resolve(ctx, ev.StaffID, newStart)
	if err != nil {
		return err
	}
	contract, err := s.store.GetStaffContractWindow(ctx, ev.StaffID)
	if err != nil {
		return fmt.Errorf("get contract window: %w", err)
	}
	existing, err := s.store.GetActiveEventsOn(ctx, ev.StaffID, newStart)
	if err != nil {
		return fmt.Errorf("get active events: %w", err)
	}

	conflicts, err := conflict.FindConflicts(conflict.Candidate{
		ID:      eventID,
		StaffID: ev.StaffID,
		Start:   newStart,
		End:     newEnd,
	}, day, contract, existing)
	if err != nil {
		return err
	}
	if len(conflicts) > 0 {
		return &ConflictError{Conflicts: conflicts}
	}

	if err := s.store.UpdateEventTimes(ctx, eventID, newStart, newEnd); err != nil {
		return err
	}
	s.audit(ctx, actor.ID, "reschedule", "schedule_event", eventID,
		fmt.Sprintf("%s -> %s", ev.StartTime.Format(time.RFC3339), newStart.Format(time.RFC3339)))
	s.bus.Publish(events.Event{Topic: events.TopicBookingMoved, StaffID: ev.StaffID, EntityID: eventID})
	return nil
}

// SaveWeekTemplates persists edited weekly templates and re-materializes
// their holiday/break blocks as schedule events. The store applies its
// updated_at guard; a stale editor surfaces db.ErrConcurrentModification
// unchanged.
func (s *Service) SaveWeekTemplates(ctx context.Context, templates []*model.WeeklyTemplate, actor model.Actor) error {
	for _, tpl := range templates {
		if err := tpl.Validate(); err != nil {
			metrics.IncTemplateSave("invalid")
			return err
		}
	}

	if err := s.store.SaveWeeklyTemplates(ctx, templates); err != nil {
		metrics.IncTemplateSave("error")
		return err
	}
	metrics.IncTemplateSave("ok")

	for _, tpl := range templates {
		if err := s.materialize(ctx, tpl); err != nil {
			return err
		}

		dates := schedule.WeekDates(tpl.WeekStart)
		if s.cache != nil {
			s.cache.InvalidateDates(ctx, tpl.StaffID, dates)
		}
		s.audit(ctx, actor.ID, "save_template", "weekly_template",
			tpl.StaffID+"/"+tpl.WeekStart.Format("2006-01-02"), "")
		s.bus.Publish(events.Event{Topic: events.TopicTemplateSaved, StaffID: tpl.StaffID})
	}
	return nil
}

// materialize lays down holiday and break blocks for the template's week,
// replacing previously materialized ones.
func (s *Service) materialize(ctx context.Context, tpl *model.WeeklyTemplate) error {
	sat, fri := schedule.WeekRange(tpl.WeekStart)
	weekEnd := fri.AddDate(0, 0, 1)

	if _, err := s.store.CancelMaterializedEvents(ctx, tpl.StaffID, sat, weekEnd); err != nil {
		return err
	}

	var blocks []*model.ScheduleEvent
	for _, weekday := range model.WeekdayOrder {
		day, ok := tpl.Days[weekday]
		if !ok {
			continue
		}
		date := schedule.DateOfWeekday(tpl.WeekStart, weekday)

		if day.IsHoliday {
			blocks = append(blocks, &model.ScheduleEvent{
				ID:         uuid.NewString(),
				StaffID:    tpl.StaffID,
				StartTime:  date,
				EndTime:    date.AddDate(0, 0, 1),
				Type:       model.EventHoliday,
				SourceType: model.SourceWeeklyHoliday,
				Status:     model.StatusActive,
			})
			continue
		}
		for _, b := range day.BreakTimes {
			blocks = append(blocks, &model.ScheduleEvent{
				ID:         uuid.NewString(),
				StaffID:    tpl.StaffID,
				StartTime:  model.SlotTime(date, b.Start),
				EndTime:    model.SlotTime(date, b.End),
				Type:       model.EventBreak,
				SourceType: model.SourceWeeklyHoliday,
				Status:     model.StatusActive,
			})
		}
	}

	if len(blocks) == 0 {
		return nil
	}
	if err := s.store.SaveEvents(ctx, blocks); err != nil {
		return fmt.Errorf("materialize template blocks: %w", err)
	}
	metrics.IncEventsMaterialized(len(blocks))
	return nil
}

// SaveOverride writes a legacy single-day exception and refreshes caches.
func (s *Service) SaveOverride(ctx context.Context, o *model.DailyOverride, actor model.Actor) error {
	if err := s.store.SaveDailyOverride(ctx, o); err != nil {
		return err
	}
	s.invalidateDay(ctx, o.StaffID, o.Date)
	s.audit(ctx, actor.ID, "save_override", "daily_override",
		o.StaffID+"/"+o.Date.Format("2006-01-02"), "")
	s.bus.Publish(events.Event{Topic: events.TopicOverrideSaved, StaffID: o.StaffID})
	return nil
}

func (s *Service) invalidateDay(ctx context.Context, staffID string, date time.Time) {
	if s.cache != nil {
		s.cache.InvalidateDay(ctx, staffID, date)
	}
}

func (s *Service) audit(ctx context.Context, actorID, action, entity, entityID, details string) {
	if err := s.store.AppendAudit(ctx, actorID, action, entity, entityID, details); err != nil {
		s.logger.Error().Err(err).Str("action", action).Msg("audit append failed")
	}
}
