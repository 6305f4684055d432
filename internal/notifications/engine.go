package notifications

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"transport_broker_backend/internal/email"
	ievents "transport_broker_backend/internal/events"
	"transport_broker_backend/internal/orders/domain"
	"transport_broker_backend/internal/orders/reconcile"
	"transport_broker_backend/internal/portals"
	"transport_broker_backend/platform/config"
	"transport_broker_backend/platform/logger"

	"golang.org/x/sync/errgroup"
)

// OrderStore is the order persistence surface the engine needs.
type OrderStore interface {
	ListAwaitingPickupConfirmation(ctx context.Context) ([]*domain.Order, error)
	ListAwaitingDeliveryConfirmation(ctx context.Context) ([]*domain.Order, error)
	ListSurveyCandidates(ctx context.Context) ([]*domain.Order, error)
	Update(ctx context.Context, order *domain.Order) error
}

// PortalReader resolves the owning portal for recipient resolution.
type PortalReader interface {
	GetByID(ctx context.Context, id string) (*portals.Portal, error)
}

// SweepOptions adjusts one confirmation run. PreserveFlags skips the status
// gates and leaves the awaiting flags set; used for catch-up and override
// runs.
type SweepOptions struct {
	PreserveFlags bool
}

// Engine runs the two notification sweeps. Stateless between runs; all state
// lives on the order. Each candidate is processed in isolation so one failure
// never aborts a sweep.
type Engine struct {
	orders  OrderStore
	portals PortalReader
	sender  email.Sender
	bus     ievents.Bus
	log     *logger.Logger

	recipientCfg    RecipientConfig
	surveyMinAge    time.Duration
	surveyMaxAge    time.Duration
	preSurveyMaxAge time.Duration
	surveyBaseURL   string
	referenceLoc    *time.Location

	now func() time.Time
}

// NewEngine creates the notification eligibility engine.
func NewEngine(orders OrderStore, portalReader PortalReader, sender email.Sender, bus ievents.Bus, cfg config.NotificationConfig, recCfg config.ReconcileConfig, log *logger.Logger) *Engine {
	mmi := make(map[string]bool, len(cfg.GetMMIPortalIDs()))
	for _, id := range cfg.GetMMIPortalIDs() {
		mmi[id] = true
	}

	loc, err := time.LoadLocation(recCfg.GetReferenceTimezone())
	if err != nil {
		loc = time.UTC
	}

	return &Engine{
		orders:  orders,
		portals: portalReader,
		sender:  sender,
		bus:     bus,
		log:     log,
		recipientCfg: RecipientConfig{
			MMIPortalIDs:  mmi,
			MMIOpsMailbox: cfg.GetMMIOpsMailbox(),
			SIRVAPortalID: cfg.GetSIRVAPortalID(),
		},
		surveyMinAge:    cfg.GetSurveyMinAge(),
		surveyMaxAge:    cfg.GetSurveyMaxAge(),
		preSurveyMaxAge: cfg.GetPreSurveyMaxAge(),
		surveyBaseURL:   cfg.GetSurveyBaseURL(),
		referenceLoc:    loc,
		now:             time.Now,
	}
}

// RunConfirmationSweep processes all pickup and delivery confirmation
// candidates once.
func (e *Engine) RunConfirmationSweep(ctx context.Context, opts SweepOptions) error {
	pickups, err := e.orders.ListAwaitingPickupConfirmation(ctx)
	if err != nil {
		return fmt.Errorf("list pickup candidates: %w", err)
	}
	for _, order := range pickups {
		if err := e.processPickupCandidate(ctx, order, opts); err != nil {
			e.log.Error("pickup confirmation failed", "order_id", order.ID, "error", err)
		}
	}

	deliveries, err := e.orders.ListAwaitingDeliveryConfirmation(ctx)
	if err != nil {
		return fmt.Errorf("list delivery candidates: %w", err)
	}
	for _, order := range deliveries {
		if err := e.processDeliveryCandidate(ctx, order, opts); err != nil {
			e.log.Error("delivery confirmation failed", "order_id", order.ID, "error", err)
		}
	}

	return nil
}

func (e *Engine) processPickupCandidate(ctx context.Context, order *domain.Order, opts SweepOptions) error {
	if !order.Notifications.AwaitingPickupConfirmation {
		return nil
	}

	// An invoiced order is past the point where a pickup confirmation makes
	// sense; retire the flag without sending.
	if order.Status == domain.StatusInvoiced {
		if !opts.PreserveFlags {
			order.Notifications.AwaitingPickupConfirmation = false
			return e.orders.Update(ctx, order)
		}
		return nil
	}
	if !opts.PreserveFlags && order.Status != domain.StatusPickedUp {
		return nil
	}

	return e.dispatchConfirmation(ctx, order, ChannelPickup, opts)
}

func (e *Engine) processDeliveryCandidate(ctx context.Context, order *domain.Order, opts SweepOptions) error {
	if !order.Notifications.AwaitingDeliveryConfirmation {
		return nil
	}
	if !opts.PreserveFlags && order.Status != domain.StatusDelivered && order.Status != domain.StatusInvoiced {
		return nil
	}

	return e.dispatchConfirmation(ctx, order, ChannelDelivery, opts)
}

func (e *Engine) dispatchConfirmation(ctx context.Context, order *domain.Order, channel ConfirmationChannel, opts SweepOptions) error {
	portal, err := e.portals.GetByID(ctx, order.PortalID)
	if err != nil {
		return fmt.Errorf("resolve portal %s: %w", order.PortalID, err)
	}

	recipients := ResolveConfirmationRecipients(order, portal, channel, e.recipientCfg)
	if len(recipients) == 0 {
		e.log.Debug("no confirmation recipients", "order_id", order.ID, "channel", string(channel))
		return nil
	}

	data := e.confirmationData(order, channel)
	send := e.sender.SendPickupConfirmation
	if channel == ChannelDelivery {
		send = e.sender.SendDeliveryConfirmation
	}

	sent, failed := e.fanOut(ctx, recipients, func(ctx context.Context, to string) error {
		return send(ctx, to, data)
	})

	e.log.NotificationEvent(order.ID, string(channel)+"_confirmation", sent, failed)
	e.bus.Publish(ctx, ievents.NewNotificationDispatched(order.ID, string(channel)+"_confirmation", recipients, sent, failed))

	// A batch counts as delivered when at least one recipient got it.
	if sent == 0 {
		return fmt.Errorf("all %d recipients failed", failed)
	}

	if !opts.PreserveFlags {
		switch channel {
		case ChannelPickup:
			order.Notifications.AwaitingPickupConfirmation = false
		case ChannelDelivery:
			order.Notifications.AwaitingDeliveryConfirmation = false
		}
		return e.orders.Update(ctx, order)
	}
	return nil
}

// fanOut sends to every recipient independently; one failure neither blocks
// nor fails the others.
func (e *Engine) fanOut(ctx context.Context, recipients []string, send func(ctx context.Context, to string) error) (sent, failed int) {
	var (
		mu sync.Mutex
		g  errgroup.Group
	)
	for _, to := range recipients {
		to := to
		g.Go(func() error {
			if err := send(ctx, to); err != nil {
				e.log.Warn("notification send failed", "to", to, "error", err)
				mu.Lock()
				failed++
				mu.Unlock()
				return nil
			}
			mu.Lock()
			sent++
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()
	return sent, failed
}

func (e *Engine) confirmationData(order *domain.Order, channel ConfirmationChannel) email.ConfirmationData {
	data := email.ConfirmationData{
		OrderRef:       order.RefID,
		CustomerName:   order.Customer.ContactName,
		VehicleSummary: vehicleSummary(order.Vehicles),
	}
	if channel == ChannelPickup {
		data.City = order.Origin.Address.City
		if order.Schedule.PickupCompleted != nil {
			data.When = reconcile.FormatReference(*order.Schedule.PickupCompleted, e.referenceLoc)
		}
	} else {
		data.City = order.Destination.Address.City
		if order.Schedule.DeliveryCompleted != nil {
			data.When = reconcile.FormatReference(*order.Schedule.DeliveryCompleted, e.referenceLoc)
		}
	}
	return data
}

func vehicleSummary(vehicles []domain.Vehicle) string {
	parts := make([]string, 0, len(vehicles))
	for _, v := range vehicles {
		name := strings.TrimSpace(v.Make + " " + v.Model)
		if v.Year != nil {
			name = fmt.Sprintf("%d %s", *v.Year, name)
		}
		if name != "" {
			parts = append(parts, name)
		}
	}
	return strings.Join(parts, ", ")
}

// RunSurveySweep processes all survey candidates once against the current
// clock.
func (e *Engine) RunSurveySweep(ctx context.Context) error {
	candidates, err := e.orders.ListSurveyCandidates(ctx)
	if err != nil {
		return fmt.Errorf("list survey candidates: %w", err)
	}
	for _, order := range candidates {
		if err := e.processSurveyCandidate(ctx, order); err != nil {
			e.log.Error("survey dispatch failed", "order_id", order.ID, "error", err)
		}
	}
	return nil
}

func (e *Engine) processSurveyCandidate(ctx context.Context, order *domain.Order) error {
	if order.Status != domain.StatusDelivered && order.Status != domain.StatusInvoiced {
		return nil
	}
	if order.TMS.ExternalID == "" || order.Customer.Email == "" {
		return nil
	}
	if order.TMS.UpdatedAt == nil {
		return nil
	}

	age := e.now().Sub(*order.TMS.UpdatedAt)
	changed := false

	if age >= e.surveyMinAge && age <= e.surveyMaxAge && channelUnsent(order.Notifications.Survey) {
		order.Notifications.Survey = e.sendSurvey(ctx, order, false)
		changed = true
	}

	// The MMI pre-survey is additive with the standard survey, on its own
	// day-of-delivery window.
	if e.recipientCfg.IsMMI(order.PortalID) &&
		age >= 0 && age <= e.preSurveyMaxAge &&
		channelUnsent(order.Notifications.SurveyReminder) {
		order.Notifications.SurveyReminder = e.sendSurvey(ctx, order, true)
		changed = true
	}

	if changed {
		return e.orders.Update(ctx, order)
	}
	return nil
}

// channelUnsent checks both the timestamp and the status. Either one alone
// could lag the other after a partial write, so both must say unsent.
func channelUnsent(c domain.Channel) bool {
	return c.SentAt == nil && c.Status != domain.ChannelSent
}

func (e *Engine) sendSurvey(ctx context.Context, order *domain.Order, preSurvey bool) domain.Channel {
	data := email.SurveyData{
		OrderRef:     order.RefID,
		CustomerName: order.Customer.ContactName,
		SurveyURL:    e.surveyURL(order),
	}

	kind := "survey"
	send := e.sender.SendSurvey
	if preSurvey {
		kind = "pre_survey"
		send = e.sender.SendPreSurvey
	}

	now := e.now().UTC()
	if err := send(ctx, order.Customer.Email, data); err != nil {
		e.log.Warn("survey send failed", "order_id", order.ID, "kind", kind, "error", err)
		e.log.NotificationEvent(order.ID, kind, 0, 1)
		// FailedAt is recorded but SentAt stays unset, so the next sweep
		// inside the window retries.
		return domain.Channel{Status: domain.ChannelFailed, FailedAt: &now}
	}

	e.log.NotificationEvent(order.ID, kind, 1, 0)
	e.bus.Publish(ctx, ievents.NewNotificationDispatched(order.ID, kind, []string{order.Customer.Email}, 1, 0))
	return domain.Channel{Status: domain.ChannelSent, SentAt: &now}
}

func (e *Engine) surveyURL(order *domain.Order) string {
	if e.surveyBaseURL == "" {
		return ""
	}
	return fmt.Sprintf("%s/%d", strings.TrimRight(e.surveyBaseURL, "/"), order.RefID)
}
