// Package service implements open-house management: scheduling, publishing,
// check-in QR codes and flyers.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"openhouse_backend/internal/adapters/storage"
	"openhouse_backend/internal/events"
	"openhouse_backend/internal/openhouses/repository"
	"openhouse_backend/internal/openhouses/transport"
	"openhouse_backend/platform/apperr"
	"openhouse_backend/platform/logger"
	"openhouse_backend/platform/sanitize"

	"github.com/google/uuid"
	"github.com/skip2/go-qrcode"
)

// QR code sizes in pixels.
const (
	DefaultQRSize = 256
	MinQRSize     = 128
	MaxQRSize     = 1024
)

const msgFlyersDisabled = "flyer storage is not configured"

// Service provides business logic for open houses.
type Service struct {
	repo       repository.EventsRepository
	flyers     storage.Store
	appBaseURL string
	bus        events.Publisher
	log        *logger.Logger
}

// New creates an open-house service. flyers may be nil when MinIO is not
// configured; flyer operations then report unavailable.
func New(repo repository.EventsRepository, flyers storage.Store, appBaseURL string, bus events.Publisher, log *logger.Logger) *Service {
	return &Service{
		repo:       repo,
		flyers:     flyers,
		appBaseURL: strings.TrimRight(appBaseURL, "/"),
		bus:        bus,
		log:        log,
	}
}

// CheckInURL is the public URL encoded in the open-house QR code.
func (s *Service) CheckInURL(eventID uuid.UUID) string {
	return fmt.Sprintf("%s/oh/%s", s.appBaseURL, eventID)
}

func (s *Service) Create(ctx context.Context, agentID uuid.UUID, req transport.CreateOpenHouseRequest) (transport.OpenHouseResponse, error) {
	address := sanitize.Text(req.Address)
	if address == "" {
		return transport.OpenHouseResponse{}, apperr.Validation("address is required")
	}
	if !req.EndAt.After(req.StartAt) {
		return transport.OpenHouseResponse{}, apperr.Validation("endAt must be after startAt")
	}

	event, err := s.repo.Create(ctx, repository.CreateEventParams{
		AgentID: agentID,
		Address: address,
		StartAt: req.StartAt.UTC(),
		EndAt:   req.EndAt.UTC(),
	})
	if err != nil {
		s.log.DatabaseError("openhouses.create", err)
		return transport.OpenHouseResponse{}, apperr.Wrap(apperr.KindInternal, "create open house", err)
	}
	return s.toResponse(event), nil
}

func (s *Service) Get(ctx context.Context, agentID, id uuid.UUID) (transport.OpenHouseResponse, error) {
	event, err := s.owned(ctx, agentID, id)
	if err != nil {
		return transport.OpenHouseResponse{}, err
	}
	return s.toResponse(event), nil
}

func (s *Service) List(ctx context.Context, agentID uuid.UUID) (transport.OpenHouseListResponse, error) {
	items, err := s.repo.ListByAgent(ctx, agentID)
	if err != nil {
		s.log.DatabaseError("openhouses.list", err)
		return transport.OpenHouseListResponse{}, apperr.Wrap(apperr.KindInternal, "list open houses", err)
	}

	resp := transport.OpenHouseListResponse{Items: make([]transport.OpenHouseResponse, 0, len(items)), Total: len(items)}
	for _, e := range items {
		resp.Items = append(resp.Items, s.toResponse(e))
	}
	return resp, nil
}

// Publish opens the event for visitor check-ins.
func (s *Service) Publish(ctx context.Context, agentID, id uuid.UUID) (transport.OpenHouseResponse, error) {
	current, err := s.owned(ctx, agentID, id)
	if err != nil {
		return transport.OpenHouseResponse{}, err
	}
	if current.Status == repository.StatusEnded {
		return transport.OpenHouseResponse{}, apperr.Conflict("open house has ended")
	}
	if current.Status == repository.StatusPublished {
		return s.toResponse(current), nil
	}

	event, err := s.setStatus(ctx, agentID, id, repository.StatusPublished)
	if err != nil {
		return transport.OpenHouseResponse{}, err
	}

	s.bus.Publish(ctx, events.OpenHousePublished{
		BaseEvent: events.NewBaseEvent(),
		EventID:   event.ID,
		AgentID:   event.AgentID,
		Address:   event.Address,
	})
	return s.toResponse(event), nil
}

// End closes check-ins. Ended events stay visible to the agent.
func (s *Service) End(ctx context.Context, agentID, id uuid.UUID) (transport.OpenHouseResponse, error) {
	if _, err := s.owned(ctx, agentID, id); err != nil {
		return transport.OpenHouseResponse{}, err
	}
	event, err := s.setStatus(ctx, agentID, id, repository.StatusEnded)
	if err != nil {
		return transport.OpenHouseResponse{}, err
	}
	return s.toResponse(event), nil
}

// PublicSummary returns a published event for the check-in form.
func (s *Service) PublicSummary(ctx context.Context, id uuid.UUID) (transport.PublicOpenHouseResponse, error) {
	event, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return transport.PublicOpenHouseResponse{}, s.mapError(err, "openhouses.public")
	}
	if event.Status != repository.StatusPublished {
		return transport.PublicOpenHouseResponse{}, apperr.NotFound("open house not found")
	}
	return transport.PublicOpenHouseResponse{
		ID:      event.ID,
		Address: event.Address,
		StartAt: event.StartAt,
		EndAt:   event.EndAt,
	}, nil
}

// Lookup returns an event without an ownership check. Used by other modules.
func (s *Service) Lookup(ctx context.Context, id uuid.UUID) (repository.Event, error) {
	return s.repo.GetByID(ctx, id)
}

// CheckInQRCode renders the event's check-in URL as a PNG. Out-of-range sizes
// fall back to the nearest bound; zero means the default.
func (s *Service) CheckInQRCode(ctx context.Context, agentID, id uuid.UUID, size int) ([]byte, error) {
	if _, err := s.owned(ctx, agentID, id); err != nil {
		return nil, err
	}

	switch {
	case size == 0:
		size = DefaultQRSize
	case size < MinQRSize:
		size = MinQRSize
	case size > MaxQRSize:
		size = MaxQRSize
	}

	png, err := qrcode.Encode(s.CheckInURL(id), qrcode.Medium, size)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "render qr code", err)
	}
	return png, nil
}

// PresignFlyerUpload returns a URL the agent's browser uploads the flyer to.
func (s *Service) PresignFlyerUpload(ctx context.Context, agentID, id uuid.UUID, req transport.FlyerUploadRequest) (transport.FlyerURLResponse, error) {
	if s.flyers == nil {
		return transport.FlyerURLResponse{}, apperr.Unavailable(msgFlyersDisabled)
	}
	if _, err := s.owned(ctx, agentID, id); err != nil {
		return transport.FlyerURLResponse{}, err
	}

	key := storage.ObjectKey(flyerFolder(agentID, id), req.FileName)
	presigned, err := s.flyers.PresignUpload(ctx, key, req.ContentType, req.SizeBytes)
	if err != nil {
		return transport.FlyerURLResponse{}, apperr.Validation(err.Error())
	}
	return toFlyerResponse(presigned), nil
}

// SetFlyer attaches an uploaded object to the event. The key must live under
// the event's own folder and the upload must have completed with an allowed
// type. A replaced flyer is removed from the bucket.
func (s *Service) SetFlyer(ctx context.Context, agentID, id uuid.UUID, req transport.SetFlyerRequest) (transport.OpenHouseResponse, error) {
	if s.flyers == nil {
		return transport.OpenHouseResponse{}, apperr.Unavailable(msgFlyersDisabled)
	}
	if !strings.HasPrefix(req.FileKey, flyerFolder(agentID, id)+"/") {
		return transport.OpenHouseResponse{}, apperr.Validation("file key does not belong to this open house")
	}

	current, err := s.owned(ctx, agentID, id)
	if err != nil {
		return transport.OpenHouseResponse{}, err
	}

	info, err := s.flyers.Stat(ctx, req.FileKey)
	if errors.Is(err, storage.ErrObjectNotFound) {
		return transport.OpenHouseResponse{}, apperr.Validation("flyer has not been uploaded")
	}
	if err != nil {
		return transport.OpenHouseResponse{}, apperr.Wrap(apperr.KindInternal, "check flyer upload", err).WithOp("openhouses.set_flyer")
	}
	if err := storage.ValidateContentType(info.ContentType); err != nil {
		return transport.OpenHouseResponse{}, apperr.Validation(err.Error())
	}

	event, err := s.repo.SetFlyerKey(ctx, agentID, id, req.FileKey)
	if err != nil {
		return transport.OpenHouseResponse{}, s.mapError(err, "openhouses.set_flyer")
	}

	if previous := current.FlyerKey; previous != nil && *previous != "" && *previous != req.FileKey {
		if err := s.flyers.Remove(ctx, *previous); err != nil {
			s.log.WithContext(ctx).Warn("failed to remove replaced flyer", "key", *previous, "error", err)
		}
	}
	return s.toResponse(event), nil
}

// FlyerURL returns a short-lived download URL for the agent.
func (s *Service) FlyerURL(ctx context.Context, agentID, id uuid.UUID) (transport.FlyerURLResponse, error) {
	event, err := s.owned(ctx, agentID, id)
	if err != nil {
		return transport.FlyerURLResponse{}, err
	}
	return s.FlyerURLForEvent(ctx, event, storage.PresignedURLTTL)
}

// FlyerURLForEvent presigns the event's flyer without an ownership check.
// Follow-up emails ask for a long ttl so the link survives in an inbox.
func (s *Service) FlyerURLForEvent(ctx context.Context, event repository.Event, ttl time.Duration) (transport.FlyerURLResponse, error) {
	if s.flyers == nil {
		return transport.FlyerURLResponse{}, apperr.Unavailable(msgFlyersDisabled)
	}
	if event.FlyerKey == nil || *event.FlyerKey == "" {
		return transport.FlyerURLResponse{}, apperr.NotFound("open house has no flyer")
	}

	presigned, err := s.flyers.PresignDownload(ctx, *event.FlyerKey, ttl)
	if err != nil {
		return transport.FlyerURLResponse{}, apperr.Wrap(apperr.KindInternal, "presign flyer", err)
	}
	return toFlyerResponse(presigned), nil
}

func (s *Service) owned(ctx context.Context, agentID, id uuid.UUID) (repository.Event, error) {
	event, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return repository.Event{}, s.mapError(err, "openhouses.get")
	}
	if event.AgentID != agentID {
		return repository.Event{}, apperr.NotFound("open house not found")
	}
	return event, nil
}

func (s *Service) setStatus(ctx context.Context, agentID, id uuid.UUID, status string) (repository.Event, error) {
	event, err := s.repo.UpdateStatus(ctx, agentID, id, status)
	if err != nil {
		return repository.Event{}, s.mapError(err, "openhouses.update_status")
	}
	return event, nil
}

func (s *Service) mapError(err error, op string) error {
	if errors.Is(err, repository.ErrNotFound) {
		return apperr.NotFound("open house not found")
	}
	s.log.DatabaseError(op, err)
	return apperr.Wrap(apperr.KindInternal, "open house storage failure", err).WithOp(op)
}

func (s *Service) toResponse(e repository.Event) transport.OpenHouseResponse {
	return transport.OpenHouseResponse{
		ID:         e.ID,
		Address:    e.Address,
		StartAt:    e.StartAt,
		EndAt:      e.EndAt,
		Status:     e.Status,
		HasFlyer:   e.FlyerKey != nil && *e.FlyerKey != "",
		CheckInURL: s.CheckInURL(e.ID),
		CreatedAt:  e.CreatedAt,
		UpdatedAt:  e.UpdatedAt,
	}
}

func flyerFolder(agentID, eventID uuid.UUID) string {
	return fmt.Sprintf("%s/%s", agentID, eventID)
}

func toFlyerResponse(p *storage.PresignedURL) transport.FlyerURLResponse {
	return transport.FlyerURLResponse{URL: p.URL, FileKey: p.FileKey, ExpiresAt: p.ExpiresAt}
}
