// Package sse streams agent alerts (check-ins, red-hot return visits, stage
// moves) to the dashboard over Server-Sent Events.
package sse

import (
	"io"
	"net/http"
	"sync"
	"time"

	"openhouse_backend/platform/logger"

	ginsse "github.com/gin-contrib/sse"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type EventType string

const (
	EventLeadCheckedIn      EventType = "lead_checked_in"
	EventRedHotLead         EventType = "red_hot_lead"
	EventLeadStageChanged   EventType = "lead_stage_changed"
	EventOpenHousePublished EventType = "open_house_published"
)

const (
	streamBuffer      = 32
	defaultHeartbeat  = 25 * time.Second
	connectedEventTag = "connected"
)

// Event is one alert. ID is the id of the domain event that caused it and
// is sent as the SSE id field.
type Event struct {
	ID      uuid.UUID `json:"id,omitempty"`
	Type    EventType `json:"type"`
	LeadID  uuid.UUID `json:"leadId,omitempty"`
	EventID uuid.UUID `json:"eventId,omitempty"`
	Message string    `json:"message,omitempty"`
	Data    any       `json:"data,omitempty"`
}

type stream struct {
	agentID uuid.UUID
	events  chan Event
	once    sync.Once
}

func (st *stream) close() {
	st.once.Do(func() { close(st.events) })
}

// Service fans alerts out to every open dashboard of an agent.
type Service struct {
	mu        sync.RWMutex
	streams   map[uuid.UUID]map[*stream]struct{}
	heartbeat time.Duration
	log       *logger.Logger
}

func New(log *logger.Logger) *Service {
	return &Service{
		streams:   make(map[uuid.UUID]map[*stream]struct{}),
		heartbeat: defaultHeartbeat,
		log:       log.Named("sse"),
	}
}

// WithHeartbeat sets how often an idle stream gets a keep-alive comment.
func (s *Service) WithHeartbeat(d time.Duration) *Service {
	if d > 0 {
		s.heartbeat = d
	}
	return s
}

func (s *Service) subscribe(agentID uuid.UUID) (*stream, func()) {
	st := &stream{agentID: agentID, events: make(chan Event, streamBuffer)}

	s.mu.Lock()
	set, ok := s.streams[agentID]
	if !ok {
		set = make(map[*stream]struct{})
		s.streams[agentID] = set
	}
	set[st] = struct{}{}
	s.mu.Unlock()

	return st, func() {
		s.mu.Lock()
		if set, ok := s.streams[agentID]; ok {
			delete(set, st)
			if len(set) == 0 {
				delete(s.streams, agentID)
			}
		}
		s.mu.Unlock()
		st.close()
	}
}

// ClientCount returns the number of open streams for an agent.
func (s *Service) ClientCount(agentID uuid.UUID) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.streams[agentID])
}

// Publish never blocks: a stream whose buffer is full misses the event.
func (s *Service) Publish(agentID uuid.UUID, event Event) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	dropped := 0
	for st := range s.streams[agentID] {
		select {
		case st.events <- event:
		default:
			dropped++
		}
	}
	if dropped > 0 {
		s.log.Warn("sse stream lagging, event dropped",
			"agent_id", agentID.String(), "type", string(event.Type), "dropped", dropped)
	}
}

// Handler serves the stream for the agent resolved by agentOf.
func (s *Service) Handler(agentOf func(*gin.Context) (uuid.UUID, bool)) gin.HandlerFunc {
	return func(c *gin.Context) {
		agentID, ok := agentOf(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized", "code": "unauthorized"})
			return
		}

		h := c.Writer.Header()
		h.Set("Content-Type", "text/event-stream")
		h.Set("Cache-Control", "no-cache")
		h.Set("Connection", "keep-alive")
		h.Set("X-Accel-Buffering", "no")

		st, unsubscribe := s.subscribe(agentID)
		defer unsubscribe()

		c.Render(-1, ginsse.Event{Event: connectedEventTag, Data: gin.H{"agentId": agentID}})
		c.Writer.Flush()

		ticker := time.NewTicker(s.heartbeat)
		defer ticker.Stop()

		for {
			select {
			case <-c.Request.Context().Done():
				return
			case <-ticker.C:
				if _, err := io.WriteString(c.Writer, ": ping\n\n"); err != nil {
					return
				}
				c.Writer.Flush()
			case event, open := <-st.events:
				if !open {
					return
				}
				msg := ginsse.Event{Event: string(event.Type), Data: event}
				if event.ID != uuid.Nil {
					msg.Id = event.ID.String()
				}
				c.Render(-1, msg)
				c.Writer.Flush()
			}
		}
	}
}

// Close ends every open stream; handlers return once their channel drains.
func (s *Service) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, set := range s.streams {
		for st := range set {
			st.close()
		}
	}
	s.streams = make(map[uuid.UUID]map[*stream]struct{})
}
