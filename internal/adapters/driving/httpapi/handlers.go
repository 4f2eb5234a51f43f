package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/goforscrim/scrimsync/internal/core/domain"
	"github.com/goforscrim/scrimsync/internal/core/ports/driven"
	"github.com/goforscrim/scrimsync/internal/logger"
)

// scrimView is the JSON shape of one stored record.
type scrimView struct {
	ID              string   `json:"id"`
	URL             string   `json:"url,omitempty"`
	Kind            string   `json:"kind,omitempty"`
	Region          string   `json:"region,omitempty"`
	Platform        string   `json:"platform,omitempty"`
	SkillRating     string   `json:"skill_rating,omitempty"`
	Rank            string   `json:"rank,omitempty"`
	AvailabilityDay string   `json:"availability_day"`
	TimeStart       string   `json:"time_start,omitempty"`
	TimeEnd         string   `json:"time_end,omitempty"`
	Timezone        string   `json:"timezone,omitempty"`
	AuthorUsername  string   `json:"author_username"`
	AuthorName      string   `json:"author_display_name,omitempty"`
	Channels        []string `json:"channels"`
	PostedAt        string   `json:"posted_at"`
}

func toScrimView(rec domain.StoredRecord) scrimView {
	channels := rec.PostedInChannels
	if channels == nil {
		channels = []string{}
	}
	return scrimView{
		ID:              rec.SourceMessageID,
		URL:             rec.SourceURL,
		Kind:            string(rec.Kind),
		Region:          rec.Region,
		Platform:        rec.Platform,
		SkillRating:     rec.SkillRating,
		Rank:            rec.Rank,
		AvailabilityDay: rec.AvailabilityDay,
		TimeStart:       rec.TimeStart,
		TimeEnd:         rec.TimeEnd,
		Timezone:        rec.Timezone,
		AuthorUsername:  rec.AuthorUsername,
		AuthorName:      rec.AuthorDisplayName,
		Channels:        channels,
		PostedAt:        rec.SourceTimestamp.UTC().Format(time.RFC3339),
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleListScrims returns every record inside the retention window,
// newest first.
func (s *Server) handleListScrims(w http.ResponseWriter, r *http.Request) {
	cutoff := s.now().Add(-s.config.Retention)
	records, err := s.records.ListSince(r.Context(), cutoff)
	if err != nil {
		logger.Warn("HTTP: listing scrims failed: %v", err)
		writeError(w, http.StatusInternalServerError, "listing scrims failed")
		return
	}

	views := make([]scrimView, 0, len(records))
	for _, rec := range records {
		views = append(views, toScrimView(rec))
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"scrims": views,
		"count":  len(views),
	})
}

type syncRequest struct {
	Channels []string `json:"channels"`
}

// handleSync triggers a sync run in the given mode. The request body may
// narrow the run to specific channels; the configured list is the default.
func (s *Server) handleSync(mode domain.SyncMode) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// An empty body means all configured channels.
		var req syncRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}

		channels := req.Channels
		if len(channels) == 0 {
			channels = s.config.Channels
		}
		if len(channels) == 0 {
			writeError(w, http.StatusBadRequest, "no channels configured")
			return
		}

		report, err := s.syncer.SyncChannels(r.Context(), channels, mode)
		switch {
		case errors.Is(err, domain.ErrSyncInProgress):
			writeError(w, http.StatusConflict, "a sync is already running")
			return
		case errors.Is(err, domain.ErrConfigMissing):
			writeError(w, http.StatusBadRequest, err.Error())
			return
		case err != nil:
			logger.Warn("HTTP: sync failed: %v", err)
			writeError(w, http.StatusInternalServerError, "sync failed")
			return
		}

		writeJSON(w, http.StatusOK, report)
	}
}

func (s *Server) handleCleanup(w http.ResponseWriter, r *http.Request) {
	deleted, err := s.syncer.Cleanup(r.Context())
	if err != nil {
		logger.Warn("HTTP: cleanup failed: %v", err)
		writeError(w, http.StatusInternalServerError, "cleanup failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"deleted": deleted})
}

type contactRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Topic   string `json:"topic"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

func (s *Server) handleContact(w http.ResponseWriter, r *http.Request) {
	if s.notifier == nil {
		writeError(w, http.StatusServiceUnavailable, "contact relay not configured")
		return
	}

	var req contactRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	err := s.notifier.Notify(r.Context(), driven.ContactMessage{
		Name:    req.Name,
		Email:   req.Email,
		Topic:   req.Topic,
		Subject: req.Subject,
		Body:    req.Body,
	})
	switch {
	case errors.Is(err, domain.ErrWebhookUnconfigured):
		writeError(w, http.StatusServiceUnavailable, "contact relay not configured")
	case errors.Is(err, domain.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, err.Error())
	case err != nil:
		logger.Warn("HTTP: contact relay failed: %v", err)
		writeError(w, http.StatusBadGateway, "delivering message failed")
	default:
		writeJSON(w, http.StatusAccepted, map[string]string{"status": "sent"})
	}
}
