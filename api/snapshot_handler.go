package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/raushankrgupta/flyer-price-scraper/models"
	"github.com/raushankrgupta/flyer-price-scraper/storage"
	"github.com/raushankrgupta/flyer-price-scraper/utils"
)

// LatestSnapshotHandler returns the most recent daily snapshot
func (s *Server) LatestSnapshotHandler(w http.ResponseWriter, r *http.Request) {
	var logMessageBuilder strings.Builder
	defer utils.FlushLogMessage(&logMessageBuilder)
	utils.AddToLogMessage(&logMessageBuilder, "[Latest Snapshot API]")

	snapshot, err := s.reader.Latest(r.Context())
	s.respondSnapshot(w, &logMessageBuilder, snapshot, err)
}

// SnapshotByDateHandler returns the snapshot for one YYYY-MM-DD date
func (s *Server) SnapshotByDateHandler(w http.ResponseWriter, r *http.Request) {
	var logMessageBuilder strings.Builder
	defer utils.FlushLogMessage(&logMessageBuilder)
	utils.AddToLogMessage(&logMessageBuilder, "[Snapshot By Date API]")

	date := chi.URLParam(r, "date")
	if _, err := time.Parse(models.DateLayout, date); err != nil {
		utils.RespondError(w, &logMessageBuilder, "Date must be YYYY-MM-DD", http.StatusBadRequest)
		return
	}

	snapshot, err := s.reader.ByDate(r.Context(), date)
	s.respondSnapshot(w, &logMessageBuilder, snapshot, err)
}

// ArchiveLinkHandler returns a presigned download link for an archived snapshot
func (s *Server) ArchiveLinkHandler(w http.ResponseWriter, r *http.Request) {
	var logMessageBuilder strings.Builder
	defer utils.FlushLogMessage(&logMessageBuilder)
	utils.AddToLogMessage(&logMessageBuilder, "[Snapshot Archive API]")

	if s.archive == nil {
		utils.RespondError(w, &logMessageBuilder, "Snapshot archive is not configured", http.StatusServiceUnavailable)
		return
	}

	date := chi.URLParam(r, "date")
	if _, err := time.Parse(models.DateLayout, date); err != nil {
		utils.RespondError(w, &logMessageBuilder, "Date must be YYYY-MM-DD", http.StatusBadRequest)
		return
	}

	if _, err := s.reader.ByDate(r.Context(), date); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			utils.RespondError(w, &logMessageBuilder, "Snapshot not found", http.StatusNotFound)
			return
		}
		utils.RespondError(w, &logMessageBuilder, fmt.Sprintf("Failed to load snapshot: %v", err), http.StatusInternalServerError)
		return
	}

	url, err := s.archive.PresignedURL(r.Context(), date)
	if err != nil {
		utils.RespondError(w, &logMessageBuilder, fmt.Sprintf("Failed to sign archive link: %v", err), http.StatusBadGateway)
		return
	}
	utils.AddToLogMessage(&logMessageBuilder, fmt.Sprintf("Signed archive link for %s", date))
	utils.RespondJSON(w, http.StatusOK, map[string]string{"date": date, "url": url})
}

func (s *Server) respondSnapshot(w http.ResponseWriter, logger *strings.Builder, snapshot *models.DailySnapshot, err error) {
	if errors.Is(err, storage.ErrNotFound) {
		utils.RespondError(w, logger, "Snapshot not found", http.StatusNotFound)
		return
	}
	if err != nil {
		utils.RespondError(w, logger, fmt.Sprintf("Failed to load snapshot: %v", err), http.StatusInternalServerError)
		return
	}
	utils.AddToLogMessage(logger, fmt.Sprintf("Serving snapshot %s (%d stores)", snapshot.Date, len(snapshot.Stores)))
	utils.RespondJSON(w, http.StatusOK, snapshot)
}
