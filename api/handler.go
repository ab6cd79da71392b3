package api

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/raushankrgupta/flyer-price-scraper/utils"
)

// ScrapeHandler starts one background run. Only one run may be in flight.
func (s *Server) ScrapeHandler(w http.ResponseWriter, r *http.Request) {
	var logMessageBuilder strings.Builder
	defer utils.FlushLogMessage(&logMessageBuilder)
	utils.AddToLogMessage(&logMessageBuilder, "[Scrape API]")

	if subject, err := GetSubjectFromContext(r.Context()); err == nil {
		utils.AddToLogMessage(&logMessageBuilder, fmt.Sprintf("Requested by %s", subject))
	}

	if !s.running.TryLock() {
		utils.RespondError(w, &logMessageBuilder, "A scrape run is already in progress", http.StatusConflict)
		return
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer s.running.Unlock()
		// the run outlives the request
		if err := s.run(context.Background()); err != nil {
			fmt.Printf("[Scrape API] run failed: %v\n", err)
			return
		}
		fmt.Println("[Scrape API] run finished")
	}()

	utils.AddToLogMessage(&logMessageBuilder, "Run started")
	utils.RespondJSON(w, http.StatusAccepted, map[string]string{"status": "started"})
}
