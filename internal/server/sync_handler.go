package server

import (
	"fmt"
	"net/http"
)

// handlePostSync runs one reconciliation pass. The pass is synchronous: it
// either completes and saves, or fails before any write.
func (s *server) handlePostSync(w http.ResponseWriter, r *http.Request) {
	summary, err := s.syncer.Run(r.Context())
	if err != nil {
		s.logger.Error("sync failed", "error", err)
		redirectToDashboard(w, r, "", "sync failed")
		return
	}
	msg := fmt.Sprintf("sync ok: %d scanned, %d created, %d updated, %d skipped",
		summary.Scanned, summary.Created, summary.Updated, summary.Skipped)
	redirectToDashboard(w, r, msg, "")
}
