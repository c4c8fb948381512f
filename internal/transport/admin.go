package transport

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/capstonehub/capstone-hub/internal/backup"
	"github.com/capstonehub/capstone-hub/internal/domain/activity"
	"github.com/capstonehub/capstone-hub/internal/logging"
)

type backupResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Output  string `json:"output,omitempty"`
	Key     string `json:"key,omitempty"`
	Size    int64  `json:"size,omitempty"`
	Records int    `json:"records,omitempty"`
}

func (s *Server) handleBackup(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), BackupTimeout)
	defer cancel()

	res, err := s.backups.Run(ctx)
	switch {
	case errors.Is(err, backup.ErrThrottled):
		s.metrics.backup("throttled")
		writeJSON(w, http.StatusTooManyRequests, backupResponse{Message: "Backup requested too soon, try again shortly"})
		return
	case err != nil:
		s.metrics.backup("failed")
		writeJSON(w, http.StatusInternalServerError, backupResponse{Message: "Backup failed: " + logging.Redact(err.Error())})
		return
	}

	s.metrics.backup("created")
	writeJSON(w, http.StatusOK, backupResponse{
		Success: true,
		Message: "Backup completed successfully",
		Output:  fmt.Sprintf("wrote %s (%d records, %d bytes, pruned %d)", res.Key, res.Records, res.Size, len(res.Pruned)),
		Key:     res.Key,
		Size:    res.Size,
		Records: res.Records,
	})
}

func (s *Server) handleListBackups(w http.ResponseWriter, r *http.Request) {
	infos, err := s.backups.List(r.Context())
	if err != nil {
		writeInternalError(w, s.logger, "list backups failed", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"backups": infos})
}

func (s *Server) handleActivity(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	opts := activity.ListActivityOptions{EntityType: q.Get("entity_type")}
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "Invalid limit")
			return
		}
		opts.Limit = n
	}
	if v := q.Get("offset"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "Invalid offset")
			return
		}
		opts.Offset = n
	}
	if v := q.Get("type"); v != "" {
		typ := activity.ActivityType(v)
		opts.ActivityType = &typ
	}

	entries, err := s.activity.GetRecentActivity(r.Context(), opts)
	if err != nil {
		writeInternalError(w, s.logger, "list activity failed", err)
		return
	}
	if entries == nil {
		entries = []activity.ActivityEntry{}
	}
	writeJSON(w, http.StatusOK, entries)
}
