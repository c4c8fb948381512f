package transport

import (
	"archive/zip"
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/capstonehub/capstone-hub/internal/domain/entity"
)

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	typ := q.Get("type")
	if typ != "" && typ != "all" {
		if _, ok := entity.ByPlural(typ); !ok {
			writeError(w, http.StatusBadRequest, "Unknown search type")
			return
		}
	}
	results, err := s.entities.Search(r.Context(), q.Get("q"), typ)
	if err != nil {
		writeInternalError(w, s.logger, "search failed", err)
		return
	}
	writeJSON(w, http.StatusOK, results)
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	dash, err := s.entities.Dashboard(r.Context())
	if err != nil {
		writeInternalError(w, s.logger, "dashboard failed", err)
		return
	}
	writeJSON(w, http.StatusOK, dash)
}

type exportRequest struct {
	Format string `json:"format"`
	Type   string `json:"type"`
}

// handleExport downloads records as one JSON document or as a zip holding
// one CSV file per entity type.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	req := exportRequest{Format: "json", Type: "all"}
	if err := decodeJSON(r, &req); err != nil && !errors.Is(err, errEmptyBody) {
		writeError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	var plurals []string
	if req.Type != "" && req.Type != "all" {
		if _, ok := entity.ByPlural(req.Type); !ok {
			writeError(w, http.StatusBadRequest, "Unknown export type")
			return
		}
		plurals = append(plurals, req.Type)
	}
	if req.Format != "json" && req.Format != "csv" {
		writeError(w, http.StatusBadRequest, "Unsupported export format")
		return
	}

	snap, err := s.entities.Snapshot(r.Context(), plurals...)
	if err != nil {
		writeInternalError(w, s.logger, "export failed", err)
		return
	}

	stamp := snap.ExportedAt.Format("20060102")
	var body []byte
	var contentType, filename string
	switch req.Format {
	case "json":
		body, err = json.MarshalIndent(snap, "", "  ")
		contentType, filename = "application/json", fmt.Sprintf("capstone_data_%s.json", stamp)
	case "csv":
		body, err = csvArchive(snap)
		contentType, filename = "application/zip", fmt.Sprintf("capstone_data_%s.zip", stamp)
	}
	if err != nil {
		writeInternalError(w, s.logger, "export encoding failed", err)
		return
	}

	s.logger.Info("data exported", "format", req.Format, "type", req.Type, "records", snap.Count())
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

func csvArchive(snap *entity.Snapshot) ([]byte, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, d := range entity.Catalog() {
		records, ok := snap.Data[d.Plural]
		if !ok || len(records) == 0 {
			continue
		}
		f, err := zw.Create(d.Plural + ".csv")
		if err != nil {
			return nil, err
		}
		if err := writeCSV(f, d, records); err != nil {
			return nil, err
		}
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeCSV(w io.Writer, d *entity.Descriptor, records []entity.Record) error {
	cw := csv.NewWriter(w)
	header := []string{"id"}
	for _, f := range d.Fields {
		header = append(header, f.Name)
	}
	header = append(header, "created_at", "updated_at")
	if err := cw.Write(header); err != nil {
		return err
	}

	for _, rec := range records {
		row := make([]string, 0, len(header))
		row = append(row, rec.ID)
		for _, f := range d.Fields {
			row = append(row, csvValue(rec.Fields[f.Name]))
		}
		row = append(row, rec.CreatedAt.UTC().Format(time.RFC3339), rec.UpdatedAt.UTC().Format(time.RFC3339))
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func csvValue(v any) string {
	switch v := v.(type) {
	case nil:
		return ""
	case string:
		return v
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	default:
		return fmt.Sprint(v)
	}
}
