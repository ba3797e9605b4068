package httpserver

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"

	"github.com/rzbill/pagelog/internal/ingest"
	"github.com/rzbill/pagelog/internal/segment"
	logpkg "github.com/rzbill/pagelog/pkg/log"
)

// appendReq is the JSON form of POST /v1/records. A string payload is
// written as text; any other JSON value is written as compact JSON.
type appendReq struct {
	Payload  json.RawMessage   `json:"payload"`
	Payloads []json.RawMessage `json:"payloads"`
}

type segmentResp struct {
	Seq        uint64 `json:"seq"`
	Path       string `json:"path"`
	OpenedAtMs int64  `json:"openedAtMs"`
	Size       int64  `json:"size"`
}

// handleAppend accepts a raw body (one record, or one per line with
// ?split=lines) or a JSON appendReq.
func (s *Server) handleAppend(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, MaxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, err.Error())
			return
		}
		writeError(w, http.StatusBadRequest, "read body: "+err.Error())
		return
	}

	payloads, err := payloadsFromRequest(r, body)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if len(payloads) == 0 {
		writeError(w, http.StatusBadRequest, "no records")
		return
	}

	accepted, filtered := 0, 0
	for _, p := range payloads {
		err := s.rt.Ingest().Append(r.Context(), p)
		switch {
		case err == nil:
			accepted++
		case errors.Is(err, ingest.ErrFiltered):
			filtered++
		default:
			// records before this one are already queued
			s.logger.Warn("append rejected", logpkg.Err(err), logpkg.Int("accepted", accepted))
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(statusFor(err))
			writeJSON(w, map[string]any{"error": err.Error(), "accepted": accepted, "filtered": filtered})
			return
		}
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	writeJSON(w, map[string]int{"accepted": accepted, "filtered": filtered})
}

func payloadsFromRequest(r *http.Request, body []byte) ([][]byte, error) {
	ct, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if ct != "application/json" {
		if r.URL.Query().Get("split") == "lines" {
			var out [][]byte
			for _, line := range bytes.Split(body, []byte("\n")) {
				if line = bytes.TrimRight(line, "\r"); len(line) > 0 {
					out = append(out, line)
				}
			}
			return out, nil
		}
		if len(body) == 0 {
			return nil, nil
		}
		return [][]byte{body}, nil
	}

	var req appendReq
	if err := json.Unmarshal(body, &req); err != nil {
		return nil, err
	}
	raws := req.Payloads
	if len(req.Payload) > 0 {
		raws = append([]json.RawMessage{req.Payload}, raws...)
	}
	out := make([][]byte, 0, len(raws))
	for _, raw := range raws {
		var text string
		if err := json.Unmarshal(raw, &text); err == nil {
			out = append(out, []byte(text))
			continue
		}
		var buf bytes.Buffer
		if err := json.Compact(&buf, raw); err != nil {
			return nil, err
		}
		out = append(out, buf.Bytes())
	}
	return out, nil
}

func (s *Server) handleSegments(w http.ResponseWriter, r *http.Request) {
	metas, err := s.rt.Segments(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	out := make([]segmentResp, 0, len(metas))
	for _, m := range metas {
		size, _ := segment.Size(m.Path)
		out = append(out, segmentResp{Seq: m.Seq, Path: m.Path, OpenedAtMs: m.OpenedAtMs, Size: size})
	}
	writeJSON(w, map[string]any{"segments": out})
}
