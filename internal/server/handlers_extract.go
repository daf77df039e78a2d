package server

import (
	"log"
	"net/http"
	"strings"

	"github.com/jonathan/job-tracker/internal/fetch"
	"github.com/jonathan/job-tracker/internal/parsing"
	"github.com/jonathan/job-tracker/internal/types"
)

type extractResponse struct {
	Job    *types.JobRecord `json:"job"`
	Source parsing.Source   `json:"source"`
	// Fallback explains why the keyword fallback was used, when it was.
	Fallback string         `json:"fallback,omitempty"`
	Posting  *fetch.Posting `json:"posting,omitempty"`
}

func newExtractResponse(res parsing.Result) extractResponse {
	out := extractResponse{Job: res.Job, Source: res.Source}
	if res.Err != nil {
		out.Fallback = res.Err.Error()
	}
	return out
}

// handleExtract parses pasted text and/or a screenshot without touching the
// chat transcript. It always returns a record.
func (s *Server) handleExtract(w http.ResponseWriter, r *http.Request) {
	var req types.ExtractRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		s.fail(w, err)
		return
	}

	image, err := parsing.DecodeImage(req.Image)
	if err != nil {
		s.fail(w, &ErrBadRequest{Message: err.Error()})
		return
	}
	if strings.TrimSpace(req.Text) == "" && len(image) == 0 {
		s.fail(w, &ErrBadRequest{Message: "text or image is required"})
		return
	}

	res := s.extractor.ExtractDetailed(r.Context(), req.Text, image)
	s.jsonResponse(w, http.StatusOK, newExtractResponse(res))
}

// handleExtractURL fetches a posting page and extracts it.
func (s *Server) handleExtractURL(w http.ResponseWriter, r *http.Request) {
	if s.fetcher == nil {
		s.errorResponse(w, http.StatusServiceUnavailable, "URL extraction is not configured")
		return
	}

	var req types.ExtractURLRequest
	if err := s.decodeValid(w, r, &req); err != nil {
		s.fail(w, err)
		return
	}

	posting, err := s.fetcher.JobPosting(r.Context(), req.URL, req.UseBrowser)
	if err != nil {
		log.Printf("[extract] failed to fetch %s: %v", req.URL, err)
		s.fail(w, err)
		return
	}

	res := s.extractor.ExtractDetailed(r.Context(), posting.Text, nil)
	if res.Job != nil && res.Job.ApplyLink == "" {
		res.Job.ApplyLink = req.URL
	}
	out := newExtractResponse(res)
	out.Posting = posting
	s.jsonResponse(w, http.StatusOK, out)
}
