package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/JakeFAU/page-analyzer/internal/analyzer"
	"github.com/JakeFAU/page-analyzer/internal/logging"
	"github.com/JakeFAU/page-analyzer/internal/metrics"
	"github.com/JakeFAU/page-analyzer/internal/urlutil"
)

const (
	msgInvalidURL   = "Invalid URL"
	msgURLExists    = "Page already exists"
	msgURLAdded     = "Page successfully added"
	msgCheckFailed  = "An error occurred during the check"
	msgCheckSuccess = "Page successfully checked"
)

func (s *Server) index(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusOK, "index.html", pageData{Flashes: s.flashes.pop(w, r)})
}

func (s *Server) createURL(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.badRequest(w, r, err)
		return
	}
	raw := r.PostForm.Get("url")
	normalized := urlutil.Normalize(raw)
	if err := urlutil.Validate(normalized); err != nil {
		logging.FromContext(r.Context(), s.logger).Info("rejected url", zap.String("input", raw), zap.Error(err))
		metrics.ObserveURLRegistration(metrics.ResultInvalid)
		s.render(w, r, http.StatusUnprocessableEntity, "index.html", pageData{
			Flashes: append(s.flashes.pop(w, r), flash{Category: flashDanger, Message: msgInvalidURL}),
			Input:   raw,
		})
		return
	}

	id, existed, err := s.repo.RegisterURL(r.Context(), normalized)
	if err != nil {
		s.serverError(w, r, err)
		return
	}
	if existed {
		metrics.ObserveURLRegistration(metrics.ResultExisted)
		s.redirectWithFlash(w, r, urlPath(id), flashInfo, msgURLExists)
		return
	}
	metrics.ObserveURLRegistration(metrics.ResultCreated)
	s.redirectWithFlash(w, r, urlPath(id), flashSuccess, msgURLAdded)
}

func (s *Server) listURLs(w http.ResponseWriter, r *http.Request) {
	urls, err := s.repo.ListURLsWithLastCheck(r.Context())
	if err != nil {
		s.serverError(w, r, err)
		return
	}
	s.render(w, r, http.StatusOK, "urls.html", pageData{Flashes: s.flashes.pop(w, r), URLs: urls})
}

func (s *Server) showURL(w http.ResponseWriter, r *http.Request) {
	u, ok := s.loadURL(w, r)
	if !ok {
		return
	}
	checks, err := s.repo.ListChecksForURL(r.Context(), u.ID)
	if err != nil {
		s.serverError(w, r, err)
		return
	}
	s.render(w, r, http.StatusOK, "url.html", pageData{
		Flashes: s.flashes.pop(w, r),
		URL:     u,
		Checks:  checks,
	})
}

func (s *Server) createCheck(w http.ResponseWriter, r *http.Request) {
	u, ok := s.loadURL(w, r)
	if !ok {
		return
	}
	logger := logging.FromContext(r.Context(), s.logger).With(zap.Int64("url_id", u.ID), zap.String("url", u.Name))

	start := time.Now()
	result, err := s.inspector.FetchAndExtract(r.Context(), u.Name)
	elapsed := time.Since(start)
	if err != nil {
		var fetchErr *analyzer.FetchError
		if errors.As(err, &fetchErr) {
			logger.Info("check fetch failed", zap.Error(err))
		} else {
			logger.Warn("check failed", zap.Error(err))
		}
		metrics.ObservePageCheck(u.Name, metrics.OutcomeFetchError, elapsed)
		s.redirectWithFlash(w, r, urlPath(u.ID), flashDanger, msgCheckFailed)
		return
	}

	if err := s.repo.InsertCheck(r.Context(), result.CheckFor(u.ID)); err != nil {
		metrics.ObservePageCheck(u.Name, metrics.OutcomeStoreError, elapsed)
		s.serverError(w, r, err)
		return
	}
	metrics.ObservePageCheck(u.Name, metrics.OutcomeSuccess, elapsed)
	logger.Info("check recorded", zap.Int("status_code", result.StatusCode))
	s.redirectWithFlash(w, r, urlPath(u.ID), flashSuccess, msgCheckSuccess)
}

// loadURL resolves the {id} path parameter, writing a 404 when it is malformed or unknown.
func (s *Server) loadURL(w http.ResponseWriter, r *http.Request) (analyzer.URL, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		s.notFound(w, r)
		return analyzer.URL{}, false
	}
	u, found, err := s.repo.FindURLByID(r.Context(), id)
	if err != nil {
		s.serverError(w, r, err)
		return analyzer.URL{}, false
	}
	if !found {
		s.notFound(w, r)
		return analyzer.URL{}, false
	}
	return u, true
}

func (s *Server) redirectWithFlash(w http.ResponseWriter, r *http.Request, to, category, msg string) {
	if err := s.flashes.add(w, r, category, msg); err != nil {
		logging.FromContext(r.Context(), s.logger).Warn("flash encode failed", zap.Error(err))
	}
	http.Redirect(w, r, to, http.StatusSeeOther)
}

func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, page string, data pageData) {
	buf, err := s.views.execute(page, data)
	if err != nil {
		s.serverError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if _, err := buf.WriteTo(w); err != nil {
		logging.FromContext(r.Context(), s.logger).Warn("write response failed", zap.Error(err))
	}
}

func (s *Server) notFound(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusNotFound, "not_found.html", pageData{})
}

func (s *Server) badRequest(w http.ResponseWriter, r *http.Request, err error) {
	logging.FromContext(r.Context(), s.logger).Info("bad request", zap.Error(err))
	writeText(w, http.StatusBadRequest, "bad request")
}

func (s *Server) serverError(w http.ResponseWriter, r *http.Request, err error) {
	logging.FromContext(r.Context(), s.logger).Error("request failed", zap.Error(err))
	writeText(w, http.StatusInternalServerError, "internal server error")
}

func urlPath(id int64) string {
	return "/urls/" + strconv.FormatInt(id, 10)
}
