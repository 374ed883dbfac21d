package server

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"myanalyst/internal/app"
	"myanalyst/internal/ratelimit"
	"myanalyst/pkg/analysis"
	"myanalyst/pkg/domain"
)

// Audio uploads are buffered in memory; cap the form size.
const maxAudioFormSize = 32 << 20

// Config wires required dependencies for the HTTP server.
type Config struct {
	App     *app.App
	Limiter *ratelimit.FixedWindowLimiter
}

// Server exposes the HTTP endpoints of the analyst backend.
type Server struct {
	app     *app.App
	limiter *ratelimit.FixedWindowLimiter
	mux     *http.ServeMux
}

// New constructs the server with routes configured.
func New(cfg Config) *Server {
	s := &Server{
		app:     cfg.App,
		limiter: cfg.Limiter,
		mux:     http.NewServeMux(),
	}
	s.routes()
	return s
}

// Router returns the configured handler.
func (s *Server) Router() http.Handler {
	return withSecurityHeaders(withCORS(withRequestLog(s.mux)))
}

func (s *Server) routes() {
	s.mux.HandleFunc("/healthz", s.handleHealth)
	s.mux.HandleFunc("/users", s.handleUsers)
	s.mux.HandleFunc("/users/", s.handleUserByID)
	s.mux.HandleFunc("/sessions", s.handleSessions)
	s.mux.HandleFunc("/reports", s.handleReports)
	s.mux.HandleFunc("/reports/", s.handleReportSubtree)
	s.mux.HandleFunc("/chat", s.handleChat)
	s.mux.HandleFunc("/chat/stt", s.handleChatSTT)
	s.mux.HandleFunc("/news/", s.handleNews)
	s.mux.HandleFunc("/stocks/", s.handleStocks)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type credentialsRequest struct {
	UserID   string `json:"userid"`
	Password string `json:"password"`
}

func (s *Server) handleUsers(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	var req credentialsRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	user, err := s.app.Register(req.UserID, req.Password)
	if err != nil {
		if errors.Is(err, app.ErrUserExists) {
			writeError(w, http.StatusConflict, err.Error())
			return
		}
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"userid": user.ID})
}

func (s *Server) handleUserByID(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		methodNotAllowed(w)
		return
	}
	id := strings.TrimPrefix(r.URL.Path, "/users/")
	if id == "" || strings.Contains(id, "/") {
		http.NotFound(w, r)
		return
	}
	if err := s.app.DeleteUser(id); err != nil {
		s.writeAppError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (s *Server) handleSessions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	var req credentialsRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := s.app.Login(req.UserID, req.Password); err != nil {
		s.writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type createReportRequest struct {
	UserID     string `json:"userid"`
	Title      string `json:"title"`
	Chapter    string `json:"chapter"`
	Indicator  string `json:"indicator"`
	Evaluation string `json:"evaluation"`
	Company    string `json:"company"`
	Date       string `json:"date"`
}

type reportListItem struct {
	ReportID int    `json:"reportid"`
	Title    string `json:"title"`
}

type reportDetail struct {
	Title     string `json:"title"`
	Chapter   string `json:"chapter"`
	Content   string `json:"content"`
	Company   string `json:"company"`
	Date      string `json:"date"`
	Indicator string `json:"indicator"`
}

func (s *Server) handleReports(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		s.handleCreateReport(w, r)
	case http.MethodGet:
		reports, err := s.app.ListReports()
		if err != nil {
			s.writeAppError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toReportList(reports))
	default:
		methodNotAllowed(w)
	}
}

func (s *Server) handleCreateReport(w http.ResponseWriter, r *http.Request) {
	if !s.allow(w, r) {
		return
	}
	var req createReportRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.UserID == "" {
		writeError(w, http.StatusBadRequest, "userid is required")
		return
	}
	if req.Title == "" {
		writeError(w, http.StatusBadRequest, "title is required")
		return
	}
	report, err := s.app.CreateReport(app.CreateReportInput{
		UserID:     req.UserID,
		Title:      req.Title,
		Chapter:    req.Chapter,
		Indicator:  req.Indicator,
		Evaluation: req.Evaluation,
		Company:    req.Company,
		Date:       req.Date,
	})
	if err != nil {
		s.writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, report)
}

// handleReportSubtree serves /reports/{id}, /reports/{id}/dictionary,
// /reports/{id}/chat, and /reports/user/{userId}.
func (s *Server) handleReportSubtree(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/reports/")

	if rest, ok := strings.CutPrefix(path, "user/"); ok {
		if r.Method != http.MethodGet || rest == "" || strings.Contains(rest, "/") {
			methodNotAllowed(w)
			return
		}
		reports, err := s.app.ListReportsByUser(rest)
		if err != nil {
			s.writeAppError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toReportList(reports))
		return
	}

	idPart, sub, _ := strings.Cut(path, "/")
	id, err := strconv.Atoi(idPart)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid report id")
		return
	}

	switch sub {
	case "":
		s.handleReportByID(w, r, id)
	case "dictionary":
		if r.Method != http.MethodGet {
			methodNotAllowed(w)
			return
		}
		terms, err := s.app.ListTermsByReport(id)
		if err != nil {
			s.writeAppError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, terms)
	case "chat":
		if r.Method != http.MethodGet {
			methodNotAllowed(w)
			return
		}
		chats, err := s.app.ListChatHistory(id)
		if err != nil {
			s.writeAppError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, chats)
	default:
		http.NotFound(w, r)
	}
}

func (s *Server) handleReportByID(w http.ResponseWriter, r *http.Request, id int) {
	switch r.Method {
	case http.MethodGet:
		report, err := s.app.GetReport(id)
		if err != nil {
			s.writeAppError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, reportDetail{
			Title:     report.Title,
			Chapter:   report.Chapter,
			Content:   report.Content,
			Company:   report.Company,
			Date:      report.Date,
			Indicator: report.Indicator,
		})
	case http.MethodDelete:
		if err := s.app.DeleteReport(id); err != nil {
			s.writeAppError(w, err)
			return
		}
		w.WriteHeader(http.StatusOK)
	default:
		methodNotAllowed(w)
	}
}

type chatRequest struct {
	ReportID int    `json:"reportid"`
	Question string `json:"question"`
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	if !s.allow(w, r) {
		return
	}
	var req chatRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if strings.TrimSpace(req.Question) == "" {
		writeError(w, http.StatusBadRequest, "question is required")
		return
	}
	chat, err := s.app.AnswerTextQuestion(req.ReportID, req.Question)
	if err != nil {
		s.writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"answer": chat.Answer})
}

func (s *Server) handleChatSTT(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	if !s.allow(w, r) {
		return
	}
	if err := r.ParseMultipartForm(maxAudioFormSize); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	reportID, err := strconv.Atoi(r.FormValue("reportid"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid report id")
		return
	}

	audio, ok := readAudioFile(r)
	if !ok {
		writeError(w, http.StatusBadRequest, app.ErrAudioRequired.Error())
		return
	}
	chat, err := s.app.AnswerAudioQuestion(reportID, audio)
	if err != nil {
		s.writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"question": chat.Question,
		"answer":   chat.Answer,
	})
}

// readAudioFile buffers the uploaded audio into memory, forwarding the
// client-supplied filename and content type. A missing or unreadable part
// reads as "no audio"; the orchestrator turns that into a bad request.
func readAudioFile(r *http.Request) (analysis.AudioFile, bool) {
	file, header, err := r.FormFile("audio_file")
	if err != nil {
		return analysis.AudioFile{}, false
	}
	defer file.Close()
	data, err := io.ReadAll(file)
	if err != nil {
		return analysis.AudioFile{}, false
	}
	return analysis.AudioFile{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Data:        data,
	}, true
}

func (s *Server) handleNews(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	company := strings.TrimPrefix(r.URL.Path, "/news/")
	if company == "" || strings.Contains(company, "/") {
		http.NotFound(w, r)
		return
	}
	news, err := s.app.CompanyNews(company)
	if err != nil {
		s.writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, news)
}

func (s *Server) handleStocks(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	path := strings.TrimPrefix(r.URL.Path, "/stocks/")
	company, sub, _ := strings.Cut(path, "/")
	if company == "" {
		http.NotFound(w, r)
		return
	}
	switch sub {
	case "":
		stock, err := s.app.CompanyStock(company)
		if err != nil {
			s.writeAppError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, stock)
	case "chart-image":
		data, contentType, err := s.app.CompanyChartImage(company)
		if err != nil {
			s.writeAppError(w, err)
			return
		}
		w.Header().Set("Content-Type", contentType)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(data)
	default:
		http.NotFound(w, r)
	}
}

// allow applies the fixed-window limit to generation endpoints.
func (s *Server) allow(w http.ResponseWriter, r *http.Request) bool {
	if s.limiter == nil {
		return true
	}
	if s.limiter.Allow(clientIP(r)) {
		return true
	}
	writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
	return false
}

// writeAppError maps orchestration failures to HTTP statuses. Internal
// failures are logged and reported with a generic message only.
func (s *Server) writeAppError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, app.ErrUserNotFound), errors.Is(err, app.ErrReportNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, app.ErrAudioRequired):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, app.ErrInvalidCredential):
		writeError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, app.ErrUserExists):
		writeError(w, http.StatusConflict, err.Error())
	default:
		var upstreamErr *app.UpstreamError
		if errors.As(err, &upstreamErr) {
			writeError(w, http.StatusBadGateway, upstreamErr.Error())
			return
		}
		slog.Error("internal error", "err", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func toReportList(reports []domain.Report) []reportListItem {
	items := make([]reportListItem, 0, len(reports))
	for _, report := range reports {
		items = append(items, reportListItem{ReportID: report.ID, Title: report.Title})
	}
	return items
}

func decodeJSON(r *http.Request, out any) error {
	return json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(out)
}

func methodNotAllowed(w http.ResponseWriter) {
	writeError(w, http.StatusMethodNotAllowed, "method not allowed")
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
