package httpserver

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	gamification "aralify/contexts/learning-experience/gamification-service"
	gamificationerrors "aralify/contexts/learning-experience/gamification-service/domain/errors"
	gamificationhttp "aralify/contexts/learning-experience/gamification-service/transport/http"
	_ "aralify/internal/platform/httpserver/docs"

	httpSwagger "github.com/swaggo/http-swagger"
)

type Server struct {
	mux           *http.ServeMux
	logger        *slog.Logger
	addr          string
	gamification  gamification.Module
	enableSwagger bool
}

func New(
	gamificationModule gamification.Module,
	logger *slog.Logger,
	addr string,
	enableSwagger bool,
) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if addr == "" {
		addr = ":8080"
	}

	s := &Server{
		mux:           http.NewServeMux(),
		logger:        logger,
		addr:          addr,
		gamification:  gamificationModule,
		enableSwagger: enableSwagger,
	}
	s.registerRoutes()
	return s
}

func (s *Server) Start() error {
	s.logger.Info("http server starting",
		"event", "http_server_starting",
		"module", "internal/platform/httpserver",
		"layer", "platform",
		"addr", s.addr,
	)
	return http.ListenAndServe(s.addr, s.mux)
}

func (s *Server) Handler() http.Handler {
	return s.mux
}

func (s *Server) registerRoutes() {
	if s.enableSwagger {
		s.mux.Handle("/swagger/", httpSwagger.Handler(
			httpSwagger.URL("/swagger/doc.json"),
		))
	}

	s.mux.HandleFunc("POST /api/gamification/v1/lessons/complete", s.handleCompleteLesson)
	s.mux.HandleFunc("POST /api/gamification/v1/quizzes/complete", s.handleCompleteQuiz)
	s.mux.HandleFunc("POST /api/gamification/v1/challenges/complete", s.handleCompleteChallenge)
	s.mux.HandleFunc("POST /api/gamification/v1/daily-bonus/claim", s.handleClaimDailyBonus)
	s.mux.HandleFunc("GET /api/gamification/v1/users/{user_id}/streak", s.handleGetStreak)
	s.mux.HandleFunc("GET /api/gamification/v1/users/{user_id}/profile", s.handleGetProfile)
	s.mux.HandleFunc("GET /api/gamification/v1/users/{user_id}/achievements", s.handleListAchievements)
	s.mux.HandleFunc("GET /api/gamification/v1/users/{user_id}/badges", s.handleListBadges)
	s.mux.HandleFunc("PUT /api/gamification/v1/users/{user_id}/badges/{badge_id}/display", s.handleSetBadgeDisplay)
	s.mux.HandleFunc("GET /api/gamification/v1/users/{user_id}/transactions", s.handleListTransactions)
	s.mux.HandleFunc("POST /api/gamification/v1/badges/grant", s.handleGrantBadge)
	s.mux.HandleFunc("GET /api/gamification/v1/leaderboard", s.handleLeaderboard)
	s.mux.HandleFunc("GET /api/gamification/v1/levels", s.handleLevelSystem)
}

func (s *Server) handleCompleteLesson(w http.ResponseWriter, r *http.Request) {
	var req gamificationhttp.CompleteLessonRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeGamificationError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.gamification.Handler.CompleteLessonHandler(r.Context(), req)
	if err != nil {
		writeGamificationDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCompleteQuiz(w http.ResponseWriter, r *http.Request) {
	var req gamificationhttp.CompleteQuizRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeGamificationError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.gamification.Handler.CompleteQuizHandler(r.Context(), req)
	if err != nil {
		writeGamificationDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCompleteChallenge(w http.ResponseWriter, r *http.Request) {
	var req gamificationhttp.CompleteChallengeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeGamificationError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.gamification.Handler.CompleteChallengeHandler(r.Context(), req)
	if err != nil {
		writeGamificationDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleClaimDailyBonus(w http.ResponseWriter, r *http.Request) {
	var req gamificationhttp.ClaimDailyBonusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeGamificationError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	if strings.TrimSpace(req.UserID) == "" {
		req.UserID = r.Header.Get("X-User-Id")
	}
	resp, err := s.gamification.Handler.ClaimDailyBonusHandler(r.Context(), req)
	if err != nil {
		writeGamificationDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetStreak(w http.ResponseWriter, r *http.Request) {
	resp, err := s.gamification.Handler.GetStreakHandler(r.Context(), r.PathValue("user_id"))
	if err != nil {
		writeGamificationDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	resp, err := s.gamification.Handler.GetProfileHandler(r.Context(), r.PathValue("user_id"))
	if err != nil {
		writeGamificationDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleListAchievements(w http.ResponseWriter, r *http.Request) {
	resp, err := s.gamification.Handler.ListAchievementsHandler(
		r.Context(),
		r.PathValue("user_id"),
		r.URL.Query().Get("category"),
	)
	if err != nil {
		writeGamificationDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleListBadges(w http.ResponseWriter, r *http.Request) {
	resp, err := s.gamification.Handler.ListBadgesHandler(r.Context(), r.PathValue("user_id"))
	if err != nil {
		writeGamificationDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSetBadgeDisplay(w http.ResponseWriter, r *http.Request) {
	var req gamificationhttp.SetBadgeDisplayRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeGamificationError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.gamification.Handler.SetBadgeDisplayHandler(
		r.Context(),
		r.PathValue("user_id"),
		r.PathValue("badge_id"),
		req,
	)
	if err != nil {
		writeGamificationDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if limitRaw := r.URL.Query().Get("limit"); limitRaw != "" {
		parsed, err := strconv.Atoi(limitRaw)
		if err != nil {
			writeGamificationError(w, http.StatusBadRequest, "invalid_limit", "limit must be an integer")
			return
		}
		limit = parsed
	}
	resp, err := s.gamification.Handler.ListTransactionsHandler(r.Context(), r.PathValue("user_id"), limit)
	if err != nil {
		writeGamificationDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGrantBadge(w http.ResponseWriter, r *http.Request) {
	adminID := r.Header.Get("X-Admin-Id")
	if strings.TrimSpace(adminID) == "" {
		writeGamificationError(w, http.StatusUnauthorized, "missing_admin", "X-Admin-Id header is required")
		return
	}

	var req gamificationhttp.GrantBadgeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeGamificationError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.gamification.Handler.GrantBadgeHandler(r.Context(), req)
	if err != nil {
		writeGamificationDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	limit := 0
	offset := 0
	if limitRaw := query.Get("limit"); limitRaw != "" {
		parsed, err := strconv.Atoi(limitRaw)
		if err != nil {
			writeGamificationError(w, http.StatusBadRequest, "invalid_limit", "limit must be an integer")
			return
		}
		limit = parsed
	}
	if offsetRaw := query.Get("offset"); offsetRaw != "" {
		parsed, err := strconv.Atoi(offsetRaw)
		if err != nil {
			writeGamificationError(w, http.StatusBadRequest, "invalid_offset", "offset must be an integer")
			return
		}
		offset = parsed
	}
	resp, err := s.gamification.Handler.GetLeaderboardHandler(r.Context(), limit, offset)
	if err != nil {
		writeGamificationDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleLevelSystem(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.gamification.Handler.GetLevelSystemHandler(r.Context()))
}

func writeGamificationDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, gamificationerrors.ErrInvalidInput):
		writeGamificationError(w, http.StatusBadRequest, "invalid_request", err.Error())
	case errors.Is(err, gamificationerrors.ErrUserNotFound):
		writeGamificationError(w, http.StatusNotFound, "user_not_found", err.Error())
	case errors.Is(err, gamificationerrors.ErrAchievementNotFound):
		writeGamificationError(w, http.StatusNotFound, "achievement_not_found", err.Error())
	case errors.Is(err, gamificationerrors.ErrBadgeNotFound):
		writeGamificationError(w, http.StatusNotFound, "badge_not_found", err.Error())
	case errors.Is(err, gamificationerrors.ErrBadgeNotOwned):
		writeGamificationError(w, http.StatusNotFound, "badge_not_owned", err.Error())
	case errors.Is(err, gamificationerrors.ErrDisplayCapReached):
		writeGamificationError(w, http.StatusConflict, "display_cap_reached", err.Error())
	case errors.Is(err, gamificationerrors.ErrInvariantViolation):
		writeGamificationError(w, http.StatusConflict, "conflict", err.Error())
	default:
		writeGamificationError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func writeGamificationError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, gamificationhttp.ErrorResponse{
		Code:    code,
		Message: message,
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
