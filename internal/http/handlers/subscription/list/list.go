// Package list реализует HTTP-обработчик выдачи истории подписок.
package list

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/marketplace-backend/internal/http/middlewarectx"
	"github.com/magabrotheeeer/marketplace-backend/internal/http/response"
	"github.com/magabrotheeeer/marketplace-backend/internal/lib/sl"
	"github.com/magabrotheeeer/marketplace-backend/internal/models"
)

const (
	defaultLimit = 50
	maxLimit     = 200
)

// Handler управляет HTTP-запросами на чтение истории подписок.
type Handler struct {
	log     *slog.Logger // Логгер для записи информации и ошибок
	service Service      // Сервис жизненного цикла подписок
}

// Service описывает интерфейс бизнес-логики чтения истории подписок.
type Service interface {
	List(ctx context.Context, userUID, role string, limit, offset int) ([]*models.Subscription, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Получить историю подписок
// @Description Возвращает записи подписок: админ видит все с пагинацией, остальные роли — только свои.
// @Tags Subscriptions
// @Produce  json
// @Param limit query int false "Максимум записей (только для админа)"
// @Param offset query int false "Смещение выборки (только для админа)"
// @Success 200 {object} response.Response "Список подписок"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Security BearerAuth
// @Router /subscriptions/list [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.subscription.list"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	userUID, okUID := r.Context().Value(middlewarectx.UserUID).(string)
	role, okRole := r.Context().Value(middlewarectx.Role).(string)
	if !okUID || userUID == "" || !okRole || role == "" {
		log.Error("user identity not found in context")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	limit := parseQueryInt(r, "limit", defaultLimit)
	if limit < 1 || limit > maxLimit {
		limit = defaultLimit
	}
	offset := parseQueryInt(r, "offset", 0)
	if offset < 0 {
		offset = 0
	}

	entries, err := h.service.List(r.Context(), userUID, role, limit, offset)
	if err != nil {
		log.Error("failed to list subscriptions", sl.Err(err))
		status, resp := response.FromAppError(err)
		w.WriteHeader(status)
		render.JSON(w, r, resp)
		return
	}

	views := make([]models.SubscriptionView, 0, len(entries))
	for _, entry := range entries {
		views = append(views, entry.View())
	}

	log.Info("subscriptions listed", slog.Int("count", len(views)))
	render.JSON(w, r, response.StatusOKWithData(views))
}

func parseQueryInt(r *http.Request, key string, def int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return def
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return value
}
