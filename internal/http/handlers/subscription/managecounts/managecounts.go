// Package managecounts реализует HTTP-обработчик админской сверки
// счётчиков квот пользователя.
package managecounts

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/marketplace-backend/internal/http/response"
	"github.com/magabrotheeeer/marketplace-backend/internal/lib/sl"
	"github.com/magabrotheeeer/marketplace-backend/internal/models"
)

// Handler управляет HTTP-запросами на сверку счётчиков квот.
type Handler struct {
	log     *slog.Logger // Логгер для записи информации и ошибок
	service Service      // Сервис жизненного цикла подписок
}

// Service описывает интерфейс бизнес-логики сверки счётчиков.
type Service interface {
	ManageCounts(ctx context.Context, targetUID string) (models.EntitlementCounters, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Сверить счётчики квот пользователя
// @Description Пересчитывает снимок квот из тарифа и статуса текущей подписки; без действующей подписки счётчики обнуляются. Только для админа.
// @Tags Subscriptions
// @Produce  json
// @Param uid path string true "Идентификатор пользователя"
// @Success 200 {object} response.Response "Счётчики после сверки"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 403 {object} response.ErrorResponse "Цель — админская учётная запись"
// @Failure 404 {object} response.ErrorResponse "Пользователь не найден"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Security BearerAuth
// @Router /subscriptions/{uid}/counts [put]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.subscription.managecounts"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	targetUID := chi.URLParam(r, "uid")
	if targetUID == "" {
		log.Error("target uid is empty")
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("user uid is required"))
		return
	}

	counters, err := h.service.ManageCounts(r.Context(), targetUID)
	if err != nil {
		log.Error("failed to reconcile entitlement", sl.Err(err))
		status, resp := response.FromAppError(err)
		w.WriteHeader(status)
		render.JSON(w, r, resp)
		return
	}

	log.Info("entitlement reconciled", slog.String("target_uid", targetUID))
	render.JSON(w, r, response.StatusOKWithData(counters))
}
