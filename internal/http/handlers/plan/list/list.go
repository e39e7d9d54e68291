// Package list реализует HTTP-обработчик выдачи каталога планов.
//
// Каталог отдаётся с учётом роли запрашивающего: админ видит все типы
// аккаунтов, реселлер — только свой. У владельца магазина пути к
// каталогу нет.
package list

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/marketplace-backend/internal/http/middlewarectx"
	"github.com/magabrotheeeer/marketplace-backend/internal/http/response"
	"github.com/magabrotheeeer/marketplace-backend/internal/lib/sl"
	"github.com/magabrotheeeer/marketplace-backend/internal/models"
)

// Handler управляет HTTP-запросами на чтение каталога планов.
type Handler struct {
	log     *slog.Logger // Логгер для записи информации и ошибок
	service Service      // Сервис каталога планов
}

// Service описывает интерфейс бизнес-логики каталога планов.
type Service interface {
	List(ctx context.Context, requesterRole string) ([]*models.Plan, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Получить каталог планов
// @Description Возвращает каталог тарифов, сгруппированный по типу аккаунта. Доступно админу и реселлеру.
// @Tags Plans
// @Produce  json
// @Success 200 {object} response.Response "Каталог планов"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 403 {object} response.ErrorResponse "Роль не допускает операцию"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Security BearerAuth
// @Router /plans [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.plan.list"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	role, ok := r.Context().Value(middlewarectx.Role).(string)
	if !ok || role == "" {
		log.Error("role not found in context")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	plans, err := h.service.List(r.Context(), role)
	if err != nil {
		log.Error("failed to list plans", sl.Err(err))
		status, resp := response.FromAppError(err)
		w.WriteHeader(status)
		render.JSON(w, r, resp)
		return
	}

	log.Info("plans listed", slog.Int("count", len(plans)))
	render.JSON(w, r, response.StatusOKWithData(models.GroupPlans(plans)))
}
