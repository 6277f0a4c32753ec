// Package http provides the HTTP handlers for the mailing-list API:
// subscribe, unsubscribe, health and metrics endpoints.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"quantum-digest/internal/domain/entity"
	"quantum-digest/internal/handler/http/respond"
	"quantum-digest/internal/usecase/subscription"
)

// SubscriptionService is the slice of the subscription usecase the
// handlers need.
type SubscriptionService interface {
	Subscribe(ctx context.Context, email string) (subscription.Status, error)
	Unsubscribe(ctx context.Context, token string) (string, error)
}

type subscribeRequest struct {
	Email string `json:"email"`
}

type subscribeResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// SubscribeHandler handles POST /subscribe. A duplicate address is a
// 200 with status "exists", not an error: the reader's intent is
// satisfied either way.
func SubscribeHandler(svc SubscriptionService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req subscribeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respond.Error(w, http.StatusBadRequest, errors.New("invalid request body"))
			return
		}

		status, err := svc.Subscribe(r.Context(), req.Email)
		if err != nil {
			var validationErr *entity.ValidationError
			if errors.As(err, &validationErr) {
				respond.SafeError(w, http.StatusBadRequest, err)
				return
			}
			respond.SafeError(w, http.StatusInternalServerError, err)
			return
		}

		switch status {
		case subscription.StatusExists:
			respond.JSON(w, http.StatusOK, subscribeResponse{
				Status:  string(status),
				Message: "already subscribed",
			})
		default:
			respond.JSON(w, http.StatusCreated, subscribeResponse{
				Status:  string(status),
				Message: "subscription confirmed",
			})
		}
	}
}

type unsubscribeResponse struct {
	Status string `json:"status"`
	Email  string `json:"email"`
}

// UnsubscribeHandler handles GET /unsubscribe?token=... from newsletter
// footer links.
func UnsubscribeHandler(svc SubscriptionService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := r.URL.Query().Get("token")
		if token == "" {
			respond.Error(w, http.StatusBadRequest, errors.New("token is required"))
			return
		}

		email, err := svc.Unsubscribe(r.Context(), token)
		switch {
		case errors.Is(err, subscription.ErrInvalidToken):
			respond.Error(w, http.StatusBadRequest, err)
		case errors.Is(err, entity.ErrNotFound):
			respond.SafeError(w, http.StatusNotFound, errors.New("subscription not found"))
		case err != nil:
			respond.SafeError(w, http.StatusInternalServerError, err)
		default:
			slog.Info("unsubscribe confirmed", slog.String("email", email))
			respond.JSON(w, http.StatusOK, unsubscribeResponse{
				Status: "unsubscribed",
				Email:  email,
			})
		}
	}
}
