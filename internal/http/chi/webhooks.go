package chi

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/marcelsud/webhook-dispatch/delivery"
	"github.com/marcelsud/webhook-dispatch/webhook"
)

/* HTTP layer DTOs for the subscription API
 * Separate from domain entities to avoid leaking internal structure
 */

type subscriptionRequest struct {
	ID          string            `json:"id,omitempty"`
	URL         string            `json:"url"`
	Events      []string          `json:"events"`
	Secret      string            `json:"secret,omitempty"`
	Active      *bool             `json:"active,omitempty"`
	Description string            `json:"description,omitempty"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}

type patchRequest struct {
	URL         *string           `json:"url,omitempty"`
	Events      []string          `json:"events,omitempty"`
	Secret      *string           `json:"secret,omitempty"`
	Active      *bool             `json:"active,omitempty"`
	Description *string           `json:"description,omitempty"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}

type subscriptionResponse struct {
	ID            string            `json:"id"`
	URL           string            `json:"url"`
	Events        []string          `json:"events"`
	Secret        string            `json:"secret,omitempty"`
	Active        bool              `json:"active"`
	Description   string            `json:"description,omitempty"`
	Metadata      map[string]string `json:"metadata,omitempty"`
	CreatedAt     time.Time         `json:"created_at"`
	UpdatedAt     time.Time         `json:"updated_at"`
	DeliveryCount int64             `json:"delivery_count"`
	FailureCount  int64             `json:"failure_count"`
	LastTriggered *time.Time        `json:"last_triggered,omitempty"`
}

type deleteResponse struct {
	ID      string `json:"id"`
	Deleted bool   `json:"deleted"`
}

func (p patchRequest) toPatch() webhook.Patch {
	return webhook.Patch{
		URL:         p.URL,
		Events:      p.Events,
		Secret:      p.Secret,
		Active:      p.Active,
		Description: p.Description,
		Metadata:    p.Metadata,
	}
}

// toResponse converts a subscription; the secret is included only when withSecret is set
func toResponse(sub webhook.Subscription, withSecret bool) subscriptionResponse {
	resp := subscriptionResponse{
		ID:            sub.ID,
		URL:           sub.URL,
		Events:        sub.Events,
		Active:        sub.Active,
		Description:   sub.Description,
		Metadata:      sub.Metadata,
		CreatedAt:     sub.CreatedAt,
		UpdatedAt:     sub.UpdatedAt,
		DeliveryCount: sub.DeliveryCount,
		FailureCount:  sub.FailureCount,
	}
	if withSecret {
		resp.Secret = sub.Secret
	}
	if !sub.LastTriggered.IsZero() {
		t := sub.LastTriggered
		resp.LastTriggered = &t
	}
	return resp
}

// postWebhook handles POST /v1/webhooks
func postWebhook(service webhook.UseCase) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req subscriptionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeMessage(w, http.StatusBadRequest, "invalid request body")
			return
		}

		active := true
		if req.Active != nil {
			active = *req.Active
		}

		sub, err := service.Register(r.Context(), webhook.Subscription{
			ID:          req.ID,
			URL:         req.URL,
			Events:      req.Events,
			Secret:      req.Secret,
			Active:      active,
			Description: req.Description,
			Metadata:    req.Metadata,
		})
		if err != nil {
			writeError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, toResponse(sub, true))
	})
}

// getWebhooks handles GET /v1/webhooks?active=&event=
func getWebhooks(service webhook.UseCase) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		filter := webhook.ListFilter{
			Event: r.URL.Query().Get("event"),
		}
		if raw := r.URL.Query().Get("active"); raw != "" {
			active, err := strconv.ParseBool(raw)
			if err != nil {
				writeMessage(w, http.StatusBadRequest, "active must be a boolean")
				return
			}
			filter.Active = &active
		}

		subs, err := service.List(r.Context(), filter)
		if err != nil {
			writeError(w, err)
			return
		}

		resp := make([]subscriptionResponse, 0, len(subs))
		for _, sub := range subs {
			resp = append(resp, toResponse(sub, false))
		}
		writeJSON(w, http.StatusOK, resp)
	})
}

// getWebhook handles GET /v1/webhooks/{id}
func getWebhook(service webhook.UseCase) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sub, err := service.Get(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toResponse(sub, false))
	})
}

// patchWebhook handles PATCH /v1/webhooks/{id}
func patchWebhook(service webhook.UseCase) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req patchRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeMessage(w, http.StatusBadRequest, "invalid request body")
			return
		}

		sub, err := service.Update(r.Context(), chi.URLParam(r, "id"), req.toPatch())
		if err != nil {
			writeError(w, err)
			return
		}

		// A rotated secret is shown once, like on registration
		writeJSON(w, http.StatusOK, toResponse(sub, req.Secret != nil))
	})
}

// deleteWebhook handles DELETE /v1/webhooks/{id}
func deleteWebhook(service webhook.UseCase) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		if err := service.Delete(r.Context(), id); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, deleteResponse{ID: id, Deleted: true})
	})
}

// testWebhook handles POST /v1/webhooks/{id}/test
func testWebhook(tester delivery.WebhookTester) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		result, err := tester.Test(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, result)
	})
}
