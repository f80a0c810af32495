package chi

import (
	"encoding/json"
	"net/http"

	"github.com/marcelsud/webhook-dispatch/delivery"
	"github.com/marcelsud/webhook-dispatch/eventtypes"
	"github.com/marcelsud/webhook-dispatch/metrics"
)

type eventRequest struct {
	Type     string         `json:"type"`
	Data     any            `json:"data"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

type eventTypeResponse struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// postEvent handles POST /v1/events
func postEvent(trigger delivery.EventTrigger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req eventRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeMessage(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if req.Type == "" {
			writeMessage(w, http.StatusBadRequest, "type is required")
			return
		}

		result, err := trigger.Trigger(r.Context(), req.Type, req.Data, req.Metadata)
		if err != nil {
			writeError(w, err)
			return
		}

		writeJSON(w, http.StatusAccepted, result)
	})
}

// getEventTypes handles GET /v1/event-types
func getEventTypes(catalog *eventtypes.Catalog) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		types := catalog.List()
		resp := make([]eventTypeResponse, 0, len(types))
		for _, et := range types {
			resp = append(resp, eventTypeResponse{Name: et.Name, Description: et.Description})
		}
		writeJSON(w, http.StatusOK, resp)
	})
}

// getStats handles GET /v1/stats
func getStats(reporter metrics.Reporter) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		stats, err := reporter.Collect(r.Context())
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, stats)
	})
}
