package http

import (
	"context"
	"net/http"
	"time"

	"github.com/cmlabs-hris/hrm-core/internal/handler/http/response"
	"github.com/cmlabs-hris/hrm-core/internal/pkg/sse"
)

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type healthResponse struct {
	Status         string `json:"status"`
	Store          string `json:"store"`
	SSESubscribers int    `json:"sse_subscribers"`
}

// Health reports liveness together with store reachability.
func Health(store Pinger, hub *sse.Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		resp := healthResponse{Status: "ok", Store: "ok"}
		if hub != nil {
			resp.SSESubscribers = hub.TotalSubscribers()
		}
		if store != nil {
			if err := store.Ping(ctx); err != nil {
				resp.Status, resp.Store = "degraded", err.Error()
				response.ServiceUnavailable(w, resp)
				return
			}
		}
		response.Success(w, resp)
	}
}
