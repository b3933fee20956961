package handlers

import (
	"net/http"
	"time"

	"github.com/mini-rodalies-3d/metrograph/internal/pipeline"
)

// HealthResponse is the JSON response for GET /health
type HealthResponse struct {
	Status    string    `json:"status"`
	Nodes     int       `json:"nodes"`
	Edges     int       `json:"edges"`
	BuiltAt   time.Time `json:"builtAt"`
	Timestamp time.Time `json:"timestamp"`
}

// Health handles GET /health. The graph is built before the server starts, so a
// running server always has one.
func Health(res *pipeline.Result) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, HealthResponse{
			Status:    "ok",
			Nodes:     res.Graph.Len(),
			Edges:     res.Graph.EdgeCount(),
			BuiltAt:   res.BuiltAt,
			Timestamp: time.Now().UTC(),
		})
	}
}
