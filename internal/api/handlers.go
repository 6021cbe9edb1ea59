package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/luozhiheng/mingde-site/internal/buildinfo"
	"github.com/luozhiheng/mingde-site/internal/prompts"
	"github.com/luozhiheng/mingde-site/internal/relay"
	"github.com/luozhiheng/mingde-site/pkg/utils"
)

type Handlers struct {
	log     *slog.Logger
	relay   *relay.Handler
	prompts *prompts.Registry
	Admin   *Admin
}

func NewHandlers(log *slog.Logger, rl *relay.Handler, reg *prompts.Registry) *Handlers {
	return &Handlers{
		log:     log,
		relay:   rl,
		prompts: reg,
	}
}

// Health is a basic liveness endpoint.
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	res := map[string]any{
		"status":    true,
		"message":   "mingde-site",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}
	utils.JSON(w, http.StatusOK, res)
}

func (h *Handlers) Version(w http.ResponseWriter, r *http.Request) {
	res := map[string]any{
		"version":  buildinfo.Version,
		"commit":   buildinfo.Commit,
		"built_at": buildinfo.BuiltAt,
	}
	utils.JSON(w, http.StatusOK, res)
}

// Templates GET /api/ai/templates lists the scenario picker entries.
// System prompt text stays server-side.
func (h *Handlers) Templates(w http.ResponseWriter, r *http.Request) {
	list := h.prompts.List()
	out := make([]map[string]string, 0, len(list))
	for _, t := range list {
		out = append(out, map[string]string{
			"key":         t.Key,
			"title":       t.Title,
			"icon":        t.Icon,
			"description": t.Description,
		})
	}
	utils.JSON(w, http.StatusOK, map[string]any{"templates": out})
}
