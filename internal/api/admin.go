package api

import (
	"net/http"

	"github.com/luozhiheng/mingde-site/internal/conversation"
	"github.com/luozhiheng/mingde-site/pkg/utils"
)

type Admin struct{ store *conversation.MemoryStore }

func NewAdmin(store *conversation.MemoryStore) *Admin { return &Admin{store: store} }

// ClearConversations POST /admin/api/conversations/clear drops all live
// consultant sessions. Reached only behind the admin gate.
func (a *Admin) ClearConversations(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	a.store.Reset()
	utils.JSON(w, http.StatusOK, map[string]any{"ok": true})
}
