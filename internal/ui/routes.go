package ui

import (
	"errors"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/luozhiheng/mingde-site/internal/consultant"
	"github.com/luozhiheng/mingde-site/internal/middleware"
	"github.com/luozhiheng/mingde-site/pkg/types"
)

func RegisterRoutes(mux *chi.Mux, u *UI) {
	mux.Get("/", u.Home)
	mux.Get("/about", u.About)
	mux.Get("/teachers", u.Teachers)
	mux.Get("/achievements", u.Achievements)
	mux.Get("/admissions", u.Admissions)
	mux.Get("/majors", u.Majors)
	mux.Get("/news", u.NewsList)
	mux.Get("/news/{slug}", u.NewsArticle)
	mux.Get("/contact", u.Contact)

	mux.Get("/consult", u.Consult)
	mux.Post("/ui/consult", u.ConsultPost)
	mux.Post("/ui/consult/template", u.SwitchTemplate)
	mux.Post("/ui/consult/new", u.NewSession)

	mux.Get("/admin/login", u.AdminLogin)
	mux.Post("/admin/login", u.AdminLoginPost)
	mux.Get("/admin/dashboard", u.AdminDashboard)
	mux.Post("/admin/logout", u.AdminLogout)
}

func (u *UI) Home(w http.ResponseWriter, r *http.Request) {
	news := u.lib.News()
	if len(news) > 3 {
		news = news[:3]
	}
	u.render(w, "home.html", map[string]any{
		"Title": "首页",
		"News":  news,
	}, http.StatusOK)
}

func (u *UI) About(w http.ResponseWriter, r *http.Request) {
	u.render(w, "about.html", map[string]any{"Title": "学校简介"}, http.StatusOK)
}

func (u *UI) Teachers(w http.ResponseWriter, r *http.Request) {
	u.render(w, "teachers.html", map[string]any{
		"Title":    "教师风采",
		"Teachers": u.lib.Teachers(),
	}, http.StatusOK)
}

func (u *UI) Achievements(w http.ResponseWriter, r *http.Request) {
	u.render(w, "achievements.html", map[string]any{
		"Title":        "办学成果",
		"Achievements": u.lib.Achievements(),
	}, http.StatusOK)
}

func (u *UI) Admissions(w http.ResponseWriter, r *http.Request) {
	u.render(w, "admissions.html", map[string]any{
		"Title":      "招生信息",
		"Admissions": u.lib.Admissions(),
	}, http.StatusOK)
}

func (u *UI) Majors(w http.ResponseWriter, r *http.Request) {
	u.render(w, "majors.html", map[string]any{
		"Title":  "专业资料库",
		"Majors": u.lib.Majors(),
	}, http.StatusOK)
}

func (u *UI) NewsList(w http.ResponseWriter, r *http.Request) {
	u.render(w, "news.html", map[string]any{
		"Title": "校园新闻",
		"News":  u.lib.News(),
	}, http.StatusOK)
}

func (u *UI) NewsArticle(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	a, ok := u.lib.Article(slug)
	if !ok {
		http.NotFound(w, r)
		return
	}
	u.render(w, "article.html", map[string]any{
		"Title":   a.Title,
		"Article": a,
		"Body":    u.mdHTML(a.Markdown),
	}, http.StatusOK)
}

func (u *UI) Contact(w http.ResponseWriter, r *http.Request) {
	u.render(w, "contact.html", map[string]any{
		"Title":      "联系我们",
		"Admissions": u.lib.Admissions(),
	}, http.StatusOK)
}

// Consult shows the consultant chat. Session via query: /consult?s=<id>.
// A visitor without one gets a fresh conversation; handing everyone a
// shared fallback id would leak one visitor's dialogue into another's page.
func (u *UI) Consult(w http.ResponseWriter, r *http.Request) {
	sid := strings.TrimSpace(r.URL.Query().Get("s"))
	if sid == "" {
		c := u.store.Create(u.prompts.Lookup("").Key)
		http.Redirect(w, r, "/consult?s="+c.ID, http.StatusFound)
		return
	}

	msgs, _ := u.store.History(sid)
	hist := make([]MsgView, 0, len(msgs))
	for _, m := range msgs {
		hist = append(hist, MsgView{Role: string(m.Role), HTML: u.mdHTML(m.Content)})
	}

	u.render(w, "consult.html", map[string]any{
		"Title":     "升学咨询",
		"SessionID": sid,
		"History":   hist,
		"Templates": u.prompts.List(),
		"Active":    u.store.TemplateKey(sid),
	}, http.StatusOK)
}

// ConsultPost returns *two fragments*: user bubble then assistant bubble.
func (u *UI) ConsultPost(w http.ResponseWriter, r *http.Request) {
	_ = r.ParseForm()
	msg := strings.TrimSpace(r.Form.Get("message"))
	sid := strings.TrimSpace(r.Form.Get("session_id"))
	if sid == "" || msg == "" {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	userMsg := types.NewUserMessage(msg)
	if err := u.store.Append(sid, userMsg); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	// Optimistically render the user bubble first
	if err := u.tpl.ExecuteTemplate(w, "message.html", MsgView{Role: "user", HTML: u.mdHTML(msg)}); err != nil {
		u.errTpl(w, err)
		return
	}

	history, _ := u.store.History(sid)
	system := u.prompts.Resolve(u.store.TemplateKey(sid))

	reply, err := u.consultant.Send(r.Context(), history, system)
	if err != nil {
		var re *consultant.RelayError
		if errors.As(err, &re) {
			u.log.Error("consult relay failed", "status", re.Status)
		} else {
			u.log.Error("consult send failed", "err", err)
		}
		_ = u.tpl.ExecuteTemplate(w, "message.html", MsgView{
			Role: "error",
			HTML: u.mdHTML("咨询服务暂时不可用，请稍后再试。"),
		})
		return
	}

	_ = u.store.Append(sid, reply)
	_ = u.tpl.ExecuteTemplate(w, "message.html", MsgView{
		Role: "assistant",
		HTML: u.mdHTML(reply.Content),
		At:   time.Now().Format("15:04"),
	})
}

// SwitchTemplate changes the active scenario for a session and returns the
// notification bubble recorded by the store.
func (u *UI) SwitchTemplate(w http.ResponseWriter, r *http.Request) {
	_ = r.ParseForm()
	sid := strings.TrimSpace(r.Form.Get("session_id"))
	if sid == "" {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	tpl := u.prompts.Lookup(r.Form.Get("template"))
	if err := u.store.SetTemplate(sid, tpl.Key); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	_ = u.tpl.ExecuteTemplate(w, "message.html", MsgView{
		Role: string(types.RoleSystemNote),
		HTML: u.mdHTML("已切换到「" + tpl.Title + "」场景"),
	})
}

// NewSession creates a fresh conversation and redirects to /consult?s=...
func (u *UI) NewSession(w http.ResponseWriter, r *http.Request) {
	c := u.store.Create(u.prompts.Lookup("").Key)
	url := "/consult?s=" + c.ID

	if r.Header.Get("HX-Request") == "true" {
		w.Header().Set("HX-Redirect", url)
		w.WriteHeader(http.StatusNoContent)
		return
	}
	http.Redirect(w, r, url, http.StatusFound)
}

func (u *UI) AdminLogin(w http.ResponseWriter, r *http.Request) {
	u.render(w, "admin_login.html", map[string]any{"Title": "管理登录"}, http.StatusOK)
}

// AdminLoginPost sets the gate cookie. Presence-only: anyone submitting the
// form gets flagged. The admin area holds nothing sensitive and the gate is
// documented as a placeholder, not access control.
func (u *UI) AdminLoginPost(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.AdminCookie,
		Value:    "true",
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, "/admin/dashboard", http.StatusFound)
}

func (u *UI) AdminLogout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:   middleware.AdminCookie,
		Value:  "",
		Path:   "/",
		MaxAge: -1,
	})
	http.Redirect(w, r, "/", http.StatusFound)
}

func (u *UI) AdminDashboard(w http.ResponseWriter, r *http.Request) {
	sessions := u.store.List()
	sort.SliceStable(sessions, func(i, j int) bool { return sessions[i].Updated.After(sessions[j].Updated) })

	u.render(w, "admin_dashboard.html", map[string]any{
		"Title":         "管理后台",
		"NewsCount":     len(u.lib.News()),
		"TeacherCount":  len(u.lib.Teachers()),
		"MajorCount":    len(u.lib.Majors()),
		"Conversations": sessions,
	}, http.StatusOK)
}
