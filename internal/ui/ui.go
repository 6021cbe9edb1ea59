package ui

import (
	"bytes"
	"context"
	"html/template"
	"log/slog"
	"net/http"
	"path/filepath"

	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	gmhtml "github.com/yuin/goldmark/renderer/html"

	"github.com/luozhiheng/mingde-site/internal/content"
	"github.com/luozhiheng/mingde-site/internal/conversation"
	"github.com/luozhiheng/mingde-site/internal/prompts"
	"github.com/luozhiheng/mingde-site/pkg/types"
)

// Consultant is the slice of the consultant service the UI depends on.
type Consultant interface {
	Send(ctx context.Context, history []types.Message, systemPrompt string) (types.Message, error)
}

type UI struct {
	log        *slog.Logger
	tpl        *template.Template
	consultant Consultant
	prompts    *prompts.Registry
	store      *conversation.MemoryStore
	lib        *content.Library
	md         goldmark.Markdown
	sanitizer  *bluemonday.Policy
}

func New(log *slog.Logger, c Consultant, reg *prompts.Registry, store *conversation.MemoryStore, lib *content.Library, templateDir string) (*UI, error) {
	t := template.New("root")
	var err error
	if t, err = t.ParseGlob(filepath.Join(templateDir, "*.html")); err != nil {
		return nil, err
	}
	if t, err = t.ParseGlob(filepath.Join(templateDir, "partials", "*.html")); err != nil {
		return nil, err
	}

	md := goldmark.New(
		goldmark.WithRendererOptions(gmhtml.WithUnsafe()),
		goldmark.WithExtensions(
			highlighting.NewHighlighting(
				highlighting.WithStyle("github"),
				highlighting.WithFormatOptions(
					chromahtml.WithLineNumbers(false),
				),
			),
		),
	)

	p := bluemonday.UGCPolicy()
	p.AllowAttrs("class").OnElements("code", "pre", "span")
	p.AllowAttrs("style").OnElements("span")

	return &UI{
		log:        log,
		tpl:        t,
		consultant: c,
		prompts:    reg,
		store:      store,
		lib:        lib,
		md:         md,
		sanitizer:  p,
	}, nil
}

// MsgView is one rendered chat bubble.
type MsgView struct {
	Role string
	HTML template.HTML
	At   string
}

func (u *UI) mdHTML(src string) template.HTML {
	var buf bytes.Buffer
	_ = u.md.Convert([]byte(src), &buf)
	safe := u.sanitizer.SanitizeBytes(buf.Bytes())
	return template.HTML(safe)
}

func (u *UI) render(w http.ResponseWriter, name string, data any, status int) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := u.tpl.ExecuteTemplate(w, name, data); err != nil {
		u.errTpl(w, err)
	}
}

func (u *UI) errTpl(w http.ResponseWriter, err error) {
	u.log.Error("template execute", "err", err)
	_, _ = w.Write([]byte("<pre>template error</pre>"))
}
