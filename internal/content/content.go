package content

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/BurntSushi/toml"
)

// Teacher is one staff profile on the teachers page.
type Teacher struct {
	Name    string `toml:"name"`
	Subject string `toml:"subject"`
	Title   string `toml:"title"`
	Bio     string `toml:"bio"`
}

// Achievement is one entry on the achievements page.
type Achievement struct {
	Year        int    `toml:"year"`
	Title       string `toml:"title"`
	Description string `toml:"description"`
}

// Major is one entry in the majors reference the consultant page links to.
type Major struct {
	Name         string   `toml:"name"`
	Category     string   `toml:"category"`
	Description  string   `toml:"description"`
	Universities []string `toml:"universities"`
}

// Admissions is the structured admissions page content.
type Admissions struct {
	Intro   string   `toml:"intro"`
	Steps   []string `toml:"steps"`
	Phone   string   `toml:"phone"`
	Email   string   `toml:"email"`
	Address string   `toml:"address"`
	MapURL  string   `toml:"map_url"`
}

// Article is a news post: metadata from news.toml plus a markdown body
// loaded from news/<slug>.md.
type Article struct {
	Slug     string    `toml:"slug"`
	Title    string    `toml:"title"`
	Date     time.Time `toml:"date"`
	Summary  string    `toml:"summary"`
	Markdown string    `toml:"-"`
}

// Library holds all site content, read once at startup and immutable after.
type Library struct {
	teachers     []Teacher
	achievements []Achievement
	majors       []Major
	admissions   Admissions
	news         []Article
	bySlug       map[string]*Article
}

type teachersFile struct {
	Teachers []Teacher `toml:"teacher"`
}
type achievementsFile struct {
	Achievements []Achievement `toml:"achievement"`
}
type majorsFile struct {
	Majors []Major `toml:"major"`
}
type newsFile struct {
	Articles []Article `toml:"article"`
}

// Load reads the content directory. A missing optional dataset is an
// error: the pages are always linked from the nav, so half-loaded content
// would surface as broken pages at request time.
func Load(dir string) (*Library, error) {
	lib := &Library{bySlug: make(map[string]*Article)}

	var tf teachersFile
	if _, err := toml.DecodeFile(filepath.Join(dir, "teachers.toml"), &tf); err != nil {
		return nil, fmt.Errorf("loading teachers: %w", err)
	}
	lib.teachers = tf.Teachers

	var af achievementsFile
	if _, err := toml.DecodeFile(filepath.Join(dir, "achievements.toml"), &af); err != nil {
		return nil, fmt.Errorf("loading achievements: %w", err)
	}
	lib.achievements = af.Achievements

	var mf majorsFile
	if _, err := toml.DecodeFile(filepath.Join(dir, "majors.toml"), &mf); err != nil {
		return nil, fmt.Errorf("loading majors: %w", err)
	}
	lib.majors = mf.Majors

	if _, err := toml.DecodeFile(filepath.Join(dir, "admissions.toml"), &lib.admissions); err != nil {
		return nil, fmt.Errorf("loading admissions: %w", err)
	}

	var nf newsFile
	if _, err := toml.DecodeFile(filepath.Join(dir, "news.toml"), &nf); err != nil {
		return nil, fmt.Errorf("loading news index: %w", err)
	}
	for i := range nf.Articles {
		a := &nf.Articles[i]
		body, err := os.ReadFile(filepath.Join(dir, "news", a.Slug+".md"))
		if err != nil {
			return nil, fmt.Errorf("loading news body %s: %w", a.Slug, err)
		}
		a.Markdown = string(body)
	}
	lib.news = nf.Articles
	sort.SliceStable(lib.news, func(i, j int) bool { return lib.news[i].Date.After(lib.news[j].Date) })
	for i := range lib.news {
		lib.bySlug[lib.news[i].Slug] = &lib.news[i]
	}

	return lib, nil
}

func (l *Library) Teachers() []Teacher         { return l.teachers }
func (l *Library) Achievements() []Achievement { return l.achievements }
func (l *Library) Majors() []Major             { return l.majors }
func (l *Library) Admissions() Admissions      { return l.admissions }

// News returns articles newest first.
func (l *Library) News() []Article { return l.news }

// Article looks up a post by slug.
func (l *Library) Article(slug string) (Article, bool) {
	a, ok := l.bySlug[slug]
	if !ok {
		return Article{}, false
	}
	return *a, true
}
