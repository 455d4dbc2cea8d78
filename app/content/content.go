package content

import (
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"path"
	"sort"
	"strings"

	"github.com/labstack/echo/v4"
	"gopkg.in/yaml.v3"
)

//go:embed pages/*.yaml
var pagesFS embed.FS

//go:embed templates/*.html
var templatesFS embed.FS

var ErrPageNotFound = errors.New("page not found")

type Page struct {
	Slug          string     `yaml:"-" json:"slug"`
	Title         string     `yaml:"title" json:"title"`
	Subtitle      string     `yaml:"subtitle,omitempty" json:"subtitle,omitempty"`
	LastUpdated   string     `yaml:"last_updated,omitempty" json:"last_updated,omitempty"`
	EffectiveDate string     `yaml:"effective_date,omitempty" json:"effective_date,omitempty"`
	Notice        *Callout   `yaml:"notice,omitempty" json:"notice,omitempty"`
	Sections      []Section  `yaml:"sections,omitempty" json:"sections,omitempty"`
	Categories    []Category `yaml:"categories,omitempty" json:"categories,omitempty"`
	QuickLinks    []Link     `yaml:"quick_links,omitempty" json:"quick_links,omitempty"`
	Stats         []Stat     `yaml:"stats,omitempty" json:"stats,omitempty"`
	Features      []Feature  `yaml:"features,omitempty" json:"features,omitempty"`
	Channels      []Channel  `yaml:"channels,omitempty" json:"channels,omitempty"`
	FAQs          []FAQ      `yaml:"faqs,omitempty" json:"faqs,omitempty"`
	Closing       *Callout   `yaml:"closing,omitempty" json:"closing,omitempty"`
}

type Callout struct {
	Title string `yaml:"title" json:"title"`
	Text  string `yaml:"text" json:"text"`
	Href  string `yaml:"href,omitempty" json:"href,omitempty"`
}

type Section struct {
	Title   string  `yaml:"title" json:"title"`
	Content []Block `yaml:"content" json:"content"`
}

// Block is a paragraph or a titled group with optional text and bullet list.
type Block struct {
	Subtitle string   `yaml:"subtitle,omitempty" json:"subtitle,omitempty"`
	Text     string   `yaml:"text,omitempty" json:"text,omitempty"`
	List     []string `yaml:"list,omitempty" json:"list,omitempty"`
}

// UnmarshalYAML accepts either a bare string paragraph or a mapping.
func (b *Block) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		b.Text = node.Value
		return nil
	}
	type plain Block
	var decoded plain
	if err := node.Decode(&decoded); err != nil {
		return err
	}
	*b = Block(decoded)
	return nil
}

type Category struct {
	Title       string   `yaml:"title" json:"title"`
	Description string   `yaml:"description" json:"description"`
	Articles    []string `yaml:"articles" json:"articles"`
}

type Link struct {
	Title       string `yaml:"title" json:"title"`
	Href        string `yaml:"href" json:"href"`
	Description string `yaml:"description" json:"description"`
}

type Stat struct {
	Number string `yaml:"number" json:"number"`
	Label  string `yaml:"label" json:"label"`
}

type Feature struct {
	Title       string `yaml:"title" json:"title"`
	Description string `yaml:"description" json:"description"`
}

type Channel struct {
	Platform    string `yaml:"platform" json:"platform"`
	Description string `yaml:"description" json:"description"`
	Href        string `yaml:"href" json:"href"`
}

type FAQ struct {
	Question string `yaml:"question" json:"question"`
	Answer   string `yaml:"answer" json:"answer"`
}

// View is the data handed to page templates.
type View struct {
	Brand string
	Page  *Page
}

func (v View) Title() string    { return v.Page.Title }
func (v View) Subtitle() string { return v.Page.Subtitle }

type Library struct {
	brand     string
	pages     map[string]*Page
	templates *template.Template
}

// Load parses the embedded pages and templates.
func Load(brand string) (*Library, error) {
	pages, err := fs.Sub(pagesFS, "pages")
	if err != nil {
		return nil, err
	}
	return LoadFS(brand, pages, templatesFS)
}

func LoadFS(brand string, pages fs.FS, templates fs.FS) (*Library, error) {
	tmpl, err := template.ParseFS(templates, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}

	files, err := fs.Glob(pages, "*.yaml")
	if err != nil {
		return nil, err
	}

	lib := &Library{brand: brand, pages: make(map[string]*Page, len(files)), templates: tmpl}
	for _, file := range files {
		raw, err := fs.ReadFile(pages, file)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", file, err)
		}
		var page Page
		if err := yaml.Unmarshal(raw, &page); err != nil {
			return nil, fmt.Errorf("decode %s: %w", file, err)
		}
		page.Slug = strings.TrimSuffix(path.Base(file), path.Ext(file))
		if lib.templates.Lookup(page.Slug) == nil {
			return nil, fmt.Errorf("page %s has no template", page.Slug)
		}
		lib.pages[page.Slug] = &page
	}

	return lib, nil
}

func (l *Library) Page(slug string) (*Page, error) {
	page, ok := l.pages[strings.ToLower(strings.TrimSpace(slug))]
	if !ok {
		return nil, ErrPageNotFound
	}
	return page, nil
}

func (l *Library) Slugs() []string {
	slugs := make([]string, 0, len(l.pages))
	for slug := range l.pages {
		slugs = append(slugs, slug)
	}
	sort.Strings(slugs)
	return slugs
}

// Render implements echo.Renderer. name is the page slug.
func (l *Library) Render(w io.Writer, name string, _ interface{}, _ echo.Context) error {
	page, err := l.Page(name)
	if err != nil {
		return err
	}
	return l.templates.ExecuteTemplate(w, page.Slug, View{Brand: l.brand, Page: page})
}
