package site

import (
	"bytes"
	"fmt"
	"html/template"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"

	"github.com/ziadkadry99/sitekit/internal/content"
	"github.com/ziadkadry99/sitekit/internal/diagrams"
	"github.com/ziadkadry99/sitekit/internal/logging"
	"github.com/ziadkadry99/sitekit/internal/theme"
)

// Generator renders landing page content into a static bundle.
type Generator struct {
	Content   *content.Site
	OutputDir string
	// InitialMode seeds the data-theme attribute so the page does not flash
	// the wrong mode before script.js runs.
	InitialMode theme.Mode
	Logger      *slog.Logger
}

// NewGenerator creates a Generator for the given content and output directory.
func NewGenerator(site *content.Site, outputDir string) *Generator {
	return &Generator{
		Content:     site,
		OutputDir:   outputDir,
		InitialMode: theme.Default,
	}
}

// Bundle file names.
const (
	IndexFile    = "index.html"
	NotFoundFile = "404.html"
	StyleFile    = "style.css"
	ScriptFile   = "script.js"
	RobotsFile   = "robots.txt"
)

// pageData holds the data passed to the HTML template.
type pageData struct {
	Title    string
	Mode     theme.Mode
	Site     *content.Site
	Features []featureView
	Steps    []content.QuickStartStep
	Examples []exampleView
	Diagram  string
	NotFound bool
}

type featureView struct {
	content.Feature
	DescriptionHTML template.HTML
}

type exampleView struct {
	content.CodeExample
	DescriptionHTML template.HTML
	CodeHTML        template.HTML
	Active          bool
}

// Generate validates the content and writes the bundle. It returns the
// written files relative to OutputDir, in write order.
func (g *Generator) Generate() ([]string, error) {
	logger := logging.OrDiscard(g.Logger)
	if g.Content == nil {
		return nil, fmt.Errorf("no content to render")
	}
	if err := g.Content.Validate(); err != nil {
		return nil, err
	}
	mode := g.InitialMode
	if !mode.Valid() {
		mode = theme.Default
	}

	md := goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,
			highlighting.NewHighlighting(
				highlighting.WithStyle("github"),
			),
		),
		goldmark.WithRendererOptions(
			html.WithUnsafe(),
		),
	)

	tmpl, err := template.New("page").Funcs(template.FuncMap{
		"rootTag": rootTag,
	}).Parse(pageTemplate)
	if err != nil {
		return nil, fmt.Errorf("parsing page template: %w", err)
	}

	data := pageData{
		Title: g.Content.Title,
		Mode:  mode,
		Site:  g.Content,
		Steps: g.Content.QuickStart,
	}
	if data.Title == "" {
		data.Title = g.Content.Hero.Title
	}
	for _, f := range g.Content.Features {
		desc, err := renderMarkdown(md, f.Description)
		if err != nil {
			return nil, fmt.Errorf("rendering feature %s: %w", f.ID, err)
		}
		data.Features = append(data.Features, featureView{Feature: f, DescriptionHTML: desc})
	}
	active, _ := g.Content.ActiveExample("")
	for _, ex := range g.Content.CodeExamples {
		code, err := highlightCode(md, ex.Language, ex.Code)
		if err != nil {
			return nil, fmt.Errorf("highlighting example %s: %w", ex.ID, err)
		}
		desc, err := renderMarkdown(md, ex.Description)
		if err != nil {
			return nil, fmt.Errorf("rendering example %s: %w", ex.ID, err)
		}
		data.Examples = append(data.Examples, exampleView{
			CodeExample:     ex,
			DescriptionHTML: desc,
			CodeHTML:        code,
			Active:          ex.ID == active.ID,
		})
	}
	data.Diagram = architectureDiagram(g.Content.Architecture)

	if err := os.MkdirAll(g.OutputDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating output dir: %w", err)
	}

	var written []string
	write := func(name string, body []byte) error {
		if err := os.WriteFile(filepath.Join(g.OutputDir, name), body, 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", name, err)
		}
		logger.Debug("Wrote bundle file", logging.Path(name))
		written = append(written, name)
		return nil
	}

	for _, page := range []struct {
		name     string
		notFound bool
	}{
		{IndexFile, false},
		{NotFoundFile, true},
	} {
		data.NotFound = page.notFound
		var buf bytes.Buffer
		if err := tmpl.Execute(&buf, data); err != nil {
			return nil, fmt.Errorf("rendering %s: %w", page.name, err)
		}
		if err := write(page.name, buf.Bytes()); err != nil {
			return nil, err
		}
	}

	if err := write(StyleFile, []byte(cssContent)); err != nil {
		return nil, err
	}
	if err := write(ScriptFile, []byte(jsContent)); err != nil {
		return nil, err
	}
	if err := write(RobotsFile, []byte("User-agent: *\nAllow: /\n")); err != nil {
		return nil, err
	}

	logger.Info("Generated site", logging.Path(g.OutputDir), logging.Count(len(written)))
	return written, nil
}

// rootTag is the opening html element. The preview server rewrites it to
// match the live theme, so it must be rendered identically everywhere.
func rootTag(mode theme.Mode) template.HTML {
	if class := mode.Class(); class != "" {
		return template.HTML(fmt.Sprintf(`<html lang="en" data-theme="%s" class="%s">`, mode, class))
	}
	return template.HTML(fmt.Sprintf(`<html lang="en" data-theme="%s">`, mode))
}

// renderMarkdown converts a short markdown string, dropping the wrapping
// paragraph so it can sit inside other block elements.
func renderMarkdown(md goldmark.Markdown, src string) (template.HTML, error) {
	var buf bytes.Buffer
	if err := md.Convert([]byte(src), &buf); err != nil {
		return "", err
	}
	out := strings.TrimSpace(buf.String())
	if strings.HasPrefix(out, "<p>") && strings.HasSuffix(out, "</p>") && strings.Count(out, "<p>") == 1 {
		out = strings.TrimSuffix(strings.TrimPrefix(out, "<p>"), "</p>")
	}
	return template.HTML(out), nil
}

// highlightCode renders code as a fenced block so goldmark-highlighting
// colors it.
func highlightCode(md goldmark.Markdown, language, code string) (template.HTML, error) {
	fence := "```"
	for strings.Contains(code, fence) {
		fence += "`"
	}
	src := fence + language + "\n" + code + "\n" + fence + "\n"
	var buf bytes.Buffer
	if err := md.Convert([]byte(src), &buf); err != nil {
		return "", err
	}
	return template.HTML(buf.String()), nil
}

func architectureDiagram(a content.Architecture) string {
	components := make([]diagrams.Component, 0, len(a.Nodes))
	for _, n := range a.Nodes {
		components = append(components, diagrams.Component{
			ID:          n.ID,
			Name:        n.Label,
			Description: n.Description,
			Kind:        string(n.Type),
		})
	}
	relationships := make([]diagrams.Relationship, 0, len(a.Flows))
	for _, f := range a.Flows {
		relationships = append(relationships, diagrams.Relationship{From: f.From, To: f.To, Label: f.Label})
	}
	return diagrams.ArchitectureDiagram(components, relationships)
}
