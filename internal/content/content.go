// Package content is the landing page's content model: the hero, feature
// list, quick-start steps, code examples and architecture data the site
// generator renders.
package content

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ErrInvalid wraps every content validation failure.
var ErrInvalid = errors.New("invalid content")

//go:embed default.yml
var defaultYAML []byte

// Site is everything rendered on the landing page.
type Site struct {
	Title        string           `yaml:"title"`
	Hero         Hero             `yaml:"hero"`
	Nav          []NavLink        `yaml:"nav"`
	Features     []Feature        `yaml:"features"`
	QuickStart   []QuickStartStep `yaml:"quick_start"`
	CodeExamples []CodeExample    `yaml:"code_examples"`
	Architecture Architecture     `yaml:"architecture"`
	Footer       Footer           `yaml:"footer"`
}

type Hero struct {
	Title    string `yaml:"title"`
	Subtitle string `yaml:"subtitle"`
	CTAText  string `yaml:"cta_text"`
	CTALink  string `yaml:"cta_link"`
}

// NavLink scrolls to the section with the given element id.
type NavLink struct {
	Label   string `yaml:"label"`
	Section string `yaml:"section"`
}

type Feature struct {
	ID          string `yaml:"id"`
	Icon        string `yaml:"icon"`
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
}

// QuickStartStep is one numbered step. Command is optional.
type QuickStartStep struct {
	ID          string `yaml:"id"`
	Number      int    `yaml:"number"`
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
	Command     string `yaml:"command,omitempty"`
}

type CodeExample struct {
	ID          string `yaml:"id"`
	Language    string `yaml:"language"`
	Title       string `yaml:"title"`
	Code        string `yaml:"code"`
	Description string `yaml:"description"`
}

// NodeType colors an architecture node.
type NodeType string

const (
	NodeClient     NodeType = "client"
	NodeCDN        NodeType = "cdn"
	NodeStorage    NodeType = "storage"
	NodeDeployment NodeType = "deployment"
)

type Node struct {
	ID          string   `yaml:"id"`
	Label       string   `yaml:"label"`
	Type        NodeType `yaml:"type"`
	Description string   `yaml:"description"`
}

// Flow is a labelled edge between two nodes.
type Flow struct {
	From  string `yaml:"from"`
	To    string `yaml:"to"`
	Label string `yaml:"label"`
}

type Architecture struct {
	Nodes []Node `yaml:"nodes"`
	Flows []Flow `yaml:"flows"`
}

type Link struct {
	Label string `yaml:"label"`
	URL   string `yaml:"url"`
}

type Footer struct {
	Text  string `yaml:"text"`
	Links []Link `yaml:"links"`
}

// Languages lists the code example languages the highlighter is set up for.
var Languages = []string{"typescript", "javascript", "bash", "json", "go", "yaml"}

// Default returns the built-in content.
func Default() *Site {
	s, err := decode(defaultYAML, &Site{})
	if err != nil {
		panic(fmt.Sprintf("embedded default content: %v", err))
	}
	return s
}

// Load reads a content file over the defaults. Lists in the file replace the
// default lists; an empty path returns the defaults.
func Load(path string) (*Site, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading content file: %w", err)
	}
	s, err := decode(data, Default())
	if err != nil {
		return nil, fmt.Errorf("parsing content file %s: %w", path, err)
	}
	return s, nil
}

func decode(data []byte, into *Site) (*Site, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(into); err != nil {
		return nil, err
	}
	return into, nil
}

// Save writes the content as YAML, for `sitekit init` to scaffold a file
// the user can edit.
func (s *Site) Save(path string) error {
	data, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshalling content: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// ActiveExample returns the example with the given id, or the first example
// when the id is unknown. It returns false only when there are no examples.
func (s *Site) ActiveExample(id string) (CodeExample, bool) {
	if len(s.CodeExamples) == 0 {
		return CodeExample{}, false
	}
	for _, ex := range s.CodeExamples {
		if ex.ID == id {
			return ex, true
		}
	}
	return s.CodeExamples[0], true
}

// Node returns the architecture node with the given id.
func (a Architecture) Node(id string) (Node, bool) {
	for _, n := range a.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return Node{}, false
}
