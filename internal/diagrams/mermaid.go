// Package diagrams renders mermaid source for the landing page's
// architecture section and for `sitekit plan --diagram`.
package diagrams

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ziadkadry99/sitekit/internal/topology"
)

// Component represents a node in an architecture diagram. Kind selects the
// node's class and therefore its color.
type Component struct {
	ID          string
	Name        string
	Description string
	Kind        string
}

// Relationship represents an edge between two components.
type Relationship struct {
	From  string
	To    string
	Label string
}

// kindStyles are the fill/stroke colors per component kind.
var kindStyles = map[string]string{
	"client":     "fill:#3b82f6,stroke:#2563eb,color:#fff",
	"cdn":        "fill:#a855f7,stroke:#9333ea,color:#fff",
	"storage":    "fill:#22c55e,stroke:#16a34a,color:#fff",
	"deployment": "fill:#f97316,stroke:#ea580c,color:#fff",
}

// ArchitectureDiagram generates a left-to-right mermaid graph from components
// and relationships, with one classDef per component kind in use.
func ArchitectureDiagram(components []Component, relationships []Relationship) string {
	var b strings.Builder
	b.WriteString("graph LR\n")

	used := make(map[string]bool)
	for _, c := range components {
		id := sanitizeID(c.ID)
		if id == "" {
			id = sanitizeID(c.Name)
		}
		if c.Description != "" {
			b.WriteString(fmt.Sprintf("    %s[\"%s<br/>%s\"]\n", id, escapeMermaid(c.Name), escapeMermaid(c.Description)))
		} else {
			b.WriteString(fmt.Sprintf("    %s[\"%s\"]\n", id, escapeMermaid(c.Name)))
		}
		if _, ok := kindStyles[c.Kind]; ok {
			b.WriteString(fmt.Sprintf("    class %s %s\n", id, c.Kind))
			used[c.Kind] = true
		}
	}

	for _, r := range relationships {
		fromID := sanitizeID(r.From)
		toID := sanitizeID(r.To)
		if r.Label != "" {
			b.WriteString(fmt.Sprintf("    %s -->|%s| %s\n", fromID, escapeMermaid(r.Label), toID))
		} else {
			b.WriteString(fmt.Sprintf("    %s --> %s\n", fromID, toID))
		}
	}

	kinds := make([]string, 0, len(used))
	for k := range used {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	for _, k := range kinds {
		b.WriteString(fmt.Sprintf("    classDef %s %s\n", k, kindStyles[k]))
	}

	return b.String()
}

// TopologyDiagram generates a mermaid graph TD of planned resources, with an
// edge from each resource to the resources it depends on.
func TopologyDiagram(resources []topology.Resource) string {
	var b strings.Builder
	b.WriteString("graph TD\n")

	for _, r := range resources {
		b.WriteString(fmt.Sprintf("    %s[\"%s<br/>%s\"]\n", sanitizeID(r.LogicalID), escapeMermaid(r.LogicalID), escapeMermaid(r.Type)))
	}
	for _, r := range resources {
		for _, dep := range r.DependsOn {
			b.WriteString(fmt.Sprintf("    %s --> %s\n", sanitizeID(r.LogicalID), sanitizeID(dep)))
		}
	}

	return b.String()
}

// sanitizeID converts a string into a safe mermaid node ID.
func sanitizeID(s string) string {
	replacer := strings.NewReplacer(
		"/", "_",
		"\\", "_",
		".", "_",
		"-", "_",
		" ", "_",
		"(", "_",
		")", "_",
		"[", "_",
		"]", "_",
		"{", "_",
		"}", "_",
		":", "_",
	)
	return replacer.Replace(s)
}

// escapeMermaid escapes characters that have special meaning in mermaid labels.
func escapeMermaid(s string) string {
	s = strings.ReplaceAll(s, "\"", "#quot;")
	s = strings.ReplaceAll(s, "(", "#lpar;")
	s = strings.ReplaceAll(s, ")", "#rpar;")
	s = strings.ReplaceAll(s, "[", "#lsqb;")
	s = strings.ReplaceAll(s, "]", "#rsqb;")
	s = strings.ReplaceAll(s, "{", "#lbrace;")
	s = strings.ReplaceAll(s, "}", "#rbrace;")
	s = strings.ReplaceAll(s, "<", "#lt;")
	s = strings.ReplaceAll(s, ">", "#gt;")
	return s
}
