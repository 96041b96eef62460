package core

import (
	"fmt"
	"slices"
	"strings"
)

// CategoryGroup is a reported category made of one or more species labels.
type CategoryGroup struct {
	Name    string   `yaml:"name"`
	Label   string   `yaml:"label"`
	Members []string `yaml:"members"`
	// DeadStatuses overrides Taxonomy.DeadStatuses for this group when set.
	DeadStatuses []string `yaml:"dead_statuses"`
	// Yearly groups get a "Yearly <name> total" line in the report.
	Yearly bool `yaml:"yearly"`
}

// Taxonomy maps raw species/status labels onto the groups the report tracks.
type Taxonomy struct {
	LiveStatus   string          `yaml:"live_status"`
	DeadStatuses []string        `yaml:"dead_statuses"`
	NestStatus   string          `yaml:"nest_status"`
	NestLabel    string          `yaml:"nest_label"`
	Categories   []CategoryGroup `yaml:"categories"`
}

// DefaultTaxonomy returns the categories tracked by the salmon stewards.
func DefaultTaxonomy() Taxonomy {
	return Taxonomy{
		LiveStatus:   "Live",
		DeadStatuses: []string{"Dead", "Remnant"},
		NestStatus:   "Redd",
		NestLabel:    "Redds",
		Categories: []CategoryGroup{
			{Name: "Chum", Label: "Chum", Members: []string{"Chum"}, Yearly: true},
			{Name: "Coho", Label: "Coho", Members: []string{"Coho"}, Yearly: true},
			{
				Name:         "Cutthroat",
				Label:        "Cutthroat",
				Members:      []string{"Resident_Cutthroat", "Sea-run_Cutthroat", "Cutthroat"},
				DeadStatuses: []string{"Dead"},
				Yearly:       true,
			},
			{
				Name:         "Unknown",
				Label:        "Unknown Salmonids",
				Members:      []string{"Unknown"},
				DeadStatuses: []string{"Dead"},
				Yearly:       true,
			},
			{
				Name:    "Salmon",
				Label:   "Salmon",
				Members: []string{"Chum", "Coho", "Unknown", "Sea-run_Cutthroat"},
			},
		},
	}
}

func (t Taxonomy) Validate() error {
	var problems []string
	if strings.TrimSpace(t.LiveStatus) == "" {
		problems = append(problems, "live status cannot be empty")
	}
	if len(t.DeadStatuses) == 0 {
		problems = append(problems, "at least one dead status is required")
	}
	if slices.Contains(t.DeadStatuses, t.LiveStatus) {
		problems = append(problems, fmt.Sprintf("status %q cannot be both live and dead", t.LiveStatus))
	}
	if len(t.Categories) == 0 {
		problems = append(problems, "at least one category is required")
	}
	seen := make(map[string]struct{}, len(t.Categories))
	for i, g := range t.Categories {
		if strings.TrimSpace(g.Name) == "" {
			problems = append(problems, fmt.Sprintf("category %d has no name", i))
			continue
		}
		if _, dup := seen[g.Name]; dup {
			problems = append(problems, fmt.Sprintf("duplicate category %q", g.Name))
		}
		seen[g.Name] = struct{}{}
		if len(g.Members) == 0 {
			problems = append(problems, fmt.Sprintf("category %q has no members", g.Name))
		}
		if slices.Contains(g.DeadStatuses, t.LiveStatus) {
			problems = append(problems, fmt.Sprintf("category %q: status %q cannot be both live and dead", g.Name, t.LiveStatus))
		}
	}
	if len(problems) > 0 {
		return fmt.Errorf("invalid taxonomy:\n- %s", strings.Join(problems, "\n- "))
	}
	return nil
}

// Group returns the named category group.
func (t Taxonomy) Group(name string) (CategoryGroup, error) {
	for _, g := range t.Categories {
		if g.Name == name {
			return g, nil
		}
	}
	return CategoryGroup{}, fmt.Errorf("%w: %s", ErrUnknownCategory, name)
}

// YearlyGroups returns the groups that appear in the yearly lines, in taxonomy order.
func (t Taxonomy) YearlyGroups() []CategoryGroup {
	var out []CategoryGroup
	for _, g := range t.Categories {
		if g.Yearly {
			out = append(out, g)
		}
	}
	return out
}

// DisplayLabel falls back to the group name.
func (g CategoryGroup) DisplayLabel() string {
	if g.Label != "" {
		return g.Label
	}
	return g.Name
}

func (g CategoryGroup) includes(category string) bool {
	return slices.Contains(g.Members, category)
}

func (g CategoryGroup) isDead(status string, fallback []string) bool {
	if len(g.DeadStatuses) > 0 {
		return slices.Contains(g.DeadStatuses, status)
	}
	return slices.Contains(fallback, status)
}
