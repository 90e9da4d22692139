package services

import (
	"cmp"
	"encoding/json"
	"fmt"
	"slices"
	"strings"
)

// catalogEntry is one bundled model. Key is provider|apiName, followed by
// |attrs when the entry pins reasoning or thinking.
type catalogEntry struct {
	Key             string
	ProviderID      string
	DisplayName     string
	APIName         string
	ReasoningEffort string
	Thinking        *bool
	ContextWindow   int
}

type catalogProvider struct {
	ID      string
	Name    string
	Entries []catalogEntry
}

// modelCatalog is the parsed models.json. Providers keep file order, and
// entries within a provider sort by display name.
type modelCatalog struct {
	providers []catalogProvider
	byKey     map[string]*catalogEntry
}

func parseCatalog(data []byte) (*modelCatalog, error) {
	var file struct {
		Providers []struct {
			ID          string `json:"id"`
			DisplayName string `json:"displayName"`
			Models      []struct {
				DisplayName     string `json:"displayName"`
				APIName         string `json:"apiName"`
				ReasoningEffort string `json:"reasoningEffort"`
				Thinking        *bool  `json:"thinking"`
				ContextWindow   int    `json:"contextWindow"`
			} `json:"models"`
		} `json:"providers"`
	}
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse models asset: %w", err)
	}

	c := &modelCatalog{byKey: make(map[string]*catalogEntry)}
	for _, p := range file.Providers {
		id := strings.TrimSpace(p.ID)
		if id == "" {
			continue
		}
		name := strings.TrimSpace(p.DisplayName)
		if name == "" {
			name = id
		}
		prov := catalogProvider{ID: id, Name: name}
		for _, m := range p.Models {
			e := catalogEntry{
				ProviderID:      id,
				DisplayName:     strings.TrimSpace(m.DisplayName),
				APIName:         strings.TrimSpace(m.APIName),
				ReasoningEffort: strings.TrimSpace(m.ReasoningEffort),
				Thinking:        m.Thinking,
				ContextWindow:   m.ContextWindow,
			}
			e.Key = modelKey(e)
			prov.Entries = append(prov.Entries, e)
		}
		slices.SortStableFunc(prov.Entries, func(a, b catalogEntry) int {
			return cmp.Or(
				cmp.Compare(strings.ToLower(a.DisplayName), strings.ToLower(b.DisplayName)),
				cmp.Compare(a.Key, b.Key),
			)
		})
		c.providers = append(c.providers, prov)
	}
	for i := range c.providers {
		for j := range c.providers[i].Entries {
			e := &c.providers[i].Entries[j]
			c.byKey[e.Key] = e
		}
	}
	return c, nil
}

func modelKey(e catalogEntry) string {
	key := e.ProviderID + "|" + e.APIName
	var attrs []string
	if e.ReasoningEffort != "" {
		attrs = append(attrs, "reasoning="+e.ReasoningEffort)
	}
	if e.Thinking != nil {
		attrs = append(attrs, fmt.Sprintf("thinking=%t", *e.Thinking))
	}
	if len(attrs) == 0 {
		return key
	}
	slices.Sort(attrs)
	return key + "|" + strings.Join(attrs, ",")
}

// lookup resolves a full key, or a provider|apiName prefix to the first
// matching key in sort order.
func (c *modelCatalog) lookup(key string) (*catalogEntry, bool) {
	if e, ok := c.byKey[key]; ok {
		return e, true
	}
	var match *catalogEntry
	for k, e := range c.byKey {
		if strings.HasPrefix(k, key+"|") && (match == nil || k < match.Key) {
			match = e
		}
	}
	return match, match != nil
}

func (c *modelCatalog) provider(id string) (*catalogProvider, bool) {
	i := slices.IndexFunc(c.providers, func(p catalogProvider) bool { return p.ID == id })
	if i < 0 {
		return nil, false
	}
	return &c.providers[i], true
}
