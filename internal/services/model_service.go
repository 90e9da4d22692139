package services

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"promptforge/internal/models"
	"promptforge/internal/repositories"
)

type ModelConfigService interface {
	Startup(ctx context.Context) error
	ListModelGroups() ([]models.LLMModelGroup, error)
	SetModelEnabled(modelKey string, enabled bool) (*models.LLMModel, error)
	SetProviderEnabled(provider string, enabled bool) ([]models.LLMModel, error)
	GetModel(modelKey string) (*models.LLMModel, error)
}

type modelConfigService struct {
	repo repositories.ModelSettingRepository
	raw  []byte
	ctx  context.Context

	mu       sync.RWMutex
	catalog  *modelCatalog
	disabled map[string]bool
}

// NewModelConfigService overlays stored enablement on the catalog JSON.
// With a nil repo toggles only live in memory.
func NewModelConfigService(repo repositories.ModelSettingRepository, catalog []byte) ModelConfigService {
	return &modelConfigService{
		repo:     repo,
		raw:      catalog,
		catalog:  &modelCatalog{byKey: map[string]*catalogEntry{}},
		disabled: make(map[string]bool),
	}
}

func (s *modelConfigService) Startup(ctx context.Context) error {
	catalog, err := parseCatalog(s.raw)
	if err != nil {
		return err
	}
	var stored []models.ModelSetting
	if s.repo != nil {
		if stored, err = s.repo.List(ctx); err != nil {
			return fmt.Errorf("load model settings: %w", err)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.ctx = ctx
	s.catalog = catalog
	s.disabled = make(map[string]bool)
	for _, setting := range stored {
		if _, known := catalog.byKey[setting.ModelKey]; known && !setting.Enabled {
			s.disabled[setting.ModelKey] = true
		}
	}
	return nil
}

func (s *modelConfigService) ListModelGroups() ([]models.LLMModelGroup, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	groups := make([]models.LLMModelGroup, 0, len(s.catalog.providers))
	for i := range s.catalog.providers {
		p := &s.catalog.providers[i]
		groups = append(groups, models.LLMModelGroup{
			ProviderID:   p.ID,
			ProviderName: p.Name,
			Models:       s.viewAll(p),
		})
	}
	return groups, nil
}

func (s *modelConfigService) SetModelEnabled(modelKey string, enabled bool) (*models.LLMModel, error) {
	modelKey = strings.TrimSpace(modelKey)
	if modelKey == "" {
		return nil, errors.New("model key is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.catalog.byKey[modelKey]
	if !ok {
		return nil, fmt.Errorf("model %s not found", modelKey)
	}
	if s.repo != nil {
		if _, err := s.repo.Upsert(s.context(), e.Key, e.ProviderID, enabled); err != nil {
			return nil, err
		}
	}
	s.disabled[e.Key] = !enabled
	m := s.view(e)
	return &m, nil
}

func (s *modelConfigService) SetProviderEnabled(provider string, enabled bool) ([]models.LLMModel, error) {
	provider = strings.TrimSpace(provider)
	if provider == "" {
		return nil, errors.New("provider is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.catalog.provider(provider)
	if !ok || len(p.Entries) == 0 {
		return nil, fmt.Errorf("provider %s not found", provider)
	}
	keys := make([]string, 0, len(p.Entries))
	for _, e := range p.Entries {
		keys = append(keys, e.Key)
	}
	if s.repo != nil {
		sorted := append([]string(nil), keys...)
		slices.Sort(sorted)
		if err := s.repo.SetProviderEnabled(s.context(), provider, sorted, enabled); err != nil {
			return nil, err
		}
	}
	for _, key := range keys {
		s.disabled[key] = !enabled
	}
	return s.viewAll(p), nil
}

// GetModel accepts a full catalog key or a "provider|apiName" prefix of
// one, such as "gemini|gemini-2.5-flash".
func (s *modelConfigService) GetModel(modelKey string) (*models.LLMModel, error) {
	modelKey = strings.TrimSpace(modelKey)
	if modelKey == "" {
		return nil, errors.New("model key is required")
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.catalog.lookup(modelKey)
	if !ok {
		return nil, fmt.Errorf("model %s not found", modelKey)
	}
	m := s.view(e)
	return &m, nil
}

func (s *modelConfigService) context() context.Context {
	if s.ctx == nil {
		return context.Background()
	}
	return s.ctx
}

func (s *modelConfigService) viewAll(p *catalogProvider) []models.LLMModel {
	out := make([]models.LLMModel, 0, len(p.Entries))
	for i := range p.Entries {
		out = append(out, s.view(&p.Entries[i]))
	}
	return out
}

func (s *modelConfigService) view(e *catalogEntry) models.LLMModel {
	name := e.ProviderID
	if p, ok := s.catalog.provider(e.ProviderID); ok {
		name = p.Name
	}
	return models.LLMModel{
		Key:             e.Key,
		DisplayName:     e.DisplayName,
		APIName:         e.APIName,
		ProviderID:      e.ProviderID,
		ProviderName:    name,
		ReasoningEffort: e.ReasoningEffort,
		Thinking:        e.Thinking,
		ContextWindow:   e.ContextWindow,
		Enabled:         !s.disabled[e.Key],
	}
}
