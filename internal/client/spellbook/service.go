// Package spellbook loads the spell compendium, cache first, and enriches
// spells lacking direct class data from the denormalized class-link table.
package spellbook

import (
	"context"
	"log/slog"
	"time"

	httpclient "github.com/rsoares/grimorio/internal/client/api"
	"github.com/rsoares/grimorio/internal/client/connectivity"
	"github.com/rsoares/grimorio/internal/client/storage"
	"github.com/rsoares/grimorio/internal/models"
)

// DefaultSpellTTL is how long cached spells stay live before a connected
// load refetches them.
const DefaultSpellTTL = 24 * time.Hour

// Service loads the spell catalogue.
type Service struct {
	apiClient httpclient.ClientAPI
	store     storage.SpellStore
	logger    *slog.Logger
	ttl       time.Duration
}

// NewService creates a spellbook service.
func NewService(apiClient httpclient.ClientAPI, store storage.SpellStore, logger *slog.Logger) *Service {
	return &Service{
		apiClient: apiClient,
		store:     store,
		logger:    logger,
		ttl:       DefaultSpellTTL,
	}
}

// Load returns the spell list. Live cached spells satisfy the request when
// offline or still fresh; otherwise the catalogue is refetched, enriched
// with class links and cached with a ttl.
func (s *Service) Load(ctx context.Context, conn connectivity.Snapshot) ([]*models.Spell, error) {
	cached, err := s.store.ListSpells(ctx)
	if err != nil {
		s.logger.Warn("failed to read spell cache", "error", err)
	}

	if !conn.Connected() || len(cached) > 0 {
		// Offline the cache is all there is; online a live cache means the
		// ttl has not elapsed yet, so skip the refetch.
		return cached, nil
	}

	remote, err := s.apiClient.ListSpells(ctx)
	if err != nil {
		s.logger.Warn("failed to fetch spells, using cache", "error", err)
		return cached, nil
	}

	spells := make([]*models.Spell, 0, len(remote))
	for _, w := range remote {
		spells = append(spells, &models.Spell{
			ID:          w.ID,
			Name:        w.Name,
			School:      w.School,
			Circle:      w.Circle,
			Description: w.Description,
			Classes:     append([]string(nil), w.Classes...),
		})
	}

	s.enrichClasses(ctx, spells)

	if err := s.store.SaveSpells(ctx, spells, s.ttl); err != nil {
		s.logger.Warn("failed to cache spells", "error", err)
	}

	return spells, nil
}

// enrichClasses fills in Classes for spells whose rows carry none, using the
// remote link table when reachable, the cached table otherwise. Spells with
// direct class data are left as they are; missing link data is never fatal.
func (s *Service) enrichClasses(ctx context.Context, spells []*models.Spell) {
	links := s.loadLinks(ctx)
	if len(links) == 0 {
		return
	}

	byName := make(map[string][]string)
	for _, link := range links {
		byName[link.Magia] = append(byName[link.Magia], link.Classe)
	}

	for _, spell := range spells {
		if len(spell.Classes) == 0 {
			spell.Classes = byName[spell.Name]
		}
	}
}

// loadLinks fetches the link table remotely, falling back to the cache.
func (s *Service) loadLinks(ctx context.Context) []*models.SpellClassLink {
	remote, err := s.apiClient.ListSpellClassLinks(ctx)
	if err == nil {
		links := make([]*models.SpellClassLink, 0, len(remote))
		for _, w := range remote {
			links = append(links, &models.SpellClassLink{Magia: w.Magia, Classe: w.Classe})
		}
		if err := s.store.SaveClassLinks(ctx, links); err != nil {
			s.logger.Warn("failed to cache class links", "error", err)
		}
		return links
	}

	s.logger.Warn("failed to fetch class links, using cache", "error", err)

	cached, cacheErr := s.store.ListClassLinks(ctx)
	if cacheErr != nil {
		s.logger.Warn("failed to read cached class links", "error", cacheErr)
		return nil
	}
	return cached
}
