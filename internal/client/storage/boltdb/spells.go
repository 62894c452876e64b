package boltdb

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.etcd.io/bbolt"

	"github.com/rsoares/grimorio/internal/client/storage"
	"github.com/rsoares/grimorio/internal/models"
)

// SaveSpells caches the spell list. Every entry gets the same ttl; a zero
// ttl means the spells never expire.
func (s *Storage) SaveSpells(ctx context.Context, spells []*models.Spell, ttl time.Duration) error {
	now := s.now()

	return s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketSpells)
		if bucket == nil {
			return fmt.Errorf("spells bucket not found")
		}

		for _, spell := range spells {
			entry, err := storage.NewCachedEntry(spell, ttl, now)
			if err != nil {
				return fmt.Errorf("failed to marshal spell: %w", err)
			}
			data, err := encodeEntry(entry)
			if err != nil {
				return err
			}
			if err := bucket.Put([]byte(spell.ID), data); err != nil {
				return fmt.Errorf("failed to save spell: %w", err)
			}
		}

		return nil
	})
}

// ListSpells returns the live cached spells, sorted by name.
func (s *Storage) ListSpells(ctx context.Context) ([]*models.Spell, error) {
	var spells []*models.Spell

	err := s.forEachLive(bucketSpells, func(key string, entry *storage.CachedEntry) error {
		spell := &models.Spell{}
		if err := entry.Decode(spell); err != nil {
			return fmt.Errorf("failed to unmarshal spell: %w", err)
		}
		spells = append(spells, spell)
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(spells, func(i, j int) bool { return spells[i].Name < spells[j].Name })

	return spells, nil
}

// SaveClassLinks caches the spell-to-class cross-reference table wholesale.
// Links carry no per-row ttl.
func (s *Storage) SaveClassLinks(ctx context.Context, links []*models.SpellClassLink) error {
	now := s.now()

	return s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketMagiaLinks)
		if bucket == nil {
			return fmt.Errorf("magia_links bucket not found")
		}

		for _, link := range links {
			entry, err := storage.NewCachedEntry(link, 0, now)
			if err != nil {
				return fmt.Errorf("failed to marshal link: %w", err)
			}
			data, err := encodeEntry(entry)
			if err != nil {
				return err
			}

			// Compound key: a spell can belong to several classes.
			key := link.Magia + "|" + link.Classe
			if err := bucket.Put([]byte(key), data); err != nil {
				return fmt.Errorf("failed to save link: %w", err)
			}
		}

		return nil
	})
}

// ListClassLinks returns the cached cross-reference table.
func (s *Storage) ListClassLinks(ctx context.Context) ([]*models.SpellClassLink, error) {
	var links []*models.SpellClassLink

	err := s.forEachLive(bucketMagiaLinks, func(key string, entry *storage.CachedEntry) error {
		link := &models.SpellClassLink{}
		if err := entry.Decode(link); err != nil {
			return fmt.Errorf("failed to unmarshal link: %w", err)
		}
		links = append(links, link)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return links, nil
}
