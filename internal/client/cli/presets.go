package cli

import (
	"context"
	"fmt"

	"github.com/rsoares/grimorio/internal/models"
)

func (a *App) runList(ctx context.Context) error {
	conn := a.snapshot(ctx)

	presets, err := a.manager.Load(ctx, a.userID, conn)
	if err != nil {
		return fmt.Errorf("failed to load grimoires: %w", err)
	}

	if len(presets) == 0 {
		a.println("No grimoires yet. Run 'grimorio create <name>'.")
		return nil
	}

	active := a.manager.Active()
	for _, p := range presets {
		marker := " "
		if p.ID == active {
			marker = "*"
		}
		origin := ""
		if p.IsLocal() {
			origin = " (not synced)"
		}
		a.printf("%s %s  %s  [%d spells]%s\n", marker, p.ID, p.Name, len(p.SpellIDs), origin)
	}

	return nil
}

func (a *App) runCreate(ctx context.Context, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: grimorio create <name> [description]")
	}
	name := args[0]
	description := ""
	if len(args) > 1 {
		description = args[1]
	}

	conn := a.snapshot(ctx)
	if _, err := a.manager.Load(ctx, a.userID, conn); err != nil {
		return fmt.Errorf("failed to load grimoires: %w", err)
	}

	preset, err := a.manager.CreatePreset(ctx, a.userID, conn, name, description)
	if err != nil {
		return err
	}

	if preset.IsLocal() {
		a.printf("Created grimoire %q offline. It will sync when connection returns.\n", preset.Name)
	} else {
		a.printf("Created grimoire %q (%s).\n", preset.Name, preset.ID)
	}

	return nil
}

func (a *App) runRename(ctx context.Context, args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("usage: grimorio rename <id> <name>")
	}
	id, name := args[0], args[1]

	conn := a.snapshot(ctx)
	if _, err := a.manager.Load(ctx, a.userID, conn); err != nil {
		return fmt.Errorf("failed to load grimoires: %w", err)
	}

	preset, err := a.manager.UpdatePreset(ctx, a.userID, conn, id, models.PresetUpdates{Name: &name})
	if err != nil {
		return err
	}

	a.printf("Renamed grimoire to %q.\n", preset.Name)
	return nil
}

func (a *App) runDelete(ctx context.Context, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: grimorio delete <id>")
	}
	id := args[0]

	conn := a.snapshot(ctx)
	if _, err := a.manager.Load(ctx, a.userID, conn); err != nil {
		return fmt.Errorf("failed to load grimoires: %w", err)
	}

	if err := a.manager.DeletePreset(ctx, a.userID, conn, id); err != nil {
		return err
	}

	a.println("Grimoire deleted.")
	if active := a.manager.Active(); active != "" {
		a.printf("Active grimoire is now %s.\n", active)
	}

	return nil
}

func (a *App) runUse(ctx context.Context, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: grimorio use <id>")
	}
	id := args[0]

	conn := a.snapshot(ctx)
	if _, err := a.manager.Load(ctx, a.userID, conn); err != nil {
		return fmt.Errorf("failed to load grimoires: %w", err)
	}

	if err := a.manager.SetActive(id); err != nil {
		return err
	}

	a.printf("Active grimoire set to %s.\n", id)
	return nil
}
