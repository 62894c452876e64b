package cli

import (
	"context"
	"fmt"
	"strings"
)

func (a *App) runAddSpell(ctx context.Context, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: grimorio add <spell-id> [grimoire-id]")
	}
	spellID := args[0]
	presetID := ""
	if len(args) > 1 {
		presetID = args[1]
	}

	conn := a.snapshot(ctx)
	if _, err := a.manager.Load(ctx, a.userID, conn); err != nil {
		return fmt.Errorf("failed to load grimoires: %w", err)
	}

	if err := a.manager.AddSpell(ctx, a.userID, conn, spellID, presetID); err != nil {
		return err
	}

	a.printf("Spell %s added.\n", spellID)
	return nil
}

func (a *App) runRemoveSpell(ctx context.Context, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: grimorio remove <spell-id> [grimoire-id]")
	}
	spellID := args[0]
	presetID := ""
	if len(args) > 1 {
		presetID = args[1]
	}

	conn := a.snapshot(ctx)
	if _, err := a.manager.Load(ctx, a.userID, conn); err != nil {
		return fmt.Errorf("failed to load grimoires: %w", err)
	}

	if err := a.manager.RemoveSpell(ctx, a.userID, conn, spellID, presetID); err != nil {
		return err
	}

	a.printf("Spell %s removed.\n", spellID)
	return nil
}

func (a *App) runSpells(ctx context.Context) error {
	conn := a.snapshot(ctx)

	spells, err := a.spellbook.Load(ctx, conn)
	if err != nil {
		return fmt.Errorf("failed to load spells: %w", err)
	}

	if len(spells) == 0 {
		if conn.Connected() {
			a.println("The compendium is empty.")
		} else {
			a.println("No cached spells and no connection. Try again online.")
		}
		return nil
	}

	for _, s := range spells {
		classes := ""
		if len(s.Classes) > 0 {
			classes = "  (" + strings.Join(s.Classes, ", ") + ")"
		}
		a.printf("%s  %s  circle %d%s\n", s.ID, s.Name, s.Circle, classes)
	}

	return nil
}
