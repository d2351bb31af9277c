package cli

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/sparkleapp/sparkle-cli/internal/client/models"
	"github.com/sparkleapp/sparkle-cli/internal/common"
)

// reportVaultErr prints a friendly message for the common vault failures.
func reportVaultErr(err error) {
	switch {
	case errors.Is(err, common.ErrAuthRequired):
		log.Println("Vault is locked, use 'unlock' first")
	case errors.Is(err, common.ErrUnavailable):
		log.Println("Server unavailable")
	default:
		log.Println(err.Error())
	}
}

// ListEntries prints the vault entries, optionally filtered by a category
// the user is prompted for.
func (a *App) ListEntries(ctx context.Context) error {
	category, err := getSimpleText(a.reader, "Category filter (empty for all)", os.Stdout)
	if err != nil {
		return err
	}

	items, err := a.vault.List(ctx, models.EntryFilter{Category: category})
	if err != nil {
		reportVaultErr(err)
		return err
	}

	if len(items) == 0 {
		fmt.Println("No entries")
		return nil
	}
	for _, item := range items {
		fmt.Printf("%s  %-20s  %-20s  %s\n", item.ID, item.Title, item.Username, item.Category)
	}
	return nil
}

// AddEntry interactively collects a new password entry and stores it.
func (a *App) AddEntry(ctx context.Context) error {
	title, err := getSimpleText(a.reader, "Title", os.Stdout)
	if err != nil {
		return err
	}
	username, err := getSimpleText(a.reader, "Username", os.Stdout)
	if err != nil {
		return err
	}
	password, err := getPassword(os.Stdout, "Entry password")
	if err != nil {
		return err
	}
	url, err := getSimpleText(a.reader, "URL (optional)", os.Stdout)
	if err != nil {
		return err
	}
	notes, err := GetMultiline(a.reader, "Notes (optional)", os.Stdout)
	if err != nil {
		return err
	}
	category, err := getSimpleText(a.reader, "Category (optional)", os.Stdout)
	if err != nil {
		return err
	}

	entry := &models.PasswordEntry{
		Title:    title,
		Username: username,
		Password: string(password),
		URL:      url,
		Notes:    notes,
		Category: category,
	}
	common.WipeByteArray(password)

	created, err := a.vault.Add(ctx, entry)
	if err != nil {
		reportVaultErr(err)
		return err
	}

	fmt.Printf("Created entry %s\n", created.ID)
	return nil
}

// Categories prints the available entry categories.
func (a *App) Categories(ctx context.Context) error {
	cats, err := a.vault.Categories(ctx)
	if err != nil {
		reportVaultErr(err)
		return err
	}

	if len(cats) == 0 {
		fmt.Println("No categories")
		return nil
	}
	for _, c := range cats {
		fmt.Printf("%s  %s\n", c.ID, c.Name)
	}
	return nil
}
