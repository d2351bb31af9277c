package cli

import (
	"context"
	"errors"
	"log"
	"os"

	"github.com/sparkleapp/sparkle-cli/internal/common"
)

// Unlock prompts for the master password and opens a vault session. The
// server decides how long the session lasts; until it expires every vault
// command works without re-prompting.
func (a *App) Unlock(ctx context.Context) error {
	set, err := a.vault.MasterPasswordSet(ctx)
	if err == nil && !set {
		log.Println("No master password configured yet, use 'setup-master' first")
		return nil
	}

	secret, err := getPassword(os.Stdout, "Enter master password")
	if err != nil {
		return err
	}
	defer common.WipeByteArray(secret)

	if err := a.vault.Unlock(ctx, secret); err != nil {
		switch {
		case errors.Is(err, common.ErrVerificationFailed):
			log.Println("Master password rejected")
		case errors.Is(err, common.ErrUnavailable):
			log.Println("Server unavailable, cannot verify master password")
		default:
			log.Printf("Unlock error: %s", err.Error())
		}
		return err
	}

	log.Println("Vault unlocked")
	return nil
}

// Lock closes the vault session immediately.
func (a *App) Lock(ctx context.Context) error {
	if err := a.vault.Lock(ctx); err != nil {
		log.Printf("Lock error: %s", err.Error())
		return err
	}
	log.Println("Vault locked")
	return nil
}

// SetupMaster creates the master password. Refused when one already exists;
// 'change-master' handles rotation.
func (a *App) SetupMaster(ctx context.Context) error {
	set, err := a.vault.MasterPasswordSet(ctx)
	if err != nil {
		log.Printf("Checking master password status: %s", err.Error())
		return err
	}
	if set {
		log.Println("Master password already configured, use 'change-master' instead")
		return nil
	}

	secret, err := getPassword(os.Stdout, "New master password")
	if err != nil {
		return err
	}
	defer common.WipeByteArray(secret)

	confirm, err := getPassword(os.Stdout, "Confirm master password")
	if err != nil {
		return err
	}
	defer common.WipeByteArray(confirm)

	if err := a.vault.SetupMasterPassword(ctx, secret, confirm); err != nil {
		if errors.Is(err, common.ErrInvalidInput) {
			log.Println("Passwords are empty or do not match")
		} else {
			log.Printf("Setup error: %s", err.Error())
		}
		return err
	}

	log.Println("Master password configured, vault unlocked")
	return nil
}

// ChangeMaster rotates the master password and reopens the session with the
// new secret.
func (a *App) ChangeMaster(ctx context.Context) error {
	current, err := getPassword(os.Stdout, "Current master password")
	if err != nil {
		return err
	}
	defer common.WipeByteArray(current)

	secret, err := getPassword(os.Stdout, "New master password")
	if err != nil {
		return err
	}
	defer common.WipeByteArray(secret)

	confirm, err := getPassword(os.Stdout, "Confirm new master password")
	if err != nil {
		return err
	}
	defer common.WipeByteArray(confirm)

	if err := a.vault.ChangeMasterPassword(ctx, current, secret, confirm); err != nil {
		if errors.Is(err, common.ErrVerificationFailed) {
			log.Println("Current master password rejected")
		} else {
			log.Printf("Change error: %s", err.Error())
		}
		return err
	}

	log.Println("Master password changed")
	return nil
}
