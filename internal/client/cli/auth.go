package cli

import (
	"context"
	"errors"
	"log"
	"os"

	"github.com/sparkleapp/sparkle-cli/internal/common"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// Login prompts the user for account credentials and tries to authenticate.
//
// On success the token pair is persisted by the auth service, so the next
// start of the CLI does not require a new login. The password is securely
// wiped before returning.
func (a *App) Login(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", os.Stdout)
	if err != nil {
		return err
	}

	password, err := getPassword(os.Stdout, "Enter password")
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	if err := a.authService.Login(ctx, email, password); err != nil {
		if errors.Is(err, common.ErrUnavailable) {
			log.Println("Server unavailable, try again later")
			a.setMode(ModeOffline)
		} else {
			log.Printf("Login unsuccessful: %s", err.Error())
		}
		return err
	}

	a.userName = email
	a.setMode(ModeOnline)
	log.Println("Login successful")
	return nil
}

// Logout closes the master-password session, invalidates the remote login
// and wipes local state.
func (a *App) Logout(ctx context.Context) error {
	if err := a.vault.Lock(ctx); err != nil {
		log.Printf("closing vault session: %s", err.Error())
	}
	if err := a.authService.Logout(ctx); err != nil {
		log.Printf("Logout error: %s", err.Error())
		return err
	}
	a.userName = ""
	log.Println("Logged out")
	return nil
}
