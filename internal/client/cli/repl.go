package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isUnlocked() bool
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	Unlock(ctx context.Context) error
	Lock(ctx context.Context) error
	SetupMaster(ctx context.Context) error
	ChangeMaster(ctx context.Context) error
	AddEntry(ctx context.Context) error
	ListEntries(ctx context.Context) error
	Categories(ctx context.Context) error
	Upload(ctx context.Context, path string) error
	ListFiles(ctx context.Context) error
	ShowFile(ctx context.Context, fileID string) error
	ShowOCR(ctx context.Context, fileID string) error
	Reprocess(ctx context.Context, fileID string) error
}

// runREPL starts a simple read–eval–print loop for the Sparkle CLI.
//
// It reads a line from the provided scanner, parses the first token as the
// command, and dispatches to methods on 'a'. Unknown commands are reported
// back to the user. The loop exits on scanner EOF or when the user types
// "exit" or "quit".
//
// Prompt & Commands
//
// The prompt shows the current status (from statusFn) and accepts commands:
//
//	Vault locked:
//	  - help           — show available commands
//	  - login          — authenticate with account credentials
//	  - unlock         — open a master-password session
//	  - setup-master   — create the master password
//	  - exit | quit    — leave the program
//
//	Vault unlocked:
//	  - help           — show available commands
//	  - (l)ist         — list password entries
//	  - add            — add a password entry
//	  - categories     — list entry categories
//	  - upload <path>  — upload a document and wait for OCR
//	  - files          — list uploaded files
//	  - show <id>      — show one file's details
//	  - ocr <id>       — show OCR text for a file
//	  - reprocess <id> — queue a fresh OCR run
//	  - change-master  — rotate the master password
//	  - lock           — close the master-password session
//	  - logout         — log out and wipe local state
//	  - exit | quit    — leave the program
//
// Any errors returned by command handlers are ignored here; handlers should
// log their own errors. This keeps the REPL loop resilient and focused on I/O.
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner) {
	for {
		printlnFn(fmt.Sprintf("sparkle (%s) > ", statusFn()))
		if !scanner.Scan() {
			return
		}
		line := scanner.Text()
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd := parts[0]
		args := parts[1:]

		switch cmd {
		case "help":
			if a.isUnlocked() {
				printlnFn("Available commands: (l)ist, add, categories, upload <path>, files, show <id>, ocr <id>, reprocess <id>, change-master, lock, logout, exit")
			} else {
				printlnFn("Available commands: login, unlock, setup-master, files, upload <path>, logout, exit")
			}

		case "login":
			_ = a.Login(ctx)

		case "logout":
			_ = a.Logout(ctx)

		case "unlock":
			_ = a.Unlock(ctx)

		case "lock":
			_ = a.Lock(ctx)

		case "setup-master":
			_ = a.SetupMaster(ctx)

		case "change-master":
			_ = a.ChangeMaster(ctx)

		case "add":
			_ = a.AddEntry(ctx)

		case "l", "list":
			_ = a.ListEntries(ctx)

		case "categories":
			_ = a.Categories(ctx)

		case "upload":
			if len(args) == 0 {
				printlnFn("Usage: upload <path>")
				continue
			}
			_ = a.Upload(ctx, args[0])

		case "files":
			_ = a.ListFiles(ctx)

		case "show":
			if len(args) == 0 {
				printlnFn("Usage: show <file id>")
				continue
			}
			_ = a.ShowFile(ctx, args[0])

		case "ocr":
			if len(args) == 0 {
				printlnFn("Usage: ocr <file id>")
				continue
			}
			_ = a.ShowOCR(ctx, args[0])

		case "reprocess":
			if len(args) == 0 {
				printlnFn("Usage: reprocess <file id>")
				continue
			}
			_ = a.Reprocess(ctx, args[0])

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}
