// Package cli provides the interactive Sparkle command-line client.
//
// It wires configuration, local storage, API services, and an interactive REPL
// that gates vault access behind a time-boxed master-password session.
// Typical flow: log in with account credentials, unlock the vault with the
// master password, then work with entries and documents until the session
// expires or the user locks it.
//
// Key features:
//   - Login / Logout with a locally persisted token pair
//   - Master password setup, change, unlock and lock
//   - List / add password entries (with an encrypted offline cache)
//   - Upload documents and wait for OCR text extraction
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
// See App, StartOnlineStatusWatcher, and runREPL for details.
package cli
