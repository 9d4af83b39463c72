// Package credentials resolves the Sensibo API key.
//
// The key is looked up in the SENSIBO_API_KEY environment variable, then in the
// auth file under the config directory. If neither has it and stdin is a
// terminal, the user is prompted (input hidden) and the answer is saved to the
// auth file, readable by the owner only.
package credentials

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/term"

	"github.com/rshade/sensibo/internal/logging"
)

// EnvAPIKey overrides the stored API key.
const EnvAPIKey = "SENSIBO_API_KEY"

const (
	authDirPerm  = 0o700
	authFilePerm = 0o600
)

// Sentinel errors.
var (
	// ErrNoAPIKey means no key was configured and none could be prompted for.
	ErrNoAPIKey = errors.New("sensibo API key not found; set " + EnvAPIKey + " or run interactively")
)

// Option configures a Store.
type Option func(*Store)

// WithLookupEnv replaces os.LookupEnv.
func WithLookupEnv(lookupEnv func(string) (string, bool)) Option {
	return func(s *Store) {
		s.lookupEnv = lookupEnv
	}
}

// WithPrompt replaces the terminal used to ask for the key.
// isTerminal reports whether prompting is possible and readSecret reads one line without echo.
// Nil functions keep the stdin-based defaults.
func WithPrompt(out io.Writer, isTerminal func() bool, readSecret func() (string, error)) Option {
	return func(s *Store) {
		s.out = out
		if isTerminal != nil {
			s.isTerminal = isTerminal
		}
		if readSecret != nil {
			s.readSecret = readSecret
		}
	}
}

// Store reads and writes the API key.
type Store struct {
	path       string
	lookupEnv  func(string) (string, bool)
	out        io.Writer
	isTerminal func() bool
	readSecret func() (string, error)
}

// NewStore creates a Store backed by the auth file at path.
func NewStore(path string, opts ...Option) *Store {
	s := &Store{
		path:       path,
		lookupEnv:  os.LookupEnv,
		out:        os.Stderr,
		isTerminal: stdinIsTerminal,
		readSecret: readStdinSecret,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// APIKey returns the API key, prompting for and saving it when necessary.
func (s *Store) APIKey(ctx context.Context) (string, error) {
	log := logging.FromContext(ctx)

	if v, ok := s.lookupEnv(EnvAPIKey); ok && strings.TrimSpace(v) != "" {
		log.Debug().Ctx(ctx).Str("component", "credentials").Msg("using API key from environment")
		return strings.TrimSpace(v), nil
	}

	key, err := s.readFile()
	if err != nil {
		return "", err
	}
	if key != "" {
		return key, nil
	}

	if !s.isTerminal() {
		return "", ErrNoAPIKey
	}

	_, _ = fmt.Fprintln(s.out, "Sensibo API key not found.")
	_, _ = fmt.Fprint(s.out, "Enter your Sensibo API key: ")
	entered, err := s.readSecret()
	_, _ = fmt.Fprintln(s.out)
	if err != nil {
		return "", fmt.Errorf("reading API key: %w", err)
	}

	key = strings.TrimSpace(entered)
	if key == "" {
		return "", ErrNoAPIKey
	}

	if err := s.Save(key); err != nil {
		return "", err
	}
	log.Info().Ctx(ctx).Str("component", "credentials").Str("path", s.path).Msg("API key saved")
	return key, nil
}

// Save writes key to the auth file with owner-only permissions.
func (s *Store) Save(key string) error {
	if err := os.MkdirAll(filepath.Dir(s.path), authDirPerm); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	if err := os.WriteFile(s.path, []byte(key), authFilePerm); err != nil {
		return fmt.Errorf("writing API key: %w", err)
	}
	// WriteFile keeps the mode of an existing file.
	if err := os.Chmod(s.path, authFilePerm); err != nil {
		return fmt.Errorf("securing API key file: %w", err)
	}
	return nil
}

// Path returns the auth file location.
func (s *Store) Path() string {
	return s.path
}

// readFile returns the stored key, or "" when there is none.
// Permissions of an existing file are tightened to owner-only first.
func (s *Store) readFile() (string, error) {
	if _, err := os.Stat(s.path); err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", fmt.Errorf("checking API key file: %w", err)
	}

	if err := os.Chmod(s.path, authFilePerm); err != nil {
		return "", fmt.Errorf("securing API key file: %w", err)
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		return "", fmt.Errorf("reading API key file: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

func stdinIsTerminal() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

func readStdinSecret() (string, error) {
	b, err := term.ReadPassword(int(os.Stdin.Fd()))
	if err != nil {
		return "", err
	}
	return string(b), nil
}
