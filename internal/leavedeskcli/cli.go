package leavedeskcli

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"go.uber.org/zap"

	"github.com/phillip-england/leavedesk/internal/consoleapp"
	"github.com/phillip-england/leavedesk/internal/envutil"
	"github.com/phillip-england/leavedesk/internal/ingest"
	"github.com/phillip-england/leavedesk/internal/logging"
	"github.com/phillip-england/leavedesk/internal/security"
)

var ErrUsage = errors.New("usage")

func Execute(args []string) error {
	return execute(args, os.Stdout)
}

func PrintUsage(w io.Writer) {
	fmt.Fprintln(w, "usage: leavedesk setup [--api-url http://localhost:8080] [--addr :3000] [--secret <secret>] [--env-file .env] [--force]")
	fmt.Fprintln(w, "       leavedesk run")
	fmt.Fprintln(w, "       leavedesk template [-o plantilla_vacaciones.xls]")
	fmt.Fprintln(w, "       leavedesk preview <file>")
}

func execute(args []string, out io.Writer) error {
	if len(args) < 1 {
		return usageError()
	}

	switch args[0] {
	case "setup":
		return runSetup(args[1:], out)
	case "run":
		return runCommand(args[1:])
	case "template":
		return runTemplate(args[1:], out)
	case "preview":
		return runPreview(args[1:], out)
	default:
		return usageError()
	}
}

func usageError() error {
	return fmt.Errorf("%w: leavedesk <setup|run|template|preview> [...]", ErrUsage)
}

func runSetup(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("setup", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	apiURL := fs.String("api-url", "http://localhost:8080", "base url of the leave API")
	addr := fs.String("addr", ":3000", "console listen address")
	secret := fs.String("secret", "", "session encryption secret (min 12 chars, generated when empty)")
	envPath := fs.String("env-file", ".env", "path to .env file")
	force := fs.Bool("force", false, "overwrite existing env file")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", ErrUsage, err)
	}

	if *secret == "" {
		generated, err := randomSecret()
		if err != nil {
			return err
		}
		*secret = generated
	}
	if _, err := security.NewSealer(*secret); err != nil {
		return fmt.Errorf("invalid session secret: %w", err)
	}

	values := map[string]string{
		"API_BASE_URL":             *apiURL,
		"LEAVEDESK_ADDR":           *addr,
		"LEAVEDESK_ENV":            consoleapp.EnvDevelopment,
		"LEAVEDESK_SESSION_DIR":    "data/sessions",
		"LEAVEDESK_SESSION_SECRET": *secret,
	}
	cfg := consoleapp.DefaultConfigFromEnv()
	cfg.APIBaseURL = *apiURL
	cfg.Addr = *addr
	cfg.SessionSecret = *secret
	if err := cfg.Validate(); err != nil {
		return err
	}

	if err := envutil.WriteDotEnv(*envPath, values, *force); err != nil {
		return err
	}
	fmt.Fprintf(out, "wrote %s\n", *envPath)
	return nil
}

func randomSecret() (string, error) {
	buf := make([]byte, 24)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate secret: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

func runCommand(args []string) error {
	if len(args) > 0 {
		return usageError()
	}
	if err := envutil.LoadDotEnv(".env"); err != nil {
		return fmt.Errorf("load .env: %w", err)
	}

	cfg := consoleapp.DefaultConfigFromEnv()
	log, err := logging.New(cfg.Env)
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	if cfg.SessionDir != "" {
		if err := os.MkdirAll(cfg.SessionDir, 0o700); err != nil {
			return fmt.Errorf("create directory %s: %w", cfg.SessionDir, err)
		}
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := consoleapp.Run(ctx, cfg, log); err != nil && !errors.Is(err, context.Canceled) {
		log.Error("console stopped", zap.Error(err))
		return err
	}
	return nil
}

func runTemplate(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("template", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	path := fs.String("o", ingest.TemplateFileName, `output file, "-" for stdout`)
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", ErrUsage, err)
	}

	if *path == "-" {
		_, err := out.Write(ingest.Template())
		return err
	}
	if err := os.WriteFile(*path, ingest.Template(), 0o644); err != nil {
		return err
	}
	fmt.Fprintf(out, "wrote %s\n", *path)
	return nil
}

// runPreview parses a spreadsheet the way the import page does, without
// contacting the API.
func runPreview(args []string, out io.Writer) error {
	if len(args) != 1 {
		return fmt.Errorf("%w: leavedesk preview <file>", ErrUsage)
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}
	preview, err := ingest.Parse(filepath.Base(args[0]), data)
	if err != nil {
		return err
	}
	if preview.Empty() {
		fmt.Fprintln(out, "no rows")
		return nil
	}
	_, err = io.WriteString(out, preview.TSV())
	return err
}
