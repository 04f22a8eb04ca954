// pagetranslate - translate manga/comic pages through a remote
// image-translation service.
//
// Sub-commands:
//
//	pagetranslate translate [flags] SRC DST [SRC DST ...]   Translate pages (default)
//	pagetranslate translate [flags] -list pairs.tsv         Read SRC<TAB>DST pairs from a file
//	pagetranslate login [flags]                             Check credentials
//
// Configuration comes from the environment or a .env file
// (PAGETRANSLATE_EMAIL, PAGETRANSLATE_PASSWORD, PAGETRANSLATE_FINGERPRINT, ...).
// Locations may be local paths or s3://bucket/key when S3 is configured.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/pagetranslate/pagetranslate/internal/config"
	"github.com/pagetranslate/pagetranslate/internal/logging"
	"github.com/pagetranslate/pagetranslate/internal/metrics"
	"github.com/pagetranslate/pagetranslate/internal/storage"
	"github.com/pagetranslate/pagetranslate/internal/storage/local"
	s3backend "github.com/pagetranslate/pagetranslate/internal/storage/s3"
	"github.com/pagetranslate/pagetranslate/pkg/client"
	"github.com/pagetranslate/pagetranslate/pkg/translator"
)

func main() {
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "login":
			os.Exit(cmdLogin(os.Args[2:]))
		case "translate":
			os.Exit(cmdTranslate(os.Args[2:]))
		case "help", "-h", "--help":
			usage()
			return
		}
	}

	os.Exit(cmdTranslate(os.Args[1:]))
}

func usage() {
	fmt.Fprintf(os.Stderr, `Usage:
  pagetranslate translate [flags] SRC DST [SRC DST ...]
  pagetranslate translate [flags] -list pairs.tsv
  pagetranslate login [flags]

Run "pagetranslate <command> -h" for command flags.
`)
}

// commonFlags are shared by every sub-command.
type commonFlags struct {
	envFile   string
	verbosity int
	backend   string
	baseURL   string
}

func (c *commonFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&c.envFile, "env", ".env", "Optional env file")
	fs.IntVar(&c.verbosity, "v", 1, "Verbosity level: 0=errors, 1=info, 2=debug")
	fs.StringVar(&c.backend, "backend", "", "Translation backend (default from PAGETRANSLATE_BACKEND)")
	fs.StringVar(&c.baseURL, "server", "", "Service base URL (default from PAGETRANSLATE_BASE_URL)")
}

// setup loads configuration, applies flag overrides, initializes logging
// and prompts for a password when none is configured.
func setup(c *commonFlags) (*config.Config, error) {
	cfg, err := config.Load(c.envFile)
	if err != nil {
		return nil, err
	}
	if c.backend != "" {
		cfg.Backend = c.backend
	}
	if c.baseURL != "" {
		cfg.BaseURL = strings.TrimSuffix(c.baseURL, "/")
	}

	cfg.LogLevel = logLevel(c.verbosity, cfg.LogLevel)
	if err := logging.Init(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat, OutputPath: "stderr"}); err != nil {
		return nil, fmt.Errorf("init logging: %w", err)
	}

	if cfg.Email != "" && cfg.Password == "" && term.IsTerminal(int(syscall.Stdin)) {
		fmt.Fprintf(os.Stderr, "Password for %s: ", cfg.Email)
		passwordBytes, err := term.ReadPassword(int(syscall.Stdin))
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return nil, fmt.Errorf("read password: %w", err)
		}
		cfg.Password = string(passwordBytes)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// logLevel maps -v to a log level. Level 1 keeps the configured LOG_LEVEL.
func logLevel(verbosity int, configured string) string {
	switch {
	case verbosity <= 0:
		return "error"
	case verbosity == 1:
		return configured
	default:
		return "debug"
	}
}

func newClient(cfg *config.Config) *client.Client {
	return client.New(client.Config{
		BaseURL:     cfg.BaseURL,
		Timeout:     cfg.Timeout,
		RetryConfig: cfg.RetryConfig(),
	})
}

func newStore(ctx context.Context, cfg *config.Config, createDirs bool) (*storage.Router, error) {
	localBackend, err := local.New(local.Config{CreateDirs: createDirs})
	if err != nil {
		return nil, err
	}

	var s3 storage.Backend
	if cfg.S3Enabled {
		b, err := s3backend.NewBackend(ctx, s3backend.Config{
			Endpoint:  cfg.S3Endpoint,
			Region:    cfg.S3Region,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
		})
		if err != nil {
			return nil, fmt.Errorf("init s3: %w", err)
		}
		s3 = b
	}

	return storage.NewRouter(localBackend, s3), nil
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func cmdTranslate(args []string) int {
	fs := flag.NewFlagSet("translate", flag.ExitOnError)
	var common commonFlags
	common.register(fs)
	listFile := fs.String("list", "", "File of SRC<TAB>DST pairs, one per line ('-' for stdin)")
	streams := fs.Int("streams", 0, "Concurrent streams per batch (default from PAGETRANSLATE_STREAMS)")
	mkdir := fs.Bool("mkdir", false, "Create missing destination directories")
	fs.Parse(args)

	cfg, err := setup(&common)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 2
	}
	defer logging.Sync()
	if *streams > 0 {
		cfg.Streams = *streams
	}

	jobs, err := collectJobs(fs.Args(), *listFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 2
	}

	ctx, cancel := signalContext()
	defer cancel()

	store, err := newStore(ctx, cfg, *mkdir)
	if err != nil {
		logging.Error("storage setup failed", zap.Error(err))
		return 1
	}
	defer store.Close()

	backend, err := translator.NewBackend(translator.Kind(cfg.Backend), newClient(cfg), store)
	if err != nil {
		logging.Error("backend setup failed", zap.Error(err))
		return 1
	}

	start := time.Now()
	code := 0
	tr, err := translator.New(ctx, backend, store, cfg.Credentials(), translator.WithStreams(cfg.Streams), translator.WithMaxInFlight(cfg.MaxInFlight))
	if err != nil {
		logging.Error("login failed", zap.Error(err))
		code = 1
	} else if err := tr.Translate(ctx, jobs); err != nil {
		logging.Error("translation failed", zap.Error(err))
		code = 1
	} else {
		logging.Info("done", zap.Int("pages", len(jobs)), zap.Duration("elapsed", time.Since(start)))
	}

	if cfg.MetricsTextfile != "" {
		if err := metrics.WriteTextfile(cfg.MetricsTextfile); err != nil {
			logging.Warn("failed to write metrics", zap.String("path", cfg.MetricsTextfile), zap.Error(err))
		}
	}
	return code
}

func cmdLogin(args []string) int {
	fs := flag.NewFlagSet("login", flag.ExitOnError)
	var common commonFlags
	common.register(fs)
	fs.Parse(args)

	cfg, err := setup(&common)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 2
	}
	defer logging.Sync()

	ctx, cancel := signalContext()
	defer cancel()

	result, err := newClient(cfg).Login(ctx, cfg.Email, cfg.Password)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	fmt.Printf("Login successful for %s\n", cfg.Email)
	fmt.Printf("  Client UUID: %s\n", cfg.ClientUUID)
	if result.ExpiresAt.IsZero() {
		fmt.Println("  Token expiry: unknown")
	} else {
		fmt.Printf("  Token expires: %s\n", result.ExpiresAt.Format(time.RFC3339))
	}
	return 0
}

// collectJobs builds the job list from positional SRC DST pairs and/or a list file.
func collectJobs(args []string, listFile string) ([]translator.Job, error) {
	if len(args)%2 != 0 {
		return nil, fmt.Errorf("expected SRC DST pairs, got %d arguments", len(args))
	}

	var jobs []translator.Job
	for i := 0; i < len(args); i += 2 {
		jobs = append(jobs, translator.Job{Source: args[i], Destination: args[i+1]})
	}

	if listFile != "" {
		var r io.Reader = os.Stdin
		if listFile != "-" {
			f, err := os.Open(listFile)
			if err != nil {
				return nil, err
			}
			defer f.Close()
			r = f
		}
		listed, err := readPairs(r)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", listFile, err)
		}
		jobs = append(jobs, listed...)
	}

	return jobs, nil
}

// readPairs parses SRC<TAB>DST lines. Blank lines and lines starting with '#' are skipped.
func readPairs(r io.Reader) ([]translator.Job, error) {
	var jobs []translator.Job
	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		src, dst, ok := strings.Cut(text, "\t")
		src, dst = strings.TrimSpace(src), strings.TrimSpace(dst)
		if !ok || src == "" || dst == "" {
			return nil, fmt.Errorf("line %d: expected SRC<TAB>DST", line)
		}
		jobs = append(jobs, translator.Job{Source: src, Destination: dst})
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return jobs, nil
}
