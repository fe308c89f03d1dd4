package main

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/peterbourgon/ff/v4"
	"github.com/peterbourgon/ff/v4/ffhelp"
	"github.com/peterbourgon/ff/v4/ffyaml"

	"github.com/zombor/boleto-reader/internal/inbox"
	"github.com/zombor/boleto-reader/internal/scanning"
	"github.com/zombor/boleto-reader/internal/scanning/tesseract"
	"github.com/zombor/boleto-reader/internal/slip"
)

//go:embed VERSION.txt
var versionFile string

var version = strings.TrimSpace(versionFile)

func main() {
	// Check for version flag before parsing other flags
	for _, arg := range os.Args[1:] {
		if arg == "--version" || arg == "-version" || arg == "-v" {
			fmt.Println(version)
			os.Exit(0)
		}
	}

	fs := ff.NewFlagSet("boleto-reader")
	var (
		port        = fs.IntLong("port", 8080, "HTTP server port")
		dbPath      = fs.StringLong("db", "boleto-reader.db", "Database file path")
		storagePath = fs.StringLong("storage", "./slips", "Storage directory path")
		ocrType     = fs.StringLong("ocr", "none", "OCR for scanned pages and photos: 'none', 'tesseract', 'gemini' or 'ollama'")
		ocrLang     = fs.StringLong("ocr-lang", "por", "Tesseract languages, '+' separated")
		dpi         = fs.IntLong("dpi", 300, "Resolution used when rendering PDF pages for OCR")
		geminiKey   = fs.StringLong("gemini-key", "", "Google Gemini API key (or set GEMINI_API_KEY env var)")
		geminiModel = fs.StringLong("gemini-model", "gemini-2.5-flash", "Google Gemini model name")
		ollamaURL   = fs.StringLong("ollama-url", "http://localhost:11434", "Ollama API base URL")
		ollamaModel = fs.StringLong("ollama-model", "qwen2.5vl", "Ollama vision model name")
		authUser    = fs.StringLong("auth-user", "", "Basic auth username (optional)")
		authPass    = fs.StringLong("auth-pass", "", "Basic auth password (optional)")
		watchDir    = fs.StringLong("watch", "", "Directory to watch for new slips (optional)")
		file        = fs.StringLong("file", "", "Scan a single document, print the result and exit")
		password    = fs.StringLong("password", "", "Password for a protected PDF given with --file")
		_           = fs.StringLong("config", "", "YAML config file (optional)")
		showVersion = fs.BoolLong("version", "Show version information")
	)

	if err := ff.Parse(fs, os.Args[1:],
		ff.WithEnvVarPrefix("BOLETO_READER"),
		ff.WithConfigFileFlag("config"),
		ff.WithConfigFileParser(ffyaml.Parse),
	); err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", ffhelp.Flags(fs))
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	if *showVersion {
		fmt.Println(version)
		os.Exit(0)
	}

	transcriber, err := newTranscriber(*ocrType, transcriberConfig{
		lang:        *ocrLang,
		geminiKey:   *geminiKey,
		geminiModel: *geminiModel,
		ollamaURL:   *ollamaURL,
		ollamaModel: *ollamaModel,
	})
	if err != nil {
		slog.Error("Failed to initialize OCR", "ocr", *ocrType, "error", err)
		os.Exit(1)
	}
	reader := scanning.NewReader(transcriber, float64(*dpi))
	defer reader.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if *file != "" {
		os.Exit(scanFile(ctx, reader, *file, *password))
	}

	slog.Info("Initializing database...")
	db, err := slip.NewBoltDB(*dbPath)
	if err != nil {
		slog.Error("Failed to initialize database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	slog.Info("Initializing storage...")
	store, err := slip.NewLocalStorage(*storagePath)
	if err != nil {
		slog.Error("Failed to initialize storage", "error", err)
		os.Exit(1)
	}

	service := slip.NewService(db, reader, store)

	if *watchDir != "" {
		watcher, err := inbox.NewWatcher(*watchDir, service, inbox.DefaultSettle)
		if err != nil {
			slog.Error("Failed to watch inbox", "dir", *watchDir, "error", err)
			os.Exit(1)
		}
		defer watcher.Close()
		go func() {
			if err := watcher.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				slog.Error("Inbox watcher stopped", "error", err)
			}
		}()
	}

	server := slip.NewServer(service, slip.BasicAuth{
		Username: *authUser,
		Password: *authPass,
	})

	addr := fmt.Sprintf(":%d", *port)
	go func() {
		if err := server.Start(addr); err != nil {
			slog.Error("Server error", "error", err)
			os.Exit(1)
		}
	}()

	slog.Info("Server started", "address", fmt.Sprintf("http://localhost%s", addr), "ocr", *ocrType)
	if *authUser != "" || *authPass != "" {
		slog.Info("Basic auth enabled", "user", *authUser)
	}

	<-ctx.Done()
	slog.Info("Shutting down...")
}

type transcriberConfig struct {
	lang        string
	geminiKey   string
	geminiModel string
	ollamaURL   string
	ollamaModel string
}

// newTranscriber builds the OCR backend. "none" yields a nil Transcriber.
func newTranscriber(kind string, cfg transcriberConfig) (scanning.Transcriber, error) {
	switch kind {
	case "none", "":
		return nil, nil
	case "tesseract":
		slog.Info("Initializing Tesseract OCR...", "lang", cfg.lang)
		return tesseract.New(strings.Split(cfg.lang, "+")...), nil
	case "gemini":
		apiKey := cfg.geminiKey
		if apiKey == "" {
			apiKey = os.Getenv("GEMINI_API_KEY")
		}
		if apiKey == "" {
			return nil, fmt.Errorf("gemini API key is required: set --gemini-key or GEMINI_API_KEY")
		}
		slog.Info("Initializing Gemini OCR...", "model", cfg.geminiModel)
		return scanning.NewGemini(apiKey, cfg.geminiModel)
	case "ollama":
		slog.Info("Initializing Ollama OCR...", "url", cfg.ollamaURL, "model", cfg.ollamaModel)
		return scanning.NewOllama(cfg.ollamaURL, cfg.ollamaModel)
	default:
		return nil, fmt.Errorf("invalid OCR type %q: valid are none, tesseract, gemini, ollama", kind)
	}
}

// scanFile scans one document and prints the result as JSON. The exit code is
// 0 when a line was found, 1 otherwise.
func scanFile(ctx context.Context, scanner scanning.Scanner, path, password string) int {
	data, err := os.ReadFile(path)
	if err != nil {
		slog.Error("Failed to read file", "path", path, "error", err)
		return 1
	}

	result, err := scanner.ScanDocument(ctx, data, slip.ContentTypeFor(filepath.Base(path)), password)
	if err != nil {
		slog.Error("Failed to scan document", "path", path, "error", err)
		return 1
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(result); err != nil {
		slog.Error("Error encoding result", "error", err)
		return 1
	}
	if !result.Found {
		return 1
	}
	return 0
}
