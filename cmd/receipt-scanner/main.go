package main

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/peterbourgon/ff/v4"
	"github.com/peterbourgon/ff/v4/ffhelp"

	"github.com/zombor/receipt-scanner/internal/receipt"
	"github.com/zombor/receipt-scanner/internal/scanning"
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

	// A .env file is optional; real environment variables win
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("Failed to load .env file", "error", err)
	}

	fs := ff.NewFlagSet("receipt-scanner")
	var (
		port          = fs.IntLong("port", 5000, "HTTP server port")
		dbPath        = fs.StringLong("db", "receipt-scanner.db", "Database file path")
		storagePath   = fs.StringLong("storage", "./receipts", "Directory for retained receipt images")
		keepImages    = fs.BoolLong("keep-images", "Keep uploaded images after OCR")
		scannerType   = fs.StringLong("scanner", "tesseract", "OCR backend: 'tesseract', 'gemini' or 'ollama'")
		tesseractLang = fs.StringLong("tesseract-lang", "eng", "Tesseract languages, '+' separated (e.g. eng+deu)")
		geminiKey     = fs.StringLong("gemini-key", "", "Google Gemini API key (or set GEMINI_API_KEY env var)")
		geminiModel   = fs.StringLong("gemini-model", "gemini-2.5-flash", "Google Gemini model name")
		ollamaURL     = fs.StringLong("ollama-url", "http://localhost:11434", "Ollama API base URL")
		ollamaModel   = fs.StringLong("ollama-model", "llava", "Ollama vision model name (e.g., llava, qwen2-vl, minicpm-v)")
		authUser      = fs.StringLong("auth-user", "", "Basic auth username (optional)")
		authPass      = fs.StringLong("auth-pass", "", "Basic auth password (optional)")
		_             = fs.BoolLong("version", "Show version information")
	)

	if err := ff.Parse(fs, os.Args[1:],
		ff.WithEnvVarPrefix("RECEIPT_SCANNER"),
	); err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", ffhelp.Flags(fs))
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	slog.Info("Initializing database...", "path", *dbPath)
	db, err := receipt.NewBoltDB(*dbPath)
	if err != nil {
		slog.Error("Failed to initialize database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	var scanner scanning.Scanner
	switch *scannerType {
	case "tesseract":
		langs := strings.Split(*tesseractLang, "+")
		slog.Info("Initializing Tesseract scanner...", "languages", langs)
		scanner, err = scanning.NewTesseract(langs...)
	case "gemini":
		apiKey := *geminiKey
		if apiKey == "" {
			apiKey = os.Getenv("GEMINI_API_KEY")
		}
		if apiKey == "" {
			slog.Error("Gemini API key is required. Set --gemini-key flag or GEMINI_API_KEY environment variable")
			os.Exit(1)
		}
		slog.Info("Initializing Gemini scanner...", "model", *geminiModel)
		scanner, err = scanning.NewGemini(apiKey, *geminiModel)
	case "ollama":
		slog.Info("Initializing Ollama scanner...", "url", *ollamaURL, "model", *ollamaModel)
		scanner, err = scanning.NewOllama(*ollamaURL, *ollamaModel)
	default:
		slog.Error("Invalid scanner type", "type", *scannerType, "valid", "tesseract, gemini or ollama")
		os.Exit(1)
	}
	if err != nil {
		slog.Error("Failed to initialize scanner", "type", *scannerType, "error", err)
		os.Exit(1)
	}
	defer scanner.Close()

	// Storage is always opened so images kept by earlier runs stay reachable
	slog.Info("Initializing storage...", "path", *storagePath, "keep_images", *keepImages)
	store, err := receipt.NewLocalStorage(*storagePath)
	if err != nil {
		slog.Error("Failed to initialize storage", "error", err)
		os.Exit(1)
	}

	receiptService := receipt.NewService(db, scanner, store, *keepImages)

	basicAuth := receipt.BasicAuth{
		Username: *authUser,
		Password: *authPass,
	}
	server := receipt.NewServer(receiptService, basicAuth)

	addr := fmt.Sprintf(":%d", *port)
	errChan := make(chan error, 1)
	go func() {
		errChan <- server.Start(addr)
	}()

	slog.Info("Server started", "address", fmt.Sprintf("http://localhost%s", addr), "version", version)
	if *authUser != "" || *authPass != "" {
		slog.Info("Basic auth enabled", "user", *authUser)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errChan:
		if err != nil {
			slog.Error("Server error", "error", err)
			os.Exit(1)
		}
	case <-sigChan:
		slog.Info("Shutting down...")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			slog.Error("Shutdown error", "error", err)
		}
	}
}
