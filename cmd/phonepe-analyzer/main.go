package main

import (
	"flag"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"

	"github.com/fatih/color"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"

	"phonepe-analyzer/internal/categorize"
	"phonepe-analyzer/internal/config"
	"phonepe-analyzer/internal/qa"
	"phonepe-analyzer/internal/server"
	"phonepe-analyzer/internal/statement"
	"phonepe-analyzer/internal/store"
)

var (
	addr      = flag.String("addr", "", "Address to listen on. Overrides config and ADDR env.")
	configDir = flag.String("conf", os.Getenv("HOME")+"/.phonepe-analyzer",
		"Config directory holding config.yaml, keywords.yaml and the learning store.")
	provider = flag.String("ai", "", "QA model provider: huggingface or anthropic. Overrides config.")
)

func checkf(err error, format string, args ...any) {
	if err != nil {
		log.Printf(format, args...)
		log.Println()
		log.Fatalf("%+v", errors.WithStack(err))
	}
}

var errc = color.New(color.BgRed, color.FgWhite).PrintfFunc()

func oerr(msg string) {
	errc("\tERROR: " + msg + " ")
	fmt.Println()
	fmt.Println("Flags available:")
	flag.PrintDefaults()
	fmt.Println()
}

func buildAnswerer(cfg *config.Config, logger *slog.Logger) (qa.Answerer, error) {
	switch cfg.AI.Provider {
	case "anthropic":
		return qa.NewAnthropicModel(cfg.AI.APIKey, cfg.AI.Model, cfg.AI.Timeout(), logger)
	case "huggingface", "":
		return qa.NewHFModel(cfg.AI.Model, cfg.AI.APIKey, cfg.AI.Timeout(), logger), nil
	}
	return nil, errors.Errorf("unknown QA provider %q", cfg.AI.Provider)
}

func main() {
	flag.Parse()

	_ = godotenv.Load()

	checkf(os.MkdirAll(*configDir, 0o755), "Unable to create directory: %v", *configDir)

	cfg, err := config.Load(*configDir)
	checkf(err, "Unable to load config from %v", *configDir)
	if len(*addr) > 0 {
		cfg.Addr = *addr
	}
	if len(*provider) > 0 {
		cfg.AI.Provider = *provider
		cfg.ResolveAPIKey()
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	st, err := store.Open(cfg.StorePath())
	checkf(err, "Unable to open store at %v", cfg.StorePath())
	defer st.Close()

	rules, err := categorize.LoadRules(cfg.KeywordsPath())
	if err != nil {
		// No keywords.yaml is the common case; seed rules apply.
		rules = categorize.DefaultRules()
	}
	cat, err := categorize.New(st, rules)
	checkf(err, "Unable to load categorizer state")

	answerer, err := buildAnswerer(cfg, logger)
	if err != nil {
		oerr(err.Error())
		return
	}
	adapter := qa.NewAdapter(answerer, cfg.ContextLimit, logger)

	srv, err := server.New(st, cat, adapter, &statement.PDFParser{Pdftotext: cfg.Pdftotext}, logger)
	checkf(err, "Unable to restore session state")

	color.New(color.FgGreen).Printf("phonepe-analyzer listening on %s (QA provider: %s)\n", cfg.Addr, cfg.AI.Provider)
	checkf(http.ListenAndServe(cfg.Addr, srv.Router()), "HTTP server failed")
}
