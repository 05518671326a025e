package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/juank27/alegra-api/internal/alegra"
	"github.com/juank27/alegra-api/internal/auth"
	"github.com/juank27/alegra-api/internal/config"
	"github.com/juank27/alegra-api/internal/logging"
	"github.com/juank27/alegra-api/internal/pipeline"
	"github.com/juank27/alegra-api/internal/server"
	"github.com/juank27/alegra-api/internal/storage"
)

func main() {
	cfg, err := config.Load()
	must(err)

	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	logger, err := logging.New(cfg.LogFile)
	must(err)

	db, err := storage.Open(cfg.DBPath)
	must(err)
	defer db.Close()

	cipher, err := auth.NewCipher(cfg.SecretKey)
	must(err)
	store := auth.NewTokenStore(db, cipher)

	cmd := os.Args[1]
	switch cmd {
	case "serve":
		must(cfg.Require("ALEGRA_EMAIL", cfg.AlegraEmail))
		must(cfg.Require("ALEGRA_TOKEN", cfg.AlegraToken))
		must(cfg.Require("ADMIN_EMAIL", cfg.AdminEmail))
		must(cfg.Require("ADMIN_TOKEN", cfg.AdminToken))
		must(store.EnsureAdmin(cfg.AdminEmail, cfg.AdminToken))
		_ = db.SetMetadata("auth.admin_seeded_at", time.Now().UTC().Format(time.RFC3339))

		client := alegra.NewClient(cfg)
		processor := pipeline.NewProcessingService(db, cfg, client, logger)
		svc := server.NewBillService(processor, store, db, cfg.UploadDir, logger)
		mux := server.SetupRoutes(svc, store, logger)

		logger.Info("listening", "addr", cfg.ListenAddr)
		must(http.ListenAndServe(cfg.ListenAddr, mux))
	case "token:issue":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		email := fs.String("email", "", "user email")
		_ = fs.Parse(os.Args[2:])
		if strings.TrimSpace(*email) == "" {
			must(fmt.Errorf("--email is required"))
		}
		token, err := auth.GenerateToken()
		must(err)
		must(store.SaveToken(*email, token))
		fmt.Printf("token issued email=%s token=%s\n", *email, token)
	case "run":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		input := fs.String("input", "", "input .csv or .xlsx path")
		submit := fs.Bool("submit", false, "submit to the invoicing API instead of previewing")
		_ = fs.Parse(os.Args[2:])
		if strings.TrimSpace(*input) == "" {
			must(fmt.Errorf("--input is required"))
		}

		client := alegra.NewClient(cfg)
		processor := pipeline.NewProcessingService(db, cfg, client, logger)
		rows, err := processor.DecodeFile(*input)
		must(err)

		if *submit {
			must(cfg.Require("ALEGRA_EMAIL", cfg.AlegraEmail))
			must(cfg.Require("ALEGRA_TOKEN", cfg.AlegraToken))
			report, err := processor.Process(context.Background(), "cli", *input, rows)
			must(err)
			printJSON(report)
			if len(report.GroupingErrors) > 0 || len(report.BatchErrors) > 0 {
				os.Exit(1)
			}
			return
		}

		bills, groupErrs, err := processor.Preview(rows)
		must(err)
		printJSON(map[string]any{"bills": bills, "groupingErrors": groupErrs})
	default:
		usage()
		os.Exit(1)
	}
}

func printJSON(v any) {
	blob, _ := json.MarshalIndent(v, "", "  ")
	fmt.Println(string(blob))
}

func usage() {
	fmt.Println("usage: alegra-api <command>")
	fmt.Println("commands:")
	fmt.Println("  serve")
	fmt.Println("  token:issue --email=user@example.com")
	fmt.Println("  run --input=./bills.csv [--submit]")
}

func must(err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(1)
}
