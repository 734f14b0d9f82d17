// Command import loads a directory of article files into the club database.
//
//	import -dir ./articles -author admin-subject
package main

import (
	"context"
	"flag"
	"fmt"
	"go-club-app/internal/config"
	"go-club-app/internal/content"
	"go-club-app/internal/data"
	"go-club-app/internal/importer"
	"go-club-app/internal/logger"
	"go-club-app/internal/service"
	"os"
	"os/signal"
)

func main() {
	dir := flag.String("dir", "", "directory holding .md, .json, .html or .txt article files")
	author := flag.String("author", "import", "subject recorded as the author of new articles")
	flag.Parse()

	if *dir == "" {
		fmt.Fprintln(os.Stderr, "-dir is required")
		os.Exit(2)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(cfg.Log, logger.Output(cfg.Log))

	if err := data.ApplyMigrations(cfg.DB, "migrations"); err != nil {
		log.Fatal(err, "Failed to apply migrations")
	}
	db, err := data.NewDB(cfg.DB)
	if err != nil {
		log.Fatal(err, "Failed to connect to database")
	}
	defer db.Close()

	// Saving never reads the render cache; cache keys carry the update time.
	articles := service.NewArticleService(data.NewSQLArticleRepository(db), content.NewRenderer(), nil, log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	res, err := importer.New(articles, *author, log).Import(ctx, os.DirFS(*dir), ".")
	if err != nil {
		log.Error(err, "Import stopped early")
	}
	log.Info(fmt.Sprintf("Imported %d articles, skipped %d", len(res.Imported), len(res.Skipped)))
	if err != nil || len(res.Skipped) > 0 {
		os.Exit(1)
	}
}
