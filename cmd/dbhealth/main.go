package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/paper-summarizer/internal/app"
	"github.com/joseph-ayodele/paper-summarizer/internal/common"
	repo "github.com/joseph-ayodele/paper-summarizer/internal/repository"
)

func main() {
	var (
		configPath = flag.String("config", "", "optional YAML config file")
		limit      = flag.Int("limit", 20, "uploads to list, newest first (0 lists all)")
		metadataID = flag.String("metadata", "", "print the metadata record for this upload id")
		uploadID   = flag.String("upload", "", "write the stored PDF for this upload id to -o")
		outputID   = flag.String("output", "", "write the XLSX export for this batch id to -o")
		outPath    = flag.String("o", "", "destination file for -upload or -output")
	)
	flag.Parse()

	cfg, err := common.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	db, err := app.OpenDatabase(ctx, cfg, nil)
	if err != nil {
		log.Fatalf("DB health: FAIL (%v)", err)
	}
	defer db.Close()
	log.Printf("DB health: OK (dialect %s)", db.Dialect())

	repos := repo.New(db, nil)

	switch {
	case *metadataID != "":
		id := mustUUID(*metadataID)
		m, err := repos.Metadata.Get(ctx, id)
		if err != nil {
			log.Fatalf("fetching metadata: %v", err)
		}
		fmt.Printf("id:        %s\nbatch:     %s\ndoi/issn:  %s\ntitle:     %s\nauthors:   %s\nmodel:     %s\nprocessed: %s\nsummary:   %s\n",
			m.ID, m.BatchID, m.DOIISSN, m.Title, m.Authors, m.Model, m.ProcessedAt.Format(time.RFC3339), m.Summary)
	case *uploadID != "":
		blob, err := repos.Uploads.GetBlob(ctx, mustUUID(*uploadID))
		if err != nil {
			log.Fatalf("fetching upload: %v", err)
		}
		writeOut(*outPath, blob)
	case *outputID != "":
		out, err := repos.Outputs.Get(ctx, mustUUID(*outputID))
		if err != nil {
			log.Fatalf("fetching output: %v", err)
		}
		writeOut(*outPath, out.Blob)
	default:
		ups, err := repos.Uploads.List(ctx, *limit)
		if err != nil {
			log.Fatalf("listing uploads: %v", err)
		}
		log.Printf("uploads: %d", len(ups))
		for _, u := range ups {
			fmt.Printf("%s  %s  %8d  %-28s %s\n", u.ID, u.UploadedAt.Format(time.RFC3339), u.Size, u.Model, u.Filename)
		}
	}
}

func mustUUID(s string) uuid.UUID {
	id, err := uuid.Parse(s)
	if err != nil {
		log.Fatalf("invalid id %q: %v", s, err)
	}
	return id
}

func writeOut(path string, data []byte) {
	if path == "" {
		log.Fatal("-o is required")
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		log.Fatalf("writing %s: %v", path, err)
	}
	log.Printf("wrote %d bytes to %s", len(data), path)
}
