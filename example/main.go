package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	biostream "github.com/bigyambat/BioStream"
	"github.com/bigyambat/BioStream/canvas"
	"github.com/bigyambat/BioStream/editor"
	"github.com/bigyambat/BioStream/palette"
	"github.com/bigyambat/BioStream/postgres"
	"github.com/bigyambat/BioStream/sqlite"
	"github.com/bigyambat/BioStream/toolbar"
)

func main() {
	ctx := context.Background()

	// Postgres when DATABASE_URL is set, otherwise an in-memory SQLite file.
	var store biostream.Store
	if dbURL := os.Getenv("DATABASE_URL"); dbURL != "" {
		pool, err := pgxpool.New(ctx, dbURL)
		if err != nil {
			log.Fatalf("connect: %v", err)
		}
		defer pool.Close()
		store = postgres.New(pool)
	} else {
		s, err := sqlite.Open(ctx, ":memory:")
		if err != nil {
			log.Fatalf("open sqlite: %v", err)
		}
		defer s.Close()
		store = s
	}

	if err := store.CreateSchema(ctx); err != nil {
		log.Fatalf("schema: %v", err)
	}
	fmt.Println("schema created")

	// ── Build a workflow through the editor ───────────────────────────
	p := biostream.NewProject("rnaseq-qc", "RNA-seq QC", "example", time.Now())
	ed := editor.New(p)
	tb := toolbar.New(ed, toolbar.WithStore(store))
	cv := canvas.New(ed)
	defer cv.Close()

	reads, _ := ed.CreateNodeFromTemplate("csv-reader", biostream.Position{X: 100, Y: 100})
	// Auto-connect links each new node to the latest leaf.
	filter, _ := ed.CreateNodeFromTemplate("filter-data", biostream.Position{X: 350, Y: 100})

	// A drop from the palette lands where the pointer was released.
	bounds := canvas.Rect{Width: 1200, Height: 800}
	plot, ok := cv.Drop(canvas.Point{X: 600, Y: 100}, bounds, palette.EncodePayload(mustTemplate("scatter-plot")))
	if !ok {
		log.Fatal("drop refused")
	}
	fmt.Printf("nodes: %s -> %s -> %s\n", reads, filter, plot)

	label := "Low-count filter"
	if err := ed.UpdateNode(filter, editor.NodePatch{Label: &label}); err != nil {
		log.Fatalf("update: %v", err)
	}

	// ── Save and reload ───────────────────────────────────────────────
	if err := tb.Save(ctx); err != nil {
		log.Fatalf("save: %v", err)
	}
	summaries, err := store.ListProjects(ctx)
	if err != nil {
		log.Fatalf("list: %v", err)
	}
	fmt.Println("\nsaved projects:")
	printJSON(summaries)

	ed.DeleteNode(plot)
	fmt.Printf("\nafter delete: %d nodes, unsaved=%v\n", len(ed.Project().Nodes), tb.State().Unsaved)
	ed.Undo()
	fmt.Printf("after undo: %d nodes\n", len(ed.Project().Nodes))

	if err := tb.Open(ctx, p.ID); err != nil {
		log.Fatalf("open: %v", err)
	}
	fmt.Printf("reopened: %d nodes, %d edges\n", len(ed.Project().Nodes), len(ed.Project().Edges))

	// ── Export ────────────────────────────────────────────────────────
	var doc bytes.Buffer
	if err := tb.Export(&doc); err != nil {
		log.Fatalf("export: %v", err)
	}
	fmt.Printf("\nexported %d bytes\n", doc.Len())

	order, err := biostream.TopologicalOrder(ed.Project().Nodes, ed.Project().Edges)
	if err != nil {
		log.Fatalf("order: %v", err)
	}
	fmt.Printf("run order: %v\n", order)

	// ── Cleanup ───────────────────────────────────────────────────────
	if err := store.DeleteProject(ctx, p.ID); err != nil {
		log.Fatalf("delete: %v", err)
	}
	fmt.Println("\nproject deleted")
}

func mustTemplate(id string) palette.Template {
	t, ok := palette.Default().Get(id)
	if !ok {
		log.Fatalf("no template %q", id)
	}
	return t
}

func printJSON(v any) {
	out, _ := json.MarshalIndent(v, "", "  ")
	fmt.Println(string(out))
}
