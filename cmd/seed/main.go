package main

import (
	"context"
	"flag"
	"log"
	"time"

	"github.com/openhaus/realtycrm/config"
	"github.com/openhaus/realtycrm/pkg/database"
	"github.com/openhaus/realtycrm/pkg/testdata"
)

// Seeds the database with fake leads and note histories for local
// development. Run with: go run ./cmd/seed -count 100
func main() {
	count := flag.Int("count", 50, "number of leads to generate")
	flag.Parse()

	cfg := config.Load()
	db, err := database.NewClient(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("❌ Failed to connect to database: %v", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	if err := db.Migrate(ctx); err != nil {
		log.Fatalf("❌ Failed to migrate database: %v", err)
	}

	genCfg := testdata.DefaultGeneratorConfig()
	genCfg.Count = *count
	generated := testdata.Generate(genCfg)

	inserted := 0
	for _, g := range generated {
		var leadID int
		err := db.DB.GetContext(ctx, &leadID, `
			INSERT INTO leads (name, email, phone, company, address, status)
			VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING id`,
			g.Lead.Name, g.Lead.Email, g.Lead.Phone, g.Lead.Company, g.Lead.Address, g.Lead.Status,
		)
		if err != nil {
			log.Fatalf("❌ Failed to insert lead: %v", err)
		}
		for _, n := range g.Notes {
			_, err := db.DB.ExecContext(ctx, `
				INSERT INTO lead_notes (id, lead_id, note_type, body, created_at)
				VALUES ($1, $2, $3, $4, $5)`,
				n.ID, leadID, n.Type, n.Body, n.CreatedAt,
			)
			if err != nil {
				log.Fatalf("❌ Failed to insert note: %v", err)
			}
		}
		inserted++
	}

	log.Printf("✅ Seeded %d leads", inserted)
}
