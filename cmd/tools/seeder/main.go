package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/alexedwards/argon2id"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"github.com/niledreams/backend-travel/internal/store"
)

// Seeds a development database with a small Egypt trip catalog, the reward
// ladder, and an admin staff account. Idempotent: rows are keyed by slug or
// email and upserted.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, relying on environment variables")
	}

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL is not set")
	}

	if err := store.Migrate(dbURL); err != nil {
		log.Fatalf("run migrations: %v", err)
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		log.Fatalf("connect database: %v", err)
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		log.Fatalf("ping database: %v", err)
	}

	tx, err := pool.Begin(ctx)
	if err != nil {
		log.Fatalf("begin tx: %v", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	tripIDs, err := seedTrips(ctx, tx)
	if err != nil {
		log.Fatalf("seed trips: %v", err)
	}
	if err := seedRewards(ctx, tx, tripIDs); err != nil {
		log.Fatalf("seed rewards: %v", err)
	}
	if err := seedSEO(ctx, tx); err != nil {
		log.Fatalf("seed seo: %v", err)
	}
	if err := seedStaff(ctx, tx); err != nil {
		log.Fatalf("seed staff: %v", err)
	}

	if err := tx.Commit(ctx); err != nil {
		log.Fatalf("commit: %v", err)
	}
	log.Println("seeding completed")
}

type seedTrip struct {
	slug            string
	title           string
	summary         string
	destination     string
	durationDays    int
	basePriceCents  int64
	childPriceCents *int64
	quickAdd        bool
	recommends      []string
	options         []seedOption
	extras          []seedExtra
}

type seedOption struct {
	label           string
	priceCents      *int64
	childPriceCents *int64
}

type seedExtra struct {
	name       string
	priceCents int64
}

func cents(v int64) *int64 { return &v }

func seedTrips(ctx context.Context, tx pgx.Tx) (map[string]string, error) {
	trips := []seedTrip{
		{
			slug:            "nile-cruise-aswan-luxor",
			title:           "Nile Cruise: Aswan to Luxor",
			summary:         "Four nights sailing the Nile with guided temple visits.",
			destination:     "Aswan",
			durationDays:    5,
			basePriceCents:  129900,
			childPriceCents: cents(64900),
			recommends:      []string{"hot-air-balloon-luxor", "abu-simbel-day-trip"},
			options: []seedOption{
				{label: "Standard cabin"},
				{label: "Upper deck cabin", priceCents: cents(159900), childPriceCents: cents(79900)},
				{label: "Royal suite", priceCents: cents(219900)},
			},
			extras: []seedExtra{
				{name: "Private photographer", priceCents: 9900},
				{name: "Nubian village visit", priceCents: 4500},
			},
		},
		{
			slug:           "pyramids-sphinx-day-tour",
			title:          "Pyramids and Sphinx Day Tour",
			summary:        "Giza plateau, the Sphinx, and the Grand Egyptian Museum in one day.",
			destination:    "Cairo",
			durationDays:   1,
			basePriceCents: 8900,
			quickAdd:       true,
			recommends:     []string{"old-cairo-food-walk"},
			extras: []seedExtra{
				{name: "Camel ride", priceCents: 2500},
				{name: "Lunch by the plateau", priceCents: 1900},
			},
		},
		{
			slug:            "hot-air-balloon-luxor",
			title:           "Hot Air Balloon over Luxor",
			summary:         "Sunrise flight above the Valley of the Kings.",
			destination:     "Luxor",
			durationDays:    1,
			basePriceCents:  14900,
			childPriceCents: cents(9900),
			quickAdd:        true,
		},
		{
			slug:           "abu-simbel-day-trip",
			title:          "Abu Simbel Day Trip",
			summary:        "Early departure to the rock temples of Ramesses II.",
			destination:    "Aswan",
			durationDays:   1,
			basePriceCents: 11900,
			quickAdd:       true,
		},
		{
			slug:           "old-cairo-food-walk",
			title:          "Old Cairo Food Walk",
			summary:        "Street food and hidden courtyards of Islamic Cairo.",
			destination:    "Cairo",
			durationDays:   1,
			basePriceCents: 5900,
			quickAdd:       true,
		},
		{
			slug:            "alexandria-coast-escape",
			title:           "Alexandria Coast Escape",
			summary:         "Two days on the Mediterranean with the catacombs and Qaitbay citadel.",
			destination:     "Alexandria",
			durationDays:    2,
			basePriceCents:  34900,
			childPriceCents: cents(19900),
			options: []seedOption{
				{label: "Shared minivan"},
				{label: "Private car", priceCents: cents(44900)},
			},
		},
	}

	ids := make(map[string]string, len(trips))
	for pos, t := range trips {
		var id string
		err := tx.QueryRow(ctx, `
			INSERT INTO trips (id, slug, title, summary, destination, duration_days,
				base_price_cents, child_price_cents, position, quick_add_eligible)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
			ON CONFLICT (slug) DO UPDATE SET
				title = EXCLUDED.title,
				summary = EXCLUDED.summary,
				destination = EXCLUDED.destination,
				duration_days = EXCLUDED.duration_days,
				base_price_cents = EXCLUDED.base_price_cents,
				child_price_cents = EXCLUDED.child_price_cents,
				position = EXCLUDED.position,
				quick_add_eligible = EXCLUDED.quick_add_eligible,
				updated_at = now()
			RETURNING id`,
			uuid.NewString(), t.slug, t.title, t.summary, t.destination, t.durationDays,
			t.basePriceCents, t.childPriceCents, pos, t.quickAdd,
		).Scan(&id)
		if err != nil {
			return nil, fmt.Errorf("trip %s: %w", t.slug, err)
		}
		ids[t.slug] = id

		for i, opt := range t.options {
			if _, err := tx.Exec(ctx, `
				INSERT INTO trip_options (id, trip_id, label, price_cents, child_price_cents, position)
				VALUES ($1, $2, $3, $4, $5, $6)
				ON CONFLICT (id) DO NOTHING`,
				uuid.NewString(), id, opt.label, opt.priceCents, opt.childPriceCents, i,
			); err != nil {
				return nil, fmt.Errorf("option %s/%s: %w", t.slug, opt.label, err)
			}
		}
		for i, ex := range t.extras {
			if _, err := tx.Exec(ctx, `
				INSERT INTO trip_extras (id, trip_id, name, price_cents, position)
				VALUES ($1, $2, $3, $4, $5)
				ON CONFLICT (id) DO NOTHING`,
				uuid.NewString(), id, ex.name, ex.priceCents, i,
			); err != nil {
				return nil, fmt.Errorf("extra %s/%s: %w", t.slug, ex.name, err)
			}
		}
	}

	// recommended_trip_ids need all trips inserted first.
	for _, t := range trips {
		if len(t.recommends) == 0 {
			continue
		}
		rec := make([]string, 0, len(t.recommends))
		for _, slug := range t.recommends {
			if id, ok := ids[slug]; ok {
				rec = append(rec, id)
			}
		}
		if _, err := tx.Exec(ctx,
			`UPDATE trips SET recommended_trip_ids = $1 WHERE slug = $2`,
			rec, t.slug,
		); err != nil {
			return nil, fmt.Errorf("recommendations %s: %w", t.slug, err)
		}
	}
	return ids, nil
}

func seedRewards(ctx context.Context, tx pgx.Tx, tripIDs map[string]string) error {
	phases := []struct {
		slug           string
		name           string
		headline       string
		thresholdCents int64
		percent        int
		trips          []string
	}{
		{
			slug:           "silver",
			name:           "Silver",
			headline:       "Unlock 5% off a day tour",
			thresholdCents: 50000,
			percent:        5,
			trips:          []string{"pyramids-sphinx-day-tour", "old-cairo-food-walk"},
		},
		{
			slug:           "gold",
			name:           "Gold",
			headline:       "Unlock 10% off a signature experience",
			thresholdCents: 150000,
			percent:        10,
			trips:          []string{"hot-air-balloon-luxor", "abu-simbel-day-trip"},
		},
		{
			slug:           "platinum",
			name:           "Platinum",
			headline:       "Unlock 15% off any trip",
			thresholdCents: 300000,
			percent:        15,
			trips: []string{
				"nile-cruise-aswan-luxor", "pyramids-sphinx-day-tour",
				"hot-air-balloon-luxor", "abu-simbel-day-trip",
				"old-cairo-food-walk", "alexandria-coast-escape",
			},
		},
	}

	for pos, p := range phases {
		var id string
		err := tx.QueryRow(ctx, `
			INSERT INTO reward_phases (id, slug, name, headline, position, threshold_cents, discount_percent)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			ON CONFLICT (slug) DO UPDATE SET
				name = EXCLUDED.name,
				headline = EXCLUDED.headline,
				position = EXCLUDED.position,
				threshold_cents = EXCLUDED.threshold_cents,
				discount_percent = EXCLUDED.discount_percent
			RETURNING id`,
			uuid.NewString(), p.slug, p.name, p.headline, pos, p.thresholdCents, p.percent,
		).Scan(&id)
		if err != nil {
			return fmt.Errorf("phase %s: %w", p.slug, err)
		}

		for i, slug := range p.trips {
			tripID, ok := tripIDs[slug]
			if !ok {
				return fmt.Errorf("phase %s references unknown trip %s", p.slug, slug)
			}
			if _, err := tx.Exec(ctx, `
				INSERT INTO reward_phase_trips (phase_id, trip_id, position)
				VALUES ($1, $2, $3)
				ON CONFLICT (phase_id, trip_id) DO UPDATE SET position = EXCLUDED.position`,
				id, tripID, i,
			); err != nil {
				return fmt.Errorf("phase trip %s/%s: %w", p.slug, slug, err)
			}
		}
	}
	return nil
}

func seedSEO(ctx context.Context, tx pgx.Tx) error {
	entries := []struct {
		path        string
		title       string
		description string
		redirectTo  *string
		status      int
	}{
		{
			path:        "/trips/nile-cruise-aswan-luxor",
			title:       "Nile Cruise from Aswan to Luxor | Nile Dreams",
			description: "Four nights on the Nile with guided temple visits.",
			status:      200,
		},
		{
			path:       "/tours/nile-cruise",
			redirectTo: strPtr("/trips/nile-cruise-aswan-luxor"),
			status:     301,
		},
	}
	for _, e := range entries {
		if _, err := tx.Exec(ctx, `
			INSERT INTO seo_entries (id, path, title, description, redirect_to, status_code)
			VALUES ($1, $2, $3, $4, $5, $6)
			ON CONFLICT (path) DO UPDATE SET
				title = EXCLUDED.title,
				description = EXCLUDED.description,
				redirect_to = EXCLUDED.redirect_to,
				status_code = EXCLUDED.status_code,
				updated_at = now()`,
			uuid.NewString(), e.path, e.title, e.description, e.redirectTo, e.status,
		); err != nil {
			return fmt.Errorf("seo %s: %w", e.path, err)
		}
	}
	return nil
}

func seedStaff(ctx context.Context, tx pgx.Tx) error {
	email := os.Getenv("SEED_ADMIN_EMAIL")
	if email == "" {
		email = "admin@niledreams.test"
	}
	password := os.Getenv("SEED_ADMIN_PASSWORD")
	if password == "" {
		password = "ChangeMe123!"
		log.Printf("SEED_ADMIN_PASSWORD not set, using default for %s", email)
	}

	hash, err := argon2id.CreateHash(password, argon2id.DefaultParams)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if _, err := tx.Exec(ctx, `
		INSERT INTO staff_users (id, email, password_hash, display_name)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (email) DO UPDATE SET
			password_hash = EXCLUDED.password_hash,
			display_name = EXCLUDED.display_name`,
		uuid.NewString(), email, hash, "Site Admin",
	); err != nil {
		return fmt.Errorf("staff %s: %w", email, err)
	}
	return nil
}

func strPtr(s string) *string { return &s }
