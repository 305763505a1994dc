package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/zailushangde/AuctionProperty/internal/config"
	"github.com/zailushangde/AuctionProperty/internal/logger"
	"github.com/zailushangde/AuctionProperty/internal/models"
)

const (
	existsSQL = `SELECT 1 FROM publications WHERE id = $1`

	insertPublicationSQL = `
		INSERT INTO publications (
			id, publication_date, expiration_date, language, cantons,
			title_de, title_fr, title_it, title_en
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO NOTHING`

	insertAuctionSQL = `
		INSERT INTO auctions (
			id, publication_id, date, time, location,
			circulation_entry_deadline, circulation_comment_deadline,
			registration_entry_deadline, registration_comment_deadline
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO NOTHING`

	insertAuctionObjectSQL = `
		INSERT INTO auction_objects (id, auction_id, position, description, latitude, longitude)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO NOTHING`

	insertDebtorSQL = `
		INSERT INTO debtors (
			id, publication_id, debtor_type, name, prename, date_of_birth,
			country_of_origin, residence_type, address, city, postal_code, legal_form
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (id) DO NOTHING`

	insertContactSQL = `
		INSERT INTO contacts (
			id, publication_id, contact_type, office_id, name, street, street_number,
			zip_code, town, phone, email, contains_post_office_box, post_office_box
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (id) DO NOTHING`

	purgeAuctionsSQL = `DELETE FROM auctions WHERE date < $1`

	purgeOrphanedPublicationsSQL = `
		DELETE FROM publications p
		WHERE NOT EXISTS (SELECT 1 FROM auctions a WHERE a.publication_id = p.id)`

	countPublicationsSQL = `SELECT count(*) FROM publications WHERE created_at >= $1 AND created_at < $2`

	countAuctionsSQL = `SELECT count(*) FROM auctions WHERE created_at >= $1 AND created_at < $2`

	countUpcomingAuctionsSQL = `SELECT count(*) FROM auctions WHERE date >= $1 AND date < $2`

	countByCantonSQL = `
		SELECT c, count(*)
		FROM publications p, unnest(p.cantons) AS c
		WHERE p.created_at >= $1 AND p.created_at < $2
		GROUP BY c
		ORDER BY c`
)

// Postgres is the production Store backed by a pgx connection pool.
type Postgres struct {
	pool *pgxpool.Pool
	log  *logger.Logger
}

var _ Store = (*Postgres)(nil)

// NewPostgres connects to the database and verifies the connection with a
// ping bounded by the configured connect timeout.
func NewPostgres(ctx context.Context, cfg *config.DatabaseConfig, log *logger.Logger) (*Postgres, error) {
	if log == nil {
		log = logger.NewNop()
	}

	poolCfg, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database url: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = int32(cfg.MaxConns)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, cfg.GetConnectTimeout())
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Debug("Database pool ready", "max_conns", poolCfg.MaxConns)
	return &Postgres{pool: pool, log: log}, nil
}

// Close releases the underlying connection pool.
func (p *Postgres) Close() {
	p.pool.Close()
}

// EnsureSchema creates the tables and indexes the pipeline writes to.
func (p *Postgres) EnsureSchema(ctx context.Context) error {
	for _, stmt := range schemaStatements {
		if _, err := p.pool.Exec(ctx, stmt); err != nil {
			return &StorageError{Op: "ensure schema", Err: err}
		}
	}
	p.log.Debug("Database schema ensured", "statements", len(schemaStatements))
	return nil
}

// UpsertPublication writes the publication graph in one transaction.
// Children are written after their parents so the foreign keys hold at
// every point inside the transaction.
func (p *Postgres) UpsertPublication(ctx context.Context, pub *models.ParsedPublication) (UpsertResult, error) {
	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return "", &StorageError{Op: "begin transaction", PublicationID: pub.ID, Err: err}
	}
	defer tx.Rollback(ctx)

	var one int
	err = tx.QueryRow(ctx, existsSQL, pub.ID).Scan(&one)
	switch {
	case err == nil:
		return SkippedDuplicate, nil
	case !errors.Is(err, pgx.ErrNoRows):
		return "", &StorageError{Op: "existence check", PublicationID: pub.ID, Err: err}
	}

	tag, err := tx.Exec(ctx, insertPublicationSQL,
		pub.ID,
		pub.PublicationDate.Time(),
		pgDate(pub.ExpirationDate),
		pub.Language,
		pub.Cantons,
		pub.Title.De, pub.Title.Fr, pub.Title.It, pub.Title.En,
	)
	if err != nil {
		return "", &StorageError{Op: "insert publication", PublicationID: pub.ID, Err: err}
	}
	if tag.RowsAffected() == 0 {
		// A concurrent transaction committed the same id between our
		// existence check and the insert.
		return SkippedDuplicate, nil
	}

	for _, a := range pub.Auctions {
		_, err := tx.Exec(ctx, insertAuctionSQL,
			a.ID,
			pub.ID,
			a.Date.Time(),
			pgTime(a.Time),
			a.Location,
			pgDate(a.CirculationEntryDeadline),
			nullText(a.CirculationCommentDeadline),
			pgDate(a.RegistrationEntryDeadline),
			nullText(a.RegistrationCommentDeadline),
		)
		if err != nil {
			return "", &StorageError{Op: "insert auction", PublicationID: pub.ID, Err: err}
		}

		for _, obj := range a.Objects {
			_, err := tx.Exec(ctx, insertAuctionObjectSQL,
				obj.ID, a.ID, obj.Order, obj.Description, obj.Latitude, obj.Longitude,
			)
			if err != nil {
				return "", &StorageError{Op: "insert auction object", PublicationID: pub.ID, Err: err}
			}
		}
	}

	for _, d := range pub.Debtors {
		var (
			name      string
			prename   pgtype.Text
			birth     pgtype.Date
			country   any
			legalForm pgtype.Text
		)
		if d.Person != nil {
			name = d.Person.Name
			prename = nullText(d.Person.Prename)
			birth = pgDate(d.Person.DateOfBirth)
			if d.Person.CountryOfOrigin != nil {
				country = d.Person.CountryOfOrigin
			}
		}
		if d.Company != nil {
			name = d.Company.Name
			legalForm = nullText(d.Company.LegalForm)
		}

		var line1, city, postal pgtype.Text
		if d.Address != nil {
			line1 = nullText(d.Address.Line1)
			city = nullText(d.Address.City)
			postal = nullText(d.Address.PostalCode)
		}

		_, err := tx.Exec(ctx, insertDebtorSQL,
			d.ID, pub.ID, string(d.Type), name, prename, birth,
			country, nullText(string(d.Residence)), line1, city, postal, legalForm,
		)
		if err != nil {
			return "", &StorageError{Op: "insert debtor", PublicationID: pub.ID, Err: err}
		}
	}

	for _, c := range pub.Contacts {
		var box any
		if c.PostOfficeBox != nil {
			box = c.PostOfficeBox
		}
		_, err := tx.Exec(ctx, insertContactSQL,
			c.ID, pub.ID, c.Type, nullText(c.OfficeID), c.Name,
			nullText(c.Street), nullText(c.StreetNumber), nullText(c.ZipCode),
			nullText(c.Town), nullText(c.Phone), nullText(c.Email),
			c.ContainsPostOfficeBox, box,
		)
		if err != nil {
			return "", &StorageError{Op: "insert contact", PublicationID: pub.ID, Err: err}
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return "", &StorageError{Op: "commit transaction", PublicationID: pub.ID, Err: err}
	}
	return Inserted, nil
}

// Exists reports whether a publication id is already stored.
func (p *Postgres) Exists(ctx context.Context, id string) (bool, error) {
	var one int
	err := p.pool.QueryRow(ctx, existsSQL, id).Scan(&one)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, &StorageError{Op: "existence check", PublicationID: id, Err: err}
	}
	return true, nil
}

// PurgeExpired removes auctions dated before olderThan, then publications
// left without auctions. Both deletes run in one transaction.
func (p *Postgres) PurgeExpired(ctx context.Context, olderThan time.Time) (int64, error) {
	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return 0, &StorageError{Op: "begin transaction", Err: err}
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, purgeAuctionsSQL, olderThan)
	if err != nil {
		return 0, &StorageError{Op: "purge auctions", Err: err}
	}
	removed := tag.RowsAffected()

	if _, err := tx.Exec(ctx, purgeOrphanedPublicationsSQL); err != nil {
		return 0, &StorageError{Op: "purge orphaned publications", Err: err}
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, &StorageError{Op: "commit transaction", Err: err}
	}
	return removed, nil
}

// DailyCounts aggregates ingestion activity for the day containing the
// given instant, using the UTC calendar day.
func (p *Postgres) DailyCounts(ctx context.Context, day time.Time) (*DailyCounts, error) {
	start, end := dayWindow(day)
	counts := &DailyCounts{Day: start, ByCanton: make(map[string]int)}

	if err := p.pool.QueryRow(ctx, countPublicationsSQL, start, end).Scan(&counts.NewPublications); err != nil {
		return nil, &StorageError{Op: "count publications", Err: err}
	}
	if err := p.pool.QueryRow(ctx, countAuctionsSQL, start, end).Scan(&counts.NewAuctions); err != nil {
		return nil, &StorageError{Op: "count auctions", Err: err}
	}
	upcomingEnd := start.AddDate(0, 0, upcomingWindowDays)
	if err := p.pool.QueryRow(ctx, countUpcomingAuctionsSQL, start, upcomingEnd).Scan(&counts.UpcomingAuctions); err != nil {
		return nil, &StorageError{Op: "count upcoming auctions", Err: err}
	}

	rows, err := p.pool.Query(ctx, countByCantonSQL, start, end)
	if err != nil {
		return nil, &StorageError{Op: "count by canton", Err: err}
	}
	defer rows.Close()
	for rows.Next() {
		var (
			canton string
			n      int
		)
		if err := rows.Scan(&canton, &n); err != nil {
			return nil, &StorageError{Op: "count by canton", Err: err}
		}
		counts.ByCanton[canton] = n
	}
	if err := rows.Err(); err != nil {
		return nil, &StorageError{Op: "count by canton", Err: err}
	}

	return counts, nil
}

// pgDate maps an optional date to a nullable DATE parameter.
func pgDate(d *models.Date) pgtype.Date {
	if d == nil {
		return pgtype.Date{}
	}
	return pgtype.Date{Time: d.Time(), Valid: true}
}

// pgTime maps an optional time of day to a nullable TIME parameter.
func pgTime(t *models.TimeOfDay) pgtype.Time {
	if t == nil {
		return pgtype.Time{}
	}
	us := (int64(t.Hour)*3600 + int64(t.Minute)*60 + int64(t.Second)) * 1_000_000
	return pgtype.Time{Microseconds: us, Valid: true}
}

// nullText stores empty strings as NULL.
func nullText(s string) pgtype.Text {
	return pgtype.Text{String: s, Valid: s != ""}
}
