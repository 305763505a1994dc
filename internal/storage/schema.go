package storage

// schemaStatements are idempotent, so EnsureSchema is safe to run at
// every startup. Child tables cascade on publication delete; cleanup
// relies on that when it purges expired publications.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS publications (
		id UUID PRIMARY KEY,
		publication_date DATE NOT NULL,
		expiration_date DATE,
		language TEXT NOT NULL DEFAULT 'de',
		cantons TEXT[] NOT NULL,
		title_de TEXT NOT NULL DEFAULT '',
		title_fr TEXT NOT NULL DEFAULT '',
		title_it TEXT NOT NULL DEFAULT '',
		title_en TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_publications_publication_date ON publications (publication_date)`,
	`CREATE INDEX IF NOT EXISTS idx_publications_created_at ON publications (created_at)`,

	`CREATE TABLE IF NOT EXISTS auctions (
		id UUID PRIMARY KEY,
		publication_id UUID NOT NULL REFERENCES publications (id) ON DELETE CASCADE,
		date DATE NOT NULL,
		time TIME,
		location TEXT NOT NULL,
		circulation_entry_deadline DATE,
		circulation_comment_deadline TEXT,
		registration_entry_deadline DATE,
		registration_comment_deadline TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_auctions_publication_id ON auctions (publication_id)`,
	`CREATE INDEX IF NOT EXISTS idx_auctions_date ON auctions (date)`,

	`CREATE TABLE IF NOT EXISTS auction_objects (
		id UUID PRIMARY KEY,
		auction_id UUID NOT NULL REFERENCES auctions (id) ON DELETE CASCADE,
		position INT NOT NULL DEFAULT 0,
		description TEXT NOT NULL,
		latitude DOUBLE PRECISION,
		longitude DOUBLE PRECISION,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_auction_objects_auction_id ON auction_objects (auction_id)`,

	`CREATE TABLE IF NOT EXISTS debtors (
		id UUID PRIMARY KEY,
		publication_id UUID NOT NULL REFERENCES publications (id) ON DELETE CASCADE,
		debtor_type TEXT NOT NULL,
		name TEXT NOT NULL,
		prename TEXT,
		date_of_birth DATE,
		country_of_origin JSONB,
		residence_type TEXT,
		address TEXT,
		city TEXT,
		postal_code TEXT,
		legal_form TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_debtors_publication_id ON debtors (publication_id)`,

	`CREATE TABLE IF NOT EXISTS contacts (
		id UUID PRIMARY KEY,
		publication_id UUID NOT NULL REFERENCES publications (id) ON DELETE CASCADE,
		contact_type TEXT,
		office_id TEXT,
		name TEXT NOT NULL,
		street TEXT,
		street_number TEXT,
		zip_code TEXT,
		town TEXT,
		phone TEXT,
		email TEXT,
		contains_post_office_box BOOLEAN NOT NULL DEFAULT FALSE,
		post_office_box JSONB,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_contacts_publication_id ON contacts (publication_id)`,
}
