package store

// Schema contains the complete DDL for the site state tables.
const Schema = `
-- Site-wide key/value settings (front page mode, shop page options, ...)
CREATE TABLE IF NOT EXISTS options (
    name            TEXT PRIMARY KEY,
    value           TEXT NOT NULL
);

-- Pages created by the content importer, addressed by slug
CREATE TABLE IF NOT EXISTS pages (
    id              INTEGER PRIMARY KEY AUTOINCREMENT,
    slug            TEXT NOT NULL UNIQUE,
    title           TEXT NOT NULL DEFAULT ''
);

-- Payment forms; (layout, type, name) is the insertion-only identity
CREATE TABLE IF NOT EXISTS payment_forms (
    id              INTEGER PRIMARY KEY AUTOINCREMENT,
    layout          TEXT NOT NULL,
    type            TEXT NOT NULL,
    name            TEXT NOT NULL,
    data            TEXT NOT NULL DEFAULT '{}',
    created_at      INTEGER NOT NULL,
    UNIQUE(layout, type, name)
);

-- Product catalog with derived lookup fields rebuilt after import
CREATE TABLE IF NOT EXISTS products (
    id                INTEGER PRIMARY KEY AUTOINCREMENT,
    name              TEXT NOT NULL DEFAULT '',
    price_cents       INTEGER NOT NULL DEFAULT 0,
    lookup_price_cents INTEGER,
    lookup_rebuilt_at INTEGER
);

-- Course platform settings
CREATE TABLE IF NOT EXISTS course_settings (
    name            TEXT PRIMARY KEY,
    value           TEXT NOT NULL
);

-- Active state snapshots: append-only, consumed in reverse by the undo path
CREATE TABLE IF NOT EXISTS active_state (
    id              INTEGER PRIMARY KEY AUTOINCREMENT,
    namespace       TEXT NOT NULL,
    entries         TEXT NOT NULL,
    created_at      INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_active_state_namespace ON active_state(namespace);
`
