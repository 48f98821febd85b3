package store

const schemaSQL = `
CREATE TABLE IF NOT EXISTS subscriptions (
    id                   INTEGER PRIMARY KEY AUTOINCREMENT,
    name                 TEXT NOT NULL,
    price                REAL NOT NULL CHECK (price >= 0),
    currency             TEXT NOT NULL DEFAULT 'CNY',
    cycle                TEXT NOT NULL,
    next_due_date        TEXT NOT NULL,
    notes                TEXT,
    created_at           TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS settings (
    key                  TEXT PRIMARY KEY,
    value                TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS reminder_log (
    subscription_id      INTEGER NOT NULL REFERENCES subscriptions(id) ON DELETE CASCADE,
    due_date             TEXT NOT NULL,
    days_before          INTEGER NOT NULL,
    sent_at              TEXT NOT NULL,
    PRIMARY KEY (subscription_id, due_date, days_before)
);

CREATE INDEX IF NOT EXISTS idx_subscriptions_name ON subscriptions(name);
CREATE INDEX IF NOT EXISTS idx_subscriptions_due ON subscriptions(next_due_date);
`
