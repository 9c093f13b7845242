package store

const schemaSQL = `
CREATE TABLE IF NOT EXISTS snapshot_files (
    file_path            TEXT PRIMARY KEY,
    format               TEXT NOT NULL,
    record_count         INTEGER NOT NULL,
    parse_errors         INTEGER NOT NULL DEFAULT 0,
    mtime_ns             INTEGER NOT NULL,
    size_bytes           INTEGER NOT NULL,
    parsed_at            TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS snapshot_records (
    file_path            TEXT NOT NULL REFERENCES snapshot_files(file_path) ON DELETE CASCADE,
    seq                  INTEGER NOT NULL,
    body                 TEXT NOT NULL,
    PRIMARY KEY (file_path, seq)
);

CREATE TABLE IF NOT EXISTS analysis_runs (
    run_id               TEXT PRIMARY KEY,
    analyzed_at          TEXT NOT NULL,
    source               TEXT NOT NULL,
    item_count           INTEGER NOT NULL,
    skipped              INTEGER NOT NULL,
    anomaly_count        INTEGER NOT NULL,
    critical_count       INTEGER NOT NULL,
    flag_count           INTEGER NOT NULL,
    total_budget         REAL,
    current_spend        REAL,
    projected_spend      REAL,
    trend                TEXT,
    bundle_json          TEXT NOT NULL,
    created_at           TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_runs_analyzed ON analysis_runs(analyzed_at);
`
