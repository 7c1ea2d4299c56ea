package store

const schema = `
CREATE TABLE IF NOT EXISTS mining_runs (
    id TEXT PRIMARY KEY,
    created_at TIMESTAMP NOT NULL,
    source TEXT NOT NULL,
    support_threshold REAL NOT NULL,
    confidence_threshold REAL NOT NULL,
    relative_support BOOLEAN NOT NULL,
    row_count INTEGER NOT NULL,
    itemset_count INTEGER NOT NULL,
    rule_count INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS run_itemsets (
    run_id TEXT NOT NULL,
    position INTEGER NOT NULL,
    items TEXT NOT NULL,
    size INTEGER NOT NULL,
    support REAL NOT NULL,
    PRIMARY KEY (run_id, position),
    FOREIGN KEY (run_id) REFERENCES mining_runs(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS run_rules (
    run_id TEXT NOT NULL,
    position INTEGER NOT NULL,
    lhs TEXT NOT NULL,
    rhs TEXT NOT NULL,
    support REAL NOT NULL,
    confidence REAL NOT NULL,
    PRIMARY KEY (run_id, position),
    FOREIGN KEY (run_id) REFERENCES mining_runs(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_runs_created ON mining_runs(created_at);
CREATE INDEX IF NOT EXISTS idx_runs_source ON mining_runs(source);
`
