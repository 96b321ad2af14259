package store

const schema = `
CREATE TABLE IF NOT EXISTS analysis_runs (
    id TEXT PRIMARY KEY,
    created_at TIMESTAMP NOT NULL,
    source TEXT,
    subjects TEXT NOT NULL,
    semester_count INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS semester_averages (
    run_id TEXT NOT NULL,
    semester TEXT NOT NULL,
    subject TEXT NOT NULL,
    average REAL NOT NULL,
    PRIMARY KEY (run_id, semester, subject),
    FOREIGN KEY (run_id) REFERENCES analysis_runs(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_runs_created ON analysis_runs(created_at);
CREATE INDEX IF NOT EXISTS idx_averages_run ON semester_averages(run_id);
`
