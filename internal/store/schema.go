package store

// initSchema creates the tables this store needs if they do not already
// exist. Dolt speaks MySQL-compatible DDL/DML over database/sql.
func (s *Store) initSchema() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS cst_builds (
			id            BIGINT AUTO_INCREMENT PRIMARY KEY,
			source_path   VARCHAR(1024) NOT NULL,
			source_hash   VARCHAR(64)   NOT NULL,
			node_count    INT           NOT NULL,
			token_count   INT           NOT NULL,
			root_kind     VARCHAR(64)   NOT NULL,
			built_at      BIGINT        NOT NULL,
			error_message TEXT
		)
	`)
	if err != nil {
		return err
	}

	_, err = s.db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_cst_builds_source_path ON cst_builds (source_path)
	`)
	return err
}
