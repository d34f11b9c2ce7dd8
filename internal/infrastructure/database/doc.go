// Package database opens the SQLite file holding vendor session state.
//
// It is deliberately a thin connection layer: WAL mode and busy timeout
// ride in on the DSN, the file is kept owner-only because session
// tokens live in it, and schema ownership stays with the stores (each
// creates its own tables with CREATE TABLE IF NOT EXISTS).
//
//	db, err := database.Open(database.Config{
//	    Path:        cfg.Database.Path,
//	    WALMode:     cfg.Database.WALMode,
//	    BusyTimeout: cfg.Database.BusyTimeout,
//	})
//	if err != nil {
//	    return err
//	}
//	defer db.Close()
package database
