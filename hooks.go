package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"strings"
)

// execer is the part of *sql.DB and *sql.Conn that runs DDL.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// loadAndExecSQLFiles reads each SQL file, expands {{database}}, and executes every statement.
func loadAndExecSQLFiles(ctx context.Context, db execer, cfg *SyncConfig, files []string, phase string) error {
	if len(files) == 0 {
		return nil
	}
	log.Printf("  running %s hooks (%d files)...", phase, len(files))

	for _, f := range files {
		path := cfg.resolvePath(f)
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("hook %s: read %s: %w", phase, f, err)
		}

		text := strings.ReplaceAll(string(data), "{{database}}", cfg.Target.Schema)
		stmts := splitStatements(text)

		log.Printf("    %s: %d statements", f, len(stmts))
		for i, stmt := range stmts {
			if _, err := db.ExecContext(ctx, stmt); err != nil {
				return fmt.Errorf("hook %s: %s: statement %d: %w\nSQL: %s", phase, f, i+1, err, stmt)
			}
		}
	}
	return nil
}

// splitStatements splits MySQL script text on semicolons. Semicolons inside
// quoted strings, backtick identifiers and comments do not split; comments
// are dropped.
func splitStatements(text string) []string {
	var stmts []string
	var current strings.Builder
	var quote byte

	flush := func() {
		if s := strings.TrimSpace(current.String()); s != "" {
			stmts = append(stmts, s)
		}
		current.Reset()
	}

	for i := 0; i < len(text); i++ {
		c := text[i]

		if quote != 0 {
			current.WriteByte(c)
			switch {
			case c == '\\' && quote != '`' && i+1 < len(text):
				i++
				current.WriteByte(text[i])
			case c == quote && i+1 < len(text) && text[i+1] == quote:
				i++
				current.WriteByte(text[i])
			case c == quote:
				quote = 0
			}
			continue
		}

		switch {
		case c == '\'' || c == '"' || c == '`':
			quote = c
			current.WriteByte(c)
		case c == '#' || (c == '-' && strings.HasPrefix(text[i:], "-- ")):
			for i < len(text) && text[i] != '\n' {
				i++
			}
			current.WriteByte('\n')
		case strings.HasPrefix(text[i:], "/*!") || strings.HasPrefix(text[i:], "/*+"):
			// MySQL executes versioned comments and optimizer hints, so they
			// stay part of the statement.
			end := strings.Index(text[i+3:], "*/")
			if end < 0 {
				current.WriteString(text[i:])
				i = len(text)
			} else {
				current.WriteString(text[i : i+3+end+2])
				i += end + 4
			}
		case c == '/' && strings.HasPrefix(text[i:], "/*"):
			end := strings.Index(text[i+2:], "*/")
			if end < 0 {
				i = len(text)
			} else {
				i += end + 3
			}
			current.WriteByte(' ')
		case c == ';':
			flush()
		default:
			current.WriteByte(c)
		}
	}

	flush()
	return stmts
}
