package migrations

import (
	_ "embed"

	"github.com/uptrace/bun/migrate"
)

var (
	//go:embed 0001_create_content.sql
	createContentSQL string

	//go:embed 0002_create_quiz_attempts.sql
	createQuizAttemptsSQL string
)

// Migrations is the ordered set applied by `migrate` and on server start.
var Migrations = migrate.NewMigrations()
