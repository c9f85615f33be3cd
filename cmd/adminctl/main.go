package main

import (
	"bufio"
	"context"
	"database/sql"
	"log"
	"os"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/grouptab/grouptab/internal/adminctl"
	"github.com/grouptab/grouptab/internal/server/config"
	"github.com/grouptab/grouptab/internal/server/repositories/repomanager"
)

func main() {
	ctx := context.Background()
	cfg := config.LoadConfig()

	db, err := sql.Open("pgx", cfg.DatabaseDSN)
	if err != nil {
		log.Fatalf("db open error: %v", err)
	}
	defer db.Close()

	rm := repomanager.NewPostgresRepositoryManager()
	if _, err := adminctl.Bootstrap(ctx, db, rm, bufio.NewReader(os.Stdin), os.Stdout); err != nil {
		log.Fatalf("%v", err)
	}
}
