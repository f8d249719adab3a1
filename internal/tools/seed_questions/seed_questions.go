package main

import (
	"context"
	"fmt"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mcdev12/tileduel/internal/dbconfig"
)

// Minimal word-question sets to make the bank categories playable in a
// fresh database. Real content is loaded separately; a 5x5 board needs at
// least 25 rows per category.
var seeds = map[string][][2]string{
	"Antonyms": {
		{"hot", "cold"}, {"big", "small"}, {"fast", "slow"}, {"light", "dark"},
		{"early", "late"}, {"open", "closed"}, {"happy", "sad"}, {"full", "empty"},
		{"strong", "weak"}, {"wide", "narrow"}, {"thick", "thin"}, {"rich", "poor"},
		{"loud", "quiet"}, {"clean", "dirty"}, {"hard", "soft"}, {"high", "low"},
		{"young", "old"}, {"wet", "dry"}, {"near", "far"}, {"sharp", "dull"},
		{"brave", "cowardly"}, {"deep", "shallow"}, {"smooth", "rough"},
		{"tight", "loose"}, {"victory", "defeat"},
	},
	"Synonyms": {
		{"quick", "fast"}, {"large", "big"}, {"glad", "happy"}, {"tiny", "small"},
		{"silent", "quiet"}, {"simple", "easy"}, {"wealthy", "rich"}, {"begin", "start"},
		{"finish", "end"}, {"angry", "mad"}, {"smart", "clever"}, {"odd", "strange"},
		{"gift", "present"}, {"street", "road"}, {"near", "close"}, {"error", "mistake"},
		{"choose", "pick"}, {"reply", "answer"}, {"shout", "yell"}, {"tired", "sleepy"},
		{"frightened", "scared"}, {"correct", "right"}, {"speak", "talk"},
		{"build", "construct"}, {"leap", "jump"},
	},
	"Translation": {
		{"casa", "house"}, {"gato", "cat"}, {"cão", "dog"}, {"livro", "book"},
		{"água", "water"}, {"pão", "bread"}, {"sol", "sun"}, {"lua", "moon"},
		{"mar", "sea"}, {"rua", "street"}, {"porta", "door"}, {"mesa", "table"},
		{"cadeira", "chair"}, {"janela", "window"}, {"flor", "flower"},
		{"árvore", "tree"}, {"peixe", "fish"}, {"leite", "milk"}, {"ovo", "egg"},
		{"queijo", "cheese"}, {"fogo", "fire"}, {"neve", "snow"}, {"chuva", "rain"},
		{"vento", "wind"}, {"estrela", "star"},
	},
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS Users (
		name TEXT PRIMARY KEY,
		pass TEXT NOT NULL,
		salt TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS Rankings (
		id SERIAL PRIMARY KEY,
		gametype TEXT NOT NULL,
		boardsize INT NOT NULL,
		name TEXT NOT NULL,
		score INT NOT NULL,
		playedat TIMESTAMPTZ NOT NULL,
		scoreboard JSONB
	)`,
	`CREATE TABLE IF NOT EXISTS Antonyms (
		id SERIAL PRIMARY KEY,
		question TEXT NOT NULL,
		answer TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS Synonyms (
		id SERIAL PRIMARY KEY,
		question TEXT NOT NULL,
		answer TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS Translation (
		id SERIAL PRIMARY KEY,
		question TEXT NOT NULL,
		answer TEXT NOT NULL
	)`,
}

func main() {
	ctx := context.Background()

	cfg := dbconfig.NewConfigFromEnv()
	pool, err := pgxpool.New(ctx, cfg.DSN())
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to connect: %v\n", err)
		os.Exit(1)
	}
	defer pool.Close()

	for _, ddl := range schema {
		if _, err := pool.Exec(ctx, ddl); err != nil {
			fmt.Fprintf(os.Stderr, "schema: %v\n", err)
			os.Exit(1)
		}
	}

	var inserted, skipped, errs int
	for table, pairs := range seeds {
		var count int
		if err := pool.QueryRow(ctx, fmt.Sprintf("SELECT COUNT(*) FROM %s", table)).Scan(&count); err != nil {
			fmt.Fprintf(os.Stderr, "count %s: %v\n", table, err)
			errs++
			continue
		}
		if count > 0 {
			skipped += len(pairs)
			continue
		}
		for _, pair := range pairs {
			if _, err := pool.Exec(ctx,
				fmt.Sprintf("INSERT INTO %s (question, answer) VALUES ($1, $2)", table),
				pair[0], pair[1],
			); err != nil {
				fmt.Fprintf(os.Stderr, "error inserting into %s: %v\n", table, err)
				errs++
				continue
			}
			inserted++
		}
	}

	fmt.Printf("Questions seed complete: %d inserted, %d skipped, %d errors\n", inserted, skipped, errs)
}
