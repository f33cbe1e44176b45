package main

import (
	"errors"
	"io"
	"log"
	"os"

	"github.com/chzyer/readline"
	"github.com/olekukonko/tablewriter"

	"github.com/Takashiidobe/tinydb/internal/config"
)

func main() {
	cfg := config.Default()
	if path := os.Getenv("TINYHEAP_CONFIG"); path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			log.Fatalf("load config: %v", err)
		}
		cfg = loaded
	}

	session := NewSession(cfg)
	defer func() {
		if err := session.Close(); err != nil {
			log.Printf("close database: %v", err)
		}
	}()

	rl, err := readline.New("tinyheap> ")
	if err != nil {
		log.Fatalf("init readline: %v", err)
	}
	defer rl.Close()

	for {
		line, err := rl.Readline()
		if errors.Is(err, io.EOF) || errors.Is(err, readline.ErrInterrupt) {
			return
		}
		if err != nil {
			log.Fatalf("readline: %v", err)
		}
		if line == "" {
			continue
		}

		stmt, err := ParseStatement(line)
		if err != nil {
			log.Printf("parse error: %v", err)
			continue
		}
		rows, err := session.Execute(stmt)
		if err != nil {
			log.Printf("error: %v", err)
			continue
		}
		if rows != nil {
			printRows(rows)
		}
	}
}

func printRows(rows [][]string) {
	if len(rows) == 0 {
		return
	}
	w := tablewriter.NewWriter(os.Stdout)
	w.SetHeader(rows[0])
	for _, r := range rows[1:] {
		w.Append(r)
	}
	w.Render()
}
