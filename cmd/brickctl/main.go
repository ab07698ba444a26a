package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/annel0/caaluza/internal/client"
	"github.com/annel0/caaluza/internal/editor"
	"github.com/annel0/caaluza/internal/logging"
	"github.com/annel0/caaluza/internal/mapformat"
)

const defaultServerAddr = "http://localhost:5000"

func main() {
	var (
		serverAddr = flag.String("server", defaultServerAddr, "map service base URL")
		command    = flag.String("cmd", "list", "Command: validate, get, put, generate, list, delete")
		name       = flag.String("name", "", "Map name for get, put and delete")
		file       = flag.String("file", "", "Map JSON file for validate and put")
		out        = flag.String("out", "", "Write the resulting map to this file (get, generate)")
		author     = flag.String("author", "", "Author recorded by put")
		pieces     = flag.Int("pieces", 8, "Number of pieces for generate")
		maxHeight  = flag.Int("height", 8, "Maximum height for generate")
		timeout    = flag.Duration("timeout", 10*time.Second, "Request timeout")
		verbose    = flag.Bool("v", false, "Verbose editor logging")
	)
	flag.Parse()

	level := logging.WARN
	if *verbose {
		level = logging.DEBUG
	}
	logger := logging.NewConsoleLogger("brickctl", os.Stderr, level)

	c := client.New(*serverAddr, nil)
	session := editor.New(editor.Options{Remote: c, Logger: logger})

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	var err error
	switch *command {
	case "validate":
		err = validateFile(ctx, c, session, *file)
	case "get":
		err = getMap(ctx, session, *name, *out)
	case "put":
		err = putMap(ctx, session, *name, *author, *file)
	case "generate":
		err = generateMap(ctx, session, *pieces, *maxHeight, *out)
	case "list":
		err = listMaps(ctx, c)
	case "delete":
		err = deleteMap(ctx, c, *name)
	default:
		fmt.Printf("❌ Unknown command: %s\n", *command)
		fmt.Println("Available commands: validate, get, put, generate, list, delete")
		os.Exit(1)
	}
	if err != nil {
		log.Fatalf("❌ %s failed: %v", *command, err)
	}
}

// loadFile читает карту из файла в сессию; проблемы загрузки печатаются
func loadFile(session *editor.Session, path string) error {
	if path == "" {
		return errors.New("-file is required")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var m mapformat.Map
	if err := json.Unmarshal(data, &m); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	printProblems(session.Load(m))
	return nil
}

// validateFile приводит карту к текущей схеме и отправляет валидатору
func validateFile(ctx context.Context, c *client.Client, session *editor.Session, path string) error {
	if err := loadFile(session, path); err != nil {
		return err
	}

	m := session.Snapshot(mapformat.NewMetadata(session.Title(), ""))
	res, err := c.Validate(ctx, m)
	if err != nil {
		return err
	}

	if res.Valid {
		fmt.Printf("✅ %q is valid (%d bricks)\n", session.Title(), len(m.Bricks))
		return nil
	}
	fmt.Printf("❌ %q has %d problem(s)\n", session.Title(), len(res.Errors))
	for _, e := range res.Errors {
		fmt.Printf("  [%s] %s\n", e.Type, e.Message)
		for _, idx := range e.OffendingBricks {
			if idx >= 0 && idx < len(m.Bricks) {
				fmt.Printf("    #%d %s\n", idx, m.Bricks[idx].Name)
			}
		}
	}
	return nil
}

func getMap(ctx context.Context, session *editor.Session, name, out string) error {
	if name == "" {
		return errors.New("-name is required")
	}
	problems, err := session.Open(ctx, name)
	if err != nil {
		return err
	}
	printProblems(problems)
	printSummary(session)
	return writeMap(session, out)
}

func putMap(ctx context.Context, session *editor.Session, name, author, path string) error {
	if name == "" {
		return errors.New("-name is required")
	}
	if err := loadFile(session, path); err != nil {
		return err
	}
	id, err := session.Save(ctx, name, author)
	if err != nil {
		return err
	}
	fmt.Printf("💾 Saved map %s\n", id)
	return nil
}

func generateMap(ctx context.Context, session *editor.Session, pieces, maxHeight int, out string) error {
	problems, err := session.Generate(ctx, pieces, maxHeight)
	if err != nil {
		return err
	}
	printProblems(problems)
	printSummary(session)
	return writeMap(session, out)
}

func listMaps(ctx context.Context, c *client.Client) error {
	names, err := c.ListMaps(ctx)
	if err != nil {
		return err
	}
	for _, n := range names {
		fmt.Println(n)
	}
	fmt.Printf("\n📊 Total maps: %d\n", len(names))
	return nil
}

func deleteMap(ctx context.Context, c *client.Client, name string) error {
	if name == "" {
		return errors.New("-name is required")
	}
	if err := c.DeleteMap(ctx, name); err != nil {
		return err
	}
	fmt.Printf("🗑  Deleted map %s\n", name)
	return nil
}

// writeMap пишет снимок сессии в файл или, если out пуст, никуда
func writeMap(session *editor.Session, out string) error {
	if out == "" {
		return nil
	}
	var w io.Writer = os.Stdout
	if out != "-" {
		f, err := os.Create(out)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(session.Snapshot(mapformat.NewMetadata(session.Title(), "")))
}

func printProblems(problems []mapformat.Problem) {
	for _, p := range problems {
		fmt.Fprintf(os.Stderr, "⚠️  %s\n", p)
	}
}

func printSummary(session *editor.Session) {
	fmt.Printf("🧱 %s\n", session.Title())
	for _, g := range session.PlacedByColor() {
		fmt.Printf("  %-8s %d\n", g.Name, len(g.Labels))
	}
}
