// cmd/compiscript/main.go
package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/compiscript/compiscript/internal/build"
	"github.com/compiscript/compiscript/internal/cache"
	"github.com/compiscript/compiscript/internal/config"
	"github.com/compiscript/compiscript/internal/irpb"
	"github.com/compiscript/compiscript/internal/pipeline"
	"github.com/compiscript/compiscript/internal/symboltable"
	"github.com/compiscript/compiscript/internal/watch"
)

const version = "0.1.0"

// commandAliases maps single-letter shortcuts onto their full command.
var commandAliases = map[string]string{
	"r": "run",
	"b": "build",
	"c": "check",
	"t": "tac",
	"w": "watch",
	"s": "symtab",
}

// extractFlag removes a bare boolean flag (e.g. "--json") from args,
// returning the remaining positional arguments and whether it was
// present.
func extractFlag(args []string, flag string) ([]string, bool) {
	var rest []string
	present := false
	for _, a := range args {
		if a == flag {
			present = true
			continue
		}
		rest = append(rest, a)
	}
	return rest, present
}

func main() {
	args := os.Args[1:]
	if len(args) == 0 {
		showUsage()
		return
	}

	cmd := args[0]
	if alias, ok := commandAliases[cmd]; ok {
		cmd = alias
	}

	switch cmd {
	case "--help", "-h", "help":
		showUsage()
	case "--version", "-v", "version":
		fmt.Println("compiscript " + version)
	case "run":
		exitOn(runCommand(args[1:]))
	case "build":
		exitOn(buildCommand(args[1:]))
	case "check":
		exitOn(checkCommand(args[1:]))
	case "tac":
		exitOn(tacCommand(args[1:]))
	case "symtab":
		exitOn(symtabCommand(args[1:]))
	case "watch":
		exitOn(watchCommand(args[1:]))
	case "cache":
		exitOn(cacheCommand(args[1:]))
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n", cmd)
		showUsage()
		os.Exit(1)
	}
}

func exitOn(err error) {
	if err != nil {
		fmt.Fprintf(os.Stderr, "compiscript: %v\n", err)
		os.Exit(1)
	}
}

func showUsage() {
	fmt.Println("Compiscript - a toy compiler toolchain")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  compiscript run <file.cp>      Compile and print assembly        (alias: r)")
	fmt.Println("  compiscript build <file.cp>    Compile to program.s                (alias: b)")
	fmt.Println("  compiscript check <file.cp>    Report diagnostics only             (alias: c)")
	fmt.Println("  compiscript tac <file.cp> [--json]    Print the quadruple listing   (alias: t)")
	fmt.Println("  compiscript symtab <file.cp> [--json] Print the symbol table        (alias: s)")
	fmt.Println("  compiscript watch <file.cp>    Serve live diagnostics over websocket (alias: w)")
	fmt.Println("  compiscript cache <list|clear> Inspect or clear the build cache")
	fmt.Println("  compiscript version            Show the version")
}

func readSource(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", path, err)
	}
	return string(data), nil
}

func printDiagnostics(diags []string) {
	for _, d := range diags {
		fmt.Println(d)
	}
}

func runCommand(args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: compiscript run <file.cp>")
	}
	src, err := readSource(args[0])
	if err != nil {
		return err
	}
	cfg, err := config.Load("compiscript.yaml")
	if err != nil {
		return fmt.Errorf("loading compiscript.yaml: %w", err)
	}
	fmt.Println("parsing...")
	fmt.Println("analyzing...")
	res, err := pipeline.RunWithRegisters(src, cfg.Registers.TempCount, cfg.Registers.SavedCount)
	if err != nil {
		return err
	}
	printDiagnostics(res.Diagnostics)
	if len(res.Diagnostics) > 0 {
		os.Exit(1)
	}
	fmt.Println("generating TAC...")
	fmt.Println("generating MIPS...")
	fmt.Print(res.Assembly)
	return nil
}

func buildCommand(args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: compiscript build <file.cp>")
	}
	path := args[0]
	src, err := readSource(path)
	if err != nil {
		return err
	}

	cfg, err := config.Load("compiscript.yaml")
	if err != nil {
		return fmt.Errorf("loading compiscript.yaml: %w", err)
	}

	var c *cache.Cache
	hash := cache.ContentHash([]byte(src))
	if cfg.Cache.Enabled {
		c, err = cache.Open(cfg.Cache.Path)
		if err != nil {
			return fmt.Errorf("opening cache: %w", err)
		}
		defer c.Close()

		if hit, ok, err := c.Get(hash); err == nil && ok {
			fmt.Printf("cache hit (build %s)\n", hit.BuildID)
			return os.WriteFile(cfg.Output.AsmPath, []byte(hit.Assembly), 0o644)
		}
	}

	fmt.Println("parsing...")
	fmt.Println("analyzing...")
	res, err := pipeline.RunWithRegisters(src, cfg.Registers.TempCount, cfg.Registers.SavedCount)
	if err != nil {
		return err
	}
	printDiagnostics(res.Diagnostics)
	if len(res.Diagnostics) > 0 {
		os.Exit(1)
	}
	fmt.Println("generating TAC...")
	fmt.Println("generating MIPS...")

	id := build.NewID()
	header := build.HeaderComment(id, path)
	asm := header + "\n" + res.Assembly

	if err := os.WriteFile(cfg.Output.AsmPath, []byte(asm), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", cfg.Output.AsmPath, err)
	}
	fmt.Printf("wrote %s (build %s)\n", cfg.Output.AsmPath, id)

	if c != nil {
		artifact := irpb.Artifact{BuildID: string(id), Assembly: asm}
		for _, q := range res.Quads {
			artifact.Quads = append(artifact.Quads, irpb.Quad{Op: q.Op, Arg1: q.Arg1, Arg2: q.Arg2, Result: q.Result})
		}
		if err := c.Put(hash, artifact); err != nil {
			return fmt.Errorf("writing cache entry: %w", err)
		}
	}
	return nil
}

func checkCommand(args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: compiscript check <file.cp>")
	}
	src, err := readSource(args[0])
	if err != nil {
		return err
	}
	res, err := pipeline.Run(src)
	if err != nil {
		return err
	}
	printDiagnostics(res.Diagnostics)
	if len(res.Diagnostics) > 0 {
		os.Exit(1)
	}
	fmt.Println("no diagnostics")
	return nil
}

func tacCommand(args []string) error {
	args, asJSON := extractFlag(args, "--json")
	if len(args) < 1 {
		return fmt.Errorf("usage: compiscript tac <file.cp> [--json]")
	}
	src, err := readSource(args[0])
	if err != nil {
		return err
	}
	res, err := pipeline.Run(src)
	if err != nil {
		return err
	}
	printDiagnostics(res.Diagnostics)
	if len(res.Diagnostics) > 0 {
		os.Exit(1)
	}
	if asJSON {
		quads := make([]irpb.Quad, len(res.Quads))
		for i, q := range res.Quads {
			quads[i] = irpb.Quad{Op: q.Op, Arg1: q.Arg1, Arg2: q.Arg2, Result: q.Result}
		}
		out, err := json.MarshalIndent(quads, "", "  ")
		if err != nil {
			return fmt.Errorf("marshaling quadruples: %w", err)
		}
		fmt.Println(string(out))
		return nil
	}
	fmt.Print(pipeline.RenderQuads(res.Quads))
	return nil
}

func symtabCommand(args []string) error {
	args, asJSON := extractFlag(args, "--json")
	if len(args) < 1 {
		return fmt.Errorf("usage: compiscript symtab <file.cp> [--json]")
	}
	src, err := readSource(args[0])
	if err != nil {
		return err
	}
	res, err := pipeline.Run(src)
	if err != nil {
		return err
	}
	printDiagnostics(res.Diagnostics)
	if res.Global == nil {
		return nil
	}
	if asJSON {
		out, err := symboltable.DumpJSON(res.Global)
		if err != nil {
			return fmt.Errorf("marshaling symbol table: %w", err)
		}
		fmt.Println(string(out))
		return nil
	}
	symboltable.Dump(os.Stdout, res.Global, 0)
	return nil
}

func watchCommand(args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: compiscript watch <file.cp>")
	}
	path := args[0]
	cfg, err := config.Load("compiscript.yaml")
	if err != nil {
		return fmt.Errorf("loading compiscript.yaml: %w", err)
	}

	srv := watch.NewServer()
	http.Handle("/ws", srv.Handler())

	publish := func() {
		src, err := readSource(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "watch: %v\n", err)
			return
		}
		res, err := pipeline.RunWithRegisters(src, cfg.Registers.TempCount, cfg.Registers.SavedCount)
		if err != nil {
			fmt.Fprintf(os.Stderr, "watch: %v\n", err)
			return
		}
		var diags []watch.Diagnostic
		for _, line := range res.Diagnostics {
			diags = append(diags, watch.Diagnostic{Message: line, Severity: "error"})
		}
		srv.Publish(watch.Snapshot{
			Path:        path,
			Diagnostics: diags,
			Quads:       pipeline.RenderQuads(res.Quads),
		})
	}

	publish()

	go pollForChanges(path, publish)

	fmt.Printf("watching %s on %s/ws\n", path, cfg.Watch.Addr)
	return http.ListenAndServe(cfg.Watch.Addr, nil)
}

// pollForChanges re-publishes whenever the watched file's modification
// time advances. A filesystem-event watcher would add an fsnotify
// dependency this pipeline has no other use for; polling avoids it.
func pollForChanges(path string, publish func()) {
	last := time.Time{}
	if fi, err := os.Stat(path); err == nil {
		last = fi.ModTime()
	}
	for {
		time.Sleep(500 * time.Millisecond)
		fi, err := os.Stat(path)
		if err != nil {
			continue
		}
		if fi.ModTime().After(last) {
			last = fi.ModTime()
			publish()
		}
	}
}

func cacheCommand(args []string) error {
	cfg, err := config.Load("compiscript.yaml")
	if err != nil {
		return fmt.Errorf("loading compiscript.yaml: %w", err)
	}
	c, err := cache.Open(cfg.Cache.Path)
	if err != nil {
		return fmt.Errorf("opening cache: %w", err)
	}
	defer c.Close()

	if len(args) < 1 {
		return fmt.Errorf("usage: compiscript cache <list|clear>")
	}
	switch args[0] {
	case "list":
		entries, err := c.List()
		if err != nil {
			return err
		}
		for _, e := range entries {
			fmt.Printf("%s  build=%s  %s\n", e.Hash, e.BuildID, e.CreatedAt.Format(time.RFC3339))
		}
	case "clear":
		if err := c.Clear(); err != nil {
			return err
		}
		fmt.Println("cache cleared")
	default:
		return fmt.Errorf("unknown cache subcommand %q", args[0])
	}
	return nil
}
