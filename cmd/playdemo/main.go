package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/devops-utils/richter/internal/client"
	"github.com/devops-utils/richter/internal/console"
	"github.com/devops-utils/richter/internal/vfs"
)

func main() {
	var (
		demoPath = flag.String("demo", "", "path to recorded demo")
		baseDir  = flag.String("basedir", "./id1", "game data directory with pak files")
		cfgPath  = flag.String("config", "./configs/client.yaml", "cvar overrides (yaml)")
		speed    = flag.Float64("speed", 1.0, "playback speed multiplier")
	)
	flag.Parse()

	if *demoPath == "" {
		fmt.Fprintln(os.Stderr, "missing -demo")
		os.Exit(2)
	}

	logger := log.New(os.Stdout, "[playdemo] ", log.LstdFlags|log.Lmicroseconds)

	fs := vfs.New()
	fs.AddDirectory(*baseDir)
	paks, _ := filepath.Glob(filepath.Join(*baseDir, "pak*.pak"))
	sort.Strings(paks)
	for _, pak := range paks {
		if err := fs.AddArchive(pak); err != nil {
			logger.Fatalf("open %s: %v", pak, err)
		}
	}

	cvars := console.NewCvarRegistry()
	client.RegisterCvars(cvars)
	if *cfgPath != "" {
		if err := cvars.LoadFile(*cfgPath); err != nil && !os.IsNotExist(err) {
			logger.Fatalf("load config: %v", err)
		}
	}

	f, err := os.Open(*demoPath)
	if err != nil {
		logger.Fatalf("open demo: %v", err)
	}

	cl, err := client.PlayDemo(f, client.Config{
		Logger: logger,
		Vfs:    fs,
		Cvars:  cvars,
	})
	if err != nil {
		logger.Fatalf("start playback: %v", err)
	}
	defer cl.Disconnect()

	const tick = time.Second / 60
	ticker := time.NewTicker(time.Duration(float64(tick) / *speed))
	defer ticker.Stop()

	frames := 0
	lastLevel := ""
	for range ticker.C {
		if err := cl.Frame(tick); err != nil {
			logger.Fatalf("frame %d: %v", frames, err)
		}
		frames++
		if !cl.Connected() {
			break
		}
		if level := cl.LevelName(); level != lastLevel {
			fmt.Printf("--- %s ---\n", level)
			lastLevel = level
		}
	}

	fmt.Printf("playback finished: %d frames, %v of game time, %d entities live at end\n",
		frames, cl.Time().Round(time.Millisecond), len(cl.Entities()))
}
