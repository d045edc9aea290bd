package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"time"

	"github.com/devops-utils/richter/internal/client"
	"github.com/devops-utils/richter/internal/console"
	"github.com/devops-utils/richter/internal/demo"
	"github.com/devops-utils/richter/internal/protocol"
	"github.com/devops-utils/richter/internal/vfs"
)

func main() {
	var (
		url      = flag.String("url", "ws://localhost:26000/quake", "server ws url")
		name     = flag.String("name", "player", "player name")
		colors   = flag.Int("colors", 0, "shirt/pants colors, shirt in high nibble")
		baseDir  = flag.String("basedir", "./id1", "game data directory with pak files")
		cfgPath  = flag.String("config", "./configs/client.yaml", "cvar overrides (yaml)")
		record   = flag.String("record", "", "record the session to this demo file")
		demoName = flag.String("demoname", "", "recording name for the demo index")
	)
	flag.Parse()

	logger := log.New(os.Stdout, "[client] ", log.LstdFlags|log.Lmicroseconds)

	fs := vfs.New()
	fs.AddDirectory(*baseDir)
	paks, _ := filepath.Glob(filepath.Join(*baseDir, "pak*.pak"))
	sort.Strings(paks)
	for _, pak := range paks {
		if err := fs.AddArchive(pak); err != nil {
			logger.Fatalf("open %s: %v", pak, err)
		}
		logger.Printf("added pak %s", pak)
	}

	cvars := console.NewCvarRegistry()
	client.RegisterCvars(cvars)
	if *cfgPath != "" {
		if err := cvars.LoadFile(*cfgPath); err != nil {
			if !os.IsNotExist(err) {
				logger.Fatalf("load config: %v", err)
			}
			logger.Printf("no config at %s, using defaults", *cfgPath)
		}
	}

	cl, err := client.Connect(*url, client.Config{
		Logger:     logger,
		Vfs:        fs,
		Cvars:      cvars,
		PlayerName: *name,
		Colors:     uint8(*colors),
	})
	if err != nil {
		logger.Fatalf("connect %s: %v", *url, err)
	}
	defer cl.Disconnect()

	if *record != "" {
		f, err := os.Create(*record)
		if err != nil {
			logger.Fatalf("create demo file: %v", err)
		}
		recName := *demoName
		if recName == "" {
			recName = filepath.Base(*record)
		}
		rec, err := demo.NewRecorder(f, demo.Metadata{
			Name:       recName,
			Protocol:   protocol.Version,
			RecordedAt: time.Now().UTC(),
		})
		if err != nil {
			logger.Fatalf("start recording: %v", err)
		}
		cl.StartRecording(rec)
		logger.Printf("recording to %s", *record)
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt)

	const tick = time.Second / 60
	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	lastStage := cl.SignOnStage()
	lastLevel := ""
	for {
		select {
		case <-stop:
			logger.Printf("interrupted, disconnecting")
			if err := cl.StopRecording(); err != nil {
				logger.Printf("finish recording: %v", err)
			}
			return
		case <-ticker.C:
			if err := cl.Frame(tick); err != nil {
				logger.Fatalf("frame: %v", err)
			}
			if !cl.Connected() {
				logger.Printf("server closed the connection")
				return
			}
			if stage := cl.SignOnStage(); stage != lastStage {
				logger.Printf("signon: %v", stage)
				lastStage = stage
			}
			if level := cl.LevelName(); level != lastLevel {
				fmt.Printf("--- %s ---\n", level)
				lastLevel = level
			}
		}
	}
}
