package main

import (
	"flag"
	"log"
	"os"
	"runtime/pprof"

	"github.com/hailam/latrones/internal/book"
	"github.com/hailam/latrones/internal/config"
	"github.com/hailam/latrones/internal/engine"
	"github.com/hailam/latrones/internal/protocol"
)

var (
	cpuprofile = flag.String("cpuprofile", "", "write cpu profile to file")
	configPath = flag.String("config", "", "settings file (JSON)")
	difficulty = flag.String("difficulty", "", "easy, medium or hard (overrides the settings file)")
	bookPath   = flag.String("book", "", "search book file, loaded at start and saved on exit")
)

func main() {
	flag.Parse()

	// Start CPU profiling if requested (via flag or environment variable)
	profilePath := *cpuprofile
	if profilePath == "" {
		profilePath = os.Getenv("CPUPROFILE")
	}
	if profilePath != "" {
		f, err := os.Create(profilePath)
		if err != nil {
			log.Fatal("could not create CPU profile: ", err)
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			log.Fatal("could not start CPU profile: ", err)
		}
		defer pprof.StopCPUProfile()
		log.Printf("CPU profiling enabled, writing to %s", profilePath)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal(err)
	}
	if err := cfg.ApplyEnv(); err != nil {
		log.Printf("Warning: ignoring environment overrides: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal(err)
	}

	searchCfg := cfg.SearchConfig()
	if *difficulty != "" {
		d, err := engine.ParseDifficulty(*difficulty)
		if err != nil {
			log.Fatal(err)
		}
		searchCfg = engine.DifficultySettings[d]
	}

	eng := engine.NewEngine(searchCfg, cfg.TTSizeMB)
	eng.SetDebug(cfg.DebugMode)

	var bk *book.Book
	if *bookPath != "" {
		bk, err = book.Load(*bookPath)
		if err != nil {
			log.Fatal(err)
		}
		eng.SetBook(bk)
		log.Printf("Book loaded from %s (%d positions)", *bookPath, bk.Size())
	}

	p := protocol.New(eng, os.Stdin, os.Stdout)
	if err := p.Reset(cfg.DefaultBoardSizeX, cfg.DefaultBoardSizeY, cfg.DefaultUserColor()); err != nil {
		log.Fatal(err)
	}
	if err := p.Run(); err != nil {
		log.Printf("input: %v", err)
	}

	if bk != nil {
		if err := bk.Save(*bookPath); err != nil {
			log.Printf("Warning: book not saved: %v", err)
		}
	}
}
