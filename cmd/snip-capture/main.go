package main

import (
	"flag"
	"fmt"
	"image"
	"io"
	"log"
	"log/slog"
	"os"

	"ahsniper/internal/catalog"
	"ahsniper/internal/config"
	"ahsniper/internal/cv"
	"ahsniper/internal/ocr"
	"ahsniper/internal/selector"
)

func main() {
	configPath := flag.String("config", "Settings.ini", "Path to settings file")
	left := flag.Int("left", 0, "Selection left edge (global screen coordinates)")
	top := flag.Int("top", 0, "Selection top edge")
	width := flag.Int("width", 0, "Selection width in pixels")
	height := flag.Int("height", 0, "Selection height in pixels")
	name := flag.String("name", "", "Item name (default: text recognized in the selection)")
	maxPrice := flag.Int("max-price", 0, "Price ceiling, 0 for no limit")
	quantity := flag.Int("quantity", 1, "Target quantity")
	flag.Parse()

	if *width <= 0 || *height <= 0 {
		fmt.Println("Usage:")
		fmt.Println("  snip-capture -left <x> -top <y> -width <w> -height <h> [-name <item>]")
		fmt.Println()
		fmt.Println("Captures the given screen region as a new item template and")
		fmt.Println("adds a disabled catalog entry for review.")
		os.Exit(1)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	cat, err := catalog.Load(cfg.CatalogPath)
	if err != nil {
		log.Fatalf("Failed to load catalog: %v", err)
	}

	reader, err := ocr.NewTesseractReader(cfg.OCRLanguage, "")
	if err != nil {
		log.Fatalf("Failed to initialize text recognition: %v", err)
	}
	defer reader.Close()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	sel := selector.New(cv.NewScreenCapturer(), reader, cat, cfg.TemplateDir, logger)

	rect := image.Rect(*left, *top, *left+*width, *top+*height)
	item, err := sel.Capture(rect, *name, *maxPrice, *quantity)
	if err != nil {
		log.Fatalf("Capture failed: %v", err)
	}

	fmt.Printf("Captured %q\n", item.Name)
	fmt.Printf("  Template: %s\n", item.TemplatePath)
	fmt.Printf("  Catalog:  %s (entry disabled, enable it to start sniping)\n", cfg.CatalogPath)
}
