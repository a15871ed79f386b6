package main

import (
	"flag"
	"fmt"
	"log"

	"ahsniper/internal/history"
)

func main() {
	dbPath := flag.String("db", "data/history.db", "Path to purchase history database")
	limit := flag.Int("recent", 20, "Number of recent purchases to list")
	flag.Parse()

	db, err := history.Open(*dbPath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	if err := db.RunMigrations(); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	stats, err := db.StatsByItem()
	if err != nil {
		log.Fatalf("Failed to query stats: %v", err)
	}

	fmt.Println("=== Purchases by Item ===")
	if len(stats) == 0 {
		fmt.Println("(none recorded)")
	}
	for _, s := range stats {
		fmt.Printf("  %-30s x%-4d total %-8d price %d-%d\n",
			s.ItemName, s.Count, s.TotalSpent, s.MinPrice, s.MaxPrice)
	}

	purchases, err := db.RecentPurchases(*limit)
	if err != nil {
		log.Fatalf("Failed to query purchases: %v", err)
	}

	fmt.Printf("\n=== Last %d Purchases ===\n", *limit)
	if len(purchases) == 0 {
		fmt.Println("(none recorded)")
	}
	for _, p := range purchases {
		fmt.Printf("  %s  %-30s %8d  (#%d)\n",
			p.PurchasedAt.Format("2006-01-02 15:04:05"), p.ItemName, p.Price, p.BoughtCount)
	}
}
