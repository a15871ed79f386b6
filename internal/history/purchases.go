package history

import (
	"database/sql"
	"fmt"
	"time"
)

// Purchase is one recorded buy action.
type Purchase struct {
	ID          int64
	ItemName    string
	Price       int
	BoughtCount int
	PurchasedAt time.Time
}

// ItemStats aggregates purchases for one item.
type ItemStats struct {
	ItemName   string
	Count      int
	TotalSpent int
	MinPrice   int
	MaxPrice   int
}

// RecordPurchase inserts one purchase row.
func (db *DB) RecordPurchase(itemName string, price, boughtCount int) error {
	return db.ExecTx(func(tx *sql.Tx) error {
		_, err := tx.Exec(`
			INSERT INTO purchases (item_name, price, bought_count)
			VALUES (?, ?, ?)
		`, itemName, price, boughtCount)
		if err != nil {
			return fmt.Errorf("failed to insert purchase: %w", err)
		}
		return nil
	})
}

// RecordRun inserts one run-completion row.
func (db *DB) RecordRun(allTargetsReached bool) error {
	return db.ExecTx(func(tx *sql.Tx) error {
		_, err := tx.Exec(`
			INSERT INTO runs (all_targets_reached) VALUES (?)
		`, allTargetsReached)
		if err != nil {
			return fmt.Errorf("failed to insert run: %w", err)
		}
		return nil
	})
}

// RecentPurchases returns the newest purchases, most recent first.
func (db *DB) RecentPurchases(limit int) ([]Purchase, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := db.conn.Query(`
		SELECT id, item_name, price, bought_count, purchased_at
		FROM purchases
		ORDER BY purchased_at DESC, id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query purchases: %w", err)
	}
	defer rows.Close()

	var purchases []Purchase
	for rows.Next() {
		var p Purchase
		if err := rows.Scan(&p.ID, &p.ItemName, &p.Price, &p.BoughtCount, &p.PurchasedAt); err != nil {
			return nil, fmt.Errorf("failed to scan purchase: %w", err)
		}
		purchases = append(purchases, p)
	}
	return purchases, rows.Err()
}

// StatsByItem aggregates all purchases per item name.
func (db *DB) StatsByItem() ([]ItemStats, error) {
	rows, err := db.conn.Query(`
		SELECT item_name, COUNT(*), SUM(price), MIN(price), MAX(price)
		FROM purchases
		GROUP BY item_name
		ORDER BY item_name
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query item stats: %w", err)
	}
	defer rows.Close()

	var stats []ItemStats
	for rows.Next() {
		var s ItemStats
		if err := rows.Scan(&s.ItemName, &s.Count, &s.TotalSpent, &s.MinPrice, &s.MaxPrice); err != nil {
			return nil, fmt.Errorf("failed to scan item stats: %w", err)
		}
		stats = append(stats, s)
	}
	return stats, rows.Err()
}
