// Package shoppinglist turns shopping cart contents into a printable list.
package shoppinglist

import (
	"fmt"
	"sort"
	"strings"
)

// Row is one ingredient use of a recipe in the cart.
type Row struct {
	Name   string
	Unit   string
	Amount int
}

// Item is the total amount of one ingredient across the cart.
type Item struct {
	Name   string
	Unit   string
	Amount int
}

// Aggregate sums amounts per ingredient name. The unit of the first row seen
// for a name is kept. Items are ordered by name, case-insensitively.
func Aggregate(rows []Row) []Item {
	index := make(map[string]int, len(rows))
	items := make([]Item, 0, len(rows))
	for _, r := range rows {
		if i, ok := index[r.Name]; ok {
			items[i].Amount += r.Amount
			continue
		}
		index[r.Name] = len(items)
		items = append(items, Item{Name: r.Name, Unit: r.Unit, Amount: r.Amount})
	}

	sort.SliceStable(items, func(i, j int) bool {
		a, b := strings.ToLower(items[i].Name), strings.ToLower(items[j].Name)
		if a != b {
			return a < b
		}
		return items[i].Name < items[j].Name
	})
	return items
}

// Lines numbers the items starting at 1, e.g. "1. Salt - 8 g".
func Lines(items []Item) []string {
	lines := make([]string, len(items))
	for i, it := range items {
		lines[i] = fmt.Sprintf("%d. %s - %d %s", i+1, it.Name, it.Amount, it.Unit)
	}
	return lines
}
