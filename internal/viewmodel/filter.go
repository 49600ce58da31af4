// Package viewmodel derives what the phonebook views show: the filtered
// record list and the auto-expiring status banner.
package viewmodel

import (
	"strings"

	"github.com/marcus/phonebook/internal/models"
)

// VisibleRecords returns the records whose name contains query,
// ignoring case. Order is preserved and the input is never modified.
func VisibleRecords(records []models.Record, query string) []models.Record {
	out := make([]models.Record, 0, len(records))
	needle := strings.ToLower(query)
	for _, r := range records {
		if strings.Contains(strings.ToLower(r.Name), needle) {
			out = append(out, r)
		}
	}
	return out
}
