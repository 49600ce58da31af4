package phonebook

import "github.com/marcus/phonebook/internal/models"

// collection is the ordered record list plus lookup indexes.
// byName keeps the first record seen for a name, which is the one the
// duplicate check compares against.
type collection struct {
	records []models.Record
	byName  map[string]int
	byID    map[models.ID]int
}

func newCollection(records []models.Record) *collection {
	c := &collection{records: append([]models.Record(nil), records...)}
	c.reindex()
	return c
}

func (c *collection) reindex() {
	c.byName = make(map[string]int, len(c.records))
	c.byID = make(map[models.ID]int, len(c.records))
	for i, r := range c.records {
		if _, ok := c.byName[r.Name]; !ok {
			c.byName[r.Name] = i
		}
		c.byID[r.ID] = i
	}
}

func (c *collection) lookupName(name string) (models.Record, bool) {
	i, ok := c.byName[name]
	if !ok {
		return models.Record{}, false
	}
	return c.records[i], true
}

func (c *collection) lookupID(id models.ID) (models.Record, bool) {
	i, ok := c.byID[id]
	if !ok {
		return models.Record{}, false
	}
	return c.records[i], true
}

func (c *collection) append(r models.Record) {
	c.records = append(c.records, r)
	if _, ok := c.byName[r.Name]; !ok {
		c.byName[r.Name] = len(c.records) - 1
	}
	c.byID[r.ID] = len(c.records) - 1
}

// replace swaps the record with the given id in place.
func (c *collection) replace(id models.ID, r models.Record) bool {
	i, ok := c.byID[id]
	if !ok {
		return false
	}
	c.records[i] = r
	c.reindex()
	return true
}

// remove drops every record carrying id.
func (c *collection) remove(id models.ID) bool {
	kept := c.records[:0]
	removed := false
	for _, r := range c.records {
		if r.ID == id {
			removed = true
			continue
		}
		kept = append(kept, r)
	}
	c.records = kept
	if removed {
		c.reindex()
	}
	return removed
}

func (c *collection) snapshot() []models.Record {
	out := make([]models.Record, len(c.records))
	copy(out, c.records)
	return out
}
