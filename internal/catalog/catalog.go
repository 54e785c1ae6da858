package catalog

import (
	"math/rand"
)

// Tag is a weighted case reward. Value decides battles, Weight decides draws.
type Tag struct {
	ID     string
	Value  float64
	Weight float64
}

// Tier is a purchasable case pointing at the subset of tags it can award.
type Tier struct {
	ID     string
	Cost   float64
	TagIDs []string
}

type Catalog struct {
	Tags  []Tag
	Tiers []Tier

	tagsByID  map[string]Tag
	tiersByID map[string]Tier
}

func New(tags []Tag, tiers []Tier) *Catalog {
	c := &Catalog{
		Tags:      tags,
		Tiers:     tiers,
		tagsByID:  make(map[string]Tag, len(tags)),
		tiersByID: make(map[string]Tier, len(tiers)),
	}
	for _, t := range tags {
		c.tagsByID[t.ID] = t
	}
	for _, t := range tiers {
		c.tiersByID[t.ID] = t
	}
	return c
}

// Default is the live catalog: three tiers, nine tags. Values match the
// client's payout table; weights skew draws toward the cheap tags.
func Default() *Catalog {
	tags := []Tag{
		{ID: "noob", Value: 50, Weight: 50},
		{ID: "player", Value: 100, Weight: 30},
		{ID: "grinder", Value: 300, Weight: 20},
		{ID: "hustler", Value: 450, Weight: 50},
		{ID: "high_roller", Value: 600, Weight: 35},
		{ID: "shark", Value: 900, Weight: 15},
		{ID: "whale", Value: 1300, Weight: 55},
		{ID: "vip", Value: 1600, Weight: 30},
		{ID: "legend", Value: 2000, Weight: 15},
	}
	tiers := []Tier{
		{ID: "starter", Cost: 100, TagIDs: []string{"noob", "player", "grinder"}},
		{ID: "pro", Cost: 500, TagIDs: []string{"hustler", "high_roller", "shark"}},
		{ID: "god", Cost: 1500, TagIDs: []string{"whale", "vip", "legend"}},
	}
	return New(tags, tiers)
}

func (c *Catalog) Tag(id string) (Tag, bool) {
	t, ok := c.tagsByID[id]
	return t, ok
}

func (c *Catalog) Tier(id string) (Tier, bool) {
	t, ok := c.tiersByID[id]
	return t, ok
}

// Draw picks one tag from ids proportionally to weight. An id set that
// resolves to nothing in the catalog falls back to the first catalog tag, so
// a draw always produces a result.
func (c *Catalog) Draw(ids []string) Tag {
	return c.drawAt(ids, rand.Float64())
}

// drawAt runs the roulette walk with a fixed uniform u in [0,1). Catalog
// order breaks ties between equal-weight tags.
func (c *Catalog) drawAt(ids []string, u float64) Tag {
	pool := make([]Tag, 0, len(ids))
	allowed := make(map[string]bool, len(ids))
	for _, id := range ids {
		allowed[id] = true
	}
	for _, t := range c.Tags {
		if allowed[t.ID] {
			pool = append(pool, t)
		}
	}
	if len(pool) == 0 {
		return c.Tags[0]
	}

	var total float64
	for _, t := range pool {
		total += t.Weight
	}
	remainder := u * total
	for _, t := range pool {
		remainder -= t.Weight
		if remainder <= 0 {
			return t
		}
	}
	return pool[len(pool)-1]
}
