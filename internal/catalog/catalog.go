// Package catalog holds the read-only attraction and meal collections.
package catalog

import (
	"embed"
	"encoding/json"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/starstrip/starstrip-planner/internal/model"
)

//go:embed data/*.json
var dataFS embed.FS

var (
	defaultOnce    sync.Once
	defaultCatalog *Catalog
)

// Catalog is an immutable set of attractions and meals indexed by city and id.
type Catalog struct {
	attractions []model.Attraction
	meals       []model.Meal

	attractionsByCity map[string][]model.Attraction
	mealsByCity       map[string][]model.Meal
	attractionByID    map[string]model.Attraction
	mealByID          map[string]model.Meal
}

// Default returns the embedded catalog, parsed on first use.
func Default() *Catalog {
	defaultOnce.Do(func() {
		c, err := load()
		if err != nil {
			panic(fmt.Sprintf("catalog: embedded data: %v", err))
		}
		defaultCatalog = c
	})
	return defaultCatalog
}

func load() (*Catalog, error) {
	var attractions []model.Attraction
	var meals []model.Meal
	if err := readJSON("data/attractions.json", &attractions); err != nil {
		return nil, err
	}
	if err := readJSON("data/meals.json", &meals); err != nil {
		return nil, err
	}
	return New(attractions, meals), nil
}

func readJSON(name string, v any) error {
	b, err := dataFS.ReadFile(name)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(b, v); err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	return nil
}

// New builds a catalog from the given records. Input slices are copied.
func New(attractions []model.Attraction, meals []model.Meal) *Catalog {
	c := &Catalog{
		attractions:       slices.Clone(attractions),
		meals:             slices.Clone(meals),
		attractionsByCity: make(map[string][]model.Attraction),
		mealsByCity:       make(map[string][]model.Meal),
		attractionByID:    make(map[string]model.Attraction, len(attractions)),
		mealByID:          make(map[string]model.Meal, len(meals)),
	}
	for _, a := range c.attractions {
		c.attractionsByCity[a.City] = append(c.attractionsByCity[a.City], a)
		c.attractionByID[a.ID] = a
	}
	for _, m := range c.meals {
		c.mealsByCity[m.City] = append(c.mealsByCity[m.City], m)
		c.mealByID[m.ID] = m
	}
	return c
}

// Attractions returns every attraction in catalog order.
func (c *Catalog) Attractions() []model.Attraction { return slices.Clone(c.attractions) }

// Meals returns every meal in catalog order.
func (c *Catalog) Meals() []model.Meal { return slices.Clone(c.meals) }

// AttractionsIn returns the attractions located in city.
func (c *Catalog) AttractionsIn(city string) []model.Attraction {
	return slices.Clone(c.attractionsByCity[city])
}

// MealsIn returns the meals located in city.
func (c *Catalog) MealsIn(city string) []model.Meal {
	return slices.Clone(c.mealsByCity[city])
}

func (c *Catalog) Attraction(id string) (model.Attraction, bool) {
	a, ok := c.attractionByID[id]
	return a, ok
}

func (c *Catalog) Meal(id string) (model.Meal, bool) {
	m, ok := c.mealByID[id]
	return m, ok
}

// Cities returns every city with at least one attraction or meal, sorted.
func (c *Catalog) Cities() []string {
	seen := make(map[string]struct{})
	for city := range c.attractionsByCity {
		seen[city] = struct{}{}
	}
	for city := range c.mealsByCity {
		seen[city] = struct{}{}
	}
	out := make([]string, 0, len(seen))
	for city := range seen {
		out = append(out, city)
	}
	slices.Sort(out)
	return out
}

// AttractionFilter narrows attraction listings. Zero fields match everything.
type AttractionFilter struct {
	City   string
	Type   string
	Region Region
	Query  string
}

// FilterAttractions returns the attractions matching f in catalog order.
func (c *Catalog) FilterAttractions(f AttractionFilter) []model.Attraction {
	q := strings.ToLower(strings.TrimSpace(f.Query))
	out := []model.Attraction{}
	for _, a := range c.attractions {
		if f.City != "" && a.City != f.City {
			continue
		}
		if f.Type != "" && a.Type != f.Type {
			continue
		}
		if f.Region != "" && RegionForCity(a.City) != f.Region {
			continue
		}
		if q != "" && !strings.Contains(strings.ToLower(a.Name), q) {
			continue
		}
		out = append(out, a)
	}
	return out
}

// MealFilter narrows meal listings. Zero fields match everything.
type MealFilter struct {
	City    string
	Cuisine string
	Type    string
	Query   string
}

// FilterMeals returns the meals matching f in catalog order.
func (c *Catalog) FilterMeals(f MealFilter) []model.Meal {
	q := strings.ToLower(strings.TrimSpace(f.Query))
	out := []model.Meal{}
	for _, m := range c.meals {
		if f.City != "" && m.City != f.City {
			continue
		}
		if f.Cuisine != "" && !strings.EqualFold(m.Cuisine, f.Cuisine) {
			continue
		}
		if f.Type != "" && m.Type != f.Type {
			continue
		}
		if q != "" && !strings.Contains(strings.ToLower(m.Name), q) {
			continue
		}
		out = append(out, m)
	}
	return out
}
