package profile

import (
	"slices"

	"github.com/starstrip/starstrip-planner/internal/model"
)

// Favorites is the identity-scoped bookmark store.
type Favorites struct {
	parts *Partitions[model.Favorites]
}

// NewFavoritesPartitions creates an empty favorites table resolving keys through resolve.
func NewFavoritesPartitions(resolve KeyResolver) *Partitions[model.Favorites] {
	return NewPartitions(resolve, model.NewFavorites, model.Favorites.Clone)
}

func NewFavorites(parts *Partitions[model.Favorites]) *Favorites {
	return &Favorites{parts: parts}
}

// Partitions exposes the underlying table.
func (f *Favorites) Partitions() *Partitions[model.Favorites] { return f.parts }

// List returns the active profile's favorites.
func (f *Favorites) List() model.Favorites { return f.parts.Read() }

// AddAttraction bookmarks a. Adding an id twice keeps the first entry.
func (f *Favorites) AddAttraction(a model.Attraction) model.Favorites {
	return f.parts.Write(func(v model.Favorites) model.Favorites {
		if !slices.ContainsFunc(v.Attractions, func(x model.Attraction) bool { return x.ID == a.ID }) {
			v.Attractions = append(v.Attractions, a)
		}
		return v
	})
}

func (f *Favorites) RemoveAttraction(id string) model.Favorites {
	return f.parts.Write(func(v model.Favorites) model.Favorites {
		v.Attractions = slices.DeleteFunc(v.Attractions, func(x model.Attraction) bool { return x.ID == id })
		return v
	})
}

// AddRestaurant bookmarks m. Adding an id twice keeps the first entry.
func (f *Favorites) AddRestaurant(m model.Meal) model.Favorites {
	return f.parts.Write(func(v model.Favorites) model.Favorites {
		if !slices.ContainsFunc(v.Restaurants, func(x model.Meal) bool { return x.ID == m.ID }) {
			v.Restaurants = append(v.Restaurants, m)
		}
		return v
	})
}

func (f *Favorites) RemoveRestaurant(id string) model.Favorites {
	return f.parts.Write(func(v model.Favorites) model.Favorites {
		v.Restaurants = slices.DeleteFunc(v.Restaurants, func(x model.Meal) bool { return x.ID == id })
		return v
	})
}

func (f *Favorites) IsAttractionFavorited(id string) bool {
	return slices.ContainsFunc(f.parts.Read().Attractions, func(x model.Attraction) bool { return x.ID == id })
}

func (f *Favorites) IsRestaurantFavorited(id string) bool {
	return slices.ContainsFunc(f.parts.Read().Restaurants, func(x model.Meal) bool { return x.ID == id })
}
