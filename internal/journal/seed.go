package journal

import (
	"time"

	"cafelog/internal/model"
)

const day = 24 * time.Hour

// Seed returns the sample cafes a fresh journal starts with.
func Seed(now time.Time) []model.Cafe {
	sample := func(name string, ago time.Duration, rating int, sp model.Specialty, notes string, fav bool, place model.Place) model.Cafe {
		c := model.NewCafe(now.Add(-ago))
		c.Name = name
		c.Rating = rating
		c.Specialty = sp
		c.Notes = notes
		c.Favourite = fav
		c.Place = &place
		return c
	}

	return []model.Cafe{
		sample("Hvala", 5*day, 5, model.SpecialtyDrinks, "Excellent coffee and service", false,
			model.Place{Address: "23 Duxton Rd, Singapore", Coordinate: model.Coordinate{Lat: 1.2793, Lon: 103.8436}}),
		sample("September Coffee", 10*day, 3, model.SpecialtyFood, "Tasty pastries, friendly staff", false,
			model.Place{Address: "45 Kampong Glam Rd, Singapore", Coordinate: model.Coordinate{Lat: 1.3022, Lon: 103.8593}}),
		sample("Syip", 30*day, 4, model.SpecialtyMusic, "Live music on weekends", true,
			model.Place{Address: "12 Tanjong Pagar Rd, Singapore", Coordinate: model.Coordinate{Lat: 1.2786, Lon: 103.8441}}),
	}
}
