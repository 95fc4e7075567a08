package catalog

import (
	"fmt"
	"log"
	"time"

	"cinevault/models"
)

// seedMovies is the built-in demo catalog, loaded when the movies table is
// empty so a fresh install has something to browse.
var seedMovies = []models.MovieRecord{
	{
		ID:          "cv-inception",
		Title:       "Inception",
		Description: "A thief who steals corporate secrets through dream-sharing technology is given the inverse task of planting an idea into the mind of a C.E.O.",
		Poster:      "https://image.cinevault.local/posters/inception.jpg",
		Backdrop:    "https://image.cinevault.local/backdrops/inception.jpg",
		Year:        2010,
		Rating:      8.8,
		Duration:    148,
		Genres:      []string{"Action", "Sci-Fi", "Thriller"},
		Featured:    true,
	},
	{
		ID:          "cv-grand-budapest",
		Title:       "The Grand Budapest Hotel",
		Description: "A legendary concierge and his trusted lobby boy become entangled in the theft of a priceless Renaissance painting.",
		Poster:      "https://image.cinevault.local/posters/grand-budapest.jpg",
		Backdrop:    "https://image.cinevault.local/backdrops/grand-budapest.jpg",
		Year:        2014,
		Rating:      8.1,
		Duration:    99,
		Genres:      []string{"Comedy", "Drama"},
		Featured:    true,
	},
	{
		ID:          "cv-amelie",
		Title:       "Amélie",
		Description: "A shy waitress in Montmartre decides to change the lives of those around her for the better, while struggling with her own isolation.",
		Poster:      "https://image.cinevault.local/posters/amelie.jpg",
		Backdrop:    "https://image.cinevault.local/backdrops/amelie.jpg",
		Year:        2001,
		Rating:      8.3,
		Duration:    122,
		Genres:      []string{"Comedy", "Romance"},
	},
	{
		ID:          "cv-heat",
		Title:       "Heat",
		Description: "A group of professional bank robbers start to feel the pressure from a relentless detective as they plan one last big score.",
		Poster:      "https://image.cinevault.local/posters/heat.jpg",
		Backdrop:    "https://image.cinevault.local/backdrops/heat.jpg",
		Year:        1995,
		Rating:      8.3,
		Duration:    170,
		Genres:      []string{"Action", "Crime", "Drama"},
	},
	{
		ID:          "cv-spirited-away",
		Title:       "Spirited Away",
		Description: "During her family's move to the suburbs, a sullen girl wanders into a world ruled by witches and spirits, where humans are changed into beasts.",
		Poster:      "https://image.cinevault.local/posters/spirited-away.jpg",
		Backdrop:    "https://image.cinevault.local/backdrops/spirited-away.jpg",
		Year:        2001,
		Rating:      8.6,
		Duration:    125,
		Genres:      []string{"Animation", "Fantasy"},
		Featured:    true,
	},
	{
		ID:          "cv-parasite",
		Title:       "Parasite",
		Description: "Greed and class discrimination threaten the newly formed symbiotic relationship between the wealthy Park family and the destitute Kim clan.",
		Poster:      "https://image.cinevault.local/posters/parasite.jpg",
		Backdrop:    "https://image.cinevault.local/backdrops/parasite.jpg",
		Year:        2019,
		Rating:      8.5,
		Duration:    132,
		Genres:      []string{"Drama", "Thriller"},
	},
	{
		ID:          "cv-mad-max-fury",
		Title:       "Mad Max: Fury Road",
		Description: "In a post-apocalyptic wasteland, a woman rebels against a tyrannical ruler in search of her homeland with the aid of a drifter named Max.",
		Poster:      "https://image.cinevault.local/posters/fury-road.jpg",
		Backdrop:    "https://image.cinevault.local/backdrops/fury-road.jpg",
		Year:        2015,
		Rating:      8.1,
		Duration:    120,
		Genres:      []string{"Action", "Sci-Fi"},
	},
	{
		ID:          "cv-before-sunrise",
		Title:       "Before Sunrise",
		Description: "A young man and woman meet on a train in Europe and wind up spending one evening together in Vienna.",
		Poster:      "https://image.cinevault.local/posters/before-sunrise.jpg",
		Backdrop:    "https://image.cinevault.local/backdrops/before-sunrise.jpg",
		Year:        1995,
		Rating:      8.1,
		Duration:    101,
		Genres:      []string{"Drama", "Romance"},
	},
	{
		ID:          "cv-alien",
		Title:       "Alien",
		Description: "The crew of a commercial spacecraft encounters a deadly lifeform after investigating an unknown transmission.",
		Poster:      "https://image.cinevault.local/posters/alien.jpg",
		Backdrop:    "https://image.cinevault.local/backdrops/alien.jpg",
		Year:        1979,
		Rating:      8.5,
		Duration:    117,
		Genres:      []string{"Horror", "Sci-Fi"},
	},
	{
		ID:          "cv-paddington-2",
		Title:       "Paddington 2",
		Description: "Paddington picks up a series of odd jobs to buy the perfect present for his aunt, but the gift is stolen.",
		Poster:      "https://image.cinevault.local/posters/paddington-2.jpg",
		Backdrop:    "https://image.cinevault.local/backdrops/paddington-2.jpg",
		Year:        2017,
		Rating:      7.8,
		Duration:    103,
		Genres:      []string{"Comedy", "Family"},
	},
}

// Seed loads the demo catalog when the movies table is empty. It is safe to
// call on every startup.
func (s *Service) Seed() error {
	count, err := s.movies.Count()
	if err != nil {
		return fmt.Errorf("check catalog size: %w", err)
	}
	if count > 0 {
		return nil
	}

	now := time.Now().UTC()
	for i, movie := range seedMovies {
		movie.Active = true
		// Stagger creation times so the "recent" section has a stable order.
		movie.CreatedAt = now.Add(-time.Duration(len(seedMovies)-i) * time.Hour)
		if err := s.movies.Upsert(movie); err != nil {
			return fmt.Errorf("seed movie %s: %w", movie.ID, err)
		}
	}
	log.Printf("[catalog] seeded %d demo movies", len(seedMovies))
	return nil
}
