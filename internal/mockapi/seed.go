package mockapi

import (
	"fmt"
	"strings"

	"github.com/desertthunder/streamz/internal/models"
)

// Credentials of the seeded demo account.
const (
	DemoUsername = "demo"
	DemoPassword = "streamz-demo"

	mediaBase = "https://media.streamz.local"
)

type seedTitle struct {
	title  string
	year   int
	kind   models.ContentType
	genres []int
	plan   int
	desc   string
}

var seedPlans = []models.Plan{
	{ID: 1, Name: "Basic", Price: "8.99", MaxScreens: 1, VideoQuality: "SD"},
	{ID: 2, Name: "Standard", Price: "13.99", MaxScreens: 2, VideoQuality: "HD"},
	{ID: 3, Name: "Premium", Price: "17.99", MaxScreens: 4, VideoQuality: "4K"},
}

var seedGenres = []models.Genre{
	{ID: 1, Name: "Drama"},
	{ID: 2, Name: "Comedy"},
	{ID: 3, Name: "Science Fiction"},
	{ID: 4, Name: "Thriller"},
	{ID: 5, Name: "Nature"},
	{ID: 6, Name: "History"},
	{ID: 7, Name: "Animation"},
}

var seedTitles = []seedTitle{
	{"The Long Road", 2021, models.Movie, []int{1}, 1, "Two estranged brothers drive a failing truck across the desert."},
	{"Glass Harbor", 2019, models.Movie, []int{1, 4}, 1, "A lighthouse keeper finds a message that should not exist."},
	{"Orbit Nine", 2023, models.Movie, []int{3, 4}, 2, "The last crew of a mining station loses contact with Earth."},
	{"Paper Moons", 2018, models.Movie, []int{2, 1}, 1, "A failed magician takes a job at a children's hospital."},
	{"Static Bloom", 2022, models.Movie, []int{3}, 2, "A botanist grows a garden that answers back."},
	{"Midnight Ledger", 2020, models.Movie, []int{4}, 1, "An accountant uncovers the numbers behind a citywide blackout."},
	{"Small Hours", 2017, models.Movie, []int{1}, 1, "A night shift at a diner, told in real time."},
	{"Lantern Field", 2024, models.Movie, []int{7, 2}, 1, "A paper lantern wants to see the ocean."},
	{"Ironwood", 2016, models.Movie, []int{6, 1}, 2, "A logging town votes on its own future."},
	{"Second Signal", 2021, models.Movie, []int{3, 4}, 3, "A radio astronomer hears her own voice from deep space."},
	{"Copper Sky", 2015, models.Movie, []int{1}, 1, "A rodeo clown mentors a runaway."},
	{"Understudy", 2019, models.Movie, []int{2}, 1, "The backup actor finally gets the part, every night, by accident."},
	{"Salt and Cedar", 2022, models.Movie, []int{1, 6}, 2, "Three generations of a fishing family in one summer."},
	{"Quiet Machines", 2023, models.Movie, []int{3}, 3, "A repair shop for robots that no longer remember their owners."},
	{"The Arbiter", 2018, models.Movie, []int{4}, 2, "A chess referee is pulled into a match with real stakes."},
	{"Sunday Drivers", 2020, models.Movie, []int{2}, 1, "A retired couple enters a cross-country rally."},
	{"Northern Lines", 2017, models.Movie, []int{1}, 1, "A train conductor's final run before the line closes."},
	{"Hollow Point", 2021, models.Movie, []int{4, 1}, 2, "A detective returns to the town she left at seventeen."},
	{"Kite Weather", 2016, models.Movie, []int{7}, 1, "A boy and his grandfather build the perfect kite."},
	{"Afterimage", 2024, models.Movie, []int{3, 1}, 3, "A photographer whose pictures show the next day."},
	{"The Cartographer", 2019, models.Movie, []int{6}, 2, "The mapmaker who drew a country that never existed."},
	{"Low Tide", 2022, models.Movie, []int{1, 4}, 1, "Divers search a wreck that keeps moving."},
	{"Harbor Lights", 2022, models.Series, []int{4, 1}, 2, "A small town mystery unfolds over one stormy winter."},
	{"Station Eleven Tales", 2023, models.Series, []int{3}, 3, "Anthology stories from a spaceport at the edge of the map."},
	{"Office Plants", 2020, models.Series, []int{2}, 1, "A workplace comedy narrated by the ficus in accounting."},
	{"Wild Coasts", 2021, models.Documentary, []int{5}, 1, "The shorelines where land and sea trade places daily."},
	{"The Clockmakers", 2019, models.Documentary, []int{6}, 1, "Inside the last workshops that build clocks by hand."},
	{"Deep Sea, Vol. 2", 2023, models.Documentary, []int{5}, 2, "Bioluminescent life below four thousand meters."},
}

// seedEpisodes maps series titles to seasons of episode titles.
var seedEpisodes = map[string][][]string{
	"Harbor Lights":        {{"Pilot", "Undertow", "The Keeper"}, {"Thaw", "Flotsam"}},
	"Station Eleven Tales": {{"Arrival", "Customs", "Layover", "Departure"}},
	"Office Plants":        {{"Repotting", "Team Building", "The Audit"}},
}

func (s *Server) seed() {
	s.plans = append([]models.Plan(nil), seedPlans...)
	s.genres = append([]models.Genre(nil), seedGenres...)

	genreByID := map[int]models.Genre{}
	for _, g := range s.genres {
		genreByID[g.ID] = g
	}

	episodeID := 0
	for i, t := range seedTitles {
		slug := slugify(t.title)
		plan := t.plan
		c := models.Content{
			ID:                  i + 1,
			Title:               t.title,
			Description:         t.desc,
			ReleaseYear:         t.year,
			ContentType:         t.kind,
			Thumbnail:           fmt.Sprintf("%s/thumbnails/%s.jpg", mediaBase, slug),
			VideoFile:           fmt.Sprintf("%s/videos/%s.mp4", mediaBase, slug),
			MinSubscriptionPlan: &plan,
		}
		for _, id := range t.genres {
			c.Genres = append(c.Genres, genreByID[id])
		}

		for season, titles := range seedEpisodes[t.title] {
			for n, title := range titles {
				episodeID++
				c.Episodes = append(c.Episodes, models.Episode{
					ID:            episodeID,
					Title:         title,
					SeasonNumber:  season + 1,
					EpisodeNumber: n + 1,
					VideoFile:     fmt.Sprintf("%s/videos/%s-s%02de%02d.mp4", mediaBase, slug, season+1, n+1),
					Duration:      38 + (episodeID*7)%20,
				})
			}
		}
		s.content = append(s.content, c)
	}

	hash, _ := hashPassword(DemoPassword)
	s.nextUser++
	s.accounts[s.nextUser] = &account{
		passwordHash: hash,
		user: models.User{
			ID:                 s.nextUser,
			Username:           DemoUsername,
			Email:              "demo@streamz.local",
			FirstName:          "Demo",
			LastName:           "Viewer",
			Plan:               models.PlanRef{ID: 2},
			SubscriptionActive: true,
		},
	}
}

func slugify(title string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(title) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			dash = false
		case !dash && b.Len() > 0:
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
