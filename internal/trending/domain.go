package trending

// Keyword is one entry in the trending feed.
type Keyword struct {
	Keyword        string `json:"keyword"`
	Category       string `json:"category"`
	EstimatedViews int    `json:"estimatedViews"`
	Source         Source `json:"source"`
}

// Source tells whether a keyword came from the live feed or the curated
// suggestion list.
type Source string

const (
	SourceTrending  Source = "trending"
	SourceSuggested Source = "suggested"
)

// Video is one most-popular feed item as the provider reports it.
type Video struct {
	Title      string
	CategoryID string
	ViewCount  int
}

var categoryNames = map[string]string{
	"1":  "Film & Animation",
	"2":  "Autos & Vehicles",
	"10": "Music",
	"15": "Pets & Animals",
	"17": "Sports",
	"19": "Travel & Events",
	"20": "Gaming",
	"22": "People & Blogs",
	"23": "Comedy",
	"24": "Entertainment",
	"25": "News & Politics",
	"26": "Howto & Style",
	"27": "Education",
	"28": "Science & Technology",
}

func categoryName(id string) string {
	if name, ok := categoryNames[id]; ok {
		return name
	}
	return "Other"
}

// suggestedKeywords tops up the feed when the provider returns too few usable
// titles, and serves as the whole response when the provider is down.
var suggestedKeywords = []Keyword{
	{Keyword: "AI tool roundup", Category: "Science & Technology", EstimatedViews: 500000, Source: SourceSuggested},
	{Keyword: "budget smartphone review", Category: "Science & Technology", EstimatedViews: 800000, Source: SourceSuggested},
	{Keyword: "meal prep ideas", Category: "Howto & Style", EstimatedViews: 600000, Source: SourceSuggested},
	{Keyword: "work from home side hustle", Category: "Education", EstimatedViews: 400000, Source: SourceSuggested},
	{Keyword: "investing for beginners", Category: "Education", EstimatedViews: 700000, Source: SourceSuggested},
	{Keyword: "home workout routine", Category: "Sports", EstimatedViews: 550000, Source: SourceSuggested},
	{Keyword: "travel vlog", Category: "Travel & Events", EstimatedViews: 650000, Source: SourceSuggested},
	{Keyword: "puppy training basics", Category: "Pets & Animals", EstimatedViews: 450000, Source: SourceSuggested},
	{Keyword: "easy dinner recipes", Category: "Howto & Style", EstimatedViews: 500000, Source: SourceSuggested},
	{Keyword: "language learning tips", Category: "Education", EstimatedViews: 550000, Source: SourceSuggested},
}
