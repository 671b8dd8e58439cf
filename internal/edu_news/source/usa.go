package source

import "edu-news/internal/edu_news/model"

func USA() Registry {
	return Registry{
		Country: model.CountryUS,
		AI: []Feed{
			{Name: "TechCrunch AI", URL: "https://techcrunch.com/tag/artificial-intelligence/feed/"},
			{Name: "VentureBeat AI", URL: "https://venturebeat.com/category/ai/feed/"},
			{Name: "MIT Technology Review", URL: "https://www.technologyreview.com/topic/artificial-intelligence/feed/"},
			{Name: "The Verge AI", URL: "https://www.theverge.com/rss/ai-artificial-intelligence/index.xml"},
			{
				Name:   "Ars Technica AI",
				URL:    "https://feeds.arstechnica.com/arstechnica/technology-lab",
				Filter: TitleContainsAny(true, "ai", "artificial intelligence"),
			},
		},
		Education: []Feed{
			{Name: "EdSurge", URL: "https://www.edsurge.com/news.rss"},
			{Name: "eSchool News", URL: "https://www.eschoolnews.com/feed/"},
			{Name: "THE Journal", URL: "https://thejournal.com/rss-feeds/news.aspx"},
			{Name: "EdTech Magazine", URL: "https://edtechmagazine.com/higher/rss.xml"},
		},
	}
}
