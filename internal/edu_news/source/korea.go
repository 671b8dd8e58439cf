package source

import "edu-news/internal/edu_news/model"

func Korea() Registry {
	return Registry{
		Country: model.CountryKR,
		AI: []Feed{
			{Name: "AI타임스", URL: "https://www.aitimes.com/rss/allArticle.xml"},
			{
				Name:   "ZDNet Korea AI",
				URL:    "https://zdnet.co.kr/rss/news.xml",
				Filter: TitleContainsAny(false, "AI", "인공지능", "머신러닝"),
			},
			{Name: "전자신문 AI", URL: "https://rss.etnews.com/Section901.xml"},
		},
		Education: []Feed{
			{Name: "에듀프레스", URL: "http://www.edupress.kr/rss/allArticle.xml"},
			{Name: "대학저널", URL: "http://www.dhnews.co.kr/rss/allArticle.xml"},
		},
	}
}
