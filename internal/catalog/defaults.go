package catalog

import "seniorkiosk/internal/models"

// DefaultEntries is the built-in menu used when no menu file is configured
func DefaultEntries() []Entry {
	return []Entry{
		{
			MenuItem: models.MenuItem{
				ID:          "1",
				Name:        "아메리카노",
				Price:       3000,
				ImageURL:    "https://picsum.photos/300/300?random=1",
				Description: "진한 에스프레소와 물의 깔끔한 조화",
			},
			Keywords: []string{"아메리카노", "아메리", "커피"},
		},
		{
			MenuItem: models.MenuItem{
				ID:          "2",
				Name:        "카페라떼",
				Price:       3500,
				ImageURL:    "https://picsum.photos/300/300?random=2",
				Description: "부드러운 우유와 에스프레소의 조화",
			},
			Keywords: []string{"라떼", "카페라떼", "라테"},
		},
		{
			MenuItem: models.MenuItem{
				ID:          "3",
				Name:        "유자차",
				Price:       4000,
				ImageURL:    "https://picsum.photos/300/300?random=3",
				Description: "달콤하고 상큼한 유자의 향기",
			},
			Keywords: []string{"유자", "유자차"},
		},
		{
			MenuItem: models.MenuItem{
				ID:          "4",
				Name:        "쌍화차",
				Price:       5000,
				ImageURL:    "https://picsum.photos/300/300?random=4",
				Description: "건강에 좋은 전통 한방차",
				SoldOut:     true,
			},
			Keywords: []string{"쌍화", "쌍화차"},
		},
	}
}

// Default returns the built-in catalog
func Default() *Catalog {
	c, err := New(DefaultEntries())
	if err != nil {
		panic(err)
	}
	return c
}
