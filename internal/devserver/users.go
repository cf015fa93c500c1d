package devserver

import "github.com/hay-kot/leadr/internal/core/feed"

// SampleUsers returns the fixed external-data collection.
func SampleUsers() []feed.User {
	return []feed.User{
		{
			ID:       1,
			Name:     "Leanne Graham",
			Username: "Bret",
			Email:    "Sincere@april.biz",
			Address:  feed.Address{Street: "Kulas Light", Suite: "Apt. 556", City: "Gwenborough", Zipcode: "92998-3874"},
			Phone:    "1-770-736-8031 x56442",
			Website:  "hildegard.org",
			Company:  feed.Company{Name: "Romaguera-Crona"},
		},
		{
			ID:       2,
			Name:     "Ervin Howell",
			Username: "Antonette",
			Email:    "Shanna@melissa.tv",
			Address:  feed.Address{Street: "Victor Plains", Suite: "Suite 879", City: "Wisokyburgh", Zipcode: "90566-7771"},
			Phone:    "010-692-6593 x09125",
			Website:  "anastasia.net",
			Company:  feed.Company{Name: "Deckow-Crist"},
		},
		{
			ID:       3,
			Name:     "Clementine Bauch",
			Username: "Samantha",
			Email:    "Nathan@yesenia.net",
			Address:  feed.Address{Street: "Douglas Extension", Suite: "Suite 847", City: "McKenziehaven", Zipcode: "59590-4157"},
			Phone:    "1-463-123-4447",
			Website:  "ramiro.info",
			Company:  feed.Company{Name: "Romaguera-Jacobson"},
		},
	}
}
