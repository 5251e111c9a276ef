package main

var (
	ProfileName = "Horse-MA00"

	// Cycled through on the identity card.
	RotatingTexts = []string{"Horse-MA00", "CUHK Student", "Developer", "Badminton Player"}

	Roles = []string{
		"CUHK Student",
		"Developer",
		"Badminton Player",
		"Coming Exchange at Chalmers 🇸🇪",
	}

	OrbitCards = []Card{
		{Icon: "💻", Title: "Web Development", Description: "Building modern web applications with React & TypeScript"},
		{Icon: "🎓", Title: "CUHK Student", Description: "Studying Computer Science at CUHK"},
		{Icon: "🏸", Title: "Badminton", Description: "Passionate badminton player and sports enthusiast"},
		{Icon: "🌍", Title: "Exchange Program", Description: "Coming exchange at Chalmers University 🇸🇪"},
		{Icon: "🚀", Title: "Tech Enthusiast", Description: "Love exploring new technologies and tools"},
		{Icon: "📚", Title: "Continuous Learning", Description: "Always learning and improving my skills"},
	}

	NavLinks = []Link{
		{Label: "⭐ Favorites", URL: "#favorites"},
		{Label: "Code", URL: "#code"},
		{Label: "Projects", URL: "#projects"},
		{Label: "Music", URL: "#music"},
		{Label: "Books", URL: "#books"},
	}

	SocialLinks = []Link{
		{Label: "GitHub", URL: "https://github.com/Horse-MA00", External: true},
		{Label: "Twitter", URL: "https://twitter.com", External: true},
		{Label: "Email", URL: "mailto:mht.matthew@gmail.com"},
		{Label: "Instagram", URL: "https://instagram.com", External: true},
	}
)
