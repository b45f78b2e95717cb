package catalog

import "github.com/John-Robertt/moviechat/internal/domain"

// BuiltinName 是内置电影库的 source 名称。
const BuiltinName = "local"

// builtinMovies 是内置电影库（手工维护；顺序即查询结果顺序）。
var builtinMovies = []domain.Movie{
	{Title: "The Godfather", Year: 1972, Director: "Francis Ford Coppola", Actors: []string{"Marlon Brando", "Al Pacino", "James Caan", "Diane Keaton"}},
	{Title: "The Godfather Part II", Year: 1974, Director: "Francis Ford Coppola", Actors: []string{"Al Pacino", "Robert De Niro", "Robert Duvall", "Diane Keaton"}},
	{Title: "Apocalypse Now", Year: 1979, Director: "Francis Ford Coppola", Actors: []string{"Martin Sheen", "Marlon Brando", "Robert Duvall"}},
	{Title: "Taxi Driver", Year: 1976, Director: "Martin Scorsese", Actors: []string{"Robert De Niro", "Jodie Foster", "Cybill Shepherd"}},
	{Title: "Goodfellas", Year: 1990, Director: "Martin Scorsese", Actors: []string{"Robert De Niro", "Ray Liotta", "Joe Pesci"}},
	{Title: "The Departed", Year: 2006, Director: "Martin Scorsese", Actors: []string{"Leonardo DiCaprio", "Matt Damon", "Jack Nicholson"}},
	{Title: "Star Wars", Year: 1977, Director: "George Lucas", Actors: []string{"Mark Hamill", "Harrison Ford", "Carrie Fisher"}},
	{Title: "Raiders of the Lost Ark", Year: 1981, Director: "Steven Spielberg", Actors: []string{"Harrison Ford", "Karen Allen"}},
	{Title: "Jaws", Year: 1975, Director: "Steven Spielberg", Actors: []string{"Roy Scheider", "Robert Shaw", "Richard Dreyfuss"}},
	{Title: "Jurassic Park", Year: 1993, Director: "Steven Spielberg", Actors: []string{"Sam Neill", "Laura Dern", "Jeff Goldblum"}},
	{Title: "Schindler's List", Year: 1993, Director: "Steven Spielberg", Actors: []string{"Liam Neeson", "Ben Kingsley", "Ralph Fiennes"}},
	{Title: "Blade Runner", Year: 1982, Director: "Ridley Scott", Actors: []string{"Harrison Ford", "Rutger Hauer", "Sean Young"}},
	{Title: "Alien", Year: 1979, Director: "Ridley Scott", Actors: []string{"Sigourney Weaver", "Tom Skerritt", "John Hurt"}},
	{Title: "Pulp Fiction", Year: 1994, Director: "Quentin Tarantino", Actors: []string{"John Travolta", "Uma Thurman", "Samuel L. Jackson", "Bruce Willis"}},
	{Title: "Jackie Brown", Year: 1997, Director: "Quentin Tarantino", Actors: []string{"Pam Grier", "Samuel L. Jackson", "Robert De Niro"}},
	{Title: "The Shawshank Redemption", Year: 1994, Director: "Frank Darabont", Actors: []string{"Tim Robbins", "Morgan Freeman"}},
	{Title: "Fargo", Year: 1996, Director: "Joel Coen", Actors: []string{"Frances McDormand", "William H. Macy", "Steve Buscemi"}},
	{Title: "The Matrix", Year: 1999, Director: "Lana Wachowski", Actors: []string{"Keanu Reeves", "Laurence Fishburne", "Carrie-Anne Moss"}},
	{Title: "Titanic", Year: 1997, Director: "James Cameron", Actors: []string{"Leonardo DiCaprio", "Kate Winslet"}},
	{Title: "Aliens", Year: 1986, Director: "James Cameron", Actors: []string{"Sigourney Weaver", "Michael Biehn", "Bill Paxton"}},
	{Title: "Memento", Year: 2000, Director: "Christopher Nolan", Actors: []string{"Guy Pearce", "Carrie-Anne Moss", "Joe Pantoliano"}},
	{Title: "The Dark Knight", Year: 2008, Director: "Christopher Nolan", Actors: []string{"Christian Bale", "Heath Ledger", "Aaron Eckhart"}},
	{Title: "Inception", Year: 2010, Director: "Christopher Nolan", Actors: []string{"Leonardo DiCaprio", "Joseph Gordon-Levitt", "Elliot Page"}},
	{Title: "Interstellar", Year: 2014, Director: "Christopher Nolan", Actors: []string{"Matthew McConaughey", "Anne Hathaway", "Jessica Chastain"}},
	{Title: "Amelie", Year: 2001, Director: "Jean-Pierre Jeunet", Actors: []string{"Audrey Tautou", "Mathieu Kassovitz"}},
	{Title: "Spirited Away", Year: 2001, Director: "Hayao Miyazaki", Actors: []string{"Rumi Hiiragi", "Miyu Irino"}},
	{Title: "No Country for Old Men", Year: 2007, Director: "Joel Coen", Actors: []string{"Tommy Lee Jones", "Javier Bardem", "Josh Brolin"}},
	{Title: "Mad Max: Fury Road", Year: 2015, Director: "George Miller", Actors: []string{"Tom Hardy", "Charlize Theron", "Nicholas Hoult"}},
	{Title: "Parasite", Year: 2019, Director: "Bong Joon-ho", Actors: []string{"Song Kang-ho", "Lee Sun-kyun", "Cho Yeo-jeong"}},
	{Title: "Oppenheimer", Year: 2023, Director: "Christopher Nolan", Actors: []string{"Cillian Murphy", "Emily Blunt", "Matt Damon", "Robert Downey Jr."}},
}

// Default 返回内置电影库。
func Default() *Store {
	s, err := NewStore(BuiltinName, builtinMovies)
	if err != nil {
		// 内置数据由源码维护，校验失败属于编程错误。
		panic(err)
	}
	return s
}
