package catalog

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/John-Robertt/moviechat/internal/domain"
)

func TestLoad_JSON(t *testing.T) {
	s, err := Load(filepath.Join("testdata", "movies.json"))
	require.NoError(t, err)
	assert.Equal(t, 2, s.Len())

	got, err := s.TitlesByActor(context.Background(), "al pacino")
	require.NoError(t, err)
	assert.Equal(t, []string{"Heat"}, got)
}

func TestLoad_HTMLTable(t *testing.T) {
	s, err := Load(filepath.Join("testdata", "movies.html"))
	require.NoError(t, err)

	want := []domain.Movie{
		{Title: "Inception", Year: 2010, Director: "Christopher Nolan", Actors: []string{"Leonardo DiCaprio", "Elliot Page"}},
		{Title: "Heat", Year: 1995, Director: "Michael Mann", Actors: []string{"Al Pacino", "Robert De Niro"}},
		{Title: "Ronin", Year: 1998, Director: "John Frankenheimer", Actors: []string{"Robert De Niro", "Jean Reno"}},
	}
	assert.Equal(t, want, s.Movies())
}

func TestParseHTMLTable_NoMovieTable(t *testing.T) {
	_, err := ParseHTMLTable([]byte(`<table><tr><th>Name</th></tr><tr><td>x</td></tr></table>`))
	assert.Error(t, err)
}

func TestLoad_UnsupportedExt(t *testing.T) {
	p := filepath.Join(t.TempDir(), "movies.csv")
	require.NoError(t, os.WriteFile(p, []byte("a,b"), 0o644))

	_, err := Load(p)
	assert.Error(t, err)
}

func TestLoad_InvalidRecord(t *testing.T) {
	p := filepath.Join(t.TempDir(), "movies.json")
	require.NoError(t, os.WriteFile(p, []byte(`[{"title":"x","year":0}]`), 0o644))

	_, err := Load(p)
	assert.Error(t, err)
}

func TestLoad_LibraryDir(t *testing.T) {
	s, err := Load(filepath.Join("testdata", "library"))
	require.NoError(t, err)

	want := []domain.Movie{
		{Title: "Alien", Year: 1979, Director: "Ridley Scott", Actors: []string{"Sigourney Weaver", "Tom Skerritt"}},
		{Title: "Heat", Year: 1995, Director: "Michael Mann", Actors: []string{"Al Pacino", "Robert De Niro"}},
	}
	assert.Equal(t, want, s.Movies())
	assert.Equal(t, BuiltinName, s.Name())
}

func TestLoadLibrary_BadNFO(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "x"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "x", "movie.nfo"), []byte("<movie><title>"), 0o644))

	_, err := LoadLibrary(root)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "movie.nfo")
}

func TestLoad_Missing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "none.json"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
