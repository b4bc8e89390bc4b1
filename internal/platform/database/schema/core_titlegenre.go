package schema

// CoreTitleGenreTable represents the 'core.titlegenre' junction table
type CoreTitleGenreTable struct {
	Table   string
	TitleID string
	GenreID string
}

// CoreTitleGenre is the schema definition for core.titlegenre
var CoreTitleGenre = CoreTitleGenreTable{
	Table:   "core.titlegenre",
	TitleID: "titleid",
	GenreID: "genreid",
}

// Columns returns all standard column names
func (t CoreTitleGenreTable) Columns() []string {
	return []string{t.TitleID, t.GenreID}
}
