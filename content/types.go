package content

// Frontmatter is the YAML header of a content file.
type Frontmatter struct {
	Title   string   `yaml:"title" json:"title"`
	Date    string   `yaml:"date,omitempty" json:"date,omitempty"`
	Summary string   `yaml:"summary,omitempty" json:"summary,omitempty"`
	Tags    []string `yaml:"tags,omitempty" json:"tags,omitempty"`
}

// Item is one raw content record as produced by a Loader.
type Item struct {
	Slug        string      `json:"slug"`
	Frontmatter Frontmatter `json:"frontmatter"`
	Body        string      `json:"body"`
}
