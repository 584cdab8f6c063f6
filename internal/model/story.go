package model

// StoryRecord describes one discovered story.
type StoryRecord struct {
	StoryID     string      `yaml:"id"`
	FileID      string      `yaml:"file_id"`
	BindingName string      `yaml:"binding"`
	Source      SourceEntry `yaml:"source"`
	EncodedName string      `yaml:"component"`  // loader variable name in the generated module
	ImportPath  string      `yaml:"import_path"` // relative to the application source root
}

// Extraction is the output of extracting stories from one or more files.
// Records and Loaders are parallel: Loaders[i] declares Records[i].EncodedName.
type Extraction struct {
	Records []StoryRecord
	Loaders []string
}

// Append adds the stories of other in order.
func (e *Extraction) Append(other Extraction) {
	e.Records = append(e.Records, other.Records...)
	e.Loaders = append(e.Loaders, other.Loaders...)
}

// Len returns the number of stories.
func (e Extraction) Len() int {
	return len(e.Records)
}

// StoryIDs returns the story identifiers in discovery order.
func (e Extraction) StoryIDs() []string {
	ids := make([]string, 0, len(e.Records))
	for _, record := range e.Records {
		ids = append(ids, record.StoryID)
	}

	return ids
}
