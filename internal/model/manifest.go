package model

// InputDescriptor is the provenance document shipped with a batch.
type InputDescriptor struct {
	Title        string `yaml:"Title"`
	Source       string `yaml:"Source"`
	DownloadLink string `yaml:"Download Link"`
	SourceDate   string `yaml:"Source Date"`
	Actor        string `yaml:"Actor"`
}

// FileEntry describes one bucket in the output descriptor.
type FileEntry struct {
	Path      string `yaml:"path"`
	Delimiter string `yaml:"delimiter"`
}

// OutputDescriptor is the manifest published with the archive.
type OutputDescriptor struct {
	Actors        []string    `yaml:"actors"`
	AdvertiseURL  string      `yaml:"advertise_url"`
	BreachVictim  string      `yaml:"breach_victim"`
	DownloadURL   string      `yaml:"download_url"`
	Files         []FileEntry `yaml:"files"`
	PublishedDate string      `yaml:"published_date"`
	SourceNames   []string    `yaml:"source_names,omitempty"`
}
