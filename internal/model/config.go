package model

import "time"

// ArchiveMode selects the archiver implementation.
type ArchiveMode string

const (
	// ArchiveInProcess writes the archive with archive/zip.
	ArchiveInProcess ArchiveMode = "zip"
	// ArchiveCommand shells out to an external zip binary.
	ArchiveCommand ArchiveMode = "command"
)

// Config is the immutable configuration handed to every pipeline component at
// construction time.
type Config struct {
	// WorkDir is the name of the scratch directory created inside a batch root.
	WorkDir string
	// Threshold is the minimum number of contact tokens a file needs.
	Threshold int
	// IgnoreSuffixes lists file suffixes (case-sensitive) never enumerated.
	IgnoreSuffixes []string
	// Delimiters is the supported delimiter alphabet, in bucket order.
	Delimiters []Delimiter
	// SQLMarkers are matched case-insensitively against a text prefix.
	SQLMarkers []string
	// SourceNames is the vocabulary matched against a manifest's Source.
	SourceNames []string

	ClassifyPrefix int // bytes read for the signature probe
	TextPrefix     int // bytes read for text heuristics
	SniffUnit      int // sniff sample unit in bytes
	SniffSteps     int // largest sample is SniffSteps*SniffUnit

	ParseSQL              bool
	IgnoreFailures        bool
	TolerateSparseTabular bool

	ArchiveMode    ArchiveMode
	ArchiveCommand string
	ArchiveTimeout time.Duration
}

// Default configuration values.
const (
	DefaultWorkDir        = "z6yLr36C"
	DefaultThreshold      = 100
	DefaultClassifyPrefix = 5 * 1024
	DefaultTextPrefix     = 10 * 1024
	DefaultSniffUnit      = 1024
	DefaultSniffSteps     = 10
	DefaultArchiveCommand = "zip"
	DefaultArchiveTimeout = 10 * time.Minute
)

// DefaultIgnoreSuffixes are the non-data suffixes skipped by the enumerator.
func DefaultIgnoreSuffixes() []string {
	return []string{".yaml", ".PNG", ".manifest"}
}

// DefaultSQLMarkers are the SQL dump indicators.
func DefaultSQLMarkers() []string {
	return []string{"MySQL", "SQL dump", "CREATE TABLE", "INSERT INTO", "Host: localhost", "MariaDB"}
}

// DefaultSourceNames is the source vocabulary recognized in manifests.
func DefaultSourceNames() []string {
	return []string{"XSS", "LeakBase", "BreachForums", "DarkForums", "Cracked"}
}

// DefaultConfig returns the configuration used when nothing is overridden.
func DefaultConfig() Config {
	return Config{
		WorkDir:        DefaultWorkDir,
		Threshold:      DefaultThreshold,
		IgnoreSuffixes: DefaultIgnoreSuffixes(),
		Delimiters:     DefaultDelimiters(),
		SQLMarkers:     DefaultSQLMarkers(),
		SourceNames:    DefaultSourceNames(),
		ClassifyPrefix: DefaultClassifyPrefix,
		TextPrefix:     DefaultTextPrefix,
		SniffUnit:      DefaultSniffUnit,
		SniffSteps:     DefaultSniffSteps,
		ArchiveMode:    ArchiveInProcess,
		ArchiveCommand: DefaultArchiveCommand,
		ArchiveTimeout: DefaultArchiveTimeout,
	}
}

// Normalized fills zero values with defaults so partially populated configs
// (tests, hand-built values) remain usable.
func (c Config) Normalized() Config {
	def := DefaultConfig()

	if c.WorkDir == "" {
		c.WorkDir = def.WorkDir
	}

	if c.Threshold <= 0 {
		c.Threshold = def.Threshold
	}

	if c.IgnoreSuffixes == nil {
		c.IgnoreSuffixes = def.IgnoreSuffixes
	}

	if len(c.Delimiters) == 0 {
		c.Delimiters = def.Delimiters
	}

	if len(c.SQLMarkers) == 0 {
		c.SQLMarkers = def.SQLMarkers
	}

	if len(c.SourceNames) == 0 {
		c.SourceNames = def.SourceNames
	}

	if c.ClassifyPrefix <= 0 {
		c.ClassifyPrefix = def.ClassifyPrefix
	}

	if c.TextPrefix <= 0 {
		c.TextPrefix = def.TextPrefix
	}

	if c.SniffUnit <= 0 {
		c.SniffUnit = def.SniffUnit
	}

	if c.SniffSteps <= 0 {
		c.SniffSteps = def.SniffSteps
	}

	if c.ArchiveMode == "" {
		c.ArchiveMode = def.ArchiveMode
	}

	if c.ArchiveCommand == "" {
		c.ArchiveCommand = def.ArchiveCommand
	}

	if c.ArchiveTimeout <= 0 {
		c.ArchiveTimeout = def.ArchiveTimeout
	}

	return c
}
