// Package selector resolves include/exclude glob rules against a file tree
// into an ordered, deterministic file set. It is the single traversal that
// both the bundle encoder and the indexer consume, which guarantees the two
// never diverge.
package selector

// FileEntry describes one selected file.
type FileEntry struct {
	// Path is the posix-style path relative to the selection root.
	Path string
	// AbsPath is the absolute filesystem path.
	AbsPath string
	// Size is the file size in bytes.
	Size int64
	// Lines is the number of lines in the file.
	Lines int
	// Hash is the hex-encoded SHA-256 of the file content.
	Hash string
}

// Options configures a selection run.
type Options struct {
	// Root is the directory to select from.
	Root string

	// Include holds glob patterns to include (empty = all files).
	Include []string

	// Exclude holds glob patterns to exclude. Exclusion always wins over
	// inclusion, regardless of pattern order.
	Exclude []string

	// NoDefaultExcludes disables the built-in exclusion list.
	NoDefaultExcludes bool

	// RespectGitignore enables .gitignore parsing at the selection root.
	RespectGitignore bool

	// MaxFileSize is the maximum file size to include in bytes
	// (0 = 10MB default).
	MaxFileSize int64
}

// Selection is the result of a selection run: the ordered file set plus any
// non-fatal warnings recorded along the way (skipped symlinks, unreadable
// entries).
type Selection struct {
	Root     string
	Files    []FileEntry
	Warnings []string
}

// DefaultMaxFileSize is the default maximum file size (10MB).
const DefaultMaxFileSize = 10 * 1024 * 1024

// defaultExcludes are always applied unless NoDefaultExcludes is set.
var defaultExcludes = []string{
	"**/.git/**",
	"**/node_modules/**",
	"**/venv/**",
	"**/__pycache__/**",
	"**/bin/**",
}
