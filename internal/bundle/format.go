// Package bundle serializes a selected file set into a single portable
// artifact and decodes it back. Five encodings are supported: plain,
// whitespace-compressed, comment-stripped (max-compressed), gzip, and
// base64-of-gzip.
package bundle

// File delimiters inside the textual bundle body. Every file is framed by a
// start and end marker carrying its relative path.
const (
	fileStartPrefix = "--- START OF FILE: "
	fileEndPrefix   = "--- END OF FILE: "
	markerSuffix    = " ---"
)

// IndexSeparator terminates the human-readable index header that may be
// prepended to a bundle. Everything before (and including) this line is
// stripped when decoding bundle contents.
const IndexSeparator = "--- END OF INDEX ---"

// FileStartMarker returns the delimiter line opening a file's content.
func FileStartMarker(path string) string {
	return fileStartPrefix + path + markerSuffix
}

// FileEndMarker returns the delimiter line closing a file's content.
func FileEndMarker(path string) string {
	return fileEndPrefix + path + markerSuffix
}
