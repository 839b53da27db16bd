package port

// TextExtractor converts raw file bytes into plain text. An unsupported
// format yields an empty string, not an error; errors are reserved for
// files that claim a supported format but cannot be decoded.
type TextExtractor interface {
	Extract(fileName string, data []byte) (string, error)
}
