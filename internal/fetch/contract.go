package fetch

// textExtractor turns a downloaded document into text.
type textExtractor interface {
	Extract(buf []byte, contentType string) string
}
