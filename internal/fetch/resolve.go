package fetch

import "regexp"

var (
	driveFileRe = regexp.MustCompile(`^https?://drive\.google\.com/file/d/([a-zA-Z0-9_-]+)`)
	docsDocRe   = regexp.MustCompile(`^https?://docs\.google\.com/document/d/([a-zA-Z0-9_-]+)`)
	docsSheetRe = regexp.MustCompile(`^https?://docs\.google\.com/spreadsheets/d/([a-zA-Z0-9_-]+)`)
)

// RewriteForDownload maps share links of known hosts to direct-download or
// export URLs. Unknown URLs are returned unchanged.
func RewriteForDownload(url string) string {
	if m := driveFileRe.FindStringSubmatch(url); m != nil {
		return "https://drive.google.com/uc?export=download&id=" + m[1]
	}
	if m := docsDocRe.FindStringSubmatch(url); m != nil {
		return "https://docs.google.com/document/d/" + m[1] + "/export?format=txt"
	}
	if m := docsSheetRe.FindStringSubmatch(url); m != nil {
		return "https://docs.google.com/spreadsheets/d/" + m[1] + "/export?format=csv"
	}
	return url
}
