package fetch

import "testing"

func TestRewriteForDownload(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "drive file view",
			in:   "https://drive.google.com/file/d/1AbC-d_9/view?usp=sharing",
			want: "https://drive.google.com/uc?export=download&id=1AbC-d_9",
		},
		{
			name: "docs document",
			in:   "https://docs.google.com/document/d/DOC123/edit#heading=h.1",
			want: "https://docs.google.com/document/d/DOC123/export?format=txt",
		},
		{
			name: "sheets",
			in:   "https://docs.google.com/spreadsheets/d/SHEET_9/edit#gid=0",
			want: "https://docs.google.com/spreadsheets/d/SHEET_9/export?format=csv",
		},
		{
			name: "plain url unchanged",
			in:   "https://example.com/cv.pdf",
			want: "https://example.com/cv.pdf",
		},
		{
			name: "docs without id unchanged",
			in:   "https://docs.google.com/document/",
			want: "https://docs.google.com/document/",
		},
		{
			name: "garbage unchanged",
			in:   "not a url",
			want: "not a url",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := RewriteForDownload(tc.in); got != tc.want {
				t.Errorf("RewriteForDownload(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}
