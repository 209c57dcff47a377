package normalizer

import (
	"net/url"
	"path"
	"regexp"
	"strings"
)

// fileExtRe matches URL paths that end in a downloadable document extension,
// optionally followed by a query string
var fileExtRe = regexp.MustCompile(`(?i)\.(pdf|zip|docx?|xlsx?)$`)

var fileShareHosts = []string{
	"drive.google.com",
	"dropbox.com",
	"onedrive.live.com",
}

// isDocumentURL reports whether a URL plausibly points at a tender document:
// a well-known file extension on the path, or a known file-share host
func isDocumentURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return false
	}

	if fileExtRe.MatchString(u.Path) {
		return true
	}

	host := strings.ToLower(u.Host)
	for _, share := range fileShareHosts {
		if host == share || strings.HasSuffix(host, "."+share) {
			return true
		}
	}

	return false
}

var mimeByExt = map[string]string{
	".pdf":  "application/pdf",
	".zip":  "application/zip",
	".doc":  "application/msword",
	".docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	".xls":  "application/vnd.ms-excel",
	".xlsx": "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
}

// mimeFromURL derives a MIME type from the URL path extension, nil when the
// extension is unknown
func mimeFromURL(raw string) *string {
	u, err := url.Parse(raw)
	if err != nil {
		return nil
	}
	ext := strings.ToLower(path.Ext(u.Path))
	if mt, ok := mimeByExt[ext]; ok {
		return &mt
	}
	return nil
}

// mimeFromExtension derives a MIME type from a bare extension such as "pdf"
// or ".pdf"
func mimeFromExtension(ext string) *string {
	e := strings.ToLower(strings.TrimSpace(ext))
	if e == "" {
		return nil
	}
	if !strings.HasPrefix(e, ".") {
		e = "." + e
	}
	if mt, ok := mimeByExt[e]; ok {
		return &mt
	}
	return nil
}
