package http

import (
	"net/http"
	"path"
	"strings"

	"github.com/bheem-hr/hr-backend-go/internal/handler/http/response"
)

// companyFiles serves stored documents from dir, limited to the
// payslips/{company_id}/ tree of the caller's company. Other paths are 404.
func companyFiles(dir string) http.Handler {
	files := http.FileServer(http.Dir(dir))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c, ok := claims(w, r)
		if !ok {
			return
		}
		rel := strings.TrimPrefix(path.Clean("/"+r.URL.Path), "/")
		if c.CompanyID == "" || !strings.HasPrefix(rel, "payslips/"+c.CompanyID+"/") {
			response.NotFound(w, "File not found")
			return
		}
		files.ServeHTTP(w, r)
	})
}
