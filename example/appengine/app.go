// A sample App Engine application that serves every repository in the
// datastore over the smart HTTP protocol with unauthenticated access.
// Refs are read from entities of kind "git:ref"; seed them through the
// datastore console or the datastore API.  Deploy with
// ``gcloud app deploy'' from its containing directory.
package main

import (
	"net/http"
	"os"

	"github.com/hashicorp/go-hclog"
	"google.golang.org/appengine"

	git_http "github.com/lxr/gitkv/protocol/http"
	git_appengine "github.com/lxr/gitkv/repository/appengine"
)

func main() {
	logger := hclog.New(&hclog.LoggerOptions{
		Name:       "gitkv",
		Level:      hclog.Info,
		JSONFormat: true,
		Output:     os.Stderr,
	})
	srv, err := git_http.New(git_http.Options{
		Store:  git_appengine.New("git:", 0),
		Logger: logger,
	})
	if err != nil {
		logger.Error("cannot create server", "error", err)
		os.Exit(1)
	}
	http.Handle("/", withAppEngine(srv.Handler()))
	appengine.Main()
}

// withAppEngine attaches the App Engine request to the request context
// so that the datastore and memcache calls of the store can use it.
func withAppEngine(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, r.WithContext(appengine.WithContext(r.Context(), r)))
	})
}
