package handlers

import (
	"context"
	"flag"
	"io/fs"
	"net/http"
	"os"
	"path"

	"github.com/julienschmidt/httprouter"
	"github.com/luno/jettison/j"
	"github.com/luno/jettison/log"
)

var webBuild = flag.String("web_build", "", "`build` folder for the table admin web app")

// createWebApp serves the files of the web build, if one is configured.
func createWebApp(ctx context.Context, r Router) {
	if *webBuild == "" {
		return
	}
	var count int
	err := fs.WalkDir(os.DirFS(*webBuild), ".",
		func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				return nil
			}

			filePath := path.Join(*webBuild, p)
			r.GET("/"+p, func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
				http.ServeFile(w, r, filePath)
			})
			count++
			return nil
		},
	)
	if err != nil {
		panic(err)
	}
	r.GET("/", serveIndex)
	log.Info(ctx, "serving web app", j.MKV{"folder": *webBuild, "files": count})
}

func serveIndex(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	http.ServeFile(w, r, path.Join(*webBuild, "index.html"))
}
