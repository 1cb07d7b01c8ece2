/*
Package dihttp provides HTTP middleware that carries a [di.Dependencies] set on each request.

Example:

	package main

	import (
		"net/http"

		"github.com/sectrean/di-activator"
		"github.com/sectrean/di-activator/dicontext"
		"github.com/sectrean/di-activator/dihttp"
	)

	type Page struct {
		Request *http.Request `di:"resolve"`
		Store   Store         `di:"resolve"`
	}

	func main() {
		deps, err := di.NewDependencies(
			di.WithValueAs[Store](NewStore()),
		)
		if err != nil {
			panic(err)
		}

		mw, err := dihttp.NewRequestMiddleware(deps)
		if err != nil {
			panic(err)
		}

		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			page := &Page{}
			if err := dicontext.Activate(r.Context(), page); err != nil {
				http.Error(w, err.Error(), http.StatusInternalServerError)
				return
			}

			page.Render(w)
		})

		http.Handle("/", mw(handler))
		http.ListenAndServe(":8080", nil)
	}
*/
package dihttp
