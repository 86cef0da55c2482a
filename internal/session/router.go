// Package session drives the upload, job description, results and improved
// resume steps as a small page state machine over a store.Session.
package session

import (
	"context"
	"fmt"

	"atsmatch/internal/errors"
)

// Page is a step of the workflow, named by its route.
type Page string

const (
	PageLanding        Page = "/"
	PageUpload         Page = "/upload"
	PageJobDescription Page = "/job-description"
	PageResults        Page = "/results"
	PageImproved       Page = "/improved"
	PageNotFound       Page = "/404"
)

var knownPages = map[Page]struct{}{
	PageLanding: {}, PageUpload: {}, PageJobDescription: {},
	PageResults: {}, PageImproved: {}, PageNotFound: {},
}

// Resolve maps a path onto a known page. Unknown paths resolve to PageNotFound.
func Resolve(path string) Page {
	p := Page(path)
	if _, ok := knownPages[p]; ok {
		return p
	}
	return PageNotFound
}

// Guard decides whether page may be entered. When it may not, redirect names
// the page to go to instead.
type Guard func(ctx context.Context, page Page) (allowed bool, redirect Page, err error)

// Router tracks the current page and the navigation history.
type Router struct {
	current Page
	history []Page
	guard   Guard
}

// NewRouter starts on the landing page. guard may be nil.
func NewRouter(guard Guard) *Router {
	return &Router{current: PageLanding, guard: guard}
}

func (r *Router) Current() Page { return r.current }

// History returns the pages visited before the current one, oldest first.
func (r *Router) History() []Page {
	return append([]Page(nil), r.history...)
}

// Navigate moves to path. A guard rejection moves to the redirect page instead
// and returns a ROUTE_BLOCKED error.
func (r *Router) Navigate(ctx context.Context, path string) (Page, error) {
	page := Resolve(path)
	if r.guard != nil {
		allowed, redirect, err := r.guard(ctx, page)
		if err != nil {
			return r.current, err
		}
		if !allowed {
			r.push(redirect)
			return redirect, errors.NewWorkflowError(errors.ErrCodeRouteBlocked,
				fmt.Sprintf("cannot open %s, redirected to %s", page, redirect), nil).
				WithContext("from", string(page)).
				WithContext("to", string(redirect))
		}
	}
	r.push(page)
	return page, nil
}

// Back returns to the previous page, staying put when there is none.
func (r *Router) Back() Page {
	if n := len(r.history); n > 0 {
		r.current = r.history[n-1]
		r.history = r.history[:n-1]
	}
	return r.current
}

func (r *Router) push(page Page) {
	if page == r.current {
		return
	}
	r.history = append(r.history, r.current)
	r.current = page
}
