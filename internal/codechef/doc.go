// Package codechef scrapes the CodeChef contests listing page.
//
// CodeChef exposes no public contest API, so this adapter parses the
// listing page's HTML. The page is built with hashed CSS class names
// that change between deploys, so cards are located by matching a stable
// fragment of the class name rather than the full class. Because any
// scrape can fail — network, bot detection, markup changes — Scrape
// degrades through an ordered chain of strategies (cached snapshot,
// live fetch, saved fixture pages, synthetic sample) and always returns
// a usable snapshot, never an error.
package codechef
