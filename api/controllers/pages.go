package controllers

import (
	"fmt"
	"net/http"
)

const pageShell = `<!doctype html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>%s · ConnectedAutoCare</title>
<link rel="stylesheet" href="/assets/console.css">
</head>
<body>
<div id="root" data-page="%s"></div>
<script src="/assets/console.js" defer></script>
</body>
</html>
`

// ConsolePage serves the console shell for a page slug. The shell is the
// same for every route; the client router takes over from the slug.
func ConsolePage(title, slug string) http.HandlerFunc {
	body := []byte(fmt.Sprintf(pageShell, title, slug))
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Header().Set("Cache-Control", "no-store")
		w.Write(body)
	}
}
