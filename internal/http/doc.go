// Package http exposes the notes services over chi routes.
//
// Admin routes mount under /admin/api:
//   - Session: /session
//   - Accounts: /users, /users/{id}/{action}, /profile
//   - Listing scope: /scope
//   - Markdown preview: /markdown/preview
//   - Media cleanup: /media/cleanup
//   - Activity log: /logs
//
// Public routes: /articles, /articles/{slug}, /code-themes/{theme}.css and
// the upload endpoints under /api/uploads.
//
// Gate redirects answer 303 with a Location header; other failures answer
// a JSON {error, message} body.
package http
