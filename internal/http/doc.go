// Package http provides HTTP handlers and middleware for the rotation API.
//
// The router exposes the following endpoints:
//   - GET /health: liveness probe, always {"status":"ok"}.
//   - GET /tenants/{tenantID}/slots: slot listing for selection menus. Query
//     parameters: `search` widens the window to one year around today and
//     filters formatted labels by case-insensitive substring; `date` selects a
//     single day in DD-MM-YY form and takes precedence over `search`.
//   - POST /tenants/{tenantID}/slots/fill: attaches details to an existing
//     slot addressed by its formatted label. Body: {"slot_label","details",
//     "author_id","author_name"}. Requires the admin bearer token.
//   - POST /tenants/{tenantID}/maintenance/run: manual coverage pass over the
//     rolling window; idempotent, safe to invoke repeatedly. Optional
//     `past_weeks`/`future_weeks` query parameters override the configured
//     window for this call only, for one-off extensions. Requires the admin
//     bearer token.
//   - GET /tenants/{tenantID}/summary: the assembled summary document. The
//     caller performs the external publish; this endpoint only builds.
//
// Request/response DTOs live alongside their respective handlers so tests and
// documentation share the same ground truth.
package http
