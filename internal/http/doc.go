// Package http exposes the gateway's JSON API.
//
// The router exposes the following endpoints:
//   - POST /sessions: signs in. Body: {"email","password"}. Response:
//     {"token","expires_at","viewer":{...}}; the token is also set as the
//     `session_token` cookie.
//   - DELETE /sessions/current: revokes the token from the Authorization header
//     or session cookie. Returns 204 No Content and clears the cookie.
//   - GET /me: the signed-in viewer with the screens and actions it may use.
//   - GET /schedules, POST /schedules, PUT /schedules/{id}, DELETE /schedules/{id}:
//     studio timetable exchanging the `scheduleDTO` payload defined in
//     record_dto.go. GET accepts `date=YYYY-MM-DD` and `mine=true`.
//   - GET /events, POST /events, PUT /events/{id}, DELETE /events/{id}: same
//     shape for events; responses carry `description_html` rendered from the
//     markdown description.
//   - GET /calendar/{kind}?year=&month=: the 6x7 month grid for schedules or
//     events with the days that have records marked.
//   - GET /teacher-requests, POST /teacher-requests, PUT /teacher-requests/{id},
//     DELETE /teacher-requests/{id}: applications to teach and their review.
//   - GET /calendar.ics: iCalendar feed of the viewer's records.
//   - GET /health: liveness probe.
//
// Every request passes through ResolveViewer. Requests without a usable token
// continue anonymously and are rejected by the services before any backend
// call.
package http
