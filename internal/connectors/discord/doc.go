// Package discord implements the message source adapter over the Discord
// REST API (v10). It fetches channel metadata and message pages with
// dual-strategy rate limiting: a proactive token bucket keeps the request
// rate polite, and response headers are parsed reactively so a 429 never
// burns a retry attempt.
package discord
