// Package middleware provides HTTP middleware for the control surface.
//
// Middleware stack includes:
//   - CORS: lets the rendering surface, served from the private origin,
//     read control endpoints
//   - RateLimit: per-IP token bucket rate limiting
//   - GlobalRateLimit: a single bucket shared by all clients
package middleware
