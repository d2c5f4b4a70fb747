// Package httpapi serves the engine's flows over HTTP with a cookie-based
// session surface.
//
// Responses use one JSON envelope everywhere:
//
//	{"statusCode": 200, "data": {...}, "message": "...", "success": true}
//
// The access and refresh tokens travel as the httpOnly cookies accessToken
// and refreshToken; the pair is always set or cleared together. Bodies
// additionally carry the tokens so non-browser clients can use the
// Authorization header instead.
package httpapi
