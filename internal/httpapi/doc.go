// Package httpapi exposes the listing service over HTTP with gin.
//
// Every route is registered twice, at /x and at /api/x, so the same
// server can sit behind a reverse proxy that keeps or strips the /api
// prefix. Non-2xx responses carry a catalog.ErrorBody.
package httpapi
