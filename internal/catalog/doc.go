// Package catalog defines the product and category model served by vitrine.
//
// The package holds plain types and pure functions only. The store, the
// listing service, the HTTP surface and the resilient client all import
// catalog; catalog imports nothing internal. Response types declared here
// are the single wire contract shared by the server and the client.
//
// Key conventions:
//   - Derived fields (discount_percent, formatted_price, commission_percent)
//     are filled by Derive at response time and never persisted
//   - All JSON tags use snake_case
//   - Slices in responses are empty, never nil
package catalog
