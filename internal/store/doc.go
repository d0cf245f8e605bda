// Package store manages pipeline persistence backed by SQLite: products,
// affiliate links, channels, video assets, and upload logs.
//
// The store is the sole coordination point between pipeline stages. Stages
// never share in-memory state; they read and transition entity statuses here.
package store
