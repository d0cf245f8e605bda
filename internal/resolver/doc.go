// Package resolver locates candidate video URLs for a collected product. A
// fixed cascade of strategies runs in priority order against a rendered page
// snapshot; the first strategy yielding any candidate short-circuits the rest.
package resolver
