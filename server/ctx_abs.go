package server

// queryGetter is the part of fiber.Ctx the callback parser needs.
// The GitHub redirect carries its variables in the query string only.
type queryGetter interface {
	Query(key string, defaultValue ...string) string
}
