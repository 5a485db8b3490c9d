package server

import (
	"embed"
	"github.com/gofiber/fiber/v2"
	"mime"
	"path"
)

//go:embed template/static
var staticDirectoryFS embed.FS

// static is a handler for static files. Uses '*' parameter for static file determining.
func static(c *fiber.Ctx) error {
	name := c.Params("*")
	if name == "" {
		return c.SendStatus(fiber.StatusNotFound)
	}
	name = path.Join("template", "static", path.Clean("/"+name))
	file, err := staticDirectoryFS.Open(name)
	if err != nil {
		return c.SendStatus(fiber.StatusNotFound)
	}
	t := mime.TypeByExtension(path.Ext(name))
	if t == fiber.MIMEApplicationJavaScript { // add charset utf-8 for JS files, if it's not included
		t = fiber.MIMEApplicationJavaScriptCharsetUTF8
	}
	c.Set(fiber.HeaderContentType, t)
	c.Append(fiber.HeaderCacheControl, "public, max-age=31536000")
	return c.SendStream(file)
}
