package handlers

import (
	"errors"

	"movie-ratings/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

const layoutName = "layout"

// pageTitles is the default <title> of each page. A "Title" binding wins.
var pageTitles = map[string]string{
	"movies_list":  "Movies",
	"movie_form":   "New movie",
	"movie_detail": "Movie",
	"ratings_list": "Ratings",
	"rating_form":  "New rating",
	"analytics":    "Analytics",
}

// pages holds what every HTML handler needs to render and redirect.
type pages struct {
	flash  *Flasher
	logger *logrus.Logger
}

// render shows a page with any queued flash messages, followed by extra.
func (p pages) render(c *fiber.Ctx, name string, bind fiber.Map, extra ...Flash) error {
	if _, ok := bind["Title"]; !ok {
		bind["Title"] = pageTitles[name]
	}
	bind["Flashes"] = append(p.flash.Pop(c), extra...)
	return c.Render(name, bind, layoutName)
}

func (p pages) redirect(c *fiber.Ctx, severity Severity, message, location string) error {
	p.flash.Add(c, severity, message)
	return c.Redirect(location)
}

// fail reports a service error and sends the visitor to location.
func (p pages) fail(c *fiber.Ctx, err error, location string) error {
	p.logFailure(c, err)
	return p.redirect(c, severityOf(err), err.Error(), location)
}

func (p pages) logFailure(c *fiber.Ctx, err error) {
	entry := p.logger.WithError(err).WithFields(logrus.Fields{
		"method": c.Method(),
		"path":   c.Path(),
	})
	if errors.Is(err, services.ErrStore) {
		entry.Error("Request failed")
		return
	}
	entry.Debug("Request rejected")
}
