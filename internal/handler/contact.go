package handler

import (
	"context"
	"net/http"
	netmail "net/mail"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/julo-ch/www/internal/flash"
	"github.com/julo-ch/www/internal/logging"
	"github.com/julo-ch/www/internal/mail"
)

// ContactHandler serves the contact form.
type ContactHandler struct {
	Sender    mail.Sender
	Recipient string
	Log       logging.Logger
}

type contactForm struct {
	Name  string
	Email string
	Text  string
}

// Show renders an empty form.
func (h *ContactHandler) Show(c echo.Context) error {
	return c.Render(http.StatusOK, "contact.html", contactForm{})
}

// Submit validates every field, reports each problem, and sends the mail
// only when all of them are valid.
func (h *ContactHandler) Submit(c echo.Context) error {
	f := contactForm{
		Name:  strings.TrimSpace(c.FormValue("name")),
		Email: strings.TrimSpace(c.FormValue("email")),
		Text:  strings.TrimSpace(c.FormValue("text")),
	}
	if msgs := f.validate(); len(msgs) > 0 {
		for _, m := range msgs {
			flash.Add(c, m)
		}
		return c.Render(http.StatusOK, "contact.html", f)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 15*time.Second)
	defer cancel()
	if err := h.Sender.Send(ctx, mail.Contact(f.Name, f.Email, f.Text, h.Recipient)); err != nil {
		h.Log.Error(ctx, "contact mail failed", "err", err)
		flash.Add(c, "Your message could not be sent. Please try again later.")
		return c.Render(http.StatusServiceUnavailable, "contact.html", f)
	}
	flash.Add(c, "Message sent.")
	return c.Redirect(http.StatusFound, "/")
}

func (f contactForm) validate() []string {
	var msgs []string
	if f.Name == "" || strings.ContainsAny(f.Name, "\r\n") {
		msgs = append(msgs, "Please enter a valid name.")
	}
	if a, err := netmail.ParseAddress(f.Email); f.Email == "" || err != nil || a.Address != f.Email {
		msgs = append(msgs, "Please enter a valid e-mail-address.")
	}
	if f.Text == "" {
		msgs = append(msgs, "Please enter a valid message.")
	}
	return msgs
}
