package controllers

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/ManuelReschke/ScrapMarket/app/models"
	"github.com/ManuelReschke/ScrapMarket/app/repository"
	"github.com/ManuelReschke/ScrapMarket/internal/pkg/mail"
	"github.com/ManuelReschke/ScrapMarket/internal/pkg/usercontext"
)

const loginFailed = "There is a problem with the login process"

func (ctl *Controller) HandleAuthLogin(c *fiber.Ctx) error {
	if c.Method() != fiber.MethodPost {
		return ctl.render(c, "auth/login", "Log in", nil)
	}

	// notice: do not tell the user which part of the login failed
	ctx := c.UserContext()
	user, err := ctl.Users.GetByEmail(ctx, strings.TrimSpace(c.FormValue("email")))
	if err != nil {
		if !repository.IsNotFound(err) {
			ctl.log.Error().Err(err).Msg("login lookup failed")
		}
		return redirectError(c, "/login", loginFailed)
	}
	if !user.CheckPassword(c.FormValue("password")) {
		return redirectError(c, "/login", loginFailed)
	}
	if user.Status == models.STATUS_DISABLED {
		return redirectError(c, "/login", "This account has been disabled.")
	}

	if err := ctl.Sessions.Login(c, user.ID, user.Name); err != nil {
		ctl.log.Error().Err(err).Msg("session login failed")
		return redirectError(c, "/login", loginFailed)
	}
	if err := ctl.Users.TouchLastLogin(ctx, user.ID); err != nil {
		ctl.log.Warn().Err(err).Uint("user_id", user.ID).Msg("touch last login failed")
	}
	return redirectSuccess(c, "/", "Welcome back, "+user.Name+"!")
}

func (ctl *Controller) HandleAuthLogout(c *fiber.Ctx) error {
	if err := ctl.Sessions.Logout(c); err != nil {
		ctl.log.Warn().Err(err).Msg("logout failed")
	}
	return redirectSuccess(c, "/login", "You have been logged out.")
}

func (ctl *Controller) HandleAuthRegister(c *fiber.Ctx) error {
	if c.Method() != fiber.MethodPost {
		data := fiber.Map{}
		if ctl.Captcha.Enabled() {
			data["CaptchaSiteKey"] = ctl.Captcha.SiteKey
		}
		return ctl.render(c, "auth/register", "Register", data)
	}

	name := strings.TrimSpace(c.FormValue("name"))
	email := strings.ToLower(strings.TrimSpace(c.FormValue("email")))
	password := c.FormValue("password")
	if password != c.FormValue("password_confirm") {
		return redirectError(c, "/register", "The passwords do not match.")
	}

	ctx := c.UserContext()
	if ctl.Captcha.Enabled() {
		if err := ctl.Captcha.Verify(ctx, c.FormValue("h-captcha-response"), c.IP()); err != nil {
			ctl.log.Info().Err(err).Msg("captcha rejected")
			return redirectError(c, "/register", "Please solve the captcha.")
		}
	}
	if _, err := ctl.Users.GetByEmail(ctx, email); err == nil {
		return redirectError(c, "/register", "An account with this email already exists.")
	} else if !repository.IsNotFound(err) {
		ctl.log.Error().Err(err).Msg("register lookup failed")
		return redirectError(c, "/register", "Registration failed. Please try again.")
	}

	user, err := models.CreateUser(name, email, password)
	if err != nil {
		return redirectError(c, "/register", "Please check your input: name 3-150 characters, a valid email and a password of at least 6 characters.")
	}
	if err := user.GenerateActivationToken(); err != nil {
		return redirectError(c, "/register", "Registration failed. Please try again.")
	}
	if err := ctl.Users.Create(ctx, user); err != nil {
		ctl.log.Error().Err(err).Msg("create user failed")
		return redirectError(c, "/register", "Registration failed. Please try again.")
	}

	subject, body, err := mail.ActivationMail(ctl.BaseURL, user.Name, user.ActivationToken)
	if err == nil {
		err = ctl.Mailer.Send(ctx, user.Email, subject, body)
	}
	if err != nil {
		ctl.log.Error().Err(err).Uint("user_id", user.ID).Msg("activation mail failed")
	}
	return redirectSuccess(c, "/login", "Account created. Please confirm your email address with the link we sent you.")
}

// HandleAuthActivate confirms the email address behind an activation token.
func (ctl *Controller) HandleAuthActivate(c *fiber.Ctx) error {
	token := strings.TrimSpace(c.Query("token"))
	if token == "" {
		return redirectError(c, "/login", "The activation link is invalid.")
	}
	ctx := c.UserContext()
	user, err := ctl.Users.GetByActivationToken(ctx, token)
	if err != nil {
		return redirectError(c, "/login", "The activation link is invalid or was already used.")
	}
	user.ConfirmEmail(time.Now())
	if err := ctl.Users.Update(ctx, user); err != nil {
		ctl.log.Error().Err(err).Uint("user_id", user.ID).Msg("activate user failed")
		return redirectError(c, "/login", "Activation failed. Please try again.")
	}
	to := "/login"
	if usercontext.IsLoggedIn(c) {
		to = "/"
	}
	return redirectSuccess(c, to, "Your email address is confirmed.")
}

// RedirectIfLoggedIn keeps logged-in users away from the login and register pages.
func RedirectIfLoggedIn(c *fiber.Ctx) error {
	if usercontext.IsLoggedIn(c) {
		return c.Redirect("/", fiber.StatusSeeOther)
	}
	return c.Next()
}
