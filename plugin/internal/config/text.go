package config

import (
	"strings"
)

// LocaleHeader is written at the top of locale.conf.
const LocaleHeader = "Visit: https://github.com/games647/FlexibleLogin/wiki for community given templates"

// Text holds the user-facing messages stored in locale.conf.
// Placeholders use the {name} form and are filled by Render.
type Text struct {
	NotLoggedIn          string `yaml:"notLoggedIn"`
	NotRegistered        string `yaml:"notRegistered"`
	AlreadyLoggedIn      string `yaml:"alreadyLoggedIn"`
	LoggedIn             string `yaml:"loggedIn"`
	LoggedOut            string `yaml:"loggedOut"`
	Registered           string `yaml:"registered"`
	AlreadyRegistered    string `yaml:"alreadyRegistered"`
	IncorrectPassword    string `yaml:"incorrectPassword"`
	PasswordTooShort     string `yaml:"passwordTooShort"`
	UnmatchingPasswords  string `yaml:"unmatchingPasswords"`
	MaxAttempts          string `yaml:"maxAttempts"`
	LockedOut            string `yaml:"lockedOut"`
	TooManyRegistrations string `yaml:"tooManyRegistrations"`
	InvalidUsername      string `yaml:"invalidUsername"`
	TimeoutReason        string `yaml:"timeoutReason"`
	Unregistered         string `yaml:"unregistered"`
	AccountNotFound      string `yaml:"accountNotFound"`
	PlayersOnly          string `yaml:"playersOnly"`
	MailNotSet           string `yaml:"mailNotSet"`
	MailSent             string `yaml:"mailSent"`
	TOTPSecret           string `yaml:"totpSecret"`
	ChangedPassword      string `yaml:"changedPassword"`
	ForceRegister        string `yaml:"forceRegister"`
}

// DefaultText returns the messages written for a fresh locale.conf.
func DefaultText() Text {
	return Text{
		NotLoggedIn:          "You're not logged in. Use /login <password>",
		NotRegistered:        "You're not registered yet. Use /register <password> <password>",
		AlreadyLoggedIn:      "You're already logged in",
		LoggedIn:             "Logged in",
		LoggedOut:            "Logged out",
		Registered:           "Account created",
		AlreadyRegistered:    "You're already registered",
		IncorrectPassword:    "Incorrect password",
		PasswordTooShort:     "Your password is too short. It needs at least {length} characters",
		UnmatchingPasswords:  "The passwords are not matching",
		MaxAttempts:          "You entered the wrong password too often",
		LockedOut:            "You're locked out. Please wait {time}",
		TooManyRegistrations: "You reached the maximum of registrations for your IP address",
		InvalidUsername:      "Invalid username. Please choose another one",
		TimeoutReason:        "You took too long to log in",
		Unregistered:         "Account removed",
		AccountNotFound:      "Account {account} not found",
		PlayersOnly:          "This command is only for players",
		MailNotSet:           "You didn't set an email address",
		MailSent:             "A new password was sent to your email address",
		TOTPSecret:           "Secret code for your authenticator app: {secret}",
		ChangedPassword:      "Password changed",
		ForceRegister:        "Force registration of {player} successful",
	}
}

// Render substitutes {name} placeholders in tmpl with vars. Unknown
// placeholders are left in place.
func (t Text) Render(tmpl string, vars map[string]string) string {
	if len(vars) == 0 {
		return tmpl
	}
	pairs := make([]string, 0, 2*len(vars))
	for k, v := range vars {
		pairs = append(pairs, "{"+k+"}", v)
	}
	return strings.NewReplacer(pairs...).Replace(tmpl)
}

var textComments = map[string]string{
	"passwordTooShort": "{length} is the configured minimum password length",
	"lockedOut":        "{time} is the remaining lockout time",
	"accountNotFound":  "{account} is the looked up player name or UUID",
	"totpSecret":       "{secret} is the generated TOTP secret",
	"forceRegister":    "{player} is the name of the registered player",
}
