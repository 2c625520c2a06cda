package config

import (
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// Hashing algorithm identifiers accepted for hashAlgo.
const (
	HashBCrypt = "BCrypt"
	HashTOTP   = "TOTP"
)

// Default values applied when keys are absent from config.conf.
const (
	DefaultHashAlgo          = HashBCrypt
	DefaultValidNames        = `^\w{2,16}$`
	DefaultMinPasswordLength = 4
	DefaultMaxAttempts       = 3
	DefaultTimeoutLogin      = 60 * time.Second
	DefaultWaitTime          = 5 * time.Minute
	DefaultMessageInterval   = 2 * time.Second
)

// General holds the plugin-wide settings stored in config.conf.
type General struct {
	// SQL configures the account database.
	SQL SQLConfig `yaml:"sqlConfiguration"`

	// Email configures password recovery mails.
	Email EmailConfig `yaml:"emailConfiguration"`

	// HashAlgo names the algorithm used to hash passwords: BCrypt | TOTP.
	HashAlgo string `yaml:"hashAlgo" validate:"oneof=BCrypt TOTP"`

	// ValidNames is the regular expression a player name has to match.
	ValidNames string `yaml:"validNames" validate:"required"`

	IPAutoLogin           bool `yaml:"ipAutoLogin"`
	CommandOnlyProtection bool `yaml:"commandOnlyProtection"`
	PlayerPermissions     bool `yaml:"playerPermissions"`
	SafeLocation          bool `yaml:"safeLocation"`
	UpdateLoginStatus     bool `yaml:"updateLoginStatus"`
	BypassPermission      bool `yaml:"bypassPermission"`
	ProtectPermissions    bool `yaml:"protectPermissions"`
	AllowUnregistered     bool `yaml:"allowUnregistered"`

	MinPasswordLength int `yaml:"minPasswordLength" validate:"min=1"`
	MaxAttempts       int `yaml:"maxAttempts" validate:"gte=0"`

	// MaxIPReg caps the accounts registered from one address; 0 disables the check.
	MaxIPReg int `yaml:"maxIpReg" validate:"gte=0"`

	// TimeoutLogin is how long a player may stay unauthenticated; 0 disables the kick.
	TimeoutLogin Duration `yaml:"timeoutLogin" validate:"gte=0"`

	// WaitTime is the lockout after MaxAttempts failed logins.
	WaitTime Duration `yaml:"waitTime" validate:"gte=0"`

	// MessageInterval is the period of the login reminder.
	MessageInterval Duration `yaml:"messageInterval" validate:"gt=0"`

	// LockCommand runs after a player exceeded MaxAttempts. Empty disables it.
	LockCommand string `yaml:"lockCommand"`

	Teleport TeleportConfig `yaml:"teleportConfig"`

	ProtectedCommands []string `yaml:"protectedCommands"`
	AllowedCommands   []string `yaml:"allowedCommands"`
}

// SQLConfig selects and addresses the account database.
type SQLConfig struct {
	// Type is one of: SQLite | MySQL | MariaDB | H2.
	Type string `yaml:"type" validate:"oneof=SQLite MySQL MariaDB H2"`

	// Path is the directory of file databases. %DIR% expands to the config directory.
	Path string `yaml:"path"`

	Server    string `yaml:"server"`
	Port      int    `yaml:"port" validate:"min=1,max=65535"`
	Database  string `yaml:"database" validate:"required"`
	Username  string `yaml:"username"`
	Password  string `yaml:"password"`
	UseSSL    bool   `yaml:"useSSL"`
	TableName string `yaml:"tableName" validate:"required"`
}

// ResolvePath expands %DIR% in Path against dir.
func (s SQLConfig) ResolvePath(dir string) string {
	return strings.ReplaceAll(s.Path, "%DIR%", dir)
}

// EmailConfig holds the SMTP settings used for password recovery.
type EmailConfig struct {
	Enabled    bool   `yaml:"enabled"`
	Host       string `yaml:"host"`
	Port       int    `yaml:"port" validate:"min=1,max=65535"`
	Account    string `yaml:"account"`
	Password   string `yaml:"password"`
	SenderName string `yaml:"senderName"`
	Subject    string `yaml:"subject"`

	// Text is the mail body. {player}, {server} and {password} are substituted.
	Text string `yaml:"text"`
}

// TeleportConfig controls where unauthenticated players are held.
type TeleportConfig struct {
	Enabled      bool    `yaml:"enabled"`
	DefaultSpawn bool    `yaml:"defaultSpawn"`
	WorldName    string  `yaml:"worldName"`
	CoordX       float64 `yaml:"coordX"`
	CoordY       float64 `yaml:"coordY"`
	CoordZ       float64 `yaml:"coordZ"`
}

// DefaultGeneral returns the settings written for a fresh config.conf.
func DefaultGeneral() General {
	return General{
		SQL: SQLConfig{
			Type:      "SQLite",
			Path:      "%DIR%",
			Server:    "localhost",
			Port:      3306,
			Database:  "flexiblelogin",
			UseSSL:    true,
			TableName: "flexiblelogin_users",
		},
		Email: EmailConfig{
			Host:       "smtp.gmail.com",
			Port:       465,
			SenderName: "FlexibleLogin",
			Subject:    "Your new Password",
			Text:       "New password for {player} on Minecraft server {server}: {password}",
		},
		HashAlgo:          DefaultHashAlgo,
		ValidNames:        DefaultValidNames,
		AllowUnregistered: true,
		MinPasswordLength: DefaultMinPasswordLength,
		MaxAttempts:       DefaultMaxAttempts,
		TimeoutLogin:      Duration(DefaultTimeoutLogin),
		WaitTime:          Duration(DefaultWaitTime),
		MessageInterval:   Duration(DefaultMessageInterval),
		Teleport: TeleportConfig{
			DefaultSpawn: true,
		},
		ProtectedCommands: []string{"op", "pex"},
		AllowedCommands:   []string{"login", "register", "forgotpassword", "log", "reg"},
	}
}

// Validate checks enumerations, ranges and the player-name pattern.
func (g *General) Validate() error {
	if err := structValidator.Struct(g); err != nil {
		return fmt.Errorf("validation failed for general settings: %w", err)
	}
	if _, err := regexp.Compile(g.ValidNames); err != nil {
		return fmt.Errorf("validNames: %w", err)
	}
	return nil
}

// generalComments are written above keys inserted into config.conf.
var generalComments = map[string]string{
	"sqlConfiguration":            "Database configuration",
	"sqlConfiguration.type":       "SQL server type. You can choose between SQLite, MySQL, MariaDB and H2",
	"sqlConfiguration.path":       "Path where the database is located. %DIR% is replaced by the config directory",
	"sqlConfiguration.port":       "Port of the SQL server (MySQL and MariaDB only)",
	"emailConfiguration":          "Email configuration for password recovery",
	"emailConfiguration.text":     "Mail body. Use {player}, {server} and {password} as placeholders",
	"hashAlgo":                    "Algorithm for hashing user passwords. You can also choose TOTP",
	"validNames":                  "Regular expression for valid player names. Default is 2-16 word characters",
	"ipAutoLogin":                 "Login players automatically if it's the same account from the same IP",
	"commandOnlyProtection":       "Only protect the commands listed in protectedCommands",
	"playerPermissions":           "Check player permissions for the plugin commands",
	"safeLocation":                "Teleport players to a safe location based on the last login coordinates",
	"updateLoginStatus":           "Save the login status to the database",
	"bypassPermission":            "Allow players with the bypass permission to skip authentication",
	"protectPermissions":          "Experimental: hide permissions of players who aren't logged in yet",
	"allowUnregistered":           "Allow unregistered players to join the server",
	"minPasswordLength":           "Minimum length of a password",
	"maxAttempts":                 "Failed logins until the player is locked out",
	"maxIpReg":                    "Accounts allowed per IP address. 0 disables the limit",
	"timeoutLogin":                "Time a player has to log in before being kicked. 0s disables this feature",
	"waitTime":                    "Lockout time after too many failed attempts",
	"messageInterval":             "Interval of the please-login reminder",
	"lockCommand":                 "Command executed after too many failed attempts. {player} is substituted",
	"teleportConfig":              "Teleport unauthenticated players to a fixed location",
	"teleportConfig.defaultSpawn": "Use the world spawn instead of the coordinates below",
	"protectedCommands":           "Protected commands if commandOnlyProtection is enabled. Empty protects all commands",
	"allowedCommands":             "Commands allowed before the player is logged in",
}

var structValidator = newValidator()

// newValidator reports field errors by their document key instead of the Go name.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("yaml"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}
