package config

import (
	"errors"
	"io/fs"
	"os"

	"github.com/m-mizutani/goerr/v2"
	"github.com/pelletier/go-toml/v2"
	"github.com/secmon-lab/riskregister/pkg/domain/types"
)

// AppConfig is the seed file: categories, frameworks and development users
type AppConfig struct {
	Categories []Category  `toml:"category"`
	Frameworks []Framework `toml:"framework"`
	Users      []User      `toml:"user"`
}

// Category represents a risk category configuration
type Category struct {
	ID          string `toml:"id"`
	Name        string `toml:"name"`
	Description string `toml:"description"`
}

// Validate checks if the Category is valid
func (c *Category) Validate() error {
	id := types.CategoryID(c.ID)
	if err := id.Validate(); err != nil {
		return goerr.Wrap(ErrInvalidConfig, "invalid category ID", goerr.V(IDKey, c.ID), goerr.V("cause", err.Error()))
	}
	if c.Name == "" {
		return goerr.Wrap(ErrMissingName, "category name is required", goerr.V(IDKey, c.ID))
	}
	return nil
}

// Framework represents a compliance framework. Frameworks are matched by
// name when seeding.
type Framework struct {
	Name        string `toml:"name"`
	Description string `toml:"description"`
}

// Validate checks if the Framework is valid
func (f *Framework) Validate() error {
	if f.Name == "" {
		return goerr.Wrap(ErrMissingName, "framework name is required")
	}
	return nil
}

// User is an account created by the seed command
type User struct {
	Email    string `toml:"email"`
	Name     string `toml:"name"`
	Password string `toml:"password" masq:"secret"`
	Role     string `toml:"role"`
}

// UserRole returns the role, defaulting to member
func (u *User) UserRole() types.UserRole {
	if u.Role == "" {
		return types.UserRoleMember
	}
	return types.UserRole(u.Role)
}

// Validate checks if the User is valid
func (u *User) Validate() error {
	if u.Email == "" {
		return goerr.Wrap(ErrInvalidConfig, "user email is required")
	}
	if u.Name == "" {
		return goerr.Wrap(ErrMissingName, "user name is required", goerr.V("email", u.Email))
	}
	if !u.UserRole().IsValid() {
		return goerr.Wrap(ErrInvalidConfig, "invalid user role", goerr.V("email", u.Email), goerr.V("role", u.Role))
	}
	return nil
}

// Validate checks if the AppConfig is valid
func (a *AppConfig) Validate() error {
	categoryIDs := make(map[string]bool)
	for _, cat := range a.Categories {
		if err := cat.Validate(); err != nil {
			return goerr.Wrap(err, "invalid category")
		}
		if categoryIDs[cat.ID] {
			return goerr.Wrap(ErrDuplicateID, "duplicate category ID", goerr.V(IDKey, cat.ID))
		}
		categoryIDs[cat.ID] = true
	}

	frameworkNames := make(map[string]bool)
	for _, fw := range a.Frameworks {
		if err := fw.Validate(); err != nil {
			return goerr.Wrap(err, "invalid framework")
		}
		if frameworkNames[fw.Name] {
			return goerr.Wrap(ErrDuplicateID, "duplicate framework name", goerr.V("name", fw.Name))
		}
		frameworkNames[fw.Name] = true
	}

	emails := make(map[string]bool)
	for _, u := range a.Users {
		if err := u.Validate(); err != nil {
			return goerr.Wrap(err, "invalid user")
		}
		if emails[u.Email] {
			return goerr.Wrap(ErrDuplicateID, "duplicate user email", goerr.V("email", u.Email))
		}
		emails[u.Email] = true
	}

	return nil
}

// LoadAppConfiguration loads the seed configuration from a TOML file
func LoadAppConfiguration(path string) (*AppConfig, error) {
	// #nosec G304 - path is expected to be provided by CLI argument
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, goerr.Wrap(ErrConfigNotFound, "config file does not exist", goerr.V(ConfigPathKey, path))
		}
		return nil, goerr.Wrap(err, "failed to read config file", goerr.V(ConfigPathKey, path))
	}

	var config AppConfig
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, goerr.Wrap(ErrInvalidConfig, "failed to parse TOML config",
			goerr.V(ConfigPathKey, path), goerr.V("cause", err.Error()))
	}

	if err := config.Validate(); err != nil {
		return nil, goerr.Wrap(err, "config validation failed", goerr.V(ConfigPathKey, path))
	}

	return &config, nil
}
