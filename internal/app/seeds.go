package app

import (
	"errors"
	"fmt"
	"os"

	"daily_quote_mailer/internal/domain/user"

	"gopkg.in/yaml.v3"
)

var ErrInvalidSeed = errors.New("invalid seed user")

// DefaultSeedUsers is the built-in subscriber list inserted by init-db.
func DefaultSeedUsers() []user.User {
	return []user.User{
		{Name: "Chisom", Email: "chisom@example.com", Status: user.StatusActive, Frequency: user.FrequencyDaily},
		{Name: "Kate", Email: "kate@example.com", Status: user.StatusInactive, Frequency: user.FrequencyDaily},
		{Name: "Raphael", Email: "raphael@example.com", Status: user.StatusActive, Frequency: user.FrequencyDaily},
		{Name: "Victor", Email: "victor@example.com", Status: user.StatusActive, Frequency: user.FrequencyDaily},
	}
}

type seedFile struct {
	Users []struct {
		Name      string `yaml:"name"`
		Email     string `yaml:"email"`
		Status    string `yaml:"status"`
		Frequency string `yaml:"frequency"`
	} `yaml:"users"`
}

// LoadSeedFile reads seed users from a YAML file of the form
//
//	users:
//	  - name: Alice
//	    email: alice@example.com
//	    status: active     # optional, default active
//	    frequency: daily   # optional, default daily
func LoadSeedFile(path string) ([]user.User, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed file: %w", err)
	}

	var f seedFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse seed file %s: %w", path, err)
	}

	seeds := make([]user.User, 0, len(f.Users))
	for i, s := range f.Users {
		if s.Name == "" || s.Email == "" {
			return nil, fmt.Errorf("%w: entry %d needs name and email", ErrInvalidSeed, i)
		}
		u := user.User{
			Name:      s.Name,
			Email:     s.Email,
			Status:    user.Status(s.Status),
			Frequency: user.Frequency(s.Frequency),
		}
		if u.Status == "" {
			u.Status = user.StatusActive
		}
		if u.Status != user.StatusActive && u.Status != user.StatusInactive {
			return nil, fmt.Errorf("%w: entry %d has unknown status %q", ErrInvalidSeed, i, s.Status)
		}
		if u.Frequency == "" {
			u.Frequency = user.FrequencyDaily
		}
		seeds = append(seeds, u)
	}
	return seeds, nil
}
