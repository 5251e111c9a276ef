package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
)

// Card is one scattered info card. It carries no position.
type Card struct {
	Icon        string `toml:"icon" json:"icon"`
	Title       string `toml:"title" json:"title"`
	Description string `toml:"description" json:"description"`
}

type Link struct {
	Label    string `toml:"label" json:"label"`
	URL      string `toml:"url" json:"url"`
	External bool   `toml:"external" json:"external"`
}

// Content is everything the page shows apart from the computed layout.
type Content struct {
	Name   string   `toml:"name"`
	Texts  []string `toml:"texts"`
	Roles  []string `toml:"roles"`
	Cards  []Card   `toml:"cards"`
	Nav    []Link   `toml:"nav"`
	Social []Link   `toml:"social"`
}

// DefaultContent returns the built-in profile.
func DefaultContent() Content {
	return Content{
		Name:   ProfileName,
		Texts:  append([]string(nil), RotatingTexts...),
		Roles:  append([]string(nil), Roles...),
		Cards:  append([]Card(nil), OrbitCards...),
		Nav:    append([]Link(nil), NavLinks...),
		Social: append([]Link(nil), SocialLinks...),
	}
}

// LoadContent overlays the TOML file at path on the built-in profile. Keys
// missing from the file keep their defaults; unknown keys are an error.
func LoadContent(path string) (Content, error) {
	c := DefaultContent()
	if path == "" {
		return c, nil
	}

	var file Content
	md, err := toml.DecodeFile(path, &file)
	if err != nil {
		return Content{}, fmt.Errorf("failed to read content file %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return Content{}, fmt.Errorf("unknown keys in content file %s: %s", path, strings.Join(keys, ", "))
	}

	// A key in the file replaces the default wholesale.
	if md.IsDefined("name") {
		c.Name = file.Name
	}
	if md.IsDefined("texts") {
		c.Texts = file.Texts
	}
	if md.IsDefined("roles") {
		c.Roles = file.Roles
	}
	if md.IsDefined("cards") {
		c.Cards = file.Cards
	}
	if md.IsDefined("nav") {
		c.Nav = file.Nav
	}
	if md.IsDefined("social") {
		c.Social = file.Social
	}

	if err := c.Validate(); err != nil {
		return Content{}, fmt.Errorf("invalid content file %s: %w", path, err)
	}
	return c, nil
}

func (c Content) Validate() error {
	var errs []error
	if len(c.Texts) == 0 {
		errs = append(errs, errors.New("at least one rotating text is required"))
	}
	for i, card := range c.Cards {
		if strings.TrimSpace(card.Title) == "" {
			errs = append(errs, fmt.Errorf("card %d has no title", i))
		}
	}
	if len(c.Cards) > maxCards {
		errs = append(errs, fmt.Errorf("%d cards exceed the limit of %d", len(c.Cards), maxCards))
	}
	return errors.Join(errs...)
}
