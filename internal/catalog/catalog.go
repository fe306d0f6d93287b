package catalog

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Room is the local content entry for one upstream room type.
type Room struct {
	RoomTypeID string `yaml:"room_type_id"`
	ShortCode  string `yaml:"short_code"`
	Title      string `yaml:"title"`
	Slug       string `yaml:"slug"`
}

type Catalog struct {
	Rooms []Room `yaml:"rooms"`
}

// LoadFile reads the catalog at path. An empty path yields an empty catalog.
func LoadFile(path string) (*Catalog, error) {
	if path == "" {
		return &Catalog{}, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read room catalog: %w", err)
	}

	return Parse(data)
}

func Parse(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("failed to parse room catalog: %w", err)
	}

	for i, room := range c.Rooms {
		if strings.TrimSpace(room.RoomTypeID) == "" {
			return nil, fmt.Errorf("room catalog entry %d has no room_type_id", i)
		}
	}

	return &c, nil
}

// RoomTypeIDs lists the upstream ids that have local content.
func (c *Catalog) RoomTypeIDs() []string {
	ids := make([]string, 0, len(c.Rooms))
	for _, room := range c.Rooms {
		ids = append(ids, room.RoomTypeID)
	}

	return ids
}

func (c *Catalog) ByShortCode(code string) (Room, bool) {
	for _, room := range c.Rooms {
		if room.ShortCode == code {
			return room, true
		}
	}

	return Room{}, false
}
