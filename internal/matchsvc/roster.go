package matchsvc

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"roll-for-your-life/internal/match"
)

// DefaultRoster seats a fresh install.
func DefaultRoster() []match.PlayerInfo {
	return []match.PlayerInfo{
		{ID: match.NewID("1"), Name: "Ada", AvatarURL: "https://api.dicebear.com/7.x/bottts/svg?seed=ada"},
		{ID: match.NewID("2"), Name: "Grace", AvatarURL: "https://api.dicebear.com/7.x/bottts/svg?seed=grace"},
		{ID: match.NewID("3"), Name: "Linus", AvatarURL: "https://api.dicebear.com/7.x/bottts/svg?seed=linus"},
	}
}

// ReadRosterFile reads a roster CSV with an id,name,image_url header.
func ReadRosterFile(path string) ([]match.PlayerInfo, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return ReadRoster(file)
}

// ReadRoster parses roster rows. Rows missing an id, name or image_url are
// skipped; duplicate ids are an error.
func ReadRoster(r io.Reader) ([]match.PlayerInfo, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}

	seen := make(map[string]struct{})
	var roster []match.PlayerInfo
	for i, row := range rows {
		if i == 0 {
			continue
		}
		if len(row) < 3 {
			continue
		}
		id := strings.TrimSpace(row[0])
		name := strings.TrimSpace(row[1])
		avatar := strings.TrimSpace(row[2])
		if id == "" || name == "" || avatar == "" {
			continue
		}
		if _, dup := seen[id]; dup {
			return nil, fmt.Errorf("duplicate player id %q on line %d", id, i+1)
		}
		seen[id] = struct{}{}
		roster = append(roster, match.PlayerInfo{ID: match.NewID(id), Name: name, AvatarURL: avatar})
	}
	return roster, nil
}
