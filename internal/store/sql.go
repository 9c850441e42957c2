package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"ranks-app/internal/model"
)

// sqlRoster is the query layer shared by the SQLite and Postgres stores.
// The two differ only in placeholder syntax.
type sqlRoster struct {
	db   *sql.DB
	bind func(n int) string
}

func questionBind(int) string { return "?" }
func dollarBind(n int) string { return fmt.Sprintf("$%d", n) }

func (s *sqlRoster) placeholders(count int) string {
	parts := make([]string, count)
	for i := range parts {
		parts[i] = s.bind(i + 1)
	}
	return strings.Join(parts, ",")
}

func (s *sqlRoster) ListRegions() []model.Region {
	rows, err := s.db.Query(`SELECT id, display_name FROM regions ORDER BY position`)
	if err != nil {
		return []model.Region{}
	}
	defer rows.Close()

	regions := []model.Region{}
	for rows.Next() {
		var r model.Region
		if err := rows.Scan(&r.ID, &r.DisplayName); err != nil {
			continue
		}
		regions = append(regions, r)
	}
	return regions
}

func (s *sqlRoster) ReplaceRegions(regions []model.Region) error {
	regions = dedupeRegions(regions)
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin regions tx: %w", err)
	}
	if _, err := tx.Exec(`DELETE FROM regions`); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("clear regions: %w", err)
	}
	insert := `INSERT INTO regions (id, position, display_name) VALUES (` + s.placeholders(3) + `)`
	for i, r := range regions {
		if _, err := tx.Exec(insert, r.ID, i, r.DisplayName); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("insert region %s: %w", r.ID, err)
		}
	}
	return tx.Commit()
}

const playerColumns = `id, name, regions, ratings, merged, merge_parent`

func (s *sqlRoster) ListPlayers() []model.Player {
	rows, err := s.db.Query(`SELECT ` + playerColumns + ` FROM players ORDER BY position`)
	if err != nil {
		return []model.Player{}
	}
	defer rows.Close()

	players := []model.Player{}
	for rows.Next() {
		p, err := scanPlayerRow(rows)
		if err != nil {
			continue
		}
		players = append(players, p)
	}
	return players
}

func (s *sqlRoster) GetPlayer(id string) (model.Player, bool) {
	row := s.db.QueryRow(`SELECT `+playerColumns+` FROM players WHERE id = `+s.bind(1), id)
	p, err := scanPlayerRow(row)
	if err != nil {
		return model.Player{}, false
	}
	return p, true
}

func (s *sqlRoster) ReplacePlayers(players []model.Player) error {
	players = dedupePlayers(players)
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin players tx: %w", err)
	}
	if _, err := tx.Exec(`DELETE FROM players`); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("clear players: %w", err)
	}
	stmt, err := tx.Prepare(`INSERT INTO players (id, position, ` + strings.TrimPrefix(playerColumns, "id, ") + `) VALUES (` + s.placeholders(7) + `)`)
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("prepare player insert: %w", err)
	}
	defer stmt.Close()

	for i, p := range players {
		regions := p.Regions
		if regions == nil {
			regions = []string{}
		}
		if _, err := stmt.Exec(p.ID, i, p.Name, toJSON(regions), ratingsValue(p.Ratings), p.Merged, p.MergeParent); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("insert player %s: %w", p.ID, err)
		}
	}
	return tx.Commit()
}

func scanPlayerRow(scanner interface{ Scan(dest ...any) error }) (model.Player, error) {
	var p model.Player
	var regionsJSON []byte
	var ratingsJSON sql.NullString
	if err := scanner.Scan(&p.ID, &p.Name, &regionsJSON, &ratingsJSON, &p.Merged, &p.MergeParent); err != nil {
		return model.Player{}, err
	}
	if len(regionsJSON) > 0 {
		_ = json.Unmarshal(regionsJSON, &p.Regions)
	}
	if ratingsJSON.Valid {
		p.Ratings = map[string]model.Rating{}
		_ = json.Unmarshal([]byte(ratingsJSON.String), &p.Ratings)
	}
	return p, nil
}

// ratingsValue keeps "no ratings record" (NULL) apart from an empty record.
func ratingsValue(ratings map[string]model.Rating) any {
	if ratings == nil {
		return nil
	}
	return toJSON(ratings)
}

func toJSON(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		return "null"
	}
	return string(data)
}
