package postgres

import (
	"context"
	"database/sql"
	"encoding/json"

	"cycletrack/internal/domain"
)

// ListCycles returns all cycles of a user ordered by start date, each with
// its entries ordered by date.
func (d *DB) ListCycles(ctx context.Context, userID string) ([]domain.Cycle, error) {
	rows, err := d.sql.QueryContext(ctx,
		"SELECT id, start_date, COALESCE(end_date, '') FROM cycles WHERE user_id=$1 ORDER BY start_date;", userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close() //nolint:errcheck

	var cycles []domain.Cycle
	for rows.Next() {
		var c domain.Cycle
		if err := rows.Scan(&c.ID, &c.StartDate, &c.EndDate); err != nil {
			return nil, err
		}
		cycles = append(cycles, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range cycles {
		entries, err := d.listEntries(ctx, cycles[i].ID)
		if err != nil {
			return nil, err
		}
		cycles[i].Entries = entries
	}
	return cycles, nil
}

func (d *DB) listEntries(ctx context.Context, cycleID string) ([]domain.Entry, error) {
	rows, err := d.sql.QueryContext(ctx,
		`SELECT iso_date, temperature_raw, temperature_corrected, use_corrected,
		        mucus_sensation, mucus_appearance, fertility_symbol, observations,
		        had_relations, ignored, peak_marker, measurements
		 FROM entries WHERE cycle_id=$1 ORDER BY iso_date;`, cycleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close() //nolint:errcheck

	var entries []domain.Entry
	for rows.Next() {
		var e domain.Entry
		var raw, corrected sql.NullFloat64
		var measurements []byte
		if err := rows.Scan(&e.IsoDate, &raw, &corrected, &e.UseCorrected,
			&e.MucusSensation, &e.MucusAppearance, &e.FertilitySymbol, &e.Observations,
			&e.HadRelations, &e.Ignored, &e.PeakMarker, &measurements); err != nil {
			return nil, err
		}
		if raw.Valid {
			v := raw.Float64
			e.TemperatureRaw = &v
		}
		if corrected.Valid {
			v := corrected.Float64
			e.TemperatureCorrected = &v
		}
		if len(measurements) > 0 {
			if err := json.Unmarshal(measurements, &e.Measurements); err != nil {
				return nil, err
			}
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// SaveCycle creates or updates a cycle's metadata.
func (d *DB) SaveCycle(ctx context.Context, userID string, c domain.Cycle) error {
	var end any
	if c.EndDate != "" {
		end = c.EndDate
	}
	_, err := d.sql.ExecContext(ctx,
		`INSERT INTO cycles(id, user_id, start_date, end_date) VALUES($1, $2, $3, $4)
		 ON CONFLICT (id) DO UPDATE SET start_date=EXCLUDED.start_date, end_date=EXCLUDED.end_date;`,
		c.ID, userID, c.StartDate, end)
	return err
}

// DeleteCycle removes a cycle; entries cascade.
func (d *DB) DeleteCycle(ctx context.Context, userID, cycleID string) error {
	_, err := d.sql.ExecContext(ctx, "DELETE FROM cycles WHERE id=$1 AND user_id=$2;", cycleID, userID)
	return err
}
