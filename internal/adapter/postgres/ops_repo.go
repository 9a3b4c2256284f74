package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"cycletrack/internal/domain"
)

// ApplyEntryOp applies one queued entry mutation inside a transaction. The
// operation id is recorded first; if it was already recorded the whole call
// is a no-op, which is what makes replaying a half-drained queue safe.
func (d *DB) ApplyEntryOp(ctx context.Context, userID string, op domain.PendingOperation) error {
	tx, err := d.sql.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback() //nolint:errcheck

	res, err := tx.ExecContext(ctx,
		"INSERT INTO applied_operations(op_id, user_id, applied_at) VALUES($1, $2, $3) ON CONFLICT (op_id) DO NOTHING;",
		op.ID, userID, time.Now().UTC())
	if err != nil {
		return err
	}
	inserted, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if inserted == 0 {
		// Already applied on a previous drain.
		return tx.Commit()
	}

	switch op.Type {
	case domain.OpCreateEntry, domain.OpUpdateEntry:
		if op.LocalRecord != nil {
			if err := upsertEntry(ctx, tx, op.CycleID, *op.LocalRecord); err != nil {
				return err
			}
		}
	case domain.OpDeleteEntry:
		if _, err := tx.ExecContext(ctx,
			"DELETE FROM entries WHERE cycle_id=$1 AND iso_date=$2;", op.CycleID, op.EntryDate); err != nil {
			return err
		}
	case domain.OpToggleIgnoreEntry:
		if op.Ignored != nil {
			if _, err := tx.ExecContext(ctx,
				"UPDATE entries SET ignored=$3 WHERE cycle_id=$1 AND iso_date=$2;",
				op.CycleID, op.EntryDate, *op.Ignored); err != nil {
				return err
			}
		}
	}
	return tx.Commit()
}

func upsertEntry(ctx context.Context, tx *sql.Tx, cycleID string, e domain.Entry) error {
	var measurements any
	if len(e.Measurements) > 0 {
		blob, err := json.Marshal(e.Measurements)
		if err != nil {
			return err
		}
		measurements = blob
	}

	_, err := tx.ExecContext(ctx,
		`INSERT INTO entries(cycle_id, iso_date, temperature_raw, temperature_corrected,
		                     use_corrected, mucus_sensation, mucus_appearance, fertility_symbol,
		                     observations, had_relations, ignored, peak_marker, measurements)
		 VALUES($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		 ON CONFLICT (cycle_id, iso_date) DO UPDATE SET
		   temperature_raw=EXCLUDED.temperature_raw,
		   temperature_corrected=EXCLUDED.temperature_corrected,
		   use_corrected=EXCLUDED.use_corrected,
		   mucus_sensation=EXCLUDED.mucus_sensation,
		   mucus_appearance=EXCLUDED.mucus_appearance,
		   fertility_symbol=EXCLUDED.fertility_symbol,
		   observations=EXCLUDED.observations,
		   had_relations=EXCLUDED.had_relations,
		   ignored=EXCLUDED.ignored,
		   peak_marker=EXCLUDED.peak_marker,
		   measurements=EXCLUDED.measurements;`,
		cycleID, e.IsoDate, e.TemperatureRaw, e.TemperatureCorrected,
		e.UseCorrected, e.MucusSensation, e.MucusAppearance, string(e.FertilitySymbol),
		e.Observations, e.HadRelations, e.Ignored, string(e.PeakMarker), measurements)
	return err
}
