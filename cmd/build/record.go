package build

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/lepinkainen/nyanko/internal/cmdutil"
	"github.com/lepinkainen/nyanko/internal/datastore"
	"github.com/lepinkainen/nyanko/internal/guide"
	"github.com/lepinkainen/nyanko/internal/savefile"
	"github.com/lepinkainen/nyanko/internal/tui"
	"github.com/spf13/viper"
)

const buildsTable = "builds"

// BuildsSchema stores one row per imported guide. Re-importing a guide
// replaces its row.
const BuildsSchema = `CREATE TABLE IF NOT EXISTS builds (
	guide_url TEXT PRIMARY KEY,
	title TEXT,
	gearing TEXT,
	planner_url TEXT,
	gear_slots TEXT,
	food TEXT,
	serum TEXT,
	imported_at TEXT
)`

// Record is an imported build as written to JSON and the datastore.
type Record struct {
	GuideURL   string           `json:"guide_url"`
	Title      string           `json:"title"`
	Gearing    string           `json:"gearing"`
	PlannerURL string           `json:"planner_url"`
	GearSlots  []guide.GearSlot `json:"gear_slots"`
	Food       string           `json:"food"`
	Serum      string           `json:"serum"`
	ImportedAt string           `json:"imported_at"`
}

func newRecord(b savefile.Build, importedAt time.Time) Record {
	return Record{
		GuideURL:   b.GuideURL,
		Title:      b.Title,
		Gearing:    b.Gearing,
		PlannerURL: b.PlannerURL,
		GearSlots:  b.GearSlots,
		Food:       b.Food,
		Serum:      b.Serum,
		ImportedAt: importedAt.UTC().Format(time.RFC3339),
	}
}

// Build converts the record back into the save file shape.
func (r Record) Build() savefile.Build {
	slots := r.GearSlots
	if slots == nil {
		slots = []guide.GearSlot{}
	}
	return savefile.Build{
		GuideURL:   r.GuideURL,
		Title:      r.Title,
		Gearing:    r.Gearing,
		PlannerURL: r.PlannerURL,
		GearSlots:  slots,
		Food:       r.Food,
		Serum:      r.Serum,
	}
}

// Choice describes the record for the interactive picker.
func (r Record) Choice() tui.BuildChoice {
	importedAt := r.ImportedAt
	if t, err := time.Parse(time.RFC3339, r.ImportedAt); err == nil {
		importedAt = t.Format("2006-01-02 15:04")
	}
	return tui.BuildChoice{
		GuideURL:   r.GuideURL,
		Title:      r.Title,
		PlannerURL: r.PlannerURL,
		ImportedAt: importedAt,
		GearCount:  len(r.GearSlots),
	}
}

func writeRecordToDatastore(ctx context.Context, r Record) error {
	return cmdutil.WriteToDatastore(ctx, []Record{r}, BuildsSchema, buildsTable)
}

// listRecords reads previously imported builds from the local database,
// newest first.
func listRecords(ctx context.Context) (records []Record, err error) {
	if viper.GetString("datasette.mode") == "remote" {
		return nil, fmt.Errorf("picking builds requires the local datastore (datasette.mode=local)")
	}

	store := datastore.NewSQLiteStore(cmdutil.LocalDatastorePath())
	if err := store.Connect(ctx); err != nil {
		return nil, err
	}
	defer func() {
		if closeErr := store.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	if err := store.CreateTable(ctx, BuildsSchema); err != nil {
		return nil, err
	}

	rows, err := store.Query(ctx, `SELECT guide_url, title, gearing, planner_url, gear_slots, food, serum, imported_at
		FROM builds ORDER BY imported_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list builds: %w", err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var (
			r         Record
			gearSlots string
		)
		if err := rows.Scan(&r.GuideURL, &r.Title, &r.Gearing, &r.PlannerURL, &gearSlots, &r.Food, &r.Serum, &r.ImportedAt); err != nil {
			return nil, fmt.Errorf("failed to read build row: %w", err)
		}
		if gearSlots != "" {
			if err := json.Unmarshal([]byte(gearSlots), &r.GearSlots); err != nil {
				return nil, fmt.Errorf("failed to decode gear slots for %s: %w", r.GuideURL, err)
			}
		}
		records = append(records, r)
	}
	return records, rows.Err()
}
