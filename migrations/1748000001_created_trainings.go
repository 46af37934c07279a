package migrations

import (
	"github.com/pocketbase/pocketbase/core"
	m "github.com/pocketbase/pocketbase/migrations"
	"github.com/pocketbase/pocketbase/tools/types"
)

func init() {
	m.Register(func(app core.App) error {
		collection := core.NewBaseCollection("trainings")

		collection.Fields.Add(
			&core.TextField{Name: "title", Required: true, Max: 200},
			&core.TextField{Name: "description", Max: 2000},
			&core.SelectField{
				Name:      "training_type",
				Required:  true,
				MaxSelect: 1,
				Values:    []string{"group", "personal", "open"},
			},
			&core.DateField{Name: "scheduled_at", Required: true},
			&core.NumberField{Name: "duration_minutes", OnlyInt: true, Min: types.Pointer(1.0)},
			&core.NumberField{Name: "max_participants", OnlyInt: true, Min: types.Pointer(1.0)},
			&core.TextField{Name: "location", Max: 200},
			&core.BoolField{Name: "is_cancelled"},
			&core.TextField{Name: "calendar_event_id", Max: 100},
			&core.AutodateField{Name: "created", OnCreate: true},
			&core.AutodateField{Name: "updated", OnCreate: true, OnUpdate: true},
		)

		// Reminder sweeps and schedule listings both filter on start time.
		collection.AddIndex("idx_trainings_scheduled_at", false, "scheduled_at", "")

		return app.Save(collection)
	}, func(app core.App) error {
		collection, err := app.FindCollectionByNameOrId("trainings")
		if err != nil {
			return err
		}
		return app.Delete(collection)
	})
}
