package migrations

import (
	"github.com/pocketbase/pocketbase/core"
	m "github.com/pocketbase/pocketbase/migrations"
)

func init() {
	m.Register(func(app core.App) error {
		users, err := app.FindCollectionByNameOrId("users")
		if err != nil {
			return err
		}
		trainings, err := app.FindCollectionByNameOrId("trainings")
		if err != nil {
			return err
		}

		collection := core.NewBaseCollection("bookings")

		collection.Fields.Add(
			&core.RelationField{
				Name:          "member",
				Required:      true,
				MaxSelect:     1,
				CollectionId:  users.Id,
				CascadeDelete: false,
			},
			&core.RelationField{
				Name:          "training",
				Required:      true,
				MaxSelect:     1,
				CollectionId:  trainings.Id,
				CascadeDelete: false,
			},
			&core.SelectField{
				Name:      "status",
				Required:  true,
				MaxSelect: 1,
				Values:    []string{"confirmed", "cancelled", "attended", "no_show"},
			},
			&core.BoolField{Name: "reminder_24h_sent"},
			&core.BoolField{Name: "reminder_2h_sent"},
			&core.AutodateField{Name: "created", OnCreate: true},
			&core.AutodateField{Name: "updated", OnCreate: true, OnUpdate: true},
		)

		// At most one confirmed booking per member per training. Cancelled
		// rows fall outside the partial index, so cancel-then-rebook works.
		collection.AddIndex("idx_bookings_confirmed_unique", true,
			"`member`, `training`", "`status` = 'confirmed'")
		collection.AddIndex("idx_bookings_training_status", false,
			"`training`, `status`", "")

		return app.Save(collection)
	}, func(app core.App) error {
		collection, err := app.FindCollectionByNameOrId("bookings")
		if err != nil {
			return err
		}
		return app.Delete(collection)
	})
}
