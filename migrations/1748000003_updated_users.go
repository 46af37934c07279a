package migrations

import (
	"github.com/pocketbase/pocketbase/core"
	m "github.com/pocketbase/pocketbase/migrations"
)

func init() {
	m.Register(func(app core.App) error {
		collection, err := app.FindCollectionByNameOrId("users")
		if err != nil {
			return err
		}

		collection.Fields.Add(
			&core.TextField{Name: "phone", Max: 30},
			&core.BoolField{Name: "is_admin"},
			&core.BoolField{Name: "is_active"},
			&core.BoolField{Name: "notifications_enabled"},
		)

		return app.Save(collection)
	}, func(app core.App) error {
		collection, err := app.FindCollectionByNameOrId("users")
		if err != nil {
			return err
		}

		for _, name := range []string{"phone", "is_admin", "is_active", "notifications_enabled"} {
			collection.Fields.RemoveByName(name)
		}
		return app.Save(collection)
	})
}
