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

		// add field
		if err := collection.Fields.AddMarshaledJSONAt(8, []byte(`{
			"hidden": false,
			"id": "select_role",
			"maxSelect": 1,
			"name": "role",
			"presentable": false,
			"required": false,
			"system": false,
			"type": "select",
			"values": ["USER", "VENDOR", "ADMIN"]
		}`)); err != nil {
			return err
		}

		// add field
		if err := collection.Fields.AddMarshaledJSONAt(9, []byte(`{
			"hidden": false,
			"id": "bool_is_fraud",
			"name": "is_fraud",
			"presentable": false,
			"required": false,
			"system": false,
			"type": "bool"
		}`)); err != nil {
			return err
		}

		return app.Save(collection)
	}, func(app core.App) error {
		collection, err := app.FindCollectionByNameOrId("users")
		if err != nil {
			return err
		}

		// remove field
		collection.Fields.RemoveById("select_role")
		collection.Fields.RemoveById("bool_is_fraud")

		return app.Save(collection)
	})
}
