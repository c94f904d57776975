package migrations

import (
	"encoding/json"

	"github.com/pocketbase/pocketbase/core"
	m "github.com/pocketbase/pocketbase/migrations"
)

func init() {
	m.Register(func(app core.App) error {
		jsonData := `{
			"createRule": null,
			"deleteRule": null,
			"fields": [
				{
					"autogeneratePattern": "[a-z0-9]{15}",
					"hidden": false,
					"id": "text_tickets_id",
					"max": 15,
					"min": 15,
					"name": "id",
					"pattern": "^[a-z0-9]+$",
					"presentable": false,
					"primaryKey": true,
					"required": true,
					"system": true,
					"type": "text"
				},
				{
					"autogeneratePattern": "",
					"hidden": false,
					"id": "text_title",
					"max": 0,
					"min": 0,
					"name": "title",
					"pattern": "",
					"presentable": true,
					"primaryKey": false,
					"required": true,
					"system": false,
					"type": "text"
				},
				{
					"autogeneratePattern": "",
					"hidden": false,
					"id": "text_image",
					"max": 0,
					"min": 0,
					"name": "image",
					"pattern": "",
					"presentable": false,
					"primaryKey": false,
					"required": false,
					"system": false,
					"type": "text"
				},
				{
					"autogeneratePattern": "",
					"hidden": false,
					"id": "text_origin",
					"max": 0,
					"min": 0,
					"name": "origin",
					"pattern": "",
					"presentable": false,
					"primaryKey": false,
					"required": true,
					"system": false,
					"type": "text"
				},
				{
					"autogeneratePattern": "",
					"hidden": false,
					"id": "text_destination",
					"max": 0,
					"min": 0,
					"name": "destination",
					"pattern": "",
					"presentable": false,
					"primaryKey": false,
					"required": true,
					"system": false,
					"type": "text"
				},
				{
					"hidden": false,
					"id": "select_transport",
					"maxSelect": 1,
					"name": "transport",
					"presentable": false,
					"required": false,
					"system": false,
					"type": "select",
					"values": ["bus", "train", "launch", "plane"]
				},
				{
					"hidden": false,
					"id": "number_price",
					"max": null,
					"min": 0,
					"name": "price",
					"onlyInt": false,
					"presentable": false,
					"required": true,
					"system": false,
					"type": "number"
				},
				{
					"hidden": false,
					"id": "number_quantity",
					"max": null,
					"min": 0,
					"name": "quantity",
					"onlyInt": true,
					"presentable": false,
					"required": false,
					"system": false,
					"type": "number"
				},
				{
					"hidden": false,
					"id": "date_departure",
					"max": "",
					"min": "",
					"name": "departure",
					"presentable": false,
					"required": true,
					"system": false,
					"type": "date"
				},
				{
					"exceptDomains": null,
					"hidden": false,
					"id": "email_vendor",
					"name": "vendor_email",
					"onlyDomains": null,
					"presentable": false,
					"required": true,
					"system": false,
					"type": "email"
				},
				{
					"hidden": false,
					"id": "select_verification",
					"maxSelect": 1,
					"name": "verification",
					"presentable": false,
					"required": false,
					"system": false,
					"type": "select",
					"values": ["pending", "approved", "rejected"]
				},
				{
					"hidden": false,
					"id": "bool_is_advertised",
					"name": "is_advertised",
					"presentable": false,
					"required": false,
					"system": false,
					"type": "bool"
				},
				{
					"hidden": false,
					"id": "bool_is_hidden",
					"name": "is_hidden",
					"presentable": false,
					"required": false,
					"system": false,
					"type": "bool"
				},
				{
					"hidden": false,
					"id": "autodate_created",
					"name": "created",
					"onCreate": true,
					"onUpdate": false,
					"presentable": false,
					"system": false,
					"type": "autodate"
				},
				{
					"hidden": false,
					"id": "autodate_updated",
					"name": "updated",
					"onCreate": true,
					"onUpdate": true,
					"presentable": false,
					"system": false,
					"type": "autodate"
				}
			],
			"id": "pbc_tickets_0001",
			"indexes": [
				"CREATE INDEX idx_tickets_vendor ON tickets (vendor_email)",
				"CREATE INDEX idx_tickets_visibility ON tickets (verification, is_hidden)"
			],
			"listRule": null,
			"name": "tickets",
			"system": false,
			"type": "base",
			"updateRule": null,
			"viewRule": null
		}`

		collection := &core.Collection{}
		if err := json.Unmarshal([]byte(jsonData), &collection); err != nil {
			return err
		}

		return app.Save(collection)
	}, func(app core.App) error {
		collection, err := app.FindCollectionByNameOrId("pbc_tickets_0001")
		if err != nil {
			return err
		}

		return app.Delete(collection)
	})
}
