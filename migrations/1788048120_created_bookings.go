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
					"id": "text_bookings_id",
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
					"id": "text_ref_code",
					"max": 0,
					"min": 0,
					"name": "ref_code",
					"pattern": "",
					"presentable": true,
					"primaryKey": false,
					"required": true,
					"system": false,
					"type": "text"
				},
				{
					"cascadeDelete": false,
					"collectionId": "pbc_tickets_0001",
					"hidden": false,
					"id": "relation_ticket",
					"maxSelect": 1,
					"minSelect": 0,
					"name": "ticket_id",
					"presentable": false,
					"required": true,
					"system": false,
					"type": "relation"
				},
				{
					"exceptDomains": null,
					"hidden": false,
					"id": "email_user",
					"name": "user_email",
					"onlyDomains": null,
					"presentable": false,
					"required": true,
					"system": false,
					"type": "email"
				},
				{
					"exceptDomains": null,
					"hidden": false,
					"id": "email_booking_vendor",
					"name": "vendor_email",
					"onlyDomains": null,
					"presentable": false,
					"required": true,
					"system": false,
					"type": "email"
				},
				{
					"hidden": false,
					"id": "number_booked_quantity",
					"max": null,
					"min": 1,
					"name": "quantity",
					"onlyInt": true,
					"presentable": false,
					"required": true,
					"system": false,
					"type": "number"
				},
				{
					"hidden": false,
					"id": "number_total_price",
					"max": null,
					"min": 0,
					"name": "total_price",
					"onlyInt": false,
					"presentable": false,
					"required": false,
					"system": false,
					"type": "number"
				},
				{
					"hidden": false,
					"id": "select_status",
					"maxSelect": 1,
					"name": "status",
					"presentable": false,
					"required": false,
					"system": false,
					"type": "select",
					"values": ["pending", "accepted", "rejected", "paid"]
				},
				{
					"autogeneratePattern": "",
					"hidden": false,
					"id": "text_ticket_title",
					"max": 0,
					"min": 0,
					"name": "ticket_title",
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
					"id": "text_ticket_image",
					"max": 0,
					"min": 0,
					"name": "ticket_image",
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
					"id": "text_booking_origin",
					"max": 0,
					"min": 0,
					"name": "origin",
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
					"id": "text_booking_destination",
					"max": 0,
					"min": 0,
					"name": "destination",
					"pattern": "",
					"presentable": false,
					"primaryKey": false,
					"required": false,
					"system": false,
					"type": "text"
				},
				{
					"hidden": false,
					"id": "date_booking_departure",
					"max": "",
					"min": "",
					"name": "departure",
					"presentable": false,
					"required": false,
					"system": false,
					"type": "date"
				},
				{
					"hidden": false,
					"id": "autodate_booking_created",
					"name": "created",
					"onCreate": true,
					"onUpdate": false,
					"presentable": false,
					"system": false,
					"type": "autodate"
				},
				{
					"hidden": false,
					"id": "autodate_booking_updated",
					"name": "updated",
					"onCreate": true,
					"onUpdate": true,
					"presentable": false,
					"system": false,
					"type": "autodate"
				}
			],
			"id": "pbc_bookings_0001",
			"indexes": [
				"CREATE INDEX idx_bookings_user ON bookings (user_email)",
				"CREATE INDEX idx_bookings_vendor ON bookings (vendor_email)",
				"CREATE INDEX idx_bookings_ticket ON bookings (ticket_id)"
			],
			"listRule": null,
			"name": "bookings",
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
		collection, err := app.FindCollectionByNameOrId("pbc_bookings_0001")
		if err != nil {
			return err
		}

		return app.Delete(collection)
	})
}
