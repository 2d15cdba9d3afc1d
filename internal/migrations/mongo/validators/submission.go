package validators

import (
	"go.mongodb.org/mongo-driver/bson"

	"deca/pkg/model"
)

// SubmissionValidator guards the stored shape of an accepted submission.
// The canonical targets stay open so new form fields do not need a
// migration.
var SubmissionValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"_id",
			"targets",
			"aceptado_en",
			"run_id",
			"created_at",
			"updated_at",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType":  "string",
				"minLength": 3,
				"maxLength": 512,
			},

			"targets": bson.M{
				"bsonType": "object",
				"required": []string{
					model.KeySubmittedOn,
					model.KeyNombre,
					model.KeyApellidos,
					model.KeyEmail,
				},
				"additionalProperties": true,
				"properties": bson.M{
					model.KeyEmail: bson.M{
						"bsonType":  "string",
						"minLength": 3,
						"maxLength": 254,
					},
					model.KeySeleccionModulos: bson.M{
						"bsonType": bson.A{"array", "null"},
						"items":    bson.M{"bsonType": "string"},
					},
				},
			},

			"aceptado_en": bson.M{
				"bsonType":  "string",
				"minLength": 1,
			},

			"run_id": bson.M{
				"bsonType":  "string",
				"minLength": 1,
			},

			"created_at": bson.M{
				"bsonType": "date",
			},

			"updated_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}
