package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Equipment represents a maintainable unit in the facility.
type Equipment struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name            string             `bson:"name" json:"name"`
	EquipmentTypeID string             `bson:"equipment_type_id" json:"equipment_type_id"` // "hvac", "elevator", "pump", "boiler", "generator"
	Manufacturer    string             `bson:"manufacturer" json:"manufacturer"`
	Model           string             `bson:"model" json:"model"`
	SerialNumber    string             `bson:"serial_number" json:"serial_number"`
	Location        string             `bson:"location" json:"location"` // building / floor / room
	InstalledAt     *time.Time         `bson:"installed_at,omitempty" json:"installed_at,omitempty"`
	Status          string             `bson:"status" json:"status"` // "active" or "retired"
	CreatedAt       time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt       time.Time          `bson:"updated_at" json:"updated_at"`
}
