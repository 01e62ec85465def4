package models

import (
	"gorm.io/gorm"
)

// Customer represents a subscriber account looked up by caller number
type Customer struct {
	gorm.Model

	Name               string  `json:"name"`
	PhoneNumber        string  `json:"phone_number" gorm:"uniqueIndex"` // E.164, matches the webhook From field
	CurrentPlan        string  `json:"current_plan"`
	Balance            float64 `json:"balance" gorm:"default:0"`
	NetworkStatus      string  `json:"network_status"`      // e.g., "activo", "suspendido"
	ServiceDescription string  `json:"service_description"` // what the current plan includes
	AvailableServices  string  `json:"available_services"`  // upgrades the caller can contract
}
