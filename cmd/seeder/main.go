package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	log "github.com/sirupsen/logrus"
)

// Seeds a running server with demo data: one admin account, a small equipment
// fleet, a template per equipment type and six months of generated schedules.
// Safe to re-run; generation skips every date that already has a schedule.

type equipmentSpec struct {
	Name            string `json:"name"`
	EquipmentTypeID string `json:"equipment_type_id"`
	Manufacturer    string `json:"manufacturer"`
	Model           string `json:"model"`
	SerialNumber    string `json:"serial_number"`
	Location        string `json:"location"`
	Status          string `json:"status"`
}

type checklistItemSpec struct {
	Order       int    `json:"order"`
	Description string `json:"description"`
	IsRequired  bool   `json:"is_required"`
}

type templateSpec struct {
	Name              string              `json:"name"`
	Description       string              `json:"description"`
	EquipmentTypeID   string              `json:"equipment_type_id"`
	IntervalType      string              `json:"interval_type"`
	IntervalValue     int                 `json:"interval_value"`
	Checklist         []checklistItemSpec `json:"checklist"`
	EstimatedDuration int                 `json:"estimated_duration_minutes"`
	IsActive          bool                `json:"is_active"`
}

var fleet = []equipmentSpec{
	{Name: "Rooftop AHU 1", EquipmentTypeID: "hvac", Manufacturer: "Carrier", Model: "39M", SerialNumber: "AHU-0001", Location: "Building A / Roof", Status: "active"},
	{Name: "Rooftop AHU 2", EquipmentTypeID: "hvac", Manufacturer: "Carrier", Model: "39M", SerialNumber: "AHU-0002", Location: "Building B / Roof", Status: "active"},
	{Name: "Passenger Elevator 1", EquipmentTypeID: "elevator", Manufacturer: "Otis", Model: "Gen2", SerialNumber: "ELV-0001", Location: "Building A / Core", Status: "active"},
	{Name: "Fire Pump", EquipmentTypeID: "pump", Manufacturer: "Grundfos", Model: "NB 65", SerialNumber: "PMP-0001", Location: "Building A / Basement", Status: "active"},
	{Name: "Main Boiler", EquipmentTypeID: "boiler", Manufacturer: "Viessmann", Model: "Vitomax", SerialNumber: "BLR-0001", Location: "Building A / Basement", Status: "active"},
	{Name: "Backup Generator", EquipmentTypeID: "generator", Manufacturer: "Cummins", Model: "C150", SerialNumber: "GEN-0001", Location: "Building B / Yard", Status: "active"},
}

var templates = []templateSpec{
	{
		Name:            "HVAC Monthly Inspection",
		Description:     "Filter change and coil inspection",
		EquipmentTypeID: "hvac",
		IntervalType:    "monthly",
		IntervalValue:   1,
		Checklist: []checklistItemSpec{
			{Order: 1, Description: "Replace air filters", IsRequired: true},
			{Order: 2, Description: "Inspect evaporator coils", IsRequired: true},
			{Order: 3, Description: "Check condensate drain", IsRequired: false},
		},
		EstimatedDuration: 90,
		IsActive:          true,
	},
	{
		Name:            "Elevator Quarterly Service",
		Description:     "Safety and traction inspection",
		EquipmentTypeID: "elevator",
		IntervalType:    "quarterly",
		IntervalValue:   1,
		Checklist: []checklistItemSpec{
			{Order: 1, Description: "Test emergency brake", IsRequired: true},
			{Order: 2, Description: "Inspect hoist ropes", IsRequired: true},
			{Order: 3, Description: "Lubricate guide rails", IsRequired: false},
		},
		EstimatedDuration: 180,
		IsActive:          true,
	},
	{
		Name:            "Pump Weekly Check",
		Description:     "Run test and seal inspection",
		EquipmentTypeID: "pump",
		IntervalType:    "weekly",
		IntervalValue:   1,
		Checklist: []checklistItemSpec{
			{Order: 1, Description: "Run pump under load", IsRequired: true},
			{Order: 2, Description: "Check shaft seals for leaks", IsRequired: true},
		},
		EstimatedDuration: 30,
		IsActive:          true,
	},
	{
		Name:            "Boiler Monthly Inspection",
		Description:     "Combustion and safety valve checks",
		EquipmentTypeID: "boiler",
		IntervalType:    "monthly",
		IntervalValue:   1,
		Checklist: []checklistItemSpec{
			{Order: 1, Description: "Test safety relief valve", IsRequired: true},
			{Order: 2, Description: "Check combustion efficiency", IsRequired: true},
			{Order: 3, Description: "Inspect water level controls", IsRequired: true},
		},
		EstimatedDuration: 120,
		IsActive:          true,
	},
	{
		Name:            "Generator Monthly Run Test",
		Description:     "Load bank test and fluid checks",
		EquipmentTypeID: "generator",
		IntervalType:    "monthly",
		IntervalValue:   1,
		Checklist: []checklistItemSpec{
			{Order: 1, Description: "Run under load for 30 minutes", IsRequired: true},
			{Order: 2, Description: "Check oil and coolant levels", IsRequired: true},
		},
		EstimatedDuration: 60,
		IsActive:          true,
	},
}

var authToken string

func post(apiURL, path string, payload interface{}, out interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	req, err := http.NewRequest(http.MethodPost, apiURL+path, bytes.NewBuffer(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if authToken != "" {
		req.Header.Set("Authorization", "Bearer "+authToken)
	}
	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode >= 300 {
		return fmt.Errorf("%s %s: %d %s", http.MethodPost, path, resp.StatusCode, string(respBody))
	}
	if out != nil {
		return json.Unmarshal(respBody, out)
	}
	return nil
}

func login(apiURL string) error {
	credentials := map[string]string{
		"username": "admin",
		"password": "admin-demo-password",
	}

	var loginResp struct {
		Token string `json:"token"`
	}
	if err := post(apiURL, "/api/auth/login", credentials, &loginResp); err == nil {
		authToken = loginResp.Token
		return nil
	}

	register := map[string]string{
		"username":   "admin",
		"email":      "admin@example.com",
		"password":   "admin-demo-password",
		"first_name": "Demo",
		"last_name":  "Admin",
		"role":       "admin",
	}
	if err := post(apiURL, "/api/auth/register", register, &loginResp); err != nil {
		return err
	}
	authToken = loginResp.Token
	return nil
}

func main() {
	apiURL := os.Getenv("API_URL")
	if apiURL == "" {
		apiURL = "http://localhost:8080"
	}

	if err := login(apiURL); err != nil {
		log.WithError(err).Fatal("Failed to authenticate against API")
	}

	// Equipment, keyed by type so templates can be matched to units.
	unitsByType := make(map[string][]string)
	for _, spec := range fleet {
		var created struct {
			ID              string `json:"id"`
			EquipmentTypeID string `json:"equipment_type_id"`
		}
		if err := post(apiURL, "/api/pm/equipment", spec, &created); err != nil {
			log.WithError(err).WithField("equipment", spec.Name).Fatal("Failed to create equipment")
		}
		unitsByType[created.EquipmentTypeID] = append(unitsByType[created.EquipmentTypeID], created.ID)
		log.WithFields(log.Fields{"id": created.ID, "name": spec.Name}).Info("Created equipment")
	}

	startDate := time.Now().UTC().Format(time.RFC3339)
	for _, spec := range templates {
		var created struct {
			ID string `json:"id"`
		}
		if err := post(apiURL, "/api/pm/templates", spec, &created); err != nil {
			log.WithError(err).WithField("template", spec.Name).Fatal("Failed to create template")
		}
		log.WithFields(log.Fields{"id": created.ID, "name": spec.Name}).Info("Created template")

		units := unitsByType[spec.EquipmentTypeID]
		if len(units) == 0 {
			continue
		}
		generate := map[string]interface{}{
			"template_id":   created.ID,
			"equipment_ids": units,
			"start_date":    startDate,
			"months_ahead":  6,
		}
		var result struct {
			Created         []json.RawMessage `json:"created"`
			SkippedExisting int               `json:"skipped_existing"`
		}
		if err := post(apiURL, "/api/pm/schedules/generate", generate, &result); err != nil {
			log.WithError(err).WithField("template", spec.Name).Fatal("Failed to generate schedules")
		}
		log.WithFields(log.Fields{
			"template":         spec.Name,
			"created":          len(result.Created),
			"skipped_existing": result.SkippedExisting,
		}).Info("Generated schedules")
	}

	log.Info("Seeding complete")
}
